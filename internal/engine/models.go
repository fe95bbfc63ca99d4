package engine

import (
	"github.com/cxd309/railsim-engine/internal/geom"
	"github.com/cxd309/railsim-engine/internal/layout"
	"github.com/cxd309/railsim-engine/internal/physics"
	"github.com/cxd309/railsim-engine/internal/train"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
	// HeightOffset lifts every reported pose to railhead height. Metres.
	HeightOffset float64 `json:"height_offset,omitempty"`
}

// TrainData is the initial placement and tuning of one train.
type TrainData struct {
	TrainID   string  `json:"train_id,omitempty"` // generated when empty
	Edge      string  `json:"edge"`
	T         float64 `json:"t"`
	Direction int     `json:"direction,omitempty"` // +1 (default) or -1
	// Physics overrides the default tuning when present.
	Physics *physics.Config `json:"physics,omitempty"`
}

// Command is a scheduled control input, applied at the first tick whose
// time is >= Time. This is how a headless run exercises the same command
// surface an interactive host drives from device input.
type Command struct {
	Time   float64 `json:"time"` // seconds
	Train  string  `json:"train,omitempty"`
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"` // throttle level, step, or direction sign
	Piece  string  `json:"piece,omitempty"` // for point actions
	State  string  `json:"state,omitempty"` // for set_point: "normal" or "reverse"
}

// Command actions.
const (
	ActionSetThrottle      = "set_throttle"
	ActionIncreaseThrottle = "increase_throttle"
	ActionDecreaseThrottle = "decrease_throttle"
	ActionApplyBrake       = "apply_brake"
	ActionReleaseBrake     = "release_brake"
	ActionEmergencyBrake   = "emergency_brake"
	ActionSetDirection     = "set_direction"
	ActionHorn             = "horn"
	ActionTogglePoint      = "toggle_point"
	ActionSetPoint         = "set_point"
	// ActionSelect marks a train as selected for control (empty train
	// clears the selection); UI layers subscribe to the resulting event.
	ActionSelect = "select"
)

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta     SimulationMeta    `json:"simulation_meta"`
	Layout   layout.LayoutData `json:"layout"`
	Trains   []TrainData       `json:"trains"`
	Commands []Command         `json:"commands,omitempty"`
}

// TrainLog is a point-in-time snapshot of one train's state.
type TrainLog struct {
	TrainID   string              `json:"train_id"`
	Position  train.TrackPosition `json:"position"`
	Pose      geom.Pose           `json:"pose"`
	Speed     float64             `json:"speed"`    // m/s
	Throttle  float64             `json:"throttle"` // 0–1
	Direction string              `json:"direction"`
	Brake     string              `json:"brake"`
	OnTrack   bool                `json:"on_track"`
}

// EventRecord is the log form of a core event. Fields not applicable to
// the event type are omitted.
type EventRecord struct {
	Type      string `json:"type"`
	Train     string `json:"train,omitempty"`
	Piece     string `json:"piece,omitempty"`
	Node      string `json:"node,omitempty"`
	Direction string `json:"direction,omitempty"`
	State     string `json:"state,omitempty"`
}

// SimulationLogRow is the state of all trains at a single timestep, plus
// the events emitted during that step.
type SimulationLogRow struct {
	Timestamp float64       `json:"timestamp"` // seconds
	TrainLogs []TrainLog    `json:"train_logs"`
	Events    []EventRecord `json:"events,omitempty"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}
