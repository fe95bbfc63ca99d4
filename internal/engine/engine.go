// Package engine implements the headless simulation loop.
//
// The simulation advances in fixed timesteps. Each step applies the
// scheduled commands that have come due, then calls Update(dt) on every
// train's motion unit; events emitted during the step are collected into
// that step's log row. The same RunJSON contract serves the CLI and WASM
// targets.
package engine

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/cxd309/railsim-engine/internal/events"
	"github.com/cxd309/railsim-engine/internal/layout"
	"github.com/cxd309/railsim-engine/internal/physics"
	"github.com/cxd309/railsim-engine/internal/track"
	"github.com/cxd309/railsim-engine/internal/train"
)

// Sim is the simulation engine state: one shared graph and points state,
// and one motion unit per train.
type Sim struct {
	meta    SimulationMeta
	graph   *track.Graph
	points  *track.Points
	bus     *events.Bus
	units   []*train.Unit
	byID    map[string]*train.Unit
	pending []Command // sorted by time; consumed front to back
	curTime float64

	stepEvents []EventRecord
}

// NewSim builds a Sim from a SimulationInput: the layout graph, the
// points state, and each train placed at its initial position. A train
// that cannot be placed is an input error.
func NewSim(input SimulationInput) (*Sim, error) {
	g, err := layout.Build(input.Layout)
	if err != nil {
		return nil, fmt.Errorf("building layout: %w", err)
	}

	s := &Sim{
		meta:   input.Meta,
		graph:  g,
		bus:    &events.Bus{},
		byID:   make(map[string]*train.Unit),
	}
	s.points = track.NewPoints(g, s.bus)
	s.bus.Subscribe(s.recordEvent)

	for _, td := range input.Trains {
		cfg := physics.DefaultConfig()
		if td.Physics != nil {
			cfg = *td.Physics
		}
		u, err := train.NewUnit(td.TrainID, g, s.points, cfg, input.Meta.HeightOffset, s.bus)
		if err != nil {
			return nil, err
		}
		if !u.PlaceOnEdge(td.Edge, td.T, td.Direction) {
			return nil, fmt.Errorf("train %q: cannot place on edge %q", u.ID, td.Edge)
		}
		s.units = append(s.units, u)
		s.byID[u.ID] = u
	}

	s.pending = slices.Clone(input.Commands)
	slices.SortStableFunc(s.pending, func(a, b Command) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return s, nil
}

// Run executes the full simulation and returns the log.
func (s *Sim) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: s.meta}
	if s.meta.TimeStep <= 0 {
		return SimulationLog{}, fmt.Errorf("time_step must be positive, got %g", s.meta.TimeStep)
	}
	for s.curTime <= s.meta.RunTime {
		log.Output = append(log.Output, s.step())
		s.curTime += s.meta.TimeStep
	}
	return log, nil
}

// step advances the simulation by one timestep and returns the log row.
func (s *Sim) step() SimulationLogRow {
	s.stepEvents = nil

	for len(s.pending) > 0 && s.pending[0].Time <= s.curTime {
		s.apply(s.pending[0])
		s.pending = s.pending[1:]
	}

	for _, u := range s.units {
		u.Update(s.meta.TimeStep)
	}

	logs := make([]TrainLog, len(s.units))
	for i, u := range s.units {
		pose, _ := u.WorldPose()
		logs[i] = TrainLog{
			TrainID:   u.ID,
			Position:  u.TrackPosition(),
			Pose:      pose,
			Speed:     u.Speed(),
			Throttle:  u.Throttle(),
			Direction: string(u.Direction()),
			Brake:     string(u.Brake()),
			OnTrack:   u.OnTrack(),
		}
	}
	return SimulationLogRow{Timestamp: s.curTime, TrainLogs: logs, Events: s.stepEvents}
}

// apply dispatches one scheduled command. Unknown trains and actions are
// ignored: a stale command in an input file should not abort the run.
func (s *Sim) apply(cmd Command) {
	switch cmd.Action {
	case ActionTogglePoint:
		s.points.Toggle(cmd.Piece)
		return
	case ActionSetPoint:
		s.points.SetState(cmd.Piece, track.PointState(cmd.State))
		return
	case ActionSelect:
		s.bus.Publish(events.SelectionChanged{Train: cmd.Train})
		return
	}

	u, ok := s.byID[cmd.Train]
	if !ok {
		return
	}
	switch cmd.Action {
	case ActionSetThrottle:
		u.SetThrottle(cmd.Value)
	case ActionIncreaseThrottle:
		u.IncreaseThrottle(cmd.Value)
	case ActionDecreaseThrottle:
		u.DecreaseThrottle(cmd.Value)
	case ActionApplyBrake:
		u.ApplyBrake()
	case ActionReleaseBrake:
		u.ReleaseBrake()
	case ActionEmergencyBrake:
		u.EmergencyBrake()
	case ActionSetDirection:
		if cmd.Value < 0 {
			u.SetDirection(physics.DirectionReverse)
		} else {
			u.SetDirection(physics.DirectionForward)
		}
	case ActionHorn:
		u.Horn()
	}
}

// recordEvent converts a core event into its log form.
func (s *Sim) recordEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.PointChanged:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "point_changed", Piece: e.Piece, State: e.NewState})
	case events.DeadEndReached:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "dead_end_reached", Train: e.Train, Node: e.Node})
	case events.DirectionChanged:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "direction_changed", Train: e.Train, Direction: e.Direction})
	case events.Started:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "started", Train: e.Train})
	case events.Stopped:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "stopped", Train: e.Train})
	case events.HornSounded:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "horn", Train: e.Train})
	case events.SelectionChanged:
		s.stepEvents = append(s.stepEvents, EventRecord{Type: "selection_changed", Train: e.Train})
	}
}

// RunJSON is the primary entry point for the CLI and WASM targets. It
// accepts a JSON-encoded SimulationInput, runs the simulation, and
// returns a JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := NewSim(input)
	if err != nil {
		return "", err
	}

	simLog, err := sim.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
