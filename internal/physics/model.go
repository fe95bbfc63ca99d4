// Package physics implements the per-train throttle and momentum model.
//
// The model converts a commanded throttle level and brake state into a
// signed distance to travel per simulation tick. It knows nothing about
// the track graph; the path follower consumes the distance it produces.
package physics

import (
	"fmt"
	"math"
)

// Direction is a train's commanded direction of travel.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// BrakeState describes the brake lever position.
type BrakeState string

const (
	BrakeReleased  BrakeState = "released"
	BrakeApplied   BrakeState = "applied"
	BrakeEmergency BrakeState = "emergency"
)

// maxTimestep caps dt inside Update to keep the integration stable across
// large frame gaps (e.g. a backgrounded tab).
const maxTimestep = 0.1 // seconds

// Config holds the tuning constants of the momentum model. All rates are
// positive magnitudes; deceleration values are applied opposite to travel.
type Config struct {
	MaxSpeed      float64 `json:"max_speed"`      // m/s
	MinSpeed      float64 `json:"min_speed"`      // m/s; below this with zero target the train snaps to rest
	Acceleration  float64 `json:"acceleration"`   // m/s²
	Deceleration  float64 `json:"deceleration"`   // m/s², brake applied
	CoastDecel    float64 `json:"coast_decel"`    // m/s², throttle zero and no brake
	EmergencyRate float64 `json:"emergency_rate"` // m/s², emergency brake
	// Momentum scales all rates down to simulate mass; 1 = no smoothing.
	Momentum float64 `json:"momentum"`
	// ThrottleResponse is the time for the buffered throttle to ramp across
	// the full 0–1 range, so key presses feel analog rather than stepped.
	ThrottleResponse float64 `json:"throttle_response"` // seconds
	// DirectionThreshold is the speed at or below which a direction change
	// takes effect immediately; above it the request is deferred.
	DirectionThreshold float64 `json:"direction_threshold"` // m/s
}

// DefaultConfig returns tuning suited to an OO/HO-scale locomotive.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:           0.3,
		MinSpeed:           0.002,
		Acceleration:       0.15,
		Deceleration:       0.3,
		CoastDecel:         0.05,
		EmergencyRate:      1.2,
		Momentum:           0.8,
		ThrottleResponse:   0.4,
		DirectionThreshold: 0.01,
	}
}

// Model is the mutable physics state of one train. All mutation happens
// through its command methods and Update; it is owned by exactly one
// motion unit and is not safe for concurrent use.
type Model struct {
	cfg Config

	speed            float64
	throttle         float64 // commanded, 0–1
	bufferedThrottle float64 // smoothed toward throttle
	direction        Direction
	pendingDirection Direction // "" when no change is deferred
	brake            BrakeState
}

// NewModel builds a Model from cfg. Non-positive speed and rate constants
// are rejected rather than silently producing degenerate motion.
func NewModel(cfg Config) (*Model, error) {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"max_speed", cfg.MaxSpeed},
		{"acceleration", cfg.Acceleration},
		{"deceleration", cfg.Deceleration},
		{"coast_decel", cfg.CoastDecel},
		{"emergency_rate", cfg.EmergencyRate},
		{"momentum", cfg.Momentum},
		{"throttle_response", cfg.ThrottleResponse},
	} {
		if c.value <= 0 {
			return nil, fmt.Errorf("physics config: %s must be positive, got %g", c.name, c.value)
		}
	}
	if cfg.MinSpeed < 0 || cfg.DirectionThreshold < 0 {
		return nil, fmt.Errorf("physics config: thresholds must not be negative")
	}
	return &Model{cfg: cfg, direction: DirectionForward, brake: BrakeReleased}, nil
}

// SetThrottle sets the commanded throttle level, clamped to [0,1].
func (m *Model) SetThrottle(level float64) {
	m.throttle = math.Min(1, math.Max(0, level))
}

// IncreaseThrottle raises the commanded throttle by step, clamped to 1.
func (m *Model) IncreaseThrottle(step float64) { m.SetThrottle(m.throttle + step) }

// DecreaseThrottle lowers the commanded throttle by step, clamped to 0.
func (m *Model) DecreaseThrottle(step float64) { m.SetThrottle(m.throttle - step) }

// Throttle returns the commanded throttle level.
func (m *Model) Throttle() float64 { return m.throttle }

// BufferedThrottle returns the smoothed throttle driving target speed.
func (m *Model) BufferedThrottle() float64 { return m.bufferedThrottle }

// Speed returns the current speed in m/s.
func (m *Model) Speed() float64 { return m.speed }

// Direction returns the current direction of travel.
func (m *Model) Direction() Direction { return m.direction }

// Brake returns the current brake state.
func (m *Model) Brake() BrakeState { return m.brake }

// Stopped reports whether the train is at rest.
func (m *Model) Stopped() bool { return m.speed == 0 }

// SetDirection requests a direction change. It applies immediately only
// when the current speed is at or below the direction threshold; otherwise
// the request is remembered and applied once the train slows to the
// threshold. Reports whether it applied immediately.
func (m *Model) SetDirection(dir Direction) bool {
	if dir != DirectionForward && dir != DirectionReverse {
		return false
	}
	if dir == m.direction {
		m.pendingDirection = ""
		return true
	}
	if m.speed <= m.cfg.DirectionThreshold {
		m.direction = dir
		m.pendingDirection = ""
		return true
	}
	m.pendingDirection = dir
	return false
}

// ApplyBrake engages the service brake.
func (m *Model) ApplyBrake() {
	if m.brake == BrakeReleased {
		m.brake = BrakeApplied
	}
}

// ReleaseBrake releases a service brake. An emergency brake stays engaged
// until the train has stopped.
func (m *Model) ReleaseBrake() {
	if m.brake == BrakeApplied {
		m.brake = BrakeReleased
	}
}

// EmergencyBrake engages the emergency brake and zeroes the throttle.
func (m *Model) EmergencyBrake() {
	m.brake = BrakeEmergency
	m.throttle = 0
}

// EmergencyStop halts the train instantly. Used for collision- or
// derailment-equivalent events where momentum is not simulated.
func (m *Model) EmergencyStop() {
	m.speed = 0
	m.throttle = 0
	m.bufferedThrottle = 0
	m.brake = BrakeEmergency
	m.settleAtRest()
}

// Reset restores the model to its initial state.
func (m *Model) Reset() {
	m.speed = 0
	m.throttle = 0
	m.bufferedThrottle = 0
	m.direction = DirectionForward
	m.pendingDirection = ""
	m.brake = BrakeReleased
}

// Update advances the model by dt seconds and returns the signed distance
// the train should travel this tick (negative in reverse). dt is capped
// at maxTimestep; a non-positive dt is a no-op.
func (m *Model) Update(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	dt = math.Min(dt, maxTimestep)

	// 1. Ramp the buffered throttle toward the commanded level.
	step := dt / m.cfg.ThrottleResponse
	if m.bufferedThrottle < m.throttle {
		m.bufferedThrottle = math.Min(m.throttle, m.bufferedThrottle+step)
	} else if m.bufferedThrottle > m.throttle {
		m.bufferedThrottle = math.Max(m.throttle, m.bufferedThrottle-step)
	}

	// 2. Target speed; any engaged brake forces it to zero.
	target := m.bufferedThrottle * m.cfg.MaxSpeed
	if m.brake != BrakeReleased {
		target = 0
	}

	// 3. Rate selection, scaled by momentum.
	var rate float64
	switch {
	case target > m.speed:
		rate = m.cfg.Acceleration
	case m.brake == BrakeEmergency:
		rate = m.cfg.EmergencyRate
	case m.brake == BrakeApplied:
		rate = m.cfg.Deceleration
	default:
		rate = m.cfg.CoastDecel
	}
	rate *= m.cfg.Momentum

	// 4. Integrate toward target and clamp.
	if target > m.speed {
		m.speed = math.Min(target, m.speed+rate*dt)
	} else {
		m.speed = math.Max(target, m.speed-rate*dt)
	}
	m.speed = math.Min(m.cfg.MaxSpeed, math.Max(0, m.speed))

	// 5. Snap to rest and apply anything deferred to the stop.
	if m.speed < m.cfg.MinSpeed && target == 0 {
		m.speed = 0
		m.settleAtRest()
	}
	m.applyPendingDirection()

	// 6. Signed distance.
	dist := m.speed * dt
	if m.direction == DirectionReverse {
		dist = -dist
	}
	return dist
}

// settleAtRest releases an engaged emergency brake once the train has
// stopped and applies any deferred direction change.
func (m *Model) settleAtRest() {
	if m.brake == BrakeEmergency {
		m.brake = BrakeReleased
	}
	m.applyPendingDirection()
}

// applyPendingDirection applies a deferred direction change as soon as
// speed is at or below the threshold. Checked every tick.
func (m *Model) applyPendingDirection() {
	if m.pendingDirection == "" || m.speed > m.cfg.DirectionThreshold {
		return
	}
	m.direction = m.pendingDirection
	m.pendingDirection = ""
}
