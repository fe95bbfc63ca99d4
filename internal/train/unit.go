package train

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cxd309/railsim-engine/internal/events"
	"github.com/cxd309/railsim-engine/internal/geom"
	"github.com/cxd309/railsim-engine/internal/physics"
	"github.com/cxd309/railsim-engine/internal/track"
)

// Unit binds one physics model and one path follower into a controllable
// train. The host loop calls Update once per frame with the elapsed time;
// input handling translates device events into the command methods and
// must never mutate the underlying state directly.
type Unit struct {
	ID string

	phys     *physics.Model
	follower *Follower
	bus      *events.Bus

	moving bool
}

// NewUnit creates a Unit on the given graph and points state. An empty id
// gets a generated one. bus may be nil to discard events.
func NewUnit(id string, g *track.Graph, p *track.Points, cfg physics.Config, heightOffset float64, bus *events.Bus) (*Unit, error) {
	if id == "" {
		id = uuid.NewString()
	}
	m, err := physics.NewModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("train %q: %w", id, err)
	}
	return &Unit{
		ID:       id,
		phys:     m,
		follower: NewFollower(g, p, heightOffset),
		bus:      bus,
	}, nil
}

// Update advances the train by dt seconds: the physics model produces a
// signed distance, the follower consumes it, and a dead end triggers an
// emergency brake before the DeadEndReached event goes out. Start, stop,
// and deferred direction changes are reported as events.
func (u *Unit) Update(dt float64) {
	prevDir := u.phys.Direction()
	dist := u.phys.Update(dt)
	if d := u.phys.Direction(); d != prevDir {
		u.bus.Publish(events.DirectionChanged{Train: u.ID, Direction: string(d)})
	}

	if dist != 0 {
		res := u.follower.Advance(dist)
		if res.HitDeadEnd {
			u.phys.EmergencyBrake()
			u.bus.Publish(events.DeadEndReached{Train: u.ID, Node: res.DeadEndNode})
		}
		if res.WentOffTrack {
			u.phys.EmergencyStop()
		}
	}

	if moving := u.phys.Speed() > 0; moving != u.moving {
		u.moving = moving
		if moving {
			u.bus.Publish(events.Started{Train: u.ID})
		} else {
			u.bus.Publish(events.Stopped{Train: u.ID})
		}
	}
}

// PlaceOnEdge places the train at parameter t on the edge.
func (u *Unit) PlaceOnEdge(id track.EdgeID, t float64, direction int) bool {
	return u.follower.PlaceOnEdge(id, t, direction)
}

// PlaceAtNode places the train at the node, preferring the given edge.
func (u *Unit) PlaceAtNode(id track.NodeID, preferred track.EdgeID) bool {
	return u.follower.PlaceAtNode(id, preferred)
}

// SetThrottle sets the commanded throttle level in [0,1].
func (u *Unit) SetThrottle(level float64) { u.phys.SetThrottle(level) }

// IncreaseThrottle raises the throttle by step.
func (u *Unit) IncreaseThrottle(step float64) { u.phys.IncreaseThrottle(step) }

// DecreaseThrottle lowers the throttle by step.
func (u *Unit) DecreaseThrottle(step float64) { u.phys.DecreaseThrottle(step) }

// SetDirection requests a direction change; above the threshold speed the
// request defers until the train slows. Reports whether it applied
// immediately. An immediate change also flips the follower's orientation
// and emits DirectionChanged.
func (u *Unit) SetDirection(dir physics.Direction) bool {
	prev := u.phys.Direction()
	applied := u.phys.SetDirection(dir)
	if applied && u.phys.Direction() != prev {
		u.bus.Publish(events.DirectionChanged{Train: u.ID, Direction: string(dir)})
	}
	return applied
}

// ApplyBrake engages the service brake.
func (u *Unit) ApplyBrake() { u.phys.ApplyBrake() }

// ReleaseBrake releases the service brake.
func (u *Unit) ReleaseBrake() { u.phys.ReleaseBrake() }

// EmergencyBrake engages the emergency brake and zeroes the throttle.
func (u *Unit) EmergencyBrake() { u.phys.EmergencyBrake() }

// Horn sounds the horn; the audio layer subscribes to the event.
func (u *Unit) Horn() { u.bus.Publish(events.HornSounded{Train: u.ID}) }

// Reset stops the train and restores the physics model to rest.
func (u *Unit) Reset() { u.phys.Reset() }

// Speed returns the current speed in m/s.
func (u *Unit) Speed() float64 { return u.phys.Speed() }

// Throttle returns the commanded throttle level.
func (u *Unit) Throttle() float64 { return u.phys.Throttle() }

// Direction returns the current direction of travel.
func (u *Unit) Direction() physics.Direction { return u.phys.Direction() }

// Brake returns the current brake state.
func (u *Unit) Brake() physics.BrakeState { return u.phys.Brake() }

// OnTrack reports whether the train occupies an edge.
func (u *Unit) OnTrack() bool { return u.follower.OnTrack() }

// TrackPosition returns the train's current track position.
func (u *Unit) TrackPosition() TrackPosition { return u.follower.TrackPosition() }

// WorldPose returns the train's world transform for the rendering layer.
func (u *Unit) WorldPose() (geom.Pose, bool) { return u.follower.WorldPose() }
