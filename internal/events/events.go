// Package events defines the notifications emitted by the simulation core
// and a synchronous subscriber bus for delivering them.
//
// The core is single-threaded and tick-driven, so delivery is a plain
// callback invoked inside the emitting call; there are no goroutines,
// channels, or locks here. UI, audio, and logging layers subscribe and
// translate events into their own side effects.
package events

// Event is a marker for all notifications emitted by the core.
type Event interface{ isEvent() }

// PointChanged signals that a switch piece changed routing state.
type PointChanged struct {
	Piece    string
	NewState string
}

func (PointChanged) isEvent() {}

// DeadEndReached signals that a train ran out of track while advancing.
// The motion unit responds with an emergency brake before emitting this.
type DeadEndReached struct {
	Train string
	Node  string
}

func (DeadEndReached) isEvent() {}

// DirectionChanged signals that a train's direction of travel changed,
// either immediately or when a deferred request applied at low speed.
type DirectionChanged struct {
	Train     string
	Direction string
}

func (DirectionChanged) isEvent() {}

// Started signals that a train began moving from rest.
type Started struct {
	Train string
}

func (Started) isEvent() {}

// Stopped signals that a train came to rest.
type Stopped struct {
	Train string
}

func (Stopped) isEvent() {}

// HornSounded signals a horn command, for the audio layer.
type HornSounded struct {
	Train string
}

func (HornSounded) isEvent() {}

// SelectionChanged signals which train is selected for control, or none
// when Train is empty. Replaces ambient global selection state.
type SelectionChanged struct {
	Train string
}

func (SelectionChanged) isEvent() {}

// Bus delivers events synchronously to subscribers in subscription order.
// The zero value is ready to use. A nil *Bus discards all events, so
// components can treat the bus as optional.
type Bus struct {
	subs []func(Event)
}

// Subscribe registers fn to receive every subsequent event.
func (b *Bus) Subscribe(fn func(Event)) {
	b.subs = append(b.subs, fn)
}

// Publish delivers ev to all subscribers before returning.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	for _, fn := range b.subs {
		fn(ev)
	}
}
