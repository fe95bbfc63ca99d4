package track

import (
	"github.com/cxd309/railsim-engine/internal/events"
)

// PointState is the routing state of a switch piece.
type PointState string

const (
	PointNormal  PointState = "normal"
	PointReverse PointState = "reverse"
)

// Points tracks per-piece switch state. A piece is a switch only if it
// owns more than one edge at one of its nodes; non-branching pieces are
// never stored. State defaults to normal on first query and changes only
// through Toggle or SetState, each of which emits a PointChanged event.
// Changes are instantaneous and synchronous with the call.
type Points struct {
	graph  *Graph
	states map[PieceID]PointState
	bus    *events.Bus
}

// NewPoints returns a Points bound to the graph. bus may be nil, in which
// case state-change events are discarded.
func NewPoints(g *Graph, bus *events.Bus) *Points {
	return &Points{
		graph:  g,
		states: make(map[PieceID]PointState),
		bus:    bus,
	}
}

// IsSwitch reports whether the piece owns more than one edge at any
// single node, i.e. has a branching node governed by point state.
func (p *Points) IsSwitch(piece PieceID) bool {
	counts := make(map[NodeID]int)
	for _, eid := range p.graph.PieceEdges(piece) {
		e, ok := p.graph.Edge(eid)
		if !ok {
			continue
		}
		counts[e.From]++
		counts[e.To]++
		if counts[e.From] > 1 || counts[e.To] > 1 {
			return true
		}
	}
	return false
}

// State returns the piece's routing state, creating a normal entry on
// first query of a switch piece. Non-switch pieces always read as normal
// without being stored.
func (p *Points) State(piece PieceID) PointState {
	if s, ok := p.states[piece]; ok {
		return s
	}
	if p.IsSwitch(piece) {
		p.states[piece] = PointNormal
	}
	return PointNormal
}

// Toggle flips the piece's state and returns the new value.
func (p *Points) Toggle(piece PieceID) PointState {
	next := PointReverse
	if p.State(piece) == PointReverse {
		next = PointNormal
	}
	p.SetState(piece, next)
	return next
}

// SetState sets the piece's state, emitting PointChanged if it changed.
func (p *Points) SetState(piece PieceID, state PointState) {
	if p.State(piece) == state {
		p.states[piece] = state
		return
	}
	p.states[piece] = state
	p.bus.Publish(events.PointChanged{Piece: piece, NewState: string(state)})
}

// Clear resets all switch state, as on a layout clear. No events are
// emitted; the layout is gone, so there is nothing to click.
func (p *Points) Clear() {
	p.states = make(map[PieceID]PointState)
}
