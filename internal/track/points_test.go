package track

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"

	"github.com/cxd309/railsim-engine/internal/events"
)

// switchGraph builds a Y junction at node j: stem s->j owned by "plain",
// and two diverging edges j->n and j->r owned by switch piece "sw".
func switchGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	for _, n := range []Node{
		{ID: "s", Pos: mgl64.Vec3{-1, 0, 0}},
		{ID: "j", Pos: mgl64.Vec3{0, 0, 0}},
		{ID: "n", Pos: mgl64.Vec3{1, 0, 0}},
		{ID: "r", Pos: mgl64.Vec3{1, 0, 1}},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []Edge{
		{ID: "stem", Piece: "plain", From: "s", To: "j", Length: 1},
		{ID: "normal", Piece: "sw", From: "j", To: "n", Length: 1},
		{ID: "reverse", Piece: "sw", From: "j", To: "r", Length: 1.5},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestIsSwitch(t *testing.T) {
	g := switchGraph(t)
	p := NewPoints(g, nil)

	if !p.IsSwitch("sw") {
		t.Error("sw not detected as switch")
	}
	if p.IsSwitch("plain") {
		t.Error("plain detected as switch")
	}
	if p.IsSwitch("absent") {
		t.Error("absent piece detected as switch")
	}
}

func TestStateDefaultsToNormal(t *testing.T) {
	g := switchGraph(t)
	p := NewPoints(g, nil)

	if got := p.State("sw"); got != PointNormal {
		t.Errorf("State(sw) = %s, want normal", got)
	}
	if got := p.State("plain"); got != PointNormal {
		t.Errorf("State(plain) = %s, want normal", got)
	}
}

func TestToggleEmitsPointChanged(t *testing.T) {
	g := switchGraph(t)
	bus := &events.Bus{}
	var got []events.Event
	bus.Subscribe(func(ev events.Event) { got = append(got, ev) })
	p := NewPoints(g, bus)

	if st := p.Toggle("sw"); st != PointReverse {
		t.Errorf("Toggle = %s, want reverse", st)
	}
	if st := p.Toggle("sw"); st != PointNormal {
		t.Errorf("second Toggle = %s, want normal", st)
	}

	want := []events.Event{
		events.PointChanged{Piece: "sw", NewState: "reverse"},
		events.PointChanged{Piece: "sw", NewState: "normal"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestSetStateNoopEmitsNothing(t *testing.T) {
	g := switchGraph(t)
	bus := &events.Bus{}
	count := 0
	bus.Subscribe(func(events.Event) { count++ })
	p := NewPoints(g, bus)

	p.SetState("sw", PointNormal) // already the default
	if count != 0 {
		t.Errorf("setting default state emitted %d events", count)
	}
	p.SetState("sw", PointReverse)
	p.SetState("sw", PointReverse)
	if count != 1 {
		t.Errorf("got %d events, want 1", count)
	}
}

func TestClearResetsState(t *testing.T) {
	g := switchGraph(t)
	p := NewPoints(g, nil)

	p.SetState("sw", PointReverse)
	p.Clear()
	if got := p.State("sw"); got != PointNormal {
		t.Errorf("State after Clear = %s, want normal", got)
	}
}
