package train

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/railsim-engine/internal/events"
	"github.com/cxd309/railsim-engine/internal/physics"
	"github.com/cxd309/railsim-engine/internal/track"
)

func collectEvents(bus *events.Bus) *[]events.Event {
	var got []events.Event
	bus.Subscribe(func(ev events.Event) { got = append(got, ev) })
	return &got
}

func hasEvent(evs []events.Event, match func(events.Event) bool) bool {
	for _, ev := range evs {
		if match(ev) {
			return true
		}
	}
	return false
}

// End-to-end: a train on a single 0.5 m edge, full throttle at
// 0.15 m/s max, must reach the far node, report a dead end, and come to
// rest under the emergency brake.
func TestRunIntoDeadEnd(t *testing.T) {
	g := track.NewGraph()
	if err := g.AddNode(track.Node{ID: "a", Pos: mgl64.Vec3{0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(track.Node{ID: "b", Pos: mgl64.Vec3{0.5, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(track.Edge{ID: "e", Piece: "p", From: "a", To: "b", Length: 0.5}); err != nil {
		t.Fatal(err)
	}

	bus := &events.Bus{}
	got := collectEvents(bus)
	points := track.NewPoints(g, bus)

	cfg := physics.DefaultConfig()
	cfg.MaxSpeed = 0.15
	u, err := NewUnit("loco", g, points, cfg, 0, bus)
	if err != nil {
		t.Fatal(err)
	}
	if !u.PlaceOnEdge("e", 0, 1) {
		t.Fatal("placement failed")
	}

	u.SetThrottle(1)
	deadEnd := false
	for i := 0; i < 2000 && !deadEnd; i++ {
		u.Update(0.016)
		deadEnd = hasEvent(*got, func(ev events.Event) bool {
			de, ok := ev.(events.DeadEndReached)
			return ok && de.Train == "loco" && de.Node == "b"
		})
	}
	if !deadEnd {
		t.Fatal("never reached the dead end at b")
	}
	if got := u.TrackPosition().T; got != 1 {
		t.Errorf("t = %g at dead end, want 1", got)
	}
	if u.Brake() != physics.BrakeEmergency && u.Speed() > 0 {
		t.Errorf("no emergency response: brake=%s speed=%g", u.Brake(), u.Speed())
	}

	// The train settles to rest and reports it.
	for i := 0; i < 2000 && u.Speed() > 0; i++ {
		u.Update(0.016)
	}
	if u.Speed() != 0 {
		t.Fatal("train never stopped after dead end")
	}
	if !hasEvent(*got, func(ev events.Event) bool {
		st, ok := ev.(events.Stopped)
		return ok && st.Train == "loco"
	}) {
		t.Error("Stopped event missing")
	}
}

func TestStartedEventOnFirstMotion(t *testing.T) {
	g := track.NewGraph()
	if err := g.AddNode(track.Node{ID: "a", Pos: mgl64.Vec3{0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(track.Node{ID: "b", Pos: mgl64.Vec3{5, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(track.Edge{ID: "e", Piece: "p", From: "a", To: "b", Length: 5}); err != nil {
		t.Fatal(err)
	}
	bus := &events.Bus{}
	got := collectEvents(bus)
	u, err := NewUnit("loco", g, track.NewPoints(g, bus), physics.DefaultConfig(), 0, bus)
	if err != nil {
		t.Fatal(err)
	}
	u.PlaceOnEdge("e", 0.5, 1)

	u.Update(0.016)
	if hasEvent(*got, func(ev events.Event) bool { _, ok := ev.(events.Started); return ok }) {
		t.Error("Started emitted with zero throttle")
	}

	u.SetThrottle(0.5)
	u.Update(0.016)
	if !hasEvent(*got, func(ev events.Event) bool {
		st, ok := ev.(events.Started)
		return ok && st.Train == "loco"
	}) {
		t.Error("Started event missing")
	}
}

func TestHornAndDirectionEvents(t *testing.T) {
	g := track.NewGraph()
	if err := g.AddNode(track.Node{ID: "a", Pos: mgl64.Vec3{0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(track.Node{ID: "b", Pos: mgl64.Vec3{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(track.Edge{ID: "e", Piece: "p", From: "a", To: "b", Length: 1}); err != nil {
		t.Fatal(err)
	}
	bus := &events.Bus{}
	got := collectEvents(bus)
	u, err := NewUnit("loco", g, track.NewPoints(g, bus), physics.DefaultConfig(), 0, bus)
	if err != nil {
		t.Fatal(err)
	}
	u.PlaceOnEdge("e", 0.5, 1)

	u.Horn()
	if !hasEvent(*got, func(ev events.Event) bool { _, ok := ev.(events.HornSounded); return ok }) {
		t.Error("HornSounded missing")
	}

	// At rest a direction change applies and reports immediately.
	if !u.SetDirection(physics.DirectionReverse) {
		t.Error("direction change at rest did not apply")
	}
	if !hasEvent(*got, func(ev events.Event) bool {
		dc, ok := ev.(events.DirectionChanged)
		return ok && dc.Direction == string(physics.DirectionReverse)
	}) {
		t.Error("DirectionChanged missing")
	}
}

func TestGeneratedTrainID(t *testing.T) {
	g := track.NewGraph()
	u, err := NewUnit("", g, track.NewPoints(g, nil), physics.DefaultConfig(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" {
		t.Error("empty train ID not generated")
	}
}

func TestDeferredDirectionChangeEmitsEvent(t *testing.T) {
	g := track.NewGraph()
	if err := g.AddNode(track.Node{ID: "a", Pos: mgl64.Vec3{0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(track.Node{ID: "b", Pos: mgl64.Vec3{100, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(track.Edge{ID: "e", Piece: "p", From: "a", To: "b", Length: 100}); err != nil {
		t.Fatal(err)
	}
	bus := &events.Bus{}
	got := collectEvents(bus)
	u, err := NewUnit("loco", g, track.NewPoints(g, bus), physics.DefaultConfig(), 0, bus)
	if err != nil {
		t.Fatal(err)
	}
	u.PlaceOnEdge("e", 0.1, 1)

	u.SetThrottle(1)
	for i := 0; i < 200; i++ {
		u.Update(0.016)
	}
	if u.SetDirection(physics.DirectionReverse) {
		t.Fatal("direction change applied at speed")
	}

	u.SetThrottle(0)
	u.ApplyBrake()
	for i := 0; i < 2000 && u.Direction() != physics.DirectionReverse; i++ {
		u.Update(0.016)
	}
	if !hasEvent(*got, func(ev events.Event) bool {
		dc, ok := ev.(events.DirectionChanged)
		return ok && dc.Direction == string(physics.DirectionReverse)
	}) {
		t.Error("deferred DirectionChanged missing")
	}
}
