package layout

import (
	"math"
	"testing"

	"github.com/cxd309/railsim-engine/internal/geom"
)

func TestBuildDefaultsLengthFromGeometry(t *testing.T) {
	data := LayoutData{
		Nodes: []NodeData{
			{ID: "a", Pos: [3]float64{0, 0, 0}},
			{ID: "b", Pos: [3]float64{3, 0, 4}},
			{ID: "c", Pos: [3]float64{4, 0, 3}},
		},
		Edges: []EdgeData{
			{ID: "straight", Piece: "p1", From: "a", To: "b"},
			{ID: "arc", Piece: "p2", From: "a", To: "c", Curve: geom.Curve{
				Kind: geom.CurveArc, Radius: 2, SweepDeg: 90, Direction: 1,
			}},
			{ID: "explicit", Piece: "p3", From: "b", To: "c", Length: 7},
		},
	}
	g, err := Build(data)
	if err != nil {
		t.Fatal(err)
	}

	e, _ := g.Edge("straight")
	if math.Abs(e.Length-5) > 1e-9 {
		t.Errorf("straight length = %g, want 5 (chord)", e.Length)
	}
	e, _ = g.Edge("arc")
	if want := 2 * math.Pi / 2; math.Abs(e.Length-want) > 1e-9 {
		t.Errorf("arc length = %g, want %g", e.Length, want)
	}
	e, _ = g.Edge("explicit")
	if e.Length != 7 {
		t.Errorf("explicit length = %g, want 7", e.Length)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	base := LayoutData{
		Nodes: []NodeData{{ID: "a"}, {ID: "b", Pos: [3]float64{1, 0, 0}}},
	}

	bad := base
	bad.Edges = []EdgeData{{ID: "e", From: "a", To: "missing"}}
	if _, err := Build(bad); err == nil {
		t.Error("dangling edge accepted")
	}

	bad = base
	bad.Edges = []EdgeData{{ID: "e", From: "a", To: "b", Curve: geom.Curve{Kind: "spiral"}}}
	if _, err := Build(bad); err == nil {
		t.Error("unknown curve kind accepted")
	}

	bad = base
	bad.Nodes = append([]NodeData{}, base.Nodes...)
	bad.Nodes = append(bad.Nodes, NodeData{ID: "a"})
	if _, err := Build(bad); err == nil {
		t.Error("duplicate node accepted")
	}
}
