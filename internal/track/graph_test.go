package track

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	nodes := []Node{
		{ID: "a", Pos: mgl64.Vec3{0, 0, 0}},
		{ID: "b", Pos: mgl64.Vec3{1, 0, 0}},
		{ID: "c", Pos: mgl64.Vec3{2, 0, 0}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %s", n.ID, err)
		}
	}
	edges := []Edge{
		{ID: "e1", Piece: "p1", From: "a", To: "b", Length: 1},
		{ID: "e2", Piece: "p2", From: "b", To: "c", Length: 1},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %s", e.ID, err)
		}
	}
	return g
}

func TestGraphIntegrity(t *testing.T) {
	g := buildTestGraph(t)

	// Every edge endpoint resolves, and EdgesAt returns exactly the edges
	// touching each node.
	for _, e := range g.Edges() {
		if _, ok := g.Node(e.From); !ok {
			t.Errorf("edge %s: from node %s unresolved", e.ID, e.From)
		}
		if _, ok := g.Node(e.To); !ok {
			t.Errorf("edge %s: to node %s unresolved", e.ID, e.To)
		}
	}
	want := map[NodeID][]EdgeID{
		"a": {"e1"},
		"b": {"e1", "e2"},
		"c": {"e2"},
	}
	for n, ids := range want {
		if diff := cmp.Diff(ids, g.EdgesAt(n)); diff != "" {
			t.Errorf("EdgesAt(%s) mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestGraphRejectsBadEdges(t *testing.T) {
	g := buildTestGraph(t)

	if err := g.AddEdge(Edge{ID: "e1", From: "a", To: "b", Length: 1}); err == nil {
		t.Error("duplicate edge accepted")
	}
	if err := g.AddEdge(Edge{ID: "e3", From: "a", To: "missing", Length: 1}); err == nil {
		t.Error("dangling edge accepted")
	}
	if err := g.AddEdge(Edge{ID: "e3", From: "a", To: "b", Length: 0}); err == nil {
		t.Error("zero-length edge accepted")
	}
}

func TestGraphLookupAbsence(t *testing.T) {
	g := buildTestGraph(t)

	if _, ok := g.Node("nope"); ok {
		t.Error("unknown node reported as found")
	}
	if _, ok := g.Edge("nope"); ok {
		t.Error("unknown edge reported as found")
	}
	if got := g.EdgesAt("nope"); len(got) != 0 {
		t.Errorf("EdgesAt(unknown) = %v, want empty", got)
	}
}

func TestRemoveEdgeUpdatesIndices(t *testing.T) {
	g := buildTestGraph(t)

	if !g.RemoveEdge("e1") {
		t.Fatal("RemoveEdge(e1) = false")
	}
	if g.RemoveEdge("e1") {
		t.Error("removing twice succeeded")
	}
	if got := g.EdgesAt("a"); len(got) != 0 {
		t.Errorf("EdgesAt(a) = %v after removal", got)
	}
	if diff := cmp.Diff([]EdgeID{"e2"}, g.EdgesAt("b")); diff != "" {
		t.Errorf("EdgesAt(b) mismatch (-want +got):\n%s", diff)
	}
	if got := g.PieceEdges("p1"); len(got) != 0 {
		t.Errorf("PieceEdges(p1) = %v after removal", got)
	}
}

func TestRemoveNodeRequiresCascade(t *testing.T) {
	g := buildTestGraph(t)

	if err := g.RemoveNode("b", false); err == nil {
		t.Fatal("RemoveNode with incident edges succeeded without cascade")
	}
	if err := g.RemoveNode("b", true); err != nil {
		t.Fatalf("cascaded RemoveNode: %s", err)
	}
	if _, ok := g.Node("b"); ok {
		t.Error("node b still present")
	}
	if _, ok := g.Edge("e1"); ok {
		t.Error("edge e1 survived cascade")
	}
	if _, ok := g.Edge("e2"); ok {
		t.Error("edge e2 survived cascade")
	}
}

func TestEdgesInsertionOrder(t *testing.T) {
	g := buildTestGraph(t)

	ids := make([]EdgeID, 0, 2)
	for _, e := range g.Edges() {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]EdgeID{"e1", "e2"}, ids); diff != "" {
		t.Errorf("Edges() order mismatch (-want +got):\n%s", diff)
	}
}
