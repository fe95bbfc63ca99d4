// Package track holds the track layout graph, the points (switch) routing
// state, and the geometric edge finder.
//
// The graph is mutated only by layout-editing operations, never during a
// simulation tick; all trains share read access. Lookups report absence
// through an ok bool because a missing node or edge is an expected outcome
// of normal interactive use (e.g. a click that lands off-track), not an
// error condition.
package track

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/slices"

	"github.com/cxd309/railsim-engine/internal/geom"
)

// NodeID, EdgeID, PieceID are string aliases used as identifiers.
type (
	NodeID  = string
	EdgeID  = string
	PieceID = string
)

// Node is a connector junction between track pieces. Its position is
// immutable after creation.
type Node struct {
	ID  NodeID     `json:"node_id"`
	Pos mgl64.Vec3 `json:"pos"` // metres
}

// Edge is a traversable track segment between two nodes. Parameter t runs
// from 0 at From to 1 at To. Length must be positive.
type Edge struct {
	ID     EdgeID     `json:"edge_id"`
	Piece  PieceID    `json:"piece_id"` // owning track piece
	From   NodeID     `json:"from"`
	To     NodeID     `json:"to"`
	Length float64    `json:"length"` // metres
	Curve  geom.Curve `json:"curve"`
}

// Graph is the track layout: node and edge maps plus an adjacency index
// maintained incrementally on insert and remove. Incident edge lists keep
// insertion order, which branch resolution relies on for determinism.
type Graph struct {
	nodes      map[NodeID]Node
	edges      map[EdgeID]Edge
	incident   map[NodeID][]EdgeID
	pieceEdges map[PieceID][]EdgeID
	order      []EdgeID // edge insertion order
}

// NewGraph returns an empty track graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[NodeID]Node),
		edges:      make(map[EdgeID]Edge),
		incident:   make(map[NodeID][]EdgeID),
		pieceEdges: make(map[PieceID][]EdgeID),
	}
}

// AddNode adds a node. Returns an error if the node ID already exists.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("node %q already exists", n.ID)
	}
	g.nodes[n.ID] = n
	return nil
}

// AddEdge adds an edge. Returns an error if the edge ID already exists,
// either endpoint node is missing, or the length is not positive.
func (g *Graph) AddEdge(e Edge) error {
	if _, exists := g.edges[e.ID]; exists {
		return fmt.Errorf("edge %q already exists", e.ID)
	}
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("edge %q: from node %q not found", e.ID, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("edge %q: to node %q not found", e.ID, e.To)
	}
	if e.Length <= 0 {
		return fmt.Errorf("edge %q: length must be positive, got %g", e.ID, e.Length)
	}
	g.edges[e.ID] = e
	g.incident[e.From] = append(g.incident[e.From], e.ID)
	if e.To != e.From {
		g.incident[e.To] = append(g.incident[e.To], e.ID)
	}
	g.pieceEdges[e.Piece] = append(g.pieceEdges[e.Piece], e.ID)
	g.order = append(g.order, e.ID)
	return nil
}

// RemoveEdge removes an edge, updating the adjacency and piece indices.
// Reports whether the edge existed.
func (g *Graph) RemoveEdge(id EdgeID) bool {
	e, ok := g.edges[id]
	if !ok {
		return false
	}
	delete(g.edges, id)
	g.incident[e.From] = remove(g.incident[e.From], id)
	g.incident[e.To] = remove(g.incident[e.To], id)
	g.pieceEdges[e.Piece] = remove(g.pieceEdges[e.Piece], id)
	if len(g.pieceEdges[e.Piece]) == 0 {
		delete(g.pieceEdges, e.Piece)
	}
	g.order = remove(g.order, id)
	return true
}

// RemoveNode removes a node. If edges are still incident it fails unless
// cascade is set, in which case the incident edges are removed first.
func (g *Graph) RemoveNode(id NodeID, cascade bool) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("node %q not found", id)
	}
	if inc := g.incident[id]; len(inc) > 0 {
		if !cascade {
			return fmt.Errorf("node %q has %d incident edges", id, len(inc))
		}
		for _, eid := range slices.Clone(inc) {
			g.RemoveEdge(eid)
		}
	}
	delete(g.nodes, id)
	delete(g.incident, id)
	return nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge looks up an edge by ID.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.edges[id])
	}
	return out
}

// EdgesAt returns the IDs of edges incident to the node, in insertion
// order. The returned slice is a copy.
func (g *Graph) EdgesAt(id NodeID) []EdgeID {
	return slices.Clone(g.incident[id])
}

// PieceEdges returns the IDs of edges owned by the piece, in insertion order.
func (g *Graph) PieceEdges(id PieceID) []EdgeID {
	return slices.Clone(g.pieceEdges[id])
}

// EdgeEndpoints resolves an edge's endpoint positions. A dangling node
// reference is a programming error elsewhere, so ok is false only when
// the edge itself or a referenced node is absent.
func (g *Graph) EdgeEndpoints(id EdgeID) (from, to mgl64.Vec3, ok bool) {
	e, ok := g.edges[id]
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	fn, ok1 := g.nodes[e.From]
	tn, ok2 := g.nodes[e.To]
	if !ok1 || !ok2 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return fn.Pos, tn.Pos, true
}

// Clear removes all nodes and edges.
func (g *Graph) Clear() {
	g.nodes = make(map[NodeID]Node)
	g.edges = make(map[EdgeID]Edge)
	g.incident = make(map[NodeID][]EdgeID)
	g.pieceEdges = make(map[PieceID][]EdgeID)
	g.order = nil
}

func remove(ids []EdgeID, id EdgeID) []EdgeID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
