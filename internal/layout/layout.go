// Package layout defines the JSON input representation of a track layout
// and builds the runtime track graph from it.
package layout

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/cxd309/railsim-engine/internal/geom"
	"github.com/cxd309/railsim-engine/internal/track"
)

// NodeData is the serialisable form of a track node.
type NodeData struct {
	ID  string     `json:"node_id"`
	Pos [3]float64 `json:"pos"` // metres, [x y z]
}

// EdgeData is the serialisable form of a track edge. Length is optional:
// when zero it is derived from the geometry (chord length for straights,
// radius × sweep for arcs).
type EdgeData struct {
	ID     string     `json:"edge_id"`
	Piece  string     `json:"piece_id"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Length float64    `json:"length,omitempty"` // metres
	Curve  geom.Curve `json:"curve"`
}

// LayoutData is the serialisable input representation of a layout.
type LayoutData struct {
	Nodes []NodeData `json:"nodes"`
	Edges []EdgeData `json:"edges"`
}

// Build constructs a track graph from data. Nodes are added before edges
// so edge endpoint validation applies; any invalid reference aborts the
// build with a wrapped error naming the offending element.
func Build(data LayoutData) (*track.Graph, error) {
	g := track.NewGraph()
	for _, n := range data.Nodes {
		node := track.Node{
			ID:  n.ID,
			Pos: mgl64.Vec3{n.Pos[0], n.Pos[1], n.Pos[2]},
		}
		if err := g.AddNode(node); err != nil {
			return nil, errors.Wrap(err, "adding node")
		}
	}
	for _, e := range data.Edges {
		if e.Curve.Kind != "" && e.Curve.Kind != geom.CurveStraight && e.Curve.Kind != geom.CurveArc {
			return nil, errors.Errorf("edge %q: unknown curve kind %q", e.ID, e.Curve.Kind)
		}
		length := e.Length
		if length == 0 {
			from, ok1 := g.Node(e.From)
			to, ok2 := g.Node(e.To)
			if !ok1 || !ok2 {
				return nil, errors.Errorf("edge %q: endpoint node not found", e.ID)
			}
			length = e.Curve.Length(from.Pos, to.Pos)
		}
		edge := track.Edge{
			ID:     e.ID,
			Piece:  e.Piece,
			From:   e.From,
			To:     e.To,
			Length: length,
			Curve:  e.Curve,
		}
		if err := g.AddEdge(edge); err != nil {
			return nil, errors.Wrap(err, "adding edge")
		}
	}
	return g, nil
}
