package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/railsim-engine/internal/geom"
)

const (
	// maxCandidates bounds the worst-case search cost on huge layouts.
	maxCandidates = 500
	// sampleCount is the number of evenly spaced parametric samples taken
	// per edge before refinement.
	sampleCount = 20
	// refineIterations is the number of ternary-narrowing steps run around
	// the best sample to reach sub-sample precision.
	refineIterations = 8
)

// Finder answers geometric queries over a track graph: nearest-edge
// search and direct parametric evaluation. It holds no state beyond the
// graph reference, so results always reflect the current layout.
type Finder struct {
	graph *Graph
}

// NewFinder returns a Finder over the graph.
func NewFinder(g *Graph) *Finder {
	return &Finder{graph: g}
}

// NearestResult is a point on an edge found by FindNearestEdge.
type NearestResult struct {
	Edge     EdgeID
	T        float64
	Distance float64 // metres from the query point
	Position mgl64.Vec3
	Forward  mgl64.Vec3 // unit tangent at Position, toward t=1
}

// FindOptions narrows a nearest-edge search. The zero value (or nil)
// applies no narrowing.
type FindOptions struct {
	// Exclude removes specific edges from consideration.
	Exclude map[EdgeID]bool
	// Piece restricts the search to edges owned by one piece.
	Piece PieceID
}

// FindNearestEdge returns the point on the track closest to p, or
// ok=false if no edge comes within maxDistance. Each candidate edge is
// sampled at sampleCount parametric points and the best sample is refined
// by a bounded ternary search; the global best across all edges wins.
// Degenerate edges (missing endpoints) are skipped, never fatal.
func (f *Finder) FindNearestEdge(p mgl64.Vec3, maxDistance float64, opts *FindOptions) (NearestResult, bool) {
	best := NearestResult{Distance: maxDistance}
	found := false

	candidates := 0
	for _, e := range f.graph.Edges() {
		if candidates >= maxCandidates {
			break
		}
		if opts != nil {
			if opts.Exclude[e.ID] {
				continue
			}
			if opts.Piece != "" && e.Piece != opts.Piece {
				continue
			}
		}
		from, to, ok := f.graph.EdgeEndpoints(e.ID)
		if !ok {
			continue
		}
		candidates++

		t := bestSample(e.Curve, from, to, p)
		t = refine(e.Curve, from, to, p, t)
		pos, fwd := e.Curve.Eval(from, to, t)
		d := pos.Sub(p).Len()
		if d <= best.Distance {
			best = NearestResult{Edge: e.ID, T: t, Distance: d, Position: pos, Forward: fwd}
			found = true
		}
	}
	return best, found
}

// PositionOnEdge evaluates the edge at parameter t, returning the world
// position and forward tangent. Used once the caller already knows edge
// and t; no search is performed.
func (f *Finder) PositionOnEdge(id EdgeID, t float64) (mgl64.Vec3, mgl64.Vec3, bool) {
	e, ok := f.graph.Edge(id)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	from, to, ok := f.graph.EdgeEndpoints(id)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	pos, fwd := e.Curve.Eval(from, to, t)
	return pos, fwd, true
}

// bestSample scans sampleCount evenly spaced parameters and returns the
// one whose curve point lies closest to p.
func bestSample(c geom.Curve, from, to, p mgl64.Vec3) float64 {
	bestT := 0.0
	bestD := distanceAt(c, from, to, p, 0)
	for i := 1; i < sampleCount; i++ {
		t := float64(i) / float64(sampleCount-1)
		if d := distanceAt(c, from, to, p, t); d < bestD {
			bestD = d
			bestT = t
		}
	}
	return bestT
}

// refine runs a bounded ternary search in the bracket one sample step
// either side of t. The distance-to-curve function is unimodal within a
// bracket this small for both straights and arcs.
func refine(c geom.Curve, from, to, p mgl64.Vec3, t float64) float64 {
	step := 1.0 / float64(sampleCount-1)
	lo := clamp01(t - step)
	hi := clamp01(t + step)
	for i := 0; i < refineIterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if distanceAt(c, from, to, p, m1) < distanceAt(c, from, to, p, m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return (lo + hi) / 2
}

func distanceAt(c geom.Curve, from, to, p mgl64.Vec3, t float64) float64 {
	pos, _ := c.Eval(from, to, t)
	return pos.Sub(p).Len()
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
