// Package train implements the per-train path follower state machine and
// the motion unit that binds it to a physics model.
package train

import (
	"math"

	"github.com/cxd309/railsim-engine/internal/geom"
	"github.com/cxd309/railsim-engine/internal/track"
)

// TrackPosition locates a train on the graph: an edge, a parametric
// position t in [0,1], and a direction of travel (+1 toward t=1, -1
// toward t=0). Owned exclusively by one Follower.
type TrackPosition struct {
	Edge      track.EdgeID `json:"edge"`
	T         float64      `json:"t"`
	Direction int          `json:"direction"` // +1 or -1
}

// AdvanceResult reports what happened during one Advance call.
type AdvanceResult struct {
	// HitDeadEnd is set when the train ran out of edges; DeadEndNode is
	// the node it stopped at. Leftover distance past a dead end is
	// discarded, not carried over.
	HitDeadEnd  bool
	DeadEndNode track.NodeID
	// WentOffTrack is set when the occupied edge no longer exists in the
	// graph; the follower transitions to the off-track state.
	WentOffTrack bool
}

// maxCrossings bounds the node-crossing loop so a malformed layout (e.g.
// a tight cycle shorter than one tick's travel at absurd speed) cannot
// hang a tick.
const maxCrossings = 1000

// Follower advances a TrackPosition along the graph, resolving branch
// choices through the points state. Switch state is re-read fresh at
// every crossing, so a toggle between ticks changes the next crossing but
// never a position already committed.
type Follower struct {
	graph  *track.Graph
	points *track.Points
	finder *track.Finder

	// heightOffset lifts the reported pose along the up axis so the
	// visual model sits on the railhead. Output concern only.
	heightOffset float64

	pos     TrackPosition
	onTrack bool
}

// NewFollower returns an off-track Follower bound to the graph and points
// state. heightOffset is applied to every reported pose.
func NewFollower(g *track.Graph, p *track.Points, heightOffset float64) *Follower {
	return &Follower{
		graph:        g,
		points:       p,
		finder:       track.NewFinder(g),
		heightOffset: heightOffset,
	}
}

// PlaceOnEdge puts the train at parameter t on the edge, facing
// direction. Fails if the edge is unknown. direction values other than
// -1 are treated as +1.
func (f *Follower) PlaceOnEdge(id track.EdgeID, t float64, direction int) bool {
	if _, ok := f.graph.Edge(id); !ok {
		return false
	}
	if direction != -1 {
		direction = 1
	}
	f.pos = TrackPosition{Edge: id, T: clamp01(t), Direction: direction}
	f.onTrack = true
	return true
}

// PlaceAtNode puts the train at the node on one of its incident edges,
// preferring preferred if it is incident, and facing away from the node.
// Fails if the node is unknown or has no incident edges.
func (f *Follower) PlaceAtNode(id track.NodeID, preferred track.EdgeID) bool {
	incident := f.graph.EdgesAt(id)
	if len(incident) == 0 {
		return false
	}
	chosen := incident[0]
	if preferred != "" {
		for _, eid := range incident {
			if eid == preferred {
				chosen = eid
				break
			}
		}
	}
	e, ok := f.graph.Edge(chosen)
	if !ok {
		return false
	}
	if e.From == id {
		f.pos = TrackPosition{Edge: chosen, T: 0, Direction: 1}
	} else {
		f.pos = TrackPosition{Edge: chosen, T: 1, Direction: -1}
	}
	f.onTrack = true
	return true
}

// Advance moves the train by distance metres along the track. A negative
// distance moves against the stored direction. Node crossings are
// resolved per crossing: a single continuation is followed, a branch is
// routed by the owning piece's point state, and no continuation stops the
// train exactly at the node and reports a dead end.
func (f *Follower) Advance(distance float64) AdvanceResult {
	if !f.onTrack || distance == 0 {
		return AdvanceResult{}
	}
	e, ok := f.graph.Edge(f.pos.Edge)
	if !ok {
		f.onTrack = false
		return AdvanceResult{WentOffTrack: true}
	}

	// heading is the direction of this motion in parametric terms:
	// +1 toward To, -1 toward From.
	heading := f.pos.Direction
	motion := 1
	if distance < 0 {
		heading = -heading
		motion = -1
	}
	remaining := math.Abs(distance)

	for crossings := 0; ; crossings++ {
		var toExit float64
		var exitNode track.NodeID
		var exitT float64
		if heading > 0 {
			toExit = (1 - f.pos.T) * e.Length
			exitNode, exitT = e.To, 1
		} else {
			toExit = f.pos.T * e.Length
			exitNode, exitT = e.From, 0
		}

		if remaining < toExit {
			f.pos.T += float64(heading) * remaining / e.Length
			f.pos.T = clamp01(f.pos.T)
			return AdvanceResult{}
		}
		remaining -= toExit

		next, ok := f.resolveBranch(exitNode, e.ID)
		if !ok || crossings >= maxCrossings {
			f.pos.T = exitT
			return AdvanceResult{HitDeadEnd: true, DeadEndNode: exitNode}
		}

		// Enter the new edge at the crossed node, travelling away from it.
		e = next
		f.pos.Edge = next.ID
		if next.From == exitNode {
			f.pos.T = 0
			heading = 1
		} else {
			f.pos.T = 1
			heading = -1
		}
		f.pos.Direction = heading * motion
	}
}

// resolveBranch picks the edge to continue onto at node, excluding the
// edge just traversed. With one candidate there is no choice. With
// several, the owning switch piece is the first piece (in candidate
// order) owning at least two of the candidates; its state selects the
// first (normal) or second (reverse) of its candidates in edge insertion
// order. When no piece can be resolved, or the selected slot is missing,
// the first candidate in insertion order wins, so the choice is
// deterministic and never depends on map iteration.
func (f *Follower) resolveBranch(node track.NodeID, exclude track.EdgeID) (track.Edge, bool) {
	var candidates []track.Edge
	for _, eid := range f.graph.EdgesAt(node) {
		if eid == exclude {
			continue
		}
		if e, ok := f.graph.Edge(eid); ok {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return track.Edge{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	for _, c := range candidates {
		owned := make([]track.Edge, 0, 2)
		for _, e := range candidates {
			if e.Piece == c.Piece {
				owned = append(owned, e)
			}
		}
		if len(owned) < 2 {
			continue
		}
		if f.points.State(c.Piece) == track.PointReverse {
			return owned[1], true
		}
		return owned[0], true
	}
	return candidates[0], true
}

// ReverseDirection flips the stored direction without moving the train.
func (f *Follower) ReverseDirection() {
	if f.onTrack {
		f.pos.Direction = -f.pos.Direction
	}
}

// OnTrack reports whether the train currently occupies an edge.
func (f *Follower) OnTrack() bool { return f.onTrack }

// ClearTrack takes the train off the track, e.g. on layout clear.
func (f *Follower) ClearTrack() {
	f.pos = TrackPosition{}
	f.onTrack = false
}

// TrackPosition returns the current position. Meaningful only while
// OnTrack reports true.
func (f *Follower) TrackPosition() TrackPosition { return f.pos }

// WorldPose computes the train's world transform from its track position,
// lifted by the height offset. If the occupied edge has been deleted the
// follower transitions off-track and reports ok=false.
func (f *Follower) WorldPose() (geom.Pose, bool) {
	if !f.onTrack {
		return geom.Pose{}, false
	}
	pos, fwd, ok := f.finder.PositionOnEdge(f.pos.Edge, f.pos.T)
	if !ok {
		f.onTrack = false
		return geom.Pose{}, false
	}
	if f.pos.Direction < 0 {
		fwd = fwd.Mul(-1)
	}
	return geom.PoseAt(pos.Add(geom.Up.Mul(f.heightOffset)), fwd), true
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
