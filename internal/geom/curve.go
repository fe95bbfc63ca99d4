// Package geom provides parametric curve evaluation for track segments.
//
// A segment is evaluated between two endpoint positions with a parameter
// t in [0,1] (0 = start, 1 = end). Straight segments interpolate linearly;
// arc segments reconstruct the circle from the chord and sweep the start
// vector around its center. Every helper degrades to straight-line
// behaviour on degenerate input (zero chord, non-positive radius or sweep)
// rather than producing NaN.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CurveKind discriminates the supported segment shapes.
type CurveKind string

const (
	CurveStraight CurveKind = "straight"
	CurveArc      CurveKind = "arc"
)

// Curve describes the shape of a track segment. The zero value is a
// straight segment.
//
// For arcs, Direction selects which side of the chord the circle center
// lies on: +1 places it on the left of travel, -1 on the right. A radius
// or sweep that is not positive makes the arc fall back to straight
// interpolation (fallback policy, not an error).
type Curve struct {
	Kind      CurveKind `json:"kind"`
	Radius    float64   `json:"radius,omitempty"`    // metres
	SweepDeg  float64   `json:"sweep_deg,omitempty"` // degrees
	Direction float64   `json:"direction,omitempty"` // +1 or -1
}

// Valid reports whether the curve can be evaluated as declared, i.e. an
// arc has usable parameters. Straight curves are always valid.
func (c Curve) Valid() bool {
	if c.Kind != CurveArc {
		return true
	}
	return c.Radius > 0 && c.SweepDeg > 0 && (c.Direction == 1 || c.Direction == -1)
}

// Length returns the arc length between start and end, falling back to
// the chord length when the curve is not a usable arc.
func (c Curve) Length(start, end mgl64.Vec3) float64 {
	if c.Kind == CurveArc && c.Valid() {
		return c.Radius * mgl64.DegToRad(c.SweepDeg)
	}
	return end.Sub(start).Len()
}

// Eval returns the position and unit forward tangent at parameter t on
// the curve from start to end. t is clamped to [0,1].
func (c Curve) Eval(start, end mgl64.Vec3, t float64) (mgl64.Vec3, mgl64.Vec3) {
	t = clamp01(t)
	if c.Kind == CurveArc && c.Valid() {
		return evalArc(start, end, c.Radius, mgl64.DegToRad(c.SweepDeg), c.Direction, t)
	}
	return evalStraight(start, end, t)
}

func evalStraight(start, end mgl64.Vec3, t float64) (mgl64.Vec3, mgl64.Vec3) {
	chord := end.Sub(start)
	pos := start.Add(chord.Mul(t))
	if chord.Len() < epsilon {
		return start, defaultForward
	}
	return pos, chord.Normalize()
}

// evalArc reconstructs the circle center from the chord: the center sits
// on the chord's perpendicular bisector, offset by sqrt(r² − (chord/2)²)
// toward the signed curve direction. The point at t is the start radius
// vector rotated about the vertical axis by t×sweep×dir, and the forward
// tangent is that radius vector rotated a further 90° in the direction of
// travel. Height (Y) is interpolated linearly along the chord.
func evalArc(start, end mgl64.Vec3, radius, sweep, dir, t float64) (mgl64.Vec3, mgl64.Vec3) {
	chord := end.Sub(start)
	flat := mgl64.Vec3{chord.X(), 0, chord.Z()}
	if flat.Len() < epsilon {
		return evalStraight(start, end, t)
	}

	half := flat.Len() / 2
	offset := 0.0
	if radius > half {
		offset = math.Sqrt(radius*radius - half*half)
	}
	perp := rotateY(flat.Normalize(), math.Pi/2)
	mid := start.Add(flat.Mul(0.5))
	center := mid.Add(perp.Mul(offset * dir))

	radial := start.Sub(center)
	radial[1] = 0
	angle := t * sweep * dir
	swept := rotateY(radial, angle)

	pos := center.Add(swept)
	pos[1] = start.Y() + (end.Y()-start.Y())*t

	forward := rotateY(swept, dir*math.Pi/2)
	if forward.Len() < epsilon {
		return pos, defaultForward
	}
	return pos, forward.Normalize()
}

// rotateY rotates v about the +Y axis by angle radians (right-handed:
// a positive angle carries +X toward -Z).
func rotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	sin, cos := math.Sincos(angle)
	return mgl64.Vec3{
		v.X()*cos + v.Z()*sin,
		v.Y(),
		-v.X()*sin + v.Z()*cos,
	}
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

const epsilon = 1e-9

// defaultForward is the tangent reported for degenerate segments where no
// direction of travel can be derived.
var defaultForward = mgl64.Vec3{1, 0, 0}
