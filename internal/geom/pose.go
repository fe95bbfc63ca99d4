package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a world transform computed by the simulation core each tick.
// The rendering layer copies it onto a visual entity; the core never
// holds a reference into a scene graph.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Up is the world up axis used for height offsets and yaw rotation.
var Up = mgl64.Vec3{0, 1, 0}

// PoseAt builds a Pose facing along forward. Orientation is a yaw about
// the up axis (rolling stock stays level); a degenerate forward vector
// yields the identity rotation.
func PoseAt(position, forward mgl64.Vec3) Pose {
	flat := mgl64.Vec3{forward.X(), 0, forward.Z()}
	if flat.Len() < epsilon {
		return Pose{Position: position, Rotation: mgl64.QuatIdent()}
	}
	yaw := math.Atan2(-flat.Z(), flat.X())
	return Pose{Position: position, Rotation: mgl64.QuatRotate(yaw, Up)}
}
