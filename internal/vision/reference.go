package vision

import (
	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// Reference is the externally supplied camera pose attached to a frame: a
// translation (x, z) in meters and an orientation quaternion, plus the
// source's tracking flag. It is read-only input, never mutated here.
type Reference struct {
	TX float64 `json:"tx"`
	TZ float64 `json:"tz"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`

	Tracking bool `json:"tracking"`
}

// Planar projects the reference onto the walking plane. The source's z axis
// points backwards, so planar y is the negated z translation.
func (r Reference) Planar() pose.Pose2D {
	return pose.Pose2D{
		X:     r.TX,
		Y:     -r.TZ,
		Theta: pose.YawFromQuaternion(r.QX, r.QY, r.QZ, r.QW),
	}
}
