package pose

import (
	"math"
)

// Pose2D is a planar pose: position in meters, heading in radians.
// Theta is 0 along the initial facing direction, positive counter-clockwise.
// Pose2D is a value type; updates produce a new instance.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Add returns the component-wise sum of p and d, with the heading normalized.
func (p Pose2D) Add(d Pose2D) Pose2D {
	return Pose2D{
		X:     p.X + d.X,
		Y:     p.Y + d.Y,
		Theta: NormalizeAngle(p.Theta + d.Theta),
	}
}

// Sub returns the component-wise difference p − o, with the heading normalized.
func (p Pose2D) Sub(o Pose2D) Pose2D {
	return Pose2D{
		X:     p.X - o.X,
		Y:     p.Y - o.Y,
		Theta: NormalizeAngle(p.Theta - o.Theta),
	}
}

// Step returns p advanced by length meters along heading theta, facing theta.
func (p Pose2D) Step(length, theta float64) Pose2D {
	return Pose2D{
		X:     p.X + length*math.Cos(theta),
		Y:     p.Y + length*math.Sin(theta),
		Theta: NormalizeAngle(theta),
	}
}

// NormalizeAngle wraps a into (−π, π].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// YawFromQuaternion extracts the yaw (rotation about the vertical axis), in
// radians, from a unit quaternion:
//
//	yaw = atan2(2(qw·qz + qx·qy), 1 − 2(qy² + qz²))
func YawFromQuaternion(qx, qy, qz, qw float64) float64 {
	return math.Atan2(2*(qw*qz+qx*qy), 1-2*(qy*qy+qz*qz))
}
