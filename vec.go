package isoslice

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a world-space vector.
type Vec3 = r3.Vec

// Quat is a rotation stored as a unit quaternion.
type Quat = quat.Number

// Identity is the rotation that leaves vectors unchanged.
var Identity = Quat{Real: 1}

// Axis directions of the left-handed, Y-up world frame.
var (
	Right   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Rotate applies the unit rotation q to v.
func Rotate(q Quat, v Vec3) Vec3 {
	p := quat.Mul(quat.Mul(q, Quat{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return Vec3{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// AxisAngle returns the rotation of angle radians around axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	n := r3.Norm(axis)
	if n == 0 {
		return Identity
	}
	a := r3.Scale(1/n, axis)
	s, c := math.Sincos(angle / 2)
	return Quat{Real: c, Imag: a.X * s, Jmag: a.Y * s, Kmag: a.Z * s}
}

// Euler returns the rotation for angles in degrees applied Z, then X, then Y.
func Euler(x, y, z float64) Quat {
	const rad = math.Pi / 180
	qx := AxisAngle(Right, x*rad)
	qy := AxisAngle(Up, y*rad)
	qz := AxisAngle(Forward, z*rad)
	return quat.Mul(qy, quat.Mul(qx, qz))
}

// FromToRotation returns the shortest rotation taking direction from onto to.
// A zero-length input yields Identity.
func FromToRotation(from, to Vec3) Quat {
	nf, nt := r3.Norm(from), r3.Norm(to)
	if nf == 0 || nt == 0 {
		return Identity
	}
	f := r3.Scale(1/nf, from)
	t := r3.Scale(1/nt, to)
	d := r3.Dot(f, t)
	if d >= 1-1e-12 {
		return Identity
	}
	if d <= -1+1e-12 {
		// Opposite directions: any perpendicular axis works.
		axis := r3.Cross(Right, f)
		if r3.Norm(axis) < 1e-6 {
			axis = r3.Cross(Up, f)
		}
		return AxisAngle(axis, math.Pi)
	}
	c := r3.Cross(f, t)
	q := Quat{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z}
	return quat.Scale(1/quat.Abs(q), q)
}

// Pose is a world-space position and rotation.
type Pose struct {
	Position Vec3
	Rotation Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: Identity}
}

// Right returns the pose's local +X axis in world space.
func (p Pose) Right() Vec3 { return Rotate(p.Rotation, Right) }

// Forward returns the pose's local +Z axis in world space.
func (p Pose) Forward() Vec3 { return Rotate(p.Rotation, Forward) }

// Up returns the pose's local +Y axis in world space.
func (p Pose) Up() Vec3 { return Rotate(p.Rotation, Up) }

// Equal reports whether two poses are identical.
func (p Pose) Equal(o Pose) bool {
	return p.Position == o.Position && p.Rotation == o.Rotation
}
