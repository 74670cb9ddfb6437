package pointcloud

import "math"

// rotationValidationTolerance is the tolerance used when checking that a
// rotation is a proper rigid rotation (unit quaternion, determinant 1).
const rotationValidationTolerance = 0.01

// Vec3 is a 3D vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion is a rotation stored as (X, Y, Z, W). The identity rotation is
// (0, 0, 0, 1). Operations assume unit quaternions.
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion returns the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// Mul returns the composition q * o (apply o first, then q).
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Normalize returns q scaled to unit length. The identity quaternion is
// returned if q is degenerate.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Rotate applies the rotation to a vector.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	// v' = q * (v, 0) * q^-1 expanded to avoid intermediate quaternions.
	tx := 2 * (q.Y*v.Z - q.Z*v.Y)
	ty := 2 * (q.Z*v.X - q.X*v.Z)
	tz := 2 * (q.X*v.Y - q.Y*v.X)
	return Vec3{
		X: v.X + q.W*tx + (q.Y*tz - q.Z*ty),
		Y: v.Y + q.W*ty + (q.Z*tx - q.X*tz),
		Z: v.Z + q.W*tz + (q.X*ty - q.Y*tx),
	}
}

// RotationMatrix returns the 3x3 row-major rotation matrix for q.
func (q Quaternion) RotationMatrix() [9]float64 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// QuaternionFromMatrix converts a 3x3 row-major rotation matrix to a unit
// quaternion using the Shepperd branch selection for numerical stability.
func QuaternionFromMatrix(m [9]float64) Quaternion {
	trace := m[0] + m[4] + m[8]
	var q Quaternion
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1.0) * 2
		q.W = 0.25 * s
		q.X = (m[7] - m[5]) / s
		q.Y = (m[2] - m[6]) / s
		q.Z = (m[3] - m[1]) / s
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1.0+m[0]-m[4]-m[8]) * 2
		q.W = (m[7] - m[5]) / s
		q.X = 0.25 * s
		q.Y = (m[1] + m[3]) / s
		q.Z = (m[2] + m[6]) / s
	case m[4] > m[8]:
		s := math.Sqrt(1.0+m[4]-m[0]-m[8]) * 2
		q.W = (m[2] - m[6]) / s
		q.X = (m[1] + m[3]) / s
		q.Y = 0.25 * s
		q.Z = (m[5] + m[7]) / s
	default:
		s := math.Sqrt(1.0+m[8]-m[0]-m[4]) * 2
		q.W = (m[3] - m[1]) / s
		q.X = (m[2] + m[6]) / s
		q.Y = (m[5] + m[7]) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Transform is a rigid transform: a rotation followed by a translation.
type Transform struct {
	Rotation    Quaternion
	Translation Vec3
}

// IdentityTransform returns the transform that maps every point to itself.
func IdentityTransform() Transform {
	return Transform{Rotation: IdentityQuaternion()}
}

// Apply maps a point through the transform: R*v + t.
func (t Transform) Apply(v Vec3) Vec3 {
	return t.Rotation.Rotate(v).Add(t.Translation)
}

// Mul returns the composition t * o: the transform that applies o first and
// then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Rotation:    t.Rotation.Mul(o.Rotation).Normalize(),
		Translation: t.Rotation.Rotate(o.Translation).Add(t.Translation),
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	neg := inv.Rotate(t.Translation)
	return Transform{
		Rotation:    inv,
		Translation: Vec3{X: -neg.X, Y: -neg.Y, Z: -neg.Z},
	}
}

// InverseTimes returns t^-1 * o. This re-expresses the pose o by undoing t,
// which is the composition the grasp transfer step relies on.
func (t Transform) InverseTimes(o Transform) Transform {
	return t.Inverse().Mul(o)
}

// IsRigid reports whether the transform's rotation is a proper rigid
// rotation: unit length and determinant 1 within tolerance.
func (t Transform) IsRigid() bool {
	q := t.Rotation
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if math.Abs(n-1) > rotationValidationTolerance {
		return false
	}
	m := q.RotationMatrix()
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	return math.Abs(det-1) <= rotationValidationTolerance
}
