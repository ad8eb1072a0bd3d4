package planner

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a path sample with an orientation: +X along the direction of
// travel, +Z along the surface normal.
type Pose struct {
	Position    r3.Vector
	Orientation quat.Number
}

// Poses converts Path into oriented poses. Each pose heads toward the next
// sample within the plane of its face; the last pose keeps the previous
// heading.
func (r *Result) Poses() []Pose {
	if len(r.Path) == 0 || r.s == nil {
		return nil
	}
	poses := make([]Pose, len(r.Path))
	var prev quat.Number
	for i, sm := range r.Path {
		if i+1 < len(r.Path) {
			normal := r.s.FaceNormal(sm.Face)
			prev = orientation(r.Path[i+1].Position.Sub(sm.Position), normal)
		}
		poses[i] = Pose{Position: sm.Position, Orientation: prev}
	}
	return poses
}

// orientation returns the unit quaternion of the frame whose X axis is
// heading projected off normal and whose Z axis is normal.
func orientation(heading, normal r3.Vector) quat.Number {
	z := normal.Normalize()
	x := heading.Sub(z.Mul(heading.Dot(z))).Normalize()
	if x.Norm2() == 0 {
		// heading parallel to the normal or zero: pick any tangent
		x = z.Ortho()
	}
	y := z.Cross(x)

	return fromAxes(x, y, z)
}

// fromAxes converts the rotation matrix with columns x, y, z into a unit
// quaternion (Shepperd's method).
func fromAxes(x, y, z r3.Vector) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q quat.Number
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return quat.Scale(1/quat.Abs(q), q)
}
