// Package vectorfield turns the predecessor map of a propagation into
// per-vertex unit descent directions and interpolates them inside faces.
//
// For each vertex with a cutting face and a predecessor other than itself,
// the offset toward the predecessor is rotated about the cutting face normal
// by the recorded angle and normalized. Seeds and unreached vertices carry
// no direction. A Field is immutable once built and safe for concurrent
// readers.
package vectorfield

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/wavefront"
)

var (
	// ErrNilInput indicates a nil surface or propagation result.
	ErrNilInput = errors.New("vectorfield: nil surface or result")
	// ErrSizeMismatch indicates a result computed on a different surface.
	ErrSizeMismatch = errors.New("vectorfield: result does not match surface")
)

// Field is a sparse mapping vertex → unit direction toward the start.
type Field struct {
	s         mesh.Surface
	dirs      map[mesh.VertexID]r3.Vector
	order     []mesh.VertexID
	seeds     [3]mesh.VertexID
	origin    r3.Vector
	startFace mesh.FaceID
}

// Build computes the field from a propagation result. Partial (canceled or
// exhausted) results are accepted; only reached vertices get a direction.
// Complexity: O(V log V).
func Build(s mesh.Surface, res *wavefront.Result) (*Field, error) {
	if s == nil || res == nil {
		return nil, ErrNilInput
	}
	if len(res.Distances) != s.NumVertices() {
		return nil, fmt.Errorf("%w: %d distances for %d vertices", ErrSizeMismatch, len(res.Distances), s.NumVertices())
	}

	f := &Field{
		s:         s,
		dirs:      make(map[mesh.VertexID]r3.Vector),
		seeds:     res.Seeds,
		origin:    res.Origin,
		startFace: res.StartFace,
	}
	for i := range res.Predecessors {
		v := mesh.VertexID(i)
		cf := res.CuttingFaces[v]
		if cf == mesh.InvalidFace || !res.HasPredecessor(v) {
			continue
		}
		off := s.Position(res.Predecessors[v]).Sub(s.Position(v))
		d := Rotate(off, s.FaceNormal(cf), res.Angles[v]).Normalize()
		if d.Norm2() == 0 {
			continue
		}
		f.dirs[v] = d
		f.order = append(f.order, v)
	}
	sort.Slice(f.order, func(i, j int) bool { return f.order[i] < f.order[j] })

	return f, nil
}

// Rotate turns v about the unit axis by angle radians (right-hand rule)
// using the unit quaternion q = cos(θ/2) + sin(θ/2)·axis, v' = q v q*.
func Rotate(v, axis r3.Vector, angle float64) r3.Vector {
	if angle == 0 {
		return v
	}
	s, c := math.Sincos(angle / 2)
	q := quat.Number{Real: c, Imag: s * axis.X, Jmag: s * axis.Y, Kmag: s * axis.Z}
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))

	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Direction returns the unit direction of v.
func (f *Field) Direction(v mesh.VertexID) (r3.Vector, bool) {
	d, ok := f.dirs[v]
	return d, ok
}

// Len returns the number of vertices with a direction.
func (f *Field) Len() int { return len(f.order) }

// Range calls fn for every vertex with a direction in ascending vertex
// order until fn returns false.
func (f *Field) Range(fn func(v mesh.VertexID, dir r3.Vector) bool) {
	for _, v := range f.order {
		if !fn(v, f.dirs[v]) {
			return
		}
	}
}

// Origin returns the start point the field descends to.
func (f *Field) Origin() r3.Vector { return f.origin }

// StartFace returns the face containing the origin.
func (f *Field) StartFace() mesh.FaceID { return f.startFace }

// Sample interpolates a unit step direction at p inside face.
//
// Inside the start face the direction points straight at the origin.
// Elsewhere the three vertex directions are blended with p's barycentric
// weights (negative weights clamped to zero) and projected onto the face
// plane. Seed vertices contribute the direction from p to the origin; vertices
// without a direction are left out and the weights renormalize implicitly.
// ok is false when no usable direction exists.
func (f *Field) Sample(face mesh.FaceID, p r3.Vector) (r3.Vector, bool) {
	if face == f.startFace {
		d := f.origin.Sub(p).Normalize()
		return d, d.Norm2() > 0
	}
	w, ok := f.s.Barycentric(face, p)
	if !ok {
		return r3.Vector{}, false
	}
	var acc r3.Vector
	for k, v := range f.s.FaceVertices(face) {
		d, ok := f.vertexDirection(v, p)
		if !ok {
			continue
		}
		acc = acc.Add(d.Mul(math.Max(w[k], 0)))
	}
	if acc.Norm2() == 0 {
		// p sits on a vertex or edge without weight on a usable direction
		for _, v := range f.s.FaceVertices(face) {
			if d, ok := f.vertexDirection(v, p); ok {
				acc = acc.Add(d)
			}
		}
	}
	n := f.s.FaceNormal(face)
	acc = acc.Sub(n.Mul(acc.Dot(n)))
	out := acc.Normalize()

	return out, out.Norm2() > 0
}

// vertexDirection returns the stored direction of v, or for a seed the
// direction from p to the origin.
func (f *Field) vertexDirection(v mesh.VertexID, p r3.Vector) (r3.Vector, bool) {
	if d, ok := f.dirs[v]; ok {
		return d, true
	}
	if v == f.seeds[0] || v == f.seeds[1] || v == f.seeds[2] {
		d := f.origin.Sub(p).Normalize()
		return d, d.Norm2() > 0
	}
	return r3.Vector{}, false
}
