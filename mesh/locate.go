package mesh

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// insideEps widens the barycentric inside test to absorb rounding on shared edges.
const insideEps = 1e-9

// centroid is a kd-tree element: a face keyed by its centroid.
type centroid struct {
	face FaceID
	pos  r3.Vector
}

func (c centroid) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return c.pos.X
	case 1:
		return c.pos.Y
	case 2:
		return c.pos.Z
	}
	panic("mesh: kd dimension out of range")
}

// Compare implements kdtree.Comparable.
func (c centroid) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	return c.coord(d) - o.(centroid).coord(d)
}

// Dims implements kdtree.Comparable.
func (c centroid) Dims() int { return 3 }

// Distance implements kdtree.Comparable; it is the squared Euclidean distance.
func (c centroid) Distance(o kdtree.Comparable) float64 {
	return c.pos.Sub(o.(centroid).pos).Norm2()
}

// centroids implements kdtree.Interface.
type centroids []centroid

func (c centroids) Index(i int) kdtree.Comparable         { return c[i] }
func (c centroids) Len() int                              { return len(c) }
func (c centroids) Slice(start, end int) kdtree.Interface { return c[start:end] }
func (c centroids) Pivot(d kdtree.Dim) int {
	return centroidPlane{dim: d, centroids: c}.Pivot()
}

// centroidPlane pivots centroids on one dimension.
type centroidPlane struct {
	dim kdtree.Dim
	centroids
}

func (p centroidPlane) Less(i, j int) bool {
	return p.centroids[i].coord(p.dim) < p.centroids[j].coord(p.dim)
}
func (p centroidPlane) Swap(i, j int) { p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i] }
func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	p.centroids = p.centroids[start:end]
	return p
}
func (p centroidPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfRandoms(p, 100))
}

// buildIndex builds the centroid kd-tree and the search reach.
func (m *Mesh) buildIndex() {
	pts := make(centroids, len(m.faces))
	for i, tri := range m.faces {
		f := FaceID(i)
		c := m.Centroid(f)
		pts[i] = centroid{face: f, pos: c}
		for _, v := range tri {
			if d := c.Distance(m.positions[v]); d > m.reach {
				m.reach = d
			}
		}
	}
	m.index = kdtree.New(pts, false)
}

// ContainingFace returns the face nearest to p whose surface lies within
// tolerance of p. Faces touching an invalid vertex are never returned.
// Ties are broken by the lower face ID.
//
// Complexity: O(log F + k) where k is the number of faces within reach.
func (m *Mesh) ContainingFace(p r3.Vector, tolerance float64) (FaceID, bool) {
	if tolerance < 0 || !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
		return InvalidFace, false
	}
	r := tolerance + m.reach
	keeper := kdtree.NewDistKeeper(r * r)
	m.index.NearestSet(keeper, centroid{face: InvalidFace, pos: p})

	best, bestDist := InvalidFace, math.Inf(1)
	for _, cd := range keeper.Heap {
		c, ok := cd.Comparable.(centroid)
		if !ok {
			continue
		}
		if !m.faceValid(c.face) {
			continue
		}
		d := p.Distance(m.ClosestPoint(c.face, p))
		if d > tolerance {
			continue
		}
		if d < bestDist || (d == bestDist && c.face < best) {
			best, bestDist = c.face, d
		}
	}
	return best, best != InvalidFace
}

func (m *Mesh) faceValid(f FaceID) bool {
	t := m.faces[f]
	return m.valid[t[0]] && m.valid[t[1]] && m.valid[t[2]]
}

// Barycentric returns the barycentric weights of p's projection onto the
// plane of f, ordered like FaceVertices. ok is false if f is degenerate.
func (m *Mesh) Barycentric(f FaceID, p r3.Vector) ([3]float64, bool) {
	t := m.faces[f]
	return barycentric(m.positions[t[0]], m.positions[t[1]], m.positions[t[2]], p)
}

func barycentric(a, b, c, p r3.Vector) ([3]float64, bool) {
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < minArea2 {
		return [3]float64{}, false
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return [3]float64{1 - v - w, v, w}, true
}

// Inside reports whether barycentric weights describe a point within the triangle.
func Inside(w [3]float64) bool {
	return w[0] >= -insideEps && w[1] >= -insideEps && w[2] >= -insideEps
}

// ClosestPoint returns the point of face f closest to p.
func (m *Mesh) ClosestPoint(f FaceID, p r3.Vector) r3.Vector {
	t := m.faces[f]
	return ClosestOnTriangle(m.positions[t[0]], m.positions[t[1]], m.positions[t[2]], p)
}

// ClosestOnTriangle returns the point of triangle abc closest to p: the
// projection of p when it falls inside, otherwise the nearest edge point.
func ClosestOnTriangle(a, b, c, p r3.Vector) r3.Vector {
	if w, ok := barycentric(a, b, c, p); ok && Inside(w) {
		return a.Mul(w[0]).Add(b.Mul(w[1])).Add(c.Mul(w[2]))
	}
	best := closestOnSegment(a, b, p)
	bestDist := p.Sub(best).Norm2()
	for _, s := range [2][2]r3.Vector{{b, c}, {c, a}} {
		q := closestOnSegment(s[0], s[1], p)
		if d := p.Sub(q).Norm2(); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}

// ProjectOnto returns p projected onto the plane of f.
func (m *Mesh) ProjectOnto(f FaceID, p r3.Vector) r3.Vector {
	n := m.normals[f]
	a := m.positions[m.faces[f][0]]
	return p.Sub(n.Mul(p.Sub(a).Dot(n)))
}

func closestOnSegment(a, b, p r3.Vector) r3.Vector {
	ab := b.Sub(a)
	l2 := ab.Norm2()
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a.Add(ab.Mul(t))
}
