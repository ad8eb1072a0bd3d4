package mesh

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// minArea2 is the squared cross-product norm below which a face is degenerate.
const minArea2 = 1e-24

// edgeKey identifies an undirected edge by its ordered endpoints.
type edgeKey struct{ lo, hi VertexID }

func keyOf(a, b VertexID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// edge holds the length of an undirected edge and the faces sharing it.
type edge struct {
	length float64
	faces  []FaceID
}

// Mesh is an immutable triangle mesh implementing Surface.
//
// Vertices and faces are addressed by dense integer handles; all adjacency is
// precomputed by New, so every query is lock-free and safe for concurrent use.
type Mesh struct {
	positions []r3.Vector
	faces     [][3]VertexID
	normals   []r3.Vector
	costs     []float64
	valid     []bool

	vertexFaces   [][]FaceID
	neighbors     [][]VertexID
	faceNeighbors [][]FaceID
	edges         map[edgeKey]*edge

	index *kdtree.Tree
	reach float64 // largest centroid-to-corner distance over all faces

	logger *slog.Logger
}

var _ Surface = (*Mesh)(nil)

// New builds a Mesh from vertex positions and triangles given as index
// triples into positions. Positions and faces are copied.
//
// Validation order: ErrEmptyMesh, ErrNonFinite, ErrCostsLength, ErrVertexIndex,
// ErrDegenerateFace. Non-manifold vertices do not fail construction; they are
// marked invalid and reported through Valid and the adjacency queries.
//
// Complexity: O(V + F log F) time, O(V + F) memory.
func New(positions []r3.Vector, faces [][3]int, opts ...Option) (*Mesh, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if len(positions) == 0 || len(faces) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, p := range positions {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return nil, fmt.Errorf("%w: vertex %d position %v", ErrNonFinite, i, p)
		}
	}
	costs := o.costs
	if costs == nil {
		costs = make([]float64, len(positions))
	} else if len(costs) != len(positions) {
		return nil, fmt.Errorf("%w: %d costs for %d vertices", ErrCostsLength, len(costs), len(positions))
	}
	for i, c := range costs {
		if math.IsNaN(c) {
			return nil, fmt.Errorf("%w: vertex %d cost", ErrNonFinite, i)
		}
	}

	m := &Mesh{
		positions:   append([]r3.Vector(nil), positions...),
		faces:       make([][3]VertexID, len(faces)),
		normals:     make([]r3.Vector, len(faces)),
		costs:       costs,
		valid:       make([]bool, len(positions)),
		vertexFaces: make([][]FaceID, len(positions)),
		neighbors:   make([][]VertexID, len(positions)),
		edges:       make(map[edgeKey]*edge, len(faces)*3/2+1),
		logger:      o.logger,
	}
	for i := range m.valid {
		m.valid[i] = true
	}

	for i, tri := range faces {
		var f [3]VertexID
		for k, idx := range tri {
			if idx < 0 || idx >= len(positions) {
				return nil, fmt.Errorf("%w: face %d index %d", ErrVertexIndex, i, idx)
			}
			f[k] = VertexID(idx)
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("%w: face %d repeats a vertex %v", ErrDegenerateFace, i, tri)
		}
		a, b, c := m.positions[f[0]], m.positions[f[1]], m.positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Norm2() < minArea2 {
			return nil, fmt.Errorf("%w: face %d has zero area", ErrDegenerateFace, i)
		}
		fh := FaceID(i)
		m.faces[i] = f
		m.normals[i] = n.Normalize()
		for k := 0; k < 3; k++ {
			m.vertexFaces[f[k]] = append(m.vertexFaces[f[k]], fh)
			m.addEdge(f[k], f[(k+1)%3], fh)
		}
	}

	m.buildNeighbors()
	m.markNonManifold()
	m.buildIndex()

	return m, nil
}

// addEdge registers face fh on the undirected edge (a,b).
func (m *Mesh) addEdge(a, b VertexID, fh FaceID) {
	k := keyOf(a, b)
	e, ok := m.edges[k]
	if !ok {
		e = &edge{length: m.positions[a].Distance(m.positions[b])}
		m.edges[k] = e
	}
	e.faces = append(e.faces, fh)
}

// buildNeighbors derives vertex and face adjacency from the edge catalog.
func (m *Mesh) buildNeighbors() {
	for k := range m.edges {
		m.neighbors[k.lo] = append(m.neighbors[k.lo], k.hi)
		m.neighbors[k.hi] = append(m.neighbors[k.hi], k.lo)
	}
	for v := range m.neighbors {
		ns := m.neighbors[v]
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	}

	m.faceNeighbors = make([][]FaceID, len(m.faces))
	seen := make(map[FaceID]struct{}, 16)
	for f, tri := range m.faces {
		clear(seen)
		var out []FaceID
		for _, v := range tri {
			for _, g := range m.vertexFaces[v] {
				if g == FaceID(f) {
					continue
				}
				if _, dup := seen[g]; dup {
					continue
				}
				seen[g] = struct{}{}
				out = append(out, g)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		m.faceNeighbors[f] = out
	}
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.positions) }

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Position returns the position of v.
func (m *Mesh) Position(v VertexID) r3.Vector { return m.positions[v] }

// Valid reports whether v lies on a manifold neighborhood.
func (m *Mesh) Valid(v VertexID) bool { return m.valid[v] }

// Cost returns the cost layer value of v (zero without a cost layer).
func (m *Mesh) Cost(v VertexID) float64 { return m.costs[v] }

// FaceVertices returns the three vertices of f in winding order.
func (m *Mesh) FaceVertices(f FaceID) [3]VertexID { return m.faces[f] }

// FaceNormal returns the unit normal of f.
func (m *Mesh) FaceNormal(f FaceID) r3.Vector { return m.normals[f] }

// FaceNeighbors returns the faces sharing at least one vertex with f,
// sorted ascending. The slice must not be modified.
func (m *Mesh) FaceNeighbors(f FaceID) []FaceID { return m.faceNeighbors[f] }

// EdgeLength returns the length of the edge (a,b) or ErrNoEdge.
func (m *Mesh) EdgeLength(a, b VertexID) (float64, error) {
	e, ok := m.edges[keyOf(a, b)]
	if !ok {
		return 0, fmt.Errorf("%w: %d-%d", ErrNoEdge, a, b)
	}
	return e.length, nil
}

// Neighbors returns the vertices sharing an edge with v, sorted ascending.
// Returns ErrNonManifold for invalid vertices. The slice must not be modified.
func (m *Mesh) Neighbors(v VertexID) ([]VertexID, error) {
	if !m.valid[v] {
		return nil, fmt.Errorf("%w: %d", ErrNonManifold, v)
	}
	return m.neighbors[v], nil
}

// FacesOfVertex returns the faces incident to v in construction order.
// Returns ErrNonManifold for invalid vertices. The slice must not be modified.
func (m *Mesh) FacesOfVertex(v VertexID) ([]FaceID, error) {
	if !m.valid[v] {
		return nil, fmt.Errorf("%w: %d", ErrNonManifold, v)
	}
	return m.vertexFaces[v], nil
}

// Centroid returns the centroid of f.
func (m *Mesh) Centroid(f FaceID) r3.Vector {
	t := m.faces[f]
	return m.positions[t[0]].Add(m.positions[t[1]]).Add(m.positions[t[2]]).Mul(1. / 3.)
}

// Stats returns vertex, face, edge and invalid-vertex counts.
func (m *Mesh) Stats() Stats {
	s := Stats{Vertices: len(m.positions), Faces: len(m.faces), Edges: len(m.edges)}
	for _, ok := range m.valid {
		if !ok {
			s.Invalid++
		}
	}
	return s
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
