// Package mesh defines the read-only triangle surface consumed by the planner
// and an immutable in-memory implementation of it.
//
// This file declares handles, the Surface contract, sentinel errors and the
// construction options of Mesh.
//
// Errors:
//
//	ErrEmptyMesh      - no vertices or no faces supplied.
//	ErrVertexIndex    - a face references a vertex outside the position slice.
//	ErrDegenerateFace - a face repeats a vertex or has (near) zero area.
//	ErrNonFinite      - a position or cost is NaN or infinite.
//	ErrCostsLength    - the cost slice does not match the vertex count.
//	ErrNonManifold    - adjacency requested for a vertex marked invalid.
//	ErrNoEdge         - two vertices are not connected by an edge.
//	ErrParse          - malformed OBJ or YAML input.
package mesh

import (
	"errors"
	"log/slog"

	"github.com/golang/geo/r3"
)

// Sentinel errors for mesh construction and adjacency queries.
var (
	// ErrEmptyMesh indicates that no vertices or no faces were supplied.
	ErrEmptyMesh = errors.New("mesh: at least one vertex and one face are required")

	// ErrVertexIndex indicates a face index outside [0, len(positions)).
	ErrVertexIndex = errors.New("mesh: face references unknown vertex")

	// ErrDegenerateFace indicates a face with repeated vertices or zero area.
	ErrDegenerateFace = errors.New("mesh: degenerate face")

	// ErrNonFinite indicates a NaN or infinite coordinate or cost.
	ErrNonFinite = errors.New("mesh: non-finite value")

	// ErrCostsLength indicates a cost layer whose length differs from the vertex count.
	ErrCostsLength = errors.New("mesh: cost layer length mismatch")

	// ErrNonManifold is returned by adjacency lookups on vertices whose
	// neighborhood is not a single manifold fan.
	ErrNonManifold = errors.New("mesh: non-manifold vertex")

	// ErrNoEdge indicates that two vertices share no edge.
	ErrNoEdge = errors.New("mesh: no edge between vertices")

	// ErrParse indicates malformed input while loading a mesh file.
	ErrParse = errors.New("mesh: parse error")
)

// VertexID indexes a vertex in the arrays owned by a Surface.
type VertexID int32

// FaceID indexes a face in the arrays owned by a Surface.
type FaceID int32

const (
	// InvalidVertex marks "no vertex".
	InvalidVertex VertexID = -1
	// InvalidFace marks "no face".
	InvalidFace FaceID = -1
)

// Surface is the read-only mesh view used by propagation, field building and
// path extraction. Implementations must be safe for concurrent readers.
//
// Face vertices are returned in winding order, counter-clockwise when looking
// against FaceNormal.
type Surface interface {
	NumVertices() int
	NumFaces() int

	Position(v VertexID) r3.Vector
	Valid(v VertexID) bool
	Cost(v VertexID) float64

	EdgeLength(a, b VertexID) (float64, error)

	FaceVertices(f FaceID) [3]VertexID
	FaceNormal(f FaceID) r3.Vector

	Neighbors(v VertexID) ([]VertexID, error)
	FacesOfVertex(v VertexID) ([]FaceID, error)
	FaceNeighbors(f FaceID) []FaceID

	// ContainingFace returns the face closest to p among those within
	// tolerance of it.
	ContainingFace(p r3.Vector, tolerance float64) (FaceID, bool)

	// Barycentric returns the weights of p's projection onto the plane of f.
	// ok is false for degenerate faces.
	Barycentric(f FaceID, p r3.Vector) (w [3]float64, ok bool)
}

// Option configures a Mesh at construction.
type Option func(*options)

type options struct {
	costs  []float64
	logger *slog.Logger
}

// WithVertexCosts attaches a per-vertex cost layer (e.g. roughness or
// inclination). The slice is copied.
func WithVertexCosts(costs []float64) Option {
	return func(o *options) {
		o.costs = append([]float64(nil), costs...)
	}
}

// WithLogger sets the logger used to report non-manifold regions.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Stats summarizes a mesh.
type Stats struct {
	Vertices int
	Faces    int
	Edges    int
	Invalid  int
}
