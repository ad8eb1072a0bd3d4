package backtrack

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// onSurface is the distance under which a point counts as lying on a face.
const onSurface = 1e-9

// faceItem pairs a face with its adjacency depth from the search root.
type faceItem struct {
	face  mesh.FaceID
	depth int
}

// relocator finds the face holding a point near a known face by
// breadth-first search over face adjacency, bounded by maxDepth hops.
// The queue and visited set are reused between steps.
type relocator struct {
	s        mesh.Surface
	maxDepth int
	slack    float64
	queue    []faceItem
	visited  map[mesh.FaceID]struct{}
}

func newRelocator(s mesh.Surface, maxDepth int, slack float64) *relocator {
	return &relocator{
		s:        s,
		maxDepth: maxDepth,
		slack:    slack,
		queue:    make([]faceItem, 0, 64),
		visited:  make(map[mesh.FaceID]struct{}, 64),
	}
}

// locate returns the face nearest to p among faces at most maxDepth hops
// from root, provided p lies within slack of it, together with the closest
// point of that face. A face touching p ends the search early; otherwise
// the whole neighborhood is scanned and ties keep the first face in BFS
// order.
func (r *relocator) locate(root mesh.FaceID, p r3.Vector) (mesh.FaceID, r3.Vector, bool) {
	r.queue = r.queue[:0]
	clear(r.visited)
	r.enqueue(root, 0)

	best, bestPos, bestDist := mesh.InvalidFace, r3.Vector{}, math.Inf(1)
	for len(r.queue) > 0 {
		item := r.queue[0]
		r.queue = r.queue[1:]
		if q, d, ok := r.closest(item.face, p); ok && d < bestDist {
			best, bestPos, bestDist = item.face, q, d
			if d <= onSurface {
				break
			}
		}
		next := item.depth + 1
		if next > r.maxDepth {
			continue
		}
		for _, nb := range r.s.FaceNeighbors(item.face) {
			if _, seen := r.visited[nb]; !seen {
				r.enqueue(nb, next)
			}
		}
	}
	if best == mesh.InvalidFace || bestDist > r.slack {
		return mesh.InvalidFace, r3.Vector{}, false
	}
	return best, bestPos, true
}

func (r *relocator) enqueue(f mesh.FaceID, depth int) {
	r.visited[f] = struct{}{}
	r.queue = append(r.queue, faceItem{face: f, depth: depth})
}

// closest returns the point of f closest to p and its distance; faces with
// invalid vertices are never entered.
func (r *relocator) closest(f mesh.FaceID, p r3.Vector) (r3.Vector, float64, bool) {
	t := r.s.FaceVertices(f)
	if !r.s.Valid(t[0]) || !r.s.Valid(t[1]) || !r.s.Valid(t[2]) {
		return r3.Vector{}, 0, false
	}
	q := mesh.ClosestOnTriangle(r.s.Position(t[0]), r.s.Position(t[1]), r.s.Position(t[2]), p)
	return q, p.Distance(q), true
}
