// Package wavefront implements geodesic distance propagation over a triangle
// mesh, the surface analogue of Dijkstra's algorithm.
//
// Propagate seeds the three vertices of the start face with their exact
// Euclidean distance to the start point and fixes them. It then repeatedly
// pops the nearest unexpanded vertex, fixes it, and for every face around
// each neighbor that has exactly two fixed vertices applies Unfold to the
// free one. Propagation stops as soon as all goal face vertices are fixed.
//
// The popped distance defines the front; accepted candidates are clamped to
// be no smaller than the front, so distances are fixed in non-decreasing
// order even where the unfolding underestimates.
package wavefront

import (
	"container/heap"
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// Propagate computes geodesic distances from origin, a point on startFace,
// until every vertex of goalFace is fixed, the queue is exhausted, or the
// Cancel probe fires.
//
// Returns the Result together with:
//   - ErrNilSurface, ErrFaceIndex on bad input;
//   - ErrBadMaxDistance, ErrBadCostLimit on invalid options;
//   - ErrStartBlocked if a start vertex is invalid or lethal;
//   - ErrCanceled (with a partial Result) when canceled.
//
// Exhausting the queue is not an error; callers inspect Result.Status.
func Propagate(s mesh.Surface, origin r3.Vector, startFace, goalFace mesh.FaceID, opts ...Option) (*Result, error) {
	if s == nil {
		return nil, ErrNilSurface
	}
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	nf := mesh.FaceID(s.NumFaces())
	if startFace < 0 || startFace >= nf || goalFace < 0 || goalFace >= nf {
		return nil, fmt.Errorf("%w: start %d goal %d of %d", ErrFaceIndex, startFace, goalFace, nf)
	}

	r := newRunner(s, origin, startFace, goalFace, cfg)
	if err := r.seed(); err != nil {
		return nil, err
	}
	began := time.Now()
	err := r.process()
	r.opts.Logger.Debug("wavefront finished",
		"status", r.res.Status.String(),
		"popped", r.res.Stats.Popped,
		"stale", r.res.Stats.Stale,
		"updates", r.res.Stats.Updates,
		"improvements", r.res.Stats.Improvements,
		"skipped", r.res.Stats.Skipped,
		"elapsed", time.Since(began),
	)

	return r.res, err
}

// runner holds the mutable state of one propagation.
type runner struct {
	s        mesh.Surface
	opts     Options
	res      *Result
	expanded []bool
	pq       vertexPQ
	goal     [3]mesh.VertexID
	front    float64
}

func newRunner(s mesh.Surface, origin r3.Vector, startFace, goalFace mesh.FaceID, opts Options) *runner {
	n := s.NumVertices()
	res := &Result{
		StartFace:    startFace,
		GoalFace:     goalFace,
		Origin:       origin,
		Seeds:        s.FaceVertices(startFace),
		Distances:    make([]float64, n),
		Predecessors: make([]mesh.VertexID, n),
		CuttingFaces: make([]mesh.FaceID, n),
		Angles:       make([]float64, n),
		Fixed:        make([]bool, n),
	}
	for v := 0; v < n; v++ {
		res.Distances[v] = math.Inf(1)
		res.Predecessors[v] = mesh.VertexID(v)
		res.CuttingFaces[v] = mesh.InvalidFace
	}

	return &runner{
		s:        s,
		opts:     opts,
		res:      res,
		expanded: make([]bool, n),
		pq:       make(vertexPQ, 0, 64),
		goal:     s.FaceVertices(goalFace),
	}
}

// seed fixes the start face vertices at their Euclidean distance to the origin.
func (r *runner) seed() error {
	for _, v := range r.res.Seeds {
		if !r.passable(v) {
			return fmt.Errorf("%w: vertex %d", ErrStartBlocked, v)
		}
	}
	for _, v := range r.res.Seeds {
		d := r.s.Position(v).Distance(r.res.Origin)
		r.res.Distances[v] = d
		r.res.CuttingFaces[v] = r.res.StartFace
		r.fix(v)
		heap.Push(&r.pq, queueItem{id: v, dist: d})
	}

	return nil
}

// process pops vertices until the goal face is fixed or the queue empties.
func (r *runner) process() error {
	if r.goalFixed() {
		r.res.Status = GoalReached
		return nil
	}
	for r.pq.Len() > 0 {
		if r.canceled() {
			r.res.Status = Canceled
			return ErrCanceled
		}
		item := heap.Pop(&r.pq).(queueItem)
		v := item.id
		if r.expanded[v] || item.dist > r.res.Distances[v] {
			r.res.Stats.Stale++
			continue
		}
		if item.dist > r.opts.MaxDistance {
			break
		}
		r.expanded[v] = true
		r.front = item.dist
		r.res.Stats.Popped++
		if !r.res.Fixed[v] {
			r.fix(v)
		}
		r.opts.OnExpand(v, item.dist)
		if r.goalFixed() {
			r.res.Status = GoalReached
			return nil
		}
		r.relax(v)
	}
	r.res.Status = Exhausted

	return nil
}

// relax runs the update rule on every face around every neighbor of u that
// has exactly two fixed vertices.
func (r *runner) relax(u mesh.VertexID) {
	nbrs, err := r.s.Neighbors(u)
	if err != nil {
		r.skip("neighbors", u, err)
		return
	}
	for _, nb := range nbrs {
		if !r.passable(nb) {
			continue
		}
		faces, err := r.s.FacesOfVertex(nb)
		if err != nil {
			r.skip("faces of vertex", nb, err)
			continue
		}
		for _, f := range faces {
			t := r.s.FaceVertices(f)
			if !r.passable(t[0]) || !r.passable(t[1]) || !r.passable(t[2]) {
				continue
			}
			fa, fb, fc := r.res.Fixed[t[0]], r.res.Fixed[t[1]], r.res.Fixed[t[2]]
			// keep winding order: the free vertex is always v3
			switch {
			case fa && fb && !fc:
				r.update(t[0], t[1], t[2], f)
			case fa && !fb && fc:
				r.update(t[2], t[0], t[1], f)
			case !fa && fb && fc:
				r.update(t[1], t[2], t[0], f)
			}
		}
	}
}

// update applies Unfold to face f with known v1, v2 and free v3.
func (r *runner) update(v1, v2, v3 mesh.VertexID, f mesh.FaceID) {
	c, err1 := r.s.EdgeLength(v1, v2)
	b, err2 := r.s.EdgeLength(v1, v3)
	a, err3 := r.s.EdgeLength(v2, v3)
	if err1 != nil || err2 != nil || err3 != nil {
		r.res.Stats.Skipped++
		r.opts.Logger.Warn("face without edges skipped", "face", f)
		return
	}
	r.res.Stats.Updates++
	step, ok := Unfold(r.res.Distances[v1], r.res.Distances[v2], a, b, c)
	if !ok {
		r.opts.Logger.Debug("unfolding rejected", "face", f, "vertex", v3)
		return
	}
	d := math.Max(step.Distance, r.front)
	if !(d < r.res.Distances[v3]) || d > r.opts.MaxDistance {
		return
	}
	pred := v1
	if step.Side == Second {
		pred = v2
	}
	r.res.Distances[v3] = d
	r.res.Predecessors[v3] = pred
	r.res.CuttingFaces[v3] = f
	r.res.Angles[v3] = step.Angle
	r.res.Stats.Improvements++
	heap.Push(&r.pq, queueItem{id: v3, dist: d})
	r.opts.OnUpdate(Update{
		Vertex:      v3,
		Face:        f,
		Predecessor: pred,
		Distance:    d,
		Angle:       step.Angle,
		Branch:      step.Branch,
	})
}

// canceled polls the probe and the context.
func (r *runner) canceled() bool {
	if r.opts.Cancel() {
		return true
	}
	select {
	case <-r.opts.Ctx.Done():
		return true
	default:
		return false
	}
}

func (r *runner) fix(v mesh.VertexID) {
	r.res.Fixed[v] = true
	r.opts.OnFix(v, r.res.Distances[v])
}

func (r *runner) goalFixed() bool {
	return r.res.Fixed[r.goal[0]] && r.res.Fixed[r.goal[1]] && r.res.Fixed[r.goal[2]]
}

// passable reports whether v may carry a distance: manifold and below the
// cost limit (when one is set).
func (r *runner) passable(v mesh.VertexID) bool {
	if !r.s.Valid(v) {
		return false
	}
	return r.opts.CostLimit <= 0 || r.s.Cost(v) < r.opts.CostLimit
}

func (r *runner) skip(what string, v mesh.VertexID, err error) {
	r.res.Stats.Skipped++
	r.opts.Logger.Warn("vertex skipped", "lookup", what, "vertex", v, "error", err)
}
