// Package wavefront defines core types and configuration options
// for geodesic wavefront propagation over a triangle mesh.
//
// Propagation computes approximate surface distances from a point inside a
// start face to every vertex reached before the goal face is resolved.
// It maintains a priority queue of tentative vertex distances and, instead of
// relaxing edges, applies a triangle unfolding update to every face that has
// exactly one unresolved vertex.
//
// Complexity:
//
//	– Time:  O((V + F) log V) up to early exit at the goal face.
//	– Space: O(V) for the per-call state, O(F) worst case for queue duplicates.
//
// Options:
//
//	– MaxDistance: vertices farther than this are not resolved.
//	– CostLimit:   vertices whose cost reaches this value are impassable.
//	– Ctx, Cancel: cooperative cancellation, polled once per popped vertex.
//	– OnFix, OnExpand, OnUpdate: observation hooks.
//	– Logger:      structured logger for skipped regions and summaries.
//
// Errors (sentinel):
//
//	– ErrNilSurface       if the surface is nil.
//	– ErrFaceIndex        if the start or goal face is out of range.
//	– ErrStartBlocked     if a start face vertex is invalid or lethal.
//	– ErrCanceled         if propagation was canceled.
//	– ErrBadMaxDistance   if MaxDistance is negative or NaN.
//	– ErrBadCostLimit     if CostLimit is negative or NaN.
package wavefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// Sentinel errors returned by Propagate.
var (
	// ErrNilSurface indicates that a nil mesh.Surface was passed.
	ErrNilSurface = errors.New("wavefront: surface is nil")

	// ErrFaceIndex indicates a start or goal face outside [0, NumFaces()).
	ErrFaceIndex = errors.New("wavefront: face out of range")

	// ErrStartBlocked indicates that a vertex of the start face is
	// non-manifold or exceeds the cost limit, so no seed can be placed.
	ErrStartBlocked = errors.New("wavefront: start face touches a blocked vertex")

	// ErrCanceled indicates that propagation observed a cancellation request.
	ErrCanceled = errors.New("wavefront: propagation canceled")

	// ErrBadMaxDistance indicates MaxDistance < 0 or NaN.
	ErrBadMaxDistance = errors.New("wavefront: MaxDistance must be non-negative")

	// ErrBadCostLimit indicates CostLimit < 0 or NaN.
	ErrBadCostLimit = errors.New("wavefront: CostLimit must be non-negative")
)

// Status tells how propagation terminated.
type Status int

const (
	// Exhausted means the queue ran empty (or MaxDistance was hit) before the
	// goal face was fully fixed.
	Exhausted Status = iota
	// GoalReached means all three goal face vertices were fixed.
	GoalReached
	// Canceled means a cancellation request was observed.
	Canceled
)

func (s Status) String() string {
	switch s {
	case Exhausted:
		return "exhausted"
	case GoalReached:
		return "goal_reached"
	case Canceled:
		return "canceled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Branch identifies which part of the update rule produced a distance.
type Branch int

const (
	// Direct is the admissible unfolding: the virtual source is seen from v3
	// through the edge (v1,v2).
	Direct Branch = iota
	// Fallback is the obtuse case: the distance runs along edge (v1,v3) or
	// (v2,v3).
	Fallback
)

func (b Branch) String() string {
	if b == Direct {
		return "direct"
	}
	return "fallback"
}

// Update describes an accepted improvement; it is passed to OnUpdate.
type Update struct {
	Vertex      mesh.VertexID
	Face        mesh.FaceID
	Predecessor mesh.VertexID
	Distance    float64
	Angle       float64
	Branch      Branch
}

// Stats counts the work done by one propagation.
type Stats struct {
	Popped       int // vertices expanded
	Stale        int // queue entries discarded at pop time
	Updates      int // update rule evaluations
	Improvements int // accepted improvements (queue insertions)
	Skipped      int // vertices/faces skipped for adjacency failures
}

// Result holds the per-call propagation state. It is owned by the caller
// after Propagate returns and must be treated as read-only; it is kept even
// when propagation was canceled.
type Result struct {
	Status    Status
	StartFace mesh.FaceID
	GoalFace  mesh.FaceID
	Origin    r3.Vector
	Seeds     [3]mesh.VertexID

	// Distances[v] is the geodesic distance estimate of v (+Inf if unreached).
	Distances []float64
	// Predecessors[v] == v means v is unresolved or a seed.
	Predecessors []mesh.VertexID
	// CuttingFaces[v] is the face whose unfolding produced Distances[v].
	CuttingFaces []mesh.FaceID
	// Angles[v] rotates pos(pred)-pos(v) about the cutting face normal onto
	// the true descent direction; in (−π, π].
	Angles []float64
	// Fixed[v] reports whether Distances[v] is final.
	Fixed []bool

	Stats Stats
}

// HasPredecessor reports whether v was reached through another vertex.
func (r *Result) HasPredecessor(v mesh.VertexID) bool {
	return r.Predecessors[v] != v
}

// IsSeed reports whether v is one of the start face vertices.
func (r *Result) IsSeed(v mesh.VertexID) bool {
	return v == r.Seeds[0] || v == r.Seeds[1] || v == r.Seeds[2]
}

// Option represents a functional option for configuring Propagate.
// Invalid values are recorded and surfaced by Propagate.
type Option func(*Options)

// Options configures propagation.
type Options struct {
	Ctx         context.Context
	MaxDistance float64
	CostLimit   float64
	Cancel      func() bool
	OnFix       func(v mesh.VertexID, dist float64)
	OnExpand    func(v mesh.VertexID, dist float64)
	OnUpdate    func(u Update)
	Logger      *slog.Logger

	err error
}

// DefaultOptions returns Options with a background context, no distance
// cap, no cost limit, no cancellation probe, no-op hooks and slog.Default().
func DefaultOptions() Options {
	return Options{
		Ctx:         context.Background(),
		MaxDistance: math.Inf(1),
		CostLimit:   0,
		Cancel:      func() bool { return false },
		OnFix:       func(mesh.VertexID, float64) {},
		OnExpand:    func(mesh.VertexID, float64) {},
		OnUpdate:    func(Update) {},
		Logger:      slog.Default(),
	}
}

// WithMaxDistance stops resolving vertices beyond d.
func WithMaxDistance(d float64) Option {
	return func(o *Options) {
		if !(d >= 0) {
			o.err = ErrBadMaxDistance
			return
		}
		o.MaxDistance = d
	}
}

// WithCostLimit treats vertices with Cost(v) >= limit as impassable.
// A limit of zero disables the cost layer.
func WithCostLimit(limit float64) Option {
	return func(o *Options) {
		if !(limit >= 0) {
			o.err = ErrBadCostLimit
			return
		}
		o.CostLimit = limit
	}
}

// WithContext sets a context whose cancellation stops propagation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithCancel installs a cancellation probe polled once per popped vertex.
func WithCancel(fn func() bool) Option {
	return func(o *Options) {
		if fn != nil {
			o.Cancel = fn
		}
	}
}

// WithOnFix registers a hook called when a vertex distance becomes final.
func WithOnFix(fn func(v mesh.VertexID, dist float64)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnFix = fn
		}
	}
}

// WithOnExpand registers a hook called, in pop order, for every expanded vertex.
func WithOnExpand(fn func(v mesh.VertexID, dist float64)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnExpand = fn
		}
	}
}

// WithOnUpdate registers a hook called for every accepted improvement.
func WithOnUpdate(fn func(u Update)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnUpdate = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
