package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/katalvlaran/meshpath/backtrack"
	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/vectorfield"
	"github.com/katalvlaran/meshpath/wavefront"
)

// Planner plans geodesic paths on one surface.
//
// Thread Safety: Plan calls are serialized by an internal mutex; Cancel may
// be called from any goroutine. Use one Planner per goroutine to plan in
// parallel over a shared surface.
type Planner struct {
	s       mesh.Surface
	logger  *slog.Logger
	onState func(State)

	mu       sync.Mutex
	canceled atomic.Bool
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger passed down to every stage. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOnState installs a hook invoked on every state transition of a
// planning call, from the planning goroutine. Nil is ignored.
func WithOnState(fn func(State)) Option {
	return func(p *Planner) {
		if fn != nil {
			p.onState = fn
		}
	}
}

// New returns a Planner over s. Returns ErrNilSurface if s is nil.
func New(s mesh.Surface, opts ...Option) (*Planner, error) {
	if s == nil {
		return nil, ErrNilSurface
	}
	p := &Planner{
		s:       s,
		logger:  slog.Default(),
		onState: func(State) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Cancel asks the running Plan call, if any, to stop. The request is
// observed at the next queue pop or backtracking step. Each Plan call
// clears it on entry, so a Cancel issued between calls is dropped.
func (p *Planner) Cancel() {
	p.canceled.Store(true)
}

// Plan computes a path from req.Start to req.Goal.
//
// Planning failures are reported through Result.Outcome with a nil error.
// A non-nil error means the request itself was rejected (ErrInvalidConfig)
// or an internal stage failed unexpectedly.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.canceled.Store(false)

	res := &Result{
		PlanID:    uuid.NewString(),
		StartFace: mesh.InvalidFace,
		GoalFace:  mesh.InvalidFace,
		s:         p.s,
	}
	ctx, span := getTracer().Start(ctx, "planner.Plan")
	span.SetAttributes(attribute.String("plan_id", res.PlanID))
	defer span.End()

	began := time.Now()
	err := p.run(ctx, req, res)
	res.Duration = time.Since(began)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	recordPlan(res)
	span.SetAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Int("path_samples", len(res.Path)),
		attribute.Float64("cost", res.Cost),
	)
	span.SetStatus(codes.Ok, "")
	p.logger.InfoContext(ctx, "plan finished",
		slog.String("plan_id", res.PlanID),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("samples", len(res.Path)),
		slog.Float64("cost", res.Cost),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}

// run drives the state machine; it returns an error only for failures that
// are not planning outcomes.
func (p *Planner) run(ctx context.Context, req Request, res *Result) error {
	cfg := req.Config

	p.enter(res, StateResolvingEndpoints)
	start, ok := p.s.ContainingFace(req.Start, cfg.LocateTolerance)
	if !ok {
		p.finish(res, InvalidStart, StateInvalidStart)
		return nil
	}
	goal, ok := p.s.ContainingFace(req.Goal, cfg.LocateTolerance)
	if !ok {
		p.finish(res, InvalidGoal, StateInvalidGoal)
		return nil
	}
	res.StartFace, res.GoalFace = start, goal

	if start == goal {
		res.Path = []backtrack.Sample{
			{Position: req.Start, Face: start},
			{Position: req.Goal, Face: goal},
		}
		res.Cost = backtrack.Length(res.Path)
		p.finish(res, Success, StateDone)
		return nil
	}
	req.Start = p.snap(start, req.Start)
	req.Goal = p.snap(goal, req.Goal)

	p.enter(res, StatePropagating)
	prop, err := p.propagate(ctx, req, res)
	res.Propagation = prop
	switch {
	case errors.Is(err, wavefront.ErrCanceled):
		p.finish(res, Canceled, StateCanceled)
		return nil
	case errors.Is(err, wavefront.ErrStartBlocked):
		p.finish(res, InvalidStart, StateInvalidStart)
		return nil
	case err != nil:
		return fmt.Errorf("propagate: %w", err)
	}
	if prop.Status == wavefront.GoalReached {
		p.enter(res, StateGoalFixed)
	}

	p.enter(res, StateBuildingField)
	_, fspan := startPhase(ctx, "vectorfield.Build")
	field, err := vectorfield.Build(p.s, prop)
	if err == nil {
		fspan.SetAttributes(attribute.Int("directions", field.Len()))
	}
	endPhase(fspan, err)
	if err != nil {
		return fmt.Errorf("build field: %w", err)
	}
	res.Field = field

	p.enter(res, StateBacktracking)
	if !goalReachable(prop, p.s.FaceVertices(res.GoalFace)) {
		p.finish(res, NoPathFound, StateNoPathFound)
		return nil
	}
	samples, err := p.trace(ctx, req, res)
	switch {
	case errors.Is(err, backtrack.ErrCanceled):
		p.finish(res, Canceled, StateCanceled)
		return nil
	case errors.Is(err, backtrack.ErrNoPath):
		p.finish(res, NoPathFound, StateNoPathFound)
		return nil
	case err != nil:
		return fmt.Errorf("backtrack: %w", err)
	}

	// the walk runs goal to start
	slices.Reverse(samples)
	res.Path = samples
	res.Cost = backtrack.Length(samples)
	p.finish(res, Success, StateDone)

	return nil
}

func (p *Planner) propagate(ctx context.Context, req Request, res *Result) (*wavefront.Result, error) {
	ctx, span := startPhase(ctx, "wavefront.Propagate",
		attribute.Int("start_face", int(res.StartFace)),
		attribute.Int("goal_face", int(res.GoalFace)),
	)
	opts := []wavefront.Option{
		wavefront.WithContext(ctx),
		wavefront.WithCancel(p.canceled.Load),
		wavefront.WithCostLimit(req.Config.CostLimit),
		wavefront.WithLogger(p.logger),
	}
	if req.Config.MaxDistance > 0 {
		opts = append(opts, wavefront.WithMaxDistance(req.Config.MaxDistance))
	}
	prop, err := wavefront.Propagate(p.s, req.Start, res.StartFace, res.GoalFace, opts...)
	if prop != nil {
		span.SetAttributes(
			attribute.String("status", prop.Status.String()),
			attribute.Int("popped", prop.Stats.Popped),
			attribute.Int("improvements", prop.Stats.Improvements),
		)
	}
	endPhase(span, err)

	return prop, err
}

func (p *Planner) trace(ctx context.Context, req Request, res *Result) ([]backtrack.Sample, error) {
	ctx, span := startPhase(ctx, "backtrack.Trace",
		attribute.Float64("step_length", req.Config.StepLength),
	)
	samples, err := backtrack.Trace(ctx, p.s, res.Field, req.Goal, res.GoalFace,
		backtrack.WithStepLength(req.Config.StepLength),
		backtrack.WithMaxSteps(req.Config.MaxSteps),
		backtrack.WithRelocateDepth(req.Config.RelocateDepth),
		backtrack.WithCancel(p.canceled.Load),
		backtrack.WithLogger(p.logger),
	)
	span.SetAttributes(attribute.Int("samples", len(samples)))
	endPhase(span, err)

	return samples, err
}

// snap projects q onto the plane of face f.
func (p *Planner) snap(f mesh.FaceID, q r3.Vector) r3.Vector {
	n := p.s.FaceNormal(f)
	v0 := p.s.Position(p.s.FaceVertices(f)[0])
	return q.Sub(n.Mul(q.Sub(v0).Dot(n)))
}

func (p *Planner) enter(res *Result, s State) {
	res.enter(s)
	p.onState(s)
}

func (p *Planner) finish(res *Result, o Outcome, s State) {
	res.Outcome = o
	p.enter(res, s)
}

// goalReachable reports whether any goal face vertex was reached by the
// front, either as a seed or through a predecessor.
func goalReachable(prop *wavefront.Result, goal [3]mesh.VertexID) bool {
	for _, v := range goal {
		if prop.IsSeed(v) || prop.HasPredecessor(v) {
			return true
		}
	}
	return false
}
