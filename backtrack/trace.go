// Package backtrack extracts a path by descending a vector field from the
// goal point to the start point in fixed-length steps along the surface.
//
// Each step blends the field directions of the current face's vertices with
// the position's barycentric weights, advances by StepLength and, when the
// new point leaves the face, moves it to the nearest surface point among
// faces at most RelocateDepth adjacency hops away, provided that point is
// within one step. The walk stops once the start is nearer than one step
// and appends the exact start point.
package backtrack

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/vectorfield"
)

// Trace walks the field from goal (lying on goalFace) to the field origin.
// The returned samples are ordered goal first, start last.
//
// Errors: ErrNilInput, ErrOptionViolation, ErrNoPath (with the samples
// collected so far) and ErrCanceled (likewise). ctx is checked together with
// the Cancel probe once per step.
func Trace(ctx context.Context, s mesh.Surface, f *vectorfield.Field, goal r3.Vector, goalFace mesh.FaceID, opts ...Option) ([]Sample, error) {
	if s == nil || f == nil {
		return nil, ErrNilInput
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if goalFace < 0 || int(goalFace) >= s.NumFaces() {
		return nil, fmt.Errorf("%w: goal face %d out of range", ErrNoPath, goalFace)
	}

	w := &walk{
		ctx:   ctx,
		s:     s,
		field: f,
		opts:  o,
		reloc: newRelocator(s, o.RelocateDepth, o.StepLength),
		cur:   Sample{Position: goal, Face: goalFace},
	}
	w.emit(w.cur)
	err := w.run()

	return w.path, err
}

// walk holds the mutable state of one Trace call.
type walk struct {
	ctx   context.Context
	s     mesh.Surface
	field *vectorfield.Field
	opts  Options
	reloc *relocator
	cur   Sample
	path  []Sample
}

func (w *walk) run() error {
	origin := w.field.Origin()
	for step := 0; ; step++ {
		if w.opts.Cancel() || w.ctx.Err() != nil {
			return ErrCanceled
		}
		if w.cur.Position.Distance(origin) < w.opts.StepLength {
			break
		}
		if step >= w.opts.MaxSteps {
			w.opts.Logger.Warn("step budget exhausted", "steps", step)
			return fmt.Errorf("%w: no arrival after %d steps", ErrNoPath, step)
		}

		dir, ok := w.field.Sample(w.cur.Face, w.cur.Position)
		if !ok {
			w.opts.Logger.Warn("no field direction", "face", w.cur.Face, "position", w.cur.Position)
			return fmt.Errorf("%w: face %d carries no direction", ErrNoPath, w.cur.Face)
		}
		ahead := w.cur.Position.Add(dir.Mul(w.opts.StepLength))
		face, pos, ok := w.reloc.locate(w.cur.Face, ahead)
		if !ok {
			w.opts.Logger.Warn("relocation failed", "face", w.cur.Face, "position", ahead)
			return fmt.Errorf("%w: left the mesh near face %d", ErrNoPath, w.cur.Face)
		}
		w.cur = Sample{Position: pos, Face: face}
		w.emit(w.cur)
	}
	w.emit(Sample{Position: origin, Face: w.field.StartFace()})

	return nil
}

func (w *walk) emit(s Sample) {
	w.path = append(w.path, s)
	w.opts.OnStep(s)
}

// Length returns the summed segment length of a path.
func Length(path []Sample) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Position.Distance(path[i-1].Position)
	}
	return total
}
