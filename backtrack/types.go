// Package backtrack defines core types, options and sentinel errors for
// vector field path extraction.
//
// Options:
//
//	– StepLength:    distance advanced per step (default 0.03).
//	– MaxSteps:      step budget before giving up (default 100000).
//	– RelocateDepth: face-adjacency hops searched when a step leaves the
//	                 current face (default 3).
//	– Cancel:        cooperative cancellation probe polled once per step.
//	– OnStep:        hook receiving every accepted sample.
//	– Logger:        structured logger.
//
// Errors (sentinel):
//
//	– ErrNilInput      if the surface or field is nil.
//	– ErrNoPath        if relocation fails, the field has no direction or
//	                   the step budget is exhausted.
//	– ErrCanceled      if the probe or the context fired.
//	– ErrOptionViolation for invalid options.
package backtrack

import (
	"errors"
	"log/slog"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// Sentinel errors.
var (
	// ErrNilInput indicates a nil surface or field.
	ErrNilInput = errors.New("backtrack: nil surface or field")

	// ErrNoPath indicates that the walk could not reach the start.
	ErrNoPath = errors.New("backtrack: no path found")

	// ErrCanceled indicates that a cancellation request was observed.
	ErrCanceled = errors.New("backtrack: canceled")

	// ErrOptionViolation indicates an invalid step length, step budget or depth.
	ErrOptionViolation = errors.New("backtrack: invalid option")
)

const (
	// DefaultStepLength is the distance advanced per step (3 cm in metric maps).
	DefaultStepLength = 0.03
	// DefaultMaxSteps bounds a single walk.
	DefaultMaxSteps = 100000
	// DefaultRelocateDepth is the face-adjacency radius searched per step.
	DefaultRelocateDepth = 3
)

// Sample is one point of a path together with the face it lies on.
type Sample struct {
	Position r3.Vector
	Face     mesh.FaceID
}

// Option represents a functional option for configuring Trace.
type Option func(*Options)

// Options holds the walk parameters.
type Options struct {
	StepLength    float64
	MaxSteps      int
	RelocateDepth int
	Cancel        func() bool
	OnStep        func(s Sample)
	Logger        *slog.Logger

	err error
}

// DefaultOptions returns the default walk parameters.
func DefaultOptions() Options {
	return Options{
		StepLength:    DefaultStepLength,
		MaxSteps:      DefaultMaxSteps,
		RelocateDepth: DefaultRelocateDepth,
		Cancel:        func() bool { return false },
		OnStep:        func(Sample) {},
		Logger:        slog.Default(),
	}
}

// WithStepLength sets the step length; it must be positive and finite.
func WithStepLength(l float64) Option {
	return func(o *Options) {
		if !(l > 0) || l > 1e300 {
			o.err = ErrOptionViolation
			return
		}
		o.StepLength = l
	}
}

// WithMaxSteps sets the step budget; it must be positive.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = ErrOptionViolation
			return
		}
		o.MaxSteps = n
	}
}

// WithRelocateDepth sets how many face-adjacency hops are searched when a
// step leaves the current face; it must be at least 1.
func WithRelocateDepth(d int) Option {
	return func(o *Options) {
		if d < 1 {
			o.err = ErrOptionViolation
			return
		}
		o.RelocateDepth = d
	}
}

// WithCancel installs a cancellation probe polled once per step.
func WithCancel(fn func() bool) Option {
	return func(o *Options) {
		if fn != nil {
			o.Cancel = fn
		}
	}
}

// WithOnStep registers a hook called for every sample appended to the path.
func WithOnStep(fn func(s Sample)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnStep = fn
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
