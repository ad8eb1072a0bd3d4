// Package planner defines outcome codes, the planning state machine, request
// and result types for geodesic path planning on a mesh.Surface.
//
// Errors (sentinel):
//
//	– ErrNilSurface    if New receives a nil surface.
//	– ErrInvalidConfig if a request carries an invalid config.Config.
//
// Planning failures (unresolvable endpoints, unreachable goal, cancellation)
// are not errors: they are reported through Result.Outcome.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/backtrack"
	"github.com/katalvlaran/meshpath/config"
	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/vectorfield"
	"github.com/katalvlaran/meshpath/wavefront"
)

var (
	// ErrNilSurface indicates that New received a nil surface.
	ErrNilSurface = errors.New("planner: surface is nil")

	// ErrInvalidConfig indicates a request with an invalid configuration.
	ErrInvalidConfig = errors.New("planner: invalid config")
)

// Outcome is the closed set of planning results.
type Outcome int

const (
	Success Outcome = iota
	InvalidStart
	InvalidGoal
	NoPathFound
	Canceled
)

var outcomeNames = [...]string{"SUCCESS", "INVALID_START", "INVALID_GOAL", "NO_PATH_FOUND", "CANCELED"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// State is a step of the per-call state machine:
//
//	ResolvingEndpoints → Propagating → GoalFixed → BuildingField → Backtracking → Done
//
// with StateCanceled reachable from Propagating and Backtracking,
// StateInvalidStart/StateInvalidGoal from ResolvingEndpoints and
// StateNoPathFound from Backtracking.
type State int

const (
	StateResolvingEndpoints State = iota
	StatePropagating
	StateGoalFixed
	StateBuildingField
	StateBacktracking
	StateDone
	StateCanceled
	StateInvalidStart
	StateInvalidGoal
	StateNoPathFound
)

var stateNames = [...]string{
	"RESOLVING_ENDPOINTS", "PROPAGATING", "GOAL_FIXED", "BUILDING_FIELD", "BACKTRACKING",
	"DONE", "CANCELED", "INVALID_START", "INVALID_GOAL", "NO_PATH_FOUND",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether s ends a planning call.
func (s State) Terminal() bool { return s >= StateDone }

// Request is one planning query. Config is copied by value and never
// mutated during the call.
type Request struct {
	Start  r3.Vector
	Goal   r3.Vector
	Config config.Config
}

// Result is the outcome of one planning call. Everything in it is immutable
// once Plan returns and may be read concurrently.
type Result struct {
	PlanID  string
	Outcome Outcome
	// State is the terminal state; States lists every state entered.
	State  State
	States []State

	// Path runs from the start point to the goal point. When both lie on one
	// face it is exactly {Start, Goal}; otherwise both endpoints are
	// projected onto the plane of the face they resolved to.
	Path []backtrack.Sample
	// Cost is the length of Path.
	Cost float64

	StartFace mesh.FaceID
	GoalFace  mesh.FaceID

	// Propagation is kept on failure and cancellation for diagnostics;
	// nil if propagation never ran.
	Propagation *wavefront.Result
	// Field is nil unless the field was built.
	Field *vectorfield.Field

	Duration time.Duration

	s mesh.Surface
}

func (r *Result) enter(s State) {
	r.State = s
	r.States = append(r.States, s)
}
