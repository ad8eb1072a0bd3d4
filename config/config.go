// Package config holds the immutable planning configuration passed into
// every planning call, with YAML loading, environment overrides and
// validation.
//
// Thread Safety: a Config is a plain value; copies are safe to share.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Sentinel validation errors.
var (
	ErrLocateTolerance = errors.New("config: locate_tolerance must be non-negative and finite")
	ErrStepLength      = errors.New("config: step_length must be positive and finite")
	ErrMaxSteps        = errors.New("config: max_steps must be positive")
	ErrRelocateDepth   = errors.New("config: relocate_depth must be at least 1")
	ErrCostLimit       = errors.New("config: cost_limit must be non-negative")
	ErrMaxDistance     = errors.New("config: max_distance must be non-negative")
)

// Config contains the planning parameters.
type Config struct {
	// LocateTolerance is the largest distance between an endpoint and the
	// face it is resolved to.
	LocateTolerance float64 `json:"locate_tolerance" yaml:"locate_tolerance"`

	// StepLength is the backtracking step.
	StepLength float64 `json:"step_length" yaml:"step_length"`

	// MaxSteps bounds a single backtracking walk.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// RelocateDepth is the face-adjacency radius searched per step.
	RelocateDepth int `json:"relocate_depth" yaml:"relocate_depth"`

	// CostLimit makes vertices with cost >= CostLimit impassable; 0 disables.
	CostLimit float64 `json:"cost_limit" yaml:"cost_limit"`

	// MaxDistance stops propagation beyond this geodesic distance; 0 means
	// unbounded.
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LocateTolerance: 0.2,
		StepLength:      0.03,
		MaxSteps:        100000,
		RelocateDepth:   3,
	}
}

// Validate checks every field and returns all violations joined.
func (c Config) Validate() error {
	var errs []error
	if !(c.LocateTolerance >= 0) || math.IsInf(c.LocateTolerance, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrLocateTolerance, c.LocateTolerance))
	}
	if !(c.StepLength > 0) || math.IsInf(c.StepLength, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrStepLength, c.StepLength))
	}
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrMaxSteps, c.MaxSteps))
	}
	if c.RelocateDepth < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrRelocateDepth, c.RelocateDepth))
	}
	if !(c.CostLimit >= 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrCostLimit, c.CostLimit))
	}
	if !(c.MaxDistance >= 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrMaxDistance, c.MaxDistance))
	}
	return errors.Join(errs...)
}

// Parse decodes YAML over the defaults; unknown keys are rejected.
// An empty document yields Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("load config file: %w", err)
	}
	return Parse(data)
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WithEnv returns c with MESHPATH_* environment overrides applied.
// Malformed values are ignored.
//
//	MESHPATH_LOCATE_TOLERANCE, MESHPATH_STEP_LENGTH, MESHPATH_MAX_STEPS,
//	MESHPATH_RELOCATE_DEPTH, MESHPATH_COST_LIMIT, MESHPATH_MAX_DISTANCE
func (c Config) WithEnv() Config {
	floatEnv("MESHPATH_LOCATE_TOLERANCE", &c.LocateTolerance)
	floatEnv("MESHPATH_STEP_LENGTH", &c.StepLength)
	intEnv("MESHPATH_MAX_STEPS", &c.MaxSteps)
	intEnv("MESHPATH_RELOCATE_DEPTH", &c.RelocateDepth)
	floatEnv("MESHPATH_COST_LIMIT", &c.CostLimit)
	floatEnv("MESHPATH_MAX_DISTANCE", &c.MaxDistance)
	return c
}

func floatEnv(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func intEnv(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}
