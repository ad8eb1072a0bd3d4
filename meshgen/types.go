// Package meshgen defines core types, options, and sentinel errors
// for the meshgen subpackage of github.com/katalvlaran/meshpath.
package meshgen

import (
	"errors"
)

// Sentinel errors for meshgen operations.
var (
	// ErrEmptyGrid indicates the height grid has no rows or no columns.
	ErrEmptyGrid = errors.New("meshgen: height grid must have at least two rows and two columns")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("meshgen: all rows must have the same length")
	// ErrBadSpacing indicates a non-positive cell spacing.
	ErrBadSpacing = errors.New("meshgen: spacing must be positive")
)

// Pattern selects how each grid cell is split into two triangles.
type Pattern int

const (
	// Uniform splits every cell along the same diagonal.
	Uniform Pattern = iota
	// Alternate flips the diagonal in a checkerboard, which removes the
	// directional bias of Uniform.
	Alternate
)

// TerrainOptions contains tunable parameters for terrain triangulation.
type TerrainOptions struct {
	// Spacing is the distance between neighbouring samples along X and Y.
	Spacing float64
	// Pattern chooses the cell diagonal layout.
	Pattern Pattern
	// SlopeCosts attaches a per-vertex cost layer equal to the steepest
	// incident face inclination, normalized to [0,1] (0 flat, 1 vertical).
	SlopeCosts bool
}

// DefaultTerrainOptions returns TerrainOptions with Spacing=1,
// Pattern=Alternate and no cost layer.
func DefaultTerrainOptions() TerrainOptions {
	return TerrainOptions{
		Spacing: 1,
		Pattern: Alternate,
	}
}

// Terrain treats a 2D grid of heights as a triangulated surface. It is
// immutable once built. Heights[y][x] is the Z value of sample (x,y), placed
// at (x*Spacing, y*Spacing).
type Terrain struct {
	Width, Height int
	Spacing       float64
	Heights       [][]float64
	Pattern       Pattern
	slopeCosts    bool
}
