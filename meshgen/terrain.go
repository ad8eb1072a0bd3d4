// Package meshgen builds triangle meshes from regular height grids.
//
// Each grid cell (x,y)-(x+1,y+1) becomes two counter-clockwise triangles
// (normals point to +Z for flat terrain). Vertices are indexed row-major:
// index = y*Width + x.
package meshgen

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// NewTerrain constructs a Terrain from a rectangular 2D slice with at least
// two rows and two columns. It deep-copies the input to ensure immutability.
// Returns ErrEmptyGrid, ErrNonRectangular or ErrBadSpacing.
// Complexity: O(W×H) time and memory.
func NewTerrain(heights [][]float64, opts TerrainOptions) (*Terrain, error) {
	if len(heights) < 2 || len(heights[0]) < 2 {
		return nil, ErrEmptyGrid
	}
	if !(opts.Spacing > 0) {
		return nil, ErrBadSpacing
	}
	h, w := len(heights), len(heights[0])
	for _, row := range heights {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	// Deep copy to prevent external mutation
	cells := make([][]float64, h)
	for y := 0; y < h; y++ {
		cells[y] = make([]float64, w)
		copy(cells[y], heights[y])
	}
	return &Terrain{
		Width:      w,
		Height:     h,
		Spacing:    opts.Spacing,
		Heights:    cells,
		Pattern:    opts.Pattern,
		slopeCosts: opts.SlopeCosts,
	}, nil
}

// FromFunc samples f on a w×h grid; f receives world X and Y coordinates.
func FromFunc(w, h int, opts TerrainOptions, f func(x, y float64) float64) (*Terrain, error) {
	if w < 2 || h < 2 {
		return nil, ErrEmptyGrid
	}
	heights := make([][]float64, h)
	for y := 0; y < h; y++ {
		heights[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			heights[y][x] = f(float64(x)*opts.Spacing, float64(y)*opts.Spacing)
		}
	}
	return NewTerrain(heights, opts)
}

// Flat returns a w×h flat terrain at height zero.
func Flat(w, h int, opts TerrainOptions) (*Terrain, error) {
	return FromFunc(w, h, opts, func(float64, float64) float64 { return 0 })
}

// InBounds reports whether (x,y) lies within the grid boundaries.
// Complexity: O(1).
func (t *Terrain) InBounds(x, y int) bool {
	return x >= 0 && x < t.Width && y >= 0 && y < t.Height
}

// Index maps (x,y) to the row-major vertex index y*Width + x.
// Complexity: O(1).
func (t *Terrain) Index(x, y int) int {
	return y*t.Width + x
}

// Coordinate converts a row-major index back to (x,y).
// Complexity: O(1).
func (t *Terrain) Coordinate(idx int) (x, y int) {
	return idx % t.Width, idx / t.Width
}

// Point returns the world position of sample (x,y).
func (t *Terrain) Point(x, y int) r3.Vector {
	return r3.Vector{X: float64(x) * t.Spacing, Y: float64(y) * t.Spacing, Z: t.Heights[y][x]}
}

// Triangles returns the vertex positions and counter-clockwise faces of the
// terrain without building adjacency.
// Complexity: O(W×H).
func (t *Terrain) Triangles() ([]r3.Vector, [][3]int) {
	positions := make([]r3.Vector, 0, t.Width*t.Height)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			positions = append(positions, t.Point(x, y))
		}
	}
	faces := make([][3]int, 0, 2*(t.Width-1)*(t.Height-1))
	for y := 0; y+1 < t.Height; y++ {
		for x := 0; x+1 < t.Width; x++ {
			a, b := t.Index(x, y), t.Index(x+1, y)
			c, d := t.Index(x+1, y+1), t.Index(x, y+1)
			if t.Pattern == Alternate && (x+y)%2 == 1 {
				// split along b-d
				faces = append(faces, [3]int{a, b, d}, [3]int{b, c, d})
				continue
			}
			// split along a-c
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return positions, faces
}

// ToMesh triangulates the terrain into a mesh.Mesh. When the terrain was
// built with SlopeCosts, a slope cost layer is attached before opts.
// Complexity: O(W×H log(W×H)).
func (t *Terrain) ToMesh(opts ...mesh.Option) (*mesh.Mesh, error) {
	positions, faces := t.Triangles()
	if t.slopeCosts {
		opts = append([]mesh.Option{mesh.WithVertexCosts(slopeCosts(positions, faces))}, opts...)
	}
	return mesh.New(positions, faces, opts...)
}

// slopeCosts returns, per vertex, the steepest incident face inclination
// mapped to [0,1].
func slopeCosts(positions []r3.Vector, faces [][3]int) []float64 {
	costs := make([]float64, len(positions))
	up := r3.Vector{Z: 1}
	for _, f := range faces {
		a, b, c := positions[f[0]], positions[f[1]], positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		incl := math.Acos(math.Min(1, math.Abs(n.Dot(up)))) / (math.Pi / 2)
		for _, v := range f {
			if incl > costs[v] {
				costs[v] = incl
			}
		}
	}
	return costs
}
