// Package wavefront_test validates geodesic propagation: input validation,
// exactness on planar configurations, the obtuse fallback, monotone fixing,
// cancellation, cost limits and non-manifold regions.
package wavefront_test

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/meshgen"
	"github.com/katalvlaran/meshpath/wavefront"
)

// ------------------------------------------------------------------------
// helpers
// ------------------------------------------------------------------------

func flatGrid(t testing.TB, w, h int, opts ...mesh.Option) *mesh.Mesh {
	t.Helper()
	terrain, err := meshgen.Flat(w, h, meshgen.DefaultTerrainOptions())
	require.NoError(t, err)
	m, err := terrain.ToMesh(opts...)
	require.NoError(t, err)

	return m
}

func locate(t testing.TB, m *mesh.Mesh, p r3.Vector) mesh.FaceID {
	t.Helper()
	f, ok := m.ContainingFace(p, 0.2)
	require.True(t, ok, "no face contains %v", p)

	return f
}

// ------------------------------------------------------------------------
// 1. Validation
// ------------------------------------------------------------------------

func TestPropagate_NilSurface(t *testing.T) {
	_, err := wavefront.Propagate(nil, r3.Vector{}, 0, 0)
	assert.ErrorIs(t, err, wavefront.ErrNilSurface)
}

func TestPropagate_FaceOutOfRange(t *testing.T) {
	m := flatGrid(t, 3, 3)
	_, err := wavefront.Propagate(m, r3.Vector{}, 0, mesh.FaceID(m.NumFaces()))
	assert.ErrorIs(t, err, wavefront.ErrFaceIndex)
	_, err = wavefront.Propagate(m, r3.Vector{}, -1, 0)
	assert.ErrorIs(t, err, wavefront.ErrFaceIndex)
}

func TestPropagate_BadOptions(t *testing.T) {
	m := flatGrid(t, 3, 3)
	_, err := wavefront.Propagate(m, r3.Vector{}, 0, 1, wavefront.WithMaxDistance(-1))
	assert.ErrorIs(t, err, wavefront.ErrBadMaxDistance)
	_, err = wavefront.Propagate(m, r3.Vector{}, 0, 1, wavefront.WithCostLimit(math.NaN()))
	assert.ErrorIs(t, err, wavefront.ErrBadCostLimit)
}

// ------------------------------------------------------------------------
// 2. Small hand-built meshes
// ------------------------------------------------------------------------

func TestPropagate_RightTriangle(t *testing.T) {
	// F0 = (P, S, R) holds the start at P; F1 = (P, R, Q) has its right angle at R.
	positions := []r3.Vector{
		{X: 0, Y: 0},      // 0 P
		{X: 1, Y: 0},      // 1 R
		{X: 1, Y: 1},      // 2 Q
		{X: 0.5, Y: -0.5}, // 3 S
	}
	m, err := mesh.New(positions, [][3]int{{0, 3, 1}, {0, 1, 2}})
	require.NoError(t, err)

	res, err := wavefront.Propagate(m, positions[0], 0, 1)
	require.NoError(t, err)
	assert.Equal(t, wavefront.GoalReached, res.Status)
	assert.Equal(t, 0.0, res.Distances[0])
	assert.InDelta(t, 1.0, res.Distances[1], 1e-12)
	assert.InDelta(t, math.Sqrt2, res.Distances[2], 1e-9)
	assert.True(t, res.HasPredecessor(2))
	assert.Equal(t, mesh.FaceID(1), res.CuttingFaces[2])
	assert.False(t, res.HasPredecessor(0), "seeds have no predecessor")
}

func TestPropagate_ObtuseFallbackBranch(t *testing.T) {
	// The start sits on vertex 0 far to the left; face 1 = (1, 2, 3) has its
	// free vertex 3 hanging back over the start side, so the virtual source
	// falls outside the edge (1,2).
	positions := []r3.Vector{
		{X: -1, Y: -0.05}, // 0 start
		{X: 0, Y: 0},      // 1 v1
		{X: 1, Y: 0},      // 2 v2
		{X: -0.5, Y: 0.3}, // 3 v3
	}
	m, err := mesh.New(positions, [][3]int{{0, 2, 1}, {1, 2, 3}})
	require.NoError(t, err)

	var updates []wavefront.Update
	res, err := wavefront.Propagate(m, positions[0], 0, 1,
		wavefront.WithOnUpdate(func(u wavefront.Update) { updates = append(updates, u) }))
	require.NoError(t, err)
	require.Equal(t, wavefront.GoalReached, res.Status)

	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, mesh.VertexID(3), last.Vertex)
	assert.Equal(t, wavefront.Fallback, last.Branch)

	assert.Equal(t, mesh.VertexID(1), res.Predecessors[3])
	assert.Equal(t, 0.0, res.Angles[3])
	assert.Equal(t, mesh.FaceID(1), res.CuttingFaces[3])
	want := positions[0].Distance(positions[1]) + positions[1].Distance(positions[3])
	assert.InDelta(t, want, res.Distances[3], 1e-9)
	assert.Greater(t, res.Distances[3], positions[0].Distance(positions[3]))
}

func TestPropagate_SeedsAreEuclidean(t *testing.T) {
	m := flatGrid(t, 4, 4)
	origin := r3.Vector{X: 1.3, Y: 1.6}
	sf := locate(t, m, origin)

	res, err := wavefront.Propagate(m, origin, sf, sf)
	require.NoError(t, err)
	assert.Equal(t, wavefront.GoalReached, res.Status)
	assert.Zero(t, res.Stats.Popped, "goal face equals start face")
	for _, v := range m.FaceVertices(sf) {
		assert.True(t, res.Fixed[v])
		assert.True(t, res.IsSeed(v))
		assert.InDelta(t, m.Position(v).Distance(origin), res.Distances[v], 1e-12)
	}
}

// ------------------------------------------------------------------------
// 3. Properties on generated terrain
// ------------------------------------------------------------------------

func TestPropagate_FlatGridAccuracy(t *testing.T) {
	m := flatGrid(t, 11, 11)
	origin := r3.Vector{X: 0.2, Y: 0.3}
	goal := r3.Vector{X: 8.7, Y: 7.4}

	res, err := wavefront.Propagate(m, origin, locate(t, m, origin), locate(t, m, goal))
	require.NoError(t, err)
	require.Equal(t, wavefront.GoalReached, res.Status)

	for v := 0; v < m.NumVertices(); v++ {
		if !res.Fixed[v] {
			continue
		}
		euclid := m.Position(mesh.VertexID(v)).Distance(origin)
		assert.GreaterOrEqual(t, res.Distances[v], euclid-1e-9, "vertex %d underestimates", v)
		assert.LessOrEqual(t, res.Distances[v], euclid*1.05+1e-9, "vertex %d", v)
	}
	for _, v := range m.FaceVertices(res.GoalFace) {
		euclid := m.Position(v).Distance(origin)
		assert.InDelta(t, euclid, res.Distances[v], euclid*0.01)
	}
}

func hills(t testing.TB) *mesh.Mesh {
	t.Helper()
	terrain, err := meshgen.FromFunc(15, 15, meshgen.DefaultTerrainOptions(), func(x, y float64) float64 {
		return 0.8 * math.Sin(0.6*x) * math.Cos(0.5*y)
	})
	require.NoError(t, err)
	m, err := terrain.ToMesh()
	require.NoError(t, err)

	return m
}

func TestPropagate_MonotoneAndStable(t *testing.T) {
	m := hills(t)
	start, goal := mesh.FaceID(3), mesh.FaceID(m.NumFaces()-5)
	origin := m.Centroid(start)

	var popped []float64
	fixedAt := map[mesh.VertexID]float64{}
	res, err := wavefront.Propagate(m, origin, start, goal,
		wavefront.WithOnExpand(func(_ mesh.VertexID, d float64) { popped = append(popped, d) }),
		wavefront.WithOnFix(func(v mesh.VertexID, d float64) {
			_, dup := fixedAt[v]
			assert.False(t, dup, "vertex %d fixed twice", v)
			fixedAt[v] = d
		}),
	)
	require.NoError(t, err)
	require.Equal(t, wavefront.GoalReached, res.Status)

	for i := 1; i < len(popped); i++ {
		assert.GreaterOrEqual(t, popped[i], popped[i-1], "pop %d", i)
	}
	for v, d := range fixedAt {
		assert.Equal(t, d, res.Distances[v], "vertex %d changed after fixing", v)
		assert.True(t, res.Fixed[v])
	}
	for v, d := range res.Distances {
		assert.False(t, math.IsNaN(d), "vertex %d", v)
		if res.Fixed[v] {
			assert.False(t, math.IsInf(d, 0), "vertex %d", v)
		}
	}
	assert.Equal(t, res.Stats.Popped, len(popped))
}

func TestPropagate_AngleRange(t *testing.T) {
	m := hills(t)
	res, err := wavefront.Propagate(m, m.Centroid(0), 0, mesh.FaceID(m.NumFaces()-1))
	require.NoError(t, err)
	for v, a := range res.Angles {
		assert.True(t, a > -math.Pi && a <= math.Pi, "vertex %d angle %v", v, a)
	}
}

func TestPropagate_Cancel(t *testing.T) {
	m := flatGrid(t, 20, 20)
	polls := 0
	res, err := wavefront.Propagate(m, m.Centroid(0), 0, mesh.FaceID(m.NumFaces()-1),
		wavefront.WithCancel(func() bool {
			polls++
			return polls > 10
		}))
	require.ErrorIs(t, err, wavefront.ErrCanceled)
	require.NotNil(t, res, "partial state is kept")
	assert.Equal(t, wavefront.Canceled, res.Status)
	assert.Equal(t, 11, polls, "one poll per pop")
	assert.Equal(t, 10, res.Stats.Popped+res.Stats.Stale)
}

func TestPropagate_ContextCanceled(t *testing.T) {
	m := flatGrid(t, 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := wavefront.Propagate(m, m.Centroid(0), 0, mesh.FaceID(m.NumFaces()-1), wavefront.WithContext(ctx))
	require.ErrorIs(t, err, wavefront.ErrCanceled)
	assert.Equal(t, wavefront.Canceled, res.Status)
	assert.Zero(t, res.Stats.Popped)
	for _, v := range res.Seeds {
		assert.True(t, res.Fixed[v], "seeds are fixed before the first poll")
	}
}

func TestPropagate_MaxDistance(t *testing.T) {
	m := flatGrid(t, 11, 11)
	res, err := wavefront.Propagate(m, m.Centroid(0), 0, mesh.FaceID(m.NumFaces()-1),
		wavefront.WithMaxDistance(3))
	require.NoError(t, err)
	assert.Equal(t, wavefront.Exhausted, res.Status)
	for v, d := range res.Distances {
		if res.Fixed[v] && !res.IsSeed(mesh.VertexID(v)) {
			assert.LessOrEqual(t, d, 3.0)
		}
	}
}

// ------------------------------------------------------------------------
// 4. Blocked regions
// ------------------------------------------------------------------------

func TestPropagate_CostWall(t *testing.T) {
	const w = 11
	costs := make([]float64, w*w)
	for x := 0; x < w; x++ {
		costs[5*w+x] = 1 // row y=5
	}
	m := flatGrid(t, w, w, mesh.WithVertexCosts(costs))
	start := locate(t, m, r3.Vector{X: 2.3, Y: 1.4})
	goal := locate(t, m, r3.Vector{X: 7.6, Y: 8.2})

	res, err := wavefront.Propagate(m, m.Centroid(start), start, goal, wavefront.WithCostLimit(0.5))
	require.NoError(t, err)
	assert.Equal(t, wavefront.Exhausted, res.Status)
	for x := 0; x < w; x++ {
		assert.False(t, res.Fixed[5*w+x], "wall vertex %d", x)
		assert.False(t, res.Fixed[8*w+x], "vertex beyond wall %d", x)
	}

	// without a cost limit the wall is transparent
	res, err = wavefront.Propagate(m, m.Centroid(start), start, goal)
	require.NoError(t, err)
	assert.Equal(t, wavefront.GoalReached, res.Status)
}

func TestPropagate_StartBlocked(t *testing.T) {
	costs := make([]float64, 9)
	costs[0] = 2
	m := flatGrid(t, 3, 3, mesh.WithVertexCosts(costs))
	_, err := wavefront.Propagate(m, m.Centroid(0), 0, 3, wavefront.WithCostLimit(1))
	assert.ErrorIs(t, err, wavefront.ErrStartBlocked)
}

func TestPropagate_NonManifoldVertexSkipped(t *testing.T) {
	// Two fans (0,1,2)+(1,5,2) and (0,3,4) touch only at vertex 0.
	positions := []r3.Vector{
		{X: 0, Y: 0},
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: -1},
		{X: 2, Y: 0},
	}
	m, err := mesh.New(positions, [][3]int{{0, 1, 2}, {1, 5, 2}, {0, 3, 4}})
	require.NoError(t, err)
	require.False(t, m.Valid(0))

	res, err := wavefront.Propagate(m, m.Centroid(1), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, wavefront.Exhausted, res.Status)
	assert.False(t, res.Fixed[0])
	assert.False(t, res.Fixed[3])
	assert.True(t, math.IsInf(res.Distances[4], 1))
}
