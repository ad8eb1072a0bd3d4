package mesh_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/meshpath/mesh"
)

const squareOBJ = `# unit square as one quad
o square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
`

const squareYAML = `vertices:
  - [0, 0, 0]
  - [1, 0, 0]
  - [1, 1, 0]
  - [0, 1, 0]
faces:
  - [0, 1, 2]
  - [0, 2, 3]
costs: [0, 0.25, 0.5, 1]
`

func TestLoadOBJ(t *testing.T) {
	m, err := mesh.LoadOBJ(strings.NewReader(squareOBJ))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices())
	require.Equal(t, 2, m.NumFaces(), "quads are fan-triangulated")
	assert.Equal(t, [3]mesh.VertexID{0, 1, 2}, m.FaceVertices(0))
	assert.Equal(t, [3]mesh.VertexID{0, 2, 3}, m.FaceVertices(1))
}

func TestLoadOBJ_RelativeIndices(t *testing.T) {
	m, err := mesh.LoadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"))
	require.NoError(t, err)
	assert.Equal(t, [3]mesh.VertexID{0, 1, 2}, m.FaceVertices(0))
}

func TestLoadOBJ_Errors(t *testing.T) {
	const tri = "v 0 0 0\nv 1 0 0\nv 0 1 0\n"
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"short vertex", "v 1 2\n", mesh.ErrParse},
		{"bad coordinate", "v 1 a 2\n", mesh.ErrParse},
		{"short face", tri + "f 1 2\n", mesh.ErrParse},
		{"bad index", tri + "f 1 x 3\n", mesh.ErrParse},
		{"zero index", tri + "f 0 1 2\n", mesh.ErrParse},
		{"index past the end", tri + "f 1 2 9\n", mesh.ErrVertexIndex},
		{"no faces", tri, mesh.ErrEmptyMesh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mesh.LoadOBJ(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	m, err := mesh.LoadYAML(strings.NewReader(squareYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumFaces())
	assert.Equal(t, 0.25, m.Cost(1))
	assert.Equal(t, 1.0, m.Cost(3))

	// caller options override the document's cost layer
	m, err = mesh.LoadYAML(strings.NewReader(squareYAML), mesh.WithVertexCosts([]float64{9, 9, 9, 9}))
	require.NoError(t, err)
	assert.Equal(t, 9.0, m.Cost(1))
}

func TestLoadYAML_Errors(t *testing.T) {
	_, err := mesh.LoadYAML(strings.NewReader("vertexes: []\n"))
	assert.ErrorIs(t, err, mesh.ErrParse)

	_, err = mesh.LoadYAML(strings.NewReader("vertices: [[0, 0, 0]]\nfaces: [[0, 1, 2]]\n"))
	assert.ErrorIs(t, err, mesh.ErrVertexIndex)

	_, err = mesh.LoadYAML(strings.NewReader(squareYAML + "extra: 1\n"))
	assert.ErrorIs(t, err, mesh.ErrParse)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	for _, path := range []string{write("square.obj", squareOBJ), write("square.YML", squareYAML), write("square.yaml", squareYAML)} {
		m, err := mesh.LoadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, 2, m.NumFaces(), path)
	}

	_, err := mesh.LoadFile(write("square.stl", squareOBJ))
	assert.ErrorIs(t, err, mesh.ErrParse)

	_, err = mesh.LoadFile(filepath.Join(dir, "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
