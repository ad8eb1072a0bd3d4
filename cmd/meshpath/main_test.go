package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/meshpath/mesh"
	"github.com/katalvlaran/meshpath/meshgen"
)

// writeFlatMesh stores a flat w×w grid as a YAML mesh and returns its path.
func writeFlatMesh(t *testing.T, w int) string {
	t.Helper()
	terrain, err := meshgen.Flat(w, w, meshgen.DefaultTerrainOptions())
	require.NoError(t, err)
	positions, faces := terrain.Triangles()
	doc := mesh.Document{Faces: faces}
	for _, p := range positions {
		doc.Vertices = append(doc.Vertices, [3]float64{p.X, p.Y, p.Z})
	}
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "flat.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestPlanCommand(t *testing.T) {
	meshPath := writeFlatMesh(t, 8)
	stdout, stderr, err := run(t, "plan", "--mesh", meshPath, "--start", "0.2,0.3,0", "--goal", "6.5,5.4")
	require.NoError(t, err, stderr)

	var out struct {
		PlanID string       `json:"plan_id"`
		Cost   float64      `json:"cost"`
		Path   []poseOutput `json:"path"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "SUCCESS", jsonField(t, stdout, "outcome"))
	assert.NotEmpty(t, out.PlanID)
	require.GreaterOrEqual(t, len(out.Path), 2)
	assert.Equal(t, [3]float64{0.2, 0.3, 0}, out.Path[0].Position)
	assert.Equal(t, [3]float64{6.5, 5.4, 0}, out.Path[len(out.Path)-1].Position)
	assert.Greater(t, out.Cost, 8.0)
	assert.Contains(t, stderr, "plan finished")
}

func TestPlanCommand_ConfigAndOutcome(t *testing.T) {
	meshPath := writeFlatMesh(t, 5)
	cfgPath := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("locate_tolerance: 0.05\n"), 0o644))

	// 0.1 above the surface only resolves with the default tolerance
	args := []string{"plan", "--mesh", meshPath, "--start", "1.2,1.1,0.1", "--goal", "3.5,3.2,0"}
	stdout, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", jsonField(t, stdout, "outcome"))

	stdout, _, err = run(t, append(args, "--config", cfgPath, "--log-format", "json")...)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_START", jsonField(t, stdout, "outcome"))
}

func TestPlanCommand_Errors(t *testing.T) {
	meshPath := writeFlatMesh(t, 4)
	cases := []struct {
		name string
		args []string
	}{
		{"missing mesh", []string{"plan", "--start", "0,0", "--goal", "1,1"}},
		{"bad point", []string{"plan", "--mesh", meshPath, "--start", "0;0", "--goal", "1,1"}},
		{"missing goal", []string{"plan", "--mesh", meshPath, "--start", "0,0"}},
		{"unknown mesh format", []string{"plan", "--mesh", "terrain.stl", "--start", "0,0", "--goal", "1,1"}},
		{"bad log level", []string{"plan", "--log-level", "loud", "--mesh", meshPath, "--start", "0,0", "--goal", "1,1"}},
		{"bad log format", []string{"plan", "--log-format", "xml", "--mesh", meshPath, "--start", "0,0", "--goal", "1,1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	meshPath := writeFlatMesh(t, 8)
	queries := `queries:
  - id: diagonal
    start: [0.2, 0.3, 0]
    goal: [6.5, 5.4, 0]
  - id: outside
    start: [0.2, 0.3, 0]
    goal: [40, 40, 0]
  - start: [3.3, 0.4, 0]
    goal: [0.6, 6.2, 0]
`
	qPath := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(qPath, []byte(queries), 0o644))

	stdout, stderr, err := run(t, "batch", "--mesh", meshPath, "--queries", qPath, "--parallel", "2")
	require.NoError(t, err, stderr)

	var lines []string
	sc := bufio.NewScanner(bytes.NewBufferString(stdout))
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)

	want := []struct{ id, outcome string }{
		{"diagonal", "SUCCESS"},
		{"outside", "INVALID_GOAL"},
		{"q2", "SUCCESS"},
	}
	for i, w := range want {
		assert.Equal(t, w.id, jsonField(t, lines[i], "id"))
		assert.Equal(t, w.outcome, jsonField(t, lines[i], "outcome"))
	}
}

func TestBatchCommand_Errors(t *testing.T) {
	meshPath := writeFlatMesh(t, 4)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("querys: []\n"), 0o644))

	_, _, err := run(t, "batch", "--mesh", meshPath, "--queries", bad)
	assert.Error(t, err, "unknown keys are rejected")

	_, _, err = run(t, "batch", "--mesh", meshPath, "--queries", bad, "--parallel", "0")
	assert.Error(t, err)

	_, _, err = run(t, "batch", "--mesh", meshPath, "--queries", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("1.5, -2,3")
	require.NoError(t, err)
	assert.Equal(t, 1.5, p.X)
	assert.Equal(t, -2.0, p.Y)
	assert.Equal(t, 3.0, p.Z)

	p, err = parsePoint("4,5")
	require.NoError(t, err)
	assert.Zero(t, p.Z)

	for _, bad := range []string{"", "1", "1,2,3,4", "a,b"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func jsonField(t *testing.T, line, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	s, _ := m[key].(string)

	return s
}
