package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"
)

// Document is the YAML mesh format:
//
//	vertices: [[x, y, z], ...]
//	faces:    [[i, j, k], ...]   # zero-based
//	costs:    [c0, c1, ...]      # optional, one per vertex
type Document struct {
	Vertices [][3]float64 `yaml:"vertices"`
	Faces    [][3]int     `yaml:"faces"`
	Costs    []float64    `yaml:"costs,omitempty"`
}

// LoadFile loads a mesh from path, choosing the format by extension
// (.obj, .yaml, .yml).
func LoadFile(path string, opts ...Option) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(f, opts...)
	case ".yaml", ".yml":
		return LoadYAML(f, opts...)
	}
	return nil, fmt.Errorf("%w: unsupported mesh format %q", ErrParse, filepath.Ext(path))
}

// LoadYAML decodes a Document and builds a Mesh. A cost layer in the
// document is applied before any caller options.
func LoadYAML(r io.Reader, opts ...Option) (*Mesh, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	positions := make([]r3.Vector, len(doc.Vertices))
	for i, v := range doc.Vertices {
		positions[i] = r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	}
	if doc.Costs != nil {
		opts = append([]Option{WithVertexCosts(doc.Costs)}, opts...)
	}
	return New(positions, doc.Faces, opts...)
}

// LoadOBJ reads the geometry of a Wavefront OBJ stream. Only "v" and "f"
// records are used; polygons are fan-triangulated, texture/normal indices
// and negative (relative) indices are accepted.
func LoadOBJ(r io.Reader, opts ...Option) (*Mesh, error) {
	var (
		positions []r3.Vector
		faces     [][3]int
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrParse, line)
			}
			var xyz [3]float64
			for k := 0; k < 3; k++ {
				x, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
				}
				xyz[k] = x
			}
			positions = append(positions, r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrParse, line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				i, err := objIndex(tok, len(positions))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				faces = append(faces, [3]int{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read obj: %w", err)
	}
	return New(positions, faces, opts...)
}

// objIndex converts an OBJ vertex reference ("7", "7/1", "7//3", "-1") to a
// zero-based index.
func objIndex(tok string, n int) (int, error) {
	if slash := strings.IndexByte(tok, '/'); slash >= 0 {
		tok = tok[:slash]
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0:
		return n + i, nil
	}
	return 0, fmt.Errorf("vertex index 0 is not valid")
}
