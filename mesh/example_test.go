package mesh_test

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/katalvlaran/meshpath/mesh"
)

// ExampleNew builds a unit square from two triangles and inspects it.
func ExampleNew() {
	positions := []r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m, err := mesh.New(positions, [][3]int{{0, 1, 2}, {0, 2, 3}})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	nbrs, _ := m.Neighbors(0)
	fmt.Printf("%+v\n", m.Stats())
	fmt.Println("neighbors of 0:", nbrs)
	// Output:
	// {Vertices:4 Faces:2 Edges:5 Invalid:0}
	// neighbors of 0: [1 2 3]
}

// ExampleMesh_ContainingFace resolves points to the faces they lie on.
func ExampleMesh_ContainingFace() {
	positions := []r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m, _ := mesh.New(positions, [][3]int{{0, 1, 2}, {0, 2, 3}})

	for _, p := range []r3.Vector{{X: 0.8, Y: 0.2}, {X: 0.2, Y: 0.8, Z: 0.1}, {X: 3, Y: 3}} {
		f, ok := m.ContainingFace(p, 0.2)
		fmt.Println(f, ok)
	}
	// Output:
	// 0 true
	// 1 true
	// -1 false
}
