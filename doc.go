// Package meshpath plans shortest paths across triangulated terrain: the
// geodesic counterpart of grid search for robots that drive on a mesh.
//
// A plan runs in three stages:
//
//	wavefront/   : geodesic distance propagation from the start face, the
//	               surface analogue of Dijkstra, stopping once the goal face
//	               is fixed
//	vectorfield/ : per-vertex unit directions of steepest descent toward
//	               the start, rebuilt from each vertex's predecessor and
//	               unfolding angle
//	backtrack/   : fixed-length steps along the interpolated field from the
//	               goal back to the start, relocating each sample to its face
//
// and is driven by planner/, which resolves the endpoints and steps through
// the stages as a state machine. A plan reports an outcome (SUCCESS,
// INVALID_START, INVALID_GOAL, NO_PATH_FOUND, CANCELED) together with the
// path and its cost.
//
// Supporting packages:
//
//	mesh/     : immutable triangle mesh: adjacency, manifold checks,
//	            face location, OBJ and YAML loaders
//	meshgen/  : triangulated terrains from height grids, with slope costs
//	config/   : planning parameters: defaults, YAML, environment overrides
//	cmd/meshpath : command line front end (plan, batch)
//
// Quick ASCII example of one unfolding step:
//
//	      v3
//	     /  \
//	   v1────v2      d(v3) from d(v1), d(v2) and the edge lengths
//	     \  /
//	      S          virtual source unfolded into the plane of the face
//
//	go get github.com/katalvlaran/meshpath
package meshpath
