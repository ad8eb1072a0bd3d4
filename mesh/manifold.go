package mesh

import "log/slog"

// markNonManifold flags vertices whose neighborhood is not a single fan.
//
// Two defects are detected:
//   - an edge shared by more than two faces invalidates both endpoints;
//   - a vertex whose incident faces split into several edge-connected fans
//     (a "bowtie") is invalid.
//
// The fan walk uses an explicit work list bounded by the vertex degree.
func (m *Mesh) markNonManifold() {
	for k, e := range m.edges {
		if len(e.faces) > 2 {
			m.invalidate(k.lo, "edge shared by more than two faces")
			m.invalidate(k.hi, "edge shared by more than two faces")
		}
	}

	for v := range m.vertexFaces {
		vh := VertexID(v)
		if !m.valid[vh] {
			continue
		}
		if fans := m.countFans(vh); fans > 1 {
			m.invalidate(vh, "faces form disconnected fans")
		}
	}
}

// countFans returns the number of edge-connected face groups around v.
func (m *Mesh) countFans(v VertexID) int {
	faces := m.vertexFaces[v]
	if len(faces) == 0 {
		return 0
	}
	visited := make(map[FaceID]bool, len(faces))
	fans := 0
	for _, seed := range faces {
		if visited[seed] {
			continue
		}
		fans++
		visited[seed] = true
		work := []FaceID{seed}
		for len(work) > 0 {
			f := work[len(work)-1]
			work = work[:len(work)-1]
			for _, w := range m.faces[f] {
				if w == v {
					continue
				}
				// faces across the spoke (v,w) belong to the same fan
				for _, g := range m.edges[keyOf(v, w)].faces {
					if !visited[g] {
						visited[g] = true
						work = append(work, g)
					}
				}
			}
		}
	}
	return fans
}

func (m *Mesh) invalidate(v VertexID, reason string) {
	if !m.valid[v] {
		return
	}
	m.valid[v] = false
	m.logger.Warn("non-manifold vertex",
		slog.Int("vertex", int(v)),
		slog.String("reason", reason),
	)
}
