package wavefront

import "github.com/katalvlaran/meshpath/mesh"

// queueItem is a vertex and the tentative distance it was queued with.
type queueItem struct {
	id   mesh.VertexID
	dist float64
}

// vertexPQ is a min-heap of queueItem ordered by dist ascending.
// We use the “lazy-decrease-key” approach: an improved vertex is pushed again
// and the outdated entry is ignored when popped (checked via expanded[v]).
// Ties are broken by vertex ID so pop order is deterministic.
type vertexPQ []queueItem

func (pq vertexPQ) Len() int { return len(pq) }

func (pq vertexPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}

func (pq vertexPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push is called by heap.Push; x must be a queueItem.
func (pq *vertexPQ) Push(x interface{}) { *pq = append(*pq, x.(queueItem)) }

// Pop is called by heap.Pop.
func (pq *vertexPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
