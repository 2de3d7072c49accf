package counter

import "container/heap"

// candidate is a live track whose proximity window contains the new centroid
type candidate struct {
	// Position in the engine arena. Lower means older track
	index    int
	distance float64
}

// candidateHeap is a min-heap of candidates: nearest first, older track first on equal distance
type candidateHeap []candidate

func newCandidateHeap(capacity int) *candidateHeap {
	h := make(candidateHeap, 0, capacity)
	return &h
}

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].distance == h[j].distance {
		return h[i].index < h[j].index
	}
	return h[i].distance < h[j].distance
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push and Pop satisfy heap.Interface; use add and next instead
func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *candidateHeap) add(c candidate) {
	heap.Push(h, c)
}

// next removes and returns the best remaining candidate
func (h *candidateHeap) next() candidate {
	return heap.Pop(h).(candidate)
}
