package epa

import (
	"container/heap"
)

// facetHeap orders live facet indices by squared distance to the origin,
// closest on top. It stores indices only; the facets stay in the arena.
type facetHeap struct {
	items  []FacetIndex
	facets *[MaxFacets]Facet
}

var _ heap.Interface = (*facetHeap)(nil)

func (h *facetHeap) Len() int { return len(h.items) }

func (h *facetHeap) Less(i, j int) bool {
	return h.facets[h.items[i]].SquaredDistance < h.facets[h.items[j]].SquaredDistance
}

func (h *facetHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *facetHeap) Push(x any) {
	h.items = append(h.items, x.(FacetIndex))
}

func (h *facetHeap) Pop() any {
	n := len(h.items) - 1
	item := h.items[n]
	h.items = h.items[:n]
	return item
}

// top returns the closest facet without removing it. The heap must not be empty.
func (h *facetHeap) top() *Facet {
	return &h.facets[h.items[0]]
}

func (h *facetHeap) reset() {
	h.items = h.items[:0]
}
