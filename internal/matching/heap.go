package matching

import (
	"container/heap"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// bidHeap is a max-heap on (price, sequence): best price first,
// earliest order_id first among ties. sequence is the order_id,
// which resolves the open question in spec.md §9 in favor of FIFO
// time-priority rather than leaving ties unspecified.
type bidHeap []*types.Order

func (h bidHeap) Len() int { return len(h) }
func (h bidHeap) Less(i, j int) bool {
	if h[i].Price != h[j].Price {
		return h[i].Price > h[j].Price
	}
	return h[i].OrderID < h[j].OrderID
}
func (h bidHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *bidHeap) Push(x any)        { *h = append(*h, x.(*types.Order)) }
func (h *bidHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// askHeap is a min-heap on (price, sequence): best (lowest) price
// first, earliest order_id first among ties.
type askHeap []*types.Order

func (h askHeap) Len() int { return len(h) }
func (h askHeap) Less(i, j int) bool {
	if h[i].Price != h[j].Price {
		return h[i].Price < h[j].Price
	}
	return h[i].OrderID < h[j].OrderID
}
func (h askHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *askHeap) Push(x any)        { *h = append(*h, x.(*types.Order)) }
func (h *askHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var (
	_ heap.Interface = (*bidHeap)(nil)
	_ heap.Interface = (*askHeap)(nil)
)
