package space

import "gonum.org/v1/gonum/spatial/r3"

// HeapStackless is the heap layout plus two precomputed link arrays:
// descend[k] is the next node when k must be opened, skip[k] is the
// next node when k's subtree has been consumed. Traversal is a single
// cursor walk with no recursion and no stack.
type HeapStackless struct {
	Heap
	descend []int32
	skip    []int32
}

// heapEnd terminates the cursor walk.
const heapEnd = -1

func buildHeapStackless(rx, ry, rz, m []float64, k Kernel) *HeapStackless {
	h := &HeapStackless{Heap: *buildHeap(rx, ry, rz, m, k)}
	h.descend = make([]int32, len(h.body))
	h.skip = make([]int32, len(h.body))
	h.link(0, heapEnd)
	return h
}

// link assigns the traversal links of the subtree rooted at k, where
// onSkip is the node that follows the whole subtree.
func (h *HeapStackless) link(k, onSkip int) {
	h.skip[k] = int32(onSkip)
	if h.body[k] >= 0 {
		h.descend[k] = int32(onSkip)
		return
	}
	left, right := 2*k+1, 2*k+2
	h.descend[k] = int32(left)
	h.link(left, right)
	h.link(right, onSkip)
}

// AccelAt walks the precomputed links: accepted or leaf nodes advance
// via skip, opened nodes advance via descend. The node sequence is the
// same left-first order the other layouts produce.
func (h *HeapStackless) AccelAt(self int, p r3.Vec) r3.Vec {
	var acc r3.Vec
	for k := 0; k != heapEnd; {
		if h.body[k] >= 0 {
			if h.body[k] != self {
				acc = r3.Add(acc, h.kernel.PairAccel(r3.Sub(h.com[k], p), h.mass[k]))
			}
			k = int(h.skip[k])
			continue
		}
		d := r3.Sub(h.com[k], p)
		if h.kernel.accepted(r3.Norm2(d), h.radius[k]*h.radius[k]) {
			acc = r3.Add(acc, h.kernel.PairAccel(d, h.mass[k]))
			k = int(h.skip[k])
			continue
		}
		k = int(h.descend[k])
	}
	return acc
}
