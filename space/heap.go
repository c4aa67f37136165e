package space

import "gonum.org/v1/gonum/spatial/r3"

// heapEmpty marks array slots that no node occupies. The heap is
// padded to complete-tree shape; padded slots carry zero mass and are
// unreachable because traversal never descends past a leaf.
const heapEmpty = -2

// Heap is the breadth-first implicit-array layout: the children of
// node k live at 2k+1 and 2k+2. body[k] distinguishes leaves (>= 0,
// the body index) from internal nodes (-1) and padding.
type Heap struct {
	com    []r3.Vec
	mass   []float64
	radius []float64
	body   []int // body index for leaves, -1 internal, heapEmpty padding
	kernel Kernel
}

func buildHeap(rx, ry, rz, m []float64, k Kernel) *Heap {
	h := &Heap{kernel: k}
	h.alloc(len(m))
	idx := make([]int, len(m))
	for i := range idx {
		idx[i] = i
	}
	h.fill(0, rx, ry, rz, m, idx)
	return h
}

// alloc sizes the node arrays for a complete tree over n leaves. The
// median split keeps the tree shape-balanced, so depth is bounded by
// ceil(log2 n).
func (h *Heap) alloc(n int) {
	depth := 0
	for 1<<depth < n {
		depth++
	}
	size := 1<<(depth+1) - 1
	h.com = make([]r3.Vec, size)
	h.mass = make([]float64, size)
	h.radius = make([]float64, size)
	h.body = make([]int, size)
	for i := range h.body {
		h.body[i] = heapEmpty
	}
}

func (h *Heap) fill(k int, rx, ry, rz, m []float64, idx []int) {
	if len(idx) == 1 {
		i := idx[0]
		h.com[k] = r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]}
		h.mass[k] = m[i]
		h.body[k] = i
		return
	}
	b := boxOf(rx, ry, rz, idx)
	left, right := split(rx, ry, rz, idx, b)
	h.radius[k] = b.radius()
	h.body[k] = -1
	h.mass[k], h.com[k] = massMoments(rx, ry, rz, m, idx)
	h.fill(2*k+1, rx, ry, rz, m, left)
	h.fill(2*k+2, rx, ry, rz, m, right)
}

// AccelAt walks the heap with an explicit stack of node indices.
func (h *Heap) AccelAt(self int, p r3.Vec) r3.Vec {
	var acc r3.Vec
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if k >= len(h.body) || h.body[k] == heapEmpty {
			continue
		}
		if h.body[k] >= 0 {
			if h.body[k] != self {
				acc = r3.Add(acc, h.kernel.PairAccel(r3.Sub(h.com[k], p), h.mass[k]))
			}
			continue
		}
		d := r3.Sub(h.com[k], p)
		if h.kernel.accepted(r3.Norm2(d), h.radius[k]*h.radius[k]) {
			acc = r3.Add(acc, h.kernel.PairAccel(d, h.mass[k]))
			continue
		}
		// Push the right child first so the left subtree is gathered
		// first, matching the pointer layout's summation order.
		stack = append(stack, 2*k+2, 2*k+1)
	}
	return acc
}

// VisitBodies reports every leaf body in left-to-right tree order.
func (h *Heap) VisitBodies(visit func(body int, p r3.Vec, m float64)) {
	h.visit(0, visit)
}

func (h *Heap) visit(k int, visit func(body int, p r3.Vec, m float64)) {
	if k >= len(h.body) || h.body[k] == heapEmpty {
		return
	}
	if h.body[k] >= 0 {
		visit(h.body[k], h.com[k], h.mass[k])
		return
	}
	h.visit(2*k+1, visit)
	h.visit(2*k+2, visit)
}
