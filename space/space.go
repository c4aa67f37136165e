// Package space builds hierarchical spatial indices over body
// positions and evaluates softened gravitational accelerations through
// them. Three layouts of the same binary partitioning tree are
// provided: a pointer-linked tree, a breadth-first implicit heap, and
// a heap with precomputed skip links for stackless traversal.
//
// All layouts subdivide along the longest axis of a node's bounding
// box at the median body, so the three trees contain the same nodes in
// the same shape and differ only in storage.
package space

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Layout selects the storage scheme of the index.
type Layout uint8

const (
	// LayoutTree is a pointer-linked tree with recursive traversal.
	LayoutTree Layout = iota
	// LayoutHeap stores nodes breadth-first in a flat array; the
	// children of node k live at 2k+1 and 2k+2.
	LayoutHeap
	// LayoutHeapStackless is the heap layout plus per-node descend and
	// skip links, so traversal advances a single cursor.
	LayoutHeapStackless
)

// Traverse selects how accelerations are gathered from the index.
type Traverse uint8

const (
	// TraverseCycle walks the index once per body; the per-body walks
	// are independent and may run concurrently.
	TraverseCycle Traverse = iota
	// TraverseNestedTree lets the index itself enumerate the bodies by
	// walking down to its leaves, then gathers per-body forces.
	TraverseNestedTree
)

// ErrUnknownLayout reports a tree layout name outside
// {tree, heap, heap_stackless}.
var ErrUnknownLayout = errors.New("space: unknown tree layout")

// ErrUnknownTraverse reports a traverse type name outside
// {cycle, nested_tree}.
var ErrUnknownTraverse = errors.New("space: unknown traverse type")

// ParseLayout maps a boundary string onto a Layout.
func ParseLayout(name string) (Layout, error) {
	switch name {
	case "tree":
		return LayoutTree, nil
	case "heap":
		return LayoutHeap, nil
	case "heap_stackless":
		return LayoutHeapStackless, nil
	}
	return 0, ErrUnknownLayout
}

// String returns the boundary name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutTree:
		return "tree"
	case LayoutHeap:
		return "heap"
	case LayoutHeapStackless:
		return "heap_stackless"
	}
	return "unknown"
}

// ParseTraverse maps a boundary string onto a Traverse.
func ParseTraverse(name string) (Traverse, error) {
	switch name {
	case "cycle":
		return TraverseCycle, nil
	case "nested_tree":
		return TraverseNestedTree, nil
	}
	return 0, ErrUnknownTraverse
}

// String returns the boundary name of the traverse type.
func (t Traverse) String() string {
	switch t {
	case TraverseCycle:
		return "cycle"
	case TraverseNestedTree:
		return "nested_tree"
	}
	return "unknown"
}

// Kernel carries the physics of the pair interaction and the
// multipole-acceptance ratio. Ratio is the distance-to-node-radius
// threshold theta: a node of radius R at distance D collapses to a
// single multipole when D > theta*R.
type Kernel struct {
	G     float64
	Eps2  float64 // softening length squared
	Ratio float64
}

// PairAccel returns the acceleration contribution of a point of mass m
// displaced by d from the test position.
func (k Kernel) PairAccel(d r3.Vec, m float64) r3.Vec {
	r2 := r3.Norm2(d) + k.Eps2
	if r2 == 0 {
		return r3.Vec{}
	}
	return r3.Scale(k.G*m/(r2*math.Sqrt(r2)), d)
}

// accepted reports whether a node with squared radius r2 at squared
// distance d2 passes the multipole-acceptance criterion D > theta*R.
func (k Kernel) accepted(d2, r2 float64) bool {
	return d2 > k.Ratio*k.Ratio*r2
}

// Index is the common contract of the three layouts. An index is
// immutable once built; concurrent AccelAt calls are safe.
type Index interface {
	// AccelAt accumulates the softened acceleration felt at p, skipping
	// the contribution of the body with index self (pass a negative
	// self to include every body).
	AccelAt(self int, p r3.Vec) r3.Vec
	// VisitBodies walks the index down to its leaves, reporting each
	// contained body once with its position and mass.
	VisitBodies(visit func(body int, p r3.Vec, m float64))
}

// Build constructs an index of the requested layout over the body
// arrays. The coordinate and mass slices must share one length.
func Build(l Layout, rx, ry, rz, m []float64, k Kernel) (Index, error) {
	switch l {
	case LayoutTree:
		return buildTree(rx, ry, rz, m, k), nil
	case LayoutHeap:
		return buildHeap(rx, ry, rz, m, k), nil
	case LayoutHeapStackless:
		return buildHeapStackless(rx, ry, rz, m, k), nil
	}
	return nil, ErrUnknownLayout
}

// box is an axis-aligned bounding volume.
type box struct {
	min, max r3.Vec
}

func boxOf(rx, ry, rz []float64, idx []int) box {
	b := box{
		min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, i := range idx {
		b.min.X = math.Min(b.min.X, rx[i])
		b.min.Y = math.Min(b.min.Y, ry[i])
		b.min.Z = math.Min(b.min.Z, rz[i])
		b.max.X = math.Max(b.max.X, rx[i])
		b.max.Y = math.Max(b.max.Y, ry[i])
		b.max.Z = math.Max(b.max.Z, rz[i])
	}
	return b
}

// radius is half the longest box edge, the R of the MAC.
func (b box) radius() float64 {
	e := r3.Sub(b.max, b.min)
	return 0.5 * math.Max(e.X, math.Max(e.Y, e.Z))
}

// longestAxis returns 0, 1 or 2 for x, y or z.
func (b box) longestAxis() int {
	e := r3.Sub(b.max, b.min)
	if e.X >= e.Y && e.X >= e.Z {
		return 0
	}
	if e.Y >= e.Z {
		return 1
	}
	return 2
}

// split orders idx along the longest box axis and divides it at the
// median. The left half takes the extra body when the count is odd,
// which keeps every layout's tree the same shape. Ties break on body
// index so all layouts subdivide identically.
func split(rx, ry, rz []float64, idx []int, b box) (left, right []int) {
	var coord []float64
	switch b.longestAxis() {
	case 0:
		coord = rx
	case 1:
		coord = ry
	default:
		coord = rz
	}
	sort.Slice(idx, func(a, c int) bool {
		if coord[idx[a]] != coord[idx[c]] {
			return coord[idx[a]] < coord[idx[c]]
		}
		return idx[a] < idx[c]
	})
	mid := (len(idx) + 1) / 2
	return idx[:mid], idx[mid:]
}

// massMoments returns the total mass and center of mass of the bodies
// in idx.
func massMoments(rx, ry, rz, m []float64, idx []int) (float64, r3.Vec) {
	total := 0.0
	var c r3.Vec
	for _, i := range idx {
		total += m[i]
		c = r3.Add(c, r3.Scale(m[i], r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]}))
	}
	return total, r3.Scale(1/total, c)
}
