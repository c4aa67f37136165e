package space

import "gonum.org/v1/gonum/spatial/r3"

// treeNode is one node of the pointer-linked layout. Leaves carry the
// index of their single body; internal nodes cache the mass moments
// and MAC radius of their subtree.
type treeNode struct {
	left, right *treeNode
	com         r3.Vec
	mass        float64
	radius      float64
	body        int // leaf body index, -1 for internal nodes
}

// Tree is the pointer-linked index layout.
type Tree struct {
	root   *treeNode
	kernel Kernel
}

func buildTree(rx, ry, rz, m []float64, k Kernel) *Tree {
	idx := make([]int, len(m))
	for i := range idx {
		idx[i] = i
	}
	return &Tree{root: buildTreeNode(rx, ry, rz, m, idx), kernel: k}
}

func buildTreeNode(rx, ry, rz, m []float64, idx []int) *treeNode {
	if len(idx) == 0 {
		return nil
	}
	if len(idx) == 1 {
		i := idx[0]
		return &treeNode{
			com:  r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]},
			mass: m[i],
			body: i,
		}
	}
	b := boxOf(rx, ry, rz, idx)
	left, right := split(rx, ry, rz, idx, b)
	n := &treeNode{radius: b.radius(), body: -1}
	// Moments are summed right after the split, before the children
	// reorder idx, so every layout accumulates them identically.
	n.mass, n.com = massMoments(rx, ry, rz, m, idx)
	n.left = buildTreeNode(rx, ry, rz, m, left)
	n.right = buildTreeNode(rx, ry, rz, m, right)
	return n
}

// AccelAt walks the tree from the root, collapsing accepted nodes to
// their multipole and descending otherwise. Contributions accumulate
// in left-first depth-first order; the heap layouts visit nodes in the
// same order, so all layouts sum in the same sequence.
func (t *Tree) AccelAt(self int, p r3.Vec) r3.Vec {
	var acc r3.Vec
	t.accel(t.root, self, p, &acc)
	return acc
}

func (t *Tree) accel(n *treeNode, self int, p r3.Vec, acc *r3.Vec) {
	if n == nil {
		return
	}
	if n.body >= 0 {
		if n.body != self {
			*acc = r3.Add(*acc, t.kernel.PairAccel(r3.Sub(n.com, p), n.mass))
		}
		return
	}
	d := r3.Sub(n.com, p)
	if t.kernel.accepted(r3.Norm2(d), n.radius*n.radius) {
		*acc = r3.Add(*acc, t.kernel.PairAccel(d, n.mass))
		return
	}
	t.accel(n.left, self, p, acc)
	t.accel(n.right, self, p, acc)
}

// VisitBodies reports every leaf body in left-to-right tree order.
func (t *Tree) VisitBodies(visit func(body int, p r3.Vec, m float64)) {
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if n == nil {
			return
		}
		if n.body >= 0 {
			visit(n.body, n.com, n.mass)
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(t.root)
}
