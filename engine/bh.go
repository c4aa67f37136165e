package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nbodyx/nbody/space"
)

// BarnesHut approximates the pair sum through a spatial index: distant
// groups of bodies collapse to their multipole when they pass the
// acceptance criterion D > theta*R. The index is rebuilt from the
// current positions on every Fcompute and discarded before it returns.
type BarnesHut struct {
	host
	ratio    float64
	traverse space.Traverse
	layout   space.Layout
	workers  int
}

// NewBarnesHut returns a Barnes-Hut engine with the given
// distance-to-node-radius ratio, traversal mode and index layout.
func NewBarnesHut(ratio float64, tt space.Traverse, tl space.Layout, workers int) *BarnesHut {
	return &BarnesHut{
		ratio:    ratio,
		traverse: tt,
		layout:   tl,
		workers:  NewParallel(workers).workers,
	}
}

func (e *BarnesHut) TypeName() string { return "simple_bh" }

// Ratio returns the multipole-acceptance ratio theta.
func (e *BarnesHut) Ratio() float64 { return e.ratio }

// TraverseType returns the configured traversal mode.
func (e *BarnesHut) TraverseType() space.Traverse { return e.traverse }

// TreeLayout returns the configured index layout.
func (e *BarnesHut) TreeLayout() space.Layout { return e.layout }

func (e *BarnesHut) Fcompute(t float64, y, f *Buffer) error {
	if err := e.checkCompute(y, f); err != nil {
		return err
	}
	e.adviseCompute()
	e.copyVelocities(y, f)

	n := e.data.N()
	yd, fd := y.Elems(), f.Elems()
	rx, ry, rz := yd[:n], yd[n:2*n], yd[2*n:3*n]
	kernel := space.Kernel{
		G:     e.data.Gravity,
		Eps2:  e.data.Softening * e.data.Softening,
		Ratio: e.ratio,
	}
	idx, err := space.Build(e.layout, rx, ry, rz, e.data.Masses(), kernel)
	if err != nil {
		return err
	}

	writeAccel := func(i int, acc r3.Vec) {
		fd[3*n+i] = acc.X
		fd[4*n+i] = acc.Y
		fd[5*n+i] = acc.Z
	}

	switch e.traverse {
	case space.TraverseNestedTree:
		// The index enumerates its own leaves; the per-leaf gather is
		// the same walk the cycle mode does, so both modes agree up to
		// summation order.
		idx.VisitBodies(func(i int, p r3.Vec, _ float64) {
			writeAccel(i, idx.AccelAt(i, p))
		})
	default:
		parallelFor(e.workers, n, func(i int) {
			p := r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]}
			writeAccel(i, idx.AccelAt(i, p))
		})
	}
	return nil
}
