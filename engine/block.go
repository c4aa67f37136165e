package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// blockSize is the tile width of the inner pair loop. Sized so a
// tile's three coordinate slices and its mass slice stay resident in L1.
const blockSize = 64

// Block is the tiled direct-summation back-end: for each target body
// the j loop runs over tiles of blockSize source bodies. Targets are
// not tiled, so every source tile is streamed once per target body.
// The outer loop is mapped over the worker pool like the openmp
// engine.
type Block struct {
	host
	workers int
}

// NewBlock returns the cache-blocked direct-summation engine. With
// workers <= 0 the pool sizes itself to GOMAXPROCS.
func NewBlock(workers int) *Block {
	return &Block{workers: NewParallel(workers).workers}
}

func (e *Block) TypeName() string { return "block" }

func (e *Block) Fcompute(t float64, y, f *Buffer) error {
	if err := e.checkCompute(y, f); err != nil {
		return err
	}
	e.adviseCompute()
	e.copyVelocities(y, f)

	n := e.data.N()
	yd, fd := y.Elems(), f.Elems()
	rx, ry, rz := yd[:n], yd[n:2*n], yd[2*n:3*n]
	mass := e.data.Masses()
	g, eps2 := e.data.Gravity, e.data.Softening*e.data.Softening

	parallelFor(e.workers, n, func(i int) {
		pi := r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]}
		var acc r3.Vec
		for j0 := 0; j0 < n; j0 += blockSize {
			j1 := j0 + blockSize
			if j1 > n {
				j1 = n
			}
			for j := j0; j < j1; j++ {
				if j == i {
					continue
				}
				d := r3.Vec{X: rx[j] - pi.X, Y: ry[j] - pi.Y, Z: rz[j] - pi.Z}
				r2 := r3.Norm2(d) + eps2
				acc = r3.Add(acc, r3.Scale(g*mass[j]/(r2*math.Sqrt(r2)), d))
			}
		}
		fd[3*n+i] = acc.X
		fd[4*n+i] = acc.Y
		fd[5*n+i] = acc.Z
	})
	return nil
}
