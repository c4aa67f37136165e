package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nbodyx/nbody/body"
)

// Simple is the reference O(N^2) back-end: a serial direct pair sum
// with softening. Every other engine is validated against it.
type Simple struct {
	host
}

// NewSimple returns the serial direct-summation engine.
func NewSimple() *Simple { return &Simple{} }

func (e *Simple) TypeName() string { return "simple" }

func (e *Simple) Fcompute(t float64, y, f *Buffer) error {
	if err := e.checkCompute(y, f); err != nil {
		return err
	}
	e.adviseCompute()
	e.copyVelocities(y, f)
	for i := 0; i < e.data.N(); i++ {
		bodyAccel(e.data, y.Elems(), f.Elems(), i)
	}
	return nil
}

// bodyAccel writes the acceleration of body i into the last 3N block
// of f. The sum over j runs sequentially, so a body's result does not
// depend on how bodies are distributed over workers.
func bodyAccel(u *body.Universe, y, f []float64, i int) {
	n := u.N()
	rx, ry, rz := y[:n], y[n:2*n], y[2*n:3*n]
	mass := u.Masses()
	g, eps2 := u.Gravity, u.Softening*u.Softening

	pi := r3.Vec{X: rx[i], Y: ry[i], Z: rz[i]}
	var acc r3.Vec
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		d := r3.Vec{X: rx[j] - pi.X, Y: ry[j] - pi.Y, Z: rz[j] - pi.Z}
		r2 := r3.Norm2(d) + eps2
		acc = r3.Add(acc, r3.Scale(g*mass[j]/(r2*math.Sqrt(r2)), d))
	}
	f[3*n+i] = acc.X
	f[4*n+i] = acc.Y
	f[5*n+i] = acc.Z
}
