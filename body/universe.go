// Package body holds the particle data for a gravitational N-body
// problem: masses, the packed position/velocity state vector, and the
// conserved-quantity diagnostics computed from it.
package body

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// StateStride is the number of scalars per body in the packed state
// vector. The layout is six blocks of length N:
//
//	[rx | ry | rz | vx | vy | vz]
//
// Every engine primitive and every solver linear combination assumes
// this layout.
const StateStride = 6

// Universe is the bound dataset of an engine: N point masses with
// their packed state, plus per-body metadata that only matters at the
// boundary (viewers, recorders).
type Universe struct {
	n     int
	mass  []float64
	state []float64 // 6n scalars, block layout

	// Gravity is the gravitational constant G used by all force kernels.
	Gravity float64
	// Softening is the short-range regulariser epsilon added in
	// quadrature to pair distances.
	Softening float64

	// Color and Radius are opaque per-body metadata. The core never
	// reads them.
	Color  []uint32
	Radius []float64
}

// New creates an empty universe for n bodies with unit gravity and a
// small default softening. Masses and state start zeroed.
func New(n int) *Universe {
	if n <= 0 {
		panic(fmt.Sprintf("body: universe size must be positive, got %d", n))
	}
	return &Universe{
		n:         n,
		mass:      make([]float64, n),
		state:     make([]float64, StateStride*n),
		Gravity:   1,
		Softening: 1e-6,
		Color:     make([]uint32, n),
		Radius:    make([]float64, n),
	}
}

// N returns the body count.
func (u *Universe) N() int { return u.n }

// ProblemSize returns the length of the packed state vector, 6N.
func (u *Universe) ProblemSize() int { return StateStride * u.n }

// Masses returns the mass vector. It is read-only after initialization;
// callers must not modify it.
func (u *Universe) Masses() []float64 { return u.mass }

// State returns the packed state vector [rx|ry|rz|vx|vy|vz].
func (u *Universe) State() []float64 { return u.state }

// SetBody places body i at position p with velocity v and mass m.
func (u *Universe) SetBody(i int, m float64, p, v r3.Vec) {
	if m <= 0 {
		panic(fmt.Sprintf("body: mass of body %d must be positive, got %g", i, m))
	}
	u.mass[i] = m
	n := u.n
	u.state[i] = p.X
	u.state[n+i] = p.Y
	u.state[2*n+i] = p.Z
	u.state[3*n+i] = v.X
	u.state[4*n+i] = v.Y
	u.state[5*n+i] = v.Z
}

// Pos returns the position of body i in the given packed state vector.
func (u *Universe) Pos(y []float64, i int) r3.Vec {
	n := u.n
	return r3.Vec{X: y[i], Y: y[n+i], Z: y[2*n+i]}
}

// Vel returns the velocity of body i in the given packed state vector.
func (u *Universe) Vel(y []float64, i int) r3.Vec {
	n := u.n
	return r3.Vec{X: y[3*n+i], Y: y[4*n+i], Z: y[5*n+i]}
}
