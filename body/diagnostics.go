package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TotalEnergy returns the total mechanical energy of the state y:
// kinetic plus softened pairwise potential. y must be a packed 6N
// vector; the universe's own state is not touched.
func (u *Universe) TotalEnergy(y []float64) float64 {
	kinetic, potential := 0.0, 0.0
	eps2 := u.Softening * u.Softening
	for i := 0; i < u.n; i++ {
		v := u.Vel(y, i)
		kinetic += 0.5 * u.mass[i] * r3.Norm2(v)
		pi := u.Pos(y, i)
		for j := i + 1; j < u.n; j++ {
			d := r3.Sub(u.Pos(y, j), pi)
			potential -= u.Gravity * u.mass[i] * u.mass[j] / math.Sqrt(r3.Norm2(d)+eps2)
		}
	}
	return kinetic + potential
}

// TotalMomentum returns the total linear momentum of the state y.
func (u *Universe) TotalMomentum(y []float64) r3.Vec {
	var p r3.Vec
	for i := 0; i < u.n; i++ {
		p = r3.Add(p, r3.Scale(u.mass[i], u.Vel(y, i)))
	}
	return p
}

// TotalAngularMomentum returns the total angular momentum of the state
// y about the origin.
func (u *Universe) TotalAngularMomentum(y []float64) r3.Vec {
	var l r3.Vec
	for i := 0; i < u.n; i++ {
		l = r3.Add(l, r3.Cross(u.Pos(y, i), r3.Scale(u.mass[i], u.Vel(y, i))))
	}
	return l
}

// MassCenter returns the center of mass of the state y.
func (u *Universe) MassCenter(y []float64) r3.Vec {
	var c r3.Vec
	total := 0.0
	for i := 0; i < u.n; i++ {
		c = r3.Add(c, r3.Scale(u.mass[i], u.Pos(y, i)))
		total += u.mass[i]
	}
	return r3.Scale(1/total, c)
}

// RelativeDrift measures |now-ref| scaled by |ref|, guarding the
// zero-reference case. Used by the driver's conservation checks.
func RelativeDrift(ref, now float64) float64 {
	if ref == 0 {
		return math.Abs(now)
	}
	return math.Abs((now - ref) / ref)
}
