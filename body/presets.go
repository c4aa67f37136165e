package body

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// NewRandomBox fills a universe with n bodies spread uniformly inside
// an axis-aligned box of the given half-extents, with masses drawn
// log-uniformly in [1, 100] and small random velocities. Deterministic
// for a fixed seed.
func NewRandomBox(n int, sx, sy, sz float64, seed int64) *Universe {
	u := New(n)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		p := r3.Vec{
			X: (2*rng.Float64() - 1) * sx,
			Y: (2*rng.Float64() - 1) * sy,
			Z: (2*rng.Float64() - 1) * sz,
		}
		v := r3.Vec{
			X: (2*rng.Float64() - 1),
			Y: (2*rng.Float64() - 1),
			Z: (2*rng.Float64() - 1),
		}
		m := math.Pow(10, 2*rng.Float64())
		u.SetBody(i, m, p, v)
	}
	return u
}

// NewKeplerPair builds the canonical two-body bound orbit: unit
// masses at (+-1/2, 0, 0) with velocities (0, +-1/2, 0) and G = 1.
func NewKeplerPair() *Universe {
	u := New(2)
	u.Softening = 0
	u.SetBody(0, 1, r3.Vec{X: 0.5}, r3.Vec{Y: 0.5})
	u.SetBody(1, 1, r3.Vec{X: -0.5}, r3.Vec{Y: -0.5})
	return u
}

// KeplerPeriod returns the orbital period of the NewKeplerPair setup,
// T = 2*pi*a^(3/2)/sqrt(m1+m2). Vis-viva on the relative orbit
// (separation 1, relative speed 1, mu = 2) gives a = 2/3.
func KeplerPeriod() float64 {
	const a = 2. / 3.
	return 2 * math.Pi * math.Pow(a, 1.5) / math.Sqrt(2)
}

// NewFigureEight builds the Chenciner-Montgomery periodic three-body
// solution: three unit masses chasing each other along a planar
// figure-eight, G = 1. The orbit is periodic with period
// FigureEightPeriod.
func NewFigureEight() *Universe {
	const (
		px, py = 0.97000436, -0.24308753
		vx, vy = -0.93240737, -0.86473146
	)
	u := New(3)
	u.Softening = 0
	u.SetBody(0, 1, r3.Vec{X: px, Y: py}, r3.Vec{X: -vx / 2, Y: -vy / 2})
	u.SetBody(1, 1, r3.Vec{X: -px, Y: -py}, r3.Vec{X: -vx / 2, Y: -vy / 2})
	u.SetBody(2, 1, r3.Vec{}, r3.Vec{X: vx, Y: vy})
	return u
}

// FigureEightPeriod is the period of the NewFigureEight orbit.
func FigureEightPeriod() float64 { return 6.32591398 }

// NewColdSphere places n equal-mass bodies uniformly inside a unit
// sphere with zero velocities. The total mass is 1.
func NewColdSphere(n int, seed int64) *Universe {
	u := New(n)
	rng := rand.New(rand.NewSource(seed))
	m := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		u.SetBody(i, m, sphereSample(rng), r3.Vec{})
	}
	return u
}

// NewPlummerSphere samples n equal-mass bodies from a Plummer density
// profile with the given scale radius, velocities zero. Used by the
// approximation-accuracy sweeps, which only need positions.
func NewPlummerSphere(n int, scale float64, seed int64) *Universe {
	u := New(n)
	rng := rand.New(rand.NewSource(seed))
	m := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		// Inverse-transform the cumulative mass profile.
		x := rng.Float64()
		r := scale / math.Sqrt(math.Pow(x, -2.0/3.0)-1)
		dir := sphereSurfaceSample(rng)
		u.SetBody(i, m, r3.Scale(r, dir), r3.Vec{})
	}
	return u
}

// sphereSample draws a point uniformly from the unit ball.
func sphereSample(rng *rand.Rand) r3.Vec {
	for {
		p := r3.Vec{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		if r3.Norm2(p) <= 1 {
			return p
		}
	}
}

// sphereSurfaceSample draws a unit direction uniformly.
func sphereSurfaceSample(rng *rand.Rand) r3.Vec {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}
