package solver

import "github.com/nbodyx/nbody/engine"

// Trapeze is the implicit trapezoidal rule
//
//	y1 = y + dt/2 (F(t, y) + F(t+dt, y1))
//
// solved by fixed-point iteration: an Euler predictor followed by a
// configurable number of refinement passes.
type Trapeze struct {
	Base
	refineSteps int
}

// NewTrapeze returns the fixed-point trapezoidal solver.
func NewTrapeze() *Trapeze {
	return &Trapeze{Base: NewBase(), refineSteps: 1}
}

func (s *Trapeze) TypeName() string { return "trapeze" }

// SetRefineStepsCount sets how many fixed-point passes refine the
// corrector.
func (s *Trapeze) SetRefineStepsCount(v int) {
	if v < 1 {
		v = 1
	}
	s.refineSteps = v
}

func (s *Trapeze) Step(dt float64) error {
	e := s.Engine()
	if e == nil {
		return ErrNoEngine
	}
	ps := e.ProblemSize()
	y := e.Y()
	f0 := e.CreateBuffer(ps)
	f1 := e.CreateBuffer(ps)
	trial := e.CreateBuffer(ps)
	defer e.FreeBuffer(f0)
	defer e.FreeBuffer(f1)
	defer e.FreeBuffer(trial)

	t := s.Time()
	if err := e.Fcompute(t, y, f0); err != nil {
		return err
	}
	// Euler predictor.
	if err := e.Fmadd(trial, y, f0, dt); err != nil {
		return err
	}
	for p := 0; p < s.refineSteps; p++ {
		if err := e.Fcompute(t+dt, trial, f1); err != nil {
			return err
		}
		if err := e.Fmaddn(trial, y, []*engine.Buffer{f0, f1}, []float64{dt / 2, dt / 2}); err != nil {
			return err
		}
	}
	if err := e.CopyBuffer(y, trial); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}
