package solver

// Euler is the first-order explicit method y <- y + dt*F(t, y).
// Useful as a baseline and for bootstrapping comparisons; not
// recommended for production runs.
type Euler struct {
	Base
}

// NewEuler returns the explicit Euler solver.
func NewEuler() *Euler {
	return &Euler{Base: NewBase()}
}

func (s *Euler) TypeName() string { return "euler" }

func (s *Euler) Step(dt float64) error {
	e := s.Engine()
	if e == nil {
		return ErrNoEngine
	}
	y := e.Y()
	f := e.CreateBuffer(e.ProblemSize())
	defer e.FreeBuffer(f)

	if err := e.Fcompute(s.Time(), y, f); err != nil {
		return err
	}
	if err := e.FmaddInplace(y, f, dt); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}
