package solver

// RK4 is the classical fourth-order Runge-Kutta method with the
// standard tableau c = (0, 1/2, 1/2, 1), b = (1/6, 1/3, 1/3, 1/6).
type RK4 struct {
	Base
}

// NewRK4 returns the classical fourth-order Runge-Kutta solver.
func NewRK4() *RK4 {
	return &RK4{Base: NewBase()}
}

func (s *RK4) TypeName() string { return "rk4" }

func (s *RK4) Step(dt float64) error {
	e := s.Engine()
	if e == nil {
		return ErrNoEngine
	}
	ps := e.ProblemSize()
	y := e.Y()
	k := e.CreateBuffers(ps, 4)
	tmp := e.CreateBuffer(ps)
	defer e.FreeBuffers(k)
	defer e.FreeBuffer(tmp)

	t := s.Time()
	if err := e.Fcompute(t, y, k[0]); err != nil {
		return err
	}
	if err := e.Fmadd(tmp, y, k[0], dt/2); err != nil {
		return err
	}
	if err := e.Fcompute(t+dt/2, tmp, k[1]); err != nil {
		return err
	}
	if err := e.Fmadd(tmp, y, k[1], dt/2); err != nil {
		return err
	}
	if err := e.Fcompute(t+dt/2, tmp, k[2]); err != nil {
		return err
	}
	if err := e.Fmadd(tmp, y, k[2], dt); err != nil {
		return err
	}
	if err := e.Fcompute(t+dt, tmp, k[3]); err != nil {
		return err
	}
	if err := e.FmaddnInplace(y, k, []float64{dt / 6, dt / 3, dt / 3, dt / 6}); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}
