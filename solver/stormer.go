package solver

// Stormer is the second-order symplectic kick-drift-kick integrator.
// It exploits the first-order block structure of the state vector:
// the velocity half receives two half-kicks from the acceleration half
// of f, the position half drifts with the updated velocities. Uses
// engine sub-buffers to address the two halves.
type Stormer struct {
	Base
}

// NewStormer returns the symplectic Stormer-Verlet solver.
func NewStormer() *Stormer {
	return &Stormer{Base: NewBase()}
}

func (s *Stormer) TypeName() string { return "stormer" }

func (s *Stormer) Step(dt float64) error {
	e := s.Engine()
	if e == nil {
		return ErrNoEngine
	}
	ps := e.ProblemSize()
	half := ps / 2
	y := e.Y()
	f := e.CreateBuffer(ps)
	defer e.FreeBuffer(f)

	pos := e.SubBuffer(y, 0, half)
	vel := e.SubBuffer(y, half, half)
	acc := e.SubBuffer(f, half, half)

	t := s.Time()
	if err := e.Fcompute(t, y, f); err != nil {
		return err
	}
	// Half kick, full drift with the updated velocities, half kick at
	// the new positions.
	if err := e.FmaddInplace(vel, acc, dt/2); err != nil {
		return err
	}
	if err := e.FmaddInplace(pos, vel, dt); err != nil {
		return err
	}
	if err := e.Fcompute(t+dt, y, f); err != nil {
		return err
	}
	if err := e.FmaddInplace(vel, acc, dt/2); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}
