package solver

import (
	"fmt"

	"github.com/nbodyx/nbody/engine"
)

// adamsCoeff holds the Adams-Bashforth weights per rank, most recent
// right-hand side first.
var adamsCoeff = map[int][]float64{
	1: {1},
	2: {3. / 2., -1. / 2.},
	3: {23. / 12., -16. / 12., 5. / 12.},
	4: {55. / 24., -59. / 24., 37. / 24., -9. / 24.},
	5: {1901. / 720., -2774. / 720., 2616. / 720., -1274. / 720., 251. / 720.},
}

// MaxAdamsRank is the highest supported Adams-Bashforth order.
const MaxAdamsRank = 5

// Adams is the explicit Adams-Bashforth multistep method of rank 1-5
// over a ring of the most recent right-hand sides. Until the ring
// fills, steps delegate to classical RK4, so the bootstrap region is
// identical to an RK4-only run.
type Adams struct {
	Base
	rank  int
	ring  []*engine.Buffer // history, ring[head] most recent
	head  int
	steps int
	boot  *RK4
}

// NewAdams returns an Adams-Bashforth solver of the given rank. Ranks
// outside [1, MaxAdamsRank] are clamped.
func NewAdams(rank int) *Adams {
	if rank < 1 {
		rank = 1
	}
	if rank > MaxAdamsRank {
		rank = MaxAdamsRank
	}
	return &Adams{Base: NewBase(), rank: rank, boot: NewRK4()}
}

func (s *Adams) TypeName() string { return "adams" }

// Rank returns the configured multistep order.
func (s *Adams) Rank() int { return s.rank }

func (s *Adams) Step(dt float64) error {
	e := s.Engine()
	if e == nil {
		return ErrNoEngine
	}
	if s.ring == nil {
		s.ring = e.CreateBuffers(e.ProblemSize(), s.rank)
	}

	// Record f(t, y) before advancing; both the bootstrap and the
	// multistep update need the ring to hold pre-step derivatives.
	s.head = (s.head + 1) % s.rank
	if err := e.Fcompute(s.Time(), e.Y(), s.ring[s.head]); err != nil {
		return err
	}
	s.steps++

	// The first rank steps run the bootstrap and are indistinguishable
	// from RK4; the multistep update takes over from step rank+1.
	if s.steps <= s.rank {
		return s.bootstrapStep(dt)
	}

	bufs := make([]*engine.Buffer, s.rank)
	coeffs := make([]float64, s.rank)
	for j := 0; j < s.rank; j++ {
		bufs[j] = s.ring[(s.head-j+s.rank)%s.rank]
		coeffs[j] = dt * adamsCoeff[s.rank][j]
	}
	if err := e.FmaddnInplace(e.Y(), bufs, coeffs); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}

// bootstrapStep advances with RK4 while the history ring is short.
func (s *Adams) bootstrapStep(dt float64) error {
	s.boot.SetEngine(s.Engine())
	s.boot.t = s.Time()
	if err := s.boot.Step(dt); err != nil {
		return fmt.Errorf("adams bootstrap: %w", err)
	}
	s.advance(dt)
	return nil
}
