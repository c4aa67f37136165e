package solver

import (
	"fmt"
	"os"

	"github.com/nbodyx/nbody/engine"
)

// Tableau is the (A, b, c) coefficient triple of a Runge-Kutta method
// plus the embedded weights used for error estimation. Explicit
// methods have a strictly lower-triangular A and carry BHat, the
// lower-order weights of the embedded pair. Implicit methods have a
// full A and estimate error from successive fixed-point sweeps
// instead, so their BHat is nil.
type Tableau struct {
	Name     string
	A        [][]float64
	B        []float64
	BHat     []float64
	C        []float64
	Implicit bool
}

// Butcher runs any tableau with adaptive local error control: when the
// estimated error of a step exceeds the threshold, the step is split
// into substeps and retried recursively up to a bounded depth. When
// the budget runs out the last estimate is accepted and the
// non-convergence is signalled.
type Butcher struct {
	Base
	tab            Tableau
	errorThreshold float64
	maxRecursion   int
	refineSteps    int
	subdivisions   int
}

func newButcher(tab Tableau) *Butcher {
	return &Butcher{
		Base:           NewBase(),
		tab:            tab,
		errorThreshold: 1e-4,
		maxRecursion:   8,
		refineSteps:    1,
		subdivisions:   8,
	}
}

// NewRKCK returns the Cash-Karp 5(4) adaptive solver.
func NewRKCK() *Butcher { return newButcher(tableauCK) }

// NewRKDP returns the Dormand-Prince 5(4) adaptive solver.
func NewRKDP() *Butcher { return newButcher(tableauDP) }

// NewRKF returns the Runge-Kutta-Fehlberg 4(5) adaptive solver.
func NewRKF() *Butcher { return newButcher(tableauF) }

// NewRKGL returns the two-stage Gauss-Legendre implicit solver.
func NewRKGL() *Butcher { return newButcher(tableauGL) }

// NewRKLC returns the three-stage Lobatto IIIC implicit solver.
func NewRKLC() *Butcher { return newButcher(tableauLC) }

func (s *Butcher) TypeName() string { return s.tab.Name }

// SetErrorThreshold sets the local error bound of step acceptance.
func (s *Butcher) SetErrorThreshold(v float64) { s.errorThreshold = v }

// SetMaxRecursion bounds the substep recursion depth.
func (s *Butcher) SetMaxRecursion(v int) { s.maxRecursion = v }

// SetRefineStepsCount sets how many Gauss-Seidel sweeps the implicit
// stage equations get.
func (s *Butcher) SetRefineStepsCount(v int) { s.refineSteps = v }

// SetSubstepSubdivisions sets how many parts a failed step splits into.
func (s *Butcher) SetSubstepSubdivisions(v int) { s.subdivisions = v }

func (s *Butcher) Step(dt float64) error {
	if s.Engine() == nil {
		return ErrNoEngine
	}
	converged, err := s.subStep(s.Time(), dt, 0)
	if err != nil {
		return err
	}
	if !converged {
		warnf("solver %s: accepting step of %g beyond recursion depth %d", s.tab.Name, dt, s.maxRecursion)
		return ErrNonConvergence
	}
	return nil
}

// subStep advances one trial step of size dt starting at time t,
// subdividing on error failure while depth allows. It reports whether
// every accepted piece met the error threshold.
func (s *Butcher) subStep(t, dt float64, depth int) (bool, error) {
	e := s.Engine()
	ps := e.ProblemSize()
	y := e.Y()
	stages := len(s.tab.B)

	k := e.CreateBuffers(ps, stages)
	tmp := e.CreateBuffer(ps)
	errBuf := e.CreateBuffer(ps)
	defer e.FreeBuffers(k)
	defer e.FreeBuffer(tmp)
	defer e.FreeBuffer(errBuf)

	// evalStages computes k_i = F(t + c_i dt, y + dt sum_j a_ij k_j).
	// The predictor sweep uses only j < i; Gauss-Seidel sweeps of the
	// implicit methods use the full row with the latest k values.
	evalStages := func(fullRow bool) error {
		for i := 0; i < stages; i++ {
			jmax := i
			if fullRow {
				jmax = stages
			}
			bufs := make([]*engine.Buffer, 0, stages)
			coeffs := make([]float64, 0, stages)
			for j := 0; j < jmax; j++ {
				if s.tab.A[i][j] != 0 {
					bufs = append(bufs, k[j])
					coeffs = append(coeffs, dt*s.tab.A[i][j])
				}
			}
			var err error
			if len(bufs) == 0 {
				err = e.CopyBuffer(tmp, y)
			} else {
				err = e.Fmaddn(tmp, y, bufs, coeffs)
			}
			if err != nil {
				return err
			}
			if err := e.Fcompute(t+s.tab.C[i]*dt, tmp, k[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if err := evalStages(false); err != nil {
		return false, err
	}

	var errMax float64
	if s.tab.Implicit {
		kPrev := e.CreateBuffers(ps, stages)
		defer e.FreeBuffers(kPrev)
		sweeps := s.refineSteps
		if sweeps < 1 {
			sweeps = 1
		}
		for p := 0; p < sweeps; p++ {
			for i := range k {
				if err := e.CopyBuffer(kPrev[i], k[i]); err != nil {
					return false, err
				}
			}
			if err := evalStages(true); err != nil {
				return false, err
			}
		}
		// Local error from the fixed-point contraction: the weighted
		// difference between the last two sweeps.
		pos := make([]float64, stages)
		neg := make([]float64, stages)
		for i, b := range s.tab.B {
			pos[i] = dt * b
			neg[i] = -dt * b
		}
		if err := e.Fmaddn(errBuf, nil, k, pos); err != nil {
			return false, err
		}
		if err := e.FmaddnInplace(errBuf, kPrev, neg); err != nil {
			return false, err
		}
	} else {
		// Embedded pair: error is the weighted difference between the
		// order-p and order-(p-1) estimates.
		diff := make([]float64, stages)
		for i := range diff {
			diff[i] = dt * (s.tab.B[i] - s.tab.BHat[i])
		}
		if err := e.Fmaddn(errBuf, nil, k, diff); err != nil {
			return false, err
		}
	}
	var err error
	errMax, err = e.Fmaxabs(errBuf)
	if err != nil {
		return false, err
	}

	if errMax > s.errorThreshold && depth < s.maxRecursion {
		h := dt / float64(s.subdivisions)
		if h >= s.MinStep() {
			converged := true
			for i := 0; i < s.subdivisions; i++ {
				ok, err := s.subStep(t+float64(i)*h, h, depth+1)
				if err != nil {
					return false, err
				}
				converged = converged && ok
			}
			return converged, nil
		}
		// Subdividing would fall under the minimum step; accept what
		// we have and report the miss.
	}

	accept := make([]float64, stages)
	for i, b := range s.tab.B {
		accept[i] = dt * b
	}
	if err := e.FmaddnInplace(y, k, accept); err != nil {
		return false, err
	}
	s.advance(dt)
	return errMax <= s.errorThreshold, nil
}

// warnf mirrors the engine diagnostics: recoverable numerical events
// leave a trace on stderr and nothing else.
func warnf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
