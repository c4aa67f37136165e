package nbody

import (
	"math"
	"os"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nbodyx/nbody/body"
	"github.com/nbodyx/nbody/solver"
)

// SnapshotSink receives position/velocity frames from the driver. The
// core has no opinion on the storage format.
type SnapshotSink interface {
	Append(frame int, t float64, y []float64) error
}

// Stats summarizes a finished run.
type Stats struct {
	// Steps is how many solver steps were taken.
	Steps int
	// Frames is how many snapshots were emitted.
	Frames int
	// NonConverged counts adaptive steps accepted beyond the recursion
	// budget.
	NonConverged int
	// EnergyDrift and MomentumDrift are the relative conservation
	// errors at the last diagnostic check.
	EnergyDrift   float64
	MomentumDrift float64
}

// Runner drives a solver from t = 0 to a target time, emitting
// snapshots and conservation diagnostics on the simulated clock.
type Runner struct {
	Solver solver.Solver
	Data   *body.Universe
	// Sink receives a frame every dump interval; nil disables dumps.
	Sink SnapshotSink
	// Log receives the diagnostic table; defaults to stdout.
	Log *Logger
	// DriftBound is the relative energy drift above which a check logs
	// a warning. Drift is never fatal.
	DriftBound float64

	stop uint32
}

// NewRunner wires a solver (already bound to an engine holding data)
// to the driver.
func NewRunner(s solver.Solver, data *body.Universe) *Runner {
	return &Runner{
		Solver:     s,
		Data:       data,
		Log:        newLogger(os.Stdout),
		DriftBound: 1e-2,
	}
}

// Stop requests a cooperative halt. The flag is honored between solver
// steps only; a step that has started runs to completion.
func (r *Runner) Stop() { atomic.StoreUint32(&r.stop, 1) }

func (r *Runner) stopped() bool { return atomic.LoadUint32(&r.stop) != 0 }

// Run advances the state until the solver clock reaches maxTime. Every
// dumpDt of simulated time a snapshot goes to the sink; every checkDt
// the conservation diagnostics are recomputed and logged. Diagnostics
// read the state through the engine and never mutate it.
func (r *Runner) Run(maxTime, dumpDt, checkDt float64) (Stats, error) {
	var stats Stats
	if r.Solver == nil {
		return stats, solver.ErrNoEngine
	}
	e := r.Solver.Engine()
	if e == nil {
		return stats, solver.ErrNoEngine
	}
	defer r.Log.Flush()

	y := make([]float64, e.ProblemSize())
	if err := e.ReadBuffer(y, e.Y()); err != nil {
		return stats, err
	}
	energy0 := r.Data.TotalEnergy(y)
	momentum0 := r.Data.TotalMomentum(y)
	r.Log.Logf("%14s %14s %14s %10s\n", "time", "dE/E", "dP", "steps")

	dump := newTicker(dumpDt)
	check := newTicker(checkDt)
	if dump.due(0) {
		if err := r.emit(&stats, 0, y); err != nil {
			return stats, err
		}
	}
	if check.due(0) {
		r.logCheck(&stats, 0, y, energy0, momentum0)
	}

	for maxTime-r.Solver.Time() > dlamchP*maxTime && !r.stopped() {
		dt := math.Min(r.Solver.MaxStep(), maxTime-r.Solver.Time())
		if dt < r.Solver.MinStep() {
			dt = r.Solver.MinStep()
		}
		err := r.Solver.Step(dt)
		switch err {
		case nil:
		case solver.ErrNonConvergence:
			stats.NonConverged++
		default:
			return stats, err
		}
		stats.Steps++

		t := r.Solver.Time()
		due := dump.due(t)
		checkDue := check.due(t)
		if !due && !checkDue {
			continue
		}
		if err := e.ReadBuffer(y, e.Y()); err != nil {
			return stats, err
		}
		if due {
			if err := r.emit(&stats, t, y); err != nil {
				return stats, err
			}
		}
		if checkDue {
			r.logCheck(&stats, t, y, energy0, momentum0)
		}
	}
	return stats, nil
}

// emit hands a frame to the sink, if any.
func (r *Runner) emit(stats *Stats, t float64, y []float64) error {
	if r.Sink == nil {
		return nil
	}
	if err := r.Sink.Append(stats.Frames, t, y); err != nil {
		return err
	}
	stats.Frames++
	return nil
}

// logCheck recomputes the conserved quantities and records their
// drift. Exceeding the bound is logged, never fatal.
func (r *Runner) logCheck(stats *Stats, t float64, y []float64, energy0 float64, momentum0 r3.Vec) {
	stats.EnergyDrift = body.RelativeDrift(energy0, r.Data.TotalEnergy(y))
	dp := r3.Sub(r.Data.TotalMomentum(y), momentum0)
	stats.MomentumDrift = r3.Norm(dp)
	r.Log.Logf("%14.6g %14.6g %14.6g %10d\n", t, stats.EnergyDrift, stats.MomentumDrift, stats.Steps)
	if stats.EnergyDrift > r.DriftBound {
		r.Log.Logf("warning: relative energy drift %g above bound %g\n", stats.EnergyDrift, r.DriftBound)
	}
}
