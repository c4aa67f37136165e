package nbody

import (
	"github.com/pkg/errors"

	"github.com/nbodyx/nbody/engine"
	"github.com/nbodyx/nbody/solver"
	"github.com/nbodyx/nbody/space"
)

// ErrUnknownEngine reports an engine key outside the registry.
var ErrUnknownEngine = errors.New("nbody: unknown engine")

// ErrUnknownSolver reports a solver key outside the registry.
var ErrUnknownSolver = errors.New("nbody: unknown solver")

// ErrBackendUnavailable reports an engine key that is recognized but
// whose back-end is not built into this binary.
var ErrBackendUnavailable = errors.New("nbody: back-end not built in")

// EngineAllocator builds an engine from run parameters.
type EngineAllocator func(p Params) (engine.Engine, error)

// SolverAllocator builds a solver from run parameters.
type SolverAllocator func(p Params) (solver.Solver, error)

var engineAllocators = map[string]EngineAllocator{
	"simple": func(Params) (engine.Engine, error) { return engine.NewSimple(), nil },
	"openmp": func(p Params) (engine.Engine, error) {
		return engine.NewParallel(p.Int("threads", 0)), nil
	},
	"block": func(p Params) (engine.Engine, error) {
		return engine.NewBlock(p.Int("threads", 0)), nil
	},
	"simple_bh": newBarnesHutEngine,
	// ah is the heap Barnes-Hut preset: stackless heap index walked
	// per body.
	"ah": func(p Params) (engine.Engine, error) {
		ratio := p.Float("distance_to_node_radius_ratio", 1)
		return engine.NewBarnesHut(ratio, space.TraverseCycle, space.LayoutHeapStackless, p.Int("threads", 0)), nil
	},
	"opencl":    unavailableEngine,
	"opencl_bh": unavailableEngine,
}

var solverAllocators = map[string]SolverAllocator{
	"euler": func(Params) (solver.Solver, error) { return solver.NewEuler(), nil },
	"rk4":   func(Params) (solver.Solver, error) { return solver.NewRK4(), nil },
	"rkck":  butcherAllocator(solver.NewRKCK),
	"rkdp":  butcherAllocator(solver.NewRKDP),
	"rkf":   butcherAllocator(solver.NewRKF),
	"rkgl":  butcherAllocator(solver.NewRKGL),
	"rklc":  butcherAllocator(solver.NewRKLC),
	"adams": func(p Params) (solver.Solver, error) {
		return solver.NewAdams(p.Int("rank", 1)), nil
	},
	"trapeze": func(p Params) (solver.Solver, error) {
		s := solver.NewTrapeze()
		s.SetRefineStepsCount(p.Int("refine_steps_count", 1))
		return s, nil
	},
	"stormer": func(Params) (solver.Solver, error) { return solver.NewStormer(), nil },
}

// RegisterEngine adds an engine allocator under a new key. External
// back-ends use this to hook into the factory.
func RegisterEngine(name string, fcn EngineAllocator) error {
	if _, ok := engineAllocators[name]; ok {
		return errors.Errorf("nbody: engine %q already registered", name)
	}
	engineAllocators[name] = fcn
	return nil
}

// RegisterSolver adds a solver allocator under a new key.
func RegisterSolver(name string, fcn SolverAllocator) error {
	if _, ok := solverAllocators[name]; ok {
		return errors.Errorf("nbody: solver %q already registered", name)
	}
	solverAllocators[name] = fcn
	return nil
}

// NewEngine builds the engine selected by the "engine" key. Unknown
// keys yield a nil engine and a configuration error the caller must
// check.
func NewEngine(p Params) (engine.Engine, error) {
	name := p.Str("engine", "")
	fcn, ok := engineAllocators[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", name)
	}
	return fcn(p)
}

// NewSolver builds the solver selected by the "solver" key and applies
// the shared step clamps. Unknown keys yield a nil solver and a
// configuration error.
func NewSolver(p Params) (solver.Solver, error) {
	name := p.Str("solver", "")
	fcn, ok := solverAllocators[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSolver, "%q", name)
	}
	s, err := fcn(p)
	if err != nil {
		return nil, err
	}
	s.SetTimeStep(p.Float("min_step", 1e-9), p.Float("max_step", 1e-2))
	return s, nil
}

func newBarnesHutEngine(p Params) (engine.Engine, error) {
	ratio := p.Float("distance_to_node_radius_ratio", 1)
	tt, err := space.ParseTraverse(p.Str("traverse_type", "cycle"))
	if err != nil {
		return nil, err
	}
	tl, err := space.ParseLayout(p.Str("tree_layout", "tree"))
	if err != nil {
		return nil, err
	}
	return engine.NewBarnesHut(ratio, tt, tl, p.Int("threads", 0)), nil
}

func unavailableEngine(p Params) (engine.Engine, error) {
	return nil, errors.Wrapf(ErrBackendUnavailable, "%q (device %q)", p.Str("engine", ""), p.Str("device", ""))
}

func butcherAllocator(newSolver func() *solver.Butcher) SolverAllocator {
	return func(p Params) (solver.Solver, error) {
		s := newSolver()
		s.SetErrorThreshold(p.Float("error_threshold", 1e-4))
		s.SetMaxRecursion(p.Int("max_recursion", 8))
		s.SetRefineStepsCount(p.Int("refine_steps_count", 1))
		s.SetSubstepSubdivisions(p.Int("substep_subdivisions", 8))
		return s, nil
	}
}
