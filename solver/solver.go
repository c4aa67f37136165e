// Package solver advances an N-body state in time. Every method here
// is written purely in terms of the engine's vector primitives: a
// solver requests right-hand-side evaluations with Fcompute and forms
// its linear combinations with Fmadd/Fmaddn, never touching elements
// host-side. How forces are produced is the engine's business.
package solver

import (
	"errors"

	"github.com/nbodyx/nbody/engine"
)

// ErrNoEngine reports a solver stepped before an engine was attached.
var ErrNoEngine = errors.New("solver: no engine attached")

// ErrNonConvergence reports an adaptive step that exhausted its
// recursion budget without meeting the error threshold. The step has
// been accepted with the last computed estimate; the error exists so
// callers can count these events.
var ErrNonConvergence = errors.New("solver: error threshold not met within recursion budget")

// Solver advances the engine-held state vector by time steps.
type Solver interface {
	// TypeName returns the factory key of the method.
	TypeName() string
	// Step advances the state by dt. A step runs to completion; the
	// only recoverable failure is ErrNonConvergence from the adaptive
	// methods, after which the state holds the last estimate.
	Step(dt float64) error
	// Engine returns the attached engine, nil before SetEngine.
	Engine() engine.Engine
	// SetEngine attaches the engine whose state the solver advances.
	SetEngine(e engine.Engine)
	// SetTimeStep bounds the step sizes the solver may use internally.
	SetTimeStep(min, max float64)
	// MinStep returns the lower step clamp.
	MinStep() float64
	// MaxStep returns the upper step clamp.
	MaxStep() float64
	// Time returns the solver clock, the sum of accepted steps.
	Time() float64
}

// Base carries what every method shares: the engine binding, the step
// clamps and the solver clock. Concrete solvers embed it.
type Base struct {
	eng     engine.Engine
	minStep float64
	maxStep float64
	t       float64
}

// NewBase returns a Base with the conventional clamp defaults.
func NewBase() Base {
	return Base{minStep: 1e-9, maxStep: 1e-2}
}

// Engine returns the attached engine.
func (b *Base) Engine() engine.Engine { return b.eng }

// SetEngine attaches an engine.
func (b *Base) SetEngine(e engine.Engine) { b.eng = e }

// SetTimeStep bounds internal step sizes to [min, max].
func (b *Base) SetTimeStep(min, max float64) {
	b.minStep, b.maxStep = min, max
}

// MinStep returns the lower step clamp.
func (b *Base) MinStep() float64 { return b.minStep }

// MaxStep returns the upper step clamp.
func (b *Base) MaxStep() float64 { return b.maxStep }

// Time returns the solver clock.
func (b *Base) Time() float64 { return b.t }

// advance moves the solver clock after an accepted step.
func (b *Base) advance(dt float64) { b.t += dt }
