// Package engine defines the vector-primitive contract every solver is
// written against, and provides the CPU force-evaluation back-ends:
// direct summation (serial, data-parallel and cache-blocked) and the
// Barnes-Hut hierarchical approximation.
//
// An engine owns its buffers. Solvers read and combine state only
// through the primitive operations below; they never touch elements
// host-side. Primitives are total: a call with an undersized handle
// logs a diagnostic and returns a sentinel error without modifying any
// buffer.
package engine

import (
	"errors"

	"github.com/nbodyx/nbody/body"
)

// ErrBufferSize reports a primitive invoked with a handle too small
// for the operation. The primitive has not written anything.
var ErrBufferSize = errors.New("engine: buffer smaller than operation size")

// ErrAliasedBuffers reports Fcompute invoked with y and f sharing
// storage, which the force kernels do not support.
var ErrAliasedBuffers = errors.New("engine: y and f must not alias")

// ErrNotBound reports an engine used before Init bound a dataset.
var ErrNotBound = errors.New("engine: no dataset bound")

// Engine is the capability interface of a force-evaluation back-end.
//
// ProblemSize is 6N for a bound dataset of N bodies. All fmadd-family
// primitives operate over the destination handle's full extent; source
// operands must be at least that long. Fmadd and Fmaddn accept a nil b
// handle, meaning b is treated as zero.
//
// Primitives on one engine execute in program order: a primitive
// issued after another observes all of the earlier one's writes.
type Engine interface {
	// TypeName returns the factory key of the back-end.
	TypeName() string
	// ProblemSize returns the state-vector length 6N.
	ProblemSize() int

	// CreateBuffer allocates a zeroed buffer of n scalars.
	CreateBuffer(n int) *Buffer
	// FreeBuffer releases a buffer. The handle must not be used after.
	FreeBuffer(b *Buffer)
	// CreateBuffers allocates k equally sized buffers of n scalars.
	CreateBuffers(n, k int) []*Buffer
	// FreeBuffers releases every buffer of an array.
	FreeBuffers(bufs []*Buffer)
	// SubBuffer returns a handle aliasing n scalars of b starting at
	// off. The sub-buffer shares storage with its parent.
	SubBuffer(b *Buffer, off, n int) *Buffer

	// WriteBuffer copies len(dst) scalars from src into dst.
	WriteBuffer(dst *Buffer, src []float64) error
	// ReadBuffer copies len(src) scalars from src into dst.
	ReadBuffer(dst []float64, src *Buffer) error
	// CopyBuffer copies dst.Size() scalars of src into dst; src must be
	// at least that long.
	CopyBuffer(dst, src *Buffer) error
	// FillBuffer sets every element of dst to v.
	FillBuffer(dst *Buffer, v float64) error

	// FmaddInplace computes a[i] += b[i]*c.
	FmaddInplace(a, b *Buffer, c float64) error
	// Fmadd computes a[i] = b[i] + c[i]*d; with b nil, a[i] = c[i]*d.
	Fmadd(a, b, c *Buffer, d float64) error
	// FmaddnInplace computes a[i] += sum_k b[k][i]*c[k].
	FmaddnInplace(a *Buffer, b []*Buffer, c []float64) error
	// Fmaddn computes a[i] = b[i] + sum_k c[k][i]*d[k]; with b nil the
	// b term is omitted.
	Fmaddn(a, b *Buffer, c []*Buffer, d []float64) error
	// Fmaxabs returns max_i |a[i]|.
	Fmaxabs(a *Buffer) (float64, error)

	// Fcompute evaluates the right-hand side f = F(t, y): the first 3N
	// elements of f receive the velocity block of y, the last 3N the
	// accelerations. y and f must not alias.
	Fcompute(t float64, y, f *Buffer) error

	// Init binds a dataset: the mass vector becomes read-only input
	// and the packed state is uploaded into the engine-owned y buffer.
	Init(data *body.Universe) error
	// Y returns the handle of the current state vector.
	Y() *Buffer
	// Data returns the bound dataset, nil before Init.
	Data() *body.Universe
}
