package engine

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/nbodyx/nbody/body"
)

const (
	escape = "\x1b"
	yellow = 33
)

func scolorf(color int, str string) string {
	return fmt.Sprintf("%s[%dm%s%s[0m", escape, color, str, escape)
}

// warnf prints a primitive diagnostic. Size-mismatch calls are
// recovered as no-ops, so this message and the returned sentinel error
// are the only trace they leave.
func warnf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, scolorf(yellow, format)+"\n", a...)
}

// host implements buffer management and every linear-algebra primitive
// on CPU memory. The concrete engines embed it and add Fcompute.
type host struct {
	data     *body.Universe
	y        *Buffer
	computes uint64
}

func (h *host) Init(data *body.Universe) error {
	h.data = data
	h.y = h.CreateBuffer(data.ProblemSize())
	return h.WriteBuffer(h.y, data.State())
}

func (h *host) Y() *Buffer { return h.y }

func (h *host) Data() *body.Universe { return h.data }

func (h *host) ProblemSize() int {
	if h.data == nil {
		return 0
	}
	return h.data.ProblemSize()
}

// ComputeCount returns how many right-hand-side evaluations the engine
// has served since Init.
func (h *host) ComputeCount() uint64 { return atomic.LoadUint64(&h.computes) }

func (h *host) adviseCompute() { atomic.AddUint64(&h.computes, 1) }

func (h *host) CreateBuffer(n int) *Buffer {
	return &Buffer{data: make([]float64, n)}
}

func (h *host) FreeBuffer(b *Buffer) {
	if b != nil {
		b.data = nil
	}
}

func (h *host) CreateBuffers(n, k int) []*Buffer {
	bufs := make([]*Buffer, k)
	for i := range bufs {
		bufs[i] = h.CreateBuffer(n)
	}
	return bufs
}

func (h *host) FreeBuffers(bufs []*Buffer) {
	for _, b := range bufs {
		h.FreeBuffer(b)
	}
}

func (h *host) SubBuffer(b *Buffer, off, n int) *Buffer {
	if b.Size() < off+n {
		warnf("engine: sub-buffer [%d:%d) outside parent of size %d", off, off+n, b.Size())
		return nil
	}
	return &Buffer{data: b.data[off : off+n], sub: true}
}

func (h *host) WriteBuffer(dst *Buffer, src []float64) error {
	if len(src) < dst.Size() {
		warnf("engine: write_buffer host source %d smaller than handle %d", len(src), dst.Size())
		return ErrBufferSize
	}
	copy(dst.Elems(), src[:dst.Size()])
	return nil
}

func (h *host) ReadBuffer(dst []float64, src *Buffer) error {
	if len(dst) < src.Size() {
		warnf("engine: read_buffer host destination %d smaller than handle %d", len(dst), src.Size())
		return ErrBufferSize
	}
	copy(dst[:src.Size()], src.Elems())
	return nil
}

func (h *host) CopyBuffer(dst, src *Buffer) error {
	if src.Size() < dst.Size() {
		warnf("engine: copy_buffer source %d smaller than destination %d", src.Size(), dst.Size())
		return ErrBufferSize
	}
	copy(dst.Elems(), src.Elems()[:dst.Size()])
	return nil
}

func (h *host) FillBuffer(dst *Buffer, v float64) error {
	d := dst.Elems()
	for i := range d {
		d[i] = v
	}
	return nil
}

// checkOperands verifies every source handle covers the destination's
// extent. The destination itself must be non-empty.
func checkOperands(op string, dst *Buffer, srcs ...*Buffer) error {
	if dst.Size() == 0 {
		warnf("engine: %s on an empty destination handle", op)
		return ErrBufferSize
	}
	for _, s := range srcs {
		if s.Size() < dst.Size() {
			warnf("engine: %s operand %d smaller than destination %d", op, s.Size(), dst.Size())
			return ErrBufferSize
		}
	}
	return nil
}

func (h *host) FmaddInplace(a, b *Buffer, c float64) error {
	if err := checkOperands("fmadd_inplace", a, b); err != nil {
		return err
	}
	floats.AddScaled(a.Elems(), c, b.Elems()[:a.Size()])
	return nil
}

func (h *host) Fmadd(a, b, c *Buffer, d float64) error {
	if b == nil {
		if err := checkOperands("fmadd", a, c); err != nil {
			return err
		}
		floats.ScaleTo(a.Elems(), d, c.Elems()[:a.Size()])
		return nil
	}
	if err := checkOperands("fmadd", a, b, c); err != nil {
		return err
	}
	floats.AddScaledTo(a.Elems(), b.Elems()[:a.Size()], d, c.Elems()[:a.Size()])
	return nil
}

func (h *host) FmaddnInplace(a *Buffer, b []*Buffer, c []float64) error {
	if len(b) == 0 || len(c) < len(b) {
		warnf("engine: fmaddn_inplace with %d buffers and %d coefficients", len(b), len(c))
		return ErrBufferSize
	}
	if err := checkOperands("fmaddn_inplace", a, b...); err != nil {
		return err
	}
	dst := a.Elems()
	for i := range dst {
		s := 0.0
		for k := range b {
			s += b[k].Elems()[i] * c[k]
		}
		dst[i] += s
	}
	return nil
}

func (h *host) Fmaddn(a, b *Buffer, c []*Buffer, d []float64) error {
	if len(c) == 0 || len(d) < len(c) {
		warnf("engine: fmaddn with %d buffers and %d coefficients", len(c), len(d))
		return ErrBufferSize
	}
	operands := c
	if b != nil {
		operands = append([]*Buffer{b}, c...)
	}
	if err := checkOperands("fmaddn", a, operands...); err != nil {
		return err
	}
	dst := a.Elems()
	for i := range dst {
		s := 0.0
		for k := range c {
			s += c[k].Elems()[i] * d[k]
		}
		if b != nil {
			s += b.Elems()[i]
		}
		dst[i] = s
	}
	return nil
}

func (h *host) Fmaxabs(a *Buffer) (float64, error) {
	if a.Size() == 0 {
		warnf("engine: fmaxabs on an empty handle")
		return 0, ErrBufferSize
	}
	return floats.Norm(a.Elems(), math.Inf(1)), nil
}

// checkCompute validates the Fcompute argument pair shared by every
// CPU back-end.
func (h *host) checkCompute(y, f *Buffer) error {
	if h.data == nil {
		warnf("engine: fcompute before init")
		return ErrNotBound
	}
	ps := h.ProblemSize()
	if y.Size() < ps {
		warnf("engine: fcompute state handle %d smaller than problem size %d", y.Size(), ps)
		return ErrBufferSize
	}
	if f.Size() < ps {
		warnf("engine: fcompute output handle %d smaller than problem size %d", f.Size(), ps)
		return ErrBufferSize
	}
	if aliases(y, f) {
		warnf("engine: fcompute with aliased y and f")
		return ErrAliasedBuffers
	}
	return nil
}

// copyVelocities fills the position half of f with the velocity block
// of y: the first 3N components of the right-hand side are y'.
func (h *host) copyVelocities(y, f *Buffer) {
	n3 := h.ProblemSize() / 2
	copy(f.Elems()[:n3], y.Elems()[n3:2*n3])
}
