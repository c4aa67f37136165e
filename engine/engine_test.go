package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nbodyx/nbody/body"
	"github.com/nbodyx/nbody/space"
)

const problemBodies = 64

// testEngines builds one engine of every CPU back-end, each bound to
// the same random dataset.
func testEngines(t *testing.T) []Engine {
	t.Helper()
	engines := []Engine{
		NewSimple(),
		NewParallel(0),
		NewBlock(0),
		NewBarnesHut(1e16, space.TraverseCycle, space.LayoutTree, 0),
	}
	for _, e := range engines {
		data := body.NewRandomBox(problemBodies, 100, 100, 100, 7)
		if err := e.Init(data); err != nil {
			t.Fatalf("%s: init: %v", e.TypeName(), err)
		}
	}
	return engines
}

func randVec(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(rng.Intn(10000)) - 4500
	}
	return v
}

func TestCreateFreeBuffer(t *testing.T) {
	for _, e := range testEngines(t) {
		mem := e.CreateBuffer(1024)
		if mem == nil || mem.Size() != 1024 {
			t.Errorf("%s: create_buffer returned bad handle", e.TypeName())
		}
		e.FreeBuffer(mem)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, e := range testEngines(t) {
		data := []float64{0, 1, 2, 3, 4, 5, 6, 7}
		got := make([]float64, len(data))
		mem := e.CreateBuffer(len(data))
		if err := e.WriteBuffer(mem, data); err != nil {
			t.Fatalf("%s: write: %v", e.TypeName(), err)
		}
		if err := e.ReadBuffer(got, mem); err != nil {
			t.Fatalf("%s: read: %v", e.TypeName(), err)
		}
		for i := range data {
			if got[i] != data[i] {
				t.Errorf("%s: round trip differs at %d: %g != %g", e.TypeName(), i, got[i], data[i])
			}
		}
		e.FreeBuffer(mem)
	}
}

func TestCopyBuffer(t *testing.T) {
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		src := make([]float64, ps)
		for i := range src {
			src[i] = float64(i)
		}
		got := make([]float64, ps)
		m1, m2 := e.CreateBuffer(ps), e.CreateBuffer(ps)
		e.WriteBuffer(m1, src)
		if err := e.CopyBuffer(m2, m1); err != nil {
			t.Fatalf("%s: copy: %v", e.TypeName(), err)
		}
		e.ReadBuffer(got, m2)
		for i := range src {
			if got[i] != src[i] {
				t.Fatalf("%s: copy differs at %d", e.TypeName(), i)
			}
		}
		e.FreeBuffer(m1)
		e.FreeBuffer(m2)
	}
}

func TestFillBuffer(t *testing.T) {
	for _, e := range testEngines(t) {
		const cnt, value = 33, 777.0
		mem := e.CreateBuffer(cnt)
		e.FillBuffer(mem, value)
		got := make([]float64, cnt)
		e.ReadBuffer(got, mem)
		for i := range got {
			if got[i] != value {
				t.Errorf("%s: fill left %g at %d", e.TypeName(), got[i], i)
			}
		}
		e.FreeBuffer(mem)
	}
}

func TestFmaddInplace(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		a, b := randVec(rng, ps), randVec(rng, ps)
		const c = 5.0
		memA, memB := e.CreateBuffer(ps), e.CreateBuffer(ps)
		e.WriteBuffer(memA, a)
		e.WriteBuffer(memB, b)
		if err := e.FmaddInplace(memA, memB, c); err != nil {
			t.Fatalf("%s: fmadd_inplace: %v", e.TypeName(), err)
		}
		got := make([]float64, ps)
		e.ReadBuffer(got, memA)
		for i := range got {
			want := a[i] + c*b[i]
			if math.Abs(got[i]-want) > 1e-11 {
				t.Fatalf("%s: fmadd_inplace at %d: got %g want %g", e.TypeName(), i, got[i], want)
			}
		}
		e.FreeBuffer(memA)
		e.FreeBuffer(memB)
	}
}

func TestFmadd(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		b, c := randVec(rng, ps), randVec(rng, ps)
		const d = 5.0
		memA, memB, memC := e.CreateBuffer(ps), e.CreateBuffer(ps), e.CreateBuffer(ps)
		e.WriteBuffer(memB, b)
		e.WriteBuffer(memC, c)
		if err := e.Fmadd(memA, memB, memC, d); err != nil {
			t.Fatalf("%s: fmadd: %v", e.TypeName(), err)
		}
		got := make([]float64, ps)
		e.ReadBuffer(got, memA)
		for i := range got {
			want := b[i] + c[i]*d
			if math.Abs(got[i]-want) > 1e-11 {
				t.Fatalf("%s: fmadd at %d: got %g want %g", e.TypeName(), i, got[i], want)
			}
		}
		e.FreeBuffer(memA)
		e.FreeBuffer(memB)
		e.FreeBuffer(memC)
	}
}

// Fmadd with a nil b argument must agree with single-term Fmaddn and
// with fill-then-fmadd_inplace.
func TestFmaddNilMiddle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		c := randVec(rng, ps)
		const d = 3.5
		memC := e.CreateBuffer(ps)
		e.WriteBuffer(memC, c)

		viaFmadd := e.CreateBuffer(ps)
		if err := e.Fmadd(viaFmadd, nil, memC, d); err != nil {
			t.Fatalf("%s: fmadd nil b: %v", e.TypeName(), err)
		}
		viaFmaddn := e.CreateBuffer(ps)
		if err := e.Fmaddn(viaFmaddn, nil, []*Buffer{memC}, []float64{d}); err != nil {
			t.Fatalf("%s: fmaddn nil b: %v", e.TypeName(), err)
		}
		viaFill := e.CreateBuffer(ps)
		e.FillBuffer(viaFill, 0)
		e.FmaddInplace(viaFill, memC, d)

		g1, g2, g3 := make([]float64, ps), make([]float64, ps), make([]float64, ps)
		e.ReadBuffer(g1, viaFmadd)
		e.ReadBuffer(g2, viaFmaddn)
		e.ReadBuffer(g3, viaFill)
		for i := range g1 {
			if g1[i] != g2[i] || g1[i] != g3[i] {
				t.Fatalf("%s: nil-b forms disagree at %d: %g %g %g", e.TypeName(), i, g1[i], g2[i], g3[i])
			}
		}
		e.FreeBuffers([]*Buffer{memC, viaFmadd, viaFmaddn, viaFill})
	}
}

func TestFmaddn(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, e := range testEngines(t) {
		for _, terms := range []int{1, 3, 7} {
			ps := e.ProblemSize()
			b := randVec(rng, ps)
			cs := make([][]float64, terms)
			d := make([]float64, terms)
			memB := e.CreateBuffer(ps)
			memC := e.CreateBuffers(ps, terms)
			e.WriteBuffer(memB, b)
			for k := 0; k < terms; k++ {
				cs[k] = randVec(rng, ps)
				d[k] = float64(rng.Intn(100)) / 10
				e.WriteBuffer(memC[k], cs[k])
			}
			memA := e.CreateBuffer(ps)
			if err := e.Fmaddn(memA, memB, memC, d); err != nil {
				t.Fatalf("%s: fmaddn k=%d: %v", e.TypeName(), terms, err)
			}
			got := make([]float64, ps)
			e.ReadBuffer(got, memA)
			for i := range got {
				want := b[i]
				for k := 0; k < terms; k++ {
					want += cs[k][i] * d[k]
				}
				if math.Abs(got[i]-want) > 1e-9 {
					t.Fatalf("%s: fmaddn k=%d at %d: got %g want %g", e.TypeName(), terms, i, got[i], want)
				}
			}
			e.FreeBuffer(memA)
			e.FreeBuffer(memB)
			e.FreeBuffers(memC)
		}
	}
}

func TestFmaddnInplace(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, e := range testEngines(t) {
		for _, terms := range []int{1, 3, 7} {
			ps := e.ProblemSize()
			a := randVec(rng, ps)
			bs := make([][]float64, terms)
			c := make([]float64, terms)
			memA := e.CreateBuffer(ps)
			memB := e.CreateBuffers(ps, terms)
			e.WriteBuffer(memA, a)
			for k := 0; k < terms; k++ {
				bs[k] = randVec(rng, ps)
				c[k] = float64(rng.Intn(100)) / 10
				e.WriteBuffer(memB[k], bs[k])
			}
			if err := e.FmaddnInplace(memA, memB, c); err != nil {
				t.Fatalf("%s: fmaddn_inplace k=%d: %v", e.TypeName(), terms, err)
			}
			got := make([]float64, ps)
			e.ReadBuffer(got, memA)
			for i := range got {
				want := a[i]
				for k := 0; k < terms; k++ {
					want += bs[k][i] * c[k]
				}
				if math.Abs(got[i]-want) > 1e-9 {
					t.Fatalf("%s: fmaddn_inplace k=%d at %d: got %g want %g", e.TypeName(), terms, i, got[i], want)
				}
			}
			e.FreeBuffer(memA)
			e.FreeBuffers(memB)
		}
	}
}

func TestFmaxabs(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		a := randVec(rng, ps)
		mem := e.CreateBuffer(ps)
		e.WriteBuffer(mem, a)
		got, err := e.Fmaxabs(mem)
		if err != nil {
			t.Fatalf("%s: fmaxabs: %v", e.TypeName(), err)
		}
		want := 0.0
		for _, v := range a {
			want = math.Max(want, math.Abs(v))
		}
		if got != want {
			t.Errorf("%s: fmaxabs got %g want %g", e.TypeName(), got, want)
		}
		e.FreeBuffer(mem)
	}
}

// The simple engine is the correctness reference: compare its kernel
// against a direct host-side double precision sum.
func TestSimpleFcomputeReference(t *testing.T) {
	e := NewSimple()
	data := body.NewRandomBox(problemBodies, 100, 100, 100, 11)
	if err := e.Init(data); err != nil {
		t.Fatal(err)
	}
	ps := e.ProblemSize()
	f := e.CreateBuffer(ps)
	defer e.FreeBuffer(f)
	if err := e.Fcompute(0, e.Y(), f); err != nil {
		t.Fatal(err)
	}
	got := make([]float64, ps)
	e.ReadBuffer(got, f)

	n := data.N()
	y := data.State()
	mass := data.Masses()
	eps2 := data.Softening * data.Softening
	for i := 0; i < n; i++ {
		// velocity block is copied verbatim
		for blk := 0; blk < 3; blk++ {
			if got[blk*n+i] != y[(3+blk)*n+i] {
				t.Fatalf("velocity copy differs for body %d block %d", i, blk)
			}
		}
		var ax, ay, az float64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dx, dy, dz := y[j]-y[i], y[n+j]-y[n+i], y[2*n+j]-y[2*n+i]
			r2 := dx*dx + dy*dy + dz*dz + eps2
			w := data.Gravity * mass[j] / (r2 * math.Sqrt(r2))
			ax += w * dx
			ay += w * dy
			az += w * dz
		}
		for blk, want := range []float64{ax, ay, az} {
			rel := math.Abs(got[(3+blk)*n+i] - want)
			if s := math.Abs(want); s > 1 {
				rel /= s
			}
			if rel > 1e-13 {
				t.Fatalf("acceleration of body %d axis %d: got %g want %g", i, blk, got[(3+blk)*n+i], want)
			}
		}
	}
}

// Every back-end must agree with the simple engine on the same data.
func TestFcomputeAgainstSimple(t *testing.T) {
	cases := []struct {
		eng Engine
		eps float64
	}{
		{NewParallel(0), 1e-13},
		{NewBlock(0), 1e-13},
		// With an enormous acceptance ratio Barnes-Hut degenerates to
		// direct summation.
		{NewBarnesHut(1e16, space.TraverseCycle, space.LayoutTree, 0), 1e-11},
		{NewBarnesHut(1e16, space.TraverseNestedTree, space.LayoutHeap, 0), 1e-11},
		{NewBarnesHut(1e16, space.TraverseCycle, space.LayoutHeapStackless, 0), 1e-11},
	}
	ref := NewSimple()
	data := body.NewRandomBox(problemBodies, 100, 100, 100, 13)
	if err := ref.Init(data); err != nil {
		t.Fatal(err)
	}
	f0 := computeOnce(t, ref)

	for _, tc := range cases {
		if err := tc.eng.Init(body.NewRandomBox(problemBodies, 100, 100, 100, 13)); err != nil {
			t.Fatal(err)
		}
		f := computeOnce(t, tc.eng)
		for i := range f {
			if math.Abs(f[i]-f0[i]) > tc.eps {
				t.Fatalf("%s differs from simple at %d: %g vs %g", tc.eng.TypeName(), i, f[i], f0[i])
			}
		}
	}
}

func computeOnce(t *testing.T, e Engine) []float64 {
	t.Helper()
	ps := e.ProblemSize()
	fbuf := e.CreateBuffer(ps)
	defer e.FreeBuffer(fbuf)
	e.FillBuffer(fbuf, 1e10) // poison, fcompute must overwrite all of it
	if err := e.Fcompute(0, e.Y(), fbuf); err != nil {
		t.Fatalf("%s: fcompute: %v", e.TypeName(), err)
	}
	f := make([]float64, ps)
	e.ReadBuffer(f, fbuf)
	return f
}

// Zero-sized handles must leave observable outputs untouched and must
// not crash, whatever the primitive.
func TestNegativeBranches(t *testing.T) {
	for _, e := range testEngines(t) {
		ps := e.ProblemSize()
		empty := e.CreateBuffer(0)
		full := e.CreateBuffer(ps)
		probe := randVec(rand.New(rand.NewSource(8)), ps)
		e.WriteBuffer(full, probe)

		if err := e.Fcompute(0, empty, full); err == nil {
			t.Errorf("%s: fcompute empty y accepted", e.TypeName())
		}
		if err := e.Fcompute(0, full, empty); err == nil {
			t.Errorf("%s: fcompute empty f accepted", e.TypeName())
		}
		if err := e.Fcompute(0, e.Y(), e.Y()); err == nil {
			t.Errorf("%s: fcompute with aliased y and f accepted", e.TypeName())
		}
		if err := e.ReadBuffer(nil, full); err == nil {
			t.Errorf("%s: read into nil host slice accepted", e.TypeName())
		}
		if err := e.WriteBuffer(full, nil); err == nil {
			t.Errorf("%s: write from nil host slice accepted", e.TypeName())
		}
		if err := e.CopyBuffer(full, empty); err == nil {
			t.Errorf("%s: copy from empty accepted", e.TypeName())
		}
		if err := e.FmaddInplace(empty, full, 1); err == nil {
			t.Errorf("%s: fmadd_inplace empty dst accepted", e.TypeName())
		}
		if err := e.FmaddInplace(full, empty, 1); err == nil {
			t.Errorf("%s: fmadd_inplace empty operand accepted", e.TypeName())
		}
		if err := e.Fmadd(empty, full, full, 0); err == nil {
			t.Errorf("%s: fmadd empty dst accepted", e.TypeName())
		}
		if err := e.Fmadd(full, full, empty, 0); err == nil {
			t.Errorf("%s: fmadd empty operand accepted", e.TypeName())
		}
		if err := e.FmaddnInplace(empty, []*Buffer{full}, []float64{1}); err == nil {
			t.Errorf("%s: fmaddn_inplace empty dst accepted", e.TypeName())
		}
		if err := e.FmaddnInplace(full, []*Buffer{empty}, []float64{1}); err == nil {
			t.Errorf("%s: fmaddn_inplace empty operand accepted", e.TypeName())
		}
		if err := e.FmaddnInplace(full, []*Buffer{full}, nil); err == nil {
			t.Errorf("%s: fmaddn_inplace nil coefficients accepted", e.TypeName())
		}
		if err := e.Fmaddn(empty, full, []*Buffer{full}, []float64{1}); err == nil {
			t.Errorf("%s: fmaddn empty dst accepted", e.TypeName())
		}
		if err := e.Fmaddn(full, empty, []*Buffer{full}, []float64{1}); err == nil {
			t.Errorf("%s: fmaddn empty b accepted", e.TypeName())
		}
		if _, err := e.Fmaxabs(empty); err == nil {
			t.Errorf("%s: fmaxabs empty accepted", e.TypeName())
		}

		// through all of the failures the probe buffer is untouched
		got := make([]float64, ps)
		e.ReadBuffer(got, full)
		for i := range got {
			if got[i] != probe[i] {
				t.Fatalf("%s: negative branch wrote to operand at %d", e.TypeName(), i)
			}
		}
	}
}
