package spline

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

const (
	axI1    grid.Axis = "i1"
	axI2    grid.Axis = "i2"
	axX1    grid.Axis = "x1"
	axX2    grid.Axis = "x2"
	axBatch grid.Axis = "species"
)

func newBases(t *testing.T, periodic1, periodic2 bool) (bsplines.Basis, bsplines.Basis) {
	t.Helper()
	b1, err := bsplines.NewUniform(axI1, 3, -1, 2, 6, periodic1)
	require.NoError(t, err)
	b2, err := bsplines.NewNonUniform(axI2, 2, []float64{0, 0.4, 1.1, 1.5, 2.2, 3}, periodic2)
	require.NoError(t, err)
	return b1, b2
}

func rulesFor(b bsplines.Basis) (Rule, Rule) {
	if b.Periodic() {
		return PeriodicRule{}, PeriodicRule{}
	}
	return NullRule{}, NullRule{}
}

func newEvaluator(t *testing.T, b1, b2 bsplines.Basis, opts ...Option) Evaluator2D {
	t.Helper()
	l1, u1 := rulesFor(b1)
	l2, u2 := rulesFor(b2)
	ev, err := NewEvaluator2D(
		Interest{Basis: b1, Axis: axX1, Mesh: grid.NewUniformMesh(b1.RMin(), b1.RMax(), 7), Lower: l1, Upper: u1},
		Interest{Basis: b2, Axis: axX2, Mesh: grid.NewUniformMesh(b2.RMin(), b2.RMax(), 5), Lower: l2, Upper: u2},
		opts...,
	)
	require.NoError(t, err)
	return ev
}

// randomCoeffs fills a coefficient table and makes the trailing periodic
// entries repeat the leading ones.
func randomCoeffs(r *rand.Rand, d grid.Domain, b1, b2 bsplines.Basis) grid.Span[float64] {
	s := grid.New[float64](d)
	idx := make([]int, d.Rank())
	p1, p2 := d.Pos(b1.Axis()), d.Pos(b2.Axis())
	for k := 0; k < d.NumElements(); k++ {
		d.Unravel(k, idx)
		s.Set(r.Float64()*2-1, idx...)
	}
	for k := 0; k < d.NumElements(); k++ {
		d.Unravel(k, idx)
		src := append([]int(nil), idx...)
		if b1.Periodic() && src[p1] >= b1.NBasis() {
			src[p1] -= b1.NBasis()
		}
		if b2.Periodic() && src[p2] >= b2.NBasis() {
			src[p2] -= b2.NBasis()
		}
		s.Set(s.At(src...), idx...)
	}
	return s
}

// fullBasis returns all Size() basis values of b at x.
func fullBasis(b bsplines.Basis, x float64, deriv bool) []float64 {
	vals := make([]float64, b.Degree()+1)
	var jmin int
	if deriv {
		jmin = b.EvalDeriv(vals, x)
	} else {
		jmin = b.EvalBasis(vals, x)
	}
	out := make([]float64, b.Size())
	copy(out[jmin:], vals)
	return out
}

func oracle(b1, b2 bsplines.Basis, c Coord, coeffs grid.Span[float64], d1, d2 bool) float64 {
	f1, f2 := fullBasis(b1, c.X1, d1), fullBasis(b2, c.X2, d2)
	p1 := coeffs.Domain().Pos(b1.Axis())
	idx := make([]int, 2)
	y := 0.0
	for i := range f1 {
		for j := range f2 {
			idx[p1], idx[1-p1] = i, j
			y += coeffs.At(idx...) * f1[i] * f2[j]
		}
	}
	return y
}

func requireAssertion(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.IsAssertionFailure(err), "got %v", err)
	}()
	f()
}

func TestEvalMatchesOracle(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, periodic := range []bool{false, true} {
		b1, b2 := newBases(t, periodic, false)
		ev := newEvaluator(t, b1, b2)

		// Coefficients indexed (i2, i1): the kernel must follow axis names.
		coeffs := randomCoeffs(r, ev.BasisDomain().Select(axI2, axI1), b1, b2)
		for k := 0; k < 50; k++ {
			c := Coord{
				X1: b1.RMin() + r.Float64()*b1.Length(),
				X2: b2.RMin() + r.Float64()*b2.Length(),
			}
			assert.InDelta(t, oracle(b1, b2, c, coeffs, false, false), ev.Eval(c, coeffs), 1e-12)
			assert.InDelta(t, oracle(b1, b2, c, coeffs, true, false), ev.DerivDim1(c, coeffs), 1e-11)
			assert.InDelta(t, oracle(b1, b2, c, coeffs, false, true), ev.DerivDim2(c, coeffs), 1e-11)
			assert.InDelta(t, oracle(b1, b2, c, coeffs, true, true), ev.Deriv1And2(c, coeffs), 1e-11)
		}
	}
}

func TestPeriodicInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	b1, b2 := newBases(t, true, true)
	ev := newEvaluator(t, b1, b2)
	coeffs := randomCoeffs(r, ev.BasisDomain(), b1, b2)

	for k := 0; k < 30; k++ {
		c := Coord{
			X1: b1.RMin() + r.Float64()*b1.Length(),
			X2: b2.RMin() + r.Float64()*b2.Length(),
		}
		want := ev.Eval(c, coeffs)
		for _, shift := range []float64{-3, -1, 1, 2} {
			shifted := Coord{X1: c.X1 + shift*b1.Length(), X2: c.X2 - shift*b2.Length()}
			assert.InDelta(t, want, ev.Eval(shifted, coeffs), 1e-10, "shift %g", shift)
		}
	}

	// Duplicated coefficients make the ends of the interval agree.
	lo := ev.Eval(Coord{X1: b1.RMin(), X2: 1}, coeffs)
	hi := ev.Eval(Coord{X1: b1.RMax(), X2: 1}, coeffs)
	assert.InDelta(t, lo, hi, 1e-12)
}

// fixedRule returns a constant and counts its calls.
type fixedRule struct {
	value float64
	calls *int
}

func (r fixedRule) Extrapolate(Coord, grid.Span[float64]) float64 {
	*r.calls++
	return r.value
}

func TestExtrapolationUsesRule(t *testing.T) {
	b1, b2 := newBases(t, false, false)
	var calls [4]int
	ev, err := NewEvaluator2D(
		Interest{Basis: b1, Axis: axX1, Lower: fixedRule{11, &calls[0]}, Upper: fixedRule{12, &calls[1]}},
		Interest{Basis: b2, Axis: axX2, Lower: fixedRule{21, &calls[2]}, Upper: fixedRule{22, &calls[3]}},
	)
	require.NoError(t, err)
	coeffs := randomCoeffs(rand.New(rand.NewSource(3)), ev.BasisDomain(), b1, b2)

	tests := []struct {
		name  string
		c     Coord
		want  float64
		rule  int
		inner bool
	}{
		{"inside", Coord{0.5, 1.5}, 0, -1, true},
		{"lower1", Coord{-1.5, 1.5}, 11, 0, false},
		{"upper1", Coord{2.5, 1.5}, 12, 1, false},
		{"lower2", Coord{0.5, -0.1}, 21, 2, false},
		{"upper2", Coord{0.5, 3.1}, 22, 3, false},
		// Both coordinates out of range: dimension 1 wins.
		{"lower1 and upper2", Coord{-1.5, 3.1}, 11, 0, false},
		{"upper1 and lower2", Coord{2.5, -0.1}, 12, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := calls
			got := ev.Eval(tt.c, coeffs)
			if tt.inner {
				assert.InDelta(t, oracle(b1, b2, tt.c, coeffs, false, false), got, 1e-12)
				assert.Equal(t, before, calls)
				return
			}
			assert.Equal(t, tt.want, got)
			for k := range calls {
				want := before[k]
				if k == tt.rule {
					want++
				}
				assert.Equal(t, want, calls[k], "rule %d", k)
			}
		})
	}

	// Interval ends are inside.
	before := calls
	ev.Eval(Coord{b1.RMin(), b2.RMax()}, coeffs)
	ev.Eval(Coord{b1.RMax(), b2.RMin()}, coeffs)
	assert.Equal(t, before, calls)
}

func TestExtrapolationMatchesRuleValue(t *testing.T) {
	b1, b2 := newBases(t, false, true)
	ev, err := NewEvaluator2D(
		Interest{
			Basis: b1, Axis: axX1,
			Lower: NewConstantRule(Dim1, b1.RMin(), b1, b2),
			Upper: NewConstantRule(Dim1, b1.RMax(), b1, b2),
		},
		Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
	)
	require.NoError(t, err)
	coeffs := randomCoeffs(rand.New(rand.NewSource(4)), ev.BasisDomain(), b1, b2)

	for _, c := range []Coord{{-4, 0.7}, {-1.01, 2.9}, {2.3, 0.1}, {10, 1.2}} {
		rule := ev.UpperRule(Dim1)
		if c.X1 < b1.RMin() {
			rule = ev.LowerRule(Dim1)
		}
		assert.Equal(t, rule.Extrapolate(c, coeffs), ev.Eval(c, coeffs))
	}

	// The constant rule is the value on the boundary.
	c := Coord{X1: -7, X2: 1.3}
	assert.InDelta(t, ev.Eval(Coord{X1: b1.RMin(), X2: 1.3}, coeffs), ev.Eval(c, coeffs), 1e-14)
	assert.Equal(t, PeriodicRule{}, ev.LowerRule(Dim2))
}

func TestConstantRuleClampsOtherDimension(t *testing.T) {
	b1, b2 := newBases(t, false, false)
	coeffs := randomCoeffs(rand.New(rand.NewSource(5)), grid.MustDomain(
		grid.Extent{Axis: axI1, Size: b1.Size()}, grid.Extent{Axis: axI2, Size: b2.Size()}), b1, b2)

	rule := NewConstantRule(Dim2, b2.RMax(), b1, b2)
	got := rule.Extrapolate(Coord{X1: 5, X2: 9}, coeffs)
	want := oracle(b1, b2, Coord{X1: b1.RMax(), X2: b2.RMax()}, coeffs, false, false)
	assert.InDelta(t, want, got, 1e-14)

	got = rule.Extrapolate(Coord{X1: -5, X2: 9}, coeffs)
	want = oracle(b1, b2, Coord{X1: b1.RMin(), X2: b2.RMax()}, coeffs, false, false)
	assert.InDelta(t, want, got, 1e-14)
}

// batchFixture builds an output span (x1, species, x2) and coefficients
// (species, i2, i1) for ev.
func batchFixture(r *rand.Rand, ev Evaluator2D, n1, nb, n2 int) (grid.Span[float64], grid.Span[float64]) {
	b1, b2 := ev.Interest(Dim1).Basis, ev.Interest(Dim2).Basis
	out := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axX1, Size: n1},
		grid.Extent{Axis: axBatch, Size: nb},
		grid.Extent{Axis: axX2, Size: n2},
	))
	coeffs := randomCoeffs(r, grid.MustDomain(
		grid.Extent{Axis: axBatch, Size: nb},
		grid.Extent{Axis: axI2, Size: b2.Size()},
		grid.Extent{Axis: axI1, Size: b1.Size()},
	), b1, b2)
	return out, coeffs
}

func meshCoords(ev Evaluator2D, d grid.Domain) grid.Span[Coord] {
	coords := grid.New[Coord](d)
	m1, m2 := ev.Interest(Dim1).Mesh, ev.Interest(Dim2).Mesh
	p1, p2 := d.Pos(axX1), d.Pos(axX2)
	idx := make([]int, d.Rank())
	for k := 0; k < d.NumElements(); k++ {
		d.Unravel(k, idx)
		coords.Set(Coord{X1: m1.Coordinate(idx[p1]), X2: m2.Coordinate(idx[p2])}, idx...)
	}
	return coords
}

func TestBatchWithAndWithoutCoords(t *testing.T) {
	configs := map[string]parallel.Config{
		"sequential": parallel.Sequential(),
		"parallel":   {Enabled: true, NumWorkers: 3, MinChunkSize: 1},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewSource(6))
			b1, b2 := newBases(t, false, true)
			ev := newEvaluator(t, b1, b2, WithParallel(cfg))
			out, coeffs := batchFixture(r, ev, 7, 4, 5)
			coords := meshCoords(ev, out.Domain())

			ev.EvalBatch(out, coeffs)
			at := grid.New[float64](out.Domain())
			ev.EvalBatchAt(at, coords, coeffs)
			assert.Equal(t, out.Data(), at.Data())

			batch := grid.MustDomain(grid.Extent{Axis: axBatch, Size: 4})
			for s := 0; s < 4; s++ {
				cf := coeffs.SliceBatch(batch, []int{s})
				for i1 := 0; i1 < 7; i1++ {
					for i2 := 0; i2 < 5; i2++ {
						c := coords.At(i1, s, i2)
						assert.Equal(t, ev.Eval(c, cf), out.At(i1, s, i2))
					}
				}
			}
		})
	}
}

func TestBatchAtArbitraryCoords(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	b1, b2 := newBases(t, false, false)
	ev := newEvaluator(t, b1, b2)
	out, coeffs := batchFixture(r, ev, 3, 2, 4)

	// Coordinates stored with the axes in another order.
	coords := grid.New[Coord](out.Domain().Select(axBatch, axX2, axX1))
	cd := coords.Domain()
	idx := make([]int, 3)
	for k := 0; k < cd.NumElements(); k++ {
		cd.Unravel(k, idx)
		coords.Set(Coord{X1: r.Float64()*4 - 1.5, X2: r.Float64()*4 - 0.5}, idx...)
	}
	ev.EvalBatchAt(out, coords, coeffs)

	batch := grid.MustDomain(grid.Extent{Axis: axBatch, Size: 2})
	for s := 0; s < 2; s++ {
		cf := coeffs.SliceBatch(batch, []int{s})
		for i1 := 0; i1 < 3; i1++ {
			for i2 := 0; i2 < 4; i2++ {
				assert.Equal(t, ev.Eval(coords.At(s, i2, i1), cf), out.At(i1, s, i2))
			}
		}
	}
}

func TestDerivativeVariantsAgree(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	b1, b2 := newBases(t, true, false)
	ev := newEvaluator(t, b1, b2)
	out, coeffs := batchFixture(r, ev, 7, 3, 5)
	d := out.Domain()

	run := func(f func(out grid.Span[float64])) []float64 {
		s := grid.New[float64](d)
		f(s)
		return s.Data()
	}

	d1 := run(func(o grid.Span[float64]) { ev.DerivDim1Batch(o, coeffs) })
	assert.Equal(t, d1, run(func(o grid.Span[float64]) { ev.DerivBatch(Dim1, o, coeffs) }))
	d2 := run(func(o grid.Span[float64]) { ev.DerivDim2Batch(o, coeffs) })
	assert.Equal(t, d2, run(func(o grid.Span[float64]) { ev.DerivBatch(Dim2, o, coeffs) }))

	cross := run(func(o grid.Span[float64]) { ev.Deriv1And2Batch(o, coeffs) })
	assert.Equal(t, cross, run(func(o grid.Span[float64]) { ev.Deriv2Batch(Cross12, o, coeffs) }))
	assert.Equal(t, cross, run(func(o grid.Span[float64]) { ev.Deriv2Batch(Cross21, o, coeffs) }))

	coords := meshCoords(ev, d)
	assert.Equal(t, cross, run(func(o grid.Span[float64]) { ev.Deriv2BatchAt(Cross21, o, coords, coeffs) }))
	assert.Equal(t, cross, run(func(o grid.Span[float64]) { ev.Deriv1And2BatchAt(o, coords, coeffs) }))
	assert.Equal(t, d1, run(func(o grid.Span[float64]) { ev.DerivDim1BatchAt(o, coords, coeffs) }))
	assert.Equal(t, d2, run(func(o grid.Span[float64]) { ev.DerivBatchAt(Dim2, o, coords, coeffs) }))
	assert.Equal(t, d2, run(func(o grid.Span[float64]) { ev.DerivDim2BatchAt(o, coords, coeffs) }))

	batch := grid.MustDomain(grid.Extent{Axis: axBatch, Size: 3})
	cf := coeffs.SliceBatch(batch, []int{1})
	c := Coord{X1: 0.3, X2: 1.7}
	assert.Equal(t, ev.DerivDim1(c, cf), ev.Deriv(Dim1, c, cf))
	assert.Equal(t, ev.DerivDim2(c, cf), ev.Deriv(Dim2, c, cf))
	assert.Equal(t, ev.Deriv1And2(c, cf), ev.Deriv2(Cross12, c, cf))
	assert.Equal(t, ev.Deriv1And2(c, cf), ev.Deriv2(Cross21, c, cf))
}

func newEvaluator1D(t *testing.T, b bsplines.Basis) Evaluator1D {
	t.Helper()
	var lower, upper Rule1D = NullRule1D{}, NullRule1D{}
	if b.Periodic() {
		lower, upper = PeriodicRule1D{}, PeriodicRule1D{}
	}
	ev, err := NewEvaluator1D(Interest1D{Basis: b, Axis: "x", Lower: lower, Upper: upper})
	require.NoError(t, err)
	return ev
}

func TestSeparableSpline(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	b1, b2 := newBases(t, false, true)
	ev := newEvaluator(t, b1, b2)
	e1, e2 := newEvaluator1D(t, b1), newEvaluator1D(t, b2)

	f := grid.New[float64](grid.MustDomain(grid.Extent{Axis: axI1, Size: b1.Size()}))
	for i := 0; i < b1.Size(); i++ {
		f.Set(r.Float64()*2-1, i)
	}
	g := grid.New[float64](grid.MustDomain(grid.Extent{Axis: axI2, Size: b2.Size()}))
	for j := 0; j < b2.NBasis(); j++ {
		g.Set(r.Float64(), j)
	}
	for j := b2.NBasis(); j < b2.Size(); j++ {
		g.Set(g.At(j-b2.NBasis()), j)
	}

	coeffs := grid.New[float64](ev.BasisDomain())
	for i := 0; i < b1.Size(); i++ {
		for j := 0; j < b2.Size(); j++ {
			coeffs.Set(f.At(i)*g.At(j), i, j)
		}
	}

	for _, c := range []Coord{{-0.6, 0.2}, {0.1, 1.3}, {1.9, 2.95}} {
		assert.InDelta(t, e1.Eval(c.X1, f)*e2.Eval(c.X2, g), ev.Eval(c, coeffs), 1e-12)
		assert.InDelta(t, e1.Deriv(c.X1, f)*e2.Eval(c.X2, g), ev.DerivDim1(c, coeffs), 1e-11)
		assert.InDelta(t, e1.Eval(c.X1, f)*e2.Deriv(c.X2, g), ev.DerivDim2(c, coeffs), 1e-11)
		assert.InDelta(t, e1.Deriv(c.X1, f)*e2.Deriv(c.X2, g), ev.Deriv1And2(c, coeffs), 1e-10)
	}

	i1 := grid.New[float64](grid.Domain{})
	i2 := grid.New[float64](grid.Domain{})
	i12 := grid.New[float64](grid.Domain{})
	e1.Integrate(i1, f)
	e2.Integrate(i2, g)
	ev.Integrate(i12, coeffs)
	assert.InDelta(t, i1.At()*i2.At(), i12.At(), 1e-12)
}

func TestIntegrateUnitCoefficients(t *testing.T) {
	for _, periodic := range [][2]bool{{false, false}, {true, false}, {true, true}} {
		b1, b2 := newBases(t, periodic[0], periodic[1])
		ev := newEvaluator(t, b1, b2)

		batch := grid.MustDomain(grid.Extent{Axis: axBatch, Size: 3})
		d, err := batch.Prepend(ev.BasisDomain().Extents()...)
		require.NoError(t, err)
		coeffs := grid.New[float64](d)
		coeffs.Fill(1)

		out := grid.New[float64](batch)
		ev.Integrate(out, coeffs)
		for _, v := range out.Data() {
			assert.InDelta(t, b1.Length()*b2.Length(), v, 1e-12)
		}

		scalar := grid.New[float64](grid.Domain{})
		one := grid.New[float64](ev.BasisDomain())
		one.Fill(1)
		ev.Integrate(scalar, one)
		assert.InDelta(t, 9.0, scalar.At(), 1e-12)
	}
}

func TestEvaluator1DPartitionOfUnity(t *testing.T) {
	nu, err := bsplines.NewNonUniform("i", 3, []float64{0, 0.2, 0.5, 0.6, 1}, false)
	require.NoError(t, err)
	u, err := bsplines.NewUniform("i", 3, 0, 1, 4, false)
	require.NoError(t, err)

	for _, b := range []bsplines.Basis{nu, u} {
		ev, err := NewEvaluator1D(Interest1D{
			Basis: b, Axis: "x", Mesh: grid.NewUniformMesh(0, 1, 11),
			Lower: NewConstantRule1D(b.RMin(), b), Upper: NewConstantRule1D(b.RMax(), b),
		})
		require.NoError(t, err)

		coeffs := grid.New[float64](grid.MustDomain(grid.Extent{Axis: "i", Size: b.Size()}))
		coeffs.Fill(1)
		for _, x := range []float64{0, 0.1, 0.2, 0.33, 0.5, 0.61, 0.99, 1} {
			assert.InDelta(t, 1.0, ev.Eval(x, coeffs), 1e-14, "x=%g", x)
			assert.InDelta(t, 0.0, ev.Deriv(x, coeffs), 1e-12, "x=%g", x)
		}
		assert.InDelta(t, 1.0, ev.Eval(-3, coeffs), 1e-14)
		assert.InDelta(t, 1.0, ev.Eval(7, coeffs), 1e-14)

		out := grid.New[float64](grid.MustDomain(grid.Extent{Axis: "x", Size: 11}))
		ev.EvalBatch(out, coeffs)
		for _, v := range out.Data() {
			assert.InDelta(t, 1.0, v, 1e-14)
		}

		coords := grid.New[float64](out.Domain())
		for i := 0; i < 11; i++ {
			coords.Set(float64(i)*0.13-0.2, i)
		}
		ev.EvalBatchAt(out, coords, coeffs)
		for _, v := range out.Data() {
			assert.InDelta(t, 1.0, v, 1e-14)
		}
		ev.DerivBatch(out, coeffs)
		for _, v := range out.Data() {
			assert.InDelta(t, 0.0, v, 1e-12)
		}
		ev.DerivBatchAt(out, coords, coeffs)
		for _, v := range out.Data() {
			assert.InDelta(t, 0.0, v, 1e-12)
		}

		integral := grid.New[float64](grid.Domain{})
		ev.Integrate(integral, coeffs)
		assert.InDelta(t, 1.0, integral.At(), 1e-14)
	}
}

func TestEvaluator1DBatch(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	b, err := bsplines.NewUniform("i", 2, 0, 2, 5, true)
	require.NoError(t, err)
	ev, err := NewEvaluator1D(
		Interest1D{Basis: b, Axis: "x", Mesh: grid.NewUniformMesh(0, 2, 9), Lower: PeriodicRule1D{}, Upper: PeriodicRule1D{}},
		WithParallel(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}),
	)
	require.NoError(t, err)
	assert.Equal(t, PeriodicRule1D{}, ev.LowerRule())
	assert.Equal(t, PeriodicRule1D{}, ev.UpperRule())

	coeffs := grid.New[float64](grid.MustDomain(grid.Extent{Axis: "i", Size: b.Size()}, grid.Extent{Axis: axBatch, Size: 6}))
	for s := 0; s < 6; s++ {
		for i := 0; i < b.NBasis(); i++ {
			coeffs.Set(r.Float64(), i, s)
		}
		for i := b.NBasis(); i < b.Size(); i++ {
			coeffs.Set(coeffs.At(i-b.NBasis(), s), i, s)
		}
	}
	out := grid.New[float64](grid.MustDomain(grid.Extent{Axis: axBatch, Size: 6}, grid.Extent{Axis: "x", Size: 9}))
	ev.EvalBatch(out, coeffs)

	batch := grid.MustDomain(grid.Extent{Axis: axBatch, Size: 6})
	for s := 0; s < 6; s++ {
		cf := coeffs.SliceBatch(batch, []int{s})
		for i := 0; i < 9; i++ {
			x := 0.25 * float64(i)
			assert.Equal(t, ev.Eval(x, cf), out.At(s, i))
			assert.InDelta(t, ev.Eval(x+2, cf), out.At(s, i), 1e-12)
		}
		// Mesh ends coincide on a periodic axis.
		assert.InDelta(t, out.At(s, 0), out.At(s, 8), 1e-12)
	}
}

func TestNewEvaluator2DErrors(t *testing.T) {
	b1, b2 := newBases(t, false, true)
	tests := []struct {
		name     string
		dim1     Interest
		dim2     Interest
		mismatch bool
	}{
		{
			"periodic basis with null rule",
			Interest{Basis: b1, Axis: axX1, Lower: NullRule{}, Upper: NullRule{}},
			Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: NullRule{}},
			true,
		},
		{
			"non-periodic basis with periodic rule",
			Interest{Basis: b1, Axis: axX1, Lower: PeriodicRule{}, Upper: NullRule{}},
			Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
			true,
		},
		{
			"nil rule",
			Interest{Basis: b1, Axis: axX1, Lower: NullRule{}},
			Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
			false,
		},
		{
			"nil basis",
			Interest{Axis: axX1, Lower: NullRule{}, Upper: NullRule{}},
			Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
			false,
		},
		{
			"same evaluation axis",
			Interest{Basis: b1, Axis: axX1, Lower: NullRule{}, Upper: NullRule{}},
			Interest{Basis: b2, Axis: axX1, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
			false,
		},
		{
			"evaluation axis equals basis axis",
			Interest{Basis: b1, Axis: axI2, Lower: NullRule{}, Upper: NullRule{}},
			Interest{Basis: b2, Axis: axX2, Lower: PeriodicRule{}, Upper: PeriodicRule{}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvaluator2D(tt.dim1, tt.dim2)
			require.Error(t, err)
			assert.Equal(t, tt.mismatch, errors.Is(err, ErrRuleMismatch), "got %v", err)
		})
	}
}

func TestContractViolations(t *testing.T) {
	b1, b2 := newBases(t, false, false)
	ev := newEvaluator(t, b1, b2)
	out, coeffs := batchFixture(rand.New(rand.NewSource(11)), ev, 3, 2, 4)
	out.Fill(math.NaN())

	wrongBatch := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axBatch, Size: 3},
		grid.Extent{Axis: axI1, Size: b1.Size()},
		grid.Extent{Axis: axI2, Size: b2.Size()},
	))
	tooShort := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axI1, Size: b1.Size() - 1},
		grid.Extent{Axis: axI2, Size: b2.Size()},
	))
	badCoords := grid.New[Coord](grid.MustDomain(grid.Extent{Axis: axX1, Size: 3}, grid.Extent{Axis: axX2, Size: 4}))
	noX2 := grid.New[float64](grid.MustDomain(grid.Extent{Axis: axX1, Size: 3}, grid.Extent{Axis: axBatch, Size: 2}))
	single := grid.New[float64](ev.BasisDomain())

	noMesh, err := NewEvaluator2D(
		Interest{Basis: b1, Axis: axX1, Lower: NullRule{}, Upper: NullRule{}},
		Interest{Basis: b2, Axis: axX2, Lower: NullRule{}, Upper: NullRule{}},
	)
	require.NoError(t, err)
	// out runs over 3 points of x1; this mesh only has 2.
	shortMesh, err := NewEvaluator2D(
		Interest{Basis: b1, Axis: axX1, Mesh: grid.PointsMesh{-1, 0}, Lower: NullRule{}, Upper: NullRule{}},
		Interest{Basis: b2, Axis: axX2, Mesh: grid.NewUniformMesh(b2.RMin(), b2.RMax(), 4), Lower: NullRule{}, Upper: NullRule{}},
		WithParallel(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}),
	)
	require.NoError(t, err)
	shortMesh1D, err := NewEvaluator1D(Interest1D{
		Basis: b1, Axis: axX1, Mesh: grid.PointsMesh{-1, 0}, Lower: NullRule1D{}, Upper: NullRule1D{},
	})
	require.NoError(t, err)
	coeffs1D := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axI1, Size: b1.Size()},
		grid.Extent{Axis: axBatch, Size: 2},
		grid.Extent{Axis: axX2, Size: 4},
	))

	tests := []struct {
		name string
		f    func()
	}{
		{"eval with short coefficients", func() { ev.Eval(Coord{}, tooShort) }},
		{"mesh shorter than output", func() { shortMesh.EvalBatch(out, coeffs) }},
		{"mesh shorter than 1d output", func() { shortMesh1D.EvalBatch(out, coeffs1D) }},
		{"eval with batched coefficients", func() { ev.Eval(Coord{}, coeffs) }},
		{"batch size mismatch", func() { ev.EvalBatch(out, wrongBatch) }},
		{"output without evaluation axis", func() { ev.EvalBatch(noX2, coeffs) }},
		{"coordinates over another domain", func() { ev.EvalBatchAt(out, badCoords, coeffs) }},
		{"batch without mesh", func() { noMesh.EvalBatch(out, coeffs) }},
		{"invalid dimension", func() { ev.Deriv(Dim(0), Coord{}, single) }},
		{"invalid batched dimension", func() { ev.DerivBatch(Dim(3), out, coeffs) }},
		{"zero cross dims", func() { ev.Deriv2(CrossDims{}, Coord{}, single) }},
		{"zero batched cross dims", func() { ev.Deriv2Batch(CrossDims{}, out, coeffs) }},
		{"integrate over evaluation domain", func() { ev.Integrate(out, coeffs) }},
		{"integrate into a basis axis", func() {
			ev.Integrate(grid.New[float64](grid.MustDomain(grid.Extent{Axis: axI1, Size: 2})), coeffs)
		}},
		{"periodic rule", func() { PeriodicRule{}.Extrapolate(Coord{}, single) }},
		{"periodic rule 1d", func() { PeriodicRule1D{}.Extrapolate(0, single) }},
		{"coord component", func() { Coord{}.Get(Dim(7)) }},
		{"interest", func() { ev.Interest(Dim(0)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireAssertion(t, tt.f)
			for _, v := range out.Data() {
				require.True(t, math.IsNaN(v), "output written before the failure")
			}
		})
	}
}

func TestDimStrings(t *testing.T) {
	assert.Equal(t, "dim1", Dim1.String())
	assert.Equal(t, "dim2", Dim2.String())
	assert.Equal(t, "cross12", Cross12.String())
	assert.Equal(t, "cross21", Cross21.String())
	assert.Equal(t, 1.5, Coord{X1: 1.5, X2: 2.5}.Get(Dim1))
	assert.Equal(t, 2.5, Coord{X1: 1.5, X2: 2.5}.Get(Dim2))
}

func BenchmarkEvalBatch(b *testing.B) {
	b1, _ := bsplines.NewUniform(axI1, 3, 0, 1, 64, false)
	b2, _ := bsplines.NewUniform(axI2, 3, 0, 1, 64, true)
	ev, _ := NewEvaluator2D(
		Interest{Basis: b1, Axis: axX1, Mesh: grid.NewUniformMesh(0, 1, 128), Lower: NullRule{}, Upper: NullRule{}},
		Interest{Basis: b2, Axis: axX2, Mesh: grid.NewUniformMesh(0, 1, 128), Lower: PeriodicRule{}, Upper: PeriodicRule{}},
	)
	coeffs := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axBatch, Size: 8},
		grid.Extent{Axis: axI1, Size: b1.Size()},
		grid.Extent{Axis: axI2, Size: b2.Size()},
	))
	coeffs.Fill(1)
	out := grid.New[float64](grid.MustDomain(
		grid.Extent{Axis: axBatch, Size: 8},
		grid.Extent{Axis: axX1, Size: 128},
		grid.Extent{Axis: axX2, Size: 128},
	))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.EvalBatch(out, coeffs)
	}
}
