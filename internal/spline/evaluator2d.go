package spline

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

// Interest describes one continuous dimension of an Evaluator2D.
type Interest struct {
	// Basis spans the dimension; its axis indexes the coefficients.
	Basis bsplines.Basis
	// Axis is the evaluation-grid axis of output and coordinate spans.
	Axis grid.Axis
	// Mesh gives the natural coordinate of each point of Axis. It is only
	// needed by batched operations called without coordinates.
	Mesh grid.Mesh
	// Lower and Upper extrapolate left of RMin and right of RMax.
	Lower, Upper Rule
}

// Option configures an evaluator.
type Option func(*options)

type options struct {
	par parallel.Config
}

// WithParallel sets how batched operations are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.par = cfg
	}
}

func buildOptions(opts []Option) options {
	o := options{par: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Evaluator2D evaluates tensor-product splines on two bases.
type Evaluator2D struct {
	dim1, dim2 Interest
	basisDom   grid.Domain
	par        parallel.Config
}

// NewEvaluator2D creates an evaluator over two dimensions of interest.
//
// A periodic basis requires PeriodicRule on both sides and a non-periodic
// basis forbids it. The four axes involved must be distinct.
func NewEvaluator2D(dim1, dim2 Interest, opts ...Option) (Evaluator2D, error) {
	if err := checkRules("dim1", dim1.Basis, dim1.Lower, dim1.Upper); err != nil {
		return Evaluator2D{}, err
	}
	if err := checkRules("dim2", dim2.Basis, dim2.Lower, dim2.Upper); err != nil {
		return Evaluator2D{}, err
	}
	basisDom, err := grid.NewDomain(
		grid.Extent{Axis: dim1.Basis.Axis(), Size: dim1.Basis.Size()},
		grid.Extent{Axis: dim2.Basis.Axis(), Size: dim2.Basis.Size()},
	)
	if err != nil {
		return Evaluator2D{}, errors.Wrap(err, "spline: basis axes")
	}
	axes := []grid.Axis{dim1.Basis.Axis(), dim2.Basis.Axis(), dim1.Axis, dim2.Axis}
	for i := range axes {
		for j := i + 1; j < len(axes); j++ {
			if axes[i] == axes[j] {
				return Evaluator2D{}, errors.Newf("spline: axis %q used twice", axes[i])
			}
		}
	}

	o := buildOptions(opts)
	return Evaluator2D{dim1: dim1, dim2: dim2, basisDom: basisDom, par: o.par}, nil
}

// Interest returns the description of dimension d.
func (e Evaluator2D) Interest(d Dim) Interest {
	d.check()
	if d == Dim1 {
		return e.dim1
	}
	return e.dim2
}

// LowerRule returns the rule applied left of the basis interval of d.
func (e Evaluator2D) LowerRule(d Dim) Rule {
	return e.Interest(d).Lower
}

// UpperRule returns the rule applied right of the basis interval of d.
func (e Evaluator2D) UpperRule(d Dim) Rule {
	return e.Interest(d).Upper
}

// BasisDomain returns the domain of a single coefficient table.
func (e Evaluator2D) BasisDomain() grid.Domain {
	return e.basisDom
}

// Eval returns the spline value at c. Periodic coordinates are folded into
// their basis interval; out-of-range non-periodic coordinates are handed to
// the first matching rule among lower1, upper1, lower2, upper2.
func (e Evaluator2D) Eval(c Coord, coeffs grid.Span[float64]) float64 {
	checkCoeffs("eval", coeffs, e.basisDom)
	return e.eval(c, coeffs)
}

func (e Evaluator2D) eval(c Coord, coeffs grid.Span[float64]) float64 {
	b1, b2 := e.dim1.Basis, e.dim2.Basis
	if b1.Periodic() {
		c.X1 = bsplines.Fold(b1, c.X1)
	}
	if b2.Periodic() {
		c.X2 = bsplines.Fold(b2, c.X2)
	}

	if !b1.Periodic() {
		if c.X1 < b1.RMin() {
			return e.dim1.Lower.Extrapolate(c, coeffs)
		}
		if c.X1 > b1.RMax() {
			return e.dim1.Upper.Extrapolate(c, coeffs)
		}
	}
	if !b2.Periodic() {
		if c.X2 < b2.RMin() {
			return e.dim2.Lower.Extrapolate(c, coeffs)
		}
		if c.X2 > b2.RMax() {
			return e.dim2.Upper.Extrapolate(c, coeffs)
		}
	}
	return evalNoBC(b1, b2, kindEval, c, coeffs)
}

// apply runs k at c. Derivatives are taken as is, without folding or
// extrapolation.
func (e Evaluator2D) apply(k kind, c Coord, coeffs grid.Span[float64]) float64 {
	if k == kindEval {
		return e.eval(c, coeffs)
	}
	return evalNoBC(e.dim1.Basis, e.dim2.Basis, k, c, coeffs)
}

func (e Evaluator2D) point(k kind, c Coord, coeffs grid.Span[float64]) float64 {
	checkCoeffs(k.String(), coeffs, e.basisDom)
	return e.apply(k, c, coeffs)
}

// DerivDim1 returns the first derivative along Dim1 at c.
func (e Evaluator2D) DerivDim1(c Coord, coeffs grid.Span[float64]) float64 {
	return e.point(kindDeriv1, c, coeffs)
}

// DerivDim2 returns the first derivative along Dim2 at c.
func (e Evaluator2D) DerivDim2(c Coord, coeffs grid.Span[float64]) float64 {
	return e.point(kindDeriv2, c, coeffs)
}

// Deriv1And2 returns the mixed derivative along Dim1 and Dim2 at c.
func (e Evaluator2D) Deriv1And2(c Coord, coeffs grid.Span[float64]) float64 {
	return e.point(kindDeriv12, c, coeffs)
}

// Deriv returns the first derivative along d at c.
func (e Evaluator2D) Deriv(d Dim, c Coord, coeffs grid.Span[float64]) float64 {
	return e.point(derivKind(d), c, coeffs)
}

// Deriv2 returns the mixed second derivative selected by p at c.
func (e Evaluator2D) Deriv2(p CrossDims, c Coord, coeffs grid.Span[float64]) float64 {
	p.check()
	return e.point(kindDeriv12, c, coeffs)
}

func derivKind(d Dim) kind {
	d.check()
	if d == Dim1 {
		return kindDeriv1
	}
	return kindDeriv2
}

// Integrate writes into out, for every batch index, the integral of the
// spline over both basis intervals. The domain of out is the batch domain;
// it may have rank 0.
func (e Evaluator2D) Integrate(out grid.Span[float64], coeffs grid.Span[float64]) {
	batch := out.Domain()
	want, err := batch.Prepend(e.basisDom.Extents()...)
	if err != nil {
		panic(errors.AssertionFailedf("spline: integrate: output domain %s overlaps basis axes: %v", batch, err))
	}
	checkCoeffs("integrate", coeffs, want)

	b1, b2 := e.dim1.Basis, e.dim2.Basis
	w1 := make([]float64, b1.Size())
	w2 := make([]float64, b2.Size())
	b1.Integrals(w1)
	b2.Integrals(w2)

	parallel.For(batch.NumElements(), func(k int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(k, idx)
		cf := coeffs.SliceBatch(batch, idx)
		s1, s2 := cf.Stride(b1.Axis()), cf.Stride(b2.Axis())
		data := cf.Data()
		y := 0.0
		for i, wi := range w1 {
			row := cf.Offset() + i*s1
			for j, wj := range w2 {
				y += data[row+j*s2] * wi * wj
			}
		}
		out.Set(y, idx...)
	}, e.par)
}
