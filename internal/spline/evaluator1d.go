package spline

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

// Interest1D describes the dimension of an Evaluator1D.
type Interest1D struct {
	Basis        bsplines.Basis
	Axis         grid.Axis
	Mesh         grid.Mesh
	Lower, Upper Rule1D
}

// Evaluator1D evaluates splines on a single basis.
type Evaluator1D struct {
	dim      Interest1D
	basisDom grid.Domain
	par      parallel.Config
}

// NewEvaluator1D creates an evaluator over one dimension of interest.
func NewEvaluator1D(dim Interest1D, opts ...Option) (Evaluator1D, error) {
	if err := checkRules("dim", dim.Basis, dim.Lower, dim.Upper); err != nil {
		return Evaluator1D{}, err
	}
	if dim.Axis == dim.Basis.Axis() {
		return Evaluator1D{}, errors.Newf("spline: axis %q used twice", dim.Axis)
	}
	o := buildOptions(opts)
	return Evaluator1D{
		dim:      dim,
		basisDom: grid.MustDomain(grid.Extent{Axis: dim.Basis.Axis(), Size: dim.Basis.Size()}),
		par:      o.par,
	}, nil
}

// LowerRule returns the rule applied left of the basis interval.
func (e Evaluator1D) LowerRule() Rule1D { return e.dim.Lower }

// UpperRule returns the rule applied right of the basis interval.
func (e Evaluator1D) UpperRule() Rule1D { return e.dim.Upper }

// Eval returns the spline value at x.
func (e Evaluator1D) Eval(x float64, coeffs grid.Span[float64]) float64 {
	checkCoeffs("eval", coeffs, e.basisDom)
	return e.eval(x, coeffs)
}

func (e Evaluator1D) eval(x float64, coeffs grid.Span[float64]) float64 {
	b := e.dim.Basis
	if b.Periodic() {
		x = bsplines.Fold(b, x)
	} else if x < b.RMin() {
		return e.dim.Lower.Extrapolate(x, coeffs)
	} else if x > b.RMax() {
		return e.dim.Upper.Extrapolate(x, coeffs)
	}
	return evalNoBC1D(b, false, x, coeffs)
}

// Deriv returns the first derivative at x.
func (e Evaluator1D) Deriv(x float64, coeffs grid.Span[float64]) float64 {
	checkCoeffs("deriv", coeffs, e.basisDom)
	return evalNoBC1D(e.dim.Basis, true, x, coeffs)
}

// EvalBatch evaluates every batch spline at the mesh coordinates.
func (e Evaluator1D) EvalBatch(out, coeffs grid.Span[float64]) {
	e.batch(false, out, grid.Span[float64]{}, coeffs)
}

// EvalBatchAt evaluates every batch spline at explicit coordinates.
func (e Evaluator1D) EvalBatchAt(out, coords, coeffs grid.Span[float64]) {
	e.batch(false, out, coords, coeffs)
}

// DerivBatch differentiates every batch spline at the mesh coordinates.
func (e Evaluator1D) DerivBatch(out, coeffs grid.Span[float64]) {
	e.batch(true, out, grid.Span[float64]{}, coeffs)
}

// DerivBatchAt differentiates every batch spline at explicit coordinates.
func (e Evaluator1D) DerivBatchAt(out, coords, coeffs grid.Span[float64]) {
	e.batch(true, out, coords, coeffs)
}

func (e Evaluator1D) batch(deriv bool, out, coords, coeffs grid.Span[float64]) {
	op := "eval_batch"
	if deriv {
		op = "deriv_batch"
	}
	a := e.dim.Axis
	od := out.Domain()
	if !od.Has(a) {
		panic(errors.AssertionFailedf("spline: %s: output domain %s lacks evaluation axis %q", op, od, a))
	}
	batch := od.Remove(a)
	want, err := batch.Prepend(e.basisDom.Extents()...)
	if err != nil {
		panic(errors.AssertionFailedf("spline: %s: batch domain %s overlaps basis axis: %v", op, batch, err))
	}
	checkCoeffs(op, coeffs, want)
	withCoords := !coords.IsZero()
	if withCoords {
		if !coords.Domain().SameAxes(od) {
			panic(errors.AssertionFailedf("spline: %s: coordinate domain %s does not match output domain %s",
				op, coords.Domain(), od))
		}
	} else if e.dim.Mesh == nil {
		panic(errors.AssertionFailedf("spline: %s: no coordinates given and no mesh configured", op))
	}

	n := od.Size(a)
	if !withCoords {
		checkMesh(op, e.dim.Mesh, a, n)
	}
	parallel.For(batch.NumElements(), func(b int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(b, idx)
		o := out.SliceBatch(batch, idx)
		cf := coeffs.SliceBatch(batch, idx)
		var cs grid.Span[float64]
		if withCoords {
			cs = coords.SliceBatch(batch, idx)
		}
		for i := 0; i < n; i++ {
			var x float64
			if withCoords {
				x = cs.At(i)
			} else {
				x = e.dim.Mesh.Coordinate(i)
			}
			if deriv {
				o.Set(evalNoBC1D(e.dim.Basis, true, x, cf), i)
			} else {
				o.Set(e.eval(x, cf), i)
			}
		}
	}, e.par)
}

// Integrate writes into out the integral of every batch spline over the
// basis interval.
func (e Evaluator1D) Integrate(out, coeffs grid.Span[float64]) {
	batch := out.Domain()
	want, err := batch.Prepend(e.basisDom.Extents()...)
	if err != nil {
		panic(errors.AssertionFailedf("spline: integrate: output domain %s overlaps basis axis: %v", batch, err))
	}
	checkCoeffs("integrate", coeffs, want)

	b := e.dim.Basis
	w := make([]float64, b.Size())
	b.Integrals(w)
	parallel.For(batch.NumElements(), func(k int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(k, idx)
		cf := coeffs.SliceBatch(batch, idx)
		y := 0.0
		for i, wi := range w {
			y += cf.At(i) * wi
		}
		out.Set(y, idx...)
	}, e.par)
}
