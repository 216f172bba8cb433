package spline

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

// EvalBatch evaluates the spline of every batch index at the natural
// coordinates of the output grid. The domain of out is the two evaluation
// axes plus the batch axes; coeffs must hold the two basis axes plus exactly
// the same batch axes, in any order.
func (e Evaluator2D) EvalBatch(out, coeffs grid.Span[float64]) {
	e.batch(kindEval, out, grid.Span[Coord]{}, coeffs)
}

// EvalBatchAt is EvalBatch at explicit coordinates. coords has the same
// domain as out.
func (e Evaluator2D) EvalBatchAt(out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	e.batch(kindEval, out, coords, coeffs)
}

// DerivDim1Batch is the batched form of DerivDim1.
func (e Evaluator2D) DerivDim1Batch(out, coeffs grid.Span[float64]) {
	e.batch(kindDeriv1, out, grid.Span[Coord]{}, coeffs)
}

// DerivDim1BatchAt is the batched form of DerivDim1 at explicit coordinates.
func (e Evaluator2D) DerivDim1BatchAt(out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	e.batch(kindDeriv1, out, coords, coeffs)
}

// DerivDim2Batch is the batched form of DerivDim2.
func (e Evaluator2D) DerivDim2Batch(out, coeffs grid.Span[float64]) {
	e.batch(kindDeriv2, out, grid.Span[Coord]{}, coeffs)
}

// DerivDim2BatchAt is the batched form of DerivDim2 at explicit coordinates.
func (e Evaluator2D) DerivDim2BatchAt(out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	e.batch(kindDeriv2, out, coords, coeffs)
}

// Deriv1And2Batch is the batched form of Deriv1And2.
func (e Evaluator2D) Deriv1And2Batch(out, coeffs grid.Span[float64]) {
	e.batch(kindDeriv12, out, grid.Span[Coord]{}, coeffs)
}

// Deriv1And2BatchAt is the batched form of Deriv1And2 at explicit coordinates.
func (e Evaluator2D) Deriv1And2BatchAt(out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	e.batch(kindDeriv12, out, coords, coeffs)
}

// DerivBatch is the batched form of Deriv.
func (e Evaluator2D) DerivBatch(d Dim, out, coeffs grid.Span[float64]) {
	e.batch(derivKind(d), out, grid.Span[Coord]{}, coeffs)
}

// DerivBatchAt is the batched form of Deriv at explicit coordinates.
func (e Evaluator2D) DerivBatchAt(d Dim, out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	e.batch(derivKind(d), out, coords, coeffs)
}

// Deriv2Batch is the batched form of Deriv2.
func (e Evaluator2D) Deriv2Batch(p CrossDims, out, coeffs grid.Span[float64]) {
	p.check()
	e.batch(kindDeriv12, out, grid.Span[Coord]{}, coeffs)
}

// Deriv2BatchAt is the batched form of Deriv2 at explicit coordinates.
func (e Evaluator2D) Deriv2BatchAt(p CrossDims, out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	p.check()
	e.batch(kindDeriv12, out, coords, coeffs)
}

// batch checks every precondition, then fills out one batch index at a
// time. A zero coords span selects the natural mesh coordinates.
func (e Evaluator2D) batch(k kind, out grid.Span[float64], coords grid.Span[Coord], coeffs grid.Span[float64]) {
	op := k.String() + "_batch"
	a1, a2 := e.dim1.Axis, e.dim2.Axis
	od := out.Domain()
	if !od.Has(a1) || !od.Has(a2) {
		panic(errors.AssertionFailedf("spline: %s: output domain %s lacks evaluation axes %q, %q",
			op, od, a1, a2))
	}
	batch := od.Remove(a1, a2)
	want, err := batch.Prepend(e.basisDom.Extents()...)
	if err != nil {
		panic(errors.AssertionFailedf("spline: %s: batch domain %s overlaps basis axes: %v", op, batch, err))
	}
	checkCoeffs(op, coeffs, want)

	withCoords := !coords.IsZero()
	if withCoords {
		if !coords.Domain().SameAxes(od) {
			panic(errors.AssertionFailedf("spline: %s: coordinate domain %s does not match output domain %s",
				op, coords.Domain(), od))
		}
	} else if e.dim1.Mesh == nil || e.dim2.Mesh == nil {
		panic(errors.AssertionFailedf("spline: %s: no coordinates given and no mesh configured", op))
	}

	n1, n2 := od.Size(a1), od.Size(a2)
	if !withCoords {
		checkMesh(op, e.dim1.Mesh, a1, n1)
		checkMesh(op, e.dim2.Mesh, a2, n2)
	}
	parallel.For(batch.NumElements(), func(b int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(b, idx)
		o := out.SliceBatch(batch, idx)
		cf := coeffs.SliceBatch(batch, idx)
		os1, os2 := o.Stride(a1), o.Stride(a2)
		odata := o.Data()

		var cs grid.Span[Coord]
		var cs1, cs2 int
		if withCoords {
			cs = coords.SliceBatch(batch, idx)
			cs1, cs2 = cs.Stride(a1), cs.Stride(a2)
		}

		for i1 := 0; i1 < n1; i1++ {
			for i2 := 0; i2 < n2; i2++ {
				var c Coord
				if withCoords {
					c = cs.Data()[cs.Offset()+i1*cs1+i2*cs2]
				} else {
					c = Coord{X1: e.dim1.Mesh.Coordinate(i1), X2: e.dim2.Mesh.Coordinate(i2)}
				}
				odata[o.Offset()+i1*os1+i2*os2] = e.apply(k, c, cf)
			}
		}
	}, e.par)
}
