package spline

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
)

// kind is the operator applied by the tensor-product kernel.
type kind int

const (
	kindEval kind = iota
	kindDeriv1
	kindDeriv2
	kindDeriv12
)

func (k kind) String() string {
	switch k {
	case kindEval:
		return "eval"
	case kindDeriv1:
		return "deriv_dim1"
	case kindDeriv2:
		return "deriv_dim2"
	default:
		return "deriv_dim1_dim2"
	}
}

func (k kind) derivAlong(d Dim) bool {
	switch k {
	case kindDeriv12:
		return true
	case kindDeriv1:
		return d == Dim1
	case kindDeriv2:
		return d == Dim2
	}
	return false
}

// basisValues evaluates b (or its derivative) at x into out.
func basisValues(b bsplines.Basis, deriv bool, out []float64, x float64) int {
	if deriv {
		return b.EvalDeriv(out, x)
	}
	return b.EvalBasis(out, x)
}

// tensorSum computes Σ_i Σ_j coeffs(j1+i, j2+j) v1[i] v2[j] with the outer
// loop over the first basis.
func tensorSum(coeffs grid.Span[float64], a1, a2 grid.Axis, j1, j2 int, v1, v2 []float64) float64 {
	s1, s2 := coeffs.Stride(a1), coeffs.Stride(a2)
	data := coeffs.Data()
	base := coeffs.Offset() + j1*s1 + j2*s2
	y := 0.0
	for i, vi := range v1 {
		row := base + i*s1
		for j, vj := range v2 {
			y += data[row+j*s2] * vi * vj
		}
	}
	return y
}

// evalNoBC applies k at c without folding or extrapolation. c must lie in
// the basis intervals for the result to be meaningful.
func evalNoBC(b1, b2 bsplines.Basis, k kind, c Coord, coeffs grid.Span[float64]) float64 {
	var v1, v2 [bsplines.MaxDegree + 1]float64
	j1 := basisValues(b1, k.derivAlong(Dim1), v1[:], c.X1)
	j2 := basisValues(b2, k.derivAlong(Dim2), v2[:], c.X2)
	return tensorSum(coeffs, b1.Axis(), b2.Axis(), j1, j2, v1[:b1.Degree()+1], v2[:b2.Degree()+1])
}

// evalNoBC1D is the one-dimensional counterpart of evalNoBC.
func evalNoBC1D(b bsplines.Basis, deriv bool, x float64, coeffs grid.Span[float64]) float64 {
	var v [bsplines.MaxDegree + 1]float64
	j := basisValues(b, deriv, v[:], x)
	s := coeffs.Stride(b.Axis())
	data := coeffs.Data()
	pos := coeffs.Offset() + j*s
	y := 0.0
	for _, vi := range v[:b.Degree()+1] {
		y += data[pos] * vi
		pos += s
	}
	return y
}

// checkMesh asserts that m gives a coordinate for each of the n points
// along axis a.
func checkMesh(op string, m grid.Mesh, a grid.Axis, n int) {
	if !grid.Covers(m, n) {
		panic(errors.AssertionFailedf("spline: %s: mesh of %d points is shorter than output axis %q of size %d",
			op, m.Len(), a, n))
	}
}

// checkCoeffs asserts that coeffs is indexed by exactly the given domain,
// in any axis order.
func checkCoeffs(op string, coeffs grid.Span[float64], want grid.Domain) {
	if !coeffs.Domain().SameAxes(want) {
		panic(errors.AssertionFailedf("spline: %s: coefficient domain %s does not match %s",
			op, coeffs.Domain(), want))
	}
}
