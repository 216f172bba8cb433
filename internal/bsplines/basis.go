// Package bsplines implements the per-axis B-spline basis spaces consumed by
// the spline evaluators and builders.
//
// Basis functions are numbered so that, for a point in cell c, the non-zero
// functions are c, c+1, ..., c+degree. Periodic bases hold NCells distinct
// functions; their coefficient tables carry Degree extra trailing entries
// that repeat the first ones, so evaluation never needs to wrap indices.
package bsplines

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/grid"
)

// MaxDegree is the highest supported spline degree.
const MaxDegree = 15

// ErrInvalidBasis is returned when a basis cannot be constructed from the
// given parameters.
var ErrInvalidBasis = errors.New("bsplines: invalid basis")

// Basis is a one-dimensional B-spline basis space.
type Basis interface {
	// Axis tags the discrete dimension of basis-function indices.
	Axis() grid.Axis
	Degree() int
	Periodic() bool
	RMin() float64
	RMax() float64
	// Length is RMax - RMin.
	Length() float64
	NCells() int
	// NBasis is the number of distinct basis functions.
	NBasis() int
	// Size is the extent of a coefficient table along Axis.
	Size() int
	// Knot returns the i-th knot of the extended knot sequence, where knot
	// Degree()+k is the k-th break point.
	Knot(i int) float64

	// EvalBasis writes the Degree()+1 non-zero basis values at x into out
	// and returns the index of the first one.
	EvalBasis(out []float64, x float64) int
	// EvalDeriv writes the first derivatives of the Degree()+1 non-zero
	// basis functions at x into out and returns the index of the first one.
	EvalDeriv(out []float64, x float64) int
	// Integrals writes the integral over [RMin, RMax] of every basis
	// function into out, which must have length Size(). Trailing periodic
	// entries receive 0.
	Integrals(out []float64)
}

func validate(degree, ncells int, rmin, rmax float64, periodic bool) error {
	switch {
	case degree < 1 || degree > MaxDegree:
		return errors.Wrapf(ErrInvalidBasis, "degree %d not in [1, %d]", degree, MaxDegree)
	case ncells < 1:
		return errors.Wrapf(ErrInvalidBasis, "need at least one cell, got %d", ncells)
	case !(rmax > rmin):
		return errors.Wrapf(ErrInvalidBasis, "empty interval [%g, %g]", rmin, rmax)
	case periodic && ncells <= degree:
		return errors.Wrapf(ErrInvalidBasis,
			"periodic basis of degree %d needs more than %d cells, got %d", degree, degree, ncells)
	}
	return nil
}

func nbasis(degree, ncells int, periodic bool) int {
	if periodic {
		return ncells
	}
	return ncells + degree
}

// Greville returns the Greville abscissae of b, one per distinct basis
// function: the average of the Degree() interior knots of its support.
// Knots of non-periodic bases are clamped to [RMin, RMax] first so every
// abscissa lies in the domain. Periodic abscissae are folded into
// [RMin, RMax).
func Greville(b Basis) []float64 {
	p := b.Degree()
	out := make([]float64, b.NBasis())
	for j := range out {
		s := 0.0
		for k := 1; k <= p; k++ {
			t := b.Knot(j + k)
			if !b.Periodic() {
				t = min(max(t, b.RMin()), b.RMax())
			}
			s += t
		}
		x := s / float64(p)
		if b.Periodic() {
			x = Fold(b, x)
			if x >= b.RMax() {
				x -= b.Length()
			}
		}
		out[j] = x
	}
	return out
}

// Fold maps x into [RMin, RMax] by subtracting a whole number of periods.
// Points already inside the interval are returned unchanged.
func Fold(b Basis, x float64) float64 {
	if x < b.RMin() || x > b.RMax() {
		x -= math.Floor((x-b.RMin())/b.Length()) * b.Length()
	}
	return x
}
