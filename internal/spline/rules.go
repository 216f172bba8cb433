package spline

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
)

// ErrRuleMismatch is returned when the extrapolation rules of a dimension do
// not agree with the periodicity of its basis.
var ErrRuleMismatch = errors.New("spline: extrapolation rule does not match basis")

// Rule produces the value of a 2D spline at a coordinate outside the basis
// interval of one non-periodic dimension. coeffs is indexed by the two basis
// axes.
type Rule interface {
	Extrapolate(c Coord, coeffs grid.Span[float64]) float64
}

// Rule1D is the one-dimensional counterpart of Rule.
type Rule1D interface {
	Extrapolate(x float64, coeffs grid.Span[float64]) float64
}

// NullRule extrapolates by zero.
type NullRule struct{}

// Extrapolate returns 0.
func (NullRule) Extrapolate(Coord, grid.Span[float64]) float64 { return 0 }

// NullRule1D extrapolates by zero.
type NullRule1D struct{}

// Extrapolate returns 0.
func (NullRule1D) Extrapolate(float64, grid.Span[float64]) float64 { return 0 }

// PeriodicRule marks a periodic dimension. Periodic coordinates are folded
// back into the basis interval, so the rule is never consulted.
type PeriodicRule struct{}

// Extrapolate panics.
func (PeriodicRule) Extrapolate(c Coord, _ grid.Span[float64]) float64 {
	panic(errors.AssertionFailedf("spline: periodic rule invoked at (%g, %g)", c.X1, c.X2))
}

// PeriodicRule1D marks a periodic basis of an Evaluator1D.
type PeriodicRule1D struct{}

// Extrapolate panics.
func (PeriodicRule1D) Extrapolate(x float64, _ grid.Span[float64]) float64 {
	panic(errors.AssertionFailedf("spline: periodic rule invoked at %g", x))
}

// ConstantRule extends a 2D spline by the value it takes on a boundary of
// one dimension.
type ConstantRule struct {
	dim    Dim
	bound  float64
	b1, b2 bsplines.Basis
}

// NewConstantRule returns the rule that evaluates the spline on bases b1,
// b2 with the coordinate along dim replaced by bound. Along the other
// dimension, non-periodic coordinates are clamped into the basis interval.
func NewConstantRule(dim Dim, bound float64, b1, b2 bsplines.Basis) ConstantRule {
	dim.check()
	return ConstantRule{dim: dim, bound: bound, b1: b1, b2: b2}
}

// Extrapolate implements Rule.
func (r ConstantRule) Extrapolate(c Coord, coeffs grid.Span[float64]) float64 {
	c = c.with(r.dim, r.bound)
	od := other(r.dim)
	ob := r.b1
	if od == Dim2 {
		ob = r.b2
	}
	if !ob.Periodic() {
		c = c.with(od, min(max(c.Get(od), ob.RMin()), ob.RMax()))
	}
	return evalNoBC(r.b1, r.b2, kindEval, c, coeffs)
}

// ConstantRule1D extends a 1D spline by its value at a bound.
type ConstantRule1D struct {
	bound float64
	b     bsplines.Basis
}

// NewConstantRule1D returns the rule evaluating the spline on b at bound.
func NewConstantRule1D(bound float64, b bsplines.Basis) ConstantRule1D {
	return ConstantRule1D{bound: bound, b: b}
}

// Extrapolate implements Rule1D.
func (r ConstantRule1D) Extrapolate(_ float64, coeffs grid.Span[float64]) float64 {
	return evalNoBC1D(r.b, false, r.bound, coeffs)
}

func isPeriodicRule(r any) bool {
	switch r.(type) {
	case PeriodicRule, *PeriodicRule, PeriodicRule1D, *PeriodicRule1D:
		return true
	}
	return false
}

// checkRules validates the rules of one dimension against its basis.
func checkRules(name string, b bsplines.Basis, lower, upper any) error {
	if b == nil {
		return errors.Newf("spline: %s: nil basis", name)
	}
	for _, r := range []struct {
		side string
		rule any
	}{{"lower", lower}, {"upper", upper}} {
		if r.rule == nil {
			return errors.Newf("spline: %s: nil %s rule", name, r.side)
		}
		if p := isPeriodicRule(r.rule); p != b.Periodic() {
			return errors.Wrapf(ErrRuleMismatch, "%s: %s rule %T with periodic=%v basis",
				name, r.side, r.rule, b.Periodic())
		}
	}
	return nil
}
