// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package spline

import (
	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/parallel"
	"github.com/born-ml/splines/internal/spline"
)

// ErrRuleMismatch is returned when a rule does not fit the periodicity of
// its basis.
var ErrRuleMismatch = spline.ErrRuleMismatch

// Dim selects one of the two continuous dimensions.
type Dim = spline.Dim

// Dimensions.
const (
	Dim1 = spline.Dim1
	Dim2 = spline.Dim2
)

// CrossDims is an ordered pair of distinct dimensions.
type CrossDims = spline.CrossDims

// Cross derivative orders.
var (
	Cross12 = spline.Cross12
	Cross21 = spline.Cross21
)

// Coord is a point of the two-dimensional domain.
type Coord = spline.Coord

// Option configures an evaluator.
type Option = spline.Option

// Interest describes one dimension of an Evaluator2D.
type Interest = spline.Interest

// Evaluator2D evaluates tensor-product splines.
type Evaluator2D = spline.Evaluator2D

// Interest1D describes the dimension of an Evaluator1D.
type Interest1D = spline.Interest1D

// Evaluator1D evaluates splines on a single basis.
type Evaluator1D = spline.Evaluator1D

// Rule is an extrapolation rule for points outside a 2D domain.
type Rule = spline.Rule

// Rule1D is an extrapolation rule for points outside a 1D domain.
type Rule1D = spline.Rule1D

// Extrapolation rules.
type (
	NullRule       = spline.NullRule
	NullRule1D     = spline.NullRule1D
	PeriodicRule   = spline.PeriodicRule
	PeriodicRule1D = spline.PeriodicRule1D
	ConstantRule   = spline.ConstantRule
	ConstantRule1D = spline.ConstantRule1D
)

// WithParallel sets how batch indices are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return spline.WithParallel(cfg)
}

// NewEvaluator2D creates an evaluator over two dimensions of interest.
func NewEvaluator2D(dim1, dim2 Interest, opts ...Option) (Evaluator2D, error) {
	return spline.NewEvaluator2D(dim1, dim2, opts...)
}

// NewEvaluator1D creates an evaluator over one dimension of interest.
func NewEvaluator1D(dim Interest1D, opts ...Option) (Evaluator1D, error) {
	return spline.NewEvaluator1D(dim, opts...)
}

// NewConstantRule returns the rule that evaluates the spline at bound along
// dim.
func NewConstantRule(dim Dim, bound float64, b1, b2 bsplines.Basis) ConstantRule {
	return spline.NewConstantRule(dim, bound, b1, b2)
}

// NewConstantRule1D returns the rule that evaluates the spline at bound.
func NewConstantRule1D(bound float64, b bsplines.Basis) ConstantRule1D {
	return spline.NewConstantRule1D(bound, b)
}
