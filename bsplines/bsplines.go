// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bsplines provides one-dimensional B-spline basis spaces.
//
// Uniform bases are defined by an interval and a number of cells,
// non-uniform bases by their break points. Either may be periodic.
//
//	b, err := bsplines.NewUniform("i", 3, 0, 1, 32, true)
//	if err != nil {
//	    return err
//	}
//	values := make([]float64, b.Degree()+1)
//	first := b.EvalBasis(values, 0.25)
package bsplines

import (
	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
)

// MaxDegree is the highest supported spline degree.
const MaxDegree = bsplines.MaxDegree

// ErrInvalidBasis is returned when a basis cannot be constructed.
var ErrInvalidBasis = bsplines.ErrInvalidBasis

// Basis is a one-dimensional B-spline basis space.
type Basis = bsplines.Basis

// Uniform is a basis on equally spaced break points.
type Uniform = bsplines.Uniform

// NonUniform is a basis on arbitrary increasing break points.
type NonUniform = bsplines.NonUniform

// NewUniform returns a uniform basis of the given degree with ncells cells
// on [rmin, rmax].
func NewUniform(axis grid.Axis, degree int, rmin, rmax float64, ncells int, periodic bool) (*Uniform, error) {
	return bsplines.NewUniform(axis, degree, rmin, rmax, ncells, periodic)
}

// NewNonUniform returns a basis of the given degree on breaks.
func NewNonUniform(axis grid.Axis, degree int, breaks []float64, periodic bool) (*NonUniform, error) {
	return bsplines.NewNonUniform(axis, degree, breaks, periodic)
}

// Greville returns the Greville abscissae of b.
func Greville(b Basis) []float64 {
	return bsplines.Greville(b)
}
