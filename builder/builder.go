// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package builder computes spline coefficients by interpolation at the
// Greville abscissae of a basis.
//
//	bld, err := builder.NewBuilder2D(b1, "x1", b2, "x2")
//	if err != nil {
//	    return err
//	}
//	vals := grid.New[float64](bld.ValuesDomain())
//	// fill vals at bld.Dim1().Points() × bld.Dim2().Points()
//	coeffs := grid.New[float64](bld.CoeffsDomain())
//	err = bld.Build(coeffs, vals)
package builder

import (
	"go.uber.org/zap"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/builder"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

// Option configures a builder.
type Option = builder.Option

// Builder1D interpolates values given on one axis.
type Builder1D = builder.Builder1D

// Builder2D interpolates values given on a tensor-product grid.
type Builder2D = builder.Builder2D

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return builder.WithLogger(l)
}

// WithParallel sets how batch indices are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return builder.WithParallel(cfg)
}

// NewBuilder1D returns a builder for basis whose values live on axis.
func NewBuilder1D(basis bsplines.Basis, axis grid.Axis, opts ...Option) (*Builder1D, error) {
	return builder.NewBuilder1D(basis, axis, opts...)
}

// NewBuilder2D returns a builder for the tensor product of two bases.
func NewBuilder2D(basis1 bsplines.Basis, axis1 grid.Axis, basis2 bsplines.Basis, axis2 grid.Axis,
	opts ...Option) (*Builder2D, error) {
	return builder.NewBuilder2D(basis1, axis1, basis2, axis2, opts...)
}
