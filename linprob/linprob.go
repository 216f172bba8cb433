// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linprob provides square linear problems with multiple right-hand
// sides.
//
// A Problem is filled with Set, then Setup factorizes it into a Solver:
//
//	p := linprob.NewBand(n, 1, 1, false)
//	for i := range n {
//	    p.Set(i, i, 2)
//	}
//	s, err := p.Setup()
//	if err != nil {
//	    return err
//	}
//	b := mat.NewDense(s.RequiredRHSRows(), nrhs, data)
//	err = s.Solve(b, false)
package linprob

import (
	"github.com/born-ml/splines/internal/linprob"
	"github.com/born-ml/splines/internal/parallel"
)

var (
	// ErrSingular is returned by Setup when the matrix cannot be factorized.
	ErrSingular = linprob.ErrSingular
	// ErrNotPositiveDefinite is returned by Setup of a symmetric positive
	// definite backend when the matrix is not positive definite.
	ErrNotPositiveDefinite = linprob.ErrNotPositiveDefinite
)

// Problem is a square matrix being filled.
type Problem = linprob.Problem

// Solver solves a factorized problem.
type Solver = linprob.Solver

// Option configures a problem.
type Option = linprob.Option

// Dense is a general matrix solved by LU decomposition.
type Dense = linprob.Dense

// Band is a general band matrix solved by LU decomposition.
type Band = linprob.Band

// PDSBand is a symmetric positive definite band matrix solved by Cholesky
// decomposition.
type PDSBand = linprob.PDSBand

// Blocks2x2 is a problem bordered by dense rows and columns, solved
// through the Schur complement.
type Blocks2x2 = linprob.Blocks2x2

// WithParallel sets how right-hand sides are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return linprob.WithParallel(cfg)
}

// NewDense returns a zero n×n dense problem.
func NewDense(n int, opts ...Option) *Dense {
	return linprob.NewDense(n, opts...)
}

// NewGeneralBand returns a zero n×n band problem.
func NewGeneralBand(n, kl, ku int, opts ...Option) *Band {
	return linprob.NewGeneralBand(n, kl, ku, opts...)
}

// NewPDSBand returns a zero n×n symmetric band problem.
func NewPDSBand(n, kd int, opts ...Option) *PDSBand {
	return linprob.NewPDSBand(n, kd, opts...)
}

// NewBlocks2x2 borders top with k dense rows and columns.
func NewBlocks2x2(top Problem, k int, opts ...Option) *Blocks2x2 {
	return linprob.NewBlocks2x2(top, k, opts...)
}

// NewBand returns an empty problem suited to a band matrix.
func NewBand(n, kl, ku int, pds bool, opts ...Option) Problem {
	return linprob.NewBand(n, kl, ku, pds, opts...)
}

// NewBlockWithBandMainBlock returns an empty problem with a band main block
// bordered by k dense rows and columns.
func NewBlockWithBandMainBlock(n, kl, ku int, pds bool, k int, opts ...Option) Problem {
	return linprob.NewBlockWithBandMainBlock(n, kl, ku, pds, k, opts...)
}

// Check asserts the invariants every Solver must satisfy.
func Check(s Solver) {
	linprob.Check(s)
}
