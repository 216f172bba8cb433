// Package linprob provides square linear problems with multiple right-hand
// sides, used to compute spline coefficients.
//
// A Problem is filled element by element, then Setup factorizes it and
// returns a Solver. The two states are distinct types: a Problem cannot
// solve and a Solver cannot be filled. Right-hand sides are the columns of a
// *mat.Dense with at least RequiredRHSRows rows; rows at or beyond Size are
// never read or written.
//
// Misuse (indices out of range, filling after Setup, too few right-hand-side
// rows) panics with an assertion failure from github.com/cockroachdb/errors.
package linprob

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/parallel"
)

var (
	// ErrSingular is returned by Setup when the matrix cannot be factorized.
	ErrSingular = errors.New("linprob: singular matrix")
	// ErrNotPositiveDefinite is returned by Setup of a symmetric positive
	// definite backend when the matrix is not positive definite.
	ErrNotPositiveDefinite = errors.New("linprob: matrix is not positive definite")
)

// Problem is a square matrix being filled.
type Problem interface {
	// Size is the order of the matrix.
	Size() int
	// At returns element (i, j).
	At(i, j int) float64
	// Set stores v at (i, j).
	Set(i, j int, v float64)
	// Setup factorizes the matrix. It may be called once; the problem cannot
	// be used afterwards.
	Setup() (Solver, error)
}

// Solver solves a factorized problem.
type Solver interface {
	// Size is the order of the matrix.
	Size() int
	// RequiredRHSRows is the minimum number of rows of the right-hand-side
	// matrix passed to Solve. It is at least Size.
	RequiredRHSRows() int
	// Solve overwrites every column of b with the solution of A x = b, or of
	// Aᵀ x = b if transpose is set.
	Solve(b *mat.Dense, transpose bool) error
}

// Option configures a problem.
type Option func(*options)

type options struct {
	par parallel.Config
}

// WithParallel sets how right-hand sides are spread over goroutines.
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

// state tracks the fill phase of a problem.
type state struct {
	name  string
	n     int
	setup bool
}

func (s *state) Size() int { return s.n }

func (s *state) checkIndex(op string, i, j int) {
	if s.setup {
		panic(errors.AssertionFailedf("linprob: %s: %s after setup", s.name, op))
	}
	if i < 0 || i >= s.n || j < 0 || j >= s.n {
		panic(errors.AssertionFailedf("linprob: %s: %s (%d, %d) out of range for size %d",
			s.name, op, i, j, s.n))
	}
}

func (s *state) finish() {
	if s.setup {
		panic(errors.AssertionFailedf("linprob: %s: setup called twice", s.name))
	}
	s.setup = true
}

func newState(name string, n int) state {
	if n < 1 {
		panic(errors.AssertionFailedf("linprob: %s: invalid size %d", name, n))
	}
	return state{name: name, n: n}
}

// checkRHS asserts that b can be passed to s.Solve.
func checkRHS(s Solver, b *mat.Dense) {
	if b == nil {
		panic(errors.AssertionFailedf("linprob: nil right-hand side"))
	}
	if r, _ := b.Dims(); r < s.RequiredRHSRows() {
		panic(errors.AssertionFailedf("linprob: right-hand side has %d rows, need %d", r, s.RequiredRHSRows()))
	}
}

// Check asserts the invariants every Solver must satisfy.
func Check(s Solver) {
	if s.Size() < 1 {
		panic(errors.AssertionFailedf("linprob: solver of size %d", s.Size()))
	}
	if s.RequiredRHSRows() < s.Size() {
		panic(errors.AssertionFailedf("linprob: solver requires %d right-hand-side rows, less than its size %d",
			s.RequiredRHSRows(), s.Size()))
	}
}

// rows returns the view of the first n rows of b.
func rows(b *mat.Dense, n int) *mat.Dense {
	_, c := b.Dims()
	return b.Slice(0, n, 0, c).(*mat.Dense)
}
