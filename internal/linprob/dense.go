package linprob

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/parallel"
)

// Dense is a general matrix factorized by LU decomposition with partial
// pivoting.
type Dense struct {
	state
	a   *mat.Dense
	par parallel.Config
}

var _ Problem = (*Dense)(nil)

// NewDense returns a zero n×n dense problem.
func NewDense(n int, opts ...Option) *Dense {
	o := buildOptions(opts)
	return &Dense{state: newState("dense", n), a: mat.NewDense(n, n, nil), par: o.par}
}

// At implements Problem.
func (p *Dense) At(i, j int) float64 {
	p.checkIndex("get", i, j)
	return p.a.At(i, j)
}

// Set implements Problem.
func (p *Dense) Set(i, j int, v float64) {
	p.checkIndex("set", i, j)
	p.a.Set(i, j, v)
}

// Setup implements Problem.
func (p *Dense) Setup() (Solver, error) {
	p.finish()
	lu := &mat.LU{}
	lu.Factorize(p.a)
	p.a = nil
	// A zero pivot gives log|det| = -Inf.
	if logDet, _ := lu.LogDet(); math.IsInf(logDet, -1) || math.IsInf(lu.Cond(), 1) {
		return nil, errors.Wrapf(ErrSingular, "dense %d×%d", p.n, p.n)
	}
	return &denseSolver{n: p.n, lu: lu, par: p.par}, nil
}

type denseSolver struct {
	n   int
	lu  *mat.LU
	par parallel.Config
}

func (s *denseSolver) Size() int            { return s.n }
func (s *denseSolver) RequiredRHSRows() int { return s.n }

// Solve implements Solver. Groups of columns are solved concurrently.
func (s *denseSolver) Solve(b *mat.Dense, transpose bool) error {
	checkRHS(s, b)
	_, nrhs := b.Dims()
	return parallel.ForChunks(nrhs, func(lo, hi int) error {
		x := b.Slice(0, s.n, lo, hi).(*mat.Dense)
		if err := s.lu.SolveTo(x, transpose, x); err != nil {
			var c mat.Condition
			if errors.As(err, &c) && !math.IsInf(float64(c), 1) {
				// Ill-conditioned, but the solution has been computed.
				return nil
			}
			return errors.Wrapf(ErrSingular, "dense solve: %v", err)
		}
		return nil
	}, s.par)
}
