package linprob

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/lapack/gonum"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/parallel"
)

var lapackImpl = gonum.Implementation{}

// PDSBand is a symmetric positive definite band matrix with kd
// off-diagonals, factorized by Cholesky decomposition.
//
// Only the upper triangle is stored; setting (i, j) with j < i stores
// (j, i).
type PDSBand struct {
	state
	kd  int
	ab  []float64
	par parallel.Config
}

var _ Problem = (*PDSBand)(nil)

// NewPDSBand returns a zero n×n symmetric band problem.
func NewPDSBand(n, kd int, opts ...Option) *PDSBand {
	if kd < 0 || kd >= n {
		panic(errors.AssertionFailedf("linprob: band width %d invalid for size %d", kd, n))
	}
	o := buildOptions(opts)
	return &PDSBand{
		state: newState("pds band", n),
		kd:    kd,
		ab:    make([]float64, n*(kd+1)),
		par:   o.par,
	}
}

func (p *PDSBand) ldab() int { return p.kd + 1 }

// At implements Problem.
func (p *PDSBand) At(i, j int) float64 {
	p.checkIndex("get", i, j)
	if j < i {
		i, j = j, i
	}
	if j-i > p.kd {
		return 0
	}
	return p.ab[i*p.ldab()+j-i]
}

// Set implements Problem. Only zeros may be stored outside the band.
func (p *PDSBand) Set(i, j int, v float64) {
	p.checkIndex("set", i, j)
	if j < i {
		i, j = j, i
	}
	if j-i > p.kd {
		if v != 0 {
			panic(errors.AssertionFailedf("linprob: pds band: (%d, %d) outside band (kd=%d)", i, j, p.kd))
		}
		return
	}
	p.ab[i*p.ldab()+j-i] = v
}

// Setup implements Problem.
func (p *PDSBand) Setup() (Solver, error) {
	p.finish()
	if ok := lapackImpl.Dpbtrf(blas.Upper, p.n, p.kd, p.ab, p.ldab()); !ok {
		return nil, errors.Wrapf(ErrNotPositiveDefinite, "pds band %d×%d (kd=%d)", p.n, p.n, p.kd)
	}
	ab := p.ab
	p.ab = nil
	return &pdsBandSolver{n: p.n, kd: p.kd, ab: ab, par: p.par}, nil
}

type pdsBandSolver struct {
	n, kd int
	ab    []float64
	par   parallel.Config
}

func (s *pdsBandSolver) Size() int            { return s.n }
func (s *pdsBandSolver) RequiredRHSRows() int { return s.n }

// Solve implements Solver. The matrix is symmetric, so transpose has no
// effect.
func (s *pdsBandSolver) Solve(b *mat.Dense, _ bool) error {
	checkRHS(s, b)
	raw := b.RawMatrix()
	return parallel.ForChunks(raw.Cols, func(lo, hi int) error {
		lapackImpl.Dpbtrs(blas.Upper, s.n, s.kd, hi-lo, s.ab, s.kd+1, raw.Data[lo:], raw.Stride)
		return nil
	}, s.par)
}
