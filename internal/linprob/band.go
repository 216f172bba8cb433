package linprob

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/blas/gonum"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/parallel"
)

var blasImpl = gonum.Implementation{}

// Band is a general band matrix with kl sub-diagonals and ku
// super-diagonals, factorized by LU decomposition with partial pivoting.
//
// Storage is row-major with ldab = 2*kl+ku+1 entries per row: element
// (i, j) lives at ab[i*ldab+kl+j-i]. The trailing kl entries of each row
// receive the fill-in created by row interchanges.
type Band struct {
	state
	kl, ku int
	ldab   int
	ab     []float64
	par    parallel.Config
}

var _ Problem = (*Band)(nil)

// NewGeneralBand returns a zero n×n band problem.
func NewGeneralBand(n, kl, ku int, opts ...Option) *Band {
	if kl < 0 || ku < 0 || kl >= n || ku >= n {
		panic(errors.AssertionFailedf("linprob: band widths (%d, %d) invalid for size %d", kl, ku, n))
	}
	o := buildOptions(opts)
	ldab := 2*kl + ku + 1
	return &Band{
		state: newState("band", n),
		kl:    kl,
		ku:    ku,
		ldab:  ldab,
		ab:    make([]float64, n*ldab),
		par:   o.par,
	}
}

func (p *Band) inBand(i, j int) bool {
	return j-i <= p.ku && i-j <= p.kl
}

// At implements Problem.
func (p *Band) At(i, j int) float64 {
	p.checkIndex("get", i, j)
	if !p.inBand(i, j) {
		return 0
	}
	return p.ab[i*p.ldab+p.kl+j-i]
}

// Set implements Problem. Only zeros may be stored outside the band.
func (p *Band) Set(i, j int, v float64) {
	p.checkIndex("set", i, j)
	if !p.inBand(i, j) {
		if v != 0 {
			panic(errors.AssertionFailedf("linprob: band: (%d, %d) outside band (kl=%d, ku=%d)", i, j, p.kl, p.ku))
		}
		return
	}
	p.ab[i*p.ldab+p.kl+j-i] = v
}

// Setup implements Problem.
func (p *Band) Setup() (Solver, error) {
	p.finish()
	n, kl, ld := p.n, p.kl, p.ldab
	kv := p.ku + kl
	ab := p.ab
	ipiv := make([]int, n)

	for k := 0; k < n; k++ {
		m := min(kl, n-1-k)
		piv := k
		if m > 0 {
			// Column k below the diagonal has stride ld-1.
			piv += blasImpl.Idamax(m+1, ab[k*ld+kl:], ld-1)
		}
		ipiv[k] = piv
		if ab[piv*ld+kl+k-piv] == 0 {
			return nil, errors.Wrapf(ErrSingular, "band: zero pivot in column %d", k)
		}

		w := min(kv, n-1-k) + 1
		if piv != k {
			blasImpl.Dswap(w, ab[k*ld+kl:], 1, ab[piv*ld+kl+k-piv:], 1)
		}
		d := ab[k*ld+kl]
		for r := k + 1; r <= k+m; r++ {
			pos := r*ld + kl + k - r
			l := ab[pos] / d
			ab[pos] = l
			if l != 0 {
				blasImpl.Daxpy(w-1, -l, ab[k*ld+kl+1:], 1, ab[pos+1:], 1)
			}
		}
	}

	p.ab = nil
	return &bandSolver{n: n, kl: kl, kv: kv, ldab: ld, ab: ab, ipiv: ipiv, par: p.par}, nil
}

type bandSolver struct {
	n, kl, kv int
	ldab      int
	ab        []float64
	ipiv      []int
	par       parallel.Config
}

func (s *bandSolver) Size() int            { return s.n }
func (s *bandSolver) RequiredRHSRows() int { return s.n }

// Solve implements Solver.
func (s *bandSolver) Solve(b *mat.Dense, transpose bool) error {
	checkRHS(s, b)
	raw := b.RawMatrix()
	return parallel.ForChunks(raw.Cols, func(lo, hi int) error {
		if transpose {
			s.solveTrans(raw.Data[lo:], raw.Stride, hi-lo)
		} else {
			s.solve(raw.Data[lo:], raw.Stride, hi-lo)
		}
		return nil
	}, s.par)
}

// solve applies the row interchanges and L, then back-substitutes with U.
func (s *bandSolver) solve(b []float64, ldb, nrhs int) {
	n, kl, kv, ld, ab := s.n, s.kl, s.kv, s.ldab, s.ab
	for k := 0; k < n; k++ {
		if p := s.ipiv[k]; p != k {
			blasImpl.Dswap(nrhs, b[k*ldb:], 1, b[p*ldb:], 1)
		}
		for r := k + 1; r <= min(k+kl, n-1); r++ {
			if l := ab[r*ld+kl+k-r]; l != 0 {
				blasImpl.Daxpy(nrhs, -l, b[k*ldb:], 1, b[r*ldb:], 1)
			}
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j <= min(i+kv, n-1); j++ {
			if u := ab[i*ld+kl+j-i]; u != 0 {
				blasImpl.Daxpy(nrhs, -u, b[j*ldb:], 1, b[i*ldb:], 1)
			}
		}
		blasImpl.Dscal(nrhs, 1/ab[i*ld+kl], b[i*ldb:], 1)
	}
}

// solveTrans solves with Uᵀ, then applies Lᵀ and the interchanges in
// reverse order.
func (s *bandSolver) solveTrans(b []float64, ldb, nrhs int) {
	n, kl, kv, ld, ab := s.n, s.kl, s.kv, s.ldab, s.ab
	for i := 0; i < n; i++ {
		for j := max(0, i-kv); j < i; j++ {
			if u := ab[j*ld+kl+i-j]; u != 0 {
				blasImpl.Daxpy(nrhs, -u, b[j*ldb:], 1, b[i*ldb:], 1)
			}
		}
		blasImpl.Dscal(nrhs, 1/ab[i*ld+kl], b[i*ldb:], 1)
	}
	for k := n - 2; k >= 0; k-- {
		for r := k + 1; r <= min(k+kl, n-1); r++ {
			if l := ab[r*ld+kl+k-r]; l != 0 {
				blasImpl.Daxpy(nrhs, -l, b[r*ldb:], 1, b[k*ldb:], 1)
			}
		}
		if p := s.ipiv[k]; p != k {
			blasImpl.Dswap(nrhs, b[k*ldb:], 1, b[p*ldb:], 1)
		}
	}
}
