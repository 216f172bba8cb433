package linprob

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/parallel"
)

// Blocks2x2 is the block matrix
//
//	| Q  γ |
//	| λ  δ |
//
// where Q is any Problem of size n-k and δ is a dense k×k block. It is solved
// through the Schur complement δ' = δ - λ Q⁻¹ γ, which suits a banded Q
// bordered by a few dense rows and columns, as produced by periodic splines.
type Blocks2x2 struct {
	state
	top                 Problem
	nq, k               int
	gamma, lambda, delt *mat.Dense
	par                 parallel.Config
}

var _ Problem = (*Blocks2x2)(nil)

// NewBlocks2x2 borders top with k rows and columns. top must not have been
// set up.
func NewBlocks2x2(top Problem, k int, opts ...Option) *Blocks2x2 {
	if k < 1 {
		panic(errors.AssertionFailedf("linprob: 2×2 blocks need a border of at least 1, got %d", k))
	}
	o := buildOptions(opts)
	nq := top.Size()
	return &Blocks2x2{
		state:  newState("2×2 blocks", nq+k),
		top:    top,
		nq:     nq,
		k:      k,
		gamma:  mat.NewDense(nq, k, nil),
		lambda: mat.NewDense(k, nq, nil),
		delt:   mat.NewDense(k, k, nil),
		par:    o.par,
	}
}

// At implements Problem.
func (p *Blocks2x2) At(i, j int) float64 {
	p.checkIndex("get", i, j)
	nq := p.nq
	switch {
	case i < nq && j < nq:
		return p.top.At(i, j)
	case i < nq:
		return p.gamma.At(i, j-nq)
	case j < nq:
		return p.lambda.At(i-nq, j)
	default:
		return p.delt.At(i-nq, j-nq)
	}
}

// Set implements Problem.
func (p *Blocks2x2) Set(i, j int, v float64) {
	p.checkIndex("set", i, j)
	nq := p.nq
	switch {
	case i < nq && j < nq:
		p.top.Set(i, j, v)
	case i < nq:
		p.gamma.Set(i, j-nq, v)
	case j < nq:
		p.lambda.Set(i-nq, j, v)
	default:
		p.delt.Set(i-nq, j-nq, v)
	}
}

// Setup factorizes Q, replaces γ by Q⁻¹γ and factorizes the Schur
// complement δ - λ Q⁻¹ γ.
func (p *Blocks2x2) Setup() (Solver, error) {
	p.finish()
	q, err := p.top.Setup()
	if err != nil {
		return nil, errors.Wrap(err, "2×2 blocks: main block")
	}
	Check(q)

	s := &blocksSolver{n: p.n, nq: p.nq, k: p.k, q: q, lambda: p.lambda}
	s.gamma = mat.NewDense(p.nq, p.k, nil)
	s.gamma.Copy(p.gamma)
	if err := s.solveTop(s.gamma, false); err != nil {
		return nil, errors.Wrap(err, "2×2 blocks: main block")
	}

	var lg mat.Dense
	lg.Mul(p.lambda, s.gamma)
	schur := NewDense(p.k, WithParallel(p.par))
	for i := 0; i < p.k; i++ {
		for j := 0; j < p.k; j++ {
			schur.Set(i, j, p.delt.At(i, j)-lg.At(i, j))
		}
	}
	if s.delta, err = schur.Setup(); err != nil {
		return nil, errors.Wrap(err, "2×2 blocks: Schur complement")
	}
	p.gamma, p.lambda, p.delt = nil, nil, nil
	return s, nil
}

type blocksSolver struct {
	n, nq, k int
	q        Solver
	delta    Solver
	gamma    *mat.Dense // Q⁻¹γ
	lambda   *mat.Dense
}

func (s *blocksSolver) Size() int            { return s.n }
func (s *blocksSolver) RequiredRHSRows() int { return s.n }

// solveTop solves with Q on u, which has nq rows. Main blocks that need
// padding rows get a scratch copy.
func (s *blocksSolver) solveTop(u *mat.Dense, transpose bool) error {
	if s.q.RequiredRHSRows() == s.nq {
		return s.q.Solve(u, transpose)
	}
	_, c := u.Dims()
	scratch := mat.NewDense(s.q.RequiredRHSRows(), c, nil)
	rows(scratch, s.nq).Copy(u)
	if err := s.q.Solve(scratch, transpose); err != nil {
		return err
	}
	u.Copy(scratch)
	return nil
}

// Solve implements Solver.
func (s *blocksSolver) Solve(b *mat.Dense, transpose bool) error {
	checkRHS(s, b)
	_, c := b.Dims()
	u := b.Slice(0, s.nq, 0, c).(*mat.Dense)
	v := b.Slice(s.nq, s.n, 0, c).(*mat.Dense)
	var tmp mat.Dense

	if !transpose {
		if err := s.solveTop(u, false); err != nil {
			return err
		}
		tmp.Mul(s.lambda, u)
		v.Sub(v, &tmp)
		if err := s.delta.Solve(v, false); err != nil {
			return err
		}
		tmp.Reset()
		tmp.Mul(s.gamma, v)
		u.Sub(u, &tmp)
		return nil
	}

	tmp.Mul(s.gamma.T(), u)
	v.Sub(v, &tmp)
	if err := s.delta.Solve(v, true); err != nil {
		return err
	}
	tmp.Reset()
	tmp.Mul(s.lambda.T(), v)
	u.Sub(u, &tmp)
	return s.solveTop(u, true)
}
