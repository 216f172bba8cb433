package linprob

// NewBand returns an empty problem suited to an n×n matrix with kl
// sub-diagonals and ku super-diagonals. Symmetric positive definite matrices
// (pds, with kl == ku) get a Cholesky band backend; bands too wide to save
// anything over a full matrix get a dense backend.
func NewBand(n, kl, ku int, pds bool, opts ...Option) Problem {
	switch {
	case kl == ku && pds:
		return NewPDSBand(n, kl, opts...)
	case 2*kl+ku+1 >= n:
		return NewDense(n, opts...)
	default:
		return NewGeneralBand(n, kl, ku, opts...)
	}
}

// NewBlockWithBandMainBlock returns an empty n×n problem whose leading
// (n-k)×(n-k) block is banded with widths kl, ku and whose last k rows and
// columns are dense. With k == 0 it is a plain band problem.
func NewBlockWithBandMainBlock(n, kl, ku int, pds bool, k int, opts ...Option) Problem {
	if k == 0 {
		return NewBand(n, kl, ku, pds, opts...)
	}
	return NewBlocks2x2(NewBand(n-k, kl, ku, pds, opts...), k, opts...)
}
