// Package builder computes spline coefficients by interpolation.
//
// A Builder1D collocates its basis at the Greville abscissae, factorizes the
// collocation matrix once and then turns batches of function values into
// coefficient tables with a single multi-right-hand-side solve. Builder2D
// chains two of them.
package builder

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/linprob"
	"github.com/born-ml/splines/internal/parallel"
)

// Option configures a builder.
type Option func(*options)

type options struct {
	logger *zap.Logger
	par    parallel.Config
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithParallel sets how batch indices are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.par = cfg
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), par: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Builder1D interpolates values given on one axis.
type Builder1D struct {
	basis  bsplines.Basis
	axis   grid.Axis
	points []float64
	solver linprob.Solver
	logger *zap.Logger
	par    parallel.Config
}

// NewBuilder1D returns a builder for basis whose values live on axis.
func NewBuilder1D(basis bsplines.Basis, axis grid.Axis, opts ...Option) (*Builder1D, error) {
	if basis == nil {
		return nil, errors.New("builder: nil basis")
	}
	if axis == basis.Axis() {
		return nil, errors.Newf("builder: interpolation axis %q is the basis axis", axis)
	}
	o := buildOptions(opts)
	b := &Builder1D{
		basis:  basis,
		axis:   axis,
		points: bsplines.Greville(basis),
		logger: o.logger.With(zap.String("axis", string(axis))),
		par:    o.par,
	}
	p := b.collocation()
	s, err := p.Setup()
	if err != nil {
		return nil, errors.Wrapf(err, "builder: collocation on %q", axis)
	}
	linprob.Check(s)
	b.solver = s
	return b, nil
}

type entry struct {
	i, j int
	v    float64
}

// collocation assembles the matrix M[i][j] = B_j(points[i]) into a problem
// whose backend matches the sparsity pattern.
func (b *Builder1D) collocation() linprob.Problem {
	n := b.basis.NBasis()
	deg := b.basis.Degree()
	border := 0
	if b.basis.Periodic() {
		border = deg
	}
	main := n - border

	vals := make([]float64, deg+1)
	entries := make([]entry, 0, n*(deg+1))
	kl, ku := 0, 0
	for i, x := range b.points {
		j0 := b.basis.EvalBasis(vals, x)
		for k, v := range vals {
			if v == 0 {
				continue
			}
			j := (j0 + k) % n
			entries = append(entries, entry{i, j, v})
			if i < main && j < main {
				kl = max(kl, i-j)
				ku = max(ku, j-i)
			}
		}
	}

	p := linprob.NewBlockWithBandMainBlock(n, kl, ku, false, border, linprob.WithParallel(b.par))
	for _, e := range entries {
		p.Set(e.i, e.j, e.v)
	}
	b.logger.Debug("collocation problem",
		zap.Int("size", n),
		zap.Int("kl", kl),
		zap.Int("ku", ku),
		zap.Int("border", border),
		zap.String("backend", fmt.Sprintf("%T", p)))
	return p
}

// Basis returns the basis coefficients are computed for.
func (b *Builder1D) Basis() bsplines.Basis { return b.basis }

// Axis returns the axis of the interpolation points.
func (b *Builder1D) Axis() grid.Axis { return b.axis }

// Points returns the interpolation points. Values passed to Build are
// sampled at these coordinates, in this order.
func (b *Builder1D) Points() []float64 { return b.points }

// Mesh returns the interpolation points as a mesh.
func (b *Builder1D) Mesh() grid.PointsMesh { return grid.PointsMesh(b.points) }

// ValuesDomain returns the domain of a single line of values.
func (b *Builder1D) ValuesDomain() grid.Domain {
	return grid.MustDomain(grid.Extent{Axis: b.axis, Size: len(b.points)})
}

// Build writes into coeffs the coefficients interpolating vals. vals holds
// the interpolation axis plus any batch axes; coeffs holds the basis axis
// plus the same batch axes, in any order. Periodic tables get their
// trailing repeated coefficients filled.
func (b *Builder1D) Build(coeffs, vals grid.Span[float64]) error {
	n := b.basis.NBasis()
	batch := vals.Domain().Remove(b.axis)
	switch {
	case !vals.Domain().Has(b.axis) || vals.Domain().Size(b.axis) != n:
		panic(errors.AssertionFailedf("builder: values %s need axis %q of size %d",
			vals.Domain(), b.axis, n))
	case !coeffs.Domain().Has(b.basis.Axis()) || coeffs.Domain().Size(b.basis.Axis()) != b.basis.Size():
		panic(errors.AssertionFailedf("builder: coefficients %s need axis %q of size %d",
			coeffs.Domain(), b.basis.Axis(), b.basis.Size()))
	case !coeffs.Domain().Remove(b.basis.Axis()).SameAxes(batch):
		panic(errors.AssertionFailedf("builder: batch axes of coefficients %s and values %s differ",
			coeffs.Domain(), vals.Domain()))
	}

	nb := batch.NumElements()
	rhs := mat.NewDense(max(n, b.solver.RequiredRHSRows()), nb, nil)
	parallel.For(nb, func(k int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(k, idx)
		line := vals.SliceBatch(batch, idx)
		data, off, stride := line.Data(), line.Offset(), line.Stride(b.axis)
		for i := 0; i < n; i++ {
			rhs.Set(i, k, data[off+i*stride])
		}
	}, b.par)

	if err := b.solver.Solve(rhs, false); err != nil {
		return errors.Wrapf(err, "builder: solve on %q", b.axis)
	}

	ba := b.basis.Axis()
	parallel.For(nb, func(k int) {
		idx := make([]int, batch.Rank())
		batch.Unravel(k, idx)
		line := coeffs.SliceBatch(batch, idx)
		data, off, stride := line.Data(), line.Offset(), line.Stride(ba)
		for j := 0; j < n; j++ {
			data[off+j*stride] = rhs.At(j, k)
		}
		for j := n; j < b.basis.Size(); j++ {
			data[off+j*stride] = data[off+(j-n)*stride]
		}
	}, b.par)
	return nil
}
