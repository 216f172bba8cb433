package builder

import (
	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
)

// Builder2D interpolates values given on a tensor-product grid of two
// axes, solving along the first axis and then along the second.
type Builder2D struct {
	b1, b2 *Builder1D
}

// NewBuilder2D returns a builder for the tensor product of basis1 and
// basis2, with values on axis1 and axis2.
func NewBuilder2D(basis1 bsplines.Basis, axis1 grid.Axis, basis2 bsplines.Basis, axis2 grid.Axis,
	opts ...Option) (*Builder2D, error) {
	b1, err := NewBuilder1D(basis1, axis1, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "dim1")
	}
	b2, err := NewBuilder1D(basis2, axis2, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "dim2")
	}
	axes := map[grid.Axis]bool{}
	for _, a := range []grid.Axis{basis1.Axis(), axis1, basis2.Axis(), axis2} {
		if axes[a] {
			return nil, errors.Newf("builder: axis %q used twice", a)
		}
		axes[a] = true
	}
	return &Builder2D{b1: b1, b2: b2}, nil
}

// Dim1 returns the builder along the first dimension.
func (b *Builder2D) Dim1() *Builder1D { return b.b1 }

// Dim2 returns the builder along the second dimension.
func (b *Builder2D) Dim2() *Builder1D { return b.b2 }

// ValuesDomain returns the domain of a single table of values.
func (b *Builder2D) ValuesDomain() grid.Domain {
	return grid.MustDomain(
		grid.Extent{Axis: b.b1.axis, Size: len(b.b1.points)},
		grid.Extent{Axis: b.b2.axis, Size: len(b.b2.points)})
}

// CoeffsDomain returns the domain of a single coefficient table.
func (b *Builder2D) CoeffsDomain() grid.Domain {
	return grid.MustDomain(
		grid.Extent{Axis: b.b1.basis.Axis(), Size: b.b1.basis.Size()},
		grid.Extent{Axis: b.b2.basis.Axis(), Size: b.b2.basis.Size()})
}

// Build writes into coeffs the coefficients interpolating vals. vals holds
// both interpolation axes plus any batch axes; coeffs holds both basis axes
// plus the same batch axes.
func (b *Builder2D) Build(coeffs, vals grid.Span[float64]) error {
	vd := vals.Domain()
	if !vd.Has(b.b1.axis) {
		panic(errors.AssertionFailedf("builder: values %s lack axis %q", vd, b.b1.axis))
	}
	tmpDom, err := vd.Remove(b.b1.axis).Prepend(grid.Extent{Axis: b.b1.basis.Axis(), Size: b.b1.basis.Size()})
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "builder: values %s", vd))
	}
	tmp := grid.New[float64](tmpDom)
	if err := b.b1.Build(tmp, vals); err != nil {
		return err
	}
	return b.b2.Build(coeffs, tmp)
}
