// Package grid provides tagged multi-axis domains and strided spans.
//
// A Domain is an ordered list of axes with extents. A Span is a zero-copy,
// strided view over a flat slice, addressed either positionally (in the
// order of its domain) or by axis. Spans are what the spline evaluators,
// builders and coefficient tables exchange.
package grid

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Axis identifies one discrete dimension. Two axes are the same dimension
// if and only if they are equal.
type Axis string

// Extent is one axis of a domain together with its number of points.
type Extent struct {
	Axis Axis
	Size int
}

// Domain is an ordered set of extents. The zero Domain has rank 0 and
// holds a single element.
type Domain struct {
	extents []Extent
}

// NewDomain creates a domain from the given extents.
// Axes must be distinct and sizes positive.
func NewDomain(extents ...Extent) (Domain, error) {
	seen := make(map[Axis]struct{}, len(extents))
	for i, e := range extents {
		if e.Size <= 0 {
			return Domain{}, errors.Newf("invalid size at index %d: %d (must be > 0)", i, e.Size)
		}
		if _, ok := seen[e.Axis]; ok {
			return Domain{}, errors.Newf("duplicate axis %q", e.Axis)
		}
		seen[e.Axis] = struct{}{}
	}
	out := make([]Extent, len(extents))
	copy(out, extents)
	return Domain{extents: out}, nil
}

// MustDomain is like NewDomain but panics on invalid extents.
func MustDomain(extents ...Extent) Domain {
	d, err := NewDomain(extents...)
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "grid"))
	}
	return d
}

// Rank returns the number of axes.
func (d Domain) Rank() int {
	return len(d.extents)
}

// Extents returns a copy of the extents in domain order.
func (d Domain) Extents() []Extent {
	out := make([]Extent, len(d.extents))
	copy(out, d.extents)
	return out
}

// Axes returns the axes in domain order.
func (d Domain) Axes() []Axis {
	out := make([]Axis, len(d.extents))
	for i, e := range d.extents {
		out[i] = e.Axis
	}
	return out
}

// Shape returns the sizes in domain order.
func (d Domain) Shape() []int {
	out := make([]int, len(d.extents))
	for i, e := range d.extents {
		out[i] = e.Size
	}
	return out
}

// Pos returns the position of axis a in the domain, or -1.
func (d Domain) Pos(a Axis) int {
	for i, e := range d.extents {
		if e.Axis == a {
			return i
		}
	}
	return -1
}

// Has reports whether the domain contains axis a.
func (d Domain) Has(a Axis) bool {
	return d.Pos(a) >= 0
}

// Size returns the extent along axis a, or 0 if the axis is absent.
func (d Domain) Size(a Axis) int {
	if p := d.Pos(a); p >= 0 {
		return d.extents[p].Size
	}
	return 0
}

// NumElements returns the total number of points.
func (d Domain) NumElements() int {
	n := 1
	for _, e := range d.extents {
		n *= e.Size
	}
	return n
}

// Remove returns the domain without the given axes. Absent axes are ignored.
func (d Domain) Remove(axes ...Axis) Domain {
	out := make([]Extent, 0, len(d.extents))
	for _, e := range d.extents {
		drop := false
		for _, a := range axes {
			if e.Axis == a {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, e)
		}
	}
	return Domain{extents: out}
}

// Select returns the domain restricted to the given axes, in the order given.
// Panics if an axis is absent.
func (d Domain) Select(axes ...Axis) Domain {
	out := make([]Extent, len(axes))
	for i, a := range axes {
		p := d.Pos(a)
		if p < 0 {
			panic(errors.AssertionFailedf("grid: axis %q not in domain %s", a, d))
		}
		out[i] = d.extents[p]
	}
	return Domain{extents: out}
}

// Prepend returns a domain with the given extents placed before d's.
func (d Domain) Prepend(extents ...Extent) (Domain, error) {
	all := make([]Extent, 0, len(extents)+len(d.extents))
	all = append(all, extents...)
	all = append(all, d.extents...)
	return NewDomain(all...)
}

// SameAxes reports whether both domains hold the same axes with the same
// sizes, regardless of order.
func (d Domain) SameAxes(other Domain) bool {
	if len(d.extents) != len(other.extents) {
		return false
	}
	for _, e := range d.extents {
		p := other.Pos(e.Axis)
		if p < 0 || other.extents[p].Size != e.Size {
			return false
		}
	}
	return true
}

// Unravel writes into idx the row-major multi-index of the flat position k.
// idx must have length Rank().
func (d Domain) Unravel(k int, idx []int) {
	for i := len(d.extents) - 1; i >= 0; i-- {
		n := d.extents[i].Size
		idx[i] = k % n
		k /= n
	}
}

// String renders the domain as "(a:3, b:4)".
func (d Domain) String() string {
	parts := make([]string, len(d.extents))
	for i, e := range d.extents {
		parts[i] = fmt.Sprintf("%s:%d", e.Axis, e.Size)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// computeStrides calculates row-major strides for the domain.
// stride[i] = product of all sizes after i.
func (d Domain) computeStrides() []int {
	strides := make([]int, len(d.extents))
	if len(strides) == 0 {
		return strides
	}
	strides[len(strides)-1] = 1
	for i := len(strides) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * d.extents[i+1].Size
	}
	return strides
}
