package grid

import "github.com/cockroachdb/errors"

// Span is a strided view over a flat slice, indexed by a Domain.
//
// Spans are small values: copying one copies the view, not the data.
// Views produced by SliceBatch share memory with their parent.
type Span[T any] struct {
	dom     Domain
	data    []T
	offset  int
	strides []int
}

// New allocates a zero-initialized row-major span over d.
func New[T any](d Domain) Span[T] {
	return Span[T]{
		dom:     d,
		data:    make([]T, d.NumElements()),
		strides: d.computeStrides(),
	}
}

// Wrap creates a row-major span over existing data.
// len(data) must equal d.NumElements().
func Wrap[T any](d Domain, data []T) (Span[T], error) {
	if len(data) != d.NumElements() {
		return Span[T]{}, errors.Newf("data length %d does not match domain %s (%d elements)",
			len(data), d, d.NumElements())
	}
	return Span[T]{dom: d, data: data, strides: d.computeStrides()}, nil
}

// Domain returns the span's domain.
func (s Span[T]) Domain() Domain {
	return s.dom
}

// Data returns the backing slice. Element idx lives at Data()[Offset()+Σ idx[k]*stride[k]].
// WARNING: Direct access to underlying memory. Use with caution.
func (s Span[T]) Data() []T {
	return s.data
}

// Offset returns the position of the first element in Data().
func (s Span[T]) Offset() int {
	return s.offset
}

// Strides returns the memory strides in domain order.
func (s Span[T]) Strides() []int {
	return s.strides
}

// Stride returns the memory stride of axis a.
// Panics if a is not in the domain.
func (s Span[T]) Stride(a Axis) int {
	p := s.dom.Pos(a)
	if p < 0 {
		panic(errors.AssertionFailedf("grid: axis %q not in domain %s", a, s.dom))
	}
	return s.strides[p]
}

// IsZero reports whether the span has no backing data.
func (s Span[T]) IsZero() bool {
	return s.data == nil
}

// Flat returns the position in Data() of the positional index idx.
func (s Span[T]) Flat(idx []int) int {
	if len(idx) != len(s.strides) {
		panic(errors.AssertionFailedf("grid: index rank %d does not match domain %s", len(idx), s.dom))
	}
	pos := s.offset
	for k, i := range idx {
		if i < 0 || i >= s.dom.extents[k].Size {
			panic(errors.AssertionFailedf("grid: index %d out of range for axis %q of size %d",
				i, s.dom.extents[k].Axis, s.dom.extents[k].Size))
		}
		pos += i * s.strides[k]
	}
	return pos
}

// At returns the element at the positional index idx.
func (s Span[T]) At(idx ...int) T {
	return s.data[s.Flat(idx)]
}

// Set stores v at the positional index idx.
func (s Span[T]) Set(v T, idx ...int) {
	s.data[s.Flat(idx)] = v
}

// Fill sets every element of the view to v.
func (s Span[T]) Fill(v T) {
	idx := make([]int, s.dom.Rank())
	n := s.dom.NumElements()
	for k := 0; k < n; k++ {
		s.dom.Unravel(k, idx)
		s.data[s.Flat(idx)] = v
	}
}

// SliceBatch fixes every axis of batch at the matching entry of idx and
// returns the view over the remaining axes. Axes are matched by name, so
// the order of batch need not follow the span's domain order.
// Panics if an axis of batch is missing from the span.
func (s Span[T]) SliceBatch(batch Domain, idx []int) Span[T] {
	if len(idx) != batch.Rank() {
		panic(errors.AssertionFailedf("grid: batch index rank %d does not match %s", len(idx), batch))
	}
	offset := s.offset
	for k, e := range batch.extents {
		p := s.dom.Pos(e.Axis)
		if p < 0 {
			panic(errors.AssertionFailedf("grid: batch axis %q not in domain %s", e.Axis, s.dom))
		}
		if idx[k] < 0 || idx[k] >= s.dom.extents[p].Size {
			panic(errors.AssertionFailedf("grid: batch index %d out of range for axis %q", idx[k], e.Axis))
		}
		offset += idx[k] * s.strides[p]
	}

	rest := make([]Extent, 0, len(s.dom.extents))
	strides := make([]int, 0, len(s.dom.extents))
	for p, e := range s.dom.extents {
		if batch.Has(e.Axis) {
			continue
		}
		rest = append(rest, e)
		strides = append(strides, s.strides[p])
	}
	return Span[T]{
		dom:     Domain{extents: rest},
		data:    s.data,
		offset:  offset,
		strides: strides,
	}
}
