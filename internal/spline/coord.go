// Package spline evaluates, differentiates and integrates tensor-product
// B-splines stored as coefficient tables over grid spans.
//
// An Evaluator2D is built once from two dimensions of interest, each made of
// a basis, the evaluation-grid axis and its mesh, and a pair of
// extrapolation rules for points left and right of the basis interval. It is
// immutable and safe for concurrent use.
package spline

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Dim names one of the two continuous dimensions of an Evaluator2D.
type Dim int

const (
	// Dim1 is the first dimension of interest.
	Dim1 Dim = iota + 1
	// Dim2 is the second dimension of interest.
	Dim2
)

func (d Dim) String() string {
	switch d {
	case Dim1:
		return "dim1"
	case Dim2:
		return "dim2"
	default:
		return fmt.Sprintf("Dim(%d)", int(d))
	}
}

func (d Dim) check() {
	if d != Dim1 && d != Dim2 {
		panic(errors.AssertionFailedf("spline: invalid dimension %d", int(d)))
	}
}

// CrossDims selects a mixed second derivative. Only Cross12 and Cross21
// exist; both denote the same operator.
type CrossDims struct {
	first Dim
}

var (
	// Cross12 differentiates along Dim1 then Dim2.
	Cross12 = CrossDims{first: Dim1}
	// Cross21 differentiates along Dim2 then Dim1.
	Cross21 = CrossDims{first: Dim2}
)

func (p CrossDims) String() string {
	switch p.first {
	case Dim1:
		return "cross12"
	case Dim2:
		return "cross21"
	default:
		return "CrossDims(invalid)"
	}
}

func (p CrossDims) check() {
	if p.first != Dim1 && p.first != Dim2 {
		panic(errors.AssertionFailedf("spline: invalid cross derivative %s", p))
	}
}

// Coord is a point in the two continuous dimensions.
type Coord struct {
	X1, X2 float64
}

// Get returns the component along d.
func (c Coord) Get(d Dim) float64 {
	d.check()
	if d == Dim1 {
		return c.X1
	}
	return c.X2
}

// with returns c with the component along d replaced by x.
func (c Coord) with(d Dim, x float64) Coord {
	if d == Dim1 {
		c.X1 = x
	} else {
		c.X2 = x
	}
	return c
}

// other returns the dimension that is not d.
func other(d Dim) Dim {
	if d == Dim1 {
		return Dim2
	}
	return Dim1
}
