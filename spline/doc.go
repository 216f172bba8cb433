// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package spline evaluates tensor-product B-splines.
//
// # Overview
//
// An Evaluator2D combines two basis spaces with their evaluation axes and
// extrapolation rules. It computes values, first derivatives along either
// dimension, the cross derivative and integrals over the whole domain, at a
// single point or for every index of a batch of coefficient tables.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/splines/bsplines"
//	    "github.com/born-ml/splines/grid"
//	    "github.com/born-ml/splines/spline"
//	)
//
//	func main() {
//	    b1, _ := bsplines.NewUniform("i1", 3, 0, 1, 16, true)
//	    b2, _ := bsplines.NewUniform("i2", 3, 0, 1, 16, false)
//
//	    ev, err := spline.NewEvaluator2D(
//	        spline.Interest{Basis: b1, Axis: "x1", Lower: spline.PeriodicRule{}, Upper: spline.PeriodicRule{}},
//	        spline.Interest{Basis: b2, Axis: "x2", Lower: spline.NullRule{}, Upper: spline.NullRule{}},
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    coeffs := grid.New[float64](ev.BasisDomain())
//	    coeffs.Fill(1)
//	    v := ev.Eval(spline.Coord{X1: 0.3, X2: 0.7}, coeffs) // 1
//	}
//
// # Extrapolation
//
// Periodic dimensions fold coordinates into their interval. Outside a
// non-periodic interval the first matching rule among lower1, upper1,
// lower2 and upper2 decides the value. Derivatives are never extrapolated.
package spline
