package bsplines

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
)

// integrals computes the definite integral of every basis function of b over
// [RMin, RMax]. Each basis function is a polynomial of degree Degree() on a
// cell, so a Gauss-Legendre rule with Degree()/2+1 nodes per cell is exact.
func integrals(b Basis, out []float64) {
	if len(out) != b.Size() {
		panic(fmt.Sprintf("bsplines: integrals buffer has length %d, want %d", len(out), b.Size()))
	}
	for i := range out {
		out[i] = 0
	}

	p := b.Degree()
	n := p/2 + 1
	nodes := make([]float64, n)
	weights := make([]float64, n)
	vals := make([]float64, p+1)
	nb := b.NBasis()

	for c := 0; c < b.NCells(); c++ {
		quad.Legendre{}.FixedLocations(nodes, weights, b.Knot(c+p), b.Knot(c+p+1))
		for q, x := range nodes {
			jmin := b.EvalBasis(vals, x)
			for r, v := range vals {
				j := jmin + r
				if b.Periodic() && j >= nb {
					j -= nb
				}
				out[j] += weights[q] * v
			}
		}
	}
}
