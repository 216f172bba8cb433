// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package grid provides named axes, domains and strided views over
// coefficient and value tables.
//
// Every table dimension carries an Axis name. Operations match dimensions
// by name, so batch axes may appear in any order and any layout.
package grid

import "github.com/born-ml/splines/internal/grid"

// Axis names a discrete dimension.
type Axis = grid.Axis

// Extent is an axis with its number of points.
type Extent = grid.Extent

// Domain is an ordered set of extents with distinct axes.
type Domain = grid.Domain

// Span is a strided view over a flat slice, indexed by a Domain.
type Span[T any] = grid.Span[T]

// Mesh maps the indices of a discrete axis to coordinates.
type Mesh = grid.Mesh

// UniformMesh places point i at Origin + i*Step.
type UniformMesh = grid.UniformMesh

// PointsMesh is a mesh given by explicit coordinates.
type PointsMesh = grid.PointsMesh

// Unbounded is the Len of a mesh defined at every index.
const Unbounded = grid.Unbounded

// NewDomain returns the domain of the given extents.
func NewDomain(extents ...Extent) (Domain, error) {
	return grid.NewDomain(extents...)
}

// MustDomain is NewDomain that panics on invalid extents.
func MustDomain(extents ...Extent) Domain {
	return grid.MustDomain(extents...)
}

// New allocates a zero-initialized row-major span over d.
func New[T any](d Domain) Span[T] {
	return grid.New[T](d)
}

// Wrap creates a row-major span over existing data.
func Wrap[T any](d Domain, data []T) (Span[T], error) {
	return grid.Wrap(d, data)
}

// NewUniformMesh returns the mesh of n points spanning [lo, hi] inclusive.
func NewUniformMesh(lo, hi float64, n int) UniformMesh {
	return grid.NewUniformMesh(lo, hi, n)
}
