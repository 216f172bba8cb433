// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package parallel configures how evaluators, builders and solvers spread
// independent work over goroutines.
package parallel

import "github.com/born-ml/splines/internal/parallel"

// Config controls parallel execution behavior.
type Config = parallel.Config

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() Config {
	return parallel.Sequential()
}
