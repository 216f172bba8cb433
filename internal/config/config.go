// Package config loads interpolation problems described in YAML.
//
// Example:
//
//	x1:
//	  rmin: 0
//	  rmax: 1
//	  cells: 32
//	  degree: 3
//	  periodic: true
//	x2:
//	  breaks: [0, 0.1, 0.3, 0.6, 1]
//	  degree: 2
//	function: sincos
//	extrapolation: constant
//	samples: 1000
//	seed: 42
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/parallel"
)

// Extrapolation kinds for non-periodic axes.
const (
	ExtrapolateZero     = "zero"
	ExtrapolateConstant = "constant"
)

// Axis describes the basis of one dimension. When Breaks is set the basis
// is non-uniform and RMin, RMax and Cells are taken from it.
type Axis struct {
	RMin     float64   `yaml:"rmin"`
	RMax     float64   `yaml:"rmax"`
	Cells    int       `yaml:"cells"`
	Degree   int       `yaml:"degree"`
	Periodic bool      `yaml:"periodic"`
	Breaks   []float64 `yaml:"breaks,omitempty"`
}

// Parallel mirrors parallel.Config. Zero fields keep the defaults.
type Parallel struct {
	Disabled     bool `yaml:"disabled"`
	Workers      int  `yaml:"workers"`
	MinChunkSize int  `yaml:"min_chunk_size"`
}

// Problem is a 2D interpolation problem.
type Problem struct {
	X1            Axis     `yaml:"x1"`
	X2            Axis     `yaml:"x2"`
	Function      string   `yaml:"function"`
	Extrapolation string   `yaml:"extrapolation"`
	Samples       int      `yaml:"samples"`
	Seed          uint64   `yaml:"seed"`
	Parallel      Parallel `yaml:"parallel"`
}

// Default returns a cubic problem on the unit square, periodic along x1.
func Default() Problem {
	return Problem{
		X1:            Axis{RMin: 0, RMax: 1, Cells: 32, Degree: 3, Periodic: true},
		X2:            Axis{RMin: 0, RMax: 1, Cells: 24, Degree: 3},
		Function:      "sincos",
		Extrapolation: ExtrapolateConstant,
		Samples:       1000,
		Seed:          1,
	}
}

// Load reads and validates the problem at path. Fields absent from the file
// keep their Default values.
func Load(path string) (Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, errors.Wrap(err, "config")
	}
	p, err := Parse(data)
	if err != nil {
		return Problem{}, errors.Wrapf(err, "config %s", path)
	}
	return p, nil
}

// Parse decodes and validates a YAML problem.
func Parse(data []byte) (Problem, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Problem{}, errors.Wrap(err, "decode")
	}
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// Validate checks the problem without building it.
func (p Problem) Validate() error {
	if err := p.X1.validate(); err != nil {
		return errors.Wrap(err, "x1")
	}
	if err := p.X2.validate(); err != nil {
		return errors.Wrap(err, "x2")
	}
	if _, ok := Functions[p.Function]; !ok {
		return errors.Newf("unknown function %q", p.Function)
	}
	switch p.Extrapolation {
	case ExtrapolateZero, ExtrapolateConstant:
	default:
		return errors.Newf("unknown extrapolation %q", p.Extrapolation)
	}
	if p.Samples < 1 {
		return errors.Newf("samples must be positive, got %d", p.Samples)
	}
	if p.Parallel.Workers < 0 || p.Parallel.MinChunkSize < 0 {
		return errors.New("parallel settings must not be negative")
	}
	return nil
}

func (a Axis) validate() error {
	if a.Breaks != nil {
		if len(a.Breaks) < 2 {
			return errors.Newf("need at least 2 breaks, got %d", len(a.Breaks))
		}
		return nil
	}
	if a.Cells < 1 {
		return errors.Newf("cells must be positive, got %d", a.Cells)
	}
	if !(a.RMax > a.RMin) {
		return errors.Newf("empty interval [%g, %g]", a.RMin, a.RMax)
	}
	return nil
}

// Basis builds the basis of a along axis.
func (a Axis) Basis(axis grid.Axis) (bsplines.Basis, error) {
	if a.Breaks != nil {
		b, err := bsplines.NewNonUniform(axis, a.Degree, a.Breaks, a.Periodic)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := bsplines.NewUniform(axis, a.Degree, a.RMin, a.RMax, a.Cells, a.Periodic)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ParallelConfig returns the execution settings.
func (p Problem) ParallelConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	if p.Parallel.Disabled {
		return parallel.Sequential()
	}
	if p.Parallel.Workers > 0 {
		cfg.NumWorkers = p.Parallel.Workers
	}
	if p.Parallel.MinChunkSize > 0 {
		cfg.MinChunkSize = p.Parallel.MinChunkSize
	}
	return cfg
}
