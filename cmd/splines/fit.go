package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/splines/internal/bsplines"
	"github.com/born-ml/splines/internal/builder"
	"github.com/born-ml/splines/internal/config"
	"github.com/born-ml/splines/internal/grid"
	"github.com/born-ml/splines/internal/spline"
)

const (
	axI1 grid.Axis = "i1"
	axI2 grid.Axis = "i2"
	axX1 grid.Axis = "x1"
	axX2 grid.Axis = "x2"
)

type fitFlags struct {
	configPath string
	samples    int
	verbose    bool
}

func makeFitCommand() *cobra.Command {
	var flags fitFlags
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Interpolate a test function and report the error at random points",
		Long: `Interpolate the test function of a problem file on its tensor-product
basis, then compare the spline and its first derivatives with the exact
function at random points of the domain. Without --config the default
problem is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := config.Default()
			if flags.configPath != "" {
				var err error
				if p, err = config.Load(flags.configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("samples") {
				p.Samples = flags.samples
				if err := p.Validate(); err != nil {
					return err
				}
			}
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return errors.Wrap(err, "logger")
			}
			defer func() { _ = logger.Sync() }()

			r, err := fit(p, logger)
			if err != nil {
				return err
			}
			return r.write(cmd.OutOrStdout())
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func (f *fitFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML problem file")
	fs.IntVar(&f.samples, "samples", 0, "number of random evaluation points (overrides the problem file)")
	fs.BoolVar(&f.verbose, "verbose", false, "log at debug level")
}

type fitReport struct {
	basis1, basis2 bsplines.Basis
	samples        int
	maxErr         float64
	maxErrD1       float64
	maxErrD2       float64
	integral       float64
}

func describe(b bsplines.Basis) string {
	kind := "uniform"
	if _, ok := b.(*bsplines.NonUniform); ok {
		kind = "non-uniform"
	}
	s := fmt.Sprintf("%s degree %d, %d cells on [%g, %g]", kind, b.Degree(), b.NCells(), b.RMin(), b.RMax())
	if b.Periodic() {
		s += ", periodic"
	}
	return s
}

func (r fitReport) write(w io.Writer) error {
	_, err := fmt.Fprintf(w, `basis x1: %s
basis x2: %s
samples: %d
max error: %.3e
max d/dx1 error: %.3e
max d/dx2 error: %.3e
integral: %.9f
`, describe(r.basis1), describe(r.basis2), r.samples, r.maxErr, r.maxErrD1, r.maxErrD2, r.integral)
	return err
}

// rules returns the extrapolation rules of dimension d.
func rules(p config.Problem, d spline.Dim, b1, b2 bsplines.Basis) (lower, upper spline.Rule) {
	b := b1
	if d == spline.Dim2 {
		b = b2
	}
	switch {
	case b.Periodic():
		return spline.PeriodicRule{}, spline.PeriodicRule{}
	case p.Extrapolation == config.ExtrapolateConstant:
		return spline.NewConstantRule(d, b.RMin(), b1, b2), spline.NewConstantRule(d, b.RMax(), b1, b2)
	default:
		return spline.NullRule{}, spline.NullRule{}
	}
}

func fit(p config.Problem, logger *zap.Logger) (fitReport, error) {
	start := time.Now()
	f := config.Functions[p.Function]
	b1, err := p.X1.Basis(axI1)
	if err != nil {
		return fitReport{}, errors.Wrap(err, "x1")
	}
	b2, err := p.X2.Basis(axI2)
	if err != nil {
		return fitReport{}, errors.Wrap(err, "x2")
	}
	par := p.ParallelConfig()

	bld, err := builder.NewBuilder2D(b1, axX1, b2, axX2, builder.WithLogger(logger), builder.WithParallel(par))
	if err != nil {
		return fitReport{}, err
	}
	vals := grid.New[float64](bld.ValuesDomain())
	for i, x1 := range bld.Dim1().Points() {
		for j, x2 := range bld.Dim2().Points() {
			vals.Set(f.Value(x1, x2), i, j)
		}
	}
	coeffs := grid.New[float64](bld.CoeffsDomain())
	if err := bld.Build(coeffs, vals); err != nil {
		return fitReport{}, err
	}
	logger.Debug("interpolant built", zap.Stringer("coefficients", coeffs.Domain()))

	lower1, upper1 := rules(p, spline.Dim1, b1, b2)
	lower2, upper2 := rules(p, spline.Dim2, b1, b2)
	ev, err := spline.NewEvaluator2D(
		spline.Interest{Basis: b1, Axis: axX1, Mesh: bld.Dim1().Mesh(), Lower: lower1, Upper: upper1},
		spline.Interest{Basis: b2, Axis: axX2, Mesh: bld.Dim2().Mesh(), Lower: lower2, Upper: upper2},
		spline.WithParallel(par))
	if err != nil {
		return fitReport{}, err
	}

	// Samples run along x1; coordinates need not follow the mesh.
	dom := grid.MustDomain(grid.Extent{Axis: axX1, Size: p.Samples}, grid.Extent{Axis: axX2, Size: 1})
	rng := rand.New(rand.NewSource(p.Seed))
	coords := grid.New[spline.Coord](dom)
	exact := make([]float64, p.Samples)
	exactD1 := make([]float64, p.Samples)
	exactD2 := make([]float64, p.Samples)
	for s := 0; s < p.Samples; s++ {
		c := spline.Coord{
			X1: b1.RMin() + rng.Float64()*b1.Length(),
			X2: b2.RMin() + rng.Float64()*b2.Length(),
		}
		coords.Set(c, s, 0)
		exact[s] = f.Value(c.X1, c.X2)
		exactD1[s] = f.D1(c.X1, c.X2)
		exactD2[s] = f.D2(c.X1, c.X2)
	}

	got := grid.New[float64](dom)
	ev.EvalBatchAt(got, coords, coeffs)
	maxErr := floats.Distance(got.Data(), exact, math.Inf(1))
	ev.DerivDim1BatchAt(got, coords, coeffs)
	maxErrD1 := floats.Distance(got.Data(), exactD1, math.Inf(1))
	ev.DerivDim2BatchAt(got, coords, coeffs)
	maxErrD2 := floats.Distance(got.Data(), exactD2, math.Inf(1))

	integral := grid.New[float64](grid.MustDomain())
	ev.Integrate(integral, coeffs)

	logger.Info("fit complete",
		zap.Int("samples", p.Samples),
		zap.Float64("max_error", maxErr),
		zap.Duration("elapsed", time.Since(start)))
	return fitReport{
		basis1:   b1,
		basis2:   b2,
		samples:  p.Samples,
		maxErr:   maxErr,
		maxErrD1: maxErrD1,
		maxErrD2: maxErrD2,
		integral: integral.Data()[0],
	}, nil
}
