package bsplines

import (
	"math"

	"github.com/born-ml/splines/internal/grid"
)

// Uniform is a B-spline basis on equally spaced break points.
type Uniform struct {
	axis     grid.Axis
	degree   int
	periodic bool
	rmin     float64
	rmax     float64
	ncells   int
	step     float64
	invStep  float64
}

var _ Basis = (*Uniform)(nil)

// NewUniform creates a uniform basis of the given degree with ncells cells
// on [rmin, rmax].
func NewUniform(axis grid.Axis, degree int, rmin, rmax float64, ncells int, periodic bool) (*Uniform, error) {
	if err := validate(degree, ncells, rmin, rmax, periodic); err != nil {
		return nil, err
	}
	step := (rmax - rmin) / float64(ncells)
	return &Uniform{
		axis:     axis,
		degree:   degree,
		periodic: periodic,
		rmin:     rmin,
		rmax:     rmax,
		ncells:   ncells,
		step:     step,
		invStep:  1 / step,
	}, nil
}

func (b *Uniform) Axis() grid.Axis { return b.axis }
func (b *Uniform) Degree() int { return b.degree }
func (b *Uniform) Periodic() bool { return b.periodic }
func (b *Uniform) RMin() float64 { return b.rmin }
func (b *Uniform) RMax() float64 { return b.rmax }
func (b *Uniform) Length() float64 { return b.rmax - b.rmin }
func (b *Uniform) NCells() int { return b.ncells }
func (b *Uniform) NBasis() int { return nbasis(b.degree, b.ncells, b.periodic) }
func (b *Uniform) Step() float64 { return b.step }
func (b *Uniform) Knot(i int) float64 {
	return b.rmin + float64(i-b.degree)*b.step
}

// Size returns the coefficient extent along Axis. Periodic bases repeat
// their first Degree coefficients, which gives the same extent as the
// non-periodic one.
func (b *Uniform) Size() int { return b.ncells + b.degree }

// cell returns the cell containing x and the offset of x inside it, in
// units of the step. RMax belongs to the last cell.
func (b *Uniform) cell(x float64) (int, float64) {
	t := (x - b.rmin) * b.invStep
	icell := int(math.Floor(t))
	if icell >= b.ncells {
		icell = b.ncells - 1
	} else if icell < 0 {
		icell = 0
	}
	return icell, t - float64(icell)
}

// cardinal fills values[0..degree] with the cardinal B-spline values of the
// given degree at the offset.
func cardinal(values []float64, degree int, offset float64) {
	values[0] = 1
	for j := 1; j <= degree; j++ {
		xx := -offset
		saved := 0.0
		for r := 0; r < j; r++ {
			xx++
			temp := values[r] / float64(j)
			values[r] = saved + xx*temp
			saved = (float64(j) - xx) * temp
		}
		values[j] = saved
	}
}

// EvalBasis implements Basis.
func (b *Uniform) EvalBasis(out []float64, x float64) int {
	icell, offset := b.cell(x)
	cardinal(out, b.degree, offset)
	return icell
}

// EvalDeriv implements Basis.
func (b *Uniform) EvalDeriv(out []float64, x float64) int {
	icell, offset := b.cell(x)
	cardinal(out, b.degree-1, offset)

	// d/dx N_k = (N_k^{p-1} - N_{k+1}^{p-1}) / step.
	bjm1 := out[0]
	bj := bjm1
	out[0] = -bjm1 * b.invStep
	for j := 1; j < b.degree; j++ {
		bj = out[j]
		out[j] = (bjm1 - bj) * b.invStep
		bjm1 = bj
	}
	out[b.degree] = bj * b.invStep
	return icell
}

// Integrals implements Basis.
func (b *Uniform) Integrals(out []float64) {
	integrals(b, out)
}
