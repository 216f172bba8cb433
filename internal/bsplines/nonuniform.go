package bsplines

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/born-ml/splines/internal/grid"
)

// NonUniform is a B-spline basis on arbitrary increasing break points.
// Non-periodic bases use clamped knots (the end break points repeated
// Degree times); periodic bases extend the knots by periodicity.
type NonUniform struct {
	axis     grid.Axis
	degree   int
	periodic bool
	ncells   int
	knots    []float64 // knots[degree+k] is the k-th break point

	// Usually the break points are close to uniform. This is our estimate of
	// the spacing, used to guess the cell before searching.
	dx float64
}

var _ Basis = (*NonUniform)(nil)

// NewNonUniform creates a basis of the given degree on the break points,
// which must be strictly increasing.
func NewNonUniform(axis grid.Axis, degree int, breaks []float64, periodic bool) (*NonUniform, error) {
	if len(breaks) < 2 {
		return nil, errors.Wrapf(ErrInvalidBasis, "need at least 2 break points, got %d", len(breaks))
	}
	ncells := len(breaks) - 1
	if err := validate(degree, ncells, breaks[0], breaks[ncells], periodic); err != nil {
		return nil, err
	}
	for i := 0; i < ncells; i++ {
		if !(breaks[i+1] > breaks[i]) {
			return nil, errors.Wrapf(ErrInvalidBasis, "break points not increasing at index %d", i)
		}
	}

	knots := make([]float64, ncells+1+2*degree)
	copy(knots[degree:], breaks)
	length := breaks[ncells] - breaks[0]
	for i := 1; i <= degree; i++ {
		if periodic {
			knots[degree-i] = breaks[ncells-i] - length
			knots[degree+ncells+i] = breaks[i] + length
		} else {
			knots[degree-i] = breaks[0]
			knots[degree+ncells+i] = breaks[ncells]
		}
	}

	return &NonUniform{
		axis:     axis,
		degree:   degree,
		periodic: periodic,
		ncells:   ncells,
		knots:    knots,
		dx:       length / float64(ncells),
	}, nil
}

func (b *NonUniform) Axis() grid.Axis { return b.axis }
func (b *NonUniform) Degree() int { return b.degree }
func (b *NonUniform) Periodic() bool { return b.periodic }
func (b *NonUniform) RMin() float64 { return b.knots[b.degree] }
func (b *NonUniform) RMax() float64 { return b.knots[b.degree+b.ncells] }
func (b *NonUniform) Length() float64 { return b.RMax() - b.RMin() }
func (b *NonUniform) NCells() int { return b.ncells }
func (b *NonUniform) NBasis() int { return nbasis(b.degree, b.ncells, b.periodic) }
func (b *NonUniform) Size() int { return b.ncells + b.degree }
func (b *NonUniform) Knot(i int) float64 { return b.knots[i] }

// Breaks returns the break points. The slice must not be modified.
func (b *NonUniform) Breaks() []float64 {
	return b.knots[b.degree : b.degree+b.ncells+1]
}

// cell returns the index of the cell containing x. Points outside the
// interval are attributed to the nearest end cell.
func (b *NonUniform) cell(x float64) int {
	br := b.Breaks()
	if x <= br[0] {
		return 0
	}
	if x >= br[b.ncells] {
		return b.ncells - 1
	}

	// Guess under the assumption of uniform spacing.
	guess := int((x - br[0]) / b.dx)
	if guess >= 0 && guess < b.ncells && br[guess] <= x && x < br[guess+1] {
		return guess
	}

	i := sort.Search(len(br), func(k int) bool { return br[k] > x }) - 1
	return min(max(i, 0), b.ncells-1)
}

// deBoor fills out[0..degree] with the values of the basis functions of the
// given degree that are non-zero on the knot span [knots[span], knots[span+1]).
func deBoor(out []float64, knots []float64, span, degree int, x float64) {
	var left, right [MaxDegree + 1]float64
	out[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = x - knots[span+1-j]
		right[j] = knots[span+j] - x
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := out[r] / (right[r+1] + left[j-r])
			out[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		out[j] = saved
	}
}

// EvalBasis implements Basis.
func (b *NonUniform) EvalBasis(out []float64, x float64) int {
	icell := b.cell(x)
	deBoor(out, b.knots, icell+b.degree, b.degree, x)
	return icell
}

// EvalDeriv implements Basis.
func (b *NonUniform) EvalDeriv(out []float64, x float64) int {
	icell := b.cell(x)
	p := b.degree

	// Values of degree p-1 for functions icell+1 .. icell+p.
	var lower [MaxDegree + 1]float64
	deBoor(lower[:], b.knots, icell+p, p-1, x)

	fp := float64(p)
	for s := 0; s <= p; s++ {
		j := icell + s
		d := 0.0
		if s >= 1 {
			if den := b.knots[j+p] - b.knots[j]; den > 0 {
				d += fp * lower[s-1] / den
			}
		}
		if s < p {
			if den := b.knots[j+p+1] - b.knots[j+1]; den > 0 {
				d -= fp * lower[s] / den
			}
		}
		out[s] = d
	}
	return icell
}

// Integrals implements Basis.
func (b *NonUniform) Integrals(out []float64) {
	integrals(b, out)
}
