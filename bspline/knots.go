package bspline

import (
	"fmt"

	"github.com/notargets/gobspline/utils"
)

// Knots is a non-decreasing sequence of knot locations
type Knots []float64

func (kn Knots) Validate() error {
	if len(kn) < 2 {
		return fmt.Errorf("%w: need at least 2 knots, have %d", ErrInvalidInput, len(kn))
	}
	if !utils.AllFinite(kn) {
		return fmt.Errorf("%w: knots must be finite", ErrInvalidInput)
	}
	if !utils.IsNonDecreasing(kn) {
		return fmt.Errorf("%w: knots must be non-decreasing", ErrInvalidInput)
	}
	return nil
}

// Extend pads the sequence by repeating the first and last knot order-1
// times at each end, the result has length len(kn) + 2*(order-1)
func (kn Knots) Extend(order int) (ext Knots, err error) {
	if err = kn.Validate(); err != nil {
		return
	}
	if order < 1 {
		err = fmt.Errorf("%w: order must be >= 1, have %d", ErrInvalidInput, order)
		return
	}
	var (
		q   = len(kn)
		pad = order - 1
	)
	ext = make(Knots, q+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = kn[0]
		ext[pad+q+i] = kn[q-1]
	}
	copy(ext[pad:pad+q], kn)
	return
}

func Extend(knots []float64, order int) ([]float64, error) {
	return Knots(knots).Extend(order)
}

// NumBasis is the size of the B-spline family of the given order over numKnots knots
func NumBasis(numKnots, order int) int {
	return numKnots + order - 2
}

// UniformKnots returns N equally spaced knots over [lo, hi]
func UniformKnots(lo, hi float64, N int) Knots {
	return utils.Linspace(lo, hi, N)
}
