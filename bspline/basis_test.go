package bspline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gobspline/utils"
)

func knotsM5To5() Knots {
	return UniformKnots(-5, 5, 11)
}

func TestEvaluateLinear(t *testing.T) {
	var (
		order  = 2
		ext, _ = knotsM5To5().Extend(order)
		nb     = NumBasis(11, order)
	)
	// Two ramps cover x = -4.5, each contributes half
	for i := 0; i < nb; i++ {
		B, err := Evaluate([]float64{-4.5}, ext, i, order)
		require.NoError(t, err)
		switch i {
		case 0, 1:
			assert.Equal(t, 0.5, B[0])
		default:
			assert.Equal(t, 0., B[0])
		}
	}
	// Ramp shape of basis 1 over [-5, -3)
	B, err := Evaluate([]float64{-5, -4.75, -4, -3.5, -3}, ext, 1, order)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 1, 0.5, 0}, B)
}

func TestEvaluateCubicKnownValues(t *testing.T) {
	var (
		order  = 4
		ext, _ = knotsM5To5().Extend(order)
	)
	// Uniform cubic B-spline at a knot: 1/6, 2/3, 1/6
	for i, want := range map[int]float64{4: 0, 5: 1. / 6, 6: 2. / 3, 7: 1. / 6, 8: 0} {
		B, err := Evaluate([]float64{0}, ext, i, order)
		require.NoError(t, err)
		assert.InDeltaf(t, want, B[0], 1.e-14, "B(%d,4)(0)", i)
	}
}

func TestEvaluateIndexOutOfRange(t *testing.T) {
	var (
		order  = 4
		ext, _ = knotsM5To5().Extend(order) // 17 knots
	)
	_, err := Evaluate([]float64{0}, ext, 12, order)
	assert.NoError(t, err)
	for _, tc := range [][2]int{{13, 4}, {-1, 4}, {0, 0}, {0, 17}, {16, 1}} {
		_, err = Evaluate([]float64{0}, ext, tc[0], tc[1])
		assert.Truef(t, errors.Is(err, ErrIndexOutOfRange), "index %d order %d", tc[0], tc[1])
	}
	_, err = EvaluateAll([]float64{0}, ext, 17)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = EvaluateAll(nil, ext, 2)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEvaluateOrderOneExact(t *testing.T) {
	var (
		kn     = Knots{0, 0.5, 1, 1, 2.5}
		points = []float64{-1, 0, 0.25, 0.5, 0.99, 1, 2, 2.5, 3}
	)
	B, err := EvaluateAll(points, kn, 1)
	require.NoError(t, err)
	nr, _ := B.Dims()
	require.Equal(t, len(kn)-1, nr)
	for i := 0; i < nr; i++ {
		for j, x := range points {
			var want float64
			if kn[i] <= x && x < kn[i+1] {
				want = 1
			}
			assert.Equal(t, want, B.At(i, j))
		}
	}
	// The empty interval [1, 1) never fires
	assert.Equal(t, 0., B.Row(2).Sum())
}

func TestEvaluateNaNPropagates(t *testing.T) {
	ext, _ := knotsM5To5().Extend(3)
	for _, order := range []int{1, 3} {
		B, err := Evaluate([]float64{math.NaN(), 0.5}, ext, 4, order)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(B[0]))
		assert.False(t, math.IsNaN(B[1]))
	}
	// Infinite points are not finite either, every order agrees
	for _, order := range []int{1, 2, 3} {
		ext, _ := knotsM5To5().Extend(order)
		x := []float64{math.Inf(1), math.Inf(-1), 0.5}
		for i := 0; i < NumBasis(len(knotsM5To5()), order); i++ {
			B, err := Evaluate(x, ext, i, order)
			require.NoError(t, err)
			assert.Truef(t, math.IsNaN(B[0]), "order %d, index %d, +Inf", order, i)
			assert.Truef(t, math.IsNaN(B[1]), "order %d, index %d, -Inf", order, i)
			assert.False(t, math.IsNaN(B[2]))
		}
		All, err := EvaluateAll(x, ext, order)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(All.At(0, 0)))
	}
}

func TestBasisProperties(t *testing.T) {
	var (
		kn     = knotsM5To5()
		points = utils.Linspace(-5, 4.999, 2001)
	)
	for order := 1; order <= 5; order++ {
		ext, err := kn.Extend(order)
		require.NoError(t, err)
		B, err := EvaluateAll(points, ext, order)
		require.NoError(t, err)
		nb, _ := B.Dims()
		require.Equal(t, NumBasis(len(kn), order), nb)
		// Partition of unity
		sums := B.SumCols().Data()
		for j, s := range sums {
			assert.InDeltaf(t, 1., s, 1.e-9, "order %d, x = %v", order, points[j])
		}
		for i := 0; i < nb; i++ {
			for j, x := range points {
				val := B.At(i, j)
				// Non-negativity
				assert.GreaterOrEqual(t, val, 0.)
				// Local support
				if x < ext[i] || x >= ext[i+order] {
					assert.Equalf(t, 0., val, "order %d basis %d at x = %v", order, i, x)
				}
			}
		}
	}
}

func TestBasisContinuity(t *testing.T) {
	var (
		kn  = knotsM5To5()
		eps = 1.e-12
	)
	for order := 2; order <= 5; order++ {
		ext, _ := kn.Extend(order)
		for _, knot := range kn[1 : len(kn)-1] {
			below, err := EvaluateAll([]float64{knot - eps}, ext, order)
			require.NoError(t, err)
			at, err := EvaluateAll([]float64{knot}, ext, order)
			require.NoError(t, err)
			nb, _ := at.Dims()
			for i := 0; i < nb; i++ {
				assert.InDeltaf(t, at.At(i, 0), below.At(i, 0), 1.e-9,
					"order %d basis %d at knot %v", order, i, knot)
			}
		}
	}
}

func TestDegenerateKnots(t *testing.T) {
	var (
		kn     = Knots{0, 1, 1, 1, 2, 3, 3.5}
		points = utils.Linspace(-0.5, 4, 451)
	)
	for order := 1; order <= 4; order++ {
		ext, err := kn.Extend(order)
		require.NoError(t, err)
		B, err := EvaluateAll(points, ext, order)
		require.NoError(t, err)
		assert.False(t, utils.IsNan(B))
		sums := B.SumCols().Data()
		for j, x := range points {
			if x >= 0 && x < 3.5 {
				assert.InDelta(t, 1., sums[j], 1.e-9)
			} else {
				assert.Equal(t, 0., sums[j])
			}
		}
	}
}

func TestEvaluateAllMatchesRecursion(t *testing.T) {
	var (
		kn     = Knots{-2, -1.5, 0, 0, 0.3, 1, 4}
		points = utils.Linspace(-2.5, 4.5, 97)
	)
	for order := 1; order <= 5; order++ {
		ext, _ := kn.Extend(order)
		All, err := EvaluateAll(points, ext, order)
		require.NoError(t, err)
		for i := 0; i < NumBasis(len(kn), order); i++ {
			row, err := Evaluate(points, ext, i, order)
			require.NoError(t, err)
			assert.Equal(t, row, All.Row(i).Data())
		}
	}
}
