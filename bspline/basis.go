package bspline

import (
	"fmt"
	"math"

	"github.com/notargets/gobspline/utils"
)

/*
	Cox-de Boor recursion over an extended knot sequence t:

		B(i,1)(x) = 1 if t[i] <= x < t[i+1], else 0
		B(i,m)(x) = w1(x)*B(i,m-1)(x) + w2(x)*B(i+1,m-1)(x)

		w1(x) = (x - t[i]) / (t[i+m-1] - t[i])        0 when t[i] == t[i+m-1]
		w2(x) = 1 - (x - t[i+1]) / (t[i+m] - t[i+1])  0 when t[i+1] == t[i+m]

	Degeneracy is tested with exact equality. Repeated boundary knots make
	the matching weight vanish instead of dividing by zero.
*/

// Evaluate returns B(index,order) at every point. The index and order are
// checked once here, the recursion below trusts them.
func Evaluate(points, extKnots []float64, index, order int) (B []float64, err error) {
	if err = checkIndex(len(extKnots), index, order); err != nil {
		return
	}
	B = evaluate(points, extKnots, index, order)
	return
}

func checkIndex(nExt, index, order int) error {
	if order < 1 {
		return fmt.Errorf("%w: order must be >= 1, have %d", ErrIndexOutOfRange, order)
	}
	if index < 0 || index+order > nExt-1 {
		return fmt.Errorf("%w: index %d with order %d needs %d extended knots, have %d",
			ErrIndexOutOfRange, index, order, index+order+1, nExt)
	}
	return nil
}

func evaluate(x, t []float64, i, m int) (b []float64) {
	if i < 0 || i+m > len(t)-1 {
		panic(fmt.Sprintf("basis index arithmetic out of bounds: i, m, len(t) = %d, %d, %d", i, m, len(t)))
	}
	b = make([]float64, len(x))
	if m == 1 {
		indicator(b, x, t, i)
		return
	}
	combine(b, x, t, i, m, evaluate(x, t, i, m-1), evaluate(x, t, i+1, m-1))
	return
}

// indicator fills b with the half open interval test [t[i], t[i+1]),
// non-finite points give NaN
func indicator(b, x, t []float64, i int) {
	var (
		lo, hi = t[i], t[i+1]
	)
	for j, xj := range x {
		switch {
		case math.IsNaN(xj) || math.IsInf(xj, 0):
			b[j] = math.NaN()
		case lo <= xj && xj < hi:
			b[j] = 1
		default:
			b[j] = 0
		}
	}
}

// combine writes w1*lower + w2*upper into b, where lower = B(i,m-1) and upper = B(i+1,m-1)
func combine(b, x, t []float64, i, m int, lower, upper []float64) {
	var (
		left1, right1 = t[i], t[i+m-1]
		left2, right2 = t[i+1], t[i+m]
		degen1        = left1 == right1
		degen2        = left2 == right2
		d1, d2        = right1 - left1, right2 - left2
		w1, w2        float64
	)
	for j, xj := range x {
		w1, w2 = 0, 0
		if !degen1 {
			w1 = (xj - left1) / d1
		}
		if !degen2 {
			w2 = 1 - (xj-left2)/d2
		}
		b[j] = w1*lower[j] + w2*upper[j]
	}
}

// EvaluateAll returns every basis function of the given order, one row per
// basis index, built bottom up one order level at a time. Each level reads
// only the completed level below it, and its rows are split across goroutines.
func EvaluateAll(points, extKnots []float64, order int) (B utils.Matrix, err error) {
	var (
		nExt = len(extKnots)
		np   = len(points)
	)
	if err = checkIndex(nExt, 0, order); err != nil {
		return
	}
	if np == 0 {
		err = fmt.Errorf("%w: no evaluation points", ErrInvalidInput)
		return
	}
	var (
		prev = make([][]float64, nExt-1)
		cur  [][]float64
	)
	runLevel(len(prev), func(i int) {
		prev[i] = make([]float64, np)
		indicator(prev[i], points, extKnots, i)
	})
	for m := 2; m <= order; m++ {
		cur = make([][]float64, nExt-m)
		lower := prev
		runLevel(len(cur), func(i int) {
			cur[i] = make([]float64, np)
			combine(cur[i], points, extKnots, i, m, lower[i], lower[i+1])
		})
		prev = cur
	}
	B = utils.NewMatrix(len(prev), np)
	for i, row := range prev {
		B.SetRow(i, row)
	}
	return
}

func runLevel(nRows int, f func(i int)) {
	pm := utils.NewPartitionMap(utils.DefaultParallelDegree(nRows), nRows)
	pm.Run(func(bn, kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			f(i)
		}
	})
}
