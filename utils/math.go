package utils

import (
	"math"
)

// Linspace returns N evenly spaced values covering [begin, end], both ends included
func Linspace(begin, end float64, N int) (v []float64) {
	switch N {
	case 0:
		return
	case 1:
		return []float64{begin}
	}
	return NewVector(N).Linspace(begin, end).Data()
}

// IsNonDecreasing reports whether x[i] <= x[i+1] for every i, NaN fails the test
func IsNonDecreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if !(x[i-1] <= x[i]) {
			return false
		}
	}
	return true
}

func AllFinite(x []float64) bool {
	for _, val := range x {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return true
}
