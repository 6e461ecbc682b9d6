package utils

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(N int, dataO ...[]float64) Vector {
	if len(dataO) != 0 {
		return Vector{mat.NewVecDense(N, dataO[0])}
	}
	return Vector{mat.NewVecDense(N, make([]float64, N))}
}

// Dims, At and T minimally satisfy the mat.Matrix interface, AtVec and Len
// complete mat.Vector.
func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int                 { return v.V.Len() }
func (v Vector) Data() []float64          { return v.V.RawVector().Data }

// Chainable (extended) methods
func (v Vector) Linspace(begin, end float64) Vector {
	floats.Span(v.Data(), begin, end)
	return v
}

func (v Vector) Sum() float64 { return floats.Sum(v.Data()) }
func (v Vector) Min() float64 { return floats.Min(v.Data()) }
func (v Vector) Max() float64 { return floats.Max(v.Data()) }

func (v Vector) Find(op EvalOp, target float64) (I Index) {
	for i, val := range v.Data() {
		if compare(op, val, target) {
			I = append(I, i)
		}
	}
	return
}
