package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// CSR is read only once built
type CSR struct {
	M    *sparse.CSR
	name string
}

// NewCSRFromDense packs the non-zeros of m row by row in increasing column
// order, so the storage layout depends only on the values of m
func NewCSRFromDense(m Matrix) (R CSR) {
	var (
		nr, nc = m.Dims()
		data   = m.Data()
		indptr = make([]int, nr+1)
		ind    []int
		vals   []float64
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if val := data[j+nc*i]; val != 0 {
				ind = append(ind, j)
				vals = append(vals, val)
			}
		}
		indptr[i+1] = len(ind)
	}
	R = CSR{
		M:    sparse.NewCSR(nr, nc, indptr, ind, vals),
		name: m.Name(),
	}
	return
}

func (m CSR) Name() string { return m.name }

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// MulVec returns m * x
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: CSR has %d columns, len(x) = %d", nc, len(x)))
	}
	y = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return
}

// MulTransVec returns transpose(m) * x
func (m CSR) MulTransVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nr {
		panic(fmt.Errorf("dimension mismatch: CSR has %d rows, len(x) = %d", nr, len(x)))
	}
	y = make([]float64, nc)
	m.M.DoNonZero(func(i, j int, v float64) {
		y[j] += v * x[i]
	})
	return
}

// Gram returns m * transpose(m) as a dense matrix. Column j contributes the
// outer product of its non-zeros, columns are added in increasing order so
// the result is reproducible to the last bit.
func (m CSR) Gram() (G Matrix) {
	var (
		nr, _ = m.Dims()
		col   = -1
		rows  []int
		vals  []float64
	)
	G = NewMatrix(nr, nr)
	flush := func() {
		for a, i := range rows {
			for b, l := range rows {
				G.M.Set(i, l, G.M.At(i, l)+vals[a]*vals[b])
			}
		}
		rows, vals = rows[:0], vals[:0]
	}
	m.M.ToCSC().DoNonZero(func(i, j int, v float64) {
		if j != col {
			flush()
			col = j
		}
		rows = append(rows, i)
		vals = append(vals, v)
	})
	flush()
	return
}
