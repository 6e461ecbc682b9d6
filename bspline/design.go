package bspline

import (
	"fmt"

	"github.com/notargets/gobspline/utils"
)

// Basis is the family of B-splines of one order over a fixed knot sequence
type Basis struct {
	Knots    Knots // Raw knots, as supplied
	Order    int   // Degree + 1
	Extended Knots // Knots with the boundary knots repeated Order-1 times
}

func NewBasis(knots []float64, order int) (b *Basis, err error) {
	var (
		ext Knots
		kn  = make(Knots, len(knots))
	)
	copy(kn, knots)
	if ext, err = kn.Extend(order); err != nil {
		return
	}
	b = &Basis{
		Knots:    kn,
		Order:    order,
		Extended: ext,
	}
	return
}

func (b *Basis) NumBasis() int { return NumBasis(len(b.Knots), b.Order) }
func (b *Basis) Degree() int   { return b.Order - 1 }

func (b *Basis) Domain() (lo, hi float64) {
	return b.Knots[0], b.Knots[len(b.Knots)-1]
}

// Evaluate returns basis function index at every point
func (b *Basis) Evaluate(points []float64, index int) ([]float64, error) {
	if index >= b.NumBasis() {
		return nil, fmt.Errorf("%w: basis index %d, family has %d members",
			ErrIndexOutOfRange, index, b.NumBasis())
	}
	return Evaluate(points, b.Extended, index, b.Order)
}

// At returns the value of every basis function at x. The upper end of the
// domain belongs to the last basis function, matching the design matrix.
func (b *Basis) At(x float64) (values []float64) {
	B, err := EvaluateAll([]float64{x}, b.Extended, b.Order)
	if err != nil {
		panic(err)
	}
	values = B.Col(0).Data()
	if _, hi := b.Domain(); x == hi {
		values[len(values)-1] = 1
	}
	return
}

// DesignMatrix is the NumBasis x NumPoints matrix of basis values, entry
// (i, j) = B(i,k)(Points[j]). It is read only once assembled.
type DesignMatrix struct {
	utils.Matrix
	Basis  *Basis
	Points []float64
}

func (b *Basis) DesignMatrix(points []float64) (dm *DesignMatrix, err error) {
	var B utils.Matrix
	if err = checkPoints(points); err != nil {
		return
	}
	if B, err = EvaluateAll(points, b.Extended, b.Order); err != nil {
		return
	}
	return b.finishDesign(B, points), nil
}

// DesignMatrixNaive assembles the same matrix with one top down recursion per
// basis index, repeating the shared lower order work.
func (b *Basis) DesignMatrixNaive(points []float64) (dm *DesignMatrix, err error) {
	var (
		row []float64
		nb  = b.NumBasis()
	)
	if err = checkPoints(points); err != nil {
		return
	}
	B := utils.NewMatrix(nb, len(points))
	for i := 0; i < nb; i++ {
		if row, err = Evaluate(points, b.Extended, i, b.Order); err != nil {
			return
		}
		B.SetRow(i, row)
	}
	return b.finishDesign(B, points), nil
}

func NewDesignMatrix(knots []float64, order int, points []float64) (dm *DesignMatrix, err error) {
	var b *Basis
	if b, err = NewBasis(knots, order); err != nil {
		return
	}
	return b.DesignMatrix(points)
}

func checkPoints(points []float64) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no evaluation points", ErrInvalidInput)
	}
	return nil
}

func (b *Basis) finishDesign(B utils.Matrix, points []float64) (dm *DesignMatrix) {
	if nr, _ := B.Dims(); nr != b.NumBasis() {
		panic(fmt.Sprintf("design matrix has %d rows, basis has %d members", nr, b.NumBasis()))
	}
	// Every basis vanishes at the upper knot under the half open convention,
	// the last point is assigned to the last basis function
	B.Set(-1, -1, 1)
	pts := make([]float64, len(points))
	copy(pts, points)
	dm = &DesignMatrix{
		Matrix: B.SetReadOnly("B"),
		Basis:  b,
		Points: pts,
	}
	return
}

func (dm *DesignMatrix) NumBasis() int {
	nr, _ := dm.Dims()
	return nr
}

func (dm *DesignMatrix) NumPoints() int {
	_, nc := dm.Dims()
	return nc
}

// Sparse returns the design matrix in compressed row form, each column has
// at most Order non-zeros
func (dm *DesignMatrix) Sparse() utils.CSR {
	return utils.NewCSRFromDense(dm.Matrix)
}
