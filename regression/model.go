package regression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/gobspline/bspline"
	"github.com/notargets/gobspline/utils"
)

var (
	ErrDimensionMismatch   = errors.New("regression: dimension mismatch")
	ErrInvalidData         = errors.New("regression: invalid data")
	ErrNotPositiveDefinite = errors.New("regression: conditional precision is not positive definite")
	ErrNoSamples           = errors.New("regression: no samples retained")
)

type PriorType uint8

const (
	Fixed      PriorType = iota // Independent normal coefficients
	RandomWalk                  // a[i] = a[i-1] + step, one shared step scale
)

var (
	PriorNames = map[string]PriorType{
		"fixed":      Fixed,
		"randomwalk": RandomWalk,
		"rw":         RandomWalk,
	}
	PriorPrintNames = []string{"Fixed", "RandomWalk"}
)

func (pt PriorType) String() string {
	if int(pt) < len(PriorPrintNames) {
		return PriorPrintNames[pt]
	}
	return fmt.Sprintf("PriorType(%d)", pt)
}

func NewPriorType(label string) (pt PriorType, err error) {
	var ok bool
	if pt, ok = PriorNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown prior type %q, must be one of Fixed, RandomWalk", label)
	}
	return
}

type Config struct {
	Prior          PriorType
	InterceptScale float64 // Std dev of the normal prior on the intercept
	CoefScale      float64 // Std dev of the normal prior on each coefficient, or on a[0] for RandomWalk
	Shape, Rate    float64 // Gamma prior on the noise and step precisions
	Seed           uint64
}

func DefaultConfig() Config {
	return Config{
		Prior:          Fixed,
		InterceptScale: 10,
		CoefScale:      10,
		Shape:          1,
		Rate:           0.01,
		Seed:           1,
	}
}

func (c Config) validate() error {
	if !(c.InterceptScale > 0 && c.CoefScale > 0 && c.Shape > 0 && c.Rate > 0) {
		return fmt.Errorf("%w: prior scales, shape and rate must be positive: %+v", ErrInvalidData, c)
	}
	if int(c.Prior) >= len(PriorPrintNames) {
		return fmt.Errorf("%w: %v", ErrInvalidData, c.Prior)
	}
	return nil
}

// Model is y[j] = a0 + sum_i a[i]*B[i,j] + eps, eps ~ N(0, sigma^2).
// The cross products of the design [1, B'] are formed once.
type Model struct {
	Design *bspline.DesignMatrix
	Y      []float64
	Config Config
	sp     utils.CSR
	xtx    utils.Matrix // (NumBasis+1) square, intercept first
	xty    []float64
}

func NewModel(design *bspline.DesignMatrix, y []float64, cfg Config) (m *Model, err error) {
	if design == nil {
		err = fmt.Errorf("%w: nil design matrix", ErrInvalidData)
		return
	}
	if len(y) != design.NumPoints() {
		err = fmt.Errorf("%w: design has %d points, len(y) = %d", ErrDimensionMismatch, design.NumPoints(), len(y))
		return
	}
	if !utils.AllFinite(y) {
		err = fmt.Errorf("%w: responses must be finite", ErrInvalidData)
		return
	}
	if utils.IsNan(design.Matrix) {
		err = fmt.Errorf("%w: design matrix contains NaN, check the observation points", ErrInvalidData)
		return
	}
	if err = cfg.validate(); err != nil {
		return
	}
	yc := make([]float64, len(y))
	copy(yc, y)
	m = &Model{
		Design: design,
		Y:      yc,
		Config: cfg,
		sp:     design.Sparse(),
	}
	m.crossProducts()
	return
}

func (m *Model) NumParams() int { return m.Design.NumBasis() + 1 }

func (m *Model) crossProducts() {
	var (
		nb   = m.Design.NumBasis()
		n    = m.Design.NumPoints()
		gram = m.sp.Gram()
		rows = m.Design.SumRows().Data()
		by   = m.sp.MulVec(m.Y)
	)
	m.xtx = utils.NewMatrix(nb+1, nb+1)
	m.xtx.Set(0, 0, float64(n))
	for i := 0; i < nb; i++ {
		m.xtx.Set(0, i+1, rows[i])
		m.xtx.Set(i+1, 0, rows[i])
		for j := 0; j < nb; j++ {
			m.xtx.Set(i+1, j+1, gram.At(i, j))
		}
	}
	m.xtx.SetReadOnly("XtX")
	m.xty = make([]float64, nb+1)
	for _, val := range m.Y {
		m.xty[0] += val
	}
	copy(m.xty[1:], by)
}

// Fitted returns a0 + B'a at the design points
func (m *Model) Fitted(intercept float64, coef []float64) (f []float64) {
	f = m.sp.MulTransVec(coef)
	for j := range f {
		f[j] += intercept
	}
	return
}

// priorPrecision returns the prior precision of [a0, a] for a given step precision
func (m *Model) priorPrecision(stepPrec float64) (P utils.Matrix) {
	var (
		nb = m.Design.NumBasis()
		c  = m.Config
	)
	P = utils.NewMatrix(nb+1, nb+1)
	P.Set(0, 0, 1/(c.InterceptScale*c.InterceptScale))
	switch c.Prior {
	case Fixed:
		for i := 1; i <= nb; i++ {
			P.Set(i, i, 1/(c.CoefScale*c.CoefScale))
		}
	case RandomWalk:
		// First differences, D'D is tridiagonal [1 -1; -1 2 -1; ... ; -1 1]
		for i := 1; i < nb; i++ {
			P.Set(i, i, P.At(i, i)+stepPrec)
			P.Set(i+1, i+1, P.At(i+1, i+1)+stepPrec)
			P.Set(i, i+1, -stepPrec)
			P.Set(i+1, i, -stepPrec)
		}
		P.Set(1, 1, P.At(1, 1)+1/(c.CoefScale*c.CoefScale))
	}
	return
}
