package regression

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/notargets/gobspline/bspline"
)

type ParamSummary struct {
	Name          string
	Mean, StdDev  float64
	Q05, Q50, Q95 float64
}

type Summary []ParamSummary

func Summarize(name string, draws []float64) (ps ParamSummary) {
	ps.Name = name
	if len(draws) == 0 {
		nan := math.NaN()
		ps.Mean, ps.StdDev, ps.Q05, ps.Q50, ps.Q95 = nan, nan, nan, nan, nan
		return
	}
	sorted := make([]float64, len(draws))
	copy(sorted, draws)
	sort.Float64s(sorted)
	ps.Mean, ps.StdDev = stat.MeanStdDev(sorted, nil)
	ps.Q05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	ps.Q50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	ps.Q95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return
}

// Summary covers the intercept, every coefficient, sigma and tau when sampled
func (tr *Trace) Summary() (s Summary) {
	s = append(s, Summarize("a0", tr.Intercept))
	if tr.Len() != 0 {
		col := make([]float64, tr.Len())
		for i := range tr.Coef[0] {
			for n, coef := range tr.Coef {
				col[n] = coef[i]
			}
			s = append(s, Summarize(fmt.Sprintf("a[%d]", i+1), col))
		}
	}
	s = append(s, Summarize("sigma", tr.Sigma))
	if tr.Prior == RandomWalk {
		s = append(s, Summarize("tau", tr.Tau))
	}
	return
}

func (s Summary) Find(name string) (ps ParamSummary, ok bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return
}

func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "%-8s %12s %12s %12s %12s %12s\n", "param", "mean", "sd", "5%", "50%", "95%")
	for _, p := range s {
		fmt.Fprintf(w, "%-8s %12.5f %12.5f %12.5f %12.5f %12.5f\n", p.Name, p.Mean, p.StdDev, p.Q05, p.Q50, p.Q95)
	}
}

// Prediction is the posterior of the fitted curve at a set of points
type Prediction struct {
	Points             []float64
	Mean, Lower, Upper []float64 // Lower and Upper bound the central 90%
}

// Predict evaluates every retained draw on another design matrix built from
// the same basis, typically a dense grid
func (tr *Trace) Predict(dm *bspline.DesignMatrix) (pr *Prediction, err error) {
	if tr.Len() == 0 {
		err = ErrNoSamples
		return
	}
	if dm.NumBasis() != len(tr.Coef[0]) {
		err = fmt.Errorf("%w: design has %d basis functions, trace has %d coefficients",
			ErrDimensionMismatch, dm.NumBasis(), len(tr.Coef[0]))
		return
	}
	var (
		sp     = dm.Sparse()
		n      = dm.NumPoints()
		nDraw  = tr.Len()
		curves = make([][]float64, nDraw)
		col    = make([]float64, nDraw)
	)
	for d := 0; d < nDraw; d++ {
		curves[d] = sp.MulTransVec(tr.Coef[d])
		for j := range curves[d] {
			curves[d][j] += tr.Intercept[d]
		}
	}
	pr = &Prediction{
		Points: append([]float64(nil), dm.Points...),
		Mean:   make([]float64, n),
		Lower:  make([]float64, n),
		Upper:  make([]float64, n),
	}
	for j := 0; j < n; j++ {
		for d := 0; d < nDraw; d++ {
			col[d] = curves[d][j]
		}
		ps := Summarize("", col)
		pr.Mean[j], pr.Lower[j], pr.Upper[j] = ps.Mean, ps.Q05, ps.Q95
	}
	return
}
