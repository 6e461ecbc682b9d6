package regression

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/gobspline/bspline"
	"github.com/notargets/gobspline/utils"
)

const noise = 0.1

func sineData(n int, seed uint64) (x, y []float64) {
	x = utils.Linspace(-5, 5, n)
	y = make([]float64, n)
	eps := distuv.Normal{Mu: 0, Sigma: noise, Src: rand.NewPCG(seed, seed+1)}
	for j, xj := range x {
		y[j] = math.Sin(xj) + eps.Rand()
	}
	return
}

func sineModel(t *testing.T, prior PriorType) (b *bspline.Basis, m *Model) {
	var err error
	x, y := sineData(101, 7)
	b, err = bspline.NewBasis(bspline.UniformKnots(-5, 5, 11), 4)
	require.NoError(t, err)
	dm, err := b.DesignMatrix(x)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Prior = prior
	cfg.Seed = 42
	m, err = NewModel(dm, y, cfg)
	require.NoError(t, err)
	return
}

func TestCrossProducts(t *testing.T) {
	_, m := sineModel(t, Fixed)
	var (
		nb = m.Design.NumBasis()
		n  = m.Design.NumPoints()
		B  = m.Design.Matrix
	)
	assert.Equal(t, float64(n), m.xtx.At(0, 0))
	for i := 0; i < nb; i++ {
		assert.InDelta(t, B.Row(i).Sum(), m.xtx.At(0, i+1), 1.e-12)
		for j := 0; j < nb; j++ {
			var dot float64
			for k := 0; k < n; k++ {
				dot += B.At(i, k) * B.At(j, k)
			}
			assert.InDelta(t, dot, m.xtx.At(i+1, j+1), 1.e-12)
			assert.InDelta(t, m.xtx.At(i+1, j+1), m.xtx.At(j+1, i+1), 1.e-14)
		}
	}
	var ysum float64
	for _, val := range m.Y {
		ysum += val
	}
	assert.InDelta(t, ysum, m.xty[0], 1.e-12)
}

func TestPriorPrecision(t *testing.T) {
	_, m := sineModel(t, RandomWalk)
	m.Config.CoefScale = 1
	m.Config.InterceptScale = 2
	P := m.priorPrecision(3)
	assert.Equal(t, 0.25, P.At(0, 0))
	assert.Equal(t, 3.+1, P.At(1, 1))
	assert.Equal(t, 6., P.At(2, 2))
	assert.Equal(t, -3., P.At(1, 2))
	assert.Equal(t, -3., P.At(2, 1))
	assert.Equal(t, 0., P.At(1, 3))
	nb := m.Design.NumBasis()
	assert.Equal(t, 3., P.At(nb, nb))
	// Rows of the difference penalty sum to zero apart from a[1]
	for i := 2; i <= nb; i++ {
		assert.InDelta(t, 0., P.Row(i).Sum(), 1.e-14)
	}

	m.Config.Prior = Fixed
	P = m.priorPrecision(3)
	assert.Equal(t, 1., P.At(1, 1))
	assert.Equal(t, 0., P.At(1, 2))
}

func checkFit(t *testing.T, b *bspline.Basis, tr *Trace) {
	grid := utils.Linspace(-5, 5, 201)
	dm, err := b.DesignMatrix(grid)
	require.NoError(t, err)
	pr, err := tr.Predict(dm)
	require.NoError(t, err)
	require.Equal(t, 201, len(pr.Mean))
	var sse float64
	for j, x := range pr.Points {
		e := pr.Mean[j] - math.Sin(x)
		sse += e * e
		assert.Lessf(t, math.Abs(e), 0.25, "x = %v", x)
		assert.LessOrEqual(t, pr.Lower[j], pr.Mean[j])
		assert.GreaterOrEqual(t, pr.Upper[j], pr.Mean[j])
	}
	assert.Less(t, math.Sqrt(sse/201), 0.08)
	sigma, ok := tr.Summary().Find("sigma")
	require.True(t, ok)
	assert.InDelta(t, noise, sigma.Q50, 0.04)
}

func TestSampleFixed(t *testing.T) {
	b, m := sineModel(t, Fixed)
	tr, err := m.Sample(context.Background(), 1200, 200, 2)
	require.NoError(t, err)
	assert.Equal(t, 500, tr.Len())
	assert.Equal(t, m.Design.NumBasis(), len(tr.Coef[0]))
	assert.Empty(t, tr.Tau)
	s := tr.Summary()
	assert.Equal(t, 1+m.Design.NumBasis()+1, len(s))
	checkFit(t, b, tr)
}

func TestSampleRandomWalk(t *testing.T) {
	b, m := sineModel(t, RandomWalk)
	tr, err := m.Sample(context.Background(), 1200, 200, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000, tr.Len())
	assert.Equal(t, 1000, len(tr.Tau))
	tau, ok := tr.Summary().Find("tau")
	require.True(t, ok)
	assert.Greater(t, tau.Mean, 0.)
	checkFit(t, b, tr)
}

func TestSampleDeterministic(t *testing.T) {
	_, m1 := sineModel(t, RandomWalk)
	_, m2 := sineModel(t, RandomWalk)
	tr1, err := m1.Sample(context.Background(), 50, 10, 1)
	require.NoError(t, err)
	tr2, err := m2.Sample(context.Background(), 50, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, tr1.Intercept, tr2.Intercept)
	assert.Equal(t, tr1.Sigma, tr2.Sigma)
	assert.Equal(t, tr1.Coef, tr2.Coef)
	// Cross products are bitwise identical across rebuilds
	for n := 0; n < 20; n++ {
		_, m3 := sineModel(t, RandomWalk)
		assert.Equal(t, m1.xtx.Data(), m3.xtx.Data())
		assert.Equal(t, m1.xty, m3.xty)
	}
}

func TestModelErrors(t *testing.T) {
	x, y := sineData(21, 3)
	dm, err := bspline.NewDesignMatrix(bspline.UniformKnots(-5, 5, 5), 3, x)
	require.NoError(t, err)
	{
		_, err = NewModel(dm, y[:20], DefaultConfig())
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	}
	{
		yb := append([]float64(nil), y...)
		yb[3] = math.NaN()
		_, err = NewModel(dm, yb, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidData))
	}
	{
		cfg := DefaultConfig()
		cfg.Rate = 0
		_, err = NewModel(dm, y, cfg)
		assert.True(t, errors.Is(err, ErrInvalidData))
	}
	{
		_, err = NewModel(nil, y, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidData))
	}
	m, err := NewModel(dm, y, DefaultConfig())
	require.NoError(t, err)
	{
		_, err = m.Sample(context.Background(), 10, 10, 1)
		assert.True(t, errors.Is(err, ErrNoSamples))
	}
	{
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = m.Sample(ctx, 10, 0, 1)
		assert.True(t, errors.Is(err, context.Canceled))
	}
	{
		tr := &Trace{}
		_, err = tr.Predict(dm)
		assert.True(t, errors.Is(err, ErrNoSamples))
		tr, err = m.Sample(context.Background(), 5, 0, 1)
		require.NoError(t, err)
		other, err := bspline.NewDesignMatrix(bspline.UniformKnots(-5, 5, 6), 3, x)
		require.NoError(t, err)
		_, err = tr.Predict(other)
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	}
}

func TestPriorType(t *testing.T) {
	pt, err := NewPriorType("RandomWalk")
	require.NoError(t, err)
	assert.Equal(t, RandomWalk, pt)
	pt, err = NewPriorType(" fixed ")
	require.NoError(t, err)
	assert.Equal(t, Fixed, pt)
	_, err = NewPriorType("horseshoe")
	assert.Error(t, err)
	assert.Equal(t, "RandomWalk", RandomWalk.String())
	assert.Equal(t, "PriorType(7)", PriorType(7).String())
}

func TestSummarize(t *testing.T) {
	draws := make([]float64, 100)
	for i := range draws {
		draws[i] = float64(100 - i)
	}
	ps := Summarize("x", draws)
	assert.Equal(t, "x", ps.Name)
	assert.InDelta(t, 50.5, ps.Mean, 1.e-12)
	assert.Equal(t, 5., ps.Q05)
	assert.Equal(t, 50., ps.Q50)
	assert.Equal(t, 95., ps.Q95)
	// Input order is untouched
	assert.Equal(t, 100., draws[0])
	assert.True(t, math.IsNaN(Summarize("empty", nil).Mean))

	_, ok := Summary{ps}.Find("y")
	assert.False(t, ok)
	var buf bytes.Buffer
	Summary{ps}.Print(&buf)
	assert.Contains(t, buf.String(), "mean")
	assert.Contains(t, buf.String(), "50.50000")
}
