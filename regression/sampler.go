package regression

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Trace holds the retained draws, one entry per draw
type Trace struct {
	Prior     PriorType
	Intercept []float64
	Coef      [][]float64
	Sigma     []float64
	Tau       []float64 // RandomWalk only
}

func (tr *Trace) Len() int { return len(tr.Intercept) }

type gibbsState struct {
	beta      []float64 // [a0, a...]
	noisePrec float64
	stepPrec  float64
}

// Sample runs a Gibbs sampler: a joint normal draw of [a0, a] given the
// precisions, then conjugate gamma draws of the noise and step precisions.
// Draws after burnIn are kept every thin iterations.
func (m *Model) Sample(ctx context.Context, nIter, burnIn, thin int) (tr *Trace, err error) {
	if thin < 1 {
		thin = 1
	}
	if burnIn < 0 || nIter <= burnIn {
		err = fmt.Errorf("%w: nIter = %d, burnIn = %d", ErrNoSamples, nIter, burnIn)
		return
	}
	var (
		src   = rand.NewPCG(m.Config.Seed, m.Config.Seed^0x9e3779b97f4a7c15)
		norm  = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		np    = m.NumParams()
		state = gibbsState{
			beta:      make([]float64, np),
			noisePrec: 1,
			stepPrec:  1,
		}
	)
	tr = &Trace{Prior: m.Config.Prior}
	for iter := 0; iter < nIter; iter++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = m.drawBeta(&state, norm); err != nil {
			return nil, err
		}
		m.drawNoisePrec(&state, src)
		if m.Config.Prior == RandomWalk {
			m.drawStepPrec(&state, src)
		}
		if iter >= burnIn && (iter-burnIn)%thin == 0 {
			tr.record(&state)
		}
	}
	return
}

func (tr *Trace) record(s *gibbsState) {
	coef := make([]float64, len(s.beta)-1)
	copy(coef, s.beta[1:])
	tr.Intercept = append(tr.Intercept, s.beta[0])
	tr.Coef = append(tr.Coef, coef)
	tr.Sigma = append(tr.Sigma, 1/math.Sqrt(s.noisePrec))
	if tr.Prior == RandomWalk {
		tr.Tau = append(tr.Tau, 1/math.Sqrt(s.stepPrec))
	}
}

// drawBeta samples beta ~ N(Q^-1 b, Q^-1), Q = noisePrec*X'X + P, b = noisePrec*X'y.
// With Q = U'U the draw is mu + U^-1 z for z ~ N(0, I).
func (m *Model) drawBeta(s *gibbsState, norm distuv.Normal) (err error) {
	var (
		np   = m.NumParams()
		P    = m.priorPrecision(s.stepPrec)
		Q    = mat.NewSymDense(np, nil)
		xtx  = m.xtx.Data()
		pd   = P.Data()
		b    = mat.NewVecDense(np, nil)
		chol mat.Cholesky
		mu   mat.VecDense
		U    mat.TriDense
		dz   mat.VecDense
	)
	for i := 0; i < np; i++ {
		for j := i; j < np; j++ {
			Q.SetSym(i, j, s.noisePrec*xtx[j+np*i]+pd[j+np*i])
		}
		b.SetVec(i, s.noisePrec*m.xty[i])
	}
	if ok := chol.Factorize(Q); !ok {
		return ErrNotPositiveDefinite
	}
	if err = chol.SolveVecTo(&mu, b); err != nil {
		return fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}
	z := mat.NewVecDense(np, nil)
	for i := 0; i < np; i++ {
		z.SetVec(i, norm.Rand())
	}
	chol.UTo(&U)
	if err = dz.SolveVec(&U, z); err != nil {
		return fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}
	for i := 0; i < np; i++ {
		s.beta[i] = mu.AtVec(i) + dz.AtVec(i)
	}
	return
}

func (m *Model) drawNoisePrec(s *gibbsState, src rand.Source) {
	var (
		fitted = m.Fitted(s.beta[0], s.beta[1:])
		n      = float64(len(m.Y))
	)
	floats.Sub(fitted, m.Y)
	ssr := floats.Dot(fitted, fitted)
	g := distuv.Gamma{
		Alpha: m.Config.Shape + 0.5*n,
		Beta:  m.Config.Rate + 0.5*ssr,
		Src:   src,
	}
	s.noisePrec = g.Rand()
}

func (m *Model) drawStepPrec(s *gibbsState, src rand.Source) {
	var (
		a   = s.beta[1:]
		ss  float64
		nSt = float64(len(a) - 1)
	)
	for i := 1; i < len(a); i++ {
		d := a[i] - a[i-1]
		ss += d * d
	}
	g := distuv.Gamma{
		Alpha: m.Config.Shape + 0.5*nSt,
		Beta:  m.Config.Rate + 0.5*ss,
		Src:   src,
	}
	s.stepPrec = g.Rand()
}
