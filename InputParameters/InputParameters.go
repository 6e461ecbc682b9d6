package InputParameters

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/gobspline/bspline"
	"github.com/notargets/gobspline/regression"
	"github.com/notargets/gobspline/utils"
)

// Parameters obtained from the YAML input file
type SplineParameters struct {
	Title      string              `yaml:"Title"`
	Order      int                 `yaml:"Order"`
	Knots      []float64           `yaml:"Knots"`    // Explicit knots, overrides NumKnots and Domain
	NumKnots   int                 `yaml:"NumKnots"` // Uniform knots over Domain
	Domain     []float64           `yaml:"Domain"`
	Prior      string              `yaml:"Prior"`
	GridPoints int                 `yaml:"GridPoints"` // Prediction grid size
	Data       DataParameters      `yaml:"Data"`
	Synthetic  SyntheticParameters `yaml:"Synthetic"`
	Sampler    SamplerParameters   `yaml:"Sampler"`
}

// Bare X and Y keys are not usable, YAML 1.1 reads Y as a boolean
type DataParameters struct {
	Points    []float64 `yaml:"Points"`    // Observation locations
	Responses []float64 `yaml:"Responses"` // Observed values, one per point
}

type SyntheticParameters struct {
	NumPoints int     `yaml:"NumPoints"`
	Noise     float64 `yaml:"Noise"`
	Function  string  `yaml:"Function"` // sin, cos or cubic
}

type SamplerParameters struct {
	Iterations     int     `yaml:"Iterations"`
	BurnIn         int     `yaml:"BurnIn"` // Defaults to Iterations/4
	Thin           int     `yaml:"Thin"`
	Seed           uint64  `yaml:"Seed"`
	InterceptScale float64 `yaml:"InterceptScale"`
	CoefScale      float64 `yaml:"CoefScale"`
	Shape          float64 `yaml:"Shape"`
	Rate           float64 `yaml:"Rate"`
}

func NewSplineParameters() (ip *SplineParameters) {
	ip = &SplineParameters{}
	ip.SetDefaults()
	return
}

// SetDefaults overwrites every setting with its default, data is left alone
func (ip *SplineParameters) SetDefaults() {
	var (
		rc = regression.DefaultConfig()
	)
	ip.Order = 4
	ip.Knots = nil
	ip.NumKnots = 11
	ip.Domain = []float64{-5, 5}
	ip.Prior = rc.Prior.String()
	ip.GridPoints = 201
	ip.Synthetic = SyntheticParameters{
		NumPoints: 101,
		Noise:     0.2,
		Function:  "sin",
	}
	ip.Sampler = SamplerParameters{
		Iterations:     2000,
		BurnIn:         500,
		Thin:           1,
		Seed:           rc.Seed,
		InterceptScale: rc.InterceptScale,
		CoefScale:      rc.CoefScale,
		Shape:          rc.Shape,
		Rate:           rc.Rate,
	}
}

// Parse replaces the receiver with the defaults overlaid by the YAML input,
// so any setting present in the input, zero included, is kept as written
func (ip *SplineParameters) Parse(data []byte) (err error) {
	*ip = SplineParameters{}
	ip.SetDefaults()
	ip.Sampler.BurnIn = -1 // Follows Iterations unless given
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.Sampler.BurnIn < 0 {
		ip.Sampler.BurnIn = ip.Sampler.Iterations / 4
	}
	return ip.Validate()
}

func (ip *SplineParameters) Validate() (err error) {
	if ip.Order < 1 {
		return fmt.Errorf("Order must be >= 1, have %d", ip.Order)
	}
	if len(ip.Knots) == 0 && len(ip.Domain) != 2 {
		return fmt.Errorf("Domain must have two entries [min, max], have %v", ip.Domain)
	}
	if err = bspline.Knots(ip.KnotSequence()).Validate(); err != nil {
		return
	}
	if _, err = regression.NewPriorType(ip.Prior); err != nil {
		return
	}
	if err = ip.validateData(); err != nil {
		return
	}
	if len(ip.Data.Points) == 0 {
		if _, err = syntheticFunction(ip.Synthetic.Function); err != nil {
			return
		}
		if ip.Synthetic.NumPoints < 2 {
			return fmt.Errorf("Synthetic.NumPoints must be >= 2, have %d", ip.Synthetic.NumPoints)
		}
	}
	if ip.Synthetic.Noise < 0 {
		return fmt.Errorf("Synthetic.Noise must be >= 0, have %v", ip.Synthetic.Noise)
	}
	if ip.Sampler.Thin < 1 {
		return fmt.Errorf("Sampler.Thin must be >= 1, have %d", ip.Sampler.Thin)
	}
	if ip.Sampler.BurnIn < 0 {
		return fmt.Errorf("Sampler.BurnIn must be >= 0, have %d", ip.Sampler.BurnIn)
	}
	if ip.Sampler.Iterations <= ip.Sampler.BurnIn {
		return fmt.Errorf("Sampler.Iterations (%d) must exceed Sampler.BurnIn (%d)",
			ip.Sampler.Iterations, ip.Sampler.BurnIn)
	}
	return
}

// validateData requires one finite response per point, with every point
// inside the knot range
func (ip *SplineParameters) validateData() (err error) {
	var (
		X, Y = ip.Data.Points, ip.Data.Responses
		kn   = ip.KnotSequence()
	)
	if len(X) != len(Y) {
		return fmt.Errorf("Data.Points and Data.Responses lengths differ: %d, %d", len(X), len(Y))
	}
	if len(X) == 0 {
		return
	}
	if !utils.AllFinite(X) || !utils.AllFinite(Y) {
		return fmt.Errorf("Data.Points and Data.Responses must be finite")
	}
	if len(kn) < 2 {
		return fmt.Errorf("Data.Points need a knot range, have knots %v", kn)
	}
	lo, hi := kn[0], kn[len(kn)-1]
	if xMin, xMax := floats.Min(X), floats.Max(X); xMin < lo || xMax > hi {
		return fmt.Errorf("Data.Points span [%v, %v], outside the knot range [%v, %v]", xMin, xMax, lo, hi)
	}
	return
}

func (ip *SplineParameters) KnotSequence() []float64 {
	if len(ip.Knots) != 0 {
		return ip.Knots
	}
	if len(ip.Domain) != 2 {
		return nil
	}
	return bspline.UniformKnots(ip.Domain[0], ip.Domain[1], ip.NumKnots)
}

func (ip *SplineParameters) RegressionConfig() (rc regression.Config, err error) {
	var pt regression.PriorType
	if pt, err = regression.NewPriorType(ip.Prior); err != nil {
		return
	}
	rc = regression.Config{
		Prior:          pt,
		InterceptScale: ip.Sampler.InterceptScale,
		CoefScale:      ip.Sampler.CoefScale,
		Shape:          ip.Sampler.Shape,
		Rate:           ip.Sampler.Rate,
		Seed:           ip.Sampler.Seed,
	}
	return
}

func syntheticFunction(name string) (f func(float64) float64, err error) {
	switch strings.ToLower(name) {
	case "sin":
		f = math.Sin
	case "cos":
		f = math.Cos
	case "cubic":
		f = func(x float64) float64 { return 0.01*x*x*x - 0.2*x }
	default:
		err = fmt.Errorf("unknown synthetic function %q, must be one of sin, cos, cubic", name)
	}
	return
}

// Observations returns the supplied data sorted by point, or noisy samples of
// the synthetic function spread evenly over the knot range when no data is given
func (ip *SplineParameters) Observations() (X, Y []float64, err error) {
	if len(ip.Data.Points) != 0 {
		if err = ip.validateData(); err != nil {
			return
		}
		X, Y = sortByPoint(ip.Data.Points, ip.Data.Responses)
		return
	}
	var (
		f   func(float64) float64
		kn  = ip.KnotSequence()
		src = rand.NewPCG(ip.Sampler.Seed, ip.Sampler.Seed+1)
	)
	if f, err = syntheticFunction(ip.Synthetic.Function); err != nil {
		return
	}
	eps := distuv.Normal{Mu: 0, Sigma: ip.Synthetic.Noise, Src: src}
	X = utils.Linspace(kn[0], kn[len(kn)-1], ip.Synthetic.NumPoints)
	Y = make([]float64, len(X))
	for i, x := range X {
		Y[i] = f(x) + eps.Rand()
	}
	return
}

// sortByPoint returns copies of X and Y ordered by increasing X
func sortByPoint(x, y []float64) (X, Y []float64) {
	var (
		inds = make([]int, len(x))
	)
	X = make([]float64, len(x))
	copy(X, x)
	floats.Argsort(X, inds)
	Y = make([]float64, len(y))
	for i, ind := range inds {
		Y[i] = y[ind]
	}
	return
}

func (ip *SplineParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Order (degree %d)\n", ip.Order, ip.Order-1)
	fmt.Printf("%v\t= Knots\n", ip.KnotSequence())
	fmt.Printf("[%s]\t\t\t= Prior\n", ip.Prior)
	if len(ip.Data.Points) != 0 {
		fmt.Printf("[%d]\t\t\t\t= Observations\n", len(ip.Data.Points))
	} else {
		fmt.Printf("[%d]\t\t\t\t= Synthetic observations of %s, noise %8.5f\n",
			ip.Synthetic.NumPoints, ip.Synthetic.Function, ip.Synthetic.Noise)
	}
	fmt.Printf("[%d, %d, %d]\t\t= Iterations, BurnIn, Thin\n",
		ip.Sampler.Iterations, ip.Sampler.BurnIn, ip.Sampler.Thin)
}
