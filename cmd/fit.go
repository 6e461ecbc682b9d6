/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gobspline/InputParameters"
	"github.com/notargets/gobspline/bspline"
	"github.com/notargets/gobspline/regression"
	"github.com/notargets/gobspline/utils"
)

type FitRun struct {
	ICFile     string
	PrintSteps int // Print every PrintSteps'th grid point of the fitted curve, 0 disables
}

// FitCmd represents the fit command
var FitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a B-spline regression to data and report posterior summaries",
	Long: `
Reads a YAML input file, builds the B-spline design matrix at the observation
points and samples the posterior of the intercept, spline coefficients and
noise scale. A random walk prior links consecutive coefficients.

gobspline fit -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fr := &FitRun{
			ICFile:     viper.GetString("fit.inputConditionsFile"),
			PrintSteps: viper.GetInt("fit.printSteps"),
		}
		ip := processInput(fr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := RunFit(ctx, os.Stdout, ip, fr); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(FitCmd)
	FitCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Order\n\t- Knots\n\t- Prior")
	FitCmd.Flags().IntP("printSteps", "s", 10, "print every n'th point of the fitted curve, 0 for none")
	for _, name := range []string{"inputConditionsFile", "printSteps"} {
		_ = viper.BindPFlag("fit."+name, FitCmd.Flags().Lookup(name))
	}
}

func processInput(fr *FitRun) (ip *InputParameters.SplineParameters) {
	var (
		err error
	)
	if len(fr.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Sine fit"
Order: 4 # degree + 1
NumKnots: 11
Domain: [-5, 5]
Prior: RandomWalk # Can be "Fixed"
# Data:           # Replaces Synthetic when given
#   Points: [-4.5, -1, 0, 2.5]
#   Responses: [0.9, -0.8, 0.1, 0.6]
Synthetic:
  NumPoints: 101
  Noise: 0.2
  Function: sin
Sampler:
  Iterations: 2000
  BurnIn: 500
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(fr.ICFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	ip = InputParameters.NewSplineParameters()
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s: %s\n", fr.ICFile, err.Error())
		os.Exit(1)
	}
	return
}

func RunFit(ctx context.Context, w io.Writer, ip *InputParameters.SplineParameters, fr *FitRun) (tr *regression.Trace, err error) {
	var (
		b      *bspline.Basis
		dm     *bspline.DesignMatrix
		model  *regression.Model
		rc     regression.Config
		X, Y   []float64
		pr     *regression.Prediction
		start  = time.Now()
		sp     = ip.Sampler
		lo, hi float64
	)
	ip.Print()
	if b, err = bspline.NewBasis(ip.KnotSequence(), ip.Order); err != nil {
		return
	}
	if X, Y, err = ip.Observations(); err != nil {
		return
	}
	if dm, err = b.DesignMatrix(X); err != nil {
		return
	}
	if rc, err = ip.RegressionConfig(); err != nil {
		return
	}
	if model, err = regression.NewModel(dm, Y, rc); err != nil {
		return
	}
	fmt.Fprintf(w, "Sampling %d parameters from %d observations, %s prior\n",
		model.NumParams(), len(Y), rc.Prior)
	if tr, err = model.Sample(ctx, sp.Iterations, sp.BurnIn, sp.Thin); err != nil {
		return
	}
	fmt.Fprintf(w, "Kept %d draws in %v, %s\n", tr.Len(), time.Since(start), utils.GetMemUsage())
	tr.Summary().Print(w)
	if fr == nil || fr.PrintSteps <= 0 {
		return
	}
	lo, hi = b.Domain()
	if dm, err = b.DesignMatrix(utils.Linspace(lo, hi, ip.GridPoints)); err != nil {
		return
	}
	if pr, err = tr.Predict(dm); err != nil {
		return
	}
	fmt.Fprintf(w, "%12s %12s %12s %12s\n", "x", "mean", "5%", "95%")
	for j := 0; j < len(pr.Points); j += fr.PrintSteps {
		fmt.Fprintf(w, "%12.5f %12.5f %12.5f %12.5f\n", pr.Points[j], pr.Mean[j], pr.Lower[j], pr.Upper[j])
	}
	return
}
