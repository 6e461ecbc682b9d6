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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gobspline/bspline"
	"github.com/notargets/gobspline/utils"
)

type BasisRun struct {
	Order     int
	Knots     []float64
	NumPoints int
	Sparse    bool
}

// BasisCmd represents the basis command
var BasisCmd = &cobra.Command{
	Use:   "basis",
	Short: "Evaluate a B-spline basis and print its design matrix",
	Long: `
Extends the knot sequence, evaluates every basis function of the requested
order at evenly spaced points over the knot range and prints the design
matrix, one row per point, along with the row sums.

gobspline basis -k 3 --knots=0,1,2,3 -n 7`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			br  = &BasisRun{}
			err error
		)
		br.Order = viper.GetInt("basis.order")
		br.NumPoints = viper.GetInt("basis.points")
		br.Sparse = viper.GetBool("basis.sparse")
		if br.Knots, err = parseFloats(viper.GetString("basis.knots")); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if len(br.Knots) == 0 {
			br.Knots = bspline.UniformKnots(-5, 5, 11)
		}
		if err = RunBasis(os.Stdout, br); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(BasisCmd)
	BasisCmd.Flags().IntP("order", "k", 4, "spline order (degree + 1)")
	BasisCmd.Flags().String("knots", "", "comma separated knots, default is 11 uniform knots over [-5, 5]")
	BasisCmd.Flags().IntP("points", "n", 11, "number of evaluation points over the knot range")
	BasisCmd.Flags().Bool("sparse", false, "report the non-zero structure of the design matrix")
	for _, name := range []string{"order", "knots", "points", "sparse"} {
		_ = viper.BindPFlag("basis."+name, BasisCmd.Flags().Lookup(name))
	}
}

func RunBasis(w io.Writer, br *BasisRun) (err error) {
	var (
		b  *bspline.Basis
		dm *bspline.DesignMatrix
	)
	if b, err = bspline.NewBasis(br.Knots, br.Order); err != nil {
		return
	}
	if br.NumPoints < 1 {
		return fmt.Errorf("%w: need at least one evaluation point", bspline.ErrInvalidInput)
	}
	lo, hi := b.Domain()
	if dm, err = b.DesignMatrix(utils.Linspace(lo, hi, br.NumPoints)); err != nil {
		return
	}
	fmt.Fprintf(w, "Order %d, %d basis functions, extended knots %v\n", b.Order, b.NumBasis(), b.Extended)
	fmt.Fprintf(w, "points = \n%v\n", mat.Formatted(utils.NewVector(dm.NumPoints(), dm.Points), mat.Squeeze()))
	fmt.Fprintf(w, "B' = \n%v\n", mat.Formatted(dm.Transpose().M, mat.Squeeze()))
	sums := dm.SumCols()
	fmt.Fprintf(w, "row sums = \n%v\n", mat.Formatted(sums, mat.Squeeze()))
	fmt.Fprintf(w, "values in [%v, %v], row sums in [%v, %v], total %v over %d points\n",
		dm.Min(), dm.Max(), sums.Min(), sums.Max(), sums.Sum(), dm.NumPoints())
	if br.Sparse {
		sp := dm.Sparse()
		fmt.Fprintf(w, "non-zeros = %d of %d (at most %d per point)\n",
			sp.NNZ(), dm.NumBasis()*dm.NumPoints(), b.Order)
		for i := 0; i < dm.NumBasis(); i++ {
			support := dm.Row(i).Find(utils.Greater, 0)
			if len(support) == 0 {
				fmt.Fprintf(w, "B%d is zero at every point\n", i)
				continue
			}
			fmt.Fprintf(w, "B%d non-zero at points %d..%d\n", i, support[0], support[len(support)-1])
		}
	}
	return
}

func parseFloats(list string) (f []float64, err error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return
	}
	for _, field := range strings.Split(list, ",") {
		var val float64
		if val, err = strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return nil, fmt.Errorf("unable to parse %q as a number: %w", field, err)
		}
		f = append(f, val)
	}
	return
}
