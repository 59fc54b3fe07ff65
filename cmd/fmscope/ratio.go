package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fmscope/dsp/resample"
)

func newRatioCmd() *cobra.Command {
	var (
		in, out float64
		maxDen  int
	)

	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "Print the rational resampling factor between two rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := resample.RatioForRates(in, out, resample.WithMaxDenominator(maxDen))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", r)

			return err
		},
	}

	cmd.Flags().Float64Var(&in, "in", 2.048e6, "input sample rate in Hz")
	cmd.Flags().Float64Var(&out, "out", 200e3, "output sample rate in Hz")
	cmd.Flags().IntVar(&maxDen, "max-denominator", 4096, "largest up or down factor")

	return cmd
}
