// Command fmscope demodulates an FM broadcast and reports its stereo
// multiplex spectrum.
//
// Usage:
//
//	fmscope analyze [flags]
//	fmscope ratio --in 2.048e6 --out 200e3
//
// Examples:
//
//	fmscope analyze --source synthetic
//	fmscope analyze --source rtltcp://127.0.0.1:1234 --station 98.5e6 --gain 28
//	fmscope analyze --source capture.cu8 --format json > spectrum.json
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "fmscope",
		Short:         "Inspect the baseband spectrum of an FM broadcast",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newAnalyzeCmd(), newRatioCmd())

	return root
}
