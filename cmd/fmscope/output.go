package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fmscope/measure/fmstereo"
)

// jsonOutput is the document written by --format json.
type jsonOutput struct {
	Config fmstereo.Config `json:"config"`
	View   fmstereo.View   `json:"view"`
	Report fmstereo.Report `json:"report"`
}

func writeJSON(cmd *cobra.Command, cfg fmstereo.Config, res *fmstereo.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())

	return enc.Encode(jsonOutput{Config: cfg, View: res.View(), Report: res.Report})
}

func writeText(cmd *cobra.Command, cfg fmstereo.Config, res *fmstereo.Result) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rep := res.Report
	dev := rep.Deviation

	fmt.Fprintf(tw, "Station\t%.3f MHz\n", cfg.StationHz/1e6)
	fmt.Fprintf(tw, "Resampling\t%s to %.0f Hz, %d samples\n", res.Ratio, res.Rate, res.Samples)
	fmt.Fprintf(tw, "Window\t%s, noise bandwidth %.2f Hz\n", res.Window, res.NoiseBandwidthHz)
	fmt.Fprintf(tw, "Deviation\tpeak %.1f kHz (%.0f%%), rms %.1f kHz, carrier offset %+.0f Hz\n",
		dev.PeakHz/1e3, 100*dev.Modulation, dev.RMSHz/1e3, dev.CarrierOffsetHz)
	fmt.Fprintf(tw, "Floor\t%.1f dB\n", rep.FloorDB)
	fmt.Fprintf(tw, "Stereo\t%s\n", yesNo(rep.Stereo()))
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Landmark\tNominal [kHz]\tPeak [kHz]\tLevel [dB]\tProminence [dB]\tInjection\tDetected\n")
	fmt.Fprintf(tw, "--------\t-------------\t----------\t----------\t---------------\t---------\t--------\n")

	for _, lm := range rep.Landmarks {
		fmt.Fprintf(tw, "%s\t%.1f\t%.3f\t%.1f\t%.1f\t%.1f%%\t%s\n",
			lm.Name, lm.FreqHz/1e3, lm.Peak.Freq/1e3, lm.LevelDB, lm.ProminenceDB, 100*lm.Injection, yesNo(lm.Detected))
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Region\tBand [kHz]\tPower [dB]\tPeak [kHz]\tCentroid [kHz]\t-3 dB BW [Hz]\tFlatness\n")
	fmt.Fprintf(tw, "------\t----------\t----------\t----------\t--------------\t-------------\t--------\n")

	for _, rg := range rep.Regions {
		s := rg.Stats
		fmt.Fprintf(tw, "%s\t%.0f-%.0f\t%.1f\t%.3f\t%.2f\t%.0f\t%.3f\n",
			rg.Name, s.Band.Low/1e3, s.Band.High/1e3, s.PowerDB, s.Peak.Freq/1e3, s.Centroid/1e3, s.Bandwidth, s.Flatness)
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
