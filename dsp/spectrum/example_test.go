package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
	"github.com/cwbudde/algo-fmscope/internal/testutil"
)

func ExampleMagnitude() {
	bins := []complex128{1 + 0i, 0 + 1i, -1 + 0i}
	mag := spectrum.Magnitude(bins)
	fmt.Printf("%.1f %.1f %.1f\n", mag[0], mag[1], mag[2])
	// Output:
	// 1.0 1.0 1.0
}

func ExampleWelch() {
	sig := core.Real{Samples: testutil.DeterministicSine(19000, 200e3, 1, 1<<16), SampleRate: 200e3}

	psd, _ := spectrum.Welch(sig, spectrum.WelchConfig{SegmentLength: 16384, Overlap: 8192})
	peak, _ := psd.Max()
	fmt.Printf("bins=%d peak=%.0f Hz\n", psd.Len(), peak.Freq)
	// Output:
	// bins=8193 peak=18994 Hz
}

func ExampleCurve_Mask() {
	c := spectrum.Curve{
		Freqs:  []float64{0, 20e3, 40e3, 60e3, 80e3, 100e3},
		Values: []float64{1, 2, 3, 4, 5, 6},
	}

	view := c.Mask(spectrum.Band{Low: 0, High: 60e3})
	fmt.Println(view.Freqs)
	// Output:
	// [0 20000 40000 60000]
}
