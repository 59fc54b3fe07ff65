package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

func makeBenchSignal(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.3*math.Sin(0.01*float64(i)) + 0.05*math.Sin(0.37*float64(i))
	}

	return out
}

func BenchmarkCalculate(b *testing.B) {
	sig := makeBenchSignal(1 << 16)

	b.ReportAllocs()
	b.SetBytes(int64(len(sig) * 8))

	for b.Loop() {
		Calculate(sig)
	}
}

func BenchmarkDeviationOf(b *testing.B) {
	sig := core.Real{Samples: makeBenchSignal(1 << 16), SampleRate: 200e3}

	b.ReportAllocs()

	for b.Loop() {
		if _, err := DeviationOf(sig, 75e3); err != nil {
			b.Fatal(err)
		}
	}
}
