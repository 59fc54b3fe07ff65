package testutil

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// GaussianNoise generates zero-mean Gaussian noise with a fixed seed.
func GaussianNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// ComplexTone generates amplitude*exp(j*2*pi*freqHz*n/sampleRate).
func ComplexTone(freqHz, sampleRate, amplitude float64, length int) core.IQ {
	out := core.IQ{Samples: make([]complex128, length), SampleRate: sampleRate}
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out.Samples {
		out.Samples[i] = cmplx.Rect(amplitude, step*float64(i))
	}
	return out
}

// ComplexNoise generates circular Gaussian noise with a fixed seed.
func ComplexNoise(seed int64, sigma, sampleRate float64, length int) core.IQ {
	out := core.IQ{Samples: make([]complex128, length), SampleRate: sampleRate}
	rng := rand.New(rand.NewSource(seed))
	for i := range out.Samples {
		out.Samples[i] = complex(rng.NormFloat64()*sigma, rng.NormFloat64()*sigma)
	}
	return out
}

// RealSignal wraps samples in a core.Real buffer.
func RealSignal(samples []float64, sampleRate float64) core.Real {
	return core.Real{Samples: samples, SampleRate: sampleRate}
}
