// Package iq provides sample-wise operations on complex baseband buffers:
// frequency shifting and amplitude limiting.
package iq

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// DefaultLimiterEpsilon keeps [Limit] finite on exact-zero samples.
const DefaultLimiterEpsilon = 1e-6

// Shift mixes in down by shiftHz, multiplying sample n by
// exp(-j*2*pi*shiftHz*n/Fs). A zero shift reproduces the input exactly.
func Shift(in core.IQ, shiftHz float64) core.IQ {
	out := core.IQ{Samples: make([]complex128, len(in.Samples)), SampleRate: in.SampleRate}
	if in.SampleRate <= 0 {
		copy(out.Samples, in.Samples)
		return out
	}

	step := -2 * math.Pi * shiftHz / in.SampleRate
	for n, x := range in.Samples {
		// The phase is recomputed per sample rather than accumulated by
		// repeated rotation so rounding error does not grow with n.
		s, c := math.Sincos(step * float64(n))
		out.Samples[n] = x * complex(c, s)
	}

	return out
}

// Limit normalizes each sample to (approximately) unit magnitude, keeping
// its phase: y = x / (|x| + DefaultLimiterEpsilon).
func Limit(in core.IQ) core.IQ {
	return LimitWithEpsilon(in, DefaultLimiterEpsilon)
}

// LimitWithEpsilon is [Limit] with an explicit stabilizing constant.
func LimitWithEpsilon(in core.IQ, epsilon float64) core.IQ {
	out := core.IQ{Samples: make([]complex128, len(in.Samples)), SampleRate: in.SampleRate}
	for i, x := range in.Samples {
		out.Samples[i] = x / complex(cmplx.Abs(x)+epsilon, 0)
	}

	return out
}
