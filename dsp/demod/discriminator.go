package demod

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// ErrTooShort indicates a buffer with fewer than two samples.
var ErrTooShort = errors.New("demod: need at least two samples")

// Discriminate FM-demodulates in. The output holds len(in)-1 phase steps in
// radians at the input sample rate; the first input sample has no
// predecessor and produces no output.
func Discriminate(in core.IQ) (core.Real, error) {
	if err := in.Validate(); err != nil {
		return core.Real{}, err
	}

	if len(in.Samples) < 2 {
		return core.Real{}, fmt.Errorf("%w: got %d", ErrTooShort, len(in.Samples))
	}

	out := core.Real{Samples: make([]float64, len(in.Samples)-1), SampleRate: in.SampleRate}
	for k := range out.Samples {
		out.Samples[k] = principal(cmplx.Phase(in.Samples[k+1] * cmplx.Conj(in.Samples[k])))
	}

	return out, nil
}

// principal folds atan2's -pi onto +pi so results lie in (-pi, pi].
func principal(phi float64) float64 {
	if phi <= -math.Pi {
		return math.Pi
	}

	return phi
}

// DeviationHz converts a discriminator output from radians per sample to
// instantaneous frequency deviation in Hz.
func DeviationHz(sig core.Real) core.Real {
	out := core.Real{Samples: make([]float64, len(sig.Samples)), SampleRate: sig.SampleRate}
	scale := sig.SampleRate / (2 * math.Pi)
	for i, v := range sig.Samples {
		out.Samples[i] = v * scale
	}

	return out
}
