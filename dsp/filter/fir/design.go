package fir

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/window"
)

var (
	// ErrInvalidTaps indicates a tap count that is not a positive odd number.
	ErrInvalidTaps = errors.New("fir: tap count must be odd and > 0")
	// ErrInvalidCutoff indicates a cutoff outside the open interval (0, Nyquist).
	ErrInvalidCutoff = errors.New("fir: cutoff must be inside (0, nyquist)")
)

// DesignOption configures [LowPass].
type DesignOption func(*designConfig)

type designConfig struct {
	window window.Type
	alpha  float64
}

// WithWindow selects the design window. The alpha argument is forwarded to
// parametric windows (Kaiser beta, Tukey fraction) and ignored otherwise.
func WithWindow(t window.Type, alpha float64) DesignOption {
	return func(cfg *designConfig) {
		cfg.window = t
		cfg.alpha = alpha
	}
}

// LowPass designs a linear-phase low-pass filter by the window method.
//
// cutoff is normalized to Nyquist, so 1.0 is half the sample rate. The ideal
// impulse response is truncated to numTaps samples centred on (numTaps-1)/2,
// weighted by a symmetric Hamming window (or the one set by [WithWindow]),
// and scaled so the taps sum to exactly 1 (unity DC gain).
func LowPass(numTaps int, cutoff float64, opts ...DesignOption) ([]float64, error) {
	if numTaps <= 0 || numTaps%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTaps, numTaps)
	}

	if !(cutoff > 0 && cutoff < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCutoff, cutoff)
	}

	cfg := designConfig{window: window.TypeHamming}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	win := window.Generate(cfg.window, numTaps, window.WithAlpha(cfg.alpha))

	taps := make([]float64, numTaps)
	center := 0.5 * float64(numTaps-1)

	var sum float64
	for n := range taps {
		t := float64(n) - center
		taps[n] = cutoff * sinc(cutoff*t) * win[n]
		sum += taps[n]
	}

	if sum == 0 {
		return nil, errors.New("fir: designed zero-sum filter")
	}

	for i := range taps {
		taps[i] /= sum
	}

	return taps, nil
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}
