package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/window"
)

// FFT returns the one-sided magnitude spectrum of the first size samples of
// sig in dB, 20*log10(|X|+1e-12). The default window is a symmetric Hann and
// no detrending is applied. Bins are spaced Fs/size apart.
func FFT(sig core.Real, size int, opts ...Option) (Curve, error) {
	if err := sig.Validate(); err != nil {
		return Curve{}, err
	}

	if size <= 0 {
		return Curve{}, fmt.Errorf("%w: fft size %d", ErrInvalidSegment, size)
	}

	if len(sig.Samples) < size {
		return Curve{}, fmt.Errorf("%w: %d samples for fft size %d", ErrTooShort, len(sig.Samples), size)
	}

	o := applyOptions(options{window: window.TypeHann}, opts)

	seg := make([]float64, size)
	copy(seg, sig.Samples[:size])

	if o.detrend {
		mean := 0.0
		for _, v := range seg {
			mean += v
		}

		mean /= float64(size)
		for i := range seg {
			seg[i] -= mean
		}
	}

	window.Apply(o.window, seg, o.winOpts...)

	buf := make([]complex128, size)
	for i, v := range seg {
		buf[i] = complex(v, 0)
	}

	xf, err := newTransform(size)
	if err != nil {
		return Curve{}, err
	}

	spec, err := xf.forward(buf)
	if err != nil {
		return Curve{}, err
	}

	bins := size/2 + 1
	mag := Magnitude(spec[:bins])
	for k := range mag {
		mag[k] = core.MagnitudeToDBFloor(mag[k])
	}

	return Curve{Freqs: BinFreqs(size, sig.SampleRate), Values: mag}, nil
}
