package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/window"
)

// WelchConfig sets the segmentation of [Welch].
type WelchConfig struct {
	SegmentLength int
	Overlap       int
}

// Welch estimates the power spectral density of sig in units²/Hz.
//
// The signal is cut into segments of SegmentLength samples that share
// Overlap samples. Each segment has its mean removed, is weighted by a
// periodic Hann window and transformed; the one-sided, density-scaled
// periodograms are averaged.
func Welch(sig core.Real, cfg WelchConfig, opts ...Option) (Curve, error) {
	if err := sig.Validate(); err != nil {
		return Curve{}, err
	}

	f, err := newFramer(len(sig.Samples), cfg.SegmentLength, cfg.Overlap, sig.SampleRate, opts)
	if err != nil {
		return Curve{}, err
	}

	acc := make([]float64, f.bins())
	for i := range f.frames {
		p, err := f.periodogram(sig.Samples, i)
		if err != nil {
			return Curve{}, err
		}

		for k, v := range p {
			acc[k] += v
		}
	}

	inv := 1 / float64(f.frames)
	for k := range acc {
		acc[k] *= inv
	}

	return Curve{Freqs: f.freqs(), Values: acc}, nil
}

// NoiseBandwidth returns the equivalent noise bandwidth in Hz of one
// Welch or spectrogram bin: the window's ENBW in bins times rate/length.
// It uses the same window the estimators would for opts.
func NoiseBandwidth(length int, rate float64, opts ...Option) (float64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSegment, length)
	}

	o := applyOptions(framedDefaults(), opts)

	enbw, err := window.EquivalentNoiseBandwidth(window.Generate(o.window, length, o.winOpts...))
	if err != nil {
		return 0, err
	}

	return enbw * rate / float64(length), nil
}

func framedDefaults() options {
	return options{
		window:  window.TypeHann,
		winOpts: []window.Option{window.WithPeriodic()},
		detrend: true,
	}
}

// framer cuts a signal into windowed segments and turns each into a
// one-sided density periodogram.
type framer struct {
	length int
	step   int
	frames int
	rate   float64

	opts   options
	win    []float64
	scale  float64
	xf     *transform
	buffer []complex128
	frame  []float64
}

func newFramer(n, length, overlap int, rate float64, opts []Option) (*framer, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegment, length)
	}

	if overlap < 0 || overlap >= length {
		return nil, fmt.Errorf("%w: %d for segment length %d", ErrInvalidOverlap, overlap, length)
	}

	if n < length {
		return nil, fmt.Errorf("%w: %d samples for segment length %d", ErrTooShort, n, length)
	}

	o := applyOptions(framedDefaults(), opts)

	xf, err := newTransform(length)
	if err != nil {
		return nil, err
	}

	step := length - overlap
	win := window.Generate(o.window, length, o.winOpts...)

	return &framer{
		length: length,
		step:   step,
		frames: (n-length)/step + 1,
		rate:   rate,
		opts:   o,
		win:    win,
		scale:  1 / (rate * window.SumSquares(win)),
		xf:     xf,
		buffer: make([]complex128, length),
		frame:  make([]float64, length),
	}, nil
}

func (f *framer) bins() int { return f.length/2 + 1 }

func (f *framer) freqs() []float64 {
	return BinFreqs(f.length, f.rate)
}

// center returns the time of frame i's middle sample in seconds.
func (f *framer) center(i int) float64 {
	return (float64(f.length)/2 + float64(i*f.step)) / f.rate
}

// periodogram returns the one-sided density periodogram of frame i.
func (f *framer) periodogram(x []float64, i int) ([]float64, error) {
	seg := x[i*f.step : i*f.step+f.length]

	mean := 0.0
	if f.opts.detrend {
		for _, v := range seg {
			mean += v
		}

		mean /= float64(len(seg))
	}

	for j, v := range seg {
		f.frame[j] = v - mean
	}

	if err := window.ApplyCoefficients(f.frame, f.frame, f.win); err != nil {
		return nil, err
	}

	for j, v := range f.frame {
		f.buffer[j] = complex(v, 0)
	}

	spec, err := f.xf.forward(f.buffer)
	if err != nil {
		return nil, err
	}

	p := Power(spec[:f.bins()])
	for k := range p {
		p[k] *= f.scale
	}

	// Fold negative frequencies onto the positive side. DC and, for even
	// lengths, the Nyquist bin have no mirror.
	last := len(p)
	if f.length%2 == 0 {
		last--
	}

	for k := 1; k < last; k++ {
		p[k] *= 2
	}

	return p, nil
}
