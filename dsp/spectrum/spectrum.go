package spectrum

import (
	"errors"
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fmscope/dsp/window"
)

var (
	// ErrInvalidSegment indicates a non-positive segment or frame length.
	ErrInvalidSegment = errors.New("spectrum: invalid segment length")
	// ErrInvalidOverlap indicates an overlap outside [0, segment length).
	ErrInvalidOverlap = errors.New("spectrum: invalid overlap")
	// ErrTooShort indicates a signal shorter than one segment or FFT.
	ErrTooShort = errors.New("spectrum: signal too short")
	// ErrInvalidBand indicates a band with Low > High or non-finite edges.
	ErrInvalidBand = errors.New("spectrum: invalid band")
	// ErrNoBins indicates that a query range holds no frequency bins.
	ErrNoBins = errors.New("spectrum: no bins in range")
)

// Curve is a one-sided spectrum: Values[k] belongs to Freqs[k] in Hz.
type Curve struct {
	Freqs  []float64 `json:"freqs"`
	Values []float64 `json:"values"`
}

// Len returns the number of bins.
func (c Curve) Len() int { return len(c.Freqs) }

// Resolution returns the bin spacing in Hz, or 0 with fewer than two bins.
func (c Curve) Resolution() float64 {
	if len(c.Freqs) < 2 {
		return 0
	}

	return c.Freqs[1] - c.Freqs[0]
}

// Spectrogram is a time-frequency power map in dB. Power[k][i] is the level
// of frequency Freqs[k] in the frame centred at Times[i].
type Spectrogram struct {
	Freqs []float64   `json:"freqs"`
	Times []float64   `json:"times"`
	Power [][]float64 `json:"power"`
}

// Option configures an estimator.
type Option func(*options)

type options struct {
	window  window.Type
	winOpts []window.Option
	detrend bool
}

// WithWindow replaces the estimator's default window.
func WithWindow(t window.Type, opts ...window.Option) Option {
	return func(o *options) {
		o.window = t
		o.winOpts = opts
	}
}

// WithoutDetrend keeps each segment's mean instead of removing it.
func WithoutDetrend() Option {
	return func(o *options) {
		o.detrend = false
	}
}

func applyOptions(base options, opts []Option) options {
	for _, opt := range opts {
		if opt != nil {
			opt(&base)
		}
	}

	return base
}

// transform computes forward DFTs of one fixed length.
type transform struct {
	n    int
	plan *algofft.Plan[complex128]
}

func newTransform(n int) (*transform, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan for length %d: %w", n, err)
	}

	return &transform{n: n, plan: plan}, nil
}

// forward transforms buf in place.
func (t *transform) forward(buf []complex128) ([]complex128, error) {
	if err := t.plan.Forward(buf, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)

	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}

	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Magnitude returns |X[k]| for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(out, re, im)
	putScratch(buf)

	return out
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(out, re, im)
	putScratch(buf)

	return out
}
