package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
	// ErrRateMismatch indicates that no bounded ratio reproduces the
	// requested output rate.
	ErrRateMismatch = errors.New("resample: output rate not reachable")
)

const (
	defaultMaxDenominator = 4096
	// rateTolerance is the relative error allowed between the requested
	// output rate and the one produced by the derived ratio.
	rateTolerance = 1e-9
)

// Ratio is a reduced rational conversion factor Up/Down.
type Ratio struct {
	Up   int
	Down int
}

// OutputRate returns the sample rate produced from inRate.
func (r Ratio) OutputRate(inRate float64) float64 {
	return inRate * float64(r.Up) / float64(r.Down)
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Up, r.Down)
}

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation.
	QualityBest
)

// Profile exposes default filter parameters for each quality mode.
type Profile struct {
	ZeroCrossings     int
	CutoffScale       float64
	KaiserBeta        float64
	NominalStopbandDB float64
}

// QualityProfile returns the default profile used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{ZeroCrossings: 6, CutoffScale: 1, KaiserBeta: 5.0, NominalStopbandDB: 50}
	case QualityBest:
		return Profile{ZeroCrossings: 16, CutoffScale: 0.95, KaiserBeta: 8.6, NominalStopbandDB: 85}
	default:
		return Profile{ZeroCrossings: 10, CutoffScale: 1, KaiserBeta: 5.0, NominalStopbandDB: 55}
	}
}

type config struct {
	quality       Quality
	zeroCrossings int
	cutoffScale   float64
	kaiserBeta    float64
	maxDen        int
}

// Option configures the resampler.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithZeroCrossings overrides the number of sinc zero crossings kept on each
// side of the prototype center.
func WithZeroCrossings(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.zeroCrossings = n
		}
	}
}

// WithCutoffScale overrides normalized cutoff scaling in range (0, 1].
// 1.0 equals the theoretical anti-aliasing cutoff.
func WithCutoffScale(v float64) Option {
	return func(cfg *config) {
		if v > 0 && v <= 1 {
			cfg.cutoffScale = v
		}
	}
}

// WithKaiserBeta overrides the Kaiser window beta parameter.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta >= 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// WithMaxDenominator caps up and down when deriving a ratio from rates.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func defaultConfig() config {
	return config{
		quality:    QualityBalanced,
		kaiserBeta: -1,
		maxDen:     defaultMaxDenominator,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p := QualityProfile(cfg.quality)
	if cfg.zeroCrossings <= 0 {
		cfg.zeroCrossings = p.ZeroCrossings
	}

	if cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		cfg.cutoffScale = p.CutoffScale
	}

	if cfg.kaiserBeta < 0 {
		cfg.kaiserBeta = p.KaiserBeta
	}

	if cfg.maxDen <= 0 {
		cfg.maxDen = defaultMaxDenominator
	}

	return cfg
}

// Resampler performs rational sample-rate conversion using a polyphase FIR.
// A Resampler holds no signal state and may be shared between goroutines.
type Resampler struct {
	ratio Ratio

	quality Quality
	profile Profile

	taps   []float64
	phases [][]float64
	delay  int
}

// NewRational creates a resampler for ratio up/down. The ratio is reduced
// by its greatest common divisor first, so 10/10 behaves as 1/1.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, fmt.Errorf("%w: %d/%d", ErrInvalidRatio, up, down)
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)

	taps, phases, err := designPolyphaseFIR(up, down, cfg)
	if err != nil {
		return nil, err
	}

	return &Resampler{
		ratio:   Ratio{Up: up, Down: down},
		quality: cfg.quality,
		profile: QualityProfile(cfg.quality),
		taps:    taps,
		phases:  phases,
		delay:   (len(taps) - 1) / 2,
	}, nil
}

// NewForRates creates a resampler converting inRate to outRate.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	ratio, err := RatioForRates(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	return NewRational(ratio.Up, ratio.Down, opts...)
}

// RatioForRates derives the reduced ratio converting inRate to outRate.
// Integral rates are reduced exactly. Other rates are approximated by
// continued fractions bounded by [WithMaxDenominator]. The ratio must
// reproduce outRate to within a relative error of 1e-9.
func RatioForRates(inRate, outRate float64, opts ...Option) (Ratio, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return Ratio{}, fmt.Errorf("%w: %v -> %v", ErrInvalidRate, inRate, outRate)
	}

	cfg := newConfig(opts)

	var up, down int
	if a, b, ok := integralPair(outRate, inRate); ok {
		g := gcd64(a, b)
		if a/g <= int64(cfg.maxDen) && b/g <= int64(cfg.maxDen) {
			up, down = int(a/g), int(b/g)
		}
	}

	if up == 0 {
		up, down = approximateRatio(outRate/inRate, cfg.maxDen)
	}

	ratio := Ratio{Up: up, Down: down}

	got := ratio.OutputRate(inRate)
	if math.Abs(got-outRate) > rateTolerance*outRate {
		return Ratio{}, fmt.Errorf("%w: %v -> %v (closest %s gives %v)",
			ErrRateMismatch, inRate, outRate, ratio, got)
	}

	return ratio, nil
}

// Resample converts input using ratio up/down as a one-shot helper.
func Resample(input core.IQ, up, down int, opts ...Option) (core.IQ, error) {
	r, err := NewRational(up, down, opts...)
	if err != nil {
		return core.IQ{}, err
	}

	return r.Process(input)
}

// Process converts a whole buffer. Output sample m is the prototype centered
// on upsampled time m*down, evaluated only over the taps that meet non-zero
// upsampled samples.
func (r *Resampler) Process(input core.IQ) (core.IQ, error) {
	if err := input.Validate(); err != nil {
		return core.IQ{}, err
	}

	up, down := r.ratio.Up, r.ratio.Down
	n := len(input.Samples)
	x := input.Samples

	out := make([]complex128, r.OutputLen(n))

	for m := range out {
		t := m*down + r.delay
		taps := r.phases[t%up]
		base := t / up

		// Restrict i so that base-i stays inside the buffer.
		lo := max(0, base-(n-1))
		hi := min(len(taps), base+1)

		var acc complex128
		for i := lo; i < hi; i++ {
			c := taps[i]
			v := x[base-i]
			acc += complex(c*real(v), c*imag(v))
		}

		out[m] = acc
	}

	return core.IQ{Samples: out, SampleRate: r.ratio.OutputRate(input.SampleRate)}, nil
}

// OutputLen returns ceil(n*up/down), the number of samples produced for an
// n-sample input.
func (r *Resampler) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}

	return (n*r.ratio.Up + r.ratio.Down - 1) / r.ratio.Down
}

// Ratio returns the reduced conversion factors.
func (r *Resampler) Ratio() Ratio {
	return r.ratio
}

// Quality returns the configured quality mode.
func (r *Resampler) Quality() Quality {
	return r.quality
}

// Profile returns the default profile of the configured quality mode.
func (r *Resampler) Profile() Profile {
	return r.profile
}

// TapsPerPhase returns taps in the longest polyphase branch.
func (r *Resampler) TapsPerPhase() int {
	if len(r.phases) == 0 {
		return 0
	}

	return len(r.phases[0])
}

// Delay returns the prototype center in upsampled samples. The output grid
// is already compensated for it.
func (r *Resampler) Delay() int {
	return r.delay
}

// Prototype returns a copy of the underlying prototype FIR taps.
func (r *Resampler) Prototype() []float64 {
	out := make([]float64, len(r.taps))
	copy(out, r.taps)

	return out
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
