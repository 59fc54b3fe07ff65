package fmstereo

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/capture"
	"github.com/cwbudde/algo-fmscope/dsp/filter/fir"
	"github.com/cwbudde/algo-fmscope/dsp/resample"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
	"github.com/cwbudde/algo-fmscope/dsp/window"
)

var (
	// ErrInvalidConfig wraps every configuration violation.
	ErrInvalidConfig = errors.New("fmstereo: invalid configuration")
	// ErrInvalidEpsilon indicates a non-positive limiter constant.
	ErrInvalidEpsilon = errors.New("fmstereo: invalid limiter epsilon")
	// ErrNonFinite indicates NaN or Inf in the demodulated signal.
	ErrNonFinite = errors.New("fmstereo: non-finite demodulator output")
)

// Config holds every parameter of one analysis run.
type Config struct {
	// StationHz is the carrier frequency of the station.
	StationHz float64 `json:"station_hz"`
	// SampleRate is the complex capture rate.
	SampleRate float64 `json:"sample_rate"`
	GainDB     float64 `json:"gain_db"`
	// Samples is the number of complex samples captured.
	Samples int `json:"samples"`
	// ShiftHz is the residual offset of the carrier from the tuner centre.
	// The tuner is set to StationHz+ShiftHz and the shift is mixed out.
	ShiftHz float64 `json:"shift_hz"`

	// ChannelBandwidthHz is the cutoff of the channel low-pass.
	ChannelBandwidthHz float64 `json:"channel_bandwidth_hz"`
	// ChannelTaps is the odd length of the channel filter.
	ChannelTaps    int     `json:"channel_taps"`
	LimiterEpsilon float64 `json:"limiter_epsilon"`

	// AudioRate is the demodulation and analysis rate.
	AudioRate float64 `json:"audio_rate"`
	// Ratio converts SampleRate to AudioRate. The zero value derives it.
	Ratio           resample.Ratio   `json:"ratio"`
	ResampleQuality resample.Quality `json:"resample_quality"`

	// Window names the analysis window of all three estimators ("hann",
	// "kaiser", ...). Empty keeps Hann: periodic for Welch and the
	// spectrogram, symmetric for the single FFT.
	Window string `json:"window,omitempty"`
	// WindowAlpha is the Kaiser beta or Tukey fraction. Zero selects
	// DefaultKaiserBeta or DefaultTukeyAlpha.
	WindowAlpha float64 `json:"window_alpha,omitempty"`

	Welch       spectrum.WelchConfig       `json:"welch"`
	FFTSize     int                        `json:"fft_size"`
	Spectrogram spectrum.SpectrogramConfig `json:"spectrogram"`
	// Display is the band returned by [Result.View].
	Display spectrum.Band `json:"display"`
}

// Shape defaults for parametric analysis windows.
const (
	DefaultKaiserBeta = 8.6
	DefaultTukeyAlpha = 0.5
)

// DefaultConfig returns the reference setup: a 2.048 MHz capture of
// 4 Mi samples resampled by 25/256 to 200 kHz, analysed over 0-60 kHz.
func DefaultConfig() Config {
	return Config{
		StationHz:          106.7e6,
		SampleRate:         2.048e6,
		GainDB:             35,
		Samples:            4 << 20,
		ChannelBandwidthHz: 120e3,
		ChannelTaps:        129,
		LimiterEpsilon:     1e-6,
		AudioRate:          200e3,
		Ratio:              resample.Ratio{Up: 25, Down: 256},
		ResampleQuality:    resample.QualityBalanced,
		Welch:              spectrum.WelchConfig{SegmentLength: 16384, Overlap: 8192},
		FFTSize:            65536,
		Spectrogram:        spectrum.SpectrogramConfig{FrameLength: 2048, Overlap: 1024},
		Display:            spectrum.Band{Low: 0, High: 60e3},
	}
}

// Request returns the capture request for c.
func (c Config) Request() capture.Request {
	return capture.Request{
		CenterHz:   c.StationHz + c.ShiftHz,
		SampleRate: c.SampleRate,
		GainDB:     c.GainDB,
		Samples:    c.Samples,
	}
}

// ResolveRatio returns the reduced resampling ratio, deriving it from the
// rates when Ratio is zero. The ratio must reproduce AudioRate.
func (c Config) ResolveRatio() (resample.Ratio, error) {
	if c.Ratio == (resample.Ratio{}) {
		return resample.RatioForRates(c.SampleRate, c.AudioRate)
	}

	up, down := c.Ratio.Up, c.Ratio.Down
	if up <= 0 || down <= 0 {
		return resample.Ratio{}, fmt.Errorf("%w: %s", resample.ErrInvalidRatio, c.Ratio)
	}

	g := gcd(up, down)
	r := resample.Ratio{Up: up / g, Down: down / g}

	if !finitePositive(c.AudioRate) {
		return resample.Ratio{}, fmt.Errorf("%w: audio rate %v", resample.ErrInvalidRate, c.AudioRate)
	}

	if got := r.OutputRate(c.SampleRate); math.Abs(got-c.AudioRate) > 1e-9*c.AudioRate {
		return resample.Ratio{}, fmt.Errorf("%w: %s turns %v Hz into %v Hz, not %v Hz",
			resample.ErrRateMismatch, r, c.SampleRate, got, c.AudioRate)
	}

	return r, nil
}

// DemodulatedLen returns the length of the discriminator output for a
// full capture, or 0 when the ratio cannot be resolved.
func (c Config) DemodulatedLen() int {
	r, err := c.ResolveRatio()
	if err != nil || c.Samples <= 0 {
		return 0
	}

	return demodulatedLen(c.Samples, r)
}

func demodulatedLen(samples int, r resample.Ratio) int {
	n := (int64(samples)*int64(r.Up) + int64(r.Down) - 1) / int64(r.Down)
	return int(n) - 1
}

// Validate checks every parameter relationship that can be decided
// before capture. All violations are reported together; each one matches
// ErrInvalidConfig and the sentinel of the stage that would reject it.
func (c Config) Validate() error {
	var errs []error

	add := func(err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
	}

	add(c.Request().Validate())

	if math.IsNaN(c.ShiftHz) || math.IsInf(c.ShiftHz, 0) {
		add(fmt.Errorf("%w: shift %v Hz", capture.ErrInvalidRequest, c.ShiftHz))
	}

	if c.ChannelTaps < 1 || c.ChannelTaps%2 == 0 {
		add(fmt.Errorf("%w: %d", fir.ErrInvalidTaps, c.ChannelTaps))
	}

	if !finitePositive(c.ChannelBandwidthHz) || c.ChannelBandwidthHz >= c.SampleRate/2 {
		add(fmt.Errorf("%w: bandwidth %v Hz at sample rate %v Hz", fir.ErrInvalidCutoff, c.ChannelBandwidthHz, c.SampleRate))
	}

	if !finitePositive(c.LimiterEpsilon) {
		add(fmt.Errorf("%w: %v", ErrInvalidEpsilon, c.LimiterEpsilon))
	}

	ratio, err := c.ResolveRatio()
	add(err)

	available := 0
	if err == nil && c.Samples > 0 {
		available = demodulatedLen(c.Samples, ratio)
	}

	add(validateFraming("welch", c.Welch.SegmentLength, c.Welch.Overlap, available, err == nil))
	add(validateFraming("spectrogram", c.Spectrogram.FrameLength, c.Spectrogram.Overlap, available, err == nil))

	switch {
	case c.FFTSize <= 0:
		add(fmt.Errorf("%w: fft size %d", spectrum.ErrInvalidSegment, c.FFTSize))
	case err == nil && c.FFTSize > available:
		add(fmt.Errorf("%w: fft size %d exceeds %d demodulated samples", spectrum.ErrTooShort, c.FFTSize, available))
	}

	_, werr := c.analysisWindow()
	add(werr)

	if derr := c.Display.Validate(); derr != nil {
		add(derr)
	} else if err == nil && c.Welch.SegmentLength > 0 {
		// The report reads its floor off the display band of the PSD.
		bins := spectrum.BinFreqs(c.Welch.SegmentLength, ratio.OutputRate(c.SampleRate))
		if c.Display.Count(bins) == 0 {
			add(fmt.Errorf("%w: display [%v, %v] Hz holds no psd bin", spectrum.ErrNoBins, c.Display.Low, c.Display.High))
		}
	}

	return errors.Join(errs...)
}

// analysisWindow is the resolved estimator window of a [Config].
type analysisWindow struct {
	name string
	// framed is for Welch and the spectrogram, single for the one FFT.
	framed, single []spectrum.Option
}

// analysisWindow resolves Window and WindowAlpha. An empty Window yields
// Hann with no options, leaving each estimator on its default form.
func (c Config) analysisWindow() (analysisWindow, error) {
	if c.Window == "" {
		return analysisWindow{name: window.Info(window.TypeHann).Name}, nil
	}

	t, err := window.Parse(c.Window)
	if err != nil {
		return analysisWindow{}, err
	}

	alpha := c.WindowAlpha
	if alpha == 0 {
		switch t {
		case window.TypeKaiser:
			alpha = DefaultKaiserBeta
		case window.TypeTukey:
			alpha = DefaultTukeyAlpha
		}
	}

	if err := window.ValidateShape(t, alpha); err != nil {
		return analysisWindow{}, err
	}

	return analysisWindow{
		name:   window.Info(t).Name,
		framed: []spectrum.Option{spectrum.WithWindow(t, window.WithAlpha(alpha), window.WithPeriodic())},
		single: []spectrum.Option{spectrum.WithWindow(t, window.WithAlpha(alpha))},
	}, nil
}

func validateFraming(name string, length, overlap, available int, checkLength bool) error {
	switch {
	case length <= 0:
		return fmt.Errorf("%w: %s length %d", spectrum.ErrInvalidSegment, name, length)
	case overlap < 0 || overlap >= length:
		return fmt.Errorf("%w: %s overlap %d with length %d", spectrum.ErrInvalidOverlap, name, overlap, length)
	case checkLength && length > available:
		return fmt.Errorf("%w: %s length %d exceeds %d demodulated samples", spectrum.ErrTooShort, name, length, available)
	}

	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}
