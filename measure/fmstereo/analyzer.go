package fmstereo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-fmscope/capture"
	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/demod"
	"github.com/cwbudde/algo-fmscope/dsp/filter/fir"
	"github.com/cwbudde/algo-fmscope/dsp/iq"
	"github.com/cwbudde/algo-fmscope/dsp/resample"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
)

// Analyzer runs the demodulation chain and the spectral estimators for a
// fixed [Config]. It holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	cfg       Config
	taps      []float64
	resampler *resample.Resampler
	window    analysisWindow
	logger    *zap.Logger
}

// Option configures an [Analyzer].
type Option func(*Analyzer)

// WithLogger sets the logger for stage timings. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New validates cfg and designs the channel and resampling filters.
func New(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ratio, err := cfg.ResolveRatio()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	taps, err := fir.LowPass(cfg.ChannelTaps, cfg.ChannelBandwidthHz/(cfg.SampleRate/2))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rs, err := resample.NewRational(ratio.Up, ratio.Down, resample.WithQuality(cfg.ResampleQuality))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	win, err := cfg.analysisWindow()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	a := &Analyzer{
		cfg:       cfg,
		taps:      taps,
		resampler: rs,
		window:    win,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a, nil
}

// Config returns the validated configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Ratio returns the reduced resampling ratio.
func (a *Analyzer) Ratio() resample.Ratio { return a.resampler.Ratio() }

// ChannelTaps returns a copy of the channel filter.
func (a *Analyzer) ChannelTaps() []float64 {
	return append([]float64(nil), a.taps...)
}

// Run captures one buffer from src and analyzes it. Capture failures are
// returned unchanged.
func (a *Analyzer) Run(ctx context.Context, src capture.Source) (*Result, error) {
	start := time.Now()

	req := a.cfg.Request()

	in, err := src.Capture(ctx, req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("captured",
		zap.Float64("center_hz", req.CenterHz),
		zap.Float64("gain_db", req.GainDB),
		zap.Int("samples", in.Len()),
		zap.Duration("elapsed", time.Since(start)))

	res, err := a.Process(in)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Float64("station_hz", a.cfg.StationHz),
		zap.Stringer("ratio", a.Ratio()),
		zap.Int("demodulated", res.Samples),
		zap.Float64("peak_deviation_hz", res.Report.Deviation.PeakHz),
		zap.Duration("elapsed", time.Since(start)),
	}
	if pilot, ok := res.Report.Landmark(LandmarkPilot); ok {
		fields = append(fields,
			zap.Float64("pilot_hz", pilot.Peak.Freq),
			zap.Float64("pilot_prominence_db", pilot.ProminenceDB))
	}

	a.logger.Info("analysis complete", fields...)

	return res, nil
}

// Process demodulates in and analyzes the result.
func (a *Analyzer) Process(in core.IQ) (*Result, error) {
	fm, err := a.Demodulate(in)
	if err != nil {
		return nil, err
	}

	return a.Analyze(fm)
}

// Demodulate runs the shift, channel filter, limiter, resampler and
// discriminator stages. The input must be at the configured sample rate.
func (a *Analyzer) Demodulate(in core.IQ) (core.Real, error) {
	if err := in.Validate(); err != nil {
		return core.Real{}, err
	}

	if in.SampleRate != a.cfg.SampleRate {
		return core.Real{}, fmt.Errorf("%w: %w: buffer at %v Hz, configured for %v Hz",
			ErrInvalidConfig, core.ErrInvalidSampleRate, in.SampleRate, a.cfg.SampleRate)
	}

	start := time.Now()
	shifted := iq.Shift(in, a.cfg.ShiftHz)
	a.logStage("shift", start, shifted.Len(), shifted.SampleRate)

	start = time.Now()
	filtered, err := fir.ApplyIQ(a.taps, shifted)
	if err != nil {
		return core.Real{}, fmt.Errorf("channel filter: %w", err)
	}
	a.logStage("channel filter", start, filtered.Len(), filtered.SampleRate)

	start = time.Now()
	limited := iq.LimitWithEpsilon(filtered, a.cfg.LimiterEpsilon)
	a.logStage("limit", start, limited.Len(), limited.SampleRate)

	start = time.Now()
	baseband, err := a.resampler.Process(limited)
	if err != nil {
		return core.Real{}, fmt.Errorf("resample: %w", err)
	}
	a.logStage("resample", start, baseband.Len(), baseband.SampleRate)

	start = time.Now()
	fm, err := demod.Discriminate(baseband)
	if err != nil {
		return core.Real{}, fmt.Errorf("discriminate: %w", err)
	}
	a.logStage("discriminate", start, fm.Len(), fm.SampleRate)

	if i := firstNonFinite(fm.Samples); i >= 0 {
		return core.Real{}, fmt.Errorf("%w: sample %d is %v", ErrNonFinite, i, fm.Samples[i])
	}

	return fm, nil
}

// Analyze runs the three estimators on fm concurrently and builds the
// report from the PSD.
func (a *Analyzer) Analyze(fm core.Real) (*Result, error) {
	if err := fm.Validate(); err != nil {
		return nil, err
	}

	nbw, err := spectrum.NoiseBandwidth(a.cfg.Welch.SegmentLength, fm.SampleRate, a.window.framed...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Rate:             fm.SampleRate,
		Ratio:            a.Ratio(),
		Samples:          fm.Len(),
		Display:          a.cfg.Display,
		Window:           a.window.name,
		NoiseBandwidthHz: nbw,
	}

	var (
		wg                      sync.WaitGroup
		welchErr, fftErr, stErr error
	)

	wg.Add(3)

	go func() {
		defer wg.Done()

		start := time.Now()
		res.PSD, welchErr = spectrum.Welch(fm, a.cfg.Welch, a.window.framed...)
		a.logStage("welch", start, res.PSD.Len(), fm.SampleRate)
	}()

	go func() {
		defer wg.Done()

		start := time.Now()
		res.FFT, fftErr = spectrum.FFT(fm, a.cfg.FFTSize, a.window.single...)
		a.logStage("fft", start, res.FFT.Len(), fm.SampleRate)
	}()

	go func() {
		defer wg.Done()

		start := time.Now()
		res.Spectrogram, stErr = spectrum.STFT(fm, a.cfg.Spectrogram, a.window.framed...)
		a.logStage("spectrogram", start, len(res.Spectrogram.Times), fm.SampleRate)
	}()

	wg.Wait()

	if err := errors.Join(welchErr, fftErr, stErr); err != nil {
		return nil, err
	}

	report, err := NewReport(res.PSD, fm, a.cfg.Display)
	if err != nil {
		return nil, err
	}

	res.Report = report

	return res, nil
}

func (a *Analyzer) logStage(stage string, start time.Time, samples int, rate float64) {
	a.logger.Debug("stage",
		zap.String("stage", stage),
		zap.Int("samples", samples),
		zap.Float64("rate", rate),
		zap.Duration("elapsed", time.Since(start)))
}

func firstNonFinite(samples []float64) int {
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}

	return -1
}
