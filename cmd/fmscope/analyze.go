package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-fmscope/capture"
	"github.com/cwbudde/algo-fmscope/dsp/resample"
	"github.com/cwbudde/algo-fmscope/measure/fmstereo"
)

type analyzeOptions struct {
	cfg     fmstereo.Config
	quality string
	source  string
	format  string
	verbose bool
	timeout time.Duration
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{cfg: fmstereo.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Capture, demodulate and report the multiplex spectrum",
		Long: `Capture one buffer around a station, FM-demodulate it and estimate the
baseband spectrum with Welch, a single FFT and a spectrogram.

Sources: "synthetic" (built-in stereo broadcast), "rtltcp://host:port"
(rtl_tcp server) or the path of an unsigned 8-bit IQ recording.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	bindConfigFlags(cmd.Flags(), &opts.cfg)

	cmd.Flags().StringVar(&opts.quality, "quality", "balanced", "resampler quality: fast, balanced or best")
	cmd.Flags().StringVar(&opts.source, "source", "synthetic", "sample source: synthetic, rtltcp://host:port or a .cu8 file")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every pipeline stage")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the capture after this long (0 waits forever)")

	return cmd
}

// bindConfigFlags maps every configuration field onto a flag.
func bindConfigFlags(fs *pflag.FlagSet, cfg *fmstereo.Config) {
	fs.Float64Var(&cfg.StationHz, "station", cfg.StationHz, "station frequency in Hz")
	fs.Float64Var(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "capture sample rate in Hz")
	fs.Float64Var(&cfg.GainDB, "gain", cfg.GainDB, "tuner gain in dB")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "complex samples to capture")
	fs.Float64Var(&cfg.ShiftHz, "shift", cfg.ShiftHz, "residual carrier offset in Hz")

	fs.Float64Var(&cfg.ChannelBandwidthHz, "bandwidth", cfg.ChannelBandwidthHz, "channel filter cutoff in Hz")
	fs.IntVar(&cfg.ChannelTaps, "taps", cfg.ChannelTaps, "channel filter length (odd)")
	fs.Float64Var(&cfg.LimiterEpsilon, "limiter-epsilon", cfg.LimiterEpsilon, "limiter stabilizing constant")

	fs.Float64Var(&cfg.AudioRate, "audio-rate", cfg.AudioRate, "demodulation rate in Hz")
	fs.IntVar(&cfg.Ratio.Up, "up", cfg.Ratio.Up, "resampling interpolation factor (0 with --down 0 derives it)")
	fs.IntVar(&cfg.Ratio.Down, "down", cfg.Ratio.Down, "resampling decimation factor")

	fs.StringVar(&cfg.Window, "window", cfg.Window, "analysis window: hann, hamming, blackman, kaiser, tukey or rectangular (default hann)")
	fs.Float64Var(&cfg.WindowAlpha, "window-alpha", cfg.WindowAlpha, "kaiser beta or tukey fraction (0 uses the window default)")
	fs.IntVar(&cfg.Welch.SegmentLength, "welch-segment", cfg.Welch.SegmentLength, "Welch segment length")
	fs.IntVar(&cfg.Welch.Overlap, "welch-overlap", cfg.Welch.Overlap, "Welch segment overlap")
	fs.IntVar(&cfg.FFTSize, "fft-size", cfg.FFTSize, "single FFT length")
	fs.IntVar(&cfg.Spectrogram.FrameLength, "spec-frame", cfg.Spectrogram.FrameLength, "spectrogram frame length")
	fs.IntVar(&cfg.Spectrogram.Overlap, "spec-overlap", cfg.Spectrogram.Overlap, "spectrogram frame overlap")

	fs.Float64Var(&cfg.Display.Low, "display-low", cfg.Display.Low, "lower edge of the reported band in Hz")
	fs.Float64Var(&cfg.Display.High, "display-high", cfg.Display.High, "upper edge of the reported band in Hz")
}

func parseQuality(s string) (resample.Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return resample.QualityFast, nil
	case "balanced", "":
		return resample.QualityBalanced, nil
	case "best":
		return resample.QualityBest, nil
	default:
		return 0, fmt.Errorf("unknown quality %q (want fast, balanced or best)", s)
	}
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	var write func(*cobra.Command, fmstereo.Config, *fmstereo.Result) error

	switch opts.format {
	case "text":
		write = writeText
	case "json":
		write = writeJSON
	default:
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	q, err := parseQuality(opts.quality)
	if err != nil {
		return err
	}

	opts.cfg.ResampleQuality = q

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	defer func() { _ = logger.Sync() }()

	analyzer, err := fmstereo.New(opts.cfg, fmstereo.WithLogger(logger))
	if err != nil {
		return err
	}

	src, err := capture.Open(opts.source, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	logger.Info("capturing",
		zap.String("source", opts.source),
		zap.Float64("station_hz", opts.cfg.StationHz),
		zap.Int("samples", opts.cfg.Samples))

	res, err := analyzer.Run(ctx, src)
	if err != nil {
		return err
	}

	return write(cmd, opts.cfg, res)
}
