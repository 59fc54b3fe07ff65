package fmstereo

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-fmscope/capture"
	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
	"github.com/cwbudde/algo-fmscope/internal/testutil"
)

// recordingSource remembers the request it was asked for.
type recordingSource struct {
	src capture.Source
	req capture.Request
}

func (s *recordingSource) Capture(ctx context.Context, req capture.Request) (core.IQ, error) {
	s.req = req
	return s.src.Capture(ctx, req)
}

type failingSource struct{ err error }

func (s failingSource) Capture(context.Context, capture.Request) (core.IQ, error) {
	return core.IQ{}, s.err
}

func runSynthetic(t *testing.T, cfg Config, src *capture.Synthetic, opts ...Option) *Result {
	t.Helper()

	a, err := New(cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}

	res, err := a.Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	return res
}

func TestEndToEndPilotPeak(t *testing.T) {
	cfg := testConfig()
	res := runSynthetic(t, cfg, capture.NewSynthetic())

	if res.Rate != 200e3 || res.Samples != 25599 {
		t.Fatalf("rate %v samples %d", res.Rate, res.Samples)
	}

	testutil.RequireFinite(t, res.PSD.Values)
	testutil.RequireFinite(t, res.FFT.Values)

	// The pilot must be a local maximum within one bin of 19 kHz.
	want := res.PSD.Nearest(19e3)

	peak, err := res.PSD.PeakNear(19e3, res.PSD.Resolution())
	if err != nil {
		t.Fatal(err)
	}

	if d := peak.Index - want; d < -1 || d > 1 {
		t.Fatalf("pilot peak at bin %d (%.1f Hz), want within 1 of %d", peak.Index, peak.Freq, want)
	}

	v := res.PSD.Values
	if !(v[peak.Index] > v[peak.Index-1] && v[peak.Index] >= v[peak.Index+1]) {
		t.Fatalf("bin %d is not a local maximum: %v %v %v", peak.Index, v[peak.Index-1], v[peak.Index], v[peak.Index+1])
	}

	pilot, ok := res.Report.Landmark(LandmarkPilot)
	if !ok || !pilot.Detected || pilot.ProminenceDB < 20 {
		t.Fatalf("pilot %+v", pilot)
	}

	if math.Abs(pilot.Injection-0.09) > 0.02 {
		t.Fatalf("pilot injection %.4f, want about 0.09", pilot.Injection)
	}

	// The 38 kHz carrier is suppressed; only its sidebands carry power.
	sub, ok := res.Report.Landmark(LandmarkSubcarrier)
	if !ok || sub.Injection > 0.01 {
		t.Fatalf("subcarrier %+v", sub)
	}

	if !res.Report.Stereo() {
		t.Fatal("stereo not reported")
	}
}

func TestEndToEndReport(t *testing.T) {
	res := runSynthetic(t, testConfig(), capture.NewSynthetic())
	rep := res.Report

	mono, ok := rep.Region(RegionMono)
	if !ok {
		t.Fatal("mono region missing")
	}

	// Left and right tones at 1 and 3 kHz dominate L+R.
	if f := mono.Stats.Peak.Freq; math.Abs(f-1000) > 100 && math.Abs(f-3000) > 100 {
		t.Fatalf("mono peak at %v Hz", f)
	}

	stereo, ok := rep.Region(RegionStereo)
	if !ok || stereo.Stats.Power <= 0 {
		t.Fatalf("stereo region %+v", stereo)
	}

	if math.Abs(rep.Deviation.CarrierOffsetHz) > 1000 {
		t.Fatalf("carrier offset %v Hz", rep.Deviation.CarrierOffsetHz)
	}

	if m := rep.Deviation.Modulation; m < 0.3 || m > 1.5 {
		t.Fatalf("modulation %v", m)
	}
}

func TestEndToEndView(t *testing.T) {
	res := runSynthetic(t, testConfig(), capture.NewSynthetic())
	view := res.View()

	if view.Band != (spectrum.Band{Low: 0, High: 60e3}) {
		t.Fatalf("band %+v", view.Band)
	}

	for name, c := range map[string]spectrum.Curve{"psd": view.PSD, "fft": view.FFT} {
		if c.Len() == 0 || c.Freqs[0] != 0 || c.Freqs[c.Len()-1] > 60e3 {
			t.Fatalf("%s spans %v..%v", name, c.Freqs[0], c.Freqs[c.Len()-1])
		}

		if len(c.Values) != c.Len() {
			t.Fatalf("%s: %d values for %d bins", name, len(c.Values), c.Len())
		}
	}

	// FFT bins sit at Fs/size.
	if got := view.FFT.Resolution(); math.Abs(got-200e3/16384) > 1e-9 {
		t.Fatalf("fft resolution %v", got)
	}

	sg := view.Spectrogram
	wantFrames := (25599-1024)/512 + 1
	if len(sg.Times) != wantFrames || len(sg.Power) != len(sg.Freqs) || len(sg.Power[0]) != wantFrames {
		t.Fatalf("spectrogram %d freqs, %d times, %dx%d power",
			len(sg.Freqs), len(sg.Times), len(sg.Power), len(sg.Power[0]))
	}

	if sg.Freqs[len(sg.Freqs)-1] > 60e3 {
		t.Fatalf("spectrogram reaches %v Hz", sg.Freqs[len(sg.Freqs)-1])
	}

	if want := 1.5 * 200e3 / 4096; res.Window != "Hann" || math.Abs(res.NoiseBandwidthHz-want) > 1e-9*want {
		t.Fatalf("window %q, noise bandwidth %v Hz, want Hann and %v Hz", res.Window, res.NoiseBandwidthHz, want)
	}

	// Views are taken from untouched full-band estimates.
	if res.PSD.Freqs[res.PSD.Len()-1] != 100e3 {
		t.Fatalf("full psd ends at %v", res.PSD.Freqs[res.PSD.Len()-1])
	}

	narrow, err := res.ViewBand(spectrum.Band{Low: 18e3, High: 20e3})
	if err != nil {
		t.Fatal(err)
	}

	if narrow.PSD.Len() >= view.PSD.Len() {
		t.Fatalf("narrow view has %d bins", narrow.PSD.Len())
	}

	if _, err := res.ViewBand(spectrum.Band{Low: 1, High: 0}); !errors.Is(err, spectrum.ErrInvalidBand) {
		t.Fatalf("err = %v, want ErrInvalidBand", err)
	}
}

func TestAnalyzeWithBlackmanWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Window = "blackman"

	res := runSynthetic(t, cfg, capture.NewSynthetic())

	if res.Window != "Blackman" {
		t.Fatalf("window %q", res.Window)
	}

	// A periodic Blackman spans 0.3046/0.42² = 1.7268 bins.
	want := 0.3046 / (0.42 * 0.42) * 200e3 / 4096
	if math.Abs(res.NoiseBandwidthHz-want) > 1e-6*want {
		t.Fatalf("noise bandwidth %v Hz, want %v Hz", res.NoiseBandwidthHz, want)
	}

	if !res.Report.Stereo() {
		t.Fatalf("pilot not detected: %+v", res.Report.Landmarks)
	}
}

func TestDisplayWithoutBinsRejectedBeforeCapture(t *testing.T) {
	for _, band := range []spectrum.Band{
		{Low: 19000.5, High: 19000.6}, // between the 48.8 Hz bins at 18994 and 19043 Hz
		{Low: 120e3, High: 150e3},     // above the 100 kHz Nyquist frequency
	} {
		cfg := testConfig()
		cfg.Display = band

		_, err := New(cfg)
		if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, spectrum.ErrNoBins) {
			t.Fatalf("%+v: err = %v, want ErrInvalidConfig and ErrNoBins", band, err)
		}
	}
}

func TestRunWithResidualShift(t *testing.T) {
	const offset = 150e3

	cfg := testConfig()
	cfg.ShiftHz = offset

	syn := capture.NewSynthetic()
	syn.OffsetHz = offset
	syn.Quantize = true

	src := &recordingSource{src: syn}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	res, err := a.Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	if src.req != cfg.Request() || src.req.CenterHz != cfg.StationHz+offset {
		t.Fatalf("request %+v", src.req)
	}

	if !res.Report.Stereo() {
		t.Fatalf("pilot lost after shifting: %+v", res.Report.Landmarks)
	}

	if math.Abs(res.Report.Deviation.CarrierOffsetHz) > 1000 {
		t.Fatalf("carrier offset %v Hz after shift", res.Report.Deviation.CarrierOffsetHz)
	}
}

func TestRunPropagatesAcquisitionError(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	cause := &capture.AcquisitionError{Source: "rtltcp://dongle", Err: io.ErrUnexpectedEOF}

	_, err = a.Run(context.Background(), failingSource{err: cause})

	var acq *capture.AcquisitionError
	if !errors.As(err, &acq) || acq != cause || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want the source error unchanged", err)
	}
}

func TestRunHonoursContext(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Run(ctx, capture.NewSynthetic()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDemodulateRejectsWrongRate(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Demodulate(testutil.ComplexTone(1000, 1e6, 1, 4096))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, core.ErrInvalidSampleRate) {
		t.Fatalf("err = %v", err)
	}

	if _, err := a.Demodulate(core.IQ{SampleRate: 2.048e6}); !errors.Is(err, core.ErrEmptyBuffer) {
		t.Fatalf("err = %v, want ErrEmptyBuffer", err)
	}
}

func TestDemodulateConstantOffset(t *testing.T) {
	cfg := testConfig()

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// An unmodulated carrier 20 kHz above centre demodulates to a constant
	// 2*pi*20k/200k once the filters have settled. Resampler images bound
	// the residual ripple.
	fm, err := a.Demodulate(testutil.ComplexTone(20e3, cfg.SampleRate, 1, cfg.Samples))
	if err != nil {
		t.Fatal(err)
	}

	if fm.Len() != cfg.DemodulatedLen() || fm.SampleRate != cfg.AudioRate {
		t.Fatalf("len %d rate %v", fm.Len(), fm.SampleRate)
	}

	want := 2 * math.Pi * 20e3 / cfg.AudioRate
	for i := 1000; i < fm.Len()-1000; i++ {
		if math.Abs(fm.Samples[i]-want) > 1e-3 {
			t.Fatalf("sample %d: %v, want %v", i, fm.Samples[i], want)
		}
	}
}

func TestAnalyzeMatchesSerialEstimators(t *testing.T) {
	cfg := testConfig()

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	sig, err := capture.NewSynthetic().Capture(context.Background(), cfg.Request())
	if err != nil {
		t.Fatal(err)
	}

	fm, err := a.Demodulate(sig)
	if err != nil {
		t.Fatal(err)
	}

	res, err := a.Analyze(fm)
	if err != nil {
		t.Fatal(err)
	}

	psd, err := spectrum.Welch(fm, cfg.Welch)
	if err != nil {
		t.Fatal(err)
	}

	fft, err := spectrum.FFT(fm, cfg.FFTSize)
	if err != nil {
		t.Fatal(err)
	}

	sg, err := spectrum.STFT(fm, cfg.Spectrogram)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(res.PSD, psd) || !reflect.DeepEqual(res.FFT, fft) || !reflect.DeepEqual(res.Spectrogram, sg) {
		t.Fatal("concurrent estimates differ from serial ones")
	}
}

func TestAnalyzeTooShort(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	fm := core.Real{Samples: testutil.GaussianNoise(1, 0.1, 8192), SampleRate: 200e3}
	if _, err := a.Analyze(fm); !errors.Is(err, spectrum.ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestLoggerRecordsStages(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)

	runSynthetic(t, testConfig(), capture.NewSynthetic(), WithLogger(zap.New(obsCore)))

	stages := map[string]bool{}
	for _, e := range logs.FilterMessage("stage").All() {
		stages[e.ContextMap()["stage"].(string)] = true
	}

	for _, want := range []string{"shift", "channel filter", "limit", "resample", "discriminate", "welch", "fft", "spectrogram"} {
		if !stages[want] {
			t.Errorf("no log entry for stage %q", want)
		}
	}

	done := logs.FilterMessage("analysis complete").All()
	if len(done) != 1 || done[0].Level != zapcore.InfoLevel {
		t.Fatalf("got %d completion entries", len(done))
	}

	if _, ok := done[0].ContextMap()["pilot_hz"]; !ok {
		t.Fatalf("completion entry lacks pilot: %v", done[0].ContextMap())
	}
}

func TestAnalyzerAccessors(t *testing.T) {
	cfg := testConfig()

	a, err := New(cfg, WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}

	if a.Config() != cfg || a.Ratio().String() != "25/256" {
		t.Fatalf("config %+v ratio %s", a.Config(), a.Ratio())
	}

	taps := a.ChannelTaps()
	if len(taps) != 129 {
		t.Fatalf("%d taps", len(taps))
	}

	taps[0] = 99
	if a.ChannelTaps()[0] == 99 {
		t.Fatal("ChannelTaps exposes internal state")
	}
}
