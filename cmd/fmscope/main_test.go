package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/cwbudde/algo-fmscope/dsp/resample"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
	"github.com/cwbudde/algo-fmscope/dsp/window"
	"github.com/cwbudde/algo-fmscope/measure/fmstereo"
)

// smallRun keeps end-to-end runs to a quarter million samples.
var smallRun = []string{
	"--samples", "262144",
	"--welch-segment", "4096", "--welch-overlap", "2048",
	"--fft-size", "16384",
	"--spec-frame", "1024", "--spec-overlap", "512",
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestRatio(t *testing.T) {
	tests := []struct {
		in, out string
		want    string
	}{
		{"2.048e6", "200e3", "25/256\n"},
		{"44100", "48000", "160/147\n"},
		{"48000", "48000", "1/1\n"},
	}

	for _, tt := range tests {
		stdout, _, err := execute(t, "ratio", "--in", tt.in, "--out", tt.out)
		if err != nil {
			t.Fatalf("%s -> %s: %v", tt.in, tt.out, err)
		}

		if stdout != tt.want {
			t.Fatalf("%s -> %s: got %q, want %q", tt.in, tt.out, stdout, tt.want)
		}
	}
}

func TestRatioMismatch(t *testing.T) {
	_, _, err := execute(t, "ratio", "--in", "2048001", "--out", "200000")
	if !errors.Is(err, resample.ErrRateMismatch) {
		t.Fatalf("err = %v, want ErrRateMismatch", err)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	stdout, _, err := execute(t, append([]string{"analyze", "--format", "json"}, smallRun...)...)
	if err != nil {
		t.Fatal(err)
	}

	var doc jsonOutput
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if doc.Config.Samples != 262144 || doc.Config.FFTSize != 16384 {
		t.Fatalf("config %+v", doc.Config)
	}

	psd := doc.View.PSD
	if psd.Len() == 0 || psd.Freqs[psd.Len()-1] > 60e3 {
		t.Fatalf("psd view has %d bins", psd.Len())
	}

	if len(doc.View.Spectrogram.Power) != len(doc.View.Spectrogram.Freqs) {
		t.Fatal("spectrogram rows do not match its frequency axis")
	}

	if !doc.Report.Stereo() {
		t.Fatalf("pilot not detected: %+v", doc.Report.Landmarks)
	}
}

func TestAnalyzeText(t *testing.T) {
	stdout, stderr, err := execute(t, append([]string{"analyze", "--quality", "fast"}, smallRun...)...)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Station", "106.700 MHz", "25/256", "pilot", "subcarrier", "rds", "mono", "stereo"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q:\n%s", want, stdout)
		}
	}

	if !regexp.MustCompile(`(?m)^Stereo\s+yes$`).MatchString(stdout) {
		t.Errorf("stereo not reported:\n%s", stdout)
	}

	if !strings.Contains(stderr, "analysis complete") {
		t.Errorf("no completion log on stderr:\n%s", stderr)
	}

	if strings.Contains(stderr, `"stage"`) {
		t.Errorf("stage logs without --verbose:\n%s", stderr)
	}
}

func TestAnalyzeWindowFlag(t *testing.T) {
	stdout, _, err := execute(t, append([]string{"analyze", "--quality", "fast", "--window", "kaiser"}, smallRun...)...)
	if err != nil {
		t.Fatal(err)
	}

	if !regexp.MustCompile(`(?m)^Window\s+Kaiser, noise bandwidth`).MatchString(stdout) {
		t.Errorf("window not reported:\n%s", stdout)
	}

	if !regexp.MustCompile(`(?m)^Stereo\s+yes$`).MatchString(stdout) {
		t.Errorf("stereo not detected with a kaiser window:\n%s", stdout)
	}
}

func TestAnalyzeVerboseLogsStages(t *testing.T) {
	_, stderr, err := execute(t, append([]string{"analyze", "-v", "--format", "json"}, smallRun...)...)
	if err != nil {
		t.Fatal(err)
	}

	for _, stage := range []string{"resample", "discriminate", "welch"} {
		if !strings.Contains(stderr, stage) {
			t.Errorf("verbose log lacks stage %q", stage)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "even taps", args: []string{"--taps", "128"}, want: fmstereo.ErrInvalidConfig},
		{name: "overlap", args: []string{"--welch-overlap", "16384"}, want: fmstereo.ErrInvalidConfig},
		{name: "ratio", args: []string{"--sample-rate", "2.4e6"}, want: resample.ErrRateMismatch},
		{name: "window", args: []string{"--window", "triangle"}, want: window.ErrUnknownWindow},
		{name: "display", args: []string{"--display-low", "120e3", "--display-high", "150e3"}, want: spectrum.ErrNoBins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"analyze"}, tt.args...)...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	for _, args := range [][]string{
		{"analyze", "--format", "xml"},
		{"analyze", "--quality", "perfect"},
		{"analyze", "--source", "/nonexistent/capture.cu8", "--samples", "262144"},
		{"analyze", "extra"},
	} {
		if _, _, err := execute(t, args...); err == nil {
			t.Fatalf("%v: expected an error", args)
		}
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   string
		want resample.Quality
	}{
		{"fast", resample.QualityFast},
		{"Balanced", resample.QualityBalanced},
		{"", resample.QualityBalanced},
		{" best ", resample.QualityBest},
	}

	for _, tt := range tests {
		got, err := parseQuality(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("parseQuality(%q) = %v, %v", tt.in, got, err)
		}
	}
}
