package iq

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/internal/testutil"
)

func TestShiftZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := range 50 {
		n := 1 + rng.Intn(4096)
		in := core.IQ{Samples: make([]complex128, n), SampleRate: 1 + rng.Float64()*1e7}
		for i := range in.Samples {
			in.Samples[i] = complex(rng.NormFloat64()*100, rng.NormFloat64()*100)
		}

		out := Shift(in, 0)
		if out.Len() != n || out.SampleRate != in.SampleRate {
			t.Fatalf("trial %d: shape changed", trial)
		}

		for i := range in.Samples {
			if out.Samples[i] != in.Samples[i] {
				t.Fatalf("trial %d sample %d: got %v, want %v", trial, i, out.Samples[i], in.Samples[i])
			}
		}
	}
}

func TestShiftMovesTone(t *testing.T) {
	const (
		fs     = 2.048e6
		toneHz = 250e3
	)

	in := testutil.ComplexTone(toneHz, fs, 1, 4096)
	out := Shift(in, toneHz)

	// Shifting a tone by its own frequency leaves DC.
	for i, x := range out.Samples {
		if cmplx.Abs(x-1) > 1e-9 {
			t.Fatalf("sample %d: got %v, want 1", i, x)
		}
	}

	// Negative shift moves the tone up by the same amount.
	back := Shift(out, -toneHz)
	for i := range in.Samples {
		if cmplx.Abs(back.Samples[i]-in.Samples[i]) > 1e-9 {
			t.Fatalf("sample %d: round trip %v, want %v", i, back.Samples[i], in.Samples[i])
		}
	}
}

func TestShiftDoesNotMutateInput(t *testing.T) {
	in := testutil.ComplexTone(1000, 48000, 1, 64)
	orig := append([]complex128(nil), in.Samples...)

	_ = Shift(in, 500)

	for i := range orig {
		if in.Samples[i] != orig[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestLimitUnitMagnitudeAndPhase(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	in := core.IQ{Samples: make([]complex128, 10000), SampleRate: 1e6}
	for i := range in.Samples {
		// Amplitudes from 1e-2 to 1e3 model deep fades and strong carriers.
		amp := math.Pow(10, rng.Float64()*5-2)
		in.Samples[i] = cmplx.Rect(amp, (rng.Float64()*2-1)*math.Pi)
	}

	out := Limit(in)
	for i, y := range out.Samples {
		x := in.Samples[i]
		tol := 2 * DefaultLimiterEpsilon / cmplx.Abs(x)
		if math.Abs(cmplx.Abs(y)-1) > tol {
			t.Fatalf("sample %d: |y|=%v for |x|=%v", i, cmplx.Abs(y), cmplx.Abs(x))
		}

		if d := math.Abs(cmplx.Phase(y * cmplx.Conj(x))); d > 1e-12 {
			t.Fatalf("sample %d: phase moved by %v", i, d)
		}
	}
}

func TestLimitZeroIsFinite(t *testing.T) {
	out := Limit(core.IQ{Samples: []complex128{0, 1e-300, complex(0, -1e-9)}, SampleRate: 1})

	for i, y := range out.Samples {
		if cmplx.IsNaN(y) || cmplx.IsInf(y) {
			t.Fatalf("sample %d not finite: %v", i, y)
		}
	}

	if out.Samples[0] != 0 {
		t.Fatalf("zero input gave %v", out.Samples[0])
	}
}

func TestLimitWithEpsilon(t *testing.T) {
	out := LimitWithEpsilon(core.IQ{Samples: []complex128{3 + 4i}, SampleRate: 1}, 5)
	if cmplx.Abs(out.Samples[0]-(0.3+0.4i)) > 1e-15 {
		t.Fatalf("got %v, want 0.3+0.4i", out.Samples[0])
	}
}
