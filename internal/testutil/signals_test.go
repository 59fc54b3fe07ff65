package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	// First sample of a sine at phase 0 should be 0.
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestComplexTone(t *testing.T) {
	tone := ComplexTone(1000, 8000, 2, 16)
	if tone.SampleRate != 8000 || tone.Len() != 16 {
		t.Fatalf("unexpected shape: rate=%v len=%d", tone.SampleRate, tone.Len())
	}
	// An eighth-rate tone advances pi/4 per sample.
	for i := 1; i < tone.Len(); i++ {
		d := cmplx.Phase(tone.Samples[i] * cmplx.Conj(tone.Samples[i-1]))
		if math.Abs(d-math.Pi/4) > 1e-12 {
			t.Fatalf("phase step %d = %v, want pi/4", i, d)
		}
		if math.Abs(cmplx.Abs(tone.Samples[i])-2) > 1e-12 {
			t.Fatalf("|x[%d]| = %v, want 2", i, cmplx.Abs(tone.Samples[i]))
		}
	}
}

func TestComplexNoiseDeterministic(t *testing.T) {
	a := ComplexNoise(3, 1, 1, 32)
	b := ComplexNoise(3, 1, 1, 32)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("noise not deterministic at %d", i)
		}
	}
}
