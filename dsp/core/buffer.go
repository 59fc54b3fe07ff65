package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyBuffer indicates a buffer without samples.
	ErrEmptyBuffer = errors.New("core: empty buffer")
	// ErrInvalidSampleRate indicates a non-positive or non-finite sample rate.
	ErrInvalidSampleRate = errors.New("core: invalid sample rate")
)

// IQ is a finite block of complex baseband samples at a fixed sample rate.
//
// Pipeline stages treat an IQ value as immutable: every stage returns a
// freshly allocated buffer and leaves its input untouched.
type IQ struct {
	Samples    []complex128
	SampleRate float64
}

// Real is a finite block of real-valued samples at a fixed sample rate.
type Real struct {
	Samples    []float64
	SampleRate float64
}

// NewIQ copies samples into a new IQ buffer.
func NewIQ(samples []complex128, sampleRate float64) IQ {
	return IQ{Samples: append([]complex128(nil), samples...), SampleRate: sampleRate}
}

// Len returns the number of samples.
func (b IQ) Len() int { return len(b.Samples) }

// Duration returns the buffer length in seconds.
func (b IQ) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / b.SampleRate
}

// Validate reports whether b satisfies the buffer invariants.
func (b IQ) Validate() error {
	if len(b.Samples) == 0 {
		return ErrEmptyBuffer
	}
	return validateRate(b.SampleRate)
}

// Len returns the number of samples.
func (s Real) Len() int { return len(s.Samples) }

// Duration returns the signal length in seconds.
func (s Real) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / s.SampleRate
}

// Validate reports whether s satisfies the buffer invariants.
func (s Real) Validate() error {
	if len(s.Samples) == 0 {
		return ErrEmptyBuffer
	}
	return validateRate(s.SampleRate)
}

func validateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, rate)
	}
	return nil
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	copy(dst[:n], src[:n])
	return n
}
