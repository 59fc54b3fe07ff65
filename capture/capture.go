// Package capture acquires complex baseband buffers from SDR hardware,
// recordings or a built-in FM broadcast simulator.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// ErrInvalidRequest indicates a request no source can satisfy.
var ErrInvalidRequest = errors.New("capture: invalid request")

// Request describes one acquisition.
type Request struct {
	// CenterHz is the tuner center frequency.
	CenterHz float64
	// SampleRate is the complex sample rate in Hz.
	SampleRate float64
	// GainDB is the manual tuner gain. Automatic gain is never used.
	GainDB float64
	// Samples is the number of complex samples to return.
	Samples int
}

// Validate reports whether r is complete.
func (r Request) Validate() error {
	var errs []error

	if r.Samples <= 0 {
		errs = append(errs, fmt.Errorf("%w: samples %d", ErrInvalidRequest, r.Samples))
	}

	if r.SampleRate <= 0 || math.IsNaN(r.SampleRate) || math.IsInf(r.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("%w: sample rate %v", ErrInvalidRequest, r.SampleRate))
	}

	if r.CenterHz < 0 || math.IsNaN(r.CenterHz) || math.IsInf(r.CenterHz, 0) {
		errs = append(errs, fmt.Errorf("%w: center %v Hz", ErrInvalidRequest, r.CenterHz))
	}

	if math.IsNaN(r.GainDB) || math.IsInf(r.GainDB, 0) {
		errs = append(errs, fmt.Errorf("%w: gain %v dB", ErrInvalidRequest, r.GainDB))
	}

	return errors.Join(errs...)
}

// Source produces one contiguous block of IQ samples per call.
type Source interface {
	Capture(ctx context.Context, req Request) (core.IQ, error)
}

// AcquisitionError reports a failed capture. Err keeps the cause for
// errors.Is and errors.As.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

func acquisitionError(source string, err error) error {
	if err == nil {
		return nil
	}

	return &AcquisitionError{Source: source, Err: err}
}
