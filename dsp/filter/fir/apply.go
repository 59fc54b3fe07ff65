package fir

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

const (
	// Kernels shorter than this are always applied in direct form.
	fftKernelThreshold = 64
	minOverlapSaveFFT  = 4096
)

// ChannelFilter designs a numTaps low-pass with a cutoff of bandwidthHz and
// applies it causally to in. The bandwidth must be strictly below Nyquist.
func ChannelFilter(in core.IQ, bandwidthHz float64, numTaps int) (core.IQ, error) {
	if err := in.Validate(); err != nil {
		return core.IQ{}, err
	}

	nyquist := in.SampleRate / 2
	if !(bandwidthHz > 0 && bandwidthHz < nyquist) {
		return core.IQ{}, fmt.Errorf("%w: bandwidth %.0f Hz, nyquist %.0f Hz", ErrInvalidCutoff, bandwidthHz, nyquist)
	}

	taps, err := LowPass(numTaps, bandwidthHz/nyquist)
	if err != nil {
		return core.IQ{}, err
	}

	return ApplyIQ(taps, in)
}

// ApplyIQ filters in with taps as a causal FIR with zero initial state:
//
//	y[n] = sum_{k=0}^{min(n, M-1)} h[k] * x[n-k]
//
// The output has the same length and sample rate as in.
func ApplyIQ(taps []float64, in core.IQ) (core.IQ, error) {
	if len(taps) == 0 {
		return core.IQ{}, fmt.Errorf("%w: %d", ErrInvalidTaps, 0)
	}

	if err := in.Validate(); err != nil {
		return core.IQ{}, err
	}

	out := core.IQ{Samples: make([]complex128, len(in.Samples)), SampleRate: in.SampleRate}

	if len(taps) < fftKernelThreshold || len(in.Samples) < 4*len(taps) {
		New(taps).ProcessBlockTo(out.Samples, in.Samples)
		return out, nil
	}

	if err := overlapSave(out.Samples, in.Samples, taps); err != nil {
		return core.IQ{}, err
	}

	return out, nil
}

// overlapSave computes the first len(src) samples of the linear convolution
// of src and taps using FFT blocks.
func overlapSave(dst, src []complex128, taps []float64) error {
	m := len(taps)

	fftSize := max(nextPowerOf2(4*m), minOverlapSaveFFT)
	step := fftSize - m + 1

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return fmt.Errorf("fir: failed to create FFT plan: %w", err)
	}

	kernel := make([]complex128, fftSize)
	for i, v := range taps {
		kernel[i] = complex(v, 0)
	}

	if err := plan.Forward(kernel, kernel); err != nil {
		return fmt.Errorf("fir: kernel FFT failed: %w", err)
	}

	block := make([]complex128, fftSize)

	for pos := 0; pos < len(src); pos += step {
		// block[i] holds x[pos-(m-1)+i]; indices before 0 are zero history.
		start := pos - (m - 1)
		for i := range block {
			idx := start + i
			if idx >= 0 && idx < len(src) {
				block[i] = src[idx]
			} else {
				block[i] = 0
			}
		}

		if err := plan.Forward(block, block); err != nil {
			return fmt.Errorf("fir: forward FFT failed: %w", err)
		}

		for i := range block {
			block[i] *= kernel[i]
		}

		if err := plan.Inverse(block, block); err != nil {
			return fmt.Errorf("fir: inverse FFT failed: %w", err)
		}

		// The first m-1 outputs are circularly aliased; the rest are exact.
		n := min(step, len(src)-pos)
		copy(dst[pos:pos+n], block[m-1:m-1+n])
	}

	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
