package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// ErrInvalidFrequency indicates a tone frequency outside [0, Fs/2].
var ErrInvalidFrequency = errors.New("spectrum: invalid tone frequency")

// Goertzel evaluates a single DFT term of a real signal at an arbitrary
// frequency. Power and Magnitude describe every sample processed since the
// last Reset.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
}

// NewGoertzel creates an analyzer for frequency, which must lie in
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("%w: %v Hz at %v Hz", ErrInvalidFrequency, frequency, sampleRate)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0 = 0
	g.s1 = 0
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// Power returns |X|^2 for the processed block.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X| for the processed block.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Frequency returns the target frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// ToneAmplitudes estimates the peak amplitude of a sinusoid at each of freqs
// in sig, as 2|X|/N. Leakage from nearby components shrinks with the length
// of sig.
func ToneAmplitudes(sig core.Real, freqs ...float64) ([]float64, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	n := float64(len(sig.Samples))
	out := make([]float64, len(freqs))

	for i, f := range freqs {
		g, err := NewGoertzel(f, sig.SampleRate)
		if err != nil {
			return nil, err
		}

		g.ProcessBlock(sig.Samples)

		amp := 2 * g.Magnitude() / n
		if f == 0 || f == sig.SampleRate/2 {
			// DC and Nyquist have no mirror image to share energy with.
			amp /= 2
		}

		out[i] = amp
	}

	return out, nil
}
