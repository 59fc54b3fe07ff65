package signal

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// Broadcast FM stereo multiplex frequencies.
const (
	PilotHz        = 19000.0
	SubcarrierHz   = 2 * PilotHz
	RDSHz          = 3 * PilotHz
	RDSSymbolRate  = RDSHz / 48
	MaxDeviationHz = 75000.0
)

// Multiplex describes a stereo composite baseband. Levels are fractions of
// full deviation.
type Multiplex struct {
	// LeftHz and RightHz are the audio tones on each channel.
	LeftHz  float64
	RightHz float64
	// AudioLevel scales both the L+R and the L-R programme.
	AudioLevel float64
	PilotLevel float64
	// RDSLevel scales a BPSK data stream on the 57 kHz subcarrier.
	RDSLevel float64
}

// DefaultMultiplex returns a programme with distinct tones on the two
// channels, a 9% pilot and a 4% RDS stream.
func DefaultMultiplex() Multiplex {
	return Multiplex{
		LeftHz:     1000,
		RightHz:    3000,
		AudioLevel: 0.45,
		PilotLevel: 0.09,
		RDSLevel:   0.04,
	}
}

// Multiplex synthesizes a composite baseband in [-1, 1] for mx:
//
//	m = A*(L+R)/2 + P*sin(p) + A*(L-R)/2*sin(2p) + R*d*sin(3p)
//
// where p is the pilot phase and d the RDS symbol stream. The 38 kHz and
// 57 kHz subcarriers are phase locked to the pilot.
func (g *Generator) Multiplex(mx Multiplex, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("multiplex samples must be > 0: %d", samples)
	}

	if nyq := g.sampleRate / 2; RDSHz+RDSSymbolRate >= nyq {
		return nil, fmt.Errorf("%w: %v Hz cannot carry a %v Hz subcarrier",
			core.ErrInvalidSampleRate, g.sampleRate, RDSHz)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))

	var (
		left   = 2 * math.Pi * mx.LeftHz / g.sampleRate
		right  = 2 * math.Pi * mx.RightHz / g.sampleRate
		pilot  = 2 * math.Pi * PilotHz / g.sampleRate
		symLen = g.sampleRate / RDSSymbolRate
		symbol = 1.0
		nextAt = 0.0
	)

	for i := range out {
		if float64(i) >= nextAt {
			symbol = float64(2*rng.Intn(2) - 1)
			nextAt += symLen
		}

		n := float64(i)
		l := math.Sin(left * n)
		r := math.Sin(right * n)
		p := pilot * n

		out[i] = mx.AudioLevel*(l+r)/2 +
			mx.PilotLevel*math.Sin(p) +
			mx.AudioLevel*(l-r)/2*math.Sin(2*p) +
			mx.RDSLevel*symbol*math.Sin(3*p)
	}

	return out, nil
}

// FrequencyModulate turns a message in [-1, 1] into unit-amplitude IQ whose
// instantaneous frequency is message*deviationHz.
func FrequencyModulate(message core.Real, deviationHz float64) core.IQ {
	out := core.IQ{Samples: make([]complex128, len(message.Samples)), SampleRate: message.SampleRate}
	if message.SampleRate <= 0 {
		return out
	}

	k := 2 * math.Pi * deviationHz / message.SampleRate
	phase := 0.0

	for i, m := range message.Samples {
		out.Samples[i] = cmplx.Rect(1, phase)

		phase = math.Mod(phase+k*m, 2*math.Pi)
	}

	return out
}
