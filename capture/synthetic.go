package capture

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/iq"
	"github.com/cwbudde/algo-fmscope/dsp/signal"
)

// Synthetic simulates a tuner sitting on an FM stereo broadcast.
type Synthetic struct {
	// Multiplex is the programme modulated onto the carrier.
	Multiplex signal.Multiplex
	// DeviationHz is the frequency deviation at full composite level.
	DeviationHz float64
	// OffsetHz places the carrier relative to the tuner center.
	OffsetHz float64
	// SNRdB is the carrier to noise ratio over the full sample bandwidth.
	SNRdB float64
	// Quantize passes the result through 8-bit I/Q like an RTL dongle.
	Quantize bool
	Seed     int64
}

// NewSynthetic returns a clean, centered broadcast with the default
// programme at 75 kHz deviation and 30 dB SNR.
func NewSynthetic() *Synthetic {
	return &Synthetic{
		Multiplex:   signal.DefaultMultiplex(),
		DeviationHz: signal.MaxDeviationHz,
		SNRdB:       30,
		Seed:        1,
	}
}

// Capture synthesizes req.Samples samples at req.SampleRate. The output
// depends only on the request and the source fields.
func (s *Synthetic) Capture(ctx context.Context, req Request) (core.IQ, error) {
	if err := req.Validate(); err != nil {
		return core.IQ{}, acquisitionError("synthetic", err)
	}

	if err := ctx.Err(); err != nil {
		return core.IQ{}, acquisitionError("synthetic", err)
	}

	out, err := s.synthesize(req)
	if err != nil {
		return core.IQ{}, acquisitionError("synthetic", err)
	}

	return out, nil
}

func (s *Synthetic) synthesize(req Request) (core.IQ, error) {
	if edge := math.Abs(s.OffsetHz) + s.DeviationHz + signal.RDSHz; edge >= req.SampleRate/2 {
		return core.IQ{}, fmt.Errorf("%w: %v Hz cannot hold a carrier at %+v Hz",
			ErrInvalidRequest, req.SampleRate, s.OffsetHz)
	}

	g, err := signal.NewGenerator(req.SampleRate, signal.WithSeed(s.Seed))
	if err != nil {
		return core.IQ{}, err
	}

	composite, err := g.Multiplex(s.Multiplex, req.Samples)
	if err != nil {
		return core.IQ{}, err
	}

	out := signal.FrequencyModulate(core.Real{Samples: composite, SampleRate: req.SampleRate}, s.DeviationHz)
	if s.OffsetHz != 0 {
		out = iq.Shift(out, -s.OffsetHz)
	}

	// A unit carrier has power 1; split the noise power over both rails.
	sigma := math.Sqrt(math.Pow(10, -s.SNRdB/10) / 2)

	g.SetSeed(s.Seed + 1)

	noise, err := g.ComplexNoise(sigma, req.Samples)
	if err != nil {
		return core.IQ{}, err
	}

	// Leave headroom below full scale for the noise.
	const level = 0.8
	for i := range out.Samples {
		out.Samples[i] = level * (out.Samples[i] + noise[i])
	}

	if s.Quantize {
		raw := make([]byte, 2*len(out.Samples))
		EncodeCU8(raw, out.Samples)
		DecodeCU8(out.Samples, raw)
	}

	return out, nil
}
