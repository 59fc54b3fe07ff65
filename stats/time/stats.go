// Package time computes time-domain statistics of real signals, with a
// specialization for FM discriminator output.
package time

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// Stats holds descriptive statistics of a sample sequence.
type Stats struct {
	Length        int     `json:"length"`
	Mean          float64 `json:"mean"`
	RMS           float64 `json:"rms"`
	Max           float64 `json:"max"`
	MaxPos        int     `json:"max_pos"`
	Min           float64 `json:"min"`
	MinPos        int     `json:"min_pos"`
	Peak          float64 `json:"peak"`         // max(|max|, |min|)
	CrestFactor   float64 `json:"crest_factor"` // peak / RMS
	Variance      float64 `json:"variance"`     // population variance
	Skewness      float64 `json:"skewness"`
	Kurtosis      float64 `json:"kurtosis"` // excess kurtosis
	ZeroCrossings int     `json:"zero_crossings"`
}

// Calculate computes the statistics of signal. An empty signal yields the
// zero value.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		Length: n,
		MaxPos: floats.MaxIdx(signal),
		MinPos: floats.MinIdx(signal),
		RMS:    RMS(signal),
	}
	s.Max = signal[s.MaxPos]
	s.Min = signal[s.MinPos]
	s.Peak = math.Max(math.Abs(s.Max), math.Abs(s.Min))

	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}

	mean, variance := stat.MeanVariance(signal, nil)
	s.Mean = mean
	if n > 1 {
		// MeanVariance is unbiased; report the population figure.
		s.Variance = variance * float64(n-1) / float64(n)
	}

	if s.Variance > 0 && n > 3 {
		s.Skewness = stat.Skew(signal, nil)
		s.Kurtosis = stat.ExKurtosis(signal, nil)
	}

	s.ZeroCrossings = ZeroCrossings(signal)

	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(floats.Dot(signal, signal) / float64(len(signal)))
}

// ZeroCrossings counts sign changes between consecutive samples. Exact
// zeros do not count as a crossing on either side.
func ZeroCrossings(signal []float64) int {
	var n int
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			n++
		}
	}

	return n
}

// Deviation summarizes the instantaneous frequency of an FM discriminator
// output.
type Deviation struct {
	// CarrierOffsetHz is the mean instantaneous frequency: a mistuned
	// receiver or a residual shift shows up here.
	CarrierOffsetHz float64 `json:"carrier_offset_hz"`
	// RMSHz is the RMS deviation around the carrier offset.
	RMSHz float64 `json:"rms_hz"`
	// PeakHz is the largest excursion from the carrier offset.
	PeakHz         float64 `json:"peak_hz"`
	PeakPositiveHz float64 `json:"peak_positive_hz"`
	PeakNegativeHz float64 `json:"peak_negative_hz"`
	// Modulation is PeakHz relative to the reference deviation.
	Modulation float64 `json:"modulation"`
}

// DeviationOf interprets sig as discriminator output in radians per sample
// and reports its frequency deviation relative to referenceHz (75 kHz for
// broadcast FM).
func DeviationOf(sig core.Real, referenceHz float64) (Deviation, error) {
	if err := sig.Validate(); err != nil {
		return Deviation{}, err
	}

	if referenceHz <= 0 || math.IsNaN(referenceHz) || math.IsInf(referenceHz, 0) {
		return Deviation{}, fmt.Errorf("stats: invalid reference deviation %v Hz", referenceHz)
	}

	hz := make([]float64, sig.Len())
	floats.ScaleTo(hz, sig.SampleRate/(2*math.Pi), sig.Samples)

	offset := stat.Mean(hz, nil)
	floats.AddConst(-offset, hz)

	d := Deviation{
		CarrierOffsetHz: offset,
		RMSHz:           RMS(hz),
		PeakPositiveHz:  floats.Max(hz),
		PeakNegativeHz:  floats.Min(hz),
	}
	d.PeakHz = math.Max(d.PeakPositiveHz, -d.PeakNegativeHz)
	d.Modulation = d.PeakHz / referenceHz

	return d, nil
}
