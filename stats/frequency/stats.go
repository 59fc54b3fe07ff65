// Package frequency computes descriptive statistics of a one-sided power
// spectral density over a frequency band.
package frequency

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
)

// Stats holds band statistics computed from a linear PSD in units²/Hz.
type Stats struct {
	Band spectrum.Band `json:"band"`
	Bins int           `json:"bins"`

	// Power is the density integrated over the band.
	Power   float64       `json:"power"`
	PowerDB float64       `json:"power_db"`
	Peak    spectrum.Peak `json:"peak"`

	// Floor is the median density, a robust noise estimate.
	Floor   float64 `json:"floor"`
	FloorDB float64 `json:"floor_db"`

	Centroid  float64 `json:"centroid"`  // power-weighted mean frequency (Hz)
	Spread    float64 `json:"spread"`    // power-weighted standard deviation (Hz)
	Flatness  float64 `json:"flatness"`  // Wiener entropy, 0..1
	Rolloff   float64 `json:"rolloff"`   // frequency below which 85% of power lies (Hz)
	Bandwidth float64 `json:"bandwidth"` // half-power bandwidth around the peak (Hz)
}

// DefaultRolloff is the power fraction used by [Calculate] for Rolloff.
const DefaultRolloff = 0.85

// Calculate computes the statistics of psd restricted to band.
func Calculate(psd spectrum.Curve, band spectrum.Band) (Stats, error) {
	if err := band.Validate(); err != nil {
		return Stats{}, err
	}

	c := psd.Mask(band)
	if c.Len() == 0 {
		return Stats{}, fmt.Errorf("%w: [%v, %v] Hz", spectrum.ErrNoBins, band.Low, band.High)
	}

	peak, err := c.Max()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Band:  band,
		Bins:  c.Len(),
		Power: floats.Sum(c.Values) * binWidth(psd),
		Peak:  peak,
		Floor: median(c.Values),
	}
	s.PowerDB = core.PowerToDBFloor(s.Power)
	s.FloorDB = core.PowerToDBFloor(s.Floor)

	s.Centroid, s.Spread = moments(c)
	s.Flatness = Flatness(c.Values)
	s.Rolloff = Rolloff(c, DefaultRolloff)
	s.Bandwidth = Bandwidth(c)

	return s, nil
}

func binWidth(c spectrum.Curve) float64 {
	if df := c.Resolution(); df > 0 {
		return df
	}

	return 1
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Centroid returns the power-weighted mean frequency of c in Hz.
func Centroid(c spectrum.Curve) float64 {
	centroid, _ := moments(c)
	return centroid
}

func moments(c spectrum.Curve) (centroid, spread float64) {
	total := floats.Sum(c.Values)
	if c.Len() == 0 || total <= 0 {
		return 0, 0
	}

	centroid = stat.Mean(c.Freqs, c.Values)

	var ss float64
	for i, f := range c.Freqs {
		d := f - centroid
		ss += d * d * c.Values[i]
	}

	return centroid, math.Sqrt(ss / total)
}

// Flatness returns the spectral flatness (Wiener entropy) of a power
// spectrum in the range 0..1.
//
//	flatness = exp(mean(log(P_i))) / mean(P_i)
//
// Any zero bin makes the geometric mean, and therefore the result, zero.
func Flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	mean := floats.Sum(power) / float64(len(power))
	if mean <= 0 {
		return 0
	}

	var sumLog float64
	for _, v := range power {
		if v <= 0 {
			return 0
		}
		sumLog += math.Log(v)
	}

	return math.Exp(sumLog/float64(len(power))) / mean
}

// Rolloff returns the frequency below which the given fraction (0..1) of the
// curve's power lies.
func Rolloff(c spectrum.Curve, fraction float64) float64 {
	if c.Len() == 0 {
		return 0
	}

	total := floats.Sum(c.Values)
	if total <= 0 {
		return c.Freqs[0]
	}

	cum := make([]float64, c.Len())
	floats.CumSum(cum, c.Values)

	threshold := fraction * total
	for i, v := range cum {
		if v >= threshold {
			return c.Freqs[i]
		}
	}

	return c.Freqs[c.Len()-1]
}

// Bandwidth returns the half-power (-3 dB) bandwidth around the largest bin
// of c in Hz. Crossings are linearly interpolated between bins; a side that
// never drops below half power extends to the curve edge.
func Bandwidth(c spectrum.Curve) float64 {
	n := c.Len()
	if n < 2 {
		return 0
	}

	peakBin := floats.MaxIdx(c.Values)
	peakVal := c.Values[peakBin]
	if peakVal <= 0 {
		return 0
	}

	threshold := peakVal / 2

	lower := c.Freqs[0]
	for i := peakBin; i >= 1; i-- {
		if c.Values[i-1] <= threshold && c.Values[i] > threshold {
			lower = interpFreq(c, i-1, i, threshold)
			break
		}
	}

	upper := c.Freqs[n-1]
	for i := peakBin; i < n-1; i++ {
		if c.Values[i+1] <= threshold && c.Values[i] > threshold {
			upper = interpFreq(c, i, i+1, threshold)
			break
		}
	}

	if bw := upper - lower; bw > 0 {
		return bw
	}

	return 0
}

// interpFreq linearly interpolates the frequency where the curve crosses
// threshold between bins a and b.
func interpFreq(c spectrum.Curve, a, b int, threshold float64) float64 {
	fa, fb := c.Freqs[a], c.Freqs[b]

	denom := c.Values[b] - c.Values[a]
	if denom == 0 {
		return (fa + fb) / 2
	}

	t := (threshold - c.Values[a]) / denom

	return fa + t*(fb-fa)
}
