package spectrum

import (
	"fmt"
	"math"
)

// Band is a closed frequency interval [Low, High] in Hz.
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Validate reports whether the band edges are finite and ordered.
func (b Band) Validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) || b.Low > b.High {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBand, b.Low, b.High)
	}

	return nil
}

// Contains reports whether f lies inside the band, edges included.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

// Width returns High-Low.
func (b Band) Width() float64 { return b.High - b.Low }

// Count returns how many of the ascending freqs lie inside b.
func (b Band) Count(freqs []float64) int {
	lo, hi := b.span(freqs)
	return hi - lo
}

// BinFreqs returns the one-sided bin frequencies k*rate/length,
// k = 0..length/2, of a length-point transform.
func BinFreqs(length int, rate float64) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length/2+1)
	for k := range out {
		out[k] = float64(k) * rate / float64(length)
	}

	return out
}

// span returns the index range [lo, hi) of ascending freqs inside b.
func (b Band) span(freqs []float64) (lo, hi int) {
	lo = len(freqs)
	for i, f := range freqs {
		if b.Contains(f) {
			lo = i
			break
		}
	}

	hi = lo
	for hi < len(freqs) && b.Contains(freqs[hi]) {
		hi++
	}

	return lo, hi
}

// Mask returns the bins of c with Low <= f <= High as a new curve.
func (c Curve) Mask(b Band) Curve {
	lo, hi := b.span(c.Freqs)

	return Curve{
		Freqs:  append([]float64(nil), c.Freqs[lo:hi]...),
		Values: append([]float64(nil), c.Values[lo:hi]...),
	}
}

// Mask returns the rows of s with Low <= f <= High as a new spectrogram.
func (s Spectrogram) Mask(b Band) Spectrogram {
	lo, hi := b.span(s.Freqs)

	power := make([][]float64, hi-lo)
	for k := range power {
		power[k] = append([]float64(nil), s.Power[lo+k]...)
	}

	return Spectrogram{
		Freqs: append([]float64(nil), s.Freqs[lo:hi]...),
		Times: append([]float64(nil), s.Times...),
		Power: power,
	}
}
