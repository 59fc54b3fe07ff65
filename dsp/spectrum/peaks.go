package spectrum

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Peak is a single spectrum bin picked out of a [Curve].
type Peak struct {
	Index int     `json:"index"`
	Freq  float64 `json:"freq"`
	Value float64 `json:"value"`
}

// Nearest returns the index of the bin closest to freq.
func (c Curve) Nearest(freq float64) int {
	if len(c.Freqs) == 0 {
		return -1
	}

	i := sort.SearchFloat64s(c.Freqs, freq)

	switch {
	case i == 0:
		return 0
	case i == len(c.Freqs):
		return i - 1
	case freq-c.Freqs[i-1] <= c.Freqs[i]-freq:
		return i - 1
	default:
		return i
	}
}

// PeakNear returns the largest bin within tolHz of freq.
func (c Curve) PeakNear(freq, tolHz float64) (Peak, error) {
	lo, hi := Band{Low: freq - math.Abs(tolHz), High: freq + math.Abs(tolHz)}.span(c.Freqs)
	if lo >= hi {
		return Peak{}, fmt.Errorf("%w: %v Hz ± %v", ErrNoBins, freq, tolHz)
	}

	i := lo + floats.MaxIdx(c.Values[lo:hi])

	return Peak{Index: i, Freq: c.Freqs[i], Value: c.Values[i]}, nil
}

// Max returns the largest bin of the curve.
func (c Curve) Max() (Peak, error) {
	if len(c.Values) == 0 {
		return Peak{}, ErrNoBins
	}

	i := floats.MaxIdx(c.Values)

	return Peak{Index: i, Freq: c.Freqs[i], Value: c.Values[i]}, nil
}

// LocalMaxima returns the interior bins that exceed their left neighbour
// and are not exceeded by their right one, largest first.
func (c Curve) LocalMaxima() []Peak {
	var idx []int

	for i := 1; i+1 < len(c.Values); i++ {
		if c.Values[i] > c.Values[i-1] && c.Values[i] >= c.Values[i+1] {
			idx = append(idx, i)
		}
	}

	sort.SliceStable(idx, func(a, b int) bool { return c.Values[idx[a]] > c.Values[idx[b]] })

	out := make([]Peak, len(idx))
	for j, i := range idx {
		out[j] = Peak{Index: i, Freq: c.Freqs[i], Value: c.Values[i]}
	}

	return out
}
