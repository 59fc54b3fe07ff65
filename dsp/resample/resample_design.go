package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/window"
)

// maxFactor bounds up and down so the prototype stays allocatable.
const maxFactor = 1 << 16

func designPolyphaseFIR(up, down int, cfg config) ([]float64, [][]float64, error) {
	if up <= 0 || down <= 0 || up > maxFactor || down > maxFactor {
		return nil, nil, fmt.Errorf("%w: %d/%d", ErrInvalidRatio, up, down)
	}

	if cfg.zeroCrossings <= 0 {
		return nil, nil, errors.New("resample: zero crossings must be > 0")
	}

	if cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		return nil, nil, errors.New("resample: cutoff scale must be in (0,1]")
	}

	factor := max(up, down)

	var taps []float64
	if factor == 1 {
		// No rate change: a unit impulse keeps the pass-through exact.
		taps = []float64{1}
	} else {
		taps = lowPassPrototype(factor, cfg)
	}

	var sum float64
	for _, v := range taps {
		sum += v
	}

	if sum == 0 {
		return nil, nil, errors.New("resample: designed zero-sum filter")
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}

	nTaps := len(taps)
	phases := make([][]float64, up)

	for p := range up {
		phase := make([]float64, 0, (nTaps-p+up-1)/up)
		for i := p; i < nTaps; i += up {
			phase = append(phase, taps[i])
		}

		phases[p] = phase
	}

	return taps, phases, nil
}

// lowPassPrototype returns 2*Z*factor+1 Kaiser-windowed sinc taps with the
// cutoff at 1/factor of Nyquist.
func lowPassPrototype(factor int, cfg config) []float64 {
	half := cfg.zeroCrossings * factor
	nTaps := 2*half + 1

	fc := cfg.cutoffScale / float64(factor)
	win := window.Generate(window.TypeKaiser, nTaps, window.WithAlpha(cfg.kaiserBeta))

	taps := make([]float64, nTaps)
	for n := range nTaps {
		t := float64(n - half)
		taps[n] = fc * sinc(fc*t) * win[n]
	}

	return taps
}

// integralPair reports a and b as int64 when both are exact integers that
// fit the float64 mantissa.
func integralPair(a, b float64) (int64, int64, bool) {
	const limit = 1 << 53
	if a != math.Trunc(a) || b != math.Trunc(b) || a > limit || b > limit {
		return 0, 0, false
	}

	return int64(a), int64(b), true
}

func approximateRatio(v float64, maxDen int) (num, den int) {
	if maxDen <= 0 {
		maxDen = defaultMaxDenominator
	}

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	a0 := math.Floor(v)
	p0, q0 := 1.0, 0.0
	p1, q1 := a0, 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)
		p2 := a*p1 + p0

		q2 := a*q1 + q0
		if q2 > float64(maxDen) || p2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))

	den = int(math.Round(q1))
	if den <= 0 || num <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	return int(gcd64(int64(a), int64(b)))
}

func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}
