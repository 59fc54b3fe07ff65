package core

import "math"

const defaultEpsilon = 1e-12

// LogFloor is the additive floor used before taking logarithms of spectral
// magnitudes and powers so that empty bins map to a finite level.
const LogFloor = 1e-12

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// MagnitudeToDBFloor returns 20*log10(|x| + LogFloor). It is finite for
// every finite input.
func MagnitudeToDBFloor(mag float64) float64 {
	return 20 * math.Log10(math.Abs(mag)+LogFloor)
}

// PowerToDBFloor returns 10*log10(|p| + LogFloor).
func PowerToDBFloor(power float64) float64 {
	return 10 * math.Log10(math.Abs(power)+LogFloor)
}
