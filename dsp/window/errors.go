package window

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownWindow indicates a window name [Parse] does not know.
	ErrUnknownWindow = errors.New("window: unknown window")
	// ErrInvalidShape indicates a shape parameter outside the window's range.
	ErrInvalidShape = errors.New("window: invalid shape parameter")

	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

// ValidateShape checks alpha against the range of t: a finite Kaiser beta
// >= 0 or a Tukey fraction in [0, 1]. Other windows ignore alpha.
func ValidateShape(t Type, alpha float64) error {
	switch t {
	case TypeKaiser:
		if alpha < 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
			return fmt.Errorf("%w: kaiser beta %v", ErrInvalidShape, alpha)
		}
	case TypeTukey:
		if !(alpha >= 0 && alpha <= 1) {
			return fmt.Errorf("%w: tukey alpha %v", ErrInvalidShape, alpha)
		}
	}

	return nil
}
