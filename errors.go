package plaqueassay

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCrossing is returned by IntersectCurveAtLevel when the curve
	// never reaches the target level inside the sampled range.
	ErrNoCrossing = errors.New("curve does not cross target level")

	// ErrAmbiguousCrossing is returned by IntersectCurveAtLevel when the
	// curve crosses the target level more than once. A fit whose curve
	// re-crosses the threshold is not trustworthy.
	ErrAmbiguousCrossing = errors.New("curve crosses target level more than once")

	// ErrFitFailed is returned when the optimizer cannot converge on the
	// dose-response parameters.
	ErrFitFailed = errors.New("failed to fit dose-response model")

	// ErrMultipleVariants indicates plates from more than one variant were
	// mixed into a single analysis run.
	ErrMultipleVariants = errors.New("multiple variants detected")
)

func errUnknownPlateNum(plateNum int) error {
	return fmt.Errorf("no dilution mapping for plate number %d", plateNum)
}
