package plaqueassay

import (
	"fmt"
	"log"
	"math"
)

// Range is a closed numeric acceptance interval.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("(%g, %g)", r.Low, r.High)
}

// Criteria holds the tunable QC limits for one assay generation. Values are
// set in code and constructed explicitly; they are assay constants agreed
// with the lab, not runtime configuration.
type Criteria struct {
	// Inhibition thresholds for the potency pipeline.
	Threshold     float64
	WeakThreshold float64

	// Acceptable range for each well's cell-image-region-area as a ratio
	// to the plate median.
	CellAreaRatio Range

	// Number of flagged cell-area wells beyond which the whole plate is
	// flagged as a possible imaging failure.
	CellAreaPlateFailCount int

	// Acceptable virus-only infection median, per variant, with a default
	// for variants without a specific range.
	InfectionRate        map[string]Range
	DefaultInfectionRate Range

	// Acceptable positive-control IC50 per variant. A variant with no
	// registered range skips the check rather than guessing at limits for
	// an uncharacterized variant.
	PositiveControlIC50 map[string]Range

	// Maximum tolerated percentage-infected difference between replicate
	// pairs (assay-generation dependent: 25 or 37).
	DuplicateDifference float64

	// Model mean-squared-error ceiling above which a well is flagged.
	MSEUpperLimit float64
}

// DefaultCriteria returns the current production limits.
func DefaultCriteria() Criteria {
	return Criteria{
		Threshold:              DefaultThreshold,
		WeakThreshold:          DefaultWeakThreshold,
		CellAreaRatio:          Range{Low: 0.6, High: 1.5},
		CellAreaPlateFailCount: 8,
		InfectionRate:          map[string]Range{},
		DefaultInfectionRate:   Range{Low: 0.4, High: math.Inf(1)},
		PositiveControlIC50:    map[string]Range{},
		DuplicateDifference:    37,
		MSEUpperLimit:          150,
	}
}

// InfectionRateRange returns the acceptable infection range for a variant,
// falling back to the default when no variant-specific range is registered.
func (c Criteria) InfectionRateRange(variant string) Range {
	if r, ok := c.InfectionRate[variant]; ok {
		return r
	}
	return c.DefaultInfectionRate
}

// PositiveControlRange returns the registered positive-control IC50 range
// for a variant. ok is false when the variant has none, in which case the
// caller skips the check.
func (c Criteria) PositiveControlRange(variant string) (Range, bool) {
	r, ok := c.PositiveControlIC50[variant]
	if !ok {
		log.Printf("no positive-control IC50 range registered for variant %q, skipping check", variant)
	}
	return r, ok
}
