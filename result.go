package plaqueassay

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// Category is a categorical potency outcome. The integer values are the
// legacy sentinel codes stored in the results channel alongside numeric
// IC50s; downstream consumers key off these exact values, so they must not
// change.
type Category int

const (
	FailedToFitModel   Category = -999
	NoInhibition       Category = -600
	WeakInhibition     Category = -400
	CompleteInhibition Category = -200
)

func (c Category) String() string {
	switch c {
	case FailedToFitModel:
		return "failed to fit model"
	case NoInhibition:
		return "no inhibition"
	case WeakInhibition:
		return "weak inhibition"
	case CompleteInhibition:
		return "complete inhibition"
	}
	return fmt.Sprintf("unknown category (%d)", int(c))
}

// CategoryFromCode maps a legacy sentinel code back to its Category.
func CategoryFromCode(code int) (Category, bool) {
	switch c := Category(code); c {
	case FailedToFitModel, NoInhibition, WeakInhibition, CompleteInhibition:
		return c, true
	}
	return 0, false
}

// Potency is either a numeric IC50 (a fold-dilution) or a categorical
// outcome. The two travel through the same numeric channel at the
// persistence boundary, distinguishable by sign: IC50s are positive,
// categories encode as their negative sentinel codes.
type Potency struct {
	ic50     float64
	category Category
	numeric  bool
}

// NumericPotency wraps a measured IC50 fold-dilution.
func NumericPotency(ic50 float64) Potency {
	return Potency{ic50: ic50, numeric: true}
}

// CategoricalPotency wraps a categorical outcome.
func CategoricalPotency(c Category) Potency {
	return Potency{category: c}
}

// IsNumeric reports whether the potency is a measured IC50.
func (p Potency) IsNumeric() bool { return p.numeric }

// IC50 returns the measured fold-dilution; ok is false for categorical
// outcomes.
func (p Potency) IC50() (value float64, ok bool) {
	return p.ic50, p.numeric
}

// Category returns the categorical outcome; ok is false for numeric
// potencies.
func (p Potency) Category() (Category, bool) {
	if p.numeric {
		return 0, false
	}
	return p.category, true
}

// Is reports whether the potency is the given categorical outcome.
func (p Potency) Is(c Category) bool {
	return !p.numeric && p.category == c
}

// Value encodes the potency on the legacy numeric channel: the IC50 itself
// when numeric, otherwise the category's negative sentinel code.
func (p Potency) Value() float64 {
	if p.numeric {
		return p.ic50
	}
	return float64(p.category)
}

func (p Potency) String() string {
	if p.numeric {
		return fmt.Sprintf("%.3f", p.ic50)
	}
	return p.category.String()
}

// FitMethod records which stage of the potency pipeline produced a result.
type FitMethod string

const (
	// FitMethodHeuristic means the raw-data heuristic classified the series
	// without any model fitting.
	FitMethodHeuristic FitMethod = "heuristic"

	// FitMethodModel means a dose-response model fit was attempted (whether
	// or not it ultimately yielded a numeric IC50).
	FitMethodModel FitMethod = "model fit"
)

// Result is the full outcome of the potency pipeline for one sample.
// ModelParams is nil when fitting was bypassed by a heuristic, failed to
// converge, or produced a curve without a single unambiguous threshold
// crossing. MeanSquaredError is null whenever no fit was evaluated.
type Result struct {
	FitMethod        FitMethod
	Potency          Potency
	ModelParams      *ModelParams
	MeanSquaredError null.Float
}
