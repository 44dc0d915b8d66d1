package plaqueassay

import (
	"log"
	"math"
)

// classifyRawDilutions applies cheap rules to the replicate-averaged values
// at each dilution level, classifying the series without any model fitting.
// ok is false when no rule fired and the series should go to the optimizer.
//
// The rules are evaluated in a fixed order and later rules may override
// earlier ones; in particular the final all-above-weak-threshold check can
// override a weak/complete classification assigned above it when the
// averages are contradictory. That order-dependence matches the recorded
// historical results and must not be reordered without sign-off from the
// assay owners.
func classifyRawDilutions(series DilutionSeries, ladder DilutionLadder, threshold, weakThreshold float64) (result Category, ok bool) {
	avg := series.LevelAverages()
	if len(avg) == 0 {
		return 0, false
	}
	d1, d2, d3, d4 := ladder[0], ladder[1], ladder[2], ladder[3]

	// complete inhibition across every tested level
	if allBelow(avg, threshold) {
		result, ok = CompleteInhibition, true
	}

	// complete inhibition at the two most-dilute levels. A missing level
	// (removed upstream, e.g. for high background) falls back one level;
	// two missing levels leave nothing the model could use either.
	if v4, have4 := avg[d4]; have4 {
		if v4 <= threshold {
			if v3, have3 := avg[d3]; !have3 {
				result, ok = FailedToFitModel, true
			} else if v3 <= threshold {
				result, ok = CompleteInhibition, true
			}
		}
	} else if v3, have3 := avg[d3]; have3 {
		if v3 <= threshold {
			if v2, have2 := avg[d2]; !have2 {
				result, ok = FailedToFitModel, true
			} else if v2 <= threshold {
				result, ok = CompleteInhibition, true
			}
		}
	} else {
		result, ok = FailedToFitModel, true
	}

	// weak inhibition at the least-dilute level, with the same fallback
	if v1, have1 := avg[d1]; have1 {
		if v1 > threshold && v1 < weakThreshold {
			result, ok = WeakInhibition, true
		}
	} else if v2, have2 := avg[d2]; have2 {
		if v2 > threshold && v2 < weakThreshold {
			result, ok = WeakInhibition, true
		}
	} else {
		result, ok = FailedToFitModel, true
	}

	// no inhibition anywhere
	if allAbove(avg, weakThreshold) {
		result, ok = NoInhibition, true
	}

	return result, ok
}

// classifyFittedCurve applies shape checks to the densely sampled fitted
// curve, catching fits that converged numerically but are not believable.
// ok is false when the curve looks sound enough to intersect.
func classifyFittedCurve(name string, x, y []float64, threshold, weakThreshold float64) (result Category, ok bool) {
	// sharp discontinuities in what should be a smooth sigmoid mean the
	// optimizer wandered somewhere implausible
	if outliers := Hampel(y, 5, 3); len(outliers) > 0 {
		log.Printf("well %s model failed due to outliers on fitted curve", name)
		result, ok = FailedToFitModel, true
	}
	// a curve that never reaches the inhibition threshold but does dip
	// under the weak threshold is weak inhibition, provided the minimum
	// sits at the strong-concentration end where biology puts it
	yMin, idxMin := minIgnoringNaN(y)
	if yMin > threshold && yMin < weakThreshold {
		if float64(idxMin) > float64(len(x))/4 {
			result, ok = WeakInhibition, true
		} else {
			result, ok = FailedToFitModel, true
		}
	}
	return result, ok
}

func allBelow(avg map[int]float64, limit float64) bool {
	for _, v := range avg {
		if v > limit {
			return false
		}
	}
	return true
}

func allAbove(avg map[int]float64, limit float64) bool {
	for _, v := range avg {
		if v <= limit {
			return false
		}
	}
	return true
}

func minIgnoringNaN(y []float64) (min float64, idx int) {
	min, idx = math.Inf(1), -1
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min, idx = v, i
		}
	}
	return min, idx
}
