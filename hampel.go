package plaqueassay

import (
	"math"

	"github.com/montanaflynn/stats"
)

// hampelScale converts a median absolute deviation into a consistent
// estimator of the standard deviation for Gaussian data.
const hampelScale = 1.4826

// Hampel runs a sliding-window robust outlier test over an ordered sequence,
// returning the indices flagged as outliers. For each interior index a
// window of half-width k is taken, and the point is flagged when it deviates
// from the window median by more than t0 scaled median absolute deviations.
// NaN values are ignored within a window; an all-NaN window skips its index.
//
// This is used against densely sampled fitted curves to catch implausible
// discontinuities left behind by a bad optimizer convergence, not against
// raw replicate noise.
func Hampel(x []float64, k int, t0 float64) []int {
	var indices []int
	n := len(x)
	for i := k; i < n-k; i++ {
		window := x[i-k : i+k+1]
		x0, ok := nanMedian(window)
		if !ok {
			continue
		}
		deviations := make([]float64, len(window))
		for j, v := range window {
			deviations[j] = math.Abs(v - x0)
		}
		s0, _ := nanMedian(deviations)
		if math.Abs(x[i]-x0) > t0*hampelScale*s0 {
			indices = append(indices, i)
		}
	}
	return indices
}

// nanMedian is the median of the non-NaN values. ok is false when every
// value is NaN (or the input is empty).
func nanMedian(x []float64) (median float64, ok bool) {
	vals := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN(), false
	}
	median, err := stats.Median(vals)
	if err != nil {
		return math.NaN(), false
	}
	return median, true
}
