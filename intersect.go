package plaqueassay

import (
	"gonum.org/v1/gonum/floats"
)

// curveSamples is the number of points used when sampling a fitted curve
// over the concentration range. Concentrations span several orders of
// magnitude so the grid is log-uniform; a linear grid would starve the
// physiologically relevant low-concentration region of resolution.
const curveSamples = 10000

// ConcentrationGrid returns curveSamples log-uniformly spaced concentrations
// spanning [xMin, xMax].
func ConcentrationGrid(xMin, xMax float64) []float64 {
	return floats.LogSpan(make([]float64, curveSamples), xMin, xMax)
}

// IntersectCurveAtLevel locates where a sampled curve crosses a constant
// target level. x and curve must be the same length with x ascending.
//
// Exactly one sign change of (level - curve) is a successful intersection
// and returns its coordinates. Zero sign changes return ErrNoCrossing and
// more than one returns ErrAmbiguousCrossing; both conditions mean the curve
// cannot produce a trustworthy IC50 and the caller falls back to the
// failed-to-fit outcome rather than reporting an arbitrary crossing point.
func IntersectCurveAtLevel(x, curve []float64, level float64) (xAt, yAt float64, err error) {
	var crossings []int
	for i := 0; i+1 < len(curve); i++ {
		if sign(level-curve[i]) != sign(level-curve[i+1]) {
			crossings = append(crossings, i)
		}
	}
	switch len(crossings) {
	case 0:
		return 0, 0, ErrNoCrossing
	case 1:
		idx := crossings[0]
		return x[idx], curve[idx], nil
	default:
		return 0, 0, ErrAmbiguousCrossing
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
