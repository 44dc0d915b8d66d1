package plaqueassay

import "math"

// ModelParams holds the fitted 4-parameter dose-response curve. The fields
// are named for their curve-geometry role; the legacy "top"/"bottom" column
// names (which are swapped relative to the plotted curve) exist only in the
// limsdb persistence adapter.
type ModelParams struct {
	PlateauLowConc  float64 // legacy "top"
	PlateauHighConc float64 // legacy "bottom"
	EC50            float64
	HillSlope       float64
}

// DoseResponse3 is the 3-parameter dose-response curve evaluated at
// concentration x.
func DoseResponse3(x, plateauLowConc, plateauHighConc, ec50 float64) float64 {
	return plateauHighConc + x*(plateauLowConc-plateauHighConc)/(ec50+x)
}

// DoseResponse4 is the 4-parameter dose-response curve evaluated at
// concentration x. Negative x/ec50 raised to a fractional power yields NaN;
// that happens routinely while the optimizer explores parameter space and is
// handled by the caller, not treated as an error.
func DoseResponse4(x float64, p ModelParams) float64 {
	return (p.PlateauHighConc - p.PlateauLowConc) / (1 + math.Pow(x/p.EC50, p.HillSlope))
}

// EvalDoseResponse4 evaluates the 4-parameter curve over a slice of
// concentrations.
func EvalDoseResponse4(xs []float64, p ModelParams) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = DoseResponse4(x, p)
	}
	return out
}

// InverseDoseResponse4 gives the concentration at which the fitted curve
// equals y (default interest is y=50). It is the analytic inverse of
// DoseResponse4 and serves as a closed-form cross-check on the sampled
// intersection search.
func InverseDoseResponse4(p ModelParams, y float64) float64 {
	return p.EC50 * math.Pow((p.PlateauHighConc-p.PlateauLowConc)/(y-p.PlateauLowConc)-1, 1/p.HillSlope)
}
