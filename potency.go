package plaqueassay

import (
	"log"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/guregu/null.v3"
)

const (
	// DefaultThreshold is the percentage-infected level defining inhibition;
	// the IC50 is the fold-dilution at which the curve crosses it.
	DefaultThreshold = 50

	// DefaultWeakThreshold separates weak inhibition from no inhibition.
	DefaultWeakThreshold = 60

	// mseCeiling caps the reported mean squared error. The results table
	// column cannot hold larger values; this is a persistence accommodation
	// carried here so outputs stay comparable with stored history.
	mseCeiling = 99999

	// maxFitEvaluations bounds a single model fit so a pathological series
	// cannot stall the run.
	maxFitEvaluations = 500

	// boundsPenalty is the objective value assigned to parameter sets
	// outside the box constraints or producing undefined predictions.
	boundsPenalty = 1e12
)

// Fit starting point and box constraints, in parameter order
// (plateauLowConc, plateauHighConc, ec50, hillSlope). The hill slope is
// held non-negative: a sign flip inverts the curve meaninglessly.
var (
	fitStart = []float64{0, 100, 0.015, 1}
	fitLower = []float64{-0.01, 0, -10, 0}
	fitUpper = []float64{100, 120, 10, 10}
)

// FitSample runs the full potency pipeline over one sample's dilution
// series. Each stage short-circuits on success: raw-data heuristics, then a
// bounded 4-parameter least-squares fit, then fitted-curve heuristics, then
// the threshold intersection. Every soft failure along the way resolves to
// the failed-to-fit category rather than an error, so one ambiguous sample
// never aborts an experiment.
func FitSample(name string, series DilutionSeries, ladder DilutionLadder, threshold, weakThreshold float64) Result {
	data := series.Clean()

	if category, ok := classifyRawDilutions(data, ladder, threshold, weakThreshold); ok {
		log.Printf("well %s classified %q by raw-data heuristic", name, category)
		return Result{
			FitMethod: FitMethodHeuristic,
			Potency:   CategoricalPotency(category),
		}
	}

	xs := data.Dilutions()
	ys := data.Percentages()

	params, err := FitDoseResponse4(xs, ys)
	if err != nil {
		log.Printf("well %s: %v", name, err)
		return Result{
			FitMethod: FitMethodModel,
			Potency:   CategoricalPotency(FailedToFitModel),
		}
	}

	xMin, xMax := ladder.GridBounds()
	grid := ConcentrationGrid(xMin, xMax)
	fitted := EvalDoseResponse4(grid, params)
	mse := null.FloatFrom(meanSquaredError(EvalDoseResponse4(xs, params), ys))

	if category, ok := classifyFittedCurve(name, grid, fitted, threshold, weakThreshold); ok {
		// the classification overrides the curve-derived IC50, but the
		// parameters describe the curve that was inspected and are kept
		return Result{
			FitMethod:        FitMethodModel,
			Potency:          CategoricalPotency(category),
			ModelParams:      &params,
			MeanSquaredError: mse,
		}
	}

	xAt, _, err := IntersectCurveAtLevel(grid, fitted, threshold)
	if err != nil {
		// a fit without a single unambiguous crossing is not trustworthy
		// even though the optimizer converged, so the parameters go too
		log.Printf("well %s: %v", name, err)
		return Result{
			FitMethod:        FitMethodModel,
			Potency:          CategoricalPotency(FailedToFitModel),
			MeanSquaredError: mse,
		}
	}

	ic50 := 1 / xAt
	potency := NumericPotency(ic50)
	// an implied IC50 outside the tested dilution range is extrapolation,
	// not measurement; recast to the categorical outcome it implies
	if maxConc := xs[len(xs)-1]; ic50 < 1/maxConc {
		log.Printf("well %s IC50 %.1f below lowest tested fold-dilution, weak inhibition", name, ic50)
		potency = CategoricalPotency(WeakInhibition)
	} else if minConc := xs[0]; ic50 > 1/minConc {
		log.Printf("well %s IC50 %.1f above highest tested fold-dilution, complete inhibition", name, ic50)
		potency = CategoricalPotency(CompleteInhibition)
	}

	return Result{
		FitMethod:        FitMethodModel,
		Potency:          potency,
		ModelParams:      &params,
		MeanSquaredError: mse,
	}
}

// FitDoseResponse4 fits the 4-parameter dose-response model to the observed
// points by least squares, minimizing with Nelder-Mead over a penalized
// surface that keeps the parameters inside their box constraints. Parameter
// sets producing NaN predictions (negative bases raised to fractional
// powers during exploration) are penalized rather than propagated.
func FitDoseResponse4(xs, ys []float64) (ModelParams, error) {
	if len(xs) < 4 {
		// fewer observations than parameters cannot constrain the model
		return ModelParams{}, ErrFitFailed
	}
	objective := func(v []float64) float64 {
		penalty := 0.0
		for i := range v {
			if v[i] < fitLower[i] {
				penalty += fitLower[i] - v[i]
			} else if v[i] > fitUpper[i] {
				penalty += v[i] - fitUpper[i]
			}
		}
		if penalty > 0 {
			return boundsPenalty * (1 + penalty)
		}
		p := ModelParams{PlateauLowConc: v[0], PlateauHighConc: v[1], EC50: v[2], HillSlope: v[3]}
		sse := 0.0
		for i := range xs {
			pred := DoseResponse4(xs[i], p)
			if math.IsNaN(pred) || math.IsInf(pred, 0) {
				return boundsPenalty
			}
			d := pred - ys[i]
			sse += d * d
		}
		return sse
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{FuncEvaluations: maxFitEvaluations}
	start := make([]float64, len(fitStart))
	copy(start, fitStart)

	res, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if err != nil {
		return ModelParams{}, ErrFitFailed
	}
	if math.IsNaN(res.F) || res.F >= boundsPenalty {
		return ModelParams{}, ErrFitFailed
	}
	return ModelParams{
		PlateauLowConc:  res.X[0],
		PlateauHighConc: res.X[1],
		EC50:            res.X[2],
		HillSlope:       res.X[3],
	}, nil
}

// meanSquaredError is the fit-quality metric: squared residuals between the
// fitted curve at the observed dilutions and the observed values, capped at
// the results-table ceiling.
func meanSquaredError(fitted, observed []float64) float64 {
	sum := 0.0
	for i := range fitted {
		d := fitted[i] - observed[i]
		sum += d * d
	}
	mse := sum / float64(len(fitted))
	if mse > mseCeiling {
		mse = mseCeiling
	}
	return mse
}
