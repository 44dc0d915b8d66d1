package plaqueassay

import (
	"fmt"
	"sort"
	"strings"
)

// QC rules. Each rule is independently evaluable, side-effect-free, and
// returns zero or more failure records; rules do not read each other's
// outcomes. Plate-level rules run during plate construction, sample-level
// rules after potency estimation.

// CheckCellRegionArea flags wells whose cell-image-region-area deviates from
// the plate median by more than the configured ratio. A flagged well in the
// control column fails the whole plate (a broken control implies a systemic
// problem); separately, a large count of flagged wells marks the plate as a
// possible imaging failure. Both plate-level signals can fire independently.
func CheckCellRegionArea(p *Plate, c Criteria) ([]WellFailure, []PlateFailure) {
	median, err := p.medianCellRegionArea()
	if err != nil {
		return nil, nil
	}

	var outliers []*WellData
	for _, w := range p.Wells {
		ratio := w.CellRegionArea / median
		if ratio < c.CellAreaRatio.Low || ratio > c.CellAreaRatio.High {
			outliers = append(outliers, w)
		}
	}

	var wellFailures []WellFailure
	var plateFailures []PlateFailure

	var controlWells []string
	for _, w := range outliers {
		if w.Column == ControlColumn {
			controlWells = append(controlWells, w.Well)
		}
	}
	if len(controlWells) > 0 {
		plateFailures = append(plateFailures, PlateFailure{
			Plate:  p.Barcode,
			Wells:  controlWells,
			Reason: "cell-image-region-area outside expected limits",
		})
	}

	for _, w := range outliers {
		wellFailures = append(wellFailures, WellFailure{
			Well:   w.Well,
			Plate:  p.Barcode,
			Reason: "cell region area outside expected range",
		})
	}
	if len(outliers) > c.CellAreaPlateFailCount {
		wells := make([]string, len(outliers))
		for i, w := range outliers {
			wells[i] = w.Well
		}
		plateFailures = append(plateFailures, PlateFailure{
			Plate:  p.Barcode,
			Wells:  wells,
			Reason: "possible plate fail - check DAPI plate image",
		})
	}
	return wellFailures, plateFailures
}

// CheckInfectionRate fails the plate when the virus-only infection median
// falls outside the variant's acceptable range.
func CheckInfectionRate(p *Plate, variant string, c Criteria) []PlateFailure {
	infection := p.InfectionMedian
	acceptable := c.InfectionRateRange(variant)
	if acceptable.Contains(infection) {
		return nil
	}
	wells := make([]string, len(VirusOnlyWells))
	copy(wells, VirusOnlyWells)
	return []PlateFailure{{
		Plate:  p.Barcode,
		Wells:  wells,
		Reason: fmt.Sprintf("virus-only infection median (%.3f) outside range: %s", infection, acceptable),
	}}
}

// CheckPositiveControl verifies a positive-control well's IC50 against the
// variant's registered range. It only applies to the static positive-control
// positions. Categorical outcomes encode as negative values on the numeric
// channel and therefore always fail the range check; a positive control that
// could not produce an IC50 is a failure by definition.
func CheckPositiveControl(s *Sample, c Criteria) []WellFailure {
	if !IsPositiveControl(s.Name) {
		return nil
	}
	acceptable, ok := c.PositiveControlRange(s.Variant)
	if !ok {
		return nil
	}
	if acceptable.Contains(s.Result.Potency.Value()) {
		return nil
	}
	return []WellFailure{{
		Well:   s.Name,
		Plate:  "DILUTION SERIES",
		Reason: fmt.Sprintf("positive control failure. IC50 = %s", s.Result.Potency),
	}}
}

// CheckReplicateDiscordance flags a well when two or more dilution levels
// have replicate pairs further apart than the configured difference. The
// check is skipped for no-inhibition and failed-to-fit classifications,
// where discordance is expected or meaningless. Only levels with exactly two
// replicates are examined; the rule is undefined for any other replicate
// count and such levels are skipped.
func CheckReplicateDiscordance(s *Sample, c Criteria) []WellFailure {
	if s.Result.Potency.Is(NoInhibition) || s.Result.Potency.Is(FailedToFitModel) {
		return nil
	}
	replicates := s.Data.Replicates()
	keys := make([]int, 0, len(replicates))
	for key := range replicates {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	var discordant []string
	for _, key := range keys {
		values := replicates[key]
		if len(values) != 2 {
			continue
		}
		if diff := values[0] - values[1]; diff >= c.DuplicateDifference || -diff >= c.DuplicateDifference {
			discordant = append(discordant, fmt.Sprintf("1:%d", key))
		}
	}
	if len(discordant) < 2 {
		return nil
	}
	return []WellFailure{{
		Well:  s.Name,
		Plate: "DILUTION SERIES",
		Reason: fmt.Sprintf(
			"2 or more duplicates differ by >= %g percentage points: %s",
			c.DuplicateDifference, strings.Join(discordant, ", "),
		),
	}}
}

// CheckModelFitFailure flags a well whose final classification is the
// failed-to-fit outcome.
func CheckModelFitFailure(s *Sample) []WellFailure {
	if !s.Result.Potency.Is(FailedToFitModel) {
		return nil
	}
	return []WellFailure{{
		Well:   s.Name,
		Plate:  "DILUTION SERIES",
		Reason: "failed to fit model to data points",
	}}
}

// CheckHighMSE flags a well whose model fit converged but fits the points
// poorly.
func CheckHighMSE(s *Sample, c Criteria) []WellFailure {
	mse := s.Result.MeanSquaredError
	if !mse.Valid || mse.Float64 <= c.MSEUpperLimit {
		return nil
	}
	return []WellFailure{{
		Well:   s.Name,
		Plate:  "DILUTION SERIES",
		Reason: fmt.Sprintf("model mean squared error (%.3f) greater than limit (%g)", mse.Float64, c.MSEUpperLimit),
	}}
}
