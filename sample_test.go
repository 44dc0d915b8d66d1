package plaqueassay

import (
	"strings"
	"testing"

	"gopkg.in/guregu/null.v3"
)

func discordanceFailures(failures []WellFailure) []WellFailure {
	var out []WellFailure
	for _, f := range failures {
		if strings.HasPrefix(f.Reason, "2 or more duplicates differ by >=") {
			out = append(out, f)
		}
	}
	return out
}

func TestNewSamplePositiveControlInRange(t *testing.T) {
	truth := ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	criteria := DefaultCriteria()
	criteria.PositiveControlIC50 = map[string]Range{"England2": {Low: 100, High: 3000}}

	s := NewSample("A06", "England2", sigmoidSeries(truth), FourfoldLadder, criteria)
	if !s.IsPositiveControl {
		t.Fatal("A06 should be a positive-control position")
	}
	if !s.Result.Potency.IsNumeric() {
		t.Fatalf("potency = %v, want numeric IC50", s.Result.Potency)
	}
	if len(s.Failures) != 0 {
		t.Fatalf("failures = %v, want none", s.Failures)
	}
}

func TestNewSamplePositiveControlOutOfRange(t *testing.T) {
	truth := ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	criteria := DefaultCriteria()
	criteria.PositiveControlIC50 = map[string]Range{"England2": {Low: 1, High: 10}}

	s := NewSample("A06", "England2", sigmoidSeries(truth), FourfoldLadder, criteria)
	var found bool
	for _, f := range s.Failures {
		if strings.HasPrefix(f.Reason, "positive control failure. IC50 = ") {
			found = true
			if f.Plate != "DILUTION SERIES" {
				t.Errorf("plate = %q, want DILUTION SERIES", f.Plate)
			}
		}
	}
	if !found {
		t.Fatalf("failures = %v, want a positive-control failure", s.Failures)
	}
}

func TestNewSamplePositiveControlNoRegisteredRange(t *testing.T) {
	truth := ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	// no range registered for the variant: the check is skipped entirely
	s := NewSample("A06", "England2", sigmoidSeries(truth), FourfoldLadder, DefaultCriteria())
	for _, f := range s.Failures {
		if strings.HasPrefix(f.Reason, "positive control failure") {
			t.Fatalf("unexpected positive-control failure: %v", f)
		}
	}
}

func TestNewSampleNonControlSkipsPositiveControlCheck(t *testing.T) {
	truth := ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	criteria := DefaultCriteria()
	criteria.PositiveControlIC50 = map[string]Range{"England2": {Low: 1, High: 10}}

	s := NewSample("A01", "England2", sigmoidSeries(truth), FourfoldLadder, criteria)
	if s.IsPositiveControl {
		t.Fatal("A01 should not be a positive-control position")
	}
	for _, f := range s.Failures {
		if strings.HasPrefix(f.Reason, "positive control failure") {
			t.Fatalf("unexpected positive-control failure: %v", f)
		}
	}
}

func TestNewSampleReplicateDiscordance(t *testing.T) {
	series := makeSeries([]float64{90, 95, 120, 80, 60, 15, 12, 14})

	s := NewSample("B02", "England2", series, FourfoldLadder, DefaultCriteria())
	got := discordanceFailures(s.Failures)
	if len(got) != 1 {
		t.Fatalf("discordance failures = %v, want exactly one", got)
	}
	if !strings.Contains(got[0].Reason, "1:160, 1:640") {
		t.Errorf("reason = %q, want discordant levels 1:160, 1:640", got[0].Reason)
	}
	if got[0].Well != "B02" || got[0].Plate != "DILUTION SERIES" {
		t.Errorf("failure = %+v, want well B02 on DILUTION SERIES", got[0])
	}
}

func TestNewSampleDiscordanceSkippedForNoInhibition(t *testing.T) {
	// wildly discordant replicates, but every value sits above the weak
	// threshold so the series classifies as no inhibition and the
	// discordance rule does not apply
	series := makeSeries([]float64{98, 100, 100, 150, 65, 110, 70, 120})

	s := NewSample("B03", "England2", series, FourfoldLadder, DefaultCriteria())
	if !s.Result.Potency.Is(NoInhibition) {
		t.Fatalf("potency = %v, want no inhibition", s.Result.Potency)
	}
	if got := discordanceFailures(s.Failures); len(got) != 0 {
		t.Fatalf("discordance failures = %v, want none", got)
	}
}

func TestNewSampleModelFitFailure(t *testing.T) {
	// two whole dilution levels removed upstream leave too little to
	// classify or fit
	series := DilutionSeries{
		{Dilution: 0.006250, PercentageInfected: 30},
		{Dilution: 0.025000, PercentageInfected: 70},
	}
	s := NewSample("B04", "England2", series, FourfoldLadder, DefaultCriteria())
	if !s.Result.Potency.Is(FailedToFitModel) {
		t.Fatalf("potency = %v, want failed to fit", s.Result.Potency)
	}
	var reasons []string
	for _, f := range s.Failures {
		reasons = append(reasons, f.Reason)
	}
	if len(reasons) != 1 || reasons[0] != "failed to fit model to data points" {
		t.Fatalf("failures = %v, want exactly the fit-failure record", reasons)
	}
}

func TestCheckHighMSE(t *testing.T) {
	criteria := DefaultCriteria()

	s := &Sample{Name: "C01", Result: Result{MeanSquaredError: null.FloatFrom(500)}}
	failures := CheckHighMSE(s, criteria)
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want one", failures)
	}
	if !strings.Contains(failures[0].Reason, "greater than limit (150)") {
		t.Errorf("reason = %q, want the limit named", failures[0].Reason)
	}

	s.Result.MeanSquaredError = null.FloatFrom(100)
	if failures := CheckHighMSE(s, criteria); len(failures) != 0 {
		t.Fatalf("failures = %v, want none for MSE under the limit", failures)
	}

	s.Result.MeanSquaredError = null.Float{}
	if failures := CheckHighMSE(s, criteria); len(failures) != 0 {
		t.Fatalf("failures = %v, want none without an evaluated fit", failures)
	}
}
