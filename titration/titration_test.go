package titration

import (
	"testing"

	"github.com/hts-serology/plaqueassay"
)

var nanobodyDilutions = []float64{0.000391, 0.001563, 0.006250, 0.025000}

func makeObservations(virusDilution, nanobody int, percentages []float64) []Observation {
	out := make([]Observation, len(percentages))
	for i, p := range percentages {
		out[i] = Observation{
			VirusDilution:      virusDilution,
			Nanobody:           nanobody,
			Dilution:           nanobodyDilutions[i%len(nanobodyDilutions)],
			PercentageInfected: p,
		}
	}
	return out
}

func TestNewGroupsByVirusDilutionAndNanobody(t *testing.T) {
	truth := plaqueassay.ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	curve := make([]float64, 0, 8)
	for i := 0; i < 8; i++ {
		curve = append(curve, plaqueassay.DoseResponse4(nanobodyDilutions[i%4], truth))
	}

	var observations []Observation
	observations = append(observations, makeObservations(2, 1, curve)...)
	observations = append(observations, makeObservations(2, 2, []float64{95, 100, 98, 97, 99, 101, 96, 94})...)
	observations = append(observations, makeObservations(4, 1, []float64{40, 30, 20, 10, 45, 35, 25, 15})...)

	tit := New("000005", "b", observations, plaqueassay.FourfoldLadder, plaqueassay.DefaultCriteria())
	if len(tit.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(tit.Samples))
	}

	fitted := tit.Samples[SampleName(2, 1)]
	ic50, ok := fitted.Result.Potency.IC50()
	if !ok {
		t.Fatalf("2-1 potency = %v, want numeric IC50", fitted.Result.Potency)
	}
	if ic50 < 300 || ic50 > 1400 {
		t.Errorf("2-1 IC50 = %g, want near 667", ic50)
	}

	if s := tit.Samples[SampleName(2, 2)]; !s.Result.Potency.Is(plaqueassay.NoInhibition) {
		t.Errorf("2-2 potency = %v, want no inhibition", s.Result.Potency)
	}
	if s := tit.Samples[SampleName(4, 1)]; !s.Result.Potency.Is(plaqueassay.CompleteInhibition) {
		t.Errorf("4-1 potency = %v, want complete inhibition", s.Result.Potency)
	}
}

func TestResultRowsOrdering(t *testing.T) {
	var observations []Observation
	observations = append(observations, makeObservations(4, 2, []float64{95, 100, 98, 97})...)
	observations = append(observations, makeObservations(2, 2, []float64{95, 100, 98, 97})...)
	observations = append(observations, makeObservations(2, 1, []float64{95, 100, 98, 97})...)

	tit := New("000005", "b", observations, plaqueassay.FourfoldLadder, plaqueassay.DefaultCriteria())
	rows := tit.ResultRows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	want := []struct{ dilution, nanobody int }{{2, 1}, {2, 2}, {4, 2}}
	for i, w := range want {
		if rows[i].Dilution != w.dilution || rows[i].Nanobody != w.nanobody {
			t.Errorf("row %d = %d-%d, want %d-%d", i, rows[i].Dilution, rows[i].Nanobody, w.dilution, w.nanobody)
		}
	}
	for _, row := range rows {
		if row.WorkflowID != "000005" {
			t.Errorf("row %+v missing workflow id", row)
		}
		if !row.Status.Valid || row.Status.String != "no inhibition" {
			t.Errorf("row %+v, want no-inhibition status", row)
		}
	}
}
