package plaqueassay

import (
	"testing"
)

// makeTestExperimentRecords builds four mock 96-well plates, one per
// dilution of the fourfold ladder. Well B02 carries a clean dose-response
// curve; every other sample well sits exactly at the inhibition threshold.
func makeTestExperimentRecords(t *testing.T) []*WellData {
	t.Helper()
	truth := ModelParams{PlateauLowConc: 0, PlateauHighConc: 100, EC50: 0.0015, HillSlope: 1}
	barcodes := []string{"S11000001", "S21000001", "S31000001", "S41000001"}

	var records []*WellData
	for plateNum := 1; plateNum <= 4; plateNum++ {
		dilution, err := FourfoldLadder.PlateMapping(plateNum)
		if err != nil {
			t.Fatal(err)
		}
		wells := makeTestPlateWells(barcodes[plateNum-1], plateNum, dilution, "England2")
		// percentage infected is plaque area over the virus-only median
		// (1.0), so the curve value maps directly onto the plaque area
		findTestWell(wells, "B02").NormalisedPlaqueArea = DoseResponse4(dilution, truth) / 100
		records = append(records, wells...)
	}
	return records
}

func TestNewExperiment(t *testing.T) {
	records := makeTestExperimentRecords(t)
	e, err := NewExperiment(records, FourfoldLadder, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "000001" {
		t.Errorf("experiment name = %q, want 000001", e.Name)
	}
	if e.Variant != "England2" {
		t.Errorf("variant = %q, want England2", e.Variant)
	}
	if len(e.Plates) != 4 {
		t.Fatalf("plates = %d, want 4", len(e.Plates))
	}
	if len(e.Samples) != 96 {
		t.Fatalf("samples = %d, want 96", len(e.Samples))
	}

	// wells pinned at the threshold classify as complete inhibition by the
	// raw-data heuristic
	flat := e.Samples["B03"]
	if !flat.Result.Potency.Is(CompleteInhibition) {
		t.Errorf("B03 potency = %v, want complete inhibition", flat.Result.Potency)
	}
	if flat.Result.FitMethod != FitMethodHeuristic {
		t.Errorf("B03 fit method = %q, want %q", flat.Result.FitMethod, FitMethodHeuristic)
	}

	// virus-only wells normalize to 100 percent infected everywhere
	if virus := e.Samples["A12"]; !virus.Result.Potency.Is(NoInhibition) {
		t.Errorf("A12 potency = %v, want no inhibition", virus.Result.Potency)
	}

	// the dose-response well fits to a numeric IC50 near 1/EC50
	curve := e.Samples["B02"]
	ic50, ok := curve.Result.Potency.IC50()
	if !ok {
		t.Fatalf("B02 potency = %v, want numeric IC50", curve.Result.Potency)
	}
	if ic50 < 300 || ic50 > 1400 {
		t.Errorf("B02 IC50 = %g, want near 667", ic50)
	}
}

func TestNewExperimentRejectsMixedVariants(t *testing.T) {
	records := makeTestExperimentRecords(t)
	records[17].Variant = "B117"
	if _, err := NewExperiment(records, FourfoldLadder, DefaultCriteria()); err == nil {
		t.Fatal("expected an error for records from two variants")
	}
}

func TestExperimentResultRows(t *testing.T) {
	records := makeTestExperimentRecords(t)
	e, err := NewExperiment(records, FourfoldLadder, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}

	rows := e.ResultRows()
	if len(rows) != 96 {
		t.Fatalf("rows = %d, want 96", len(rows))
	}
	if rows[0].Well != "A01" {
		t.Errorf("first row well = %q, want A01 (sorted output)", rows[0].Well)
	}

	byWell := make(map[string]ResultRow, len(rows))
	for _, row := range rows {
		if row.Experiment != "000001" || row.Variant != "England2" {
			t.Fatalf("row %+v missing experiment annotation", row)
		}
		byWell[row.Well] = row
	}

	// numeric and categorical outcomes are mutually exclusive per row
	if row := byWell["B02"]; !row.IC50.Valid || row.Status.Valid {
		t.Errorf("B02 row = %+v, want numeric IC50 and null status", row)
	}
	if row := byWell["B03"]; row.IC50.Valid || row.Status.String != "complete inhibition" {
		t.Errorf("B03 row = %+v, want null IC50 and complete-inhibition status", row)
	}
}

func TestExperimentParameterRows(t *testing.T) {
	records := makeTestExperimentRecords(t)
	e, err := NewExperiment(records, FourfoldLadder, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}

	rows := e.ParameterRows()
	if len(rows) != 96 {
		t.Fatalf("rows = %d, want 96", len(rows))
	}
	byWell := make(map[string]ParameterRow, len(rows))
	for _, row := range rows {
		byWell[row.Well] = row
	}
	if row := byWell["B02"]; !row.EC50.Valid || !row.MeanSquaredError.Valid {
		t.Errorf("B02 row = %+v, want fitted parameters", row)
	}
	if row := byWell["B03"]; row.EC50.Valid || row.MeanSquaredError.Valid {
		t.Errorf("B03 row = %+v, want null parameters for a heuristic result", row)
	}
}

func TestExperimentNormalisedRows(t *testing.T) {
	records := makeTestExperimentRecords(t)
	e, err := NewExperiment(records, FourfoldLadder, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}

	rows := e.NormalisedRows()
	if len(rows) != 4*96 {
		t.Fatalf("rows = %d, want %d", len(rows), 4*96)
	}
	for _, row := range rows {
		if row.Well == "B03" && row.PercentageInfected != 50 {
			t.Errorf("B03 on %s = %g percent infected, want 50", row.PlateBarcode, row.PercentageInfected)
		}
	}
}

func TestExperimentFailureRowsCleanRun(t *testing.T) {
	records := makeTestExperimentRecords(t)
	e, err := NewExperiment(records, FourfoldLadder, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if rows := e.FailureRows(); len(rows) != 0 {
		t.Fatalf("failure rows = %v, want none for a clean run", rows)
	}
}
