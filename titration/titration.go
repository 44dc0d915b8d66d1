// Package titration runs the potency engine over virus-titration plates.
// A titration plate tests a ladder of virus dilution factors against the
// nanobody dilution series; each (virus dilution, nanobody) pair is fitted
// as its own sample using the same pipeline as the main assay, and the
// outputs share the main assay's row shapes.
package titration

import (
	"fmt"
	"sort"

	"gopkg.in/guregu/null.v3"

	"github.com/hts-serology/plaqueassay"
)

// VirusDilutionFactors is the ladder of virus dilution factors stamped into
// the titration plate's column pairs.
var VirusDilutionFactors = []int{2, 4, 8, 16, 32, 64}

// ColumnDilutionMapping assigns each titration plate column its virus
// dilution factor (columns come in adjacent replicate pairs).
var ColumnDilutionMapping = map[int]int{
	1: 2, 2: 2,
	3: 4, 4: 4,
	5: 8, 6: 8,
	7: 16, 8: 16,
	9: 32, 10: 32,
	11: 64, 12: 64,
}

// Observation is one titration measurement: a (virus dilution, nanobody)
// pair's normalized value at one nanobody dilution.
type Observation struct {
	VirusDilution      int
	Nanobody           int
	Dilution           float64
	PercentageInfected float64
}

// Titration holds the fitted samples of one titration workflow.
type Titration struct {
	WorkflowID string
	Variant    string
	Samples    map[string]*plaqueassay.Sample
}

// New groups titration observations by (virus dilution, nanobody) and fits
// each group with the standard potency pipeline.
func New(workflowID, variant string, observations []Observation, ladder plaqueassay.DilutionLadder, criteria plaqueassay.Criteria) *Titration {
	series := make(map[string]plaqueassay.DilutionSeries)
	for _, obs := range observations {
		name := SampleName(obs.VirusDilution, obs.Nanobody)
		series[name] = append(series[name], plaqueassay.Observation{
			Dilution:           obs.Dilution,
			PercentageInfected: obs.PercentageInfected,
		})
	}

	t := &Titration{
		WorkflowID: workflowID,
		Variant:    variant,
		Samples:    make(map[string]*plaqueassay.Sample, len(series)),
	}
	for name, data := range series {
		t.Samples[name] = plaqueassay.NewSample(name, variant, data, ladder, criteria)
	}
	return t
}

// SampleName is the stable key for a (virus dilution, nanobody) pair.
func SampleName(virusDilution, nanobody int) string {
	return fmt.Sprintf("%d-%d", virusDilution, nanobody)
}

// ResultRow is one titration sample's potency, keyed by virus dilution and
// nanobody instead of a well position.
type ResultRow struct {
	Dilution   int         `csv:"dilution" db:"dilution"`
	Nanobody   int         `csv:"nanobody" db:"nanobody"`
	IC50       null.Float  `csv:"ic50" db:"ic50"`
	Status     null.String `csv:"status" db:"status"`
	WorkflowID string      `csv:"workflow_id" db:"workflow_id"`
}

// ResultRows returns one row per titration sample, sorted by virus dilution
// then nanobody.
func (t *Titration) ResultRows() []ResultRow {
	rows := make([]ResultRow, 0, len(t.Samples))
	for name, sample := range t.Samples {
		var dilution, nanobody int
		if _, err := fmt.Sscanf(name, "%d-%d", &dilution, &nanobody); err != nil {
			continue
		}
		row := ResultRow{
			Dilution:   dilution,
			Nanobody:   nanobody,
			WorkflowID: t.WorkflowID,
		}
		if ic50, ok := sample.Result.Potency.IC50(); ok {
			row.IC50 = null.FloatFrom(ic50)
		} else {
			row.Status = null.StringFrom(sample.Result.Potency.String())
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Dilution != rows[j].Dilution {
			return rows[i].Dilution < rows[j].Dilution
		}
		return rows[i].Nanobody < rows[j].Nanobody
	})
	return rows
}
