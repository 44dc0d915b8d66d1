package plaqueassay

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// Experiment groups all plates and samples for one workflow and variant.
type Experiment struct {
	Name     string
	Variant  string
	Ladder   DilutionLadder
	Criteria Criteria

	Plates  map[string]*Plate
	Samples map[string]*Sample
}

// NewExperiment builds plates from the ingested well records, normalizes
// them, and fits every sample. All records must belong to one variant;
// mixed variants in one run are an upstream inconsistency and a hard error.
//
// Samples are fitted on a worker pool: each fit is a pure function of its
// own series and the static criteria, so parallelism does not change any
// output.
func NewExperiment(records []*WellData, ladder DilutionLadder, criteria Criteria) (*Experiment, error) {
	if len(records) == 0 {
		return nil, pfx.Err(fmt.Errorf("no well records supplied"))
	}
	variant := records[0].Variant
	for _, r := range records {
		if r.Variant != variant {
			return nil, pfx.Err(ErrMultipleVariants)
		}
	}

	e := &Experiment{
		Name:     experimentName(records[0].PlateBarcode),
		Variant:  variant,
		Ladder:   ladder,
		Criteria: criteria,
		Plates:   make(map[string]*Plate),
		Samples:  make(map[string]*Sample),
	}

	byBarcode := make(map[string][]*WellData)
	for _, r := range records {
		byBarcode[r.PlateBarcode] = append(byBarcode[r.PlateBarcode], r)
	}
	for barcode, wells := range byBarcode {
		plate, err := NewPlate(wells, criteria)
		if err != nil {
			return nil, err
		}
		e.Plates[barcode] = plate
	}

	if err := e.makeSamples(); err != nil {
		return nil, err
	}
	return e, nil
}

// experimentName strips the variant/dilution prefix from a plate barcode,
// leaving the workflow identifier shared by all plates in the run.
func experimentName(barcode string) string {
	if len(barcode) <= 3 {
		return barcode
	}
	return barcode[3:]
}

// makeSamples groups normalized wells across plates into per-specimen
// dilution series and fits them concurrently.
func (e *Experiment) makeSamples() error {
	series := make(map[string]DilutionSeries)
	for _, plate := range e.Plates {
		for _, w := range plate.Wells {
			series[w.Well] = append(series[w.Well], Observation{
				Dilution:           w.Dilution,
				PercentageInfected: w.PercentageInfected,
			})
		}
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}

	work := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range work {
				sample := NewSample(name, e.Variant, series[name], e.Ladder, e.Criteria)
				mu.Lock()
				e.Samples[name] = sample
				mu.Unlock()
			}
		}()
	}
	for _, name := range names {
		work <- name
	}
	close(work)
	wg.Wait()

	return nil
}

// ResultRow is one sample's final potency, shaped for the results table: a
// numeric IC50 or a status string, never both.
type ResultRow struct {
	Well       string      `csv:"well" db:"well"`
	IC50       null.Float  `csv:"ic50" db:"ic50"`
	Status     null.String `csv:"status" db:"status"`
	Experiment string      `csv:"experiment" db:"experiment"`
	Variant    string      `csv:"variant" db:"variant"`
}

// ResultRows returns one row per sample, sorted by well.
func (e *Experiment) ResultRows() []ResultRow {
	rows := make([]ResultRow, 0, len(e.Samples))
	for _, name := range e.sampleNames() {
		sample := e.Samples[name]
		row := ResultRow{Well: name, Experiment: e.Name, Variant: e.Variant}
		if ic50, ok := sample.Result.Potency.IC50(); ok {
			row.IC50 = null.FloatFrom(ic50)
		} else {
			row.Status = null.StringFrom(sample.Result.Potency.String())
		}
		rows = append(rows, row)
	}
	return rows
}

// FailureRows returns every plate- and sample-level failure in the
// experiment as flat rows: plate failures first, then well failures, each
// group sorted for stable output. Failures logged here are the run's QC
// summary.
func (e *Experiment) FailureRows() []FailureRow {
	var plateRows, wellRows []FailureRow
	for _, barcode := range e.plateBarcodes() {
		plate := e.Plates[barcode]
		for _, f := range plate.PlateFailures {
			log.Printf("plate %s failed due to %s", f.Plate, f.Reason)
			plateRows = append(plateRows, f.Row())
		}
		for _, f := range plate.WellFailures {
			log.Printf("well %s failed due to %s", f.Well, f.Reason)
			wellRows = append(wellRows, f.Row())
		}
	}
	for _, name := range e.sampleNames() {
		for _, f := range e.Samples[name].Failures {
			log.Printf("well %s failed due to %s", f.Well, f.Reason)
			wellRows = append(wellRows, f.Row())
		}
	}
	return append(plateRows, wellRows...)
}

// ParameterRow carries one sample's fitted curve parameters, named for
// their geometric role. The legacy swapped top/bottom column names exist
// only in the limsdb adapter.
type ParameterRow struct {
	Well             string     `csv:"well"`
	PlateauLowConc   null.Float `csv:"plateau_low_conc"`
	PlateauHighConc  null.Float `csv:"plateau_high_conc"`
	EC50             null.Float `csv:"ec50"`
	HillSlope        null.Float `csv:"hill_slope"`
	MeanSquaredError null.Float `csv:"mean_squared_error"`
	Experiment       string     `csv:"experiment"`
	Variant          string     `csv:"variant"`
}

// ParameterRows returns one row per sample; samples without a fitted model
// carry null parameters.
func (e *Experiment) ParameterRows() []ParameterRow {
	rows := make([]ParameterRow, 0, len(e.Samples))
	for _, name := range e.sampleNames() {
		sample := e.Samples[name]
		row := ParameterRow{
			Well:             name,
			MeanSquaredError: sample.Result.MeanSquaredError,
			Experiment:       e.Name,
			Variant:          e.Variant,
		}
		if p := sample.Result.ModelParams; p != nil {
			row.PlateauLowConc = null.FloatFrom(p.PlateauLowConc)
			row.PlateauHighConc = null.FloatFrom(p.PlateauHighConc)
			row.EC50 = null.FloatFrom(p.EC50)
			row.HillSlope = null.FloatFrom(p.HillSlope)
		}
		rows = append(rows, row)
	}
	return rows
}

// NormalisedRow is one well's normalized measurements, the per-well record
// consumed by downstream reporting.
type NormalisedRow struct {
	Well                 string  `csv:"well"`
	Row                  int     `csv:"row"`
	Column               int     `csv:"column"`
	Dilution             float64 `csv:"dilution"`
	PlateBarcode         string  `csv:"plate_barcode"`
	BackgroundSubtracted float64 `csv:"background_subtracted_plaque_area"`
	PercentageInfected   float64 `csv:"percentage_infected"`
	Variant              string  `csv:"variant"`
}

// NormalisedRows returns every well's normalized data across all plates.
func (e *Experiment) NormalisedRows() []NormalisedRow {
	var rows []NormalisedRow
	for _, barcode := range e.plateBarcodes() {
		for _, w := range e.Plates[barcode].Wells {
			rows = append(rows, NormalisedRow{
				Well:                 w.Well,
				Row:                  w.Row,
				Column:               w.Column,
				Dilution:             w.Dilution,
				PlateBarcode:         w.PlateBarcode,
				BackgroundSubtracted: w.BackgroundSubtracted,
				PercentageInfected:   w.PercentageInfected,
				Variant:              w.Variant,
			})
		}
	}
	return rows
}

func (e *Experiment) sampleNames() []string {
	names := make([]string, 0, len(e.Samples))
	for name := range e.Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Experiment) plateBarcodes() []string {
	barcodes := make([]string, 0, len(e.Plates))
	for barcode := range e.Plates {
		barcodes = append(barcodes, barcode)
	}
	sort.Strings(barcodes)
	return barcodes
}
