package plaqueassay

import (
	"fmt"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
)

// WellData is one well's measurements on a mock 96-well plate, annotated
// during ingestion with its remapped label, barcode, and dilution, and
// during normalization with its background-subtracted and
// percentage-infected values.
type WellData struct {
	Well         string
	Row          int
	Column       int
	PlateBarcode string
	PlateNum     int
	Dilution     float64
	Variant      string

	NormalisedPlaqueArea float64
	CellRegionArea       float64

	// computed by Plate normalization
	BackgroundSubtracted float64
	PercentageInfected   float64
}

// Plate is the mock 96-well plate holding one dilution's worth of wells.
// (The physical plate is a 384-well plate carrying all four dilutions in
// quadrants; the ingestion layer remaps it.) Construction normalizes the
// wells in place and runs the plate-level QC rules.
type Plate struct {
	Barcode     string
	DilutionNum int
	Variant     string
	Wells       []*WellData

	// InfectionMedian is the virus-only background-subtracted median used
	// to normalize percentage infected.
	InfectionMedian float64

	PlateFailed   bool
	WellFailures  []WellFailure
	PlateFailures []PlateFailure
}

// NewPlate builds a plate from its well records: subtracts the no-virus
// background, computes percentage infected against the virus-only median,
// and evaluates the plate-level QC rules. All wells must share one barcode
// and dilution; mixed records indicate an upstream inconsistency and are a
// hard error.
func NewPlate(wells []*WellData, criteria Criteria) (*Plate, error) {
	if len(wells) == 0 {
		return nil, pfx.Err(fmt.Errorf("plate has no wells"))
	}
	barcode, plateNum, variant := wells[0].PlateBarcode, wells[0].PlateNum, wells[0].Variant
	for _, w := range wells {
		if w.PlateBarcode != barcode || w.PlateNum != plateNum {
			return nil, pfx.Err(fmt.Errorf("plate %s contains mixed records (well %s from plate %s)", barcode, w.Well, w.PlateBarcode))
		}
	}

	p := &Plate{
		Barcode:     barcode,
		DilutionNum: plateNum,
		Variant:     variant,
		Wells:       wells,
	}

	if err := p.subtractBackground(); err != nil {
		return nil, err
	}
	if err := p.calcPercentageInfected(criteria); err != nil {
		return nil, err
	}

	wellFailures, plateFailures := CheckCellRegionArea(p, criteria)
	p.WellFailures = appendWellFailures(p.WellFailures, wellFailures...)
	p.PlateFailures = appendPlateFailures(p.PlateFailures, plateFailures...)
	for _, f := range plateFailures {
		if f.Reason == "cell-image-region-area outside expected limits" {
			p.PlateFailed = true
		}
	}

	return p, nil
}

func (p *Plate) String() string {
	return fmt.Sprintf("Plate %s", p.Barcode)
}

// subtractBackground removes the no-virus background: the median normalised
// plaque area of the no-virus wells is subtracted from every well.
func (p *Plate) subtractBackground() error {
	var noVirus []float64
	for _, w := range p.Wells {
		if isNoVirus(w.Well) {
			noVirus = append(noVirus, w.NormalisedPlaqueArea)
		}
	}
	background, err := stats.Median(noVirus)
	if err != nil {
		return pfx.Err(fmt.Errorf("plate %s: no no-virus wells to compute background: %w", p.Barcode, err))
	}
	for _, w := range p.Wells {
		w.BackgroundSubtracted = w.NormalisedPlaqueArea - background
	}
	return nil
}

// calcPercentageInfected normalizes each well against the virus-only median
// and runs the infection-rate QC rule against that median.
func (p *Plate) calcPercentageInfected(criteria Criteria) error {
	var virusOnly []float64
	for _, w := range p.Wells {
		if isVirusOnly(w.Well) {
			virusOnly = append(virusOnly, w.BackgroundSubtracted)
		}
	}
	infection, err := stats.Median(virusOnly)
	if err != nil {
		return pfx.Err(fmt.Errorf("plate %s: no virus-only wells to compute infection rate: %w", p.Barcode, err))
	}
	p.InfectionMedian = infection

	if failures := CheckInfectionRate(p, p.Variant, criteria); len(failures) > 0 {
		p.PlateFailed = true
		p.PlateFailures = appendPlateFailures(p.PlateFailures, failures...)
	}

	for _, w := range p.Wells {
		w.PercentageInfected = w.BackgroundSubtracted / infection * 100
	}
	return nil
}

func (p *Plate) medianCellRegionArea() (float64, error) {
	areas := make([]float64, len(p.Wells))
	for i, w := range p.Wells {
		areas[i] = w.CellRegionArea
	}
	median, err := stats.Median(areas)
	if err != nil {
		return 0, pfx.Err(err)
	}
	return median, nil
}
