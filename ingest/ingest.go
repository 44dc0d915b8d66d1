// Package ingest reads instrument-exported plate data into well records for
// analysis. Exports arrive as one directory per scanned 384-well plate,
// each containing a tab-separated Evaluation1/PlateResults.txt with several
// lines of instrument metadata ahead of the header row.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	"github.com/hts-serology/plaqueassay"
)

// metadataLines is the number of instrument preamble lines before the
// header in PlateResults.txt.
const metadataLines = 8

// expectedPlates is the number of physical plate directories per workflow:
// one per replicate.
const expectedPlates = 2

func init() {
	// instrument exports are tab-delimited and unquoted
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = '\t'
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		return r
	})
}

// plateResultRecord maps the PlateResults.txt columns the analysis needs.
type plateResultRecord struct {
	Row                  int     `csv:"Row"`
	Column               int     `csv:"Column"`
	NormalisedPlaqueArea float64 `csv:"Normalised Plaque area"`
	CellRegionArea       float64 `csv:"Cells - Image Region Area [µm²] - Mean per Well"`
}

// PlateList returns the per-plate export directories under dataDir. A
// workflow is expected to hold exactly one directory per replicate plate;
// any other count is logged but not fatal, since partial reruns happen.
func PlateList(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, pfx.Err(err)
	}
	var plates []string
	for _, entry := range entries {
		if entry.IsDir() {
			plates = append(plates, filepath.Join(dataDir, entry.Name()))
		}
	}
	if len(plates) != expectedPlates {
		log.Printf("expected %d plate directories in %s, found %d", expectedPlates, dataDir, len(plates))
	}
	return plates, nil
}

// ReadWorkflow reads every plate directory under dataDir and returns the
// remapped well records for the whole workflow.
func ReadWorkflow(dataDir string, ladder plaqueassay.DilutionLadder) ([]*plaqueassay.WellData, error) {
	plates, err := PlateList(dataDir)
	if err != nil {
		return nil, err
	}
	return ReadPlates(plates, ladder)
}

// ReadPlates reads the listed plate directories. The four dilutions stamped
// into each physical 384-well plate's quadrants are remapped into mock
// 96-well plates: each record gets a mock barcode carrying its dilution
// integer and its 384-well label folded back to the 96-well equivalent.
func ReadPlates(plateDirs []string, ladder plaqueassay.DilutionLadder) ([]*plaqueassay.WellData, error) {
	var out []*plaqueassay.WellData
	for _, dir := range plateDirs {
		records, err := readPlateResults(filepath.Join(dir, "Evaluation1", "PlateResults.txt"))
		if err != nil {
			return nil, err
		}
		barcode := plaqueassay.BarcodeFromPath(dir)
		log.Printf("plate barcode detected as %s", barcode)
		variant, err := plaqueassay.VariantFromBarcode(barcode)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			well384 := plaqueassay.RowColToWell(rec.Row, rec.Column)
			mockBarcode, err := plaqueassay.Mock384Barcode(barcode, well384)
			if err != nil {
				return nil, err
			}
			plateNum, err := plaqueassay.DilutionFromBarcode(mockBarcode)
			if err != nil {
				return nil, err
			}
			dilution, err := ladder.PlateMapping(plateNum)
			if err != nil {
				return nil, err
			}
			well96, err := plaqueassay.Well384To96(well384)
			if err != nil {
				return nil, err
			}
			out = append(out, &plaqueassay.WellData{
				Well:                 well96,
				Row:                  int(well96[0]-'A') + 1,
				Column:               wellColumn(well96),
				PlateBarcode:         mockBarcode,
				PlateNum:             plateNum,
				Dilution:             dilution,
				Variant:              variant,
				NormalisedPlaqueArea: rec.NormalisedPlaqueArea,
				CellRegionArea:       rec.CellRegionArea,
			})
		}
	}
	return out, nil
}

func readPlateResults(path string) ([]*plateResultRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	trimmed, err := skipMetadata(raw, metadataLines)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	var records []*plateResultRecord
	if err := gocsv.UnmarshalBytes(trimmed, &records); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return records, nil
}

// skipMetadata drops the first n lines of an export, leaving the header row
// and data.
func skipMetadata(raw []byte, n int) ([]byte, error) {
	rest := raw
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			return nil, fmt.Errorf("export has fewer than %d metadata lines", n)
		}
		rest = rest[idx+1:]
	}
	return rest, nil
}

func wellColumn(well string) int {
	col := 0
	for _, c := range well[1:] {
		col = col*10 + int(c-'0')
	}
	return col
}
