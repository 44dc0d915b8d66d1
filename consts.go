package plaqueassay

// Control well positions on the mock 96-well plate. Column 12 and the
// A6:H6 column hold the plate controls; everything else is sample.
var (
	VirusOnlyWells = []string{"A12", "B12", "C12", "B06", "C06", "D06", "E06", "F06", "G06"}

	NoVirusWells = []string{"F12", "G12", "H12"}

	PositiveControlWells = []string{"D12", "E12", "A06", "H06"}
)

// ControlColumn is the plate column whose wells are treated as controls by
// the cell-region-area QC rule. A flagged well in this column fails the
// whole plate.
const ControlColumn = 12

// DilutionLadder is the ordered set of integer fold-dilutions tested in one
// assay run, least dilute first. Two generations of the assay exist: the
// fourfold ladder (1:40 to 1:2560) and the tenfold ladder (1:40 to 1:40000).
type DilutionLadder [4]int

var (
	FourfoldLadder = DilutionLadder{40, 160, 640, 2560}
	TenfoldLadder  = DilutionLadder{40, 400, 4000, 40000}
)

// PlateMapping returns the dilution fraction for a plate's dilution integer
// (1 is the least dilute plate). A missing entry indicates inconsistent
// upstream data and is a hard error, not a defaultable condition.
func (l DilutionLadder) PlateMapping(plateNum int) (float64, error) {
	if plateNum < 1 || plateNum > len(l) {
		return 0, errUnknownPlateNum(plateNum)
	}
	return 1 / float64(l[plateNum-1]), nil
}

// GridBounds returns the concentration range over which fitted curves are
// evaluated: one decade of margin beyond each end of the tested range. For
// the fourfold ladder this is [1/25600, 1/4], matching the stored curves.
func (l DilutionLadder) GridBounds() (xMin, xMax float64) {
	return 1 / (float64(l[3]) * 10), 10 / float64(l[0])
}

func isVirusOnly(well string) bool {
	return containsWell(VirusOnlyWells, well)
}

func isNoVirus(well string) bool {
	return containsWell(NoVirusWells, well)
}

// IsPositiveControl reports whether a well position is one of the static
// positive-control positions.
func IsPositiveControl(well string) bool {
	return containsWell(PositiveControlWells, well)
}

func containsWell(wells []string, well string) bool {
	for _, w := range wells {
		if w == well {
			return true
		}
	}
	return false
}
