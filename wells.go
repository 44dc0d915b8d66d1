package plaqueassay

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// RowColToWell converts 1-indexed row and column numbers to a zero-padded
// well label, e.g. (1, 1) -> "A01", (8, 12) -> "H12".
func RowColToWell(row, col int) string {
	return fmt.Sprintf("%c%02d", 'A'+row-1, col)
}

// UnpadWell strips the zero padding from a well label: "A01" -> "A1".
func UnpadWell(well string) string {
	col, err := strconv.Atoi(well[1:])
	if err != nil {
		return well
	}
	return fmt.Sprintf("%c%d", well[0], col)
}

// Well384To96 converts a 384-well label to its source 96-well label, for
// plates constructed by stamping four 96-well plates into quadrants.
// e.g. Well384To96("P24") == "H12".
func Well384To96(well string) (string, error) {
	row := int(well[0]-'A') + 1
	col, err := strconv.Atoi(well[1:])
	if err != nil {
		return "", pfx.Err(fmt.Errorf("bad well label %q: %w", well, err))
	}
	return RowColToWell((row+1)/2, (col+1)/2), nil
}

// DilutionFrom384Well returns the dilution integer [1, 4] encoded by a
// 384-well label's quadrant position, for plates carrying four dilutions of
// a 96-well layout stamped in quadrants.
func DilutionFrom384Well(well string) (int, error) {
	row := int(well[0]-'A') + 1
	col, err := strconv.Atoi(well[1:])
	if err != nil {
		return 0, pfx.Err(fmt.Errorf("bad well label %q: %w", well, err))
	}
	oddRow := row%2 != 0
	oddCol := col%2 != 0
	switch {
	case oddRow && oddCol:
		return 4, nil
	case oddRow && !oddCol:
		return 2, nil
	case !oddRow && oddCol:
		return 3, nil
	default:
		return 1, nil
	}
}

// Mock384Barcode rewrites a scanned 384-well plate barcode into the mock
// 96-well plate barcode for the given well: the second character becomes
// the well's quadrant dilution integer.
func Mock384Barcode(barcode, well string) (string, error) {
	dilution, err := DilutionFrom384Well(well)
	if err != nil {
		return "", err
	}
	if len(barcode) < 2 {
		return "", pfx.Err(fmt.Errorf("barcode %q too short to mock", barcode))
	}
	return barcode[:1] + strconv.Itoa(dilution) + barcode[2:], nil
}

// PlateNumFromPath extracts the plate number from an instrument export
// directory name such as "0000017__2020-10-16T14_46_58-Measurement 1".
func PlateNumFromPath(path string) (int, error) {
	basename := filepath.Base(path)
	numPart := strings.SplitN(basename, "_", 2)[0]
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0, pfx.Err(fmt.Errorf("failed to parse plate number from %q: %w", path, err))
	}
	return n, nil
}

// DilutionFromBarcode returns the dilution integer [1, 4] encoded in the
// second character of a plate barcode (or barcode-prefixed path).
func DilutionFromBarcode(path string) (int, error) {
	basename := filepath.Base(path)
	if len(basename) < 2 {
		return 0, pfx.Err(fmt.Errorf("barcode %q too short", basename))
	}
	n, err := strconv.Atoi(basename[1:2])
	if err != nil {
		return 0, pfx.Err(fmt.Errorf("failed to parse dilution from barcode %q: %w", basename, err))
	}
	return n, nil
}

// BarcodeFromPath returns the plate barcode of an export directory: the
// segment before the "__" separator in the directory name.
func BarcodeFromPath(path string) string {
	return strings.SplitN(filepath.Base(path), "__", 2)[0]
}
