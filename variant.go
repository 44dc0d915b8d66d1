package plaqueassay

import (
	"fmt"
	"strconv"

	"github.com/carbocation/pfx"
)

// VariantFromBarcode decodes the virus variant letter from a plate barcode.
// Barcodes encode the variant as a two-digit integer in positions 1-2; each
// consecutive pair of integers maps to one letter (01,02 -> "a",
// 03,04 -> "b", ...), the two integers of a pair being the two replicate
// plates of that variant. An integer outside the mapped range is a hard
// error: it means the barcode scheme changed upstream.
func VariantFromBarcode(barcode string) (string, error) {
	if len(barcode) < 3 {
		return "", pfx.Err(fmt.Errorf("barcode %q too short to carry a variant", barcode))
	}
	variantInt, err := strconv.Atoi(barcode[1:3])
	if err != nil {
		return "", pfx.Err(fmt.Errorf("failed to parse variant from barcode %q: %w", barcode, err))
	}
	if variantInt < 1 || variantInt > 26 {
		return "", pfx.Err(fmt.Errorf("unrecognised variant integer %d in barcode %q", variantInt, barcode))
	}
	return string(rune('a' + (variantInt+1)/2 - 1)), nil
}

// VariantFromBarcodes decodes the variant shared by a set of plate
// barcodes. Plates from more than one variant cannot be analyzed as a
// single run.
func VariantFromBarcodes(barcodes []string) (string, error) {
	variants := make(map[string]bool)
	var variant string
	for _, barcode := range barcodes {
		v, err := VariantFromBarcode(barcode)
		if err != nil {
			return "", err
		}
		variants[v] = true
		variant = v
	}
	if len(variants) > 1 {
		return "", pfx.Err(ErrMultipleVariants)
	}
	return variant, nil
}
