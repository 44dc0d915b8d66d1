package plaqueassay

import "strings"

// WellFailure flags a single well as a QC failure.
type WellFailure struct {
	Well   string
	Plate  string
	Reason string
}

// PlateFailure flags an entire plate as a QC failure, implicating one or
// more wells.
type PlateFailure struct {
	Plate  string
	Wells  []string
	Reason string
}

// FailureRow is the flat, table-shaped export of a failure record. Plate
// failures join their implicated wells into a single ";"-separated field so
// the row stays nested-structure free for bulk persistence.
type FailureRow struct {
	Type   string `csv:"failure_type" db:"failure_type"`
	Plate  string `csv:"plate" db:"plate"`
	Well   string `csv:"well" db:"well"`
	Reason string `csv:"failure_reason" db:"failure_reason"`
}

func (f WellFailure) Row() FailureRow {
	return FailureRow{
		Type:   "well_failure",
		Plate:  f.Plate,
		Well:   f.Well,
		Reason: f.Reason,
	}
}

func (f PlateFailure) Row() FailureRow {
	return FailureRow{
		Type:   "plate_failure",
		Plate:  f.Plate,
		Well:   strings.Join(f.Wells, ";"),
		Reason: f.Reason,
	}
}

// appendWellFailures appends failures not already present, comparing by
// value so that two detectors reporting the same condition yield one record.
func appendWellFailures(existing []WellFailure, found ...WellFailure) []WellFailure {
	for _, f := range found {
		dup := false
		for _, e := range existing {
			if e == f {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, f)
		}
	}
	return existing
}

func appendPlateFailures(existing []PlateFailure, found ...PlateFailure) []PlateFailure {
	for _, f := range found {
		dup := false
		for _, e := range existing {
			if e.Row() == f.Row() {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, f)
		}
	}
	return existing
}
