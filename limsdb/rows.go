// Package limsdb writes analysis outputs to the LIMS results database. The
// row types here mirror the legacy table columns, including the historical
// swapped "top"/"bottom" parameter names and the single numeric ic50 column
// that carries categorical outcomes as negative sentinel codes; downstream
// consumers key off both conventions.
package limsdb

import (
	"gopkg.in/guregu/null.v3"

	"github.com/hts-serology/plaqueassay"
)

// ResultRow is one row of the final-results table.
type ResultRow struct {
	WorkflowID string     `db:"workflow_id"`
	Variant    string     `db:"variant"`
	Well       string     `db:"well"`
	IC50       float64    `db:"ic50"`
	Status     null.String `db:"status"`
	FitMethod  string     `db:"fit_method"`
	MSE        null.Float `db:"mean_squared_error"`
}

// NewResultRow maps a fitted sample onto the legacy results columns. The
// ic50 column always carries Potency.Value(): the measured fold-dilution
// for numeric results, the negative sentinel code otherwise. The status
// column spells the category out for humans and is null for numeric rows.
func NewResultRow(workflowID string, s *plaqueassay.Sample) ResultRow {
	row := ResultRow{
		WorkflowID: workflowID,
		Variant:    s.Variant,
		Well:       s.Name,
		IC50:       s.Result.Potency.Value(),
		FitMethod:  string(s.Result.FitMethod),
		MSE:        s.Result.MeanSquaredError,
	}
	if category, ok := s.Result.Potency.Category(); ok {
		row.Status = null.StringFrom(category.String())
	}
	return row
}

// ParameterRow is one row of the model-parameters table. param_top and
// param_bottom keep their historical names, which are swapped relative to
// the plotted curve: param_top stores the low-concentration plateau and
// param_bottom the high-concentration plateau. The stored data keys off
// these names, so the swap is preserved here and only here.
type ParameterRow struct {
	WorkflowID string     `db:"workflow_id"`
	Variant    string     `db:"variant"`
	Well       string     `db:"well"`
	Top        null.Float `db:"param_top"`
	Bottom     null.Float `db:"param_bottom"`
	EC50       null.Float `db:"param_ec50"`
	HillSlope  null.Float `db:"param_hillslope"`
	MSE        null.Float `db:"mean_squared_error"`
}

// NewParameterRow maps fitted parameters onto the legacy columns; samples
// without a fitted model produce all-null parameters.
func NewParameterRow(workflowID string, s *plaqueassay.Sample) ParameterRow {
	row := ParameterRow{
		WorkflowID: workflowID,
		Variant:    s.Variant,
		Well:       s.Name,
		MSE:        s.Result.MeanSquaredError,
	}
	if p := s.Result.ModelParams; p != nil {
		row.Top = null.FloatFrom(p.PlateauLowConc)
		row.Bottom = null.FloatFrom(p.PlateauHighConc)
		row.EC50 = null.FloatFrom(p.EC50)
		row.HillSlope = null.FloatFrom(p.HillSlope)
	}
	return row
}

// FailureRow is one row of the QC-failures table.
type FailureRow struct {
	WorkflowID string `db:"workflow_id"`
	Variant    string `db:"variant"`
	Type       string `db:"failure_type"`
	Plate      string `db:"plate"`
	Well       string `db:"well"`
	Reason     string `db:"failure_reason"`
}

// NewFailureRow maps a flat failure record onto the failures table.
func NewFailureRow(workflowID, variant string, f plaqueassay.FailureRow) FailureRow {
	return FailureRow{
		WorkflowID: workflowID,
		Variant:    variant,
		Type:       f.Type,
		Plate:      f.Plate,
		Well:       f.Well,
		Reason:     f.Reason,
	}
}
