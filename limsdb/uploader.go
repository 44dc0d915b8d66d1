package limsdb

import (
	"fmt"
	"log"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"

	"github.com/hts-serology/plaqueassay"
)

// Uploader writes one experiment's outputs to the results database.
// Results are uploaded all-or-nothing inside a transaction.
type Uploader struct {
	DB *sqlx.DB
}

// AlreadyUploaded reports whether results for a workflow and variant are
// already present. Uploads are all-or-nothing, so checking one table is
// sufficient.
func (u *Uploader) AlreadyUploaded(workflowID, variant string) (bool, error) {
	var n int
	err := u.DB.Get(&n,
		"SELECT COUNT(*) FROM final_results WHERE workflow_id = ? AND variant = ?",
		workflowID, variant)
	if err != nil {
		return false, pfx.Err(err)
	}
	return n > 0, nil
}

// Upload writes the experiment's results, model parameters, and failures.
// It refuses to double-upload a workflow/variant pair.
func (u *Uploader) Upload(workflowID string, e *plaqueassay.Experiment) error {
	done, err := u.AlreadyUploaded(workflowID, e.Variant)
	if err != nil {
		return err
	}
	if done {
		return pfx.Err(fmt.Errorf("workflow %s variant %s already uploaded", workflowID, e.Variant))
	}

	tx, err := u.DB.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	for _, name := range sortedSampleNames(e) {
		sample := e.Samples[name]
		if _, err := tx.NamedExec(`
			INSERT INTO final_results
			(workflow_id, variant, well, ic50, status, fit_method, mean_squared_error)
			VALUES (:workflow_id, :variant, :well, :ic50, :status, :fit_method, :mean_squared_error)`,
			NewResultRow(workflowID, sample)); err != nil {
			return pfx.Err(err)
		}
		if _, err := tx.NamedExec(`
			INSERT INTO model_parameters
			(workflow_id, variant, well, param_top, param_bottom, param_ec50, param_hillslope, mean_squared_error)
			VALUES (:workflow_id, :variant, :well, :param_top, :param_bottom, :param_ec50, :param_hillslope, :mean_squared_error)`,
			NewParameterRow(workflowID, sample)); err != nil {
			return pfx.Err(err)
		}
	}

	for _, f := range e.FailureRows() {
		if _, err := tx.NamedExec(`
			INSERT INTO failures
			(workflow_id, variant, failure_type, plate, well, failure_reason)
			VALUES (:workflow_id, :variant, :failure_type, :plate, :well, :failure_reason)`,
			NewFailureRow(workflowID, e.Variant, f)); err != nil {
			return pfx.Err(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}
	log.Printf("uploaded workflow %s variant %s (%d samples)", workflowID, e.Variant, len(e.Samples))
	return nil
}

func sortedSampleNames(e *plaqueassay.Experiment) []string {
	rows := e.ResultRows()
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Well
	}
	return names
}
