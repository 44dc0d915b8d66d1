package limsdb

import (
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS final_results (
	workflow_id        TEXT NOT NULL,
	variant            TEXT NOT NULL,
	well               TEXT NOT NULL,
	ic50               REAL,
	status             TEXT,
	fit_method         TEXT,
	mean_squared_error REAL
);

CREATE TABLE IF NOT EXISTS model_parameters (
	workflow_id        TEXT NOT NULL,
	variant            TEXT NOT NULL,
	well               TEXT NOT NULL,
	param_top          REAL,
	param_bottom       REAL,
	param_ec50         REAL,
	param_hillslope    REAL,
	mean_squared_error REAL
);

CREATE TABLE IF NOT EXISTS failures (
	workflow_id    TEXT NOT NULL,
	variant        TEXT NOT NULL,
	failure_type   TEXT NOT NULL,
	plate          TEXT NOT NULL,
	well           TEXT NOT NULL,
	failure_reason TEXT NOT NULL
);
`

// Open connects to the results database and ensures the tables exist.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}
	return db, nil
}
