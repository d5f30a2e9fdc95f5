// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/trial-engine/internal/enrich"
)

func writeSQLite(records []enrich.Record, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := createTrialsTable(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = colName(col.header)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO trials (%s) VALUES (%s)",
		strings.Join(names, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			args[i] = col.value(rec)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting trial %s: %w", rec.NCTID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func createTrialsTable(db *sql.DB) error {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = colName(col.header) + " " + colType(col)
	}
	defs[0] += " PRIMARY KEY"

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS trials (\n\t%s\n)", strings.Join(defs, ",\n\t"))
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating trials table: %w", err)
	}
	return nil
}

// colName maps a column header to a SQL identifier.
func colName(header string) string {
	s := strings.ToLower(header)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// colType picks the SQLite affinity by probing the column with a zero record.
func colType(col column) string {
	switch col.value(enrich.Record{}).(type) {
	case bool, int:
		return "INTEGER"
	default:
		return "TEXT"
	}
}
