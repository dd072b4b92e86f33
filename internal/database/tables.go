package database

import (
	"database/sql"
	"embed"
	"fmt"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

const (
	batchesSQL = "sql/batches.sql"
	jobsSQL    = "sql/jobs.sql"
)

// initJobsTable initializes the jobs table.
func initJobsTable(tx *sql.Tx) error {
	return executeSQLFile(tx, jobsSQL, "jobs table")
}

// initBatchesTable initializes the batches table.
func initBatchesTable(tx *sql.Tx) error {
	return executeSQLFile(tx, batchesSQL, "batches table")
}

// executeSQLFile executes the SQL file stored in memory from go:embed.
func executeSQLFile(tx *sql.Tx, filename, tableName string) error {
	data, err := sqlFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read SQL file %s: %w", filename, err)
	}
	if _, err := tx.Exec(string(data)); err != nil {
		return fmt.Errorf("failed to execute SQL for %s: %w", tableName, err)
	}
	return nil
}
