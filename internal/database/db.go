// Package database sets up/opens the program database.
package database

import (
	"database/sql"
	"fmt"

	"vidrelay/internal/utils/logging"

	// Package sqlite3 provides interface to SQLite3 databases.
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbDriver = "sqlite3"
)

// Database holds an open program database.
type Database struct {
	DB *sql.DB
}

// InitDB opens the database at path and ensures its tables exist.
//
// Use ":memory:" for a throwaway database.
func InitDB(path string) (d *Database, err error) {
	d = new(Database)
	d.DB, err = sql.Open(dbDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	d.DB.SetMaxOpenConns(1)

	if _, err = d.DB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = d.DB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err = d.initTables(); err != nil {
		_ = d.DB.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	logging.D(1, "Opened database at %q", path)
	return d, nil
}

// Close closes the underlying database handle.
func (d *Database) Close() error {
	return d.DB.Close()
}

// initTables initializes the SQL tables.
func (d *Database) initTables() (err error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logging.E("transaction rollback failed: %v", rollbackErr)
			}
		}
	}()

	if err = initJobsTable(tx); err != nil {
		return err
	}

	if err = initBatchesTable(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
