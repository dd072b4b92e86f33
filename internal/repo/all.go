// Package repo is used for performing job and batch repository operations.
package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"vidrelay/internal/contracts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"

	"github.com/google/uuid"
)

// Store holds the database and the SQL-backed sub-stores.
type Store struct {
	db         *sql.DB
	jobStore   *JobStore
	batchStore *BatchStore
}

// InitStores injects the database into the store methods.
func InitStores(db *sql.DB) *Store {
	return &Store{
		db:         db,
		jobStore:   GetJobStore(db),
		batchStore: GetBatchStore(db),
	}
}

// JobStore with pointer receiver.
func (s *Store) JobStore() contracts.JobStore {
	return s.jobStore
}

// BatchStore with pointer receiver.
func (s *Store) BatchStore() contracts.BatchStore {
	return s.batchStore
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ******************************** Private ********************************

// newID returns a fresh opaque record ID.
func newID() string {
	return uuid.NewString()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// rollback rolls back tx if err is set, logging any rollback failure.
func rollback(tx *sql.Tx, err error, what string) {
	if err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.E("Error rolling back %s (original error: %v): %v", what, err, rbErr)
	}
}

// marshalMetadataJSON marshals job metadata for storage.
func marshalMetadataJSON(m *models.Metadata) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("metadata marshal failed: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalMetadataJSON restores stored job metadata.
func unmarshalMetadataJSON(s sql.NullString) (*models.Metadata, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	m := new(models.Metadata)
	if err := json.Unmarshal([]byte(s.String), m); err != nil {
		return nil, fmt.Errorf("metadata unmarshal failed: %w", err)
	}
	return m, nil
}
