// Package contracts defines interfaces that decouple the application layer from storage and transport implementations.
package contracts

import (
	"context"

	"vidrelay/internal/models"
)

// Store allows access to the main store repo methods.
type Store interface {
	JobStore() JobStore
	BatchStore() BatchStore
	Close() error
}

// JobStore allows access to job repo methods.
//
// Get and Update return models.ErrNotFound for unknown IDs.
type JobStore interface {
	CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error)
}

// BatchStore allows access to batch repo methods.
//
// Get and Update return models.ErrNotFound for unknown IDs.
type BatchStore interface {
	CreateBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error)
	GetBatch(ctx context.Context, id string) (*models.BatchJob, error)
	UpdateBatch(ctx context.Context, id string, patch models.BatchPatch) (*models.BatchJob, error)
}
