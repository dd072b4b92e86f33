package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vidrelay/internal/contracts"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
)

// MemoryStore keeps jobs and batches in process memory.
//
// Records are copied in and out, so callers never share state with the store.
type MemoryStore struct {
	jobs    *MemoryJobStore
	batches *MemoryBatchStore
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    &MemoryJobStore{jobs: make(map[string]*models.Job)},
		batches: &MemoryBatchStore{batches: make(map[string]*models.BatchJob)},
	}
}

// JobStore with pointer receiver.
func (s *MemoryStore) JobStore() contracts.JobStore {
	return s.jobs
}

// BatchStore with pointer receiver.
func (s *MemoryStore) BatchStore() contracts.BatchStore {
	return s.batches
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// MemoryJobStore is a mutex-guarded job registry.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// CreateJob registers a new pending job.
func (ms *MemoryJobStore) CreateJob(_ context.Context, in models.JobInput) (*models.Job, error) {
	now := time.Now().UTC()
	j := &models.Job{
		ID:               newID(),
		SourceURL:        in.SourceURL,
		Format:           in.Format,
		Status:           consts.DLStatusPending,
		NotifyChatRef:    in.NotifyChatRef,
		NotifyWebhookURL: in.NotifyWebhookURL,
		BatchID:          in.BatchID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	ms.mu.Lock()
	ms.jobs[j.ID] = j
	ms.mu.Unlock()
	return j.Clone(), nil
}

// GetJob returns a copy of the job with the given ID.
func (ms *MemoryJobStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	j, ok := ms.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %q: %w", id, models.ErrNotFound)
	}
	return j.Clone(), nil
}

// UpdateJob applies a partial update to the job and returns a copy of the result.
func (ms *MemoryJobStore) UpdateJob(_ context.Context, id string, patch models.JobPatch) (*models.Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	j, ok := ms.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %q: %w", id, models.ErrNotFound)
	}
	patch.Apply(j)
	j.UpdatedAt = time.Now().UTC()
	return j.Clone(), nil
}

// MemoryBatchStore is a mutex-guarded batch registry.
type MemoryBatchStore struct {
	mu      sync.RWMutex
	batches map[string]*models.BatchJob
}

// CreateBatch registers a new pending batch.
func (ms *MemoryBatchStore) CreateBatch(_ context.Context, in models.BatchInput) (*models.BatchJob, error) {
	now := time.Now().UTC()
	b := &models.BatchJob{
		ID:               newID(),
		SourceURLs:       append([]string(nil), in.SourceURLs...),
		Format:           in.Format,
		Status:           consts.DLStatusPending,
		TotalItems:       len(in.SourceURLs),
		NotifyChatRef:    in.NotifyChatRef,
		NotifyWebhookURL: in.NotifyWebhookURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	ms.mu.Lock()
	ms.batches[b.ID] = b
	ms.mu.Unlock()
	return b.Clone(), nil
}

// GetBatch returns a copy of the batch with the given ID.
func (ms *MemoryBatchStore) GetBatch(_ context.Context, id string) (*models.BatchJob, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	b, ok := ms.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %q: %w", id, models.ErrNotFound)
	}
	return b.Clone(), nil
}

// UpdateBatch applies a partial update to the batch and returns a copy of the result.
func (ms *MemoryBatchStore) UpdateBatch(_ context.Context, id string, patch models.BatchPatch) (*models.BatchJob, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %q: %w", id, models.ErrNotFound)
	}
	patch.Apply(b)
	b.UpdatedAt = time.Now().UTC()
	return b.Clone(), nil
}
