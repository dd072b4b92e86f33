package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"

	"github.com/Masterminds/squirrel"
)

var batchColumns = []string{
	consts.QBatchID,
	consts.QBatchURLs,
	consts.QBatchFormat,
	consts.QBatchStatus,
	consts.QBatchProgress,
	consts.QBatchTotalItems,
	consts.QBatchCompletedItems,
	consts.QBatchFailedItems,
	consts.QBatchChatRef,
	consts.QBatchWebhookURL,
	consts.QBatchCreatedAt,
	consts.QBatchUpdatedAt,
	consts.QBatchCompletedAt,
}

// BatchStore holds a pointer to the sql.DB.
type BatchStore struct {
	DB *sql.DB
}

// GetBatchStore returns a batch store instance with injected database.
func GetBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{
		DB: db,
	}
}

// CreateBatch inserts a new pending batch.
func (bs *BatchStore) CreateBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error) {
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

	urls, err := json.Marshal(b.SourceURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch URLs: %w", err)
	}

	query := squirrel.
		Insert(consts.DBBatches).
		Columns(
			consts.QBatchID,
			consts.QBatchURLs,
			consts.QBatchFormat,
			consts.QBatchStatus,
			consts.QBatchProgress,
			consts.QBatchTotalItems,
			consts.QBatchChatRef,
			consts.QBatchWebhookURL,
			consts.QBatchCreatedAt,
			consts.QBatchUpdatedAt,
		).
		Values(b.ID, string(urls), b.Format, b.Status, b.ProgressPercent, b.TotalItems, b.NotifyChatRef, b.NotifyWebhookURL, b.CreatedAt, b.UpdatedAt).
		RunWith(bs.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert batch of %d URLs: %w", b.TotalItems, err)
	}
	return b, nil
}

// GetBatch returns the batch with the given ID.
func (bs *BatchStore) GetBatch(ctx context.Context, id string) (*models.BatchJob, error) {
	return getBatch(ctx, bs.DB, id)
}

// UpdateBatch applies a partial update to the batch and returns the result.
func (bs *BatchStore) UpdateBatch(ctx context.Context, id string, patch models.BatchPatch) (b *models.BatchJob, err error) {
	tx, err := bs.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollback(tx, err, "batch "+id) }()

	query := squirrel.
		Update(consts.DBBatches).
		Set(consts.QBatchUpdatedAt, time.Now().UTC()).
		Where(squirrel.Eq{consts.QBatchID: id})

	if patch.Status != nil {
		query = query.Set(consts.QBatchStatus, *patch.Status)
	}
	if patch.ProgressPercent != nil {
		query = query.Set(consts.QBatchProgress, *patch.ProgressPercent)
	}
	if patch.CompletedItems != nil {
		query = query.Set(consts.QBatchCompletedItems, *patch.CompletedItems)
	}
	if patch.FailedItems != nil {
		query = query.Set(consts.QBatchFailedItems, *patch.FailedItems)
	}
	if patch.CompletedAt != nil {
		query = query.Set(consts.QBatchCompletedAt, patch.CompletedAt.UTC())
	}

	res, err := query.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update batch %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows for batch %q: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("batch %q: %w", id, models.ErrNotFound)
	}

	if b, err = getBatch(ctx, tx, id); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch update: %w", err)
	}
	return b, nil
}

// ******************************** Private ********************************

// getBatch selects a batch using the given runner (database or transaction).
func getBatch(ctx context.Context, runner squirrel.BaseRunner, id string) (*models.BatchJob, error) {
	query := squirrel.
		Select(batchColumns...).
		From(consts.DBBatches).
		Where(squirrel.Eq{consts.QBatchID: id}).
		RunWith(runner)

	var (
		b           models.BatchJob
		urls        string
		completedAt sql.NullTime
	)
	err := query.QueryRowContext(ctx).Scan(
		&b.ID,
		&urls,
		&b.Format,
		&b.Status,
		&b.ProgressPercent,
		&b.TotalItems,
		&b.CompletedItems,
		&b.FailedItems,
		&b.NotifyChatRef,
		&b.NotifyWebhookURL,
		&b.CreatedAt,
		&b.UpdatedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %q: %w", id, err)
	}

	if err := json.Unmarshal([]byte(urls), &b.SourceURLs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal URLs for batch %q: %w", id, err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	return &b, nil
}
