package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"

	"github.com/Masterminds/squirrel"
)

var jobColumns = []string{
	consts.QJobID,
	consts.QJobURL,
	consts.QJobFormat,
	consts.QJobStatus,
	consts.QJobProgress,
	consts.QJobTitle,
	consts.QJobArtifactPath,
	consts.QJobArtifactSize,
	consts.QJobError,
	consts.QJobChatRef,
	consts.QJobWebhookURL,
	consts.QJobMetadata,
	consts.QJobBatchID,
	consts.QJobCreatedAt,
	consts.QJobUpdatedAt,
	consts.QJobCompletedAt,
}

// JobStore holds a pointer to the sql.DB.
type JobStore struct {
	DB *sql.DB
}

// GetJobStore returns a job store instance with injected database.
func GetJobStore(db *sql.DB) *JobStore {
	return &JobStore{
		DB: db,
	}
}

// CreateJob inserts a new pending job.
func (js *JobStore) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
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

	query := squirrel.
		Insert(consts.DBJobs).
		Columns(
			consts.QJobID,
			consts.QJobURL,
			consts.QJobFormat,
			consts.QJobStatus,
			consts.QJobProgress,
			consts.QJobChatRef,
			consts.QJobWebhookURL,
			consts.QJobBatchID,
			consts.QJobCreatedAt,
			consts.QJobUpdatedAt,
		).
		Values(j.ID, j.SourceURL, j.Format, j.Status, j.ProgressPercent, j.NotifyChatRef, j.NotifyWebhookURL, j.BatchID, j.CreatedAt, j.UpdatedAt).
		RunWith(js.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert job for URL %q: %w", in.SourceURL, err)
	}
	return j, nil
}

// GetJob returns the job with the given ID.
func (js *JobStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return getJob(ctx, js.DB, id)
}

// UpdateJob applies a partial update to the job and returns the result.
func (js *JobStore) UpdateJob(ctx context.Context, id string, patch models.JobPatch) (j *models.Job, err error) {
	tx, err := js.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollback(tx, err, "job "+id) }()

	metadata, err := marshalMetadataJSON(patch.Metadata)
	if err != nil {
		return nil, err
	}

	query := squirrel.
		Update(consts.DBJobs).
		Set(consts.QJobUpdatedAt, time.Now().UTC()).
		Where(squirrel.Eq{consts.QJobID: id})

	if patch.Status != nil {
		query = query.Set(consts.QJobStatus, *patch.Status)
	}
	if patch.ProgressPercent != nil {
		query = query.Set(consts.QJobProgress, *patch.ProgressPercent)
	}
	if patch.Title != nil {
		query = query.Set(consts.QJobTitle, *patch.Title)
	}
	if patch.ArtifactPath != nil {
		query = query.Set(consts.QJobArtifactPath, *patch.ArtifactPath)
	}
	if patch.ArtifactSizeBytes != nil {
		query = query.Set(consts.QJobArtifactSize, *patch.ArtifactSizeBytes)
	}
	if patch.ErrorReason != nil {
		query = query.Set(consts.QJobError, *patch.ErrorReason)
	}
	if metadata.Valid {
		query = query.Set(consts.QJobMetadata, metadata)
	}
	if patch.CompletedAt != nil {
		query = query.Set(consts.QJobCompletedAt, patch.CompletedAt.UTC())
	}

	res, err := query.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update job %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows for job %q: %w", id, err)
	}
	if n == 0 {
		err = fmt.Errorf("job %q: %w", id, models.ErrNotFound)
		return nil, err
	}

	if j, err = getJob(ctx, tx, id); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return j, nil
}

// ******************************** Private ********************************

// getJob selects a job using the given runner (database or transaction).
func getJob(ctx context.Context, runner squirrel.BaseRunner, id string) (*models.Job, error) {
	query := squirrel.
		Select(jobColumns...).
		From(consts.DBJobs).
		Where(squirrel.Eq{consts.QJobID: id}).
		RunWith(runner)

	j, err := scanJob(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job %q: %w", id, err)
	}
	return j, nil
}

// scanJob scans a row selected with jobColumns.
func scanJob(row rowScanner) (*models.Job, error) {
	var (
		j           models.Job
		metadata    sql.NullString
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&j.ID,
		&j.SourceURL,
		&j.Format,
		&j.Status,
		&j.ProgressPercent,
		&j.Title,
		&j.ArtifactPath,
		&j.ArtifactSizeBytes,
		&j.ErrorReason,
		&j.NotifyChatRef,
		&j.NotifyWebhookURL,
		&metadata,
		&j.BatchID,
		&j.CreatedAt,
		&j.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	m, err := unmarshalMetadataJSON(metadata)
	if err != nil {
		return nil, err
	}
	j.Metadata = m
	if completedAt.Valid {
		t := completedAt.Time
		j.CompletedAt = &t
	}
	return &j, nil
}
