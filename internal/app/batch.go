package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
)

// RunBatch processes a batch's URLs one at a time, in order, and returns the final record.
//
// Item failures are counted and logged. The batch itself always ends completed.
func (s *Service) RunBatch(ctx context.Context, id string) (*models.BatchJob, error) {
	b, err := s.batches.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		logging.D(1, "Batch %s already %s, not running again", id, b.Status)
		return b, nil
	}

	downloading := consts.DLStatusDownloading
	if b, err = s.batches.UpdateBatch(ctx, id, models.BatchPatch{Status: &downloading}); err != nil {
		return nil, fmt.Errorf("failed to mark batch %s downloading: %w", id, err)
	}
	logging.I("Starting batch %s with %d item(s)", id, b.TotalItems)

	var completed, failed int
	for i, u := range b.SourceURLs {
		if ctx.Err() != nil {
			logging.W("Batch %s stopped before item %d: %v", id, i+1, ctx.Err())
			break
		}

		if ok := s.runBatchItem(ctx, b, u); !ok {
			failed++
		}
		completed++

		pct := batchPercent(completed, b.TotalItems)
		updated, err := s.batches.UpdateBatch(ctx, id, models.BatchPatch{
			ProgressPercent: &pct,
			CompletedItems:  &completed,
			FailedItems:     &failed,
		})
		if err != nil {
			logging.E("Failed to store progress for batch %s: %v", id, err)
			continue
		}
		s.broadcast(consts.EventBatchProgress, updated)
	}

	if completed < b.TotalItems {
		return nil, fmt.Errorf("batch %s interrupted after %d of %d item(s): %w", id, completed, b.TotalItems, ctx.Err())
	}

	var (
		status = consts.DLStatusCompleted
		pct    = 100.0
		now    = time.Now().UTC()
	)
	done, err := s.batches.UpdateBatch(ctx, id, models.BatchPatch{
		Status:          &status,
		ProgressPercent: &pct,
		CompletedItems:  &completed,
		FailedItems:     &failed,
		CompletedAt:     &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark batch %s completed: %w", id, err)
	}
	s.broadcast(consts.EventBatchComplete, done)
	logging.S("Batch %s completed: %d item(s), %d failed", id, done.CompletedItems, done.FailedItems)
	return done, nil
}

// runBatchItem creates and runs the job for one batch URL, reporting whether it completed.
func (s *Service) runBatchItem(ctx context.Context, b *models.BatchJob, url string) bool {
	j, err := s.jobs.CreateJob(ctx, models.JobInput{
		SourceURL:        url,
		Format:           b.Format,
		NotifyChatRef:    b.NotifyChatRef,
		NotifyWebhookURL: b.NotifyWebhookURL,
		BatchID:          b.ID,
	})
	if err != nil {
		logging.E("Batch %s: failed to create job for URL %q: %v", b.ID, url, err)
		return false
	}

	final, err := s.RunJob(ctx, j.ID)
	if err != nil {
		logging.E("Batch %s: job %s for URL %q: %v", b.ID, j.ID, url, err)
		return false
	}
	if final.Status != consts.DLStatusCompleted {
		logging.W("Batch %s: job %s for URL %q ended %s: %s", b.ID, j.ID, url, final.Status, final.ErrorReason)
		return false
	}
	return true
}

// batchPercent returns round(completed / total * 100).
func batchPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed) / float64(total) * 100)
}
