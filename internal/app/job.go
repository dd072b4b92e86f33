package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
)

const (
	// maxInFlightPercent caps reported progress until the job completes.
	maxInFlightPercent = 99.9

	updateBuffer = 64
)

// RunJob drives one job to a terminal state and returns the final record.
//
// Failures inside the job are recorded on it; the returned error is only set when
// the job could not be loaded or its outcome could not be stored.
func (s *Service) RunJob(ctx context.Context, id string) (*models.Job, error) {
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status.IsTerminal() {
		logging.D(1, "Job %s already %s, not running again", id, j.Status)
		return j, nil
	}

	// pending -> downloading
	downloading := consts.DLStatusDownloading
	zero := 0.0
	if j, err = s.jobs.UpdateJob(ctx, id, models.JobPatch{Status: &downloading, ProgressPercent: &zero}); err != nil {
		return nil, fmt.Errorf("failed to mark job %s downloading: %w", id, err)
	}
	s.broadcast(consts.EventProgress, j)
	logging.I("Starting job %s for URL %q", id, j.SourceURL)

	// Metadata failures are fatal
	meta, err := s.extractor.FetchMetadata(ctx, j.SourceURL, "")
	if err != nil {
		return s.failJob(ctx, j, fmt.Errorf("%w: %w", ErrMetadataFailed, err))
	}
	title := meta.Title
	if updated, err := s.jobs.UpdateJob(ctx, id, models.JobPatch{Title: &title, Metadata: meta}); err != nil {
		logging.E("Failed to store metadata for job %s: %v", id, err)
		j.Title = title
	} else {
		j = updated
	}

	path, err := s.downloadWithRetry(ctx, j)
	if err != nil {
		return s.failJob(ctx, j, err)
	}
	return s.completeJob(ctx, j, path)
}

// downloadWithRetry runs download attempts until one succeeds or the policy gives up.
func (s *Service) downloadWithRetry(ctx context.Context, j *models.Job) (string, error) {
	var (
		current = j.ProgressPercent
		lastErr error
	)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		path, err := s.downloadOnce(ctx, j, &current)
		if err == nil {
			if attempt > 1 {
				logging.I("Job %s succeeded on attempt %d", j.ID, attempt)
			}
			return path, nil
		}
		lastErr = err
		logging.E("Job %s download attempt %d/%d failed: %v", j.ID, attempt, s.cfg.MaxAttempts, err)

		if attempt == s.cfg.MaxAttempts || !s.cfg.RetryPolicy(attempt, err) {
			break
		}

		delay := backoffDelay(s.cfg.RetryBaseDelay, attempt)
		logging.D(1, "Retrying job %s in %v", j.ID, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("retry aborted: %w (last error: %w)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
	return "", lastErr
}

// downloadOnce runs one extractor download, relaying ratcheted progress.
func (s *Service) downloadOnce(ctx context.Context, j *models.Job, current *float64) (string, error) {
	type result struct {
		path string
		err  error
	}

	updates := make(chan models.ProgressUpdate, updateBuffer)
	done := make(chan result, 1)

	go func() {
		path, err := s.extractor.Download(ctx, j.ID, j.SourceURL, j.Format, updates)
		done <- result{path, err}
	}()

	for u := range updates {
		if u.Kind != consts.ProgressKindProgress {
			logging.D(2, "Job %s extractor reported %s", j.ID, u.Kind)
			continue
		}

		pct := min(u.Percent, maxInFlightPercent)
		if pct <= *current {
			continue
		}
		*current = pct

		updated, err := s.jobs.UpdateJob(ctx, j.ID, models.JobPatch{ProgressPercent: &pct})
		if err != nil {
			logging.E("Failed to store progress for job %s: %v", j.ID, err)
			continue
		}
		logging.D(3, "Job %s at %.1f%% (speed %s, ETA %s)", j.ID, pct, u.Speed, u.ETA)
		s.broadcast(consts.EventProgress, updated)
	}

	res := <-done
	return res.path, res.err
}

// storeContext returns a context for recording a terminal outcome.
//
// A job whose context has ended still gets its outcome stored.
func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), consts.DatabaseTimeout)
}

// completeJob records success, then hands off to chat and webhook targets.
func (s *Service) completeJob(ctx context.Context, j *models.Job, path string) (*models.Job, error) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	} else {
		logging.D(1, "Could not stat artifact %q: %v", path, err)
	}

	var (
		status = consts.DLStatusCompleted
		pct    = 100.0
		now    = time.Now().UTC()
	)
	storeCtx, cancel := storeContext(ctx)
	defer cancel()

	done, err := s.jobs.UpdateJob(storeCtx, j.ID, models.JobPatch{
		Status:            &status,
		ProgressPercent:   &pct,
		ArtifactPath:      &path,
		ArtifactSizeBytes: &size,
		CompletedAt:       &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark job %s completed: %w", j.ID, err)
	}
	s.broadcast(consts.EventComplete, done)
	logging.S("Job %s completed: %q (%d bytes)", done.ID, done.ArtifactPath, done.ArtifactSizeBytes)

	if done.NotifyChatRef != "" && s.chatEnabled() {
		if err := s.chat.SendCompleted(ctx, done); err != nil {
			logging.E("Chat delivery for job %s failed: %v", done.ID, err)
		}
	}
	if done.NotifyWebhookURL != "" && s.webhook != nil {
		if err := s.webhook.NotifyComplete(ctx, done); err != nil {
			logging.E("Webhook delivery for job %s failed: %v", done.ID, err)
		}
	}
	return done, nil
}

// failJob records the failure reason and notifies the chat target, if any.
func (s *Service) failJob(ctx context.Context, j *models.Job, cause error) (*models.Job, error) {
	var (
		status = consts.DLStatusFailed
		reason = cause.Error()
		now    = time.Now().UTC()
	)

	storeCtx, cancel := storeContext(ctx)
	defer cancel()

	failed, err := s.jobs.UpdateJob(storeCtx, j.ID, models.JobPatch{
		Status:      &status,
		ErrorReason: &reason,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to mark job %s failed: %w", j.ID, err), cause)
	}
	s.broadcast(consts.EventError, failed)
	logging.E("Job %s failed: %s", failed.ID, reason)

	if failed.NotifyChatRef != "" && s.chatEnabled() {
		if err := s.chat.SendFailed(storeCtx, failed); err != nil {
			logging.E("Chat failure notice for job %s failed: %v", failed.ID, err)
		}
	}
	return failed, nil
}

func (s *Service) chatEnabled() bool {
	return s.chat != nil && s.chat.Enabled()
}
