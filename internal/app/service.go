// Package app contains core application functionality.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vidrelay/internal/contracts"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
	"vidrelay/internal/validation"
)

// Config holds orchestration settings.
type Config struct {
	MaxAttempts    int           // Total download attempts per job
	RetryBaseDelay time.Duration // Retry n waits RetryBaseDelay * 2^n
	RetryPolicy    RetryPolicy   // Defaults to RetryAll
}

// Deps holds the collaborators of a Service. Chat and Webhook may be nil.
type Deps struct {
	Store       contracts.Store
	Extractor   contracts.Extractor
	Broadcaster contracts.Broadcaster
	Chat        contracts.ChatNotifier
	Webhook     contracts.WebhookNotifier
}

// Service drives jobs and batches through their lifecycles.
type Service struct {
	jobs      contracts.JobStore
	batches   contracts.BatchStore
	extractor contracts.Extractor
	events    contracts.Broadcaster
	chat      contracts.ChatNotifier
	webhook   contracts.WebhookNotifier
	cfg       Config

	ctx context.Context
	wg  sync.WaitGroup
}

// NewService returns a Service. Background work started by Submit* runs under ctx.
func NewService(ctx context.Context, deps Deps, cfg Config) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = consts.DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = consts.DefaultRetryBaseDelay
	}
	if cfg.RetryPolicy == nil {
		cfg.RetryPolicy = RetryAll
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = nopBroadcaster{}
	}

	return &Service{
		jobs:      deps.Store.JobStore(),
		batches:   deps.Store.BatchStore(),
		extractor: deps.Extractor,
		events:    deps.Broadcaster,
		chat:      deps.Chat,
		webhook:   deps.Webhook,
		cfg:       cfg,
		ctx:       ctx,
	}
}

// SubmitJob validates and stores a job, then processes it in the background.
func (s *Service) SubmitJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	if err := validation.ValidateJobInput(&in); err != nil {
		return nil, err
	}
	j, err := s.jobs.CreateJob(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	logging.I("Queued job %s for URL %q (format %s)", j.ID, j.SourceURL, j.Format)

	if j.NotifyChatRef != "" && s.chatEnabled() {
		if err := s.chat.SendStarted(ctx, j.NotifyChatRef, j); err != nil {
			logging.E("Chat start notice for job %s failed: %v", j.ID, err)
		}
	}

	s.background(func(ctx context.Context) {
		if _, err := s.RunJob(ctx, j.ID); err != nil {
			logging.E("Job %s: %v", j.ID, err)
		}
	})
	return j, nil
}

// SubmitBatch validates and stores a batch, then processes it in the background.
func (s *Service) SubmitBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error) {
	if err := validation.ValidateBatchInput(&in); err != nil {
		return nil, err
	}
	b, err := s.batches.CreateBatch(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	logging.I("Queued batch %s with %d URL(s) (format %s)", b.ID, b.TotalItems, b.Format)

	s.background(func(ctx context.Context) {
		if _, err := s.RunBatch(ctx, b.ID); err != nil {
			logging.E("Batch %s: %v", b.ID, err)
		}
	})
	return b, nil
}

// ProcessJob validates, stores and runs a job to completion in the calling goroutine.
func (s *Service) ProcessJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	if err := validation.ValidateJobInput(&in); err != nil {
		return nil, err
	}
	j, err := s.jobs.CreateJob(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return s.RunJob(ctx, j.ID)
}

// ProcessBatch validates, stores and runs a batch to completion in the calling goroutine.
func (s *Service) ProcessBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error) {
	if err := validation.ValidateBatchInput(&in); err != nil {
		return nil, err
	}
	b, err := s.batches.CreateBatch(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return s.RunBatch(ctx, b.ID)
}

// Wait blocks until all background jobs and batches have returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

// background runs fn in its own goroutine under the service context.
func (s *Service) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// broadcast sends an event to subscribers.
func (s *Service) broadcast(t consts.EventType, payload any) {
	s.events.Broadcast(models.Event{Type: t, Payload: payload})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(models.Event) {}
