package contracts

import (
	"context"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
)

// Extractor runs the external extraction tool.
type Extractor interface {
	FetchMetadata(ctx context.Context, url string, format consts.Format) (*models.Metadata, error)

	// Download closes updates before returning.
	Download(ctx context.Context, jobID, url string, format consts.Format, updates chan<- models.ProgressUpdate) (artifactPath string, err error)
}

// Broadcaster fans events out to live subscribers.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// ChatNotifier relays job outcomes to a chat.
type ChatNotifier interface {
	Enabled() bool
	SendStarted(ctx context.Context, chatRef string, job *models.Job) error
	SendCompleted(ctx context.Context, job *models.Job) error
	SendFailed(ctx context.Context, job *models.Job) error
}

// WebhookNotifier posts completion payloads to job webhooks.
type WebhookNotifier interface {
	NotifyComplete(ctx context.Context, job *models.Job) error
}

// Dispatcher accepts new work for asynchronous processing.
type Dispatcher interface {
	SubmitJob(ctx context.Context, in models.JobInput) (*models.Job, error)
	SubmitBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error)
}
