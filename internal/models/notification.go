package models

import (
	"time"

	"vidrelay/internal/domain/consts"
)

// WebhookPayload is POSTed to a job's notify webhook on completion.
type WebhookPayload struct {
	Type     string          `json:"type"`
	Download WebhookDownload `json:"download"`
}

// WebhookDownload is the job summary carried in a webhook payload.
type WebhookDownload struct {
	ID                string                `json:"id"`
	SourceURL         string                `json:"sourceUrl"`
	Title             string                `json:"title"`
	Status            consts.DownloadStatus `json:"status"`
	ArtifactPath      string                `json:"artifactPath"`
	ArtifactSizeBytes int64                 `json:"artifactSizeBytes"`
	Format            consts.Format         `json:"format"`
	CompletedAt       *time.Time            `json:"completedAt,omitempty"`
}

// NewWebhookPayload builds the completion payload for a job.
func NewWebhookPayload(j *Job) WebhookPayload {
	return WebhookPayload{
		Type: consts.WebhookTypeComplete,
		Download: WebhookDownload{
			ID:                j.ID,
			SourceURL:         j.SourceURL,
			Title:             j.Title,
			Status:            j.Status,
			ArtifactPath:      j.ArtifactPath,
			ArtifactSizeBytes: j.ArtifactSizeBytes,
			Format:            j.Format,
			CompletedAt:       j.CompletedAt,
		},
	}
}
