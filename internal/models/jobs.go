// Package models holds the records, inputs and messages passed between services.
package models

import (
	"errors"
	"time"

	"vidrelay/internal/domain/consts"
)

// ErrNotFound is returned when a job or batch ID is not in the store.
var ErrNotFound = errors.New("not found")

// Job is one download request and its lifecycle state.
type Job struct {
	ID                string                `json:"id"`
	SourceURL         string                `json:"sourceUrl"`
	Format            consts.Format         `json:"format"`
	Status            consts.DownloadStatus `json:"status"`
	ProgressPercent   float64               `json:"progressPercent"`
	Title             string                `json:"title,omitempty"`
	ArtifactPath      string                `json:"artifactPath,omitempty"`
	ArtifactSizeBytes int64                 `json:"artifactSizeBytes,omitempty"`
	ErrorReason       string                `json:"errorReason,omitempty"`
	NotifyChatRef     string                `json:"notifyChatRef,omitempty"`
	NotifyWebhookURL  string                `json:"notifyWebhookUrl,omitempty"`
	Metadata          *Metadata             `json:"metadata,omitempty"`
	BatchID           string                `json:"batchId,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	CompletedAt       *time.Time            `json:"completedAt,omitempty"`
}

// JobInput holds the fields a caller supplies when creating a job.
type JobInput struct {
	SourceURL        string        `json:"sourceUrl"`
	Format           consts.Format `json:"format"`
	NotifyChatRef    string        `json:"notifyChatRef,omitempty"`
	NotifyWebhookURL string        `json:"notifyWebhookUrl,omitempty"`
	BatchID          string        `json:"-"`
}

// JobPatch is a partial update. Nil fields are left unchanged.
type JobPatch struct {
	Status            *consts.DownloadStatus
	ProgressPercent   *float64
	Title             *string
	ArtifactPath      *string
	ArtifactSizeBytes *int64
	ErrorReason       *string
	Metadata          *Metadata
	CompletedAt       *time.Time
}

// Apply writes the non-nil patch fields onto j.
func (p JobPatch) Apply(j *Job) {
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.ProgressPercent != nil {
		j.ProgressPercent = *p.ProgressPercent
	}
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.ArtifactPath != nil {
		j.ArtifactPath = *p.ArtifactPath
	}
	if p.ArtifactSizeBytes != nil {
		j.ArtifactSizeBytes = *p.ArtifactSizeBytes
	}
	if p.ErrorReason != nil {
		j.ErrorReason = *p.ErrorReason
	}
	if p.Metadata != nil {
		j.Metadata = p.Metadata.Clone()
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		j.CompletedAt = &t
	}
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Metadata = j.Metadata.Clone()
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
