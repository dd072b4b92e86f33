package models

import (
	"time"

	"vidrelay/internal/domain/consts"
)

// BatchJob is an ordered group of URLs processed one at a time.
type BatchJob struct {
	ID               string                `json:"id"`
	SourceURLs       []string              `json:"sourceUrls"`
	Format           consts.Format         `json:"format"`
	Status           consts.DownloadStatus `json:"status"`
	ProgressPercent  float64               `json:"progressPercent"`
	TotalItems       int                   `json:"totalItems"`
	CompletedItems   int                   `json:"completedItems"`
	FailedItems      int                   `json:"failedItems"`
	NotifyChatRef    string                `json:"notifyChatRef,omitempty"`
	NotifyWebhookURL string                `json:"notifyWebhookUrl,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
	CompletedAt      *time.Time            `json:"completedAt,omitempty"`
}

// BatchInput holds the fields a caller supplies when creating a batch.
type BatchInput struct {
	SourceURLs       []string      `json:"sourceUrls"`
	Format           consts.Format `json:"format"`
	NotifyChatRef    string        `json:"notifyChatRef,omitempty"`
	NotifyWebhookURL string        `json:"notifyWebhookUrl,omitempty"`
}

// BatchPatch is a partial update. Nil fields are left unchanged.
type BatchPatch struct {
	Status          *consts.DownloadStatus
	ProgressPercent *float64
	CompletedItems  *int
	FailedItems     *int
	CompletedAt     *time.Time
}

// Apply writes the non-nil patch fields onto b.
func (p BatchPatch) Apply(b *BatchJob) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.ProgressPercent != nil {
		b.ProgressPercent = *p.ProgressPercent
	}
	if p.CompletedItems != nil {
		b.CompletedItems = *p.CompletedItems
	}
	if p.FailedItems != nil {
		b.FailedItems = *p.FailedItems
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		b.CompletedAt = &t
	}
}

// Clone returns a deep copy of the batch.
func (b *BatchJob) Clone() *BatchJob {
	if b == nil {
		return nil
	}
	c := *b
	c.SourceURLs = append([]string(nil), b.SourceURLs...)
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
