package consts

// DownloadStatus is the lifecycle state of a job or batch.
type DownloadStatus string

// Download statuses.
const (
	DLStatusPending     DownloadStatus = "pending"
	DLStatusDownloading DownloadStatus = "downloading"
	DLStatusCompleted   DownloadStatus = "completed"
	DLStatusFailed      DownloadStatus = "failed"
)

// IsTerminal reports whether no further transitions may occur.
func (s DownloadStatus) IsTerminal() bool {
	return s == DLStatusCompleted || s == DLStatusFailed
}

// EventType tags real-time messages sent to subscribers.
type EventType string

// Real-time event types.
const (
	EventConnection    EventType = "connection"
	EventProgress      EventType = "progress"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
	EventBatchProgress EventType = "batch_progress"
	EventBatchComplete EventType = "batch_complete"
)

// ProgressKind tags updates produced by the extraction client.
type ProgressKind string

// Progress kinds.
const (
	ProgressKindProgress ProgressKind = "progress"
	ProgressKindComplete ProgressKind = "complete"
	ProgressKindError    ProgressKind = "error"
)

// WebhookTypeComplete is the outbound webhook message type.
const WebhookTypeComplete = "download_complete"
