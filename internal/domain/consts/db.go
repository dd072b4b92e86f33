package consts

// Tables
const (
	DBJobs    = "jobs"
	DBBatches = "batches"
)

// Jobs
const (
	QJobID           = "id"
	QJobURL          = "source_url"
	QJobFormat       = "format"
	QJobStatus       = "status"
	QJobProgress     = "progress"
	QJobTitle        = "title"
	QJobArtifactPath = "artifact_path"
	QJobArtifactSize = "artifact_size"
	QJobError        = "error_reason"
	QJobChatRef      = "notify_chat_ref"
	QJobWebhookURL   = "notify_webhook_url"
	QJobMetadata     = "metadata"
	QJobBatchID      = "batch_id"
	QJobCreatedAt    = "created_at"
	QJobUpdatedAt    = "updated_at"
	QJobCompletedAt  = "completed_at"
)

// Batches
const (
	QBatchID             = "id"
	QBatchURLs           = "source_urls"
	QBatchFormat         = "format"
	QBatchStatus         = "status"
	QBatchProgress       = "progress"
	QBatchTotalItems     = "total_items"
	QBatchCompletedItems = "completed_items"
	QBatchFailedItems    = "failed_items"
	QBatchChatRef        = "notify_chat_ref"
	QBatchWebhookURL     = "notify_webhook_url"
	QBatchCreatedAt      = "created_at"
	QBatchUpdatedAt      = "updated_at"
	QBatchCompletedAt    = "completed_at"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)
