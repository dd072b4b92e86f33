package models

import "vidrelay/internal/domain/consts"

// ProgressUpdate is one message from the extraction client to the job orchestrator.
type ProgressUpdate struct {
	Kind    consts.ProgressKind
	JobID   string
	Percent float64
	Speed   string
	ETA     string
	Title   string
	Error   error
}

// Event is one message pushed to real-time subscribers.
type Event struct {
	Type    consts.EventType `json:"type"`
	Payload any              `json:"payload"`
}

// ConnectionStatus is the payload of the connection confirmation event.
type ConnectionStatus struct {
	Status string `json:"status"`
}
