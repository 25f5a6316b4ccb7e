package models

import "time"

// RetrainStatus is the lifecycle state of a retrain job.
type RetrainStatus string

const (
	RetrainPending   RetrainStatus = "pending"
	RetrainRunning   RetrainStatus = "running"
	RetrainCompleted RetrainStatus = "completed"
	RetrainFailed    RetrainStatus = "failed"
	RetrainSkipped   RetrainStatus = "skipped" // corpus not trainable, previous model kept
)

// RetrainJob records one retrain run, whether explicit or triggered by a corpus mutation.
type RetrainJob struct {
	ID           string        `json:"id"`
	Status       RetrainStatus `json:"status"`
	Trigger      string        `json:"trigger"`
	Requests     int           `json:"requests"`
	ModelVersion int64         `json:"model_version,omitempty"`
	Samples      int           `json:"samples,omitempty"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}
