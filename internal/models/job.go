package models

import "time"

// Extraction job statuses. A job is terminal once completed or failed.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusPaused     = "paused"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type ExtractionJob struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	ProviderID      string     `json:"provider_id"`
	FileName        string     `json:"file_name"`
	FilePath        string     `json:"-"`
	Status          string     `json:"status"`
	TotalItems      int        `json:"total_items"`
	ProcessedItems  int        `json:"processed_items"`
	SuccessfulItems int        `json:"successful_items"`
	FailedItems     int        `json:"failed_items"`
	BatchSize       int        `json:"batch_size"`
	RatePerMinute   float64    `json:"rate_per_minute"`
	ETA             *time.Time `json:"eta,omitempty"`
	ActiveMs        int64      `json:"-"` // processing time excluding paused intervals
	ExportPath      string     `json:"-"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Percent returns job completion as 0-100.
func (j *ExtractionJob) Percent() float64 {
	if j.TotalItems == 0 {
		return 0
	}
	return float64(j.ProcessedItems) / float64(j.TotalItems) * 100
}

// Terminal reports whether the job can no longer change status.
func (j *ExtractionJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
