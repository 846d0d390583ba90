package models

import "time"

// ProgressUpdate is broadcast over the websocket hub as a job advances.
type ProgressUpdate struct {
	JobID           int64      `json:"job_id"`
	Status          string     `json:"status"`
	Message         string     `json:"message"`
	TotalItems      int        `json:"total_items"`
	ProcessedItems  int        `json:"processed_items"`
	SuccessfulItems int        `json:"successful_items"`
	FailedItems     int        `json:"failed_items"`
	Percent         float64    `json:"percent"`
	RatePerMinute   float64    `json:"rate_per_minute"`
	ETA             *time.Time `json:"eta,omitempty"`
	Done            bool       `json:"done"`
}
