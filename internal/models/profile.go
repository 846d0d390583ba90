package models

import "time"

// Profile item statuses. success and failed are terminal.
const (
	ItemStatusPending    = "pending"
	ItemStatusProcessing = "processing"
	ItemStatusSuccess    = "success"
	ItemStatusFailed     = "failed"
	ItemStatusRetrying   = "retrying"
)

// ProfileItem is one URL within a job, tracked through the extraction loop.
type ProfileItem struct {
	ID           int64        `json:"id"`
	JobID        int64        `json:"job_id"`
	Position     int          `json:"position"`
	SourceURL    string       `json:"source_url"`
	Status       string       `json:"status"`
	Profile      *ProfileData `json:"profile,omitempty"`
	ErrorKind    string       `json:"error_kind,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	RetryCount   int          `json:"retry_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ProfileData is the structured record returned by an extraction provider.
type ProfileData struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Headline  string      `json:"headline,omitempty"`
	Location  string      `json:"location,omitempty"`
	Summary   string      `json:"summary,omitempty"`
	Positions []Position  `json:"positions,omitempty"`
	Education []Education `json:"education,omitempty"`
	Skills    []string    `json:"skills,omitempty"`
}

type Position struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type Education struct {
	School    string `json:"school"`
	Degree    string `json:"degree,omitempty"`
	FieldOf   string `json:"field_of_study,omitempty"`
	StartYear string `json:"start_year,omitempty"`
	EndYear   string `json:"end_year,omitempty"`
}
