package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prospectr/prospectr-go/internal/models"
)

const jobColumns = `id, user_id, provider_id, file_name, file_path, status,
        total_items, processed_items, successful_items, failed_items, batch_size,
        rate_per_minute, eta, active_ms, export_path, error_message,
        created_at, updated_at, started_at, completed_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.ExtractionJob, error) {
	var job models.ExtractionJob
	var eta, startedAt, completedAt sql.NullTime
	var exportPath, errMsg sql.NullString
	err := row.Scan(&job.ID, &job.UserID, &job.ProviderID, &job.FileName, &job.FilePath, &job.Status,
		&job.TotalItems, &job.ProcessedItems, &job.SuccessfulItems, &job.FailedItems, &job.BatchSize,
		&job.RatePerMinute, &eta, &job.ActiveMs, &exportPath, &errMsg,
		&job.CreatedAt, &job.UpdatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if eta.Valid {
		job.ETA = &eta.Time
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	job.ExportPath = exportPath.String
	job.ErrorMessage = errMsg.String
	return &job, nil
}

// CreateJob inserts a new extraction job in 'pending' status.
func (s *Store) CreateJob(userID int64, providerID, fileName, filePath string, batchSize int) (*models.ExtractionJob, error) {
	now := time.Now()
	query := `
        INSERT INTO extraction_jobs (user_id, provider_id, file_name, file_path, status, batch_size, created_at, updated_at)
        VALUES (?, ?, ?, ?, 'pending', ?, ?, ?)
    `
	res, err := s.db.Exec(query, userID, providerID, fileName, filePath, batchSize, now, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetJob(id)
}

// GetJob retrieves a single job by its primary key.
func (s *Store) GetJob(id int64) (*models.ExtractionJob, error) {
	query := "SELECT " + jobColumns + " FROM extraction_jobs WHERE id = ?"
	return scanJob(s.db.QueryRow(query, id))
}

// ListJobsByUser retrieves a user's jobs, most recent first.
func (s *Store) ListJobsByUser(userID int64, limit int) ([]*models.ExtractionJob, error) {
	query := "SELECT " + jobColumns + " FROM extraction_jobs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?"
	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ExtractionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// NextPendingJob returns the oldest job in 'pending' status, or nil if the
// queue is empty. Jobs are selected in insertion order (FIFO).
func (s *Store) NextPendingJob() (*models.ExtractionJob, error) {
	query := "SELECT " + jobColumns + " FROM extraction_jobs WHERE status = 'pending' ORDER BY created_at ASC, id ASC LIMIT 1"
	job, err := scanJob(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkJobProcessing transitions a pending job to 'processing' and stamps
// started_at on the first run.
func (s *Store) MarkJobProcessing(id int64) error {
	query := `
        UPDATE extraction_jobs
        SET status = 'processing', started_at = COALESCE(started_at, ?), updated_at = ?
        WHERE id = ? AND status = 'pending'
    `
	now := time.Now()
	res, err := s.db.Exec(query, now, now, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("job %d is not pending", id)
	}
	return nil
}

// PauseJob transitions a processing job to 'paused'. Pausing a job in any
// other status is a no-op.
func (s *Store) PauseJob(id int64) error {
	now := time.Now()
	_, err := s.db.Exec("UPDATE extraction_jobs SET status = 'paused', updated_at = ? WHERE id = ? AND status = 'processing'", now, id)
	return err
}

// ResumeJob transitions a paused job back to 'pending' so the queue picks it
// up again. Resuming a job in any other status is a no-op.
func (s *Store) ResumeJob(id int64) error {
	now := time.Now()
	_, err := s.db.Exec("UPDATE extraction_jobs SET status = 'pending', updated_at = ? WHERE id = ? AND status = 'paused'", now, id)
	return err
}

// StopJob transitions any non-terminal job to 'failed'. Terminal jobs are
// left untouched.
func (s *Store) StopJob(id int64) error {
	query := `
        UPDATE extraction_jobs
        SET status = 'failed', error_message = 'Stopped by user', completed_at = ?, updated_at = ?
        WHERE id = ? AND status NOT IN ('completed', 'failed')
    `
	now := time.Now()
	_, err := s.db.Exec(query, now, now, id)
	return err
}

// FailJob marks a non-terminal job 'failed' with a descriptive message.
// Terminal jobs are left untouched.
func (s *Store) FailJob(id int64, message string) error {
	now := time.Now()
	query := `
        UPDATE extraction_jobs
        SET status = 'failed', error_message = ?, completed_at = ?, updated_at = ?
        WHERE id = ? AND status NOT IN ('completed', 'failed')
    `
	_, err := s.db.Exec(query, message, now, now, id)
	return err
}

// CompleteJob marks a processing job 'completed'. It reports whether the
// transition happened: a job stopped or paused while its final batch was in
// flight keeps the status that stop or pause set.
func (s *Store) CompleteJob(id int64) (bool, error) {
	now := time.Now()
	res, err := s.db.Exec("UPDATE extraction_jobs SET status = 'completed', eta = NULL, completed_at = ?, updated_at = ? WHERE id = ? AND status = 'processing'", now, now, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// SetJobTotalItems records how many items were resolved from the uploaded file.
func (s *Store) SetJobTotalItems(id int64, total int) error {
	_, err := s.db.Exec("UPDATE extraction_jobs SET total_items = ?, updated_at = ? WHERE id = ?", total, time.Now(), id)
	return err
}

// RecordItemOutcome folds one finished item into the job's counters in a
// single statement, so processed = successful + failed holds at all times.
func (s *Store) RecordItemOutcome(jobID int64, success bool) error {
	succ, fail := 0, 1
	if success {
		succ, fail = 1, 0
	}
	query := `
        UPDATE extraction_jobs
        SET processed_items = processed_items + 1,
            successful_items = successful_items + ?,
            failed_items = failed_items + ?,
            updated_at = ?
        WHERE id = ?
    `
	_, err := s.db.Exec(query, succ, fail, time.Now(), jobID)
	return err
}

// UpdateJobEstimates persists the recomputed processing rate and ETA.
func (s *Store) UpdateJobEstimates(id int64, ratePerMinute float64, eta *time.Time) error {
	_, err := s.db.Exec("UPDATE extraction_jobs SET rate_per_minute = ?, eta = ?, updated_at = ? WHERE id = ?", ratePerMinute, eta, time.Now(), id)
	return err
}

// AddJobActiveTime accumulates processing time so rate and ETA exclude
// paused intervals.
func (s *Store) AddJobActiveTime(id int64, ms int64) error {
	_, err := s.db.Exec("UPDATE extraction_jobs SET active_ms = active_ms + ?, updated_at = ? WHERE id = ?", ms, time.Now(), id)
	return err
}

// SetJobExport stores the path of the generated result workbook.
func (s *Store) SetJobExport(id int64, path string) error {
	_, err := s.db.Exec("UPDATE extraction_jobs SET export_path = ?, updated_at = ? WHERE id = ?", path, time.Now(), id)
	return err
}

// ListExportPaths returns every export path still referenced by a job.
func (s *Store) ListExportPaths() ([]string, error) {
	rows, err := s.db.Query("SELECT export_path FROM extraction_jobs WHERE export_path IS NOT NULL AND export_path != ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ResetProcessingJobs sets jobs stuck in 'processing' back to 'pending' on
// startup, so work interrupted by a restart is picked up again.
func (s *Store) ResetProcessingJobs() error {
	_, err := s.db.Exec("UPDATE extraction_jobs SET status = 'pending', updated_at = ? WHERE status = 'processing'", time.Now())
	return err
}
