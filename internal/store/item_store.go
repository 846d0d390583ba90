package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/prospectr/prospectr-go/internal/models"
)

const itemColumns = `id, job_id, position, source_url, status, payload,
        error_kind, error_message, retry_count, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*models.ProfileItem, error) {
	var item models.ProfileItem
	var payload, errKind, errMsg sql.NullString
	err := row.Scan(&item.ID, &item.JobID, &item.Position, &item.SourceURL, &item.Status,
		&payload, &errKind, &errMsg, &item.RetryCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ErrorKind = errKind.String
	item.ErrorMessage = errMsg.String
	if payload.Valid && payload.String != "" {
		var profile models.ProfileData
		if err := json.Unmarshal([]byte(payload.String), &profile); err == nil {
			item.Profile = &profile
		}
	}
	return &item, nil
}

// CreateItems inserts one pending item per URL, preserving file order, in a
// single transaction.
func (s *Store) CreateItems(jobID int64, urls []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO profile_items (job_id, position, source_url, status, created_at, updated_at)
        VALUES (?, ?, ?, 'pending', ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, url := range urls {
		if _, err := stmt.Exec(jobID, i, url, now, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListItemsByJob retrieves all items of a job in file order.
func (s *Store) ListItemsByJob(jobID int64) ([]*models.ProfileItem, error) {
	query := "SELECT " + itemColumns + " FROM profile_items WHERE job_id = ? ORDER BY position ASC"
	rows, err := s.db.Query(query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ProfileItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListUnprocessedItems retrieves the items of a job that are not yet in a
// terminal status, in file order. Used when resuming a paused job.
func (s *Store) ListUnprocessedItems(jobID int64) ([]*models.ProfileItem, error) {
	query := "SELECT " + itemColumns + ` FROM profile_items
        WHERE job_id = ? AND status NOT IN ('success', 'failed')
        ORDER BY position ASC`
	rows, err := s.db.Query(query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ProfileItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CountItemsByJob returns the number of items created for a job.
func (s *Store) CountItemsByJob(jobID int64) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM profile_items WHERE job_id = ?", jobID).Scan(&count)
	return count, err
}

// MarkItemProcessing sets an item's status to 'processing'.
func (s *Store) MarkItemProcessing(id int64) error {
	_, err := s.db.Exec("UPDATE profile_items SET status = 'processing', updated_at = ? WHERE id = ?", time.Now(), id)
	return err
}

// MarkItemRetrying records a failed attempt that will be retried.
func (s *Store) MarkItemRetrying(id int64, retryCount int, errorKind, errorMessage string) error {
	query := "UPDATE profile_items SET status = 'retrying', retry_count = ?, error_kind = ?, error_message = ?, updated_at = ? WHERE id = ?"
	_, err := s.db.Exec(query, retryCount, errorKind, errorMessage, time.Now(), id)
	return err
}

// MarkItemSuccess stores the extracted profile and moves the item to its
// terminal 'success' status.
func (s *Store) MarkItemSuccess(id int64, profile *models.ProfileData) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	query := "UPDATE profile_items SET status = 'success', payload = ?, error_kind = NULL, error_message = NULL, updated_at = ? WHERE id = ?"
	_, err = s.db.Exec(query, string(payload), time.Now(), id)
	return err
}

// MarkItemFailed moves the item to its terminal 'failed' status with the
// classified error kind attached.
func (s *Store) MarkItemFailed(id int64, errorKind, errorMessage string, retryCount int) error {
	query := "UPDATE profile_items SET status = 'failed', error_kind = ?, error_message = ?, retry_count = ?, updated_at = ? WHERE id = ?"
	_, err := s.db.Exec(query, errorKind, errorMessage, retryCount, time.Now(), id)
	return err
}

// ResetInFlightItems sets items stuck in 'processing' or 'retrying' back to
// 'pending' on startup.
func (s *Store) ResetInFlightItems() error {
	_, err := s.db.Exec("UPDATE profile_items SET status = 'pending', updated_at = ? WHERE status IN ('processing', 'retrying')", time.Now())
	return err
}
