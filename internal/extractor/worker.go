package extractor

import (
	"fmt"
	"log"
	"time"

	"github.com/prospectr/prospectr-go/internal/export"
	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/importer"
	"github.com/prospectr/prospectr-go/internal/models"
)

// runJob drives one extraction job from 'pending' to a terminal status, or to
// 'paused' if the user requests it. It only returns once the job is no longer
// processing.
func (r *Runner) runJob(job *models.ExtractionJob) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Extraction job %d panicked: %v", job.ID, rec)
			r.failJob(job.ID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	// Preconditions are checked while the job is still 'pending': a job with
	// bad credentials or an unreadable upload fails without ever entering
	// 'processing'.
	provider, ok := providers.Get(job.ProviderID)
	if !ok {
		r.failJob(job.ID, fmt.Sprintf("unknown provider '%s'", job.ProviderID))
		return
	}

	token, err := r.st.GetAccessToken(job.UserID, job.ProviderID)
	if err != nil {
		r.failJob(job.ID, fmt.Sprintf("could not load credentials: %v", err))
		return
	}
	if token == "" && provider.RequiresAuth() {
		r.failJob(job.ID, fmt.Sprintf("authentication required: connect your %s account before running extractions", provider.GetInfo().Name))
		return
	}

	pending, err := r.resolveItems(job)
	if err != nil {
		r.failJob(job.ID, err.Error())
		return
	}

	if err := r.st.MarkJobProcessing(job.ID); err != nil {
		// The job was stopped between dequeue and start. Leave it alone.
		log.Printf("Skipping job %d: %v", job.ID, err)
		return
	}
	log.Printf("Starting extraction job %d (%s)", job.ID, job.FileName)

	cfg := r.app.Config().Extractor
	batchSize := job.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.BatchSize
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	itemDelay := time.Duration(cfg.ItemDelayMs) * time.Millisecond
	batchDelay := time.Duration(cfg.BatchDelayMs) * time.Millisecond

	runStart := time.Now()
	halted := false
	for start := 0; start < len(pending); start += batchSize {
		// The batch boundary is the only point where pause and stop take
		// effect. Mid-batch requests wait for the batch to finish.
		current, err := r.st.GetJob(job.ID)
		if err != nil {
			log.Printf("Error reloading job %d: %v", job.ID, err)
			halted = true
			break
		}
		if current.Status != models.JobStatusProcessing {
			log.Printf("Job %d halted at batch boundary (status %s)", job.ID, current.Status)
			r.broadcastProgress(current, "", current.Terminal())
			halted = true
			break
		}

		if start > 0 {
			time.Sleep(batchDelay)
		}

		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		for i, item := range pending[start:end] {
			r.extractItem(job.ID, provider, token, item)
			r.publishEstimates(job.ID, runStart)
			if start+i+1 < len(pending) {
				time.Sleep(itemDelay)
			}
		}
	}

	if err := r.st.AddJobActiveTime(job.ID, time.Since(runStart).Milliseconds()); err != nil {
		log.Printf("Error recording active time for job %d: %v", job.ID, err)
	}
	if halted {
		return
	}

	completed, err := r.st.CompleteJob(job.ID)
	if err != nil {
		log.Printf("Error completing job %d: %v", job.ID, err)
		return
	}
	if !completed {
		// Stop or pause landed while the final batch was in flight; there is
		// no later boundary to observe it, so completion stands down.
		if current, err := r.st.GetJob(job.ID); err == nil {
			log.Printf("Job %d halted during its final batch (status %s)", job.ID, current.Status)
			r.broadcastProgress(current, "", current.Terminal())
		}
		return
	}
	r.writeExport(job.ID)

	done, err := r.st.GetJob(job.ID)
	if err == nil {
		log.Printf("Extraction job %d completed: %d/%d successful", done.ID, done.SuccessfulItems, done.TotalItems)
		r.broadcastProgress(done, "Extraction completed", true)
	}
}

// resolveItems creates the job's items from the uploaded file on the first
// run, then returns the items still awaiting a terminal status.
func (r *Runner) resolveItems(job *models.ExtractionJob) ([]*models.ProfileItem, error) {
	count, err := r.st.CountItemsByJob(job.ID)
	if err != nil {
		return nil, fmt.Errorf("could not count items: %w", err)
	}
	if count == 0 {
		urls, err := importer.ReadProfileURLs(job.FilePath)
		if err != nil {
			return nil, fmt.Errorf("could not read uploaded file: %w", err)
		}
		if len(urls) == 0 {
			return nil, fmt.Errorf("no profile URLs found in uploaded file")
		}
		if err := r.st.CreateItems(job.ID, urls); err != nil {
			return nil, fmt.Errorf("could not create items: %w", err)
		}
		if err := r.st.SetJobTotalItems(job.ID, len(urls)); err != nil {
			return nil, fmt.Errorf("could not record item total: %w", err)
		}
	}
	return r.st.ListUnprocessedItems(job.ID)
}

// extractItem runs the attempt loop for a single profile URL and records the
// outcome on both the item and the job counters.
func (r *Runner) extractItem(jobID int64, provider providers.Provider, token string, item *models.ProfileItem) {
	cfg := r.app.Config().Extractor
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoff := time.Duration(cfg.RetryBackoffMs) * time.Millisecond

	if err := r.st.MarkItemProcessing(item.ID); err != nil {
		log.Printf("Error marking item %d processing: %v", item.ID, err)
	}

	var lastErr error
	var kind providers.Kind
	retries := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		profile, err := provider.ExtractProfile(item.SourceURL, token)
		if err == nil {
			if err := r.st.MarkItemSuccess(item.ID, profile); err != nil {
				log.Printf("Error storing result for item %d: %v", item.ID, err)
			}
			r.recordOutcome(jobID, true)
			return
		}

		lastErr = err
		kind = providers.Classify(err)
		retries = attempt - 1
		if !providers.Retryable(kind) {
			// Permanent conditions are not worth another request.
			break
		}
		if attempt < maxAttempts {
			log.Printf("Item %d attempt %d failed (%s), retrying in %s: %v", item.ID, attempt, kind, backoff, err)
			if err := r.st.MarkItemRetrying(item.ID, attempt, string(kind), lastErr.Error()); err != nil {
				log.Printf("Error marking item %d retrying: %v", item.ID, err)
			}
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	if err := r.st.MarkItemFailed(item.ID, string(kind), lastErr.Error(), retries); err != nil {
		log.Printf("Error marking item %d failed: %v", item.ID, err)
	}
	r.recordOutcome(jobID, false)
}

func (r *Runner) recordOutcome(jobID int64, success bool) {
	if err := r.st.RecordItemOutcome(jobID, success); err != nil {
		log.Printf("Error updating counters for job %d: %v", jobID, err)
	}
}

// publishEstimates recomputes the processing rate and ETA from time spent
// actively processing, which excludes paused intervals, then broadcasts a
// progress update.
func (r *Runner) publishEstimates(jobID int64, runStart time.Time) {
	job, err := r.st.GetJob(jobID)
	if err != nil {
		log.Printf("Error reloading job %d for estimates: %v", jobID, err)
		return
	}

	activeMs := job.ActiveMs + time.Since(runStart).Milliseconds()
	var rate float64
	var eta *time.Time
	if activeMs > 0 && job.ProcessedItems > 0 {
		rate = float64(job.ProcessedItems) / (float64(activeMs) / 60000.0)
		remaining := job.TotalItems - job.ProcessedItems
		if rate > 0 && remaining > 0 {
			t := time.Now().Add(time.Duration(float64(remaining) / rate * float64(time.Minute)))
			eta = &t
		}
	}
	if err := r.st.UpdateJobEstimates(jobID, rate, eta); err != nil {
		log.Printf("Error storing estimates for job %d: %v", jobID, err)
	}

	job.RatePerMinute = rate
	job.ETA = eta
	r.broadcastProgress(job, "", false)
}

// writeExport generates the result workbook for a finished job. Export
// failures are logged but do not fail the job; the results stay queryable.
func (r *Runner) writeExport(jobID int64) {
	items, err := r.st.ListItemsByJob(jobID)
	if err != nil {
		log.Printf("Error loading items for job %d export: %v", jobID, err)
		return
	}
	path, err := export.WriteJobExport(r.app.Config().Exports.Path, items)
	if err != nil {
		log.Printf("Error writing export for job %d: %v", jobID, err)
		return
	}
	if err := r.st.SetJobExport(jobID, path); err != nil {
		log.Printf("Error recording export path for job %d: %v", jobID, err)
	}
}

func (r *Runner) failJob(jobID int64, message string) {
	if err := r.st.FailJob(jobID, message); err != nil {
		log.Printf("Error failing job %d: %v", jobID, err)
		return
	}
	if job, err := r.st.GetJob(jobID); err == nil {
		r.broadcastProgress(job, message, true)
	}
}

func (r *Runner) broadcastProgress(job *models.ExtractionJob, message string, done bool) {
	r.app.WsHub().BroadcastJSON(models.ProgressUpdate{
		JobID:           job.ID,
		Status:          job.Status,
		Message:         message,
		TotalItems:      job.TotalItems,
		ProcessedItems:  job.ProcessedItems,
		SuccessfulItems: job.SuccessfulItems,
		FailedItems:     job.FailedItems,
		Percent:         job.Percent(),
		RatePerMinute:   job.RatePerMinute,
		ETA:             job.ETA,
		Done:            done,
	})
}
