// Package extractor contains the job queue runner and the per-job batch
// worker. One runner processes one job at a time, in submission order.
package extractor

import (
	"log"
	"time"

	"github.com/prospectr/prospectr-go/internal/core"
	"github.com/prospectr/prospectr-go/internal/store"
)

// Runner dequeues pending extraction jobs one at a time and drives them to a
// terminal status. Queue state lives in the database, so a restart resumes
// where the previous process left off.
type Runner struct {
	app *core.App
	st  *store.Store

	// wake has capacity 1; Submit and Resume nudge the loop so a new job is
	// picked up without waiting for the next poll tick.
	wake chan struct{}
}

func NewRunner(app *core.App) *Runner {
	return &Runner{
		app:  app,
		st:   store.New(app.DB()),
		wake: make(chan struct{}, 1),
	}
}

// Start recovers state interrupted by a previous shutdown and launches the
// queue loop in its own goroutine.
func (r *Runner) Start() error {
	if err := r.st.ResetInFlightItems(); err != nil {
		return err
	}
	if err := r.st.ResetProcessingJobs(); err != nil {
		return err
	}
	go r.loop()
	log.Println("Extraction runner started.")
	return nil
}

func (r *Runner) loop() {
	pollInterval := time.Duration(r.app.Config().Extractor.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	for {
		// Drain the queue in FIFO order before going back to sleep.
		for {
			job, err := r.st.NextPendingJob()
			if err != nil {
				log.Printf("Error fetching next pending job: %v", err)
				break
			}
			if job == nil {
				break
			}
			r.runJob(job)
		}

		select {
		case <-r.wake:
		case <-time.After(pollInterval):
		}
	}
}

func (r *Runner) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Submit signals the runner that a newly created job is waiting. The job is
// already persisted in 'pending' status, so this only shortcuts the poll.
func (r *Runner) Submit(jobID int64) {
	r.notify()
}

// Pause requests that a processing job stop after its current batch. The
// worker checks the job status at every batch boundary and halts there.
// Pausing a job that is not processing is a no-op.
func (r *Runner) Pause(jobID int64) error {
	return r.st.PauseJob(jobID)
}

// Resume puts a paused job back on the queue. Already processed items keep
// their results; work continues from the first unprocessed item.
func (r *Runner) Resume(jobID int64) error {
	if err := r.st.ResumeJob(jobID); err != nil {
		return err
	}
	r.notify()
	return nil
}

// Stop terminally fails a non-terminal job. If the job is currently
// processing, the worker notices at the next batch boundary and halts.
func (r *Runner) Stop(jobID int64) error {
	return r.st.StopJob(jobID)
}
