package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/prospectr/prospectr-go/internal/store"
)

// RegisterMaintenance registers the housekeeping tasks with the job manager.
func RegisterMaintenance(app JobContext) {
	app.JobManager().Register("session-cleanup", "Session cleanup", sessionCleanup)
	app.JobManager().Register("export-cleanup", "Export cleanup", exportCleanup)
}

// StartScheduler starts the background scheduler for maintenance jobs.
func StartScheduler(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	schedule := func(jobID string, setup func(*gocron.Scheduler) *gocron.Scheduler) {
		_, err := setup(s).Do(func() {
			log.Println("Scheduler is triggering job:", jobID)
			if err := app.JobManager().RunJob(jobID, app); err != nil {
				log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
			}
		})
		if err != nil {
			log.Printf("Error scheduling '%s' job: %v", jobID, err)
		}
	}

	schedule("session-cleanup", func(s *gocron.Scheduler) *gocron.Scheduler { return s.Every(1).Hour() })
	schedule("export-cleanup", func(s *gocron.Scheduler) *gocron.Scheduler { return s.Every(24).Hours() })

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

// sessionCleanup deletes expired login sessions.
func sessionCleanup(ctx JobContext) {
	st := store.New(ctx.DB())
	n, err := st.DeleteExpiredSessions()
	if err != nil {
		log.Printf("Session cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Session cleanup removed %d expired sessions", n)
	}
}

// exportCleanup deletes export files past the retention window that no job
// references anymore.
func exportCleanup(ctx JobContext) {
	cfg := ctx.Config()
	if cfg.Exports.Path == "" || cfg.Exports.RetentionDays <= 0 {
		return
	}
	st := store.New(ctx.DB())
	referenced, err := st.ListExportPaths()
	if err != nil {
		log.Printf("Export cleanup failed to list referenced exports: %v", err)
		return
	}
	inUse := make(map[string]bool, len(referenced))
	for _, p := range referenced {
		inUse[filepath.Clean(p)] = true
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.Exports.RetentionDays)
	entries, err := os.ReadDir(cfg.Exports.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Export cleanup failed to read %s: %v", cfg.Exports.Path, err)
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(cfg.Exports.Path, entry.Name())
		if inUse[filepath.Clean(path)] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Export cleanup could not remove %s: %v", path, err)
		}
	}
}
