package jobs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prospectr/prospectr-go/internal/jobs"
	"github.com/prospectr/prospectr-go/internal/store"
	"github.com/prospectr/prospectr-go/internal/testutil"
)

func TestSessionCleanupJob(t *testing.T) {
	app := testutil.SetupTestApp(t)
	st := store.New(app.DB())
	user, _ := st.CreateUser("cleanup", "hash", "user")
	app.DB().Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('stale', ?, ?)",
		user.ID, time.Now().Add(-time.Hour))
	app.DB().Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('live', ?, ?)",
		user.ID, time.Now().Add(time.Hour))

	jobs.RegisterMaintenance(app)
	assert.NoError(t, app.JobManager().RunJob("session-cleanup", app))

	assert.Eventually(t, func() bool {
		var count int
		app.DB().QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
		return count == 1
	}, time.Second, 5*time.Millisecond)
}

func TestExportCleanupJob(t *testing.T) {
	app := testutil.SetupTestApp(t)
	st := store.New(app.DB())
	exportsDir := app.Config().Exports.Path

	// A referenced export must survive cleanup even when old.
	user, _ := st.CreateUser("cleanup", "hash", "user")
	job, _ := st.CreateJob(user.ID, "mockprofile", "a.xlsx", "/tmp/a.xlsx", 0)
	kept := filepath.Join(exportsDir, "kept.xlsx")
	orphaned := filepath.Join(exportsDir, "orphaned.xlsx")
	fresh := filepath.Join(exportsDir, "fresh.xlsx")
	for _, p := range []string{kept, orphaned, fresh} {
		assert.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	st.SetJobExport(job.ID, kept)

	old := time.Now().AddDate(0, 0, -app.Config().Exports.RetentionDays-1)
	assert.NoError(t, os.Chtimes(kept, old, old))
	assert.NoError(t, os.Chtimes(orphaned, old, old))

	jobs.RegisterMaintenance(app)
	assert.NoError(t, app.JobManager().RunJob("export-cleanup", app))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(orphaned)
		return os.IsNotExist(err)
	}, time.Second, 5*time.Millisecond)

	_, err := os.Stat(kept)
	assert.NoError(t, err, "referenced export must not be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "recent export must not be removed")
}
