// Handlers for the extraction job endpoints: upload, inspect, control and
// export download.

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/models"
)

const maxUploadSize = 32 << 20 // 32 MB

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, providers.GetAll())
}

// handleCreateJob accepts a multipart spreadsheet upload, persists it, and
// enqueues a new extraction job for it.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "A spreadsheet file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		RespondWithError(w, http.StatusBadRequest, "Only .xlsx and .csv files are supported")
		return
	}

	providerID := r.FormValue("provider_id")
	if providerID == "" {
		providerID = s.app.Config().Extractor.DefaultProvider
	}
	if _, ok := providers.Get(providerID); !ok {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown provider '%s'", providerID))
		return
	}

	batchSize := 0
	if v := r.FormValue("batch_size"); v != "" {
		batchSize, err = strconv.Atoi(v)
		if err != nil || batchSize < 0 {
			RespondWithError(w, http.StatusBadRequest, "Invalid batch size")
			return
		}
	}

	uploadsDir := s.app.Config().Uploads.Path
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}
	destPath := filepath.Join(uploadsDir, uuid.NewString()+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}
	defer dest.Close()
	if _, err := io.Copy(dest, file); err != nil {
		os.Remove(destPath)
		RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}

	job, err := s.store.CreateJob(user.ID, providerID, header.Filename, destPath, batchSize)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}
	s.runner.Submit(job.ID)

	RespondWithJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	jobs, err := s.store.ListJobsByUser(user.ID, limit)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}
	RespondWithJSON(w, http.StatusOK, jobs)
}

// jobForRequest loads the job from the URL and enforces ownership. A job
// belonging to another user is reported as not found.
func (s *Server) jobForRequest(w http.ResponseWriter, r *http.Request) *models.ExtractionJob {
	jobID, _ := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	user := getUserFromContext(r)

	job, err := s.store.GetJob(jobID)
	if err != nil || job.UserID != user.ID {
		RespondWithError(w, http.StatusNotFound, "Job not found")
		return nil
	}
	return job
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job := s.jobForRequest(w, r)
	if job == nil {
		return
	}
	RespondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleListJobItems(w http.ResponseWriter, r *http.Request) {
	job := s.jobForRequest(w, r)
	if job == nil {
		return
	}

	items, err := s.store.ListItemsByJob(job.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve job items")
		return
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	job := s.jobForRequest(w, r)
	if job == nil {
		return
	}

	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var err error
	switch payload.Action {
	case "pause":
		err = s.runner.Pause(job.ID)
	case "resume":
		err = s.runner.Resume(job.ID)
	case "stop":
		err = s.runner.Stop(job.ID)
	default:
		RespondWithError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to apply action")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	job := s.jobForRequest(w, r)
	if job == nil {
		return
	}
	if job.ExportPath == "" {
		RespondWithError(w, http.StatusNotFound, "No export available for this job")
		return
	}
	if _, err := os.Stat(job.ExportPath); err != nil {
		RespondWithError(w, http.StatusNotFound, "Export file no longer exists")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="job-%d-results.xlsx"`, job.ID))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, job.ExportPath)
}
