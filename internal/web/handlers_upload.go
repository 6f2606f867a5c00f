package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/recon/internal/ingest"
	"github.com/JonMunkholm/recon/internal/jobs"
	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/web/templates"
)

const (
	jobsCookie = "recon_jobs"

	// maxTrackedJobs caps how many job IDs the browser cookie remembers.
	maxTrackedJobs = 20

	// multipartMemory is how much of a form is buffered in memory before
	// spilling to temp files.
	multipartMemory = 10 << 20
)

type uploadResponse struct {
	JobID  string      `json:"job_id"`
	Status jobs.Status `json:"status"`
}

// handleUpload accepts one statement file and queues it. Only the request
// shape and file extension are checked here; everything else is reported
// through the job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			s.respondError(w, r, fmt.Errorf("file too large: limit is %d bytes", maxSize), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		s.respondError(w, r, fmt.Errorf("file too large: %d bytes, limit is %d", header.Size, maxSize), http.StatusRequestEntityTooLarge)
		return
	}

	bank := strings.TrimSpace(r.FormValue("bank_name"))
	if bank == "" {
		s.respondError(w, r, errors.New("invalid request: bank_name is required"), http.StatusBadRequest)
		return
	}
	typ, err := ingest.ParseTransactionType(r.FormValue("transaction_type"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}
	if _, err := ingest.DetectFormat(header.Filename); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return
	}

	id := s.runner.Submit(ingest.Upload{
		Data:     data,
		FileName: header.Filename,
		Bank:     bank,
		Type:     typ,
	})
	logging.WithFields(r.Context(), s.logger,
		"job_id", id,
		"file", header.Filename,
		"bank", bank,
		"type", typ,
	).Info("upload accepted", "size", len(data))

	s.rememberJob(w, r, id)
	s.writeJSON(w, http.StatusAccepted, uploadResponse{JobID: id, Status: jobs.StatusPending})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.runner.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// handleListJobs returns the jobs this browser submitted, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runner.List(trackedJobs(r)))
}

func (s *Server) handleJobsPage(w http.ResponseWriter, r *http.Request) {
	list := s.runner.List(trackedJobs(r))

	rows := make([]templates.JobRow, 0, len(list))
	refresh := false
	for _, j := range list {
		row := templates.JobRow{
			ID:          j.ID,
			FileName:    j.FileName,
			Bank:        j.Bank,
			Type:        string(j.Type),
			Status:      string(j.Status),
			Message:     j.Message,
			SubmittedAt: j.SubmittedAt,
		}
		if j.Result != nil {
			row.Inserted = j.Result.Inserted
			row.Duplicates = j.Result.Duplicates
			row.Failed = len(j.Result.FailedRows)
		}
		if !j.Status.Done() {
			refresh = true
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.JobsPage(rows, refresh).Render(r.Context(), w); err != nil {
		s.logger.Error("render jobs page", "error", err)
	}
}

// trackedJobs returns the job IDs stored in the browser cookie.
func trackedJobs(r *http.Request) []string {
	c, err := r.Cookie(jobsCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	return strings.Split(c.Value, ".")
}

// rememberJob prepends id to the job cookie, keeping the newest
// maxTrackedJobs entries.
func (s *Server) rememberJob(w http.ResponseWriter, r *http.Request, id string) {
	ids := append([]string{id}, trackedJobs(r)...)
	if len(ids) > maxTrackedJobs {
		ids = ids[:maxTrackedJobs]
	}
	http.SetCookie(w, &http.Cookie{
		Name:     jobsCookie,
		Value:    strings.Join(ids, "."),
		Path:     "/",
		MaxAge:   int(s.cfg.Jobs.Retention.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
