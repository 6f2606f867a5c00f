package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/recon/internal/compare"
	"github.com/JonMunkholm/recon/internal/ingest"
	"github.com/JonMunkholm/recon/internal/jobs"
	"github.com/JonMunkholm/recon/internal/web/templates"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := templates.UploadParams{
		Banks:      s.registry.Banks(),
		Types:      []string{string(ingest.Booking), string(ingest.Refund)},
		Extensions: ingest.SupportedExtensions(),
		MaxSizeMB:  s.cfg.Upload.MaxFileSize >> 20,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(params).Render(r.Context(), w); err != nil {
		s.logger.Error("render upload page", "error", err)
	}
}

type healthResponse struct {
	Status   string             `json:"status"`
	Database string             `json:"database,omitempty"`
	Uploads  jobs.LimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Uploads: s.runner.Limiter().Status()}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health check: database unreachable", "error", err)
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	s.writeJSON(w, status, resp)
}

// handleCompare runs the production comparison for one bank and month.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	code, err := s.registry.BankCode(q.Get("bank"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1 {
		s.respondError(w, r, fmt.Errorf("invalid request: year %q", q.Get("year")), http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		s.respondError(w, r, fmt.Errorf("invalid request: month %q", q.Get("month")), http.StatusBadRequest)
		return
	}

	unmatched, err := s.comparer.Compare(r.Context(), compare.Request{
		BankCode: code,
		Year:     year,
		Month:    time.Month(month),
	})
	if errors.Is(err, compare.ErrNotImplemented) {
		s.respondError(w, r, err, http.StatusNotImplemented)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, unmatched)
}
