package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request ID; the client only sees
// the mapped message, its suggested action and a support code. API routes
// and clients asking for JSON get an ErrorResponse, pages get an HTML alert.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/recon/internal/ingest"
	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := ingest.MapError(err)

	logging.FromContext(r.Context(), s.logger).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     msg.Message,
		Message:   msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
