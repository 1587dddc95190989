package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"amplify_roi/pkg/core/utils"
	"amplify_roi/pkg/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the error body shape for every endpoint.
type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail, RequestID: middleware.GetReqID(r.Context())})
}

// statusFor maps engine error kinds to HTTP statuses. Unknown countries and
// scenarios are caller mistakes, so ErrNotFound is a 400 here.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrNotFound):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingReferenceData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status. Internal errors are logged
// and hidden from the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
		s.writeDetail(w, r, status, "Internal server error")
		return
	}
	s.writeDetail(w, r, status, err.Error())
}

// decodeBody parses a request body leniently (JSON, repaired JSON, Hjson).
func (s *Server) decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return models.InvalidInputf("failed to read request body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return models.InvalidInputf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return models.InvalidInputf("request body is empty")
	}

	strategy, err := utils.SmartParse(body, v)
	if err != nil {
		return models.InvalidInputf("malformed request body: %v", err)
	}
	if strategy != utils.StrategyJSON {
		s.log.Debug().Str("strategy", strategy).Str("path", r.URL.Path).Msg("request body needed lenient parsing")
	}
	return nil
}

// clientIP returns the caller address without its port. RealIP middleware
// has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}
