package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"amplify_roi/pkg/core/store"
)

// adminAuth requires "Authorization: Bearer <admin token>". Without a
// configured token the admin API is closed.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if s.cfg.AdminToken == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			s.writeDetail(w, r, http.StatusUnauthorized, "Invalid admin credentials")
			return
		}
		if s.cfg.Analytics == nil {
			s.writeDetail(w, r, http.StatusServiceUnavailable, "Analytics storage is not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func (s *Server) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.cfg.Analytics.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.cfg.Analytics.Submissions(r.Context(), limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (s *Server) handleAdminExports(w http.ResponseWriter, r *http.Request) {
	exports, err := s.cfg.Analytics.Exports(r.Context(), limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exports": exports})
}

func (s *Server) handleAdminClearData(w http.ResponseWriter, r *http.Request) {
	kind, err := store.ParseDataKind(r.URL.Query().Get("data_type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.cfg.Analytics.Clear(r.Context(), kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Warn().Str("data_type", string(kind)).Int64("rows", n).Msg("admin cleared analytics data")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Cleared %d records", n),
	})
}
