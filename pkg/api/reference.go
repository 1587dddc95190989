package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"amplify_roi/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/mem"
)

type healthResponse struct {
	Status        string         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Countries     int            `json:"countries"`
	BusinessTypes int            `json:"business_types"`
	CacheMode     string         `json:"cache_mode,omitempty"`
	Memory        *memoryMetrics `json:"memory,omitempty"`
}

type memoryMetrics struct {
	TotalBytes     uint64  `json:"total_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	countries, types := s.cfg.Registry.Count()
	resp := healthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       s.cfg.Version,
		UptimeSeconds: int64(time.Since(s.start).Seconds()),
		Countries:     countries,
		BusinessTypes: types,
	}
	if s.cfg.CacheMode != nil {
		resp.CacheMode = string(s.cfg.CacheMode())
	}

	// Memory statistics are best effort.
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.Memory = &memoryMetrics{
			TotalBytes:     vm.Total,
			AvailableBytes: vm.Available,
			UsedPercent:    vm.UsedPercent,
		}
	} else {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBusinessTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Registry.BusinessTypes())
}

func (s *Server) handleBusinessType(w http.ResponseWriter, r *http.Request) {
	bt, err := s.cfg.Registry.BusinessType(chi.URLParam(r, "id"))
	if err != nil {
		s.writeLookupError(w, r, err, "Business type not found")
		return
	}
	writeJSON(w, http.StatusOK, bt)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Registry.Countries())
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	c, err := s.cfg.Registry.Country(chi.URLParam(r, "code"))
	if err != nil {
		s.writeLookupError(w, r, err, "Country not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// writeLookupError answers 404 for direct resource lookups.
func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	if errors.Is(err, models.ErrNotFound) {
		s.writeDetail(w, r, http.StatusNotFound, detail)
		return
	}
	s.writeError(w, r, err)
}

func (s *Server) handleSearchScenarios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		s.writeError(w, r, models.InvalidInputf("query parameter is required"))
		return
	}

	results := s.cfg.Registry.Search(query, q.Get("category"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}

func (s *Server) handleFormatCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := strings.ToUpper(strings.TrimSpace(q.Get("currency_code")))
	if code == "" {
		s.writeError(w, r, models.InvalidInputf("currency_code parameter is required"))
		return
	}
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		s.writeError(w, r, models.InvalidInputf("amount must be a finite number, got %q", q.Get("amount")))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"formatted": s.cfg.Formatter.Format(amount, code),
		"currency":  code,
	})
}
