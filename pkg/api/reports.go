package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"amplify_roi/pkg/core/notify"
	"amplify_roi/pkg/core/report"
	"amplify_roi/pkg/core/store"
	"amplify_roi/pkg/models"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

type exportRequest struct {
	models.CalculationRequest
	CalculationID string `json:"calculation_id,omitempty"`
	Format        string `json:"format,omitempty"` // html (default) | markdown
}

// renderReport recomputes the calculation and renders it. A caller-supplied
// calculation id is kept so the report matches the result the caller saw.
func (s *Server) renderReport(ctx context.Context, req models.CalculationRequest, calculationID string) (report.Export, string, float64, error) {
	result, ref, err := s.compute(ctx, req)
	if err != nil {
		return report.Export{}, "", 0, err
	}
	if calculationID != "" {
		result.CalculationID = calculationID
	}

	e, err := report.Build(result, ref.country, ref.scenario, s.cfg.Formatter)
	if err != nil {
		return report.Export{}, "", 0, err
	}

	if s.cfg.Archiver != nil {
		if _, err := s.cfg.Archiver.Archive(context.WithoutCancel(ctx), result.CalculationID, result.Timestamp, e); err != nil {
			s.log.Error().Err(err).Str("calculation_id", result.CalculationID).Msg("failed to archive report")
		}
	}
	return e, result.CalculationID, result.Metrics.ROIPercentage, nil
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = formatHTML
	}
	if format != formatHTML && format != formatMarkdown {
		s.writeError(w, r, models.InvalidInputf("unsupported report format %q", req.Format))
		return
	}

	e, calculationID, _, err := s.renderReport(r.Context(), req.CalculationRequest, req.CalculationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, contentType, ext := e.HTML, "text/html; charset=utf-8", "html"
	if format == formatMarkdown {
		body, contentType, ext = e.Markdown, "text/markdown; charset=utf-8", "md"
	}

	if s.cfg.Analytics != nil {
		err := s.cfg.Analytics.LogExport(context.WithoutCancel(r.Context()), store.ExportEvent{
			CalculationID: calculationID,
			ExportType:    format,
			FileSize:      int64(len(body)),
			SessionID:     sessionID(r),
		})
		if err != nil {
			s.log.Error().Err(err).Msg("failed to log export")
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="roi-report-%s.%s"`, calculationID, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type emailRequest struct {
	Email         string                    `json:"email"`
	Name          string                    `json:"name,omitempty"`
	Company       string                    `json:"company,omitempty"`
	GDPRConsent   bool                      `json:"gdpr_consent"`
	CalculationID string                    `json:"calculation_id,omitempty"`
	Calculation   models.CalculationRequest `json:"calculation"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.GDPRConsent {
		s.writeError(w, r, models.InvalidInputf("GDPR consent required"))
		return
	}
	if s.cfg.Mailer == nil {
		s.writeDetail(w, r, http.StatusServiceUnavailable, "Email delivery is not configured")
		return
	}

	e, calculationID, roi, err := s.renderReport(r.Context(), req.Calculation, req.CalculationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	emailID, err := s.cfg.Mailer.SendReport(r.Context(), notify.ReportEmail{
		To:            req.Email,
		Name:          req.Name,
		Company:       req.Company,
		CalculationID: calculationID,
		ROIPercentage: roi,
		HTML:          e.HTML,
		GDPRConsent:   req.GDPRConsent,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cfg.Analytics != nil {
		err := s.cfg.Analytics.LogEmailSubmission(context.WithoutCancel(r.Context()), store.EmailSubmission{
			Email:         req.Email,
			Name:          req.Name,
			Company:       req.Company,
			CalculationID: calculationID,
			CountryCode:   req.Calculation.Country,
			BusinessType:  req.Calculation.BusinessType,
			ROIResult:     roi,
			GDPRConsent:   req.GDPRConsent,
			IPAddress:     clientIP(r),
		})
		if err != nil {
			s.log.Error().Err(err).Msg("failed to log email submission")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Email sent successfully",
		"email_id": emailID,
	})
}
