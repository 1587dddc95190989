package api

import (
	"context"
	"encoding/json"
	"net/http"

	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/store"
	"amplify_roi/pkg/models"
)

// refs is the reference data a request resolves to.
type refs struct {
	country  models.CountryData
	scenario models.ScenarioData
}

func (s *Server) resolve(req models.CalculationRequest) (refs, error) {
	country, err := s.cfg.Registry.Country(req.Country)
	if err != nil {
		return refs{}, err
	}
	scenario, err := s.cfg.Registry.Scenario(req.BusinessType, req.Scenario)
	if err != nil {
		return refs{}, err
	}
	return refs{country: country, scenario: scenario}, nil
}

// compute resolves reference data and runs the calculator, serving identical
// requests from the result cache when one is configured.
func (s *Server) compute(ctx context.Context, req models.CalculationRequest) (*pipeline.Result, refs, error) {
	ref, err := s.resolve(req)
	if err != nil {
		return nil, refs{}, err
	}

	var key string
	if s.cfg.Cache != nil {
		if key, err = store.Fingerprint(req); err == nil {
			var cached pipeline.Result
			found, err := s.cfg.Cache.Get(ctx, key, &cached)
			if err != nil {
				s.log.Warn().Err(err).Msg("result cache read failed")
			}
			if found {
				return s.cfg.Calculator.Restamp(&cached), ref, nil
			}
		}
	}

	result, err := s.cfg.Calculator.Compute(req, ref.country, ref.scenario)
	if err != nil {
		return nil, refs{}, err
	}

	if key != "" {
		if err := s.cfg.Cache.Set(ctx, key, result); err != nil {
			s.log.Warn().Err(err).Msg("result cache write failed")
		}
	}
	return result, ref, nil
}

// logCalculation records analytics. Failures are logged, never surfaced.
func (s *Server) logCalculation(r *http.Request, req models.CalculationRequest) {
	if s.cfg.Analytics == nil {
		return
	}
	payload, _ := json.Marshal(req)
	ip := clientIP(r)

	event := store.CalculationEvent{
		CountryCode:     req.Country,
		BusinessType:    req.BusinessType,
		ScenarioID:      req.Scenario,
		CalculationData: string(payload),
		SessionID:       sessionID(r),
		IPAddress:       ip,
		UserAgent:       r.UserAgent(),
	}
	if s.cfg.Geo != nil {
		event.GeoCountry = s.cfg.Geo.CountryISO(ip)
	}

	if err := s.cfg.Analytics.LogCalculation(context.WithoutCancel(r.Context()), event); err != nil {
		s.log.Error().Err(err).Msg("failed to log analytics")
	}
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculationRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, _, err := s.compute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logCalculation(r, req)
	writeJSON(w, http.StatusOK, result)
}

type whatIfRequest struct {
	BaseCalculation models.CalculationRequest `json:"base_calculation"`
	Variations      []models.RequestOverrides `json:"variations"`
}

// maxVariations bounds one what-if call.
const maxVariations = 20

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var req whatIfRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Variations) > maxVariations {
		s.writeError(w, r, models.InvalidInputf("at most %d variations are allowed, got %d", maxVariations, len(req.Variations)))
		return
	}

	ref, err := s.resolve(req.BaseCalculation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis, err := s.cfg.Calculator.WhatIf(req.BaseCalculation, req.Variations, ref.country, ref.scenario)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logCalculation(r, req.BaseCalculation)
	writeJSON(w, http.StatusOK, analysis)
}

type sensitivityRequest struct {
	models.CalculationRequest
	Delta float64 `json:"delta,omitempty"`
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ref, err := s.resolve(req.CalculationRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, err := s.cfg.Calculator.Sensitivity(req.CalculationRequest, ref.country, ref.scenario, req.Delta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
