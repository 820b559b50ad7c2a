package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wazivo/internal/errors"
	"wazivo/internal/extract"
	"wazivo/internal/types"
)

const healthCheckTimeout = 10 * time.Second

// healthHandler reports the service state including the analysis model
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := map[string]any{
		"status":    "healthy",
		"service":   "wazivo",
		"version":   s.Version,
		"image_ocr": extract.OCRAvailable,
	}

	overallHealthy := true
	if s.model != nil {
		modelInfo := s.model.GetModelInfo(ctx)
		response["ai_model"] = modelInfo
		response["circuit_breakers"] = map[string]any{"ai": s.model.Stats()}
		overallHealthy = modelInfo.Available
	}

	if s.components != nil {
		response["fetch_strategies"] = s.components.Fetcher.Strategies()
		if s.components.Enricher != nil {
			response["job_providers"] = s.components.Enricher.Providers()
		} else {
			response["job_providers"] = []string{}
		}
	}

	status := http.StatusOK
	if !overallHealthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "wazivo",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"request_timeout":        s.RequestTimeout.String(),
			"auth_enabled":           s.APIKeys.Len() > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
			"backend":          s.RateLimit.Backend,
		}
	}

	if s.model != nil {
		response["ai"] = s.model.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// writeError classifies err and writes the standard error body. Raw error
// text never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	classification := errors.Classify(err)
	writeJSON(w, classification.Status, types.ErrorResponse{
		Error:     classification.Message,
		Code:      classification.Code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure cannot reach the client.
	_ = json.NewEncoder(w).Encode(body)
}
