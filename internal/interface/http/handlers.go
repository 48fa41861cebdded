// Package http implements the REST API for the performance hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/studypulse/performance-hub/internal/application/command"
	"github.com/studypulse/performance-hub/internal/application/query"
	"github.com/studypulse/performance-hub/internal/domain/shared"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "StudyPulse Performance Hub API",
		"version":     "v1",
		"description": "Student performance prediction and advisory service",
		"endpoints": map[string]string{
			"health":  "/health",
			"predict": "/api/v1/predict",
			"recent":  "/api/v1/assessments/recent",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "healthy",
		"uptime":      s.Uptime().String(),
		"version":     "v1",
		"model_ready": s.deps.Predictor != nil && s.deps.Predictor.Ready(),
	}

	if s.deps.Predictor != nil {
		if m := s.deps.Predictor.Current(); m != nil {
			status["holdout_accuracy"] = m.Accuracy
			status["trained_at"] = m.TrainedAt
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
// The service is ready only once a trained model has been published.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Predictor == nil || !s.deps.Predictor.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "model has not been trained yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDICTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// maxPredictBodyBytes bounds the prediction request body.
const maxPredictBodyBytes = 1 << 20 // 1 MB

// handlePredict handles POST /api/v1/predict.
// The body is a flat JSON object of metric fields; values may be strings
// (including free-text durations like "2hrs 30min") or numbers.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.deps.AssessHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Prediction handler not configured")
		return
	}

	raw, err := decodeMetricFields(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	result, err := s.deps.AssessHandler.Handle(r.Context(), command.AssessStudentCommand{Metrics: raw})
	if err != nil {
		s.writePredictError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writePredictError maps domain error kinds to HTTP status codes.
func (s *Server) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsMissingField(err):
		writeJSONError(w, http.StatusBadRequest, "missing_field", err.Error())
	case shared.IsInvalidValue(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_value", err.Error())
	case shared.IsUnfittedModel(err):
		writeJSONError(w, http.StatusServiceUnavailable, "model_not_ready", "Model has not been trained yet")
	default:
		s.logger.Error("prediction failed",
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Prediction failed")
	}
}

// decodeMetricFields reads the request body into the raw field mapping the
// assessment command expects. JSON numbers and booleans are rendered back
// to strings so the domain parser remains the single validation point.
func decodeMetricFields(r *http.Request) (map[string]string, error) {
	body := http.MaxBytesReader(nil, r.Body, maxPredictBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.New("failed to read request body")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}

	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			if v {
				fields[key] = "yes"
			} else {
				fields[key] = "no"
			}
		case nil:
			fields[key] = ""
		default:
			return nil, errors.New("metric values must be strings, numbers, or booleans")
		}
	}

	return fields, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT HISTORY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRecentAssessments handles GET /api/v1/assessments/recent.
func (s *Server) handleRecentAssessments(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecentAssessmentsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Assessment history not configured")
		return
	}

	q := query.GetRecentAssessmentsQuery{
		Limit: getQueryParamInt(r, "limit", 20),
	}

	result, err := s.deps.RecentAssessmentsHandler.Handle(r.Context(), q)
	if err != nil {
		switch {
		case shared.IsInvalidValue(err):
			writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, shared.ErrServiceUnavailable):
			writeJSONError(w, http.StatusServiceUnavailable, "history_disabled", "Assessment history is disabled")
		default:
			s.logger.Error("failed to get recent assessments", logger.Err(err))
			writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to get assessments")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRetrain handles POST /api/v1/admin/retrain.
// Requires a valid admin API key in the X-API-Key header.
func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if s.deps.RetrainHandler == nil || s.config.AdminKeyHash == "" {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Retraining is not enabled")
		return
	}

	key := r.Header.Get("X-API-Key")
	if key == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminKeyHash), []byte(key)); err != nil {
		s.logger.Warn("retrain rejected: invalid API key",
			logger.String("ip", getClientIP(r)),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
		return
	}

	result, err := s.deps.RetrainHandler.Handle(r.Context(), command.RetrainModelCommand{})
	if err != nil {
		s.logger.Error("retrain failed", logger.Err(err))
		if shared.IsDataset(err) {
			writeJSONError(w, http.StatusInternalServerError, "dataset_error", err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "retrain_failed", "Retraining failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
