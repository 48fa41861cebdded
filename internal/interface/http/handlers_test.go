package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studypulse/performance-hub/internal/application/command"
	"github.com/studypulse/performance-hub/internal/application/query"
	"github.com/studypulse/performance-hub/internal/domain/advice"
	"github.com/studypulse/performance-hub/internal/ml"
)

const testDataset = `study_time_min,total_screen_time_min,sleep_hours,class_attendance_percent,physical_activity,weekly_revision_time_min,distracting_app_count,daily_youtube_edu_min,academic_goal,Performance_Label
240,120,8,95,Yes,300,1,60,Yes,Good
30,540,4.5,50,No,20,9,5,No,Poor
240,120,8,95,Yes,300,1,60,Yes,Good
30,540,4.5,50,No,20,9,5,No,Poor
240,120,8,95,Yes,300,1,60,Yes,Good
30,540,4.5,50,No,20,9,5,No,Poor
240,120,8,95,Yes,300,1,60,Yes,Good
30,540,4.5,50,No,20,9,5,No,Poor
240,120,8,95,Yes,300,1,60,Yes,Good
30,540,4.5,50,No,20,9,5,No,Poor
`

const adminKey = "test-admin-key"

func trainedPredictor(t *testing.T) *ml.Predictor {
	t.Helper()
	ds, err := ml.ReadCSV(strings.NewReader(testDataset))
	require.NoError(t, err)

	cfg := ml.DefaultTrainerConfig()
	cfg.Forest.Trees = 15
	model, err := ml.Train(ds, cfg, nil)
	require.NoError(t, err)
	return ml.NewFittedPredictor(model)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	predictor := trainedPredictor(t)
	engine := advice.NewEngine(advice.DefaultConfig())

	datasetPath := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(datasetPath, []byte(testDataset), 0o644))

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0 // keep tests independent of each other
	cfg.AdminKeyHash = string(hash)

	deps := Dependencies{
		AssessHandler: command.NewAssessStudentHandler(predictor, engine, nil, nil, nil),
		RetrainHandler: command.NewRetrainModelHandler(
			datasetPath, ml.DefaultTrainerConfig(), predictor, nil, nil),
		RecentAssessmentsHandler: query.NewGetRecentAssessmentsHandler(nil, nil),
		Predictor:                predictor,
	}

	return NewServer(cfg, deps)
}

func doRequest(t *testing.T, s *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ─── tests ───────────────────────────────────────────────────────────────────

func TestPredict_Success(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"study_time":   "30",
		"screen_time":  540,
		"sleep":        4.5,
		"attendance":   50,
		"activity":     false,
		"revision":     "20min",
		"distractions": 9,
		"edu_youtube":  5,
		"goal":         "no",
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Poor", data["label"])
	tips, ok := data["tips"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, tips)
	assert.LessOrEqual(t, len(tips), 5)
}

func TestPredict_MissingField(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict",
		map[string]any{"study_time": 30}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "missing_field", resp.Error.Code)
}

func TestPredict_InvalidValue(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"study_time":   "a lot",
		"screen_time":  540,
		"sleep":        4.5,
		"attendance":   50,
		"activity":     false,
		"revision":     20,
		"distractions": 9,
		"edu_youtube":  5,
		"goal":         "no",
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_value", resp.Error.Code)
}

func TestPredict_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredict_UnfittedModel(t *testing.T) {
	engine := advice.NewEngine(advice.DefaultConfig())
	unfitted := ml.NewPredictor()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	s := NewServer(cfg, Dependencies{
		AssessHandler: command.NewAssessStudentHandler(unfitted, engine, nil, nil, nil),
		Predictor:     unfitted,
	})

	body := map[string]any{
		"study_time":   30,
		"screen_time":  540,
		"sleep":        4.5,
		"attendance":   50,
		"activity":     "no",
		"revision":     20,
		"distractions": 9,
		"edu_youtube":  5,
		"goal":         "no",
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", body, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "model_not_ready", resp.Error.Code)
}

func TestRecentAssessments_HistoryDisabled(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/assessments/recent", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRetrain_RequiresAPIKey(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/admin/retrain", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/admin/retrain", nil,
		map[string]string{"X-API-Key": "wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRetrain_Success(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/admin/retrain", nil,
		map[string]string{"X-API-Key": adminKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "holdout_accuracy")
	assert.Contains(t, data, "train_rows")
}

func TestRetrain_DisabledWithoutHash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	s := NewServer(cfg, Dependencies{Predictor: trainedPredictor(t)})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/admin/retrain", nil,
		map[string]string{"X-API-Key": adminKey})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthAndProbes(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["model_ready"])

	rec = doRequest(t, s, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_NotReadyBeforeTraining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	s := NewServer(cfg, Dependencies{Predictor: ml.NewPredictor()})

	rec := doRequest(t, s, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDHeaderPropagated(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/live", nil,
		map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = doRequest(t, s, http.MethodGet, "/live", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 2
	s := NewServer(cfg, Dependencies{Predictor: trainedPredictor(t)})

	doRequest(t, s, http.MethodGet, "/live", nil, nil)
	doRequest(t, s, http.MethodGet, "/live", nil, nil)
	rec := doRequest(t, s, http.MethodGet, "/live", nil, nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
