package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	"github.com/caseymrobbins/personal-ai-sub001/internal/routing"
	"github.com/caseymrobbins/personal-ai-sub001/internal/strongman"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/internal/viewpoint"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	cfg := config.DefaultConfig()
	scorer := routing.NewScorer(&cfg.Routing)
	executor := pipeline.NewExecutor(
		&cfg.Pipeline,
		scorer,
		viewpoint.NewAnalyzer(cfg.Pipeline.MaxOpposingViewpoints, scorer),
		strongman.NewEngine(&cfg.Pipeline, nil),
		synthesis.NewSynthesizer(nil),
		nil,
		nil,
		nil,
	)
	return NewRouter(cfg, executor, nil, nil)
}

func executeRun(t *testing.T, router *Router) types.PipelineResult {
	t.Helper()
	body, err := json.Marshal(ExecutePipelineRequest{
		Question: "Should renewable energy be prioritized?",
		ConversationHistory: []types.ConversationMessage{
			{Role: types.RoleUser, Content: "I think renewable energy should be prioritized because climate change is urgent."},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result types.PipelineResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestExecutePipelineEndpoint(t *testing.T) {
	router := newTestRouter(t)
	result := executeRun(t, router)

	assert.NotEmpty(t, result.ID)
	assert.NotNil(t, result.SynthesizedAnswer)
	assert.NotEmpty(t, result.SynthesizedAnswer.DirectAnswer)
	assert.NotEmpty(t, result.ProgressLog)
}

func TestExecutePipelineEndpointRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResultEndpoint(t *testing.T) {
	router := newTestRouter(t)
	result := executeRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/"+result.ID, nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched types.PipelineResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, result.ID, fetched.ID)
}

func TestGetResultEndpointNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/no-such-run", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnswerEndpoint(t *testing.T) {
	router := newTestRouter(t)
	result := executeRun(t, router)

	t.Run("markdown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/"+result.ID+"/answer", nil)
		rec := httptest.NewRecorder()
		router.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "## Direct Answer")
	})

	t.Run("html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/"+result.ID+"/answer?format=html", nil)
		rec := httptest.NewRecorder()
		router.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "<h2>")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	executeRun(t, router)
	executeRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics types.PipelineMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.GreaterOrEqual(t, metrics.TotalPipelines, 2)
	assert.Positive(t, metrics.AvgTotalTimeMs)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCORSPreflights(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
