package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simstudio-backend/infrastructure/config"
	"simstudio-backend/infrastructure/di"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		ServerAddress:  ":0",
		Environment:    "development",
		StepBudget:     1000,
		LogLevel:       "info",
		AllowedOrigins: []string{"*"},
		EnableMetrics:  true,
		EnableCORS:     true,
	}

	container, err := di.InitializeContainer(cfg)
	require.NoError(t, err)

	router := NewRouter(
		container.Config,
		container.CommandBus,
		container.QueryBus,
		container.RuntimeState,
		container.Emitter,
		container.ErrorHandler,
		container.Metrics,
		container.Logger,
	)
	return router.Setup()
}

const sampleDeploy = `{
	"tabs": [
		{
			"name": "api",
			"nodes": [
				{
					"id": "health-api",
					"kind": "api_binding",
					"label": "Health",
					"data": {"protocol": "rest", "method": "POST", "route": "/mock/health", "process_ref": "health-fn"}
				},
				{
					"id": "health-fn",
					"kind": "process",
					"label": "Health check",
					"data": {"steps": [
						{"id": "r", "kind": "return", "config": {"status": 200, "body": {"ok": true, "source": "mock-graph"}}}
					]}
				}
			],
			"edges": [{"source": "health-api", "target": "health-fn"}]
		}
	]
}`

func deploySample(t *testing.T, handler http.Handler) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader(sampleDeploy))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestDeployAndStatus(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("status before deploy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runtime/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["deployed"])
	})

	t.Run("deploy responds with counts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader(sampleDeploy))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["deployed"])
		assert.Equal(t, float64(2), body["nodes"])
		assert.Equal(t, float64(1), body["edges"])
		assert.NotEmpty(t, body["updated_at"])
	})

	t.Run("status after deploy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runtime/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["deployed"])
		assert.Equal(t, []interface{}{"api"}, body["tabs"])
	})
}

func TestDeployRejectsBadPayloads(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader("{nope"))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "MALFORMED_GRAPH", decodeBody(t, rec)["type"])
	})

	t.Run("unknown node kind", func(t *testing.T) {
		payload := `{"tabs": [{"name": "api", "nodes": [{"id": "x", "kind": "blob"}]}]}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader(payload))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty tab list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader(`{"tabs": []}`))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPlanEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("409 before deploy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runtime/plan", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("order after deploy", func(t *testing.T) {
		deploySample(t, handler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runtime/plan", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(2), body["total_nodes"])
	})

	t.Run("422 on cyclic deploy", func(t *testing.T) {
		cyclic := `{
			"tabs": [{"name": "api", "nodes": [
				{"id": "a", "kind": "infra"},
				{"id": "b", "kind": "infra"}
			], "edges": [
				{"source": "a", "target": "b"},
				{"source": "b", "target": "a"}
			]}]
		}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runtime/deploy", strings.NewReader(cyclic))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runtime/plan", nil))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "CYCLIC_GRAPH", decodeBody(t, rec)["type"])
	})
}

func TestSimulateEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("409 before deploy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sim/mock/health", nil))
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "RUNTIME_NOT_INITIALIZED", decodeBody(t, rec)["type"])
	})

	deploySample(t, handler)

	t.Run("matched request returns the simulated response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sim/mock/health", bytes.NewReader(nil))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "mock-graph", body["source"])
	})

	t.Run("debug attaches the trace", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sim/mock/health?debug=1", nil)
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(200), body["status"])
		require.Contains(t, body, "debug")
		debug := body["debug"].(map[string]interface{})
		assert.Contains(t, debug, "api_node")
		assert.Contains(t, debug, "final_node")
		assert.Contains(t, debug, "execution_order")
	})

	t.Run("unmatched request is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sim/nothing/here", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "ROUTE_NOT_FOUND", body["error"])
		assert.Equal(t, "GET", body["method"])
		assert.Equal(t, "/nothing/here", body["path"])
	})
}

func TestStartStream(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("409 before deploy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runtime/start", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("streams the lifecycle as SSE", func(t *testing.T) {
		deploySample(t, handler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runtime/start", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		stream := rec.Body.String()
		assert.Contains(t, stream, "event: status")
		assert.Contains(t, stream, "event: order")
		assert.Contains(t, stream, "event: execute")
		assert.Contains(t, stream, "event: complete")

		// exactly one terminal event ends the stream
		assert.Equal(t, 1, strings.Count(stream, "event: complete"))
		assert.NotContains(t, stream, "event: error")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	deploySample(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "runtime_graph_deploys_total")
}
