package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/internal/testutils"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/session"
	"github.com/espalier-dev/espalier/pkg/sim"
)

func testFlow() domain.Flow {
	return domain.Flow{
		Name: "greeter",
		Nodes: []domain.Node{
			{ID: "start-1", Type: domain.NodeTypeStart},
			{ID: "input-1", Type: domain.NodeTypeTextInput, Data: map[string]any{
				"message":      "What is your name?",
				"variableName": "name",
			}},
		},
		Edges: []domain.Edge{
			{Source: "start-1", Target: "input-1"},
		},
	}
}

func newTestServer(t *testing.T) (http.Handler, *testutils.ManualScheduler) {
	t.Helper()
	sched := testutils.NewManualScheduler()
	mgr := session.NewManager(memory.NewSource(testFlow()),
		session.WithSimulatorOptions(sim.WithScheduler(sched), sim.WithDelayScale(0)),
	)
	return NewHandler(mgr, WithVersion("test")), sched
}

func do(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	assert.NotNil(t, doc.Paths.Find("/sessions/{id}/input"))
}

func TestHealthAndInfo(t *testing.T) {
	handler, _ := newTestServer(t)

	w := do(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, handler, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "espalier-http", info["app"])
	assert.Equal(t, "test", info["version"])
	assert.NotEqual(t, "unknown", info["api_version"])
}

func TestSessionLifecycle(t *testing.T) {
	handler, sched := newTestServer(t)

	w := do(t, handler, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]string](t, w)["id"]
	require.NotEmpty(t, id)

	w = do(t, handler, http.MethodPost, "/sessions/"+id+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[domain.Snapshot](t, w)
	assert.Equal(t, domain.StatusRunning, snap.Status)

	sched.Run()

	w = do(t, handler, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[domain.Snapshot](t, w)
	require.Equal(t, domain.StatusWaitingForInput, snap.Status)

	w = do(t, handler, http.MethodPost, "/sessions/"+id+"/input", map[string]string{"text": "Ada"})
	require.Equal(t, http.StatusOK, w.Code)

	sched.Run()

	w = do(t, handler, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[domain.Snapshot](t, w)
	assert.Equal(t, domain.StatusCompleted, snap.Status)
	assert.Equal(t, "Ada", snap.Variables["name"])

	w = do(t, handler, http.MethodPost, "/sessions/"+id+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[domain.Snapshot](t, w)
	assert.Equal(t, domain.StatusIdle, snap.Status)
}

func TestInputWhileIdleConflicts(t *testing.T) {
	handler, _ := newTestServer(t)

	w := do(t, handler, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]string](t, w)["id"]

	w = do(t, handler, http.MethodPost, "/sessions/"+id+"/input", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	handler, _ := newTestServer(t)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/sessions/ghost"},
		{http.MethodPost, "/sessions/ghost/start"},
		{http.MethodPost, "/sessions/ghost/stop"},
		{http.MethodDelete, "/sessions/ghost"},
		{http.MethodGet, "/sessions/ghost/graph"},
	} {
		w := do(t, handler, req.method, req.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", req.method, req.path)
	}
}

func TestListAndDelete(t *testing.T) {
	handler, _ := newTestServer(t)

	w := do(t, handler, http.MethodPost, "/sessions", nil)
	id := decode[map[string]string](t, w)["id"]

	w = do(t, handler, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]string](t, w)
	assert.Contains(t, list["sessions"], id)

	w = do(t, handler, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, handler, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionGraph(t *testing.T) {
	handler, sched := newTestServer(t)

	w := do(t, handler, http.MethodPost, "/sessions", nil)
	id := decode[map[string]string](t, w)["id"]

	do(t, handler, http.MethodPost, "/sessions/"+id+"/start", nil)
	sched.Run()

	w = do(t, handler, http.MethodGet, "/sessions/"+id+"/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "graph TD"), "got: %s", body)
	assert.Contains(t, body, "start_1")
	assert.Contains(t, body, "class input_1 current;")
}

func TestGetFlow(t *testing.T) {
	handler, _ := newTestServer(t)

	w := do(t, handler, http.MethodGet, "/flow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	flow := decode[domain.Flow](t, w)
	assert.Equal(t, "greeter", flow.Name)
	assert.Len(t, flow.Nodes, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	do(t, handler, http.MethodPost, "/sessions", nil)

	w := do(t, handler, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "espalier_active_sessions 1")
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := newTestServer(t)

	w := do(t, handler, http.MethodOptions, "/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
