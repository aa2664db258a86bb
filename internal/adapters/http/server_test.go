package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	adapter "github.com/aretw0/flume/internal/adapters/http"
	"github.com/aretw0/flume/pkg/adapters/memory"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := adapter.NewHandler(session.NewManager(memory.NewStore()))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var payload map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp, payload
}

func TestGetDiagramStartsFromSample(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := do(t, http.MethodGet, srv.URL+"/diagrams/budget", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := payload["state"].(map[string]any)
	assert.Equal(t, domain.SampleText, state["dsl_text"])
	assert.Equal(t, false, payload["can_undo"])
}

func TestPutTextThenUndo(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "Income [50] Savings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["can_undo"])

	resp, payload = do(t, http.MethodPost, srv.URL+"/diagrams/d/undo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := payload["state"].(map[string]any)
	assert.Equal(t, domain.SampleText, state["dsl_text"])
	assert.Equal(t, true, payload["can_redo"])
}

func TestPutTextReportsDiagnostics(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "Income [oops] Savings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, payload["diagnostics"])
}

func TestPostCommand(t *testing.T) {
	srv := newTestServer(t)

	body := `{"command":"update_node","params":{"id":"revenue","name":"Sales"}}`
	resp, payload := do(t, http.MethodPost, srv.URL+"/diagrams/d/commands", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := payload["state"].(map[string]any)
	assert.Contains(t, state["dsl_text"], "Sales [400]")
}

func TestPostCommandUnknownNode(t *testing.T) {
	srv := newTestServer(t)

	body := `{"command":"delete_node","params":{"id":"nope"}}`
	resp, payload := do(t, http.MethodPost, srv.URL+"/diagrams/d/commands", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, payload["error"], "unknown node")
}

func TestPostCommandRejectsUnknownName(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := do(t, http.MethodPost, srv.URL+"/diagrams/d/commands", `{"command":"frobnicate"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, payload["error"], "unknown command")
}

func TestGetBalance(t *testing.T) {
	srv := newTestServer(t)

	_, _ = do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "A [10] B\nB [7] C")
	resp, payload := do(t, http.MethodGet, srv.URL+"/diagrams/d/balance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, false, payload["balanced"])
	imbalanced := payload["imbalanced"].([]any)
	require.Len(t, imbalanced, 1)
	assert.Equal(t, "b", imbalanced[0].(map[string]any)["node_id"])
}

func TestGetRowsCSV(t *testing.T) {
	srv := newTestServer(t)

	_, _ = do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "Wages [900] Rent")
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/diagrams/d/rows?format=csv", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
}

func TestPostChanges(t *testing.T) {
	srv := newTestServer(t)

	_, _ = do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "Revenue [400] Costs")
	body := `{"flows":[{"source":"Revenue","target":"Costs","value":"450"}]}`
	resp, payload := do(t, http.MethodPost, srv.URL+"/diagrams/d/changes", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := payload["state"].(map[string]any)
	assert.Contains(t, state["dsl_text"], "[450]")
}

func TestDeleteDiagram(t *testing.T) {
	srv := newTestServer(t)

	_, _ = do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "A [1] B")
	resp, _ := do(t, http.MethodDelete, srv.URL+"/diagrams/d", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, payload := do(t, http.MethodGet, srv.URL+"/diagrams/d", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := payload["state"].(map[string]any)
	assert.Equal(t, domain.SampleText, state["dsl_text"])
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostResetErasesStorage(t *testing.T) {
	store := memory.NewStore()
	handler := adapter.NewHandler(session.NewManager(store))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	_, _ = do(t, http.MethodPut, srv.URL+"/diagrams/d/text", "A [1] B")
	require.NoError(t, store.SaveAux(ctx, "d", "recent_colors", []byte(`["#ffffff"]`)))

	resp, payload := do(t, http.MethodPost, srv.URL+"/diagrams/d/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := payload["state"].(map[string]any)
	assert.Equal(t, domain.SampleText, state["dsl_text"])
	assert.Equal(t, false, payload["can_undo"])

	_, err := store.Load(ctx, "d")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	_, err = store.LoadAux(ctx, "d", "recent_colors")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// The next access starts over from the sample.
	resp, payload = do(t, http.MethodGet, srv.URL+"/diagrams/d", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SampleText, payload["state"].(map[string]any)["dsl_text"])
}
