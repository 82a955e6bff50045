package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/scenegraph"
	"github.com/meikuraledutech/scenegraph/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, withStore bool) *fiber.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var store scenegraph.Persister
	if withStore {
		s, err := sqlite.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}
	return New(scenegraph.New(), store, logger).App()
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestNodeRoutes(t *testing.T) {
	app := newApp(t, false)

	status, body := do(t, app, http.MethodPost, "/nodes", `{"name": "reader"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	var node map[string]any
	require.NoError(t, json.Unmarshal(body, &node))
	assert.Equal(t, "reader", node["name"])
	assert.Equal(t, "default", node["node_type"])
	id := node["UUID"].(string)

	status, body = do(t, app, http.MethodPost, "/nodes", `{"name": "reader"}`)
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, json.Unmarshal(body, &node))
	assert.Equal(t, "reader1", node["name"])

	status, _ = do(t, app, http.MethodGet, "/nodes/"+id, "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodPatch, "/nodes/reader", `{"name": "plate", "pos": [10, 20]}`)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &node))
	assert.Equal(t, "plate", node["name"])
	assert.Equal(t, []any{10.0, 20.0}, node["pos"])

	status, _ = do(t, app, http.MethodPatch, "/nodes/plate", `{"name": "reader1"}`)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = do(t, app, http.MethodPatch, "/nodes/plate", `{"UUID": "other"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = do(t, app, http.MethodPatch, "/nodes/ghost", `{}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodGet, "/nodes", "")
	require.Equal(t, http.StatusOK, status)
	var nodes []map[string]any
	require.NoError(t, json.Unmarshal(body, &nodes))
	assert.Len(t, nodes, 2)

	status, _ = do(t, app, http.MethodDelete, "/nodes/plate", "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, app, http.MethodDelete, "/nodes/plate", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodGet, "/nodes/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEdgeRoutes(t *testing.T) {
	app := newApp(t, false)
	do(t, app, http.MethodPost, "/nodes", `{"name": "a"}`)
	do(t, app, http.MethodPost, "/nodes", `{"name": "b"}`)

	status, body := do(t, app, http.MethodPost, "/edges", `{"src": "a.output", "dest": "b.input", "id": "e1"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	var edge map[string]any
	require.NoError(t, json.Unmarshal(body, &edge))
	assert.Equal(t, "e1", edge["id"])

	status, _ = do(t, app, http.MethodPost, "/edges", `{"src": "a.output", "dest": "ghost.input"}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodPost, "/edges", `{"src": "a.output", "dest": "b.nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = do(t, app, http.MethodPost, "/edges", `{"src": "a", "dest": "b.input"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, app, http.MethodGet, "/edges/e1", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodGet, "/edges", "")
	require.Equal(t, http.StatusOK, status)
	var edges []map[string]any
	require.NoError(t, json.Unmarshal(body, &edges))
	assert.Len(t, edges, 1)

	status, _ = do(t, app, http.MethodDelete, "/edges/e1", "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, app, http.MethodDelete, "/edges/e1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGraphRoutes(t *testing.T) {
	app := newApp(t, false)
	do(t, app, http.MethodPost, "/nodes", `{"name": "a"}`)
	do(t, app, http.MethodPost, "/nodes", `{"name": "b"}`)
	do(t, app, http.MethodPost, "/edges", `{"src": "a.output", "dest": "b.input"}`)

	status, doc := do(t, app, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, app, http.MethodGet, "/graph/evaluate", "")
	require.Equal(t, http.StatusOK, status)
	var snaps []map[string]any
	require.NoError(t, json.Unmarshal(body, &snaps))
	assert.Len(t, snaps, 3)

	status, _ = do(t, app, http.MethodDelete, "/graph", "")
	assert.Equal(t, http.StatusNoContent, status)
	_, body = do(t, app, http.MethodGet, "/nodes", "")
	assert.JSONEq(t, `[]`, string(body))

	status, _ = do(t, app, http.MethodPut, "/graph", `{"graph": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, app, http.MethodPut, "/graph", string(doc))
	require.Equal(t, http.StatusNoContent, status)
	_, body = do(t, app, http.MethodGet, "/graph", "")
	assert.Equal(t, string(doc), string(body))
}

func TestSceneRoutes(t *testing.T) {
	app := newApp(t, true)

	status, _ := do(t, app, http.MethodPost, "/schema", "")
	require.Equal(t, http.StatusOK, status)

	do(t, app, http.MethodPost, "/nodes", `{"name": "a"}`)
	status, _ = do(t, app, http.MethodPost, "/scenes/shot", "")
	require.Equal(t, http.StatusCreated, status)

	_, body := do(t, app, http.MethodGet, "/scenes", "")
	assert.JSONEq(t, `["shot"]`, string(body))

	do(t, app, http.MethodDelete, "/graph", "")
	status, _ = do(t, app, http.MethodPost, "/scenes/shot/load", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, app, http.MethodGet, "/nodes/a", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/scenes/missing/load", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodDelete, "/scenes/shot", "")
	assert.Equal(t, http.StatusNoContent, status)
	_, body = do(t, app, http.MethodGet, "/scenes", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestSceneRoutesWithoutStore(t *testing.T) {
	app := newApp(t, false)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/schema"},
		{http.MethodGet, "/scenes"},
		{http.MethodPost, "/scenes/x"},
		{http.MethodPost, "/scenes/x/load"},
	} {
		status, _ := do(t, app, route.method, route.path, "")
		assert.Equal(t, http.StatusNotImplemented, status, route.path)
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, statusOf(scenegraph.ErrNameCollision))
	assert.Equal(t, http.StatusNotFound, statusOf(scenegraph.ErrSceneNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(scenegraph.ErrMalformedDocument))
	assert.Equal(t, http.StatusInternalServerError, statusOf(io.ErrUnexpectedEOF))
}
