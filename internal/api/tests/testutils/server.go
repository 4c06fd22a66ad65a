package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaredmoss/exchange-core/internal/api/handlers"
	"github.com/jaredmoss/exchange-core/internal/api/routes"
	"github.com/jaredmoss/exchange-core/internal/dispatch"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/usercache"
)

func AssertOK(t testing.TB, resp *http.Response) {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestServer wraps a test HTTP server built over the dispatch stack:
// an in-memory exchange, user cache, and buffer collection backed by
// a store that never actually drains to a database.
type TestServer struct {
	Server *httptest.Server
	D      *dispatch.Dispatcher
	t      testing.TB
}

// NewTestServer creates a new test server with a fresh dispatcher.
func NewTestServer(t testing.TB) *TestServer {
	store := newFakeAPIStore()
	ex := exchange.New(0)
	cache := usercache.New(1000)
	bc := persistence.NewBufferCollection(1000, 1000, store, ex)
	d := dispatch.New(cache, ex, bc, store)

	dh := handlers.NewDispatchHolder(d)
	handler := routes.SetupRoutes(dh)
	server := httptest.NewServer(handler)

	return &TestServer{Server: server, D: d, t: t}
}

// Close cleans up the test server.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// URL returns the base URL for the test server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server.
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with a JSON body.
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// Delete makes a DELETE request with a JSON body.
func (ts *TestServer) Delete(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "failed to marshal request body")

	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "failed to create DELETE request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "DELETE request failed")
	return resp
}

// DecodeJSON decodes a JSON response into target.
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "failed to decode JSON response: %s", string(body))
}
