package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/job"
	"github.com/sells-group/prospector/internal/store"
)

// newTestEnv builds an env on a throwaway SQLite store. The job service has
// no providers wired, which is fine for the HTTP layer: it only creates and
// reads jobs, execution belongs to the worker.
func newTestEnv(t *testing.T) *env {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	return &env{
		Store:   st,
		Service: job.NewService(st, nil, nil, nil, 10),
	}
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	router := buildRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_CreateAndGetJob(t *testing.T) {
	router := buildRouter(newTestEnv(t))

	rr := postJSON(t, router, "/jobs", map[string]any{
		"user_id":     "user-1",
		"query":       "plumbing companies in Ohio",
		"search_type": "companies",
	})
	require.Equal(t, http.StatusAccepted, rr.Code)

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pending", created.Status)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+created.ID+"?user_id=user-1", nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, req)
	assert.Equal(t, http.StatusOK, got.Code)

	// Another user must not see the job.
	req = httptest.NewRequest(http.MethodGet, "/jobs/"+created.ID+"?user_id=user-2", nil)
	denied := httptest.NewRecorder()
	router.ServeHTTP(denied, req)
	assert.Equal(t, http.StatusNotFound, denied.Code)
}

func TestRouter_CreateJob_Invalid(t *testing.T) {
	router := buildRouter(newTestEnv(t))

	rr := postJSON(t, router, "/jobs", map[string]any{
		"user_id":     "user-1",
		"search_type": "teleportation",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_ListJobs_RequiresUser(t *testing.T) {
	router := buildRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "user_id is required")
}

func TestRouter_ListJobs(t *testing.T) {
	env := newTestEnv(t)
	router := buildRouter(env)

	for _, q := range []string{"hvac", "roofing"} {
		rr := postJSON(t, router, "/jobs", map[string]any{
			"user_id":     "user-1",
			"query":       q,
			"search_type": "companies",
		})
		require.Equal(t, http.StatusAccepted, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/jobs?user_id=user-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Jobs []struct {
			ID string `json:"id"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Jobs, 2)
}

func TestRunServer_DrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- runServer(ctx, srv, ln) }()

	respCode := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			respCode <- 0
			return
		}
		defer resp.Body.Close()
		respCode <- resp.StatusCode
	}()

	// Cancel while the request is still in the handler; the drain must let
	// it finish instead of aborting it.
	<-started
	cancel()

	select {
	case code := <-respCode:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete")
	}

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRouter_CancelJob(t *testing.T) {
	router := buildRouter(newTestEnv(t))

	rr := postJSON(t, router, "/jobs", map[string]any{
		"user_id":     "user-1",
		"query":       "hvac",
		"search_type": "companies",
	})
	require.Equal(t, http.StatusAccepted, rr.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodPost, "/jobs/"+created.ID+"/cancel?user_id=user-1", nil)
	cancelled := httptest.NewRecorder()
	router.ServeHTTP(cancelled, req)
	assert.Equal(t, http.StatusOK, cancelled.Code)

	// Cancelling again conflicts: the job is no longer pending.
	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodPost, "/jobs/"+created.ID+"/cancel?user_id=user-1", nil))
	assert.Equal(t, http.StatusConflict, again.Code)
}
