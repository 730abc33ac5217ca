package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bryce-seefieldt/portfolio-docs/internal/build/queue"
	"github.com/bryce-seefieldt/portfolio-docs/internal/server/responses"
)

type fakeRuntime struct {
	start    time.Time
	building bool
	last     *queue.Status
	good     bool
}

func (f fakeRuntime) StartTime() time.Time { return f.start }
func (f fakeRuntime) Building() bool       { return f.building }
func (f fakeRuntime) HasGoodBuild() bool   { return f.good }
func (f fakeRuntime) LastBuild() (queue.Status, bool) {
	if f.last == nil {
		return queue.Status{}, false
	}
	return *f.last, true
}

func TestHandleHealthCheck(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		runtime fakeRuntime
		status  string
	}{
		{name: "starting", runtime: fakeRuntime{start: start}, status: "starting"},
		{name: "healthy", runtime: fakeRuntime{start: start, good: true, last: &queue.Status{Trigger: "startup"}}, status: "healthy"},
		{name: "degraded", runtime: fakeRuntime{start: start, good: true, last: &queue.Status{Trigger: "watch", Error: "broken link"}}, status: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMonitoringHandlers(tt.runtime)
			h.now = func() time.Time { return start.Add(90 * time.Second) }

			rec := httptest.NewRecorder()
			h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body responses.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.status, body.Status)
			require.InDelta(t, 90.0, body.Uptime, 0.001)
		})
	}
}

func TestHandleHealthCheck_RejectsPost(t *testing.T) {
	h := NewMonitoringHandlers(fakeRuntime{})
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteJSON_Pretty(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, writeJSON(rec, httptest.NewRequest(http.MethodGet, "/?pretty=1", nil), http.StatusOK, map[string]int{"a": 1}))
	require.Equal(t, "{\n  \"a\": 1\n}\n", rec.Body.String())
}

func TestWriteJSON_HeadOmitsBody(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, writeJSON(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil), http.StatusOK, map[string]int{"a": 1}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
