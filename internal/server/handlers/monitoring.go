package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/build/queue"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/server/responses"
	"github.com/bryce-seefieldt/portfolio-docs/internal/version"
)

// Runtime is the preview server state the monitoring handlers report on.
type Runtime interface {
	StartTime() time.Time
	Building() bool
	LastBuild() (queue.Status, bool)
	HasGoodBuild() bool
}

// MonitoringHandlers serves health endpoints.
type MonitoringHandlers struct {
	runtime      Runtime
	errorAdapter *errors.HTTPErrorAdapter
	now          func() time.Time
}

// NewMonitoringHandlers creates the monitoring handlers.
func NewMonitoringHandlers(runtime Runtime) *MonitoringHandlers {
	return &MonitoringHandlers{
		runtime:      runtime,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
		now:          time.Now,
	}
}

// HandleHealthCheck reports liveness and the outcome of the last rebuild.
// The status is "starting" until the first good build, "degraded" when the
// last rebuild failed, and "healthy" otherwise.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	now := h.now()
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC(),
		Version:   version.Version,
		Uptime:    now.Sub(h.runtime.StartTime()).Seconds(),
		Building:  h.runtime.Building(),
	}
	if last, ok := h.runtime.LastBuild(); ok {
		health.LastBuild = &responses.LastBuild{
			Trigger:     last.Trigger,
			CompletedAt: last.CompletedAt.UTC(),
			DurationMS:  last.Duration.Milliseconds(),
			Error:       last.Error,
		}
		if last.Error != "" {
			health.Status = "degraded"
		}
	}
	if !h.runtime.HasGoodBuild() {
		health.Status = "starting"
	}

	if err := writeJSON(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
