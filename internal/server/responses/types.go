// Package responses defines JSON response types served by the preview server.
package responses

import "time"

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	// Building is true while a rebuild runs.
	Building  bool       `json:"building"`
	LastBuild *LastBuild `json:"last_build,omitempty"`
}

// LastBuild describes the most recent rebuild.
type LastBuild struct {
	Trigger     string    `json:"trigger"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}
