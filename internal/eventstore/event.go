package eventstore

import "time"

// Event types written by the build pipeline.
const (
	TypeBuildStarted    = "build_started"
	TypeWarningReported = "warning_reported"
	TypeBuildCompleted  = "build_completed"
	TypeBuildFailed     = "build_failed"
)

// Event is one stored row of the build log.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
}
