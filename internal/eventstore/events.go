package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// BuildStarted is the payload of a build_started event.
type BuildStarted struct {
	Version string `json:"version,omitempty"`
	SiteURL string `json:"site_url"`
	BaseURL string `json:"base_url"`
	// Trigger names what started the build: "cli", "watch" or "schedule".
	Trigger string `json:"trigger"`
}

// WarningReported is the payload of a warning_reported event.
type WarningReported struct {
	Category string `json:"category"`
	Rule     string `json:"rule"`
	Source   string `json:"source,omitempty"`
	Target   string `json:"target,omitempty"`
	Message  string `json:"message"`
}

// BuildCompleted is the payload of a build_completed event.
type BuildCompleted struct {
	Outcome       string `json:"outcome"`
	DurationMS    int64  `json:"duration_ms"`
	Pages         int    `json:"pages"`
	Docs          int    `json:"docs"`
	Posts         int    `json:"posts"`
	Warnings      int    `json:"warnings"`
	BrokenLinks   int    `json:"broken_links"`
	BrokenAnchors int    `json:"broken_anchors"`
}

// BuildFailed is the payload of a build_failed event.
type BuildFailed struct {
	Outcome    string `json:"outcome"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

// Recorder appends typed build events to a Store.
type Recorder struct {
	store   Store
	buildID string
}

// NewRecorder scopes event writes to one build.
func NewRecorder(store Store, buildID string) *Recorder {
	return &Recorder{store: store, buildID: buildID}
}

// BuildStarted records the start of the build.
func (r *Recorder) BuildStarted(ctx context.Context, p BuildStarted) error {
	return r.append(ctx, TypeBuildStarted, p)
}

// WarningReported records one non-fatal finding.
func (r *Recorder) WarningReported(ctx context.Context, p WarningReported) error {
	return r.append(ctx, TypeWarningReported, p)
}

// BuildCompleted records a finished build.
func (r *Recorder) BuildCompleted(ctx context.Context, p BuildCompleted) error {
	return r.append(ctx, TypeBuildCompleted, p)
}

// BuildFailed records a build that stopped at stage.
func (r *Recorder) BuildFailed(ctx context.Context, p BuildFailed) error {
	return r.append(ctx, TypeBuildFailed, p)
}

func (r *Recorder) append(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMarshalPayloadFailed, eventType, err)
	}
	return r.store.Append(ctx, r.buildID, eventType, data)
}
