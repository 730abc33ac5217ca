package eventstore

import (
	"encoding/json"
	"sort"
	"time"
)

// Build status values derived from the event log.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BuildSummary is the read model of one build, folded from its events.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Status      string        `json:"status"`
	Outcome     string        `json:"outcome,omitempty"`
	Trigger     string        `json:"trigger,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Pages       int           `json:"pages"`
	Warnings    int           `json:"warnings"`
	BrokenLinks int           `json:"broken_links"`
	ErrorStage  string        `json:"error_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Summarize folds events into one summary per build, newest build first.
// Events must be in append order.
func Summarize(events []Event) []BuildSummary {
	builds := make(map[string]*BuildSummary)
	for _, e := range events {
		s, ok := builds[e.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: e.BuildID, Status: StatusRunning, StartedAt: e.Timestamp}
			builds[e.BuildID] = s
		}
		apply(s, e)
	}

	out := make([]BuildSummary, 0, len(builds))
	for _, s := range builds {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].BuildID > out[j].BuildID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func apply(s *BuildSummary, e Event) {
	switch e.Type {
	case TypeBuildStarted:
		s.StartedAt = e.Timestamp
		var p BuildStarted
		if json.Unmarshal(e.Payload, &p) == nil {
			s.Trigger = p.Trigger
		}

	case TypeWarningReported:
		s.Warnings++

	case TypeBuildCompleted:
		finish(s, e.Timestamp, StatusCompleted)
		var p BuildCompleted
		if json.Unmarshal(e.Payload, &p) == nil {
			s.Outcome = p.Outcome
			s.Pages = p.Pages
			s.BrokenLinks = p.BrokenLinks
			if p.Warnings > s.Warnings {
				s.Warnings = p.Warnings
			}
		}

	case TypeBuildFailed:
		finish(s, e.Timestamp, StatusFailed)
		var p BuildFailed
		if json.Unmarshal(e.Payload, &p) == nil {
			s.Outcome = p.Outcome
			s.ErrorStage = p.Stage
			s.Error = p.Error
		}
	}
}

func finish(s *BuildSummary, at time.Time, status string) {
	s.CompletedAt = &at
	s.Duration = at.Sub(s.StartedAt)
	s.Status = status
}
