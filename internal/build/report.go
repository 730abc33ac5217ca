package build

import (
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/linkverify"
	"github.com/bryce-seefieldt/portfolio-docs/internal/metrics"
)

// Stage names, in execution order.
const (
	StageConfig   = "config"
	StageDiscover = "discover"
	StageRender   = "render"
	StageAssemble = "assemble"
	StageStatic   = "static"
	StageFeeds    = "feeds"
	StageVerify   = "verify"
	StageRecord   = "record"
)

// Build triggers recorded in the history.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
)

// Report summarizes one build.
type Report struct {
	BuildID  string
	Trigger  string
	Started  time.Time
	Duration time.Duration
	Outcome  metrics.BuildOutcomeLabel
	// FailedStage is set when the build stopped early.
	FailedStage string

	OutDir string
	Pages  int
	Docs   int
	Posts  int
	Feeds  []string

	Warnings      []string
	BrokenLinks   int
	BrokenAnchors int
	MissingAssets int
	LinksChecked  int
}

func (r *Report) addLinks(lr *linkverify.Report) {
	if lr == nil {
		return
	}
	r.BrokenLinks = len(lr.BrokenLinks)
	r.BrokenAnchors = len(lr.BrokenAnchors)
	r.MissingAssets = len(lr.BrokenAssets)
	r.LinksChecked = lr.Checked
}
