// Package diagnostics applies reporting policies to problems found during a
// build and keeps the warnings for the build report.
package diagnostics

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
)

// Finding is a single reportable problem.
type Finding struct {
	Category errors.ErrorCategory
	// Rule names the check, e.g. "broken-anchor" or "inline-tags".
	Rule    string
	Source  string
	Target  string
	Message string
}

func (f Finding) String() string {
	s := f.Message
	if f.Source != "" {
		s = fmt.Sprintf("%s: %s", f.Source, s)
	}
	if f.Target != "" {
		s = fmt.Sprintf("%s (%s)", s, f.Target)
	}
	return s
}

// Collector reports findings according to a policy. Safe for concurrent use.
type Collector struct {
	logger *slog.Logger

	mu       sync.Mutex
	warnings []Finding
	logged   int
}

// NewCollector returns a collector logging through logger (slog.Default when nil).
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Report handles f under policy p. Only PolicyThrow produces an error.
func (c *Collector) Report(p config.Policy, f Finding) error {
	attrs := []any{logfields.Rule(f.Rule)}
	if f.Source != "" {
		attrs = append(attrs, logfields.Source(f.Source))
	}
	if f.Target != "" {
		attrs = append(attrs, logfields.Link(f.Target))
	}

	switch p {
	case config.PolicyThrow:
		b := errors.NewError(f.Category, f.Message).WithContext("rule", f.Rule)
		if f.Source != "" {
			b = b.WithContext("source", f.Source)
		}
		if f.Target != "" {
			b = b.WithContext("target", f.Target)
		}
		return b.Build()
	case config.PolicyWarn:
		c.logger.Warn(f.Message, attrs...)
		c.mu.Lock()
		c.warnings = append(c.warnings, f)
		c.mu.Unlock()
	case config.PolicyLog:
		c.logger.Info(f.Message, attrs...)
		c.mu.Lock()
		c.logged++
		c.mu.Unlock()
	}
	return nil
}

// Warnings returns the findings reported under PolicyWarn, in order.
func (c *Collector) Warnings() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Finding, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Logged returns the number of findings reported under PolicyLog.
func (c *Collector) Logged() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logged
}
