// Package queue serializes site rebuilds requested by the preview server.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/metrics"
)

// Runner executes one rebuild. trigger names its source (watch, schedule, startup).
type Runner func(ctx context.Context, trigger string) error

// Status describes the most recent rebuild.
type Status struct {
	Trigger     string        `json:"trigger"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// RebuildQueue runs rebuilds on a single worker. While a rebuild is running
// at most one further request is kept; later requests coalesce into it.
type RebuildQueue struct {
	run      Runner
	pending  chan string
	recorder metrics.Recorder
	now      func() time.Time

	mu      sync.RWMutex
	running bool
	runs    int
	last    *Status

	wg sync.WaitGroup
}

// NewRebuildQueue creates a queue executing run.
func NewRebuildQueue(run Runner) *RebuildQueue {
	if run == nil {
		panic("NewRebuildQueue: runner is required")
	}
	return &RebuildQueue{
		run:      run,
		pending:  make(chan string, 1),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// SetRecorder injects a metrics recorder for trigger counts.
func (q *RebuildQueue) SetRecorder(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	q.recorder = r
}

// Enqueue requests a rebuild. It returns false when the request was merged
// into one that is already pending.
func (q *RebuildQueue) Enqueue(trigger string) bool {
	select {
	case q.pending <- trigger:
		q.recorder.IncRebuildTrigger(trigger)
		return true
	default:
		slog.Debug("Rebuild already pending", "trigger", trigger)
		return false
	}
}

// Start launches the worker. It stops when ctx is canceled.
func (q *RebuildQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go q.worker(ctx)
}

// Wait blocks until the worker has stopped.
func (q *RebuildQueue) Wait() {
	q.wg.Wait()
}

// Running reports whether a rebuild is in progress.
func (q *RebuildQueue) Running() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.running
}

// Runs returns the number of finished rebuilds.
func (q *RebuildQueue) Runs() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.runs
}

// Last returns a copy of the most recent rebuild status, if any.
func (q *RebuildQueue) Last() (Status, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.last == nil {
		return Status{}, false
	}
	return *q.last, true
}

func (q *RebuildQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-q.pending:
			q.process(ctx, trigger)
		}
	}
}

func (q *RebuildQueue) process(ctx context.Context, trigger string) {
	start := q.now()
	q.mu.Lock()
	q.running = true
	q.mu.Unlock()

	err := q.run(ctx, trigger)

	end := q.now()
	status := &Status{
		Trigger:     trigger,
		StartedAt:   start,
		CompletedAt: end,
		Duration:    end.Sub(start),
	}
	if err != nil {
		status.Error = err.Error()
	}

	q.mu.Lock()
	q.running = false
	q.runs++
	q.last = status
	q.mu.Unlock()
}
