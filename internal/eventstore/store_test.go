package eventstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// steppedClock returns a clock that advances one second per call.
func steppedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestSQLiteStore_AppendAndGetByBuildID(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "b1", TypeBuildStarted, []byte(`{"trigger":"cli"}`)))
	require.NoError(t, store.Append(ctx, "b2", TypeBuildStarted, nil))
	require.NoError(t, store.Append(ctx, "b1", TypeBuildCompleted, []byte(`{"outcome":"success"}`)))

	events, err := store.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, TypeBuildStarted, events[0].Type)
	require.Equal(t, TypeBuildCompleted, events[1].Type)
	require.JSONEq(t, `{"outcome":"success"}`, string(events[1].Payload))

	other, err := store.GetByBuildID(ctx, "b2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, "{}", string(other[0].Payload))
}

func TestSQLiteStore_GetRange(t *testing.T) {
	store := newTestStore(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = steppedClock(start)
	ctx := t.Context()

	for range 3 {
		require.NoError(t, store.Append(ctx, "b1", TypeWarningReported, nil))
	}

	events, err := store.GetRange(ctx, start.Add(2*time.Second), start.Add(3*time.Second))
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, start.Add(2*time.Second).UnixMilli(), events[0].Timestamp.UnixMilli())
}

func TestSQLiteStore_RecentBuilds(t *testing.T) {
	store := newTestStore(t)
	store.now = steppedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := t.Context()

	ok := NewRecorder(store, "build-ok")
	require.NoError(t, ok.BuildStarted(ctx, BuildStarted{Trigger: "cli", BaseURL: "/"}))
	require.NoError(t, ok.WarningReported(ctx, WarningReported{Category: "links", Rule: "broken-anchor", Message: "missing #x"}))
	require.NoError(t, ok.BuildCompleted(ctx, BuildCompleted{Outcome: "warning", Pages: 12, Warnings: 1}))

	bad := NewRecorder(store, "build-bad")
	require.NoError(t, bad.BuildStarted(ctx, BuildStarted{Trigger: "watch"}))
	require.NoError(t, bad.BuildFailed(ctx, BuildFailed{Outcome: "failed", Stage: "verify", Error: "found 2 broken link(s)"}))

	running := NewRecorder(store, "build-running")
	require.NoError(t, running.BuildStarted(ctx, BuildStarted{Trigger: "schedule"}))

	builds, err := store.RecentBuilds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, builds, 2)

	require.Equal(t, "build-running", builds[0].BuildID)
	require.Equal(t, StatusRunning, builds[0].Status)
	require.Nil(t, builds[0].CompletedAt)

	require.Equal(t, "build-bad", builds[1].BuildID)
	require.Equal(t, StatusFailed, builds[1].Status)
	require.Equal(t, "verify", builds[1].ErrorStage)
	require.Equal(t, time.Second, builds[1].Duration)

	all, err := store.RecentBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "build-ok", all[2].BuildID)
	require.Equal(t, StatusCompleted, all[2].Status)
	require.Equal(t, "warning", all[2].Outcome)
	require.Equal(t, 12, all[2].Pages)
	require.Equal(t, 1, all[2].Warnings)
	require.Equal(t, "cli", all[2].Trigger)

	none, err := store.RecentBuilds(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, NewRecorder(store, "b1").BuildStarted(ctx, BuildStarted{Trigger: "cli"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	builds, err := reopened.RecentBuilds(ctx, 5)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	require.Equal(t, "b1", builds[0].BuildID)
}

func TestSQLiteStore_ClosedStoreErrors(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), "b1", TypeBuildStarted, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEventAppendFailed))
}

func TestSummarize_CountsWarningEvents(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{BuildID: "b", Type: TypeBuildStarted, Timestamp: at, Payload: []byte(`{}`)},
		{BuildID: "b", Type: TypeWarningReported, Timestamp: at, Payload: []byte(`{}`)},
		{BuildID: "b", Type: TypeWarningReported, Timestamp: at, Payload: []byte(`{}`)},
	}
	got := Summarize(events)
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].Warnings)
	require.Equal(t, StatusRunning, got[0].Status)
}
