package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "broken links", err: LinkError("broken link").Build(), expected: 9},
		{name: "content", err: ContentError("bad front matter").Build(), expected: 11},
		{name: "render", err: NewError(CategoryRender, "template").Build(), expected: 11},
		{name: "runtime", err: NewError(CategoryRuntime, "server").Build(), expected: 12},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: stderrors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := LinkError("broken internal link").
		WithContext("target", "/docs/missing").
		WithContext("page", "/docs/intro/").
		Build()

	quiet := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "Error: broken internal link\n  page: /docs/intro/\n  target: /docs/missing", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Equal(t, err.Error(), verbose.FormatError(err))

	require.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var stderr bytes.Buffer
	var logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(LinkError("broken internal link").Build())

	require.Equal(t, 9, code)
	require.Contains(t, stderr.String(), "broken internal link")
	require.Contains(t, logs.String(), "category=links")
}
