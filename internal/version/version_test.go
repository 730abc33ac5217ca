package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	oldV, oldC, oldT := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldT })

	Version, GitCommit, BuildTime = "v1.2.0", "unknown", "unknown"
	require.Equal(t, "portfolio-docs v1.2.0", String())

	GitCommit = "abc123"
	require.Equal(t, "portfolio-docs v1.2.0 (abc123)", String())

	BuildTime = "2025-07-04T09:30:00Z"
	require.Equal(t, "portfolio-docs v1.2.0 (abc123, 2025-07-04T09:30:00Z)", String())
}

func TestBuildInfoInitialized(t *testing.T) {
	require.NotEmpty(t, Version)
	require.NotEmpty(t, BuildTime)
	require.NotEmpty(t, GitCommit)
}
