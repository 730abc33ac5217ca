package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	require.Equal(t, KeyBuildID, BuildID("b1").Key)
	require.Equal(t, "b1", BuildID("b1").Value.String())
	require.Equal(t, KeyStage, Stage("render").Key)
	require.InDelta(t, 12.5, DurationMS(12.5).Value.Float64(), 0.0001)
	require.Equal(t, "/docs/intro/", Page("/docs/intro/").Value.String())
}

func TestError(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
