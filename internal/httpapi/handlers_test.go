package httpapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

func TestContextWindowClampsStart(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	got := contextWindow(model.Range{
		Start: model.Position{Line: 1, Character: 4},
		End:   model.Position{Line: 3, Character: 0},
	}, 5)
	require.Equal(0, got.Start.Line)
	require.Equal(8, got.End.Line)
}

func TestContextWindowNoClampNeeded(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	got := contextWindow(model.Range{
		Start: model.Position{Line: 10, Character: 0},
		End:   model.Position{Line: 12, Character: 0},
	}, 2)
	require.Equal(8, got.Start.Line)
	require.Equal(14, got.End.Line)
}

func TestFormatClosestEmpty(t *testing.T) {
	t.Parallel()
	require.Equal(t, "", formatClosest(nil))
}

func TestFormatClosestJoinsCandidates(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	closest := []model.Identifier{
		{Name: "foo", FileRange: model.FileRange{Range: model.Range{Start: model.Position{Line: 1, Character: 2}}}},
		{Name: "bar", FileRange: model.FileRange{Range: model.Range{Start: model.Position{Line: 3, Character: 4}}}},
	}
	require.Equal("foo@1:2, bar@3:4", formatClosest(closest))
}
