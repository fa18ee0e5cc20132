package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/astbridge"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

type stubDefinitionLookup struct{}

func (stubDefinitionLookup) Definition(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error) {
	return nil, nil
}

func TestResolveFileRejectsUnsupportedLanguage(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	r := New(astbridge.New(astbridge.Config{}), stubDefinitionLookup{})
	_, err := r.ResolveFile(context.Background(), model.Go, "main.go", model.Position{}, false)
	require.ErrorIs(err, ErrNotImplemented)
}

func TestSortAndMergeLocationsOrdersByPathThenPosition(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	in := []model.FileRange{
		{Path: "b.py", Range: model.Range{Start: model.Position{Line: 1, Character: 0}}},
		{Path: "a.py", Range: model.Range{Start: model.Position{Line: 5, Character: 0}}},
		{Path: "a.py", Range: model.Range{Start: model.Position{Line: 1, Character: 0}}},
	}
	out := sortAndMergeLocations(in)

	require.Equal("a.py", out[0].Path)
	require.Equal(1, out[0].Range.Start.Line)
	require.Equal("a.py", out[1].Path)
	require.Equal(5, out[1].Range.Start.Line)
	require.Equal("b.py", out[2].Path)
}

func TestMaxDepthIsTen(t *testing.T) {
	t.Parallel()
	require.Equal(t, 10, MaxDepth)
}
