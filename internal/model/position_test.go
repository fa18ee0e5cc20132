package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionCompare(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Equal(-1, Position{Line: 1, Character: 0}.Compare(Position{Line: 2, Character: 0}))
	require.Equal(1, Position{Line: 2, Character: 0}.Compare(Position{Line: 1, Character: 5}))
	require.Equal(-1, Position{Line: 3, Character: 1}.Compare(Position{Line: 3, Character: 2}))
	require.Equal(1, Position{Line: 3, Character: 2}.Compare(Position{Line: 3, Character: 1}))
	require.Equal(0, Position{Line: 3, Character: 2}.Compare(Position{Line: 3, Character: 2}))
}

func TestPositionString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "4:7", Position{Line: 4, Character: 7}.String())
}

func TestRangeContains(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	r := Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 3, Character: 4}}

	require.True(r.Contains(Position{Line: 1, Character: 2}))
	require.True(r.Contains(Position{Line: 3, Character: 4}))
	require.True(r.Contains(Position{Line: 2, Character: 0}))
	require.False(r.Contains(Position{Line: 1, Character: 1}))
	require.False(r.Contains(Position{Line: 3, Character: 5}))
	require.False(r.Contains(Position{Line: 0, Character: 9}))
}

func TestRangeContainsZeroWidth(t *testing.T) {
	t.Parallel()
	r := Range{Start: Position{Line: 2, Character: 5}, End: Position{Line: 2, Character: 5}}
	require.True(t, r.Contains(Position{Line: 2, Character: 5}))
}

func TestFileRangeContains(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fr := FileRange{
		Path: "a/b.py",
		Range: Range{
			Start: Position{Line: 0, Character: 0},
			End:   Position{Line: 5, Character: 0},
		},
	}

	require.True(fr.Contains(FilePosition{Path: "a/b.py", Position: Position{Line: 2, Character: 1}}))
	require.False(fr.Contains(FilePosition{Path: "a/c.py", Position: Position{Line: 2, Character: 1}}))
	require.False(fr.Contains(FilePosition{Path: "a/b.py", Position: Position{Line: 9, Character: 0}}))
}
