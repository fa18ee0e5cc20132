package lspclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHierOrFlatDecodesHierarchical(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	raw := `{"name":"Foo","kind":12,"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}},"selectionRange":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}`
	var h hierOrFlat
	require.NoError(json.Unmarshal([]byte(raw), &h))
	require.True(h.isHier)
	require.Equal("Foo", h.hier.Name)
}

func TestHierOrFlatDecodesFlat(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	raw := `{"name":"Bar","kind":12,"location":{"uri":"file:///a.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}}`
	var h hierOrFlat
	require.NoError(json.Unmarshal([]byte(raw), &h))
	require.False(h.isHier)
	require.Equal("Bar", h.flat.Name)
}

func TestPathToURIAndBackRoundTrips(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	uri := pathToURI("/tmp/proj/a.go")
	require.Equal("/tmp/proj/a.go", uriToPath(uri))
}
