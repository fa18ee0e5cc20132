package languages

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

func TestAllCoversEveryLanguageKind(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	all := All()
	require.Len(all, len(model.AllLanguages))

	seen := make(map[model.LanguageKind]bool)
	for _, l := range all {
		seen[l.Kind()] = true
	}
	for _, kind := range model.AllLanguages {
		require.True(seen[kind], "missing language %s", kind)
	}
}

func TestRootURIIsFirstFolderOnlyForQuirkyLanguages(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	want := map[model.LanguageKind]bool{
		model.CSharp: true,
		model.PHP:    true,
		model.Ruby:   true,
	}
	for _, l := range All() {
		require.Equal(want[l.Kind()], l.RootURIIsFirstFolder(), "language %s", l.Kind())
	}
}

func TestEveryLanguageHasACommand(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	for _, l := range All() {
		cmd, _ := l.Command()
		require.NotEmpty(cmd, "language %s has no command", l.Kind())
	}
}
