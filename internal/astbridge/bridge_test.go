package astbridge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// fakeMatcher writes a shell script standing in for the ast-grep binary: it
// ignores its arguments and always emits the given JSON payload, letting the
// Bridge's plumbing (argument shape, decode, sort, filter) be exercised
// without the real matcher installed.
func fakeMatcher(t *testing.T, stdout string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ast-grep-fake.sh")
	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\n", stdout)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o644))
	return path
}

func TestBridgeFileSymbolsFiltersAllIdentifiers(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	payload := `[
		{"text":"foo","file":"a.py","language":"Python","ruleId":"function",
		 "range":{"start":{"line":2,"column":0},"end":{"line":2,"column":10}},
		 "metaVariables":{"single":{"NAME":{"text":"foo","range":{"start":{"line":2,"column":4},"end":{"line":2,"column":7}}}}}},
		{"text":"bar","file":"a.py","language":"Python","ruleId":"all-identifiers",
		 "range":{"start":{"line":0,"column":0},"end":{"line":0,"column":3}},
		 "metaVariables":{"single":{"NAME":{"text":"bar","range":{"start":{"line":0,"column":0},"end":{"line":0,"column":3}}}}}}
	]`

	symbolCfg := writeConfig(t)
	b := New(Config{
		SymbolConfigPath: symbolCfg,
		Binary:           fakeMatcher(t, payload),
	})

	symbols, err := b.FileSymbols(context.Background(), "a.py")
	require.NoError(err)
	require.Len(symbols, 1)
	require.Equal("function", symbols[0].RuleID)
}

func TestBridgeSymbolFromPosition(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	payload := `[
		{"text":"def foo():","file":"a.py","language":"Python","ruleId":"function",
		 "range":{"start":{"line":2,"column":0},"end":{"line":2,"column":10}},
		 "metaVariables":{"single":{"NAME":{"text":"foo","range":{"start":{"line":2,"column":4},"end":{"line":2,"column":7}}}}}}
	]`

	b := New(Config{SymbolConfigPath: writeConfig(t), Binary: fakeMatcher(t, payload)})

	match, ok, err := b.SymbolFromPosition(context.Background(), "a.py", model.Position{Line: 2, Character: 4})
	require.NoError(err)
	require.True(ok)
	require.Equal("foo", match.MetaVariables.Single.Name.Text)

	_, ok, err = b.SymbolFromPosition(context.Background(), "a.py", model.Position{Line: 9, Character: 0})
	require.NoError(err)
	require.False(ok)
}

func TestBridgeFileIdentifiersKeepsOnlyAllIdentifiers(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	payload := `[
		{"text":"foo","file":"a.py","language":"Python","ruleId":"all-identifiers",
		 "range":{"start":{"line":0,"column":0},"end":{"line":0,"column":3}},
		 "metaVariables":{"single":{"NAME":{"text":"foo","range":{"start":{"line":0,"column":0},"end":{"line":0,"column":3}}}}}},
		{"text":"def bar():","file":"a.py","language":"Python","ruleId":"function",
		 "range":{"start":{"line":2,"column":0},"end":{"line":2,"column":10}},
		 "metaVariables":{"single":{"NAME":{"text":"bar","range":{"start":{"line":2,"column":4},"end":{"line":2,"column":7}}}}}}
	]`

	b := New(Config{IdentifierConfigPath: writeConfig(t), Binary: fakeMatcher(t, payload)})

	identifiers, err := b.FileIdentifiers(context.Background(), "a.py")
	require.NoError(err)
	require.Len(identifiers, 1)
	require.Equal("foo", identifiers[0].Text)
}

func TestBridgeReferenceConfigSelection(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	b := New(Config{
		ReferenceConfigPath:     "strict.yml",
		FullReferenceConfigPath: "full.yml",
	})
	require.Equal("strict.yml", b.referenceConfig(false))
	require.Equal("full.yml", b.referenceConfig(true))

	// No full-scan file configured: both scans use the strict rules.
	b = New(Config{ReferenceConfigPath: "strict.yml"})
	require.Equal("strict.yml", b.referenceConfig(true))
}

func TestBridgeDefaultsBinaryName(t *testing.T) {
	t.Parallel()
	b := New(Config{})
	require.Equal(t, "ast-grep", b.cfg.Binary)
}

func TestConfigValidateRejectsMalformedYAML(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(os.WriteFile(bad, []byte("rules: [this is not: valid: yaml"), 0o644))

	cfg := Config{SymbolConfigPath: bad, IdentifierConfigPath: bad, ReferenceConfigPath: bad}
	require.Error(cfg.Validate())
}

func TestConfigValidateAcceptsWellFormedYAML(t *testing.T) {
	t.Parallel()
	good := writeConfig(t)
	cfg := Config{SymbolConfigPath: good, IdentifierConfigPath: good, ReferenceConfigPath: good}
	require.NoError(t, cfg.Validate())
}
