package astbridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

func nameOnlyMatch(file string, ruleID string, startLine, startCol, endLine, endCol int) Match {
	return Match{
		Text:     "foo",
		File:     file,
		Language: "Python",
		RuleID:   ruleID,
		Range: astRange{
			Start: astPosition{Line: startLine, Column: startCol},
			End:   astPosition{Line: endLine, Column: endCol},
		},
		MetaVariables: metaVariables{Single: singleVariable{
			Name: metaVariable{Text: "foo", Range: astRange{
				Start: astPosition{Line: startLine, Column: startCol},
				End:   astPosition{Line: startLine, Column: startCol + 3},
			}},
		}},
	}
}

func TestMatchSourceCodeFallsBackToText(t *testing.T) {
	t.Parallel()
	m := nameOnlyMatch("a.py", "function", 0, 0, 0, 10)
	require.Equal(t, "foo", m.SourceCode())
}

func TestMatchSourceCodeUsesContext(t *testing.T) {
	t.Parallel()
	m := nameOnlyMatch("a.py", "function", 2, 4, 2, 12)
	m.MetaVariables.Single.Context = &metaVariable{
		Text:  "def foo():\n    pass",
		Range: astRange{Start: astPosition{Line: 2, Column: 0}, End: astPosition{Line: 3, Column: 8}},
	}
	require.Equal(t, "def foo():\n    pass", m.SourceCode())
	require.Equal(t, model.FileRange{
		Path:  "a.py",
		Range: model.Range{Start: model.Position{Line: 2, Character: 0}, End: model.Position{Line: 3, Character: 8}},
	}, m.ContextRange())
}

func TestMatchIsCallable(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fn := nameOnlyMatch("a.go", "function", 0, 0, 0, 0)
	fn.Language = "Go"
	require.True(fn.IsCallable())

	cls := nameOnlyMatch("a.go", "class", 0, 0, 0, 0)
	cls.Language = "Go"
	require.False(cls.IsCallable())

	unknown := nameOnlyMatch("a.cobol", "function", 0, 0, 0, 0)
	unknown.Language = "Cobol"
	require.False(unknown.IsCallable())
}

func TestMatchContains(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	outer := nameOnlyMatch("a.py", "function", 0, 0, 0, 0)
	outer.MetaVariables.Single.Context = &metaVariable{
		Range: astRange{Start: astPosition{Line: 0, Column: 0}, End: astPosition{Line: 10, Column: 0}},
	}
	inner := nameOnlyMatch("a.py", "reference", 3, 2, 3, 5)
	inner.MetaVariables.Single.Context = &metaVariable{
		Range: astRange{Start: astPosition{Line: 3, Column: 2}, End: astPosition{Line: 3, Column: 5}},
	}

	require.True(outer.Contains(inner))
	require.False(inner.Contains(outer))

	otherFile := nameOnlyMatch("b.py", "reference", 3, 2, 3, 5)
	otherFile.MetaVariables.Single.Context = &metaVariable{
		Range: astRange{Start: astPosition{Line: 3, Column: 2}, End: astPosition{Line: 3, Column: 5}},
	}
	require.False(outer.Contains(otherFile))
}
