// Package astbridge invokes an external ast-grep-compatible syntactic
// matcher as a subprocess and decodes its JSON match output into the
// gateway's domain types. The matcher itself is a black box: this package
// only knows the rule-set config files to drive it with (three, plus an
// optional looser reference set) and the shape of the JSON it emits.
package astbridge

import "github.com/codelens-dev/codelens-gateway/internal/model"

// astPosition is one (line, column) pair as the matcher reports it; "column"
// on the wire, mapped to model.Position.Character.
type astPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p astPosition) toModel() model.Position {
	return model.Position{Line: p.Line, Character: p.Column}
}

type astRange struct {
	Start astPosition `json:"start"`
	End   astPosition `json:"end"`
}

func (r astRange) toModel() model.Range {
	return model.Range{Start: r.Start.toModel(), End: r.End.toModel()}
}

type metaVariable struct {
	Text  string   `json:"text"`
	Range astRange `json:"range"`
}

type singleVariable struct {
	Name    metaVariable  `json:"NAME"`
	Context *metaVariable `json:"CONTEXT"`
}

type metaVariables struct {
	Single singleVariable `json:"single"`
}

// Match is one syntactic match reported by the external matcher for a
// single file, shaped after the config file (rule_id) that produced it.
type Match struct {
	Text          string        `json:"text"`
	Range         astRange      `json:"range"`
	File          string        `json:"file"`
	Language      string        `json:"language"`
	MetaVariables metaVariables `json:"metaVariables"`
	RuleID        string        `json:"ruleId"`
}

// SourceCode returns the match's enclosing declaration text if the rule
// captured a CONTEXT meta-variable (symbol/reference rules do), else the
// bare matched text (identifier rules).
func (m Match) SourceCode() string {
	if m.MetaVariables.Single.Context != nil {
		return m.MetaVariables.Single.Context.Text
	}
	return m.Text
}

// ContextRange is the enclosing declaration's range if a CONTEXT
// meta-variable was captured, else the match's own range.
func (m Match) ContextRange() model.FileRange {
	if m.MetaVariables.Single.Context != nil {
		return model.FileRange{Path: m.File, Range: m.MetaVariables.Single.Context.Range.toModel()}
	}
	return model.FileRange{Path: m.File, Range: m.Range.toModel()}
}

// RangeModel converts the match's own range (not its enclosing context) to
// model.Range, for callers that want the bare match span.
func (m Match) RangeModel() model.Range {
	return m.Range.toModel()
}

// IdentifierRange is the precise name-token range captured by the NAME
// meta-variable.
func (m Match) IdentifierRange() model.FileRange {
	return model.FileRange{Path: m.File, Range: m.MetaVariables.Single.Name.Range.toModel()}
}

// IsCallable reports whether this match's rule counts as a callable
// definition for its language, per the closed per-language table.
func (m Match) IsCallable() bool {
	lang, ok := languageFromMatcherName(m.Language)
	if !ok {
		return false
	}
	return model.IsCallable(lang, m.RuleID)
}

// Contains reports whether other's context range lies inside m's context
// range, using the same file-and-both-endpoints comparison as
// model.FileRange.Contains so the two containment checks never disagree.
func (m Match) Contains(other Match) bool {
	mr := m.ContextRange()
	or := other.ContextRange()
	return mr.Path == or.Path && mr.Contains(model.FilePosition{Path: or.Path, Position: or.Range.Start}) &&
		mr.Contains(model.FilePosition{Path: or.Path, Position: or.Range.End})
}

// languageFromMatcherName maps the matcher's own language label (e.g.
// "TypeScript", "Tsx", "JavaScript", "Cpp", "Php") onto model.LanguageKind.
func languageFromMatcherName(name string) (model.LanguageKind, bool) {
	switch name {
	case "Python":
		return model.Python, true
	case "TypeScript", "Tsx", "JavaScript":
		return model.TypeScriptJavaScript, true
	case "Rust":
		return model.Rust, true
	case "Cpp":
		return model.CPP, true
	case "Java":
		return model.Java, true
	case "Go":
		return model.Go, true
	case "Php":
		return model.PHP, true
	case "Ruby":
		return model.Ruby, true
	case "CSharp", "C#":
		return model.CSharp, true
	default:
		return "", false
	}
}
