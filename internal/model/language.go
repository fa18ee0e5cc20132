package model

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// LanguageKind is the closed set of languages the gateway can start a
// language-server client for.
type LanguageKind string

const (
	Python               LanguageKind = "python"
	TypeScriptJavaScript LanguageKind = "typescript_javascript"
	Rust                 LanguageKind = "rust"
	CPP                  LanguageKind = "cpp"
	CSharp               LanguageKind = "csharp"
	Java                 LanguageKind = "java"
	Go                   LanguageKind = "go"
	PHP                  LanguageKind = "php"
	Ruby                 LanguageKind = "ruby"
)

// AllLanguages lists every LanguageKind the gateway knows about, in the
// order language detection is attempted at manager start.
var AllLanguages = []LanguageKind{
	Python, TypeScriptJavaScript, Rust, CPP, CSharp, Java, Go, PHP, Ruby,
}

// extensionPatterns is the closed extension -> language mapping from
// expressed as glob patterns rather than bare suffixes so a
// language's file set can later grow path-shaped markers (e.g. "*.d.ts")
// without changing the matching strategy.
var extensionPatterns = map[LanguageKind][]string{
	Python:               {"*.py", "*.pyx", "*.pyi"},
	TypeScriptJavaScript: {"*.ts", "*.tsx", "*.js", "*.jsx"},
	Rust:                 {"*.rs"},
	CPP:                  {"*.c", "*.cc", "*.cpp", "*.cxx", "*.h", "*.hpp", "*.hxx", "*.hh"},
	Java:                 {"*.java"},
	Go:                   {"*.go"},
	PHP:                  {"*.php"},
	Ruby:                 {"*.rb"},
	CSharp:               {"*.cs"},
}

// languageGlobs holds one compiled glob per extension pattern, keyed by the
// language it belongs to. Compiling once at package init keeps DetectLanguage
// a pure matcher lookup instead of re-parsing a pattern on every call.
var languageGlobs = compileLanguageGlobs()

func compileLanguageGlobs() map[LanguageKind][]glob.Glob {
	compiled := make(map[LanguageKind][]glob.Glob, len(extensionPatterns))
	for lang, patterns := range extensionPatterns {
		globs := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			globs = append(globs, glob.MustCompile(p))
		}
		compiled[lang] = globs
	}
	return compiled
}

// DetectLanguage returns the LanguageKind for a file path based on its
// extension, or ok=false if the extension is not in the closed table.
func DetectLanguage(path string) (LanguageKind, bool) {
	base := strings.ToLower(filepath.Base(path))
	for _, lang := range AllLanguages {
		for _, g := range languageGlobs[lang] {
			if g.Match(base) {
				return lang, true
			}
		}
	}
	return "", false
}

// CallableRules is the closed per-language table of syntactic-matcher rule
// ids that count as "callable", used by the Referenced-Symbol
// Resolver to decide whether a definition site is a terminus for reference
// chasing.
var CallableRules = map[LanguageKind]map[string]bool{
	CPP: {
		"function-declaration": true,
		"function-definition":  true,
		"class":                true,
	},
	Go: {
		"function": true,
		"method":   true,
	},
	Java: {
		"method": true,
		"class":  true,
	},
	TypeScriptJavaScript: {
		"function": true,
		"method":   true,
		"class":    true,
	},
	PHP: {
		"function": true,
		"method":   true,
		"class":    true,
	},
	Python: {
		"function": true,
		"class":    true,
	},
	Rust: {
		"function": true,
	},
}

// IsCallable reports whether ruleID counts as a callable definition for lang.
func IsCallable(lang LanguageKind, ruleID string) bool {
	rules, ok := CallableRules[lang]
	if !ok {
		return false
	}
	return rules[ruleID]
}

// ReferencedSymbolsSupported is the closed set of languages the
// Referenced-Symbol Resolver currently supports: the
// syntactic reference rule-sets only exist for these two.
var ReferencedSymbolsSupported = map[LanguageKind]bool{
	Python:               true,
	TypeScriptJavaScript: true,
}
