package languages

import "github.com/codelens-dev/codelens-gateway/internal/model"

// typescriptLang is typescript-language-server. Like clangd it needs every
// workspace file opened eagerly before navigation works
// (DidOpenEager), a documented limitation of tsserver itself.
type typescriptLang struct{ base }

func (typescriptLang) DidOpenEager() bool { return true }

// TypeScriptJavaScript covers .ts/.tsx/.js/.jsx via one server instance.
func TypeScriptJavaScript() typescriptLang {
	return typescriptLang{base{
		kind:    model.TypeScriptJavaScript,
		markers: []string{"tsconfig.json", "jsconfig.json", "package.json", ".git"},
		command: "typescript-language-server",
		args:    []string{"--stdio"},
	}}
}
