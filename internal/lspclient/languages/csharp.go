package languages

import "github.com/codelens-dev/codelens-gateway/internal/model"

// csharpLang is OmniSharp. Like PHP and Ruby it needs root_uri set to the
// first workspace folder rather than the overall root.
type csharpLang struct{ base }

func (csharpLang) RootURIIsFirstFolder() bool { return true }

// CSharp launches the OmniSharp Roslyn-based language server.
func CSharp() csharpLang {
	return csharpLang{base{
		kind:    model.CSharp,
		markers: []string{".sln", ".csproj", ".git"},
		command: "omnisharp",
		args:    []string{"-lsp"},
	}}
}
