package languages

import "github.com/codelens-dev/codelens-gateway/internal/model"

// Python launches pyright's language server.
func Python() base {
	return base{
		kind:    model.Python,
		markers: []string{"pyproject.toml", "setup.py", "requirements.txt", "Pipfile", "pyrightconfig.json"},
		command: "pyright-langserver",
		args:    []string{"--stdio"},
	}
}
