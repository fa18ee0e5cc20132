package languages

import "github.com/codelens-dev/codelens-gateway/internal/model"

// Golang launches gopls, the standard Go language server.
func Golang() base {
	return base{
		kind:    model.Go,
		markers: []string{"go.mod", "go.work"},
		command: "gopls",
		args:    []string{"-mode=stdio", "-vv"},
	}
}
