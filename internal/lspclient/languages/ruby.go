package languages

import "github.com/codelens-dev/codelens-gateway/internal/model"

// rubyLang is solargraph. Like C# and PHP it needs root_uri set to the
// first workspace folder rather than the overall root.
type rubyLang struct{ base }

func (rubyLang) RootURIIsFirstFolder() bool { return true }

// Ruby launches solargraph.
func Ruby() rubyLang {
	return rubyLang{base{
		kind:    model.Ruby,
		markers: []string{"Gemfile", ".git"},
		command: "solargraph",
		args:    []string{"stdio"},
	}}
}
