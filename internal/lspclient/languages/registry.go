package languages

import "github.com/codelens-dev/codelens-gateway/internal/lspclient"

// All returns every supported Language in the detection order the manager
// walks at startup.
func All() []lspclient.Language {
	return []lspclient.Language{
		Python(),
		TypeScriptJavaScript(),
		Rust(),
		CPP(),
		CSharp(),
		Java(),
		Golang(),
		PHP(),
		Ruby(),
	}
}
