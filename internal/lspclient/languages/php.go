package languages

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// phpConfig is the minimal Intelephense project config written if none
// exists, so the server indexes the whole workspace by default.
const phpConfig = `{
  "files": {
    "associations": ["*.php"],
    "maxSize": 5000000
  }
}
`

// phpLang is Intelephense. Its post-initialize action writes a minimal
// project config and, if a composer.json is present, refreshes the
// autoloader so class resolution works before the first request
// Like C# and Ruby it needs root_uri set to the first
// workspace folder.
type phpLang struct{ base }

func (phpLang) RootURIIsFirstFolder() bool { return true }

func (phpLang) AfterInitialize(ctx context.Context, c *lspclient.Client) error {
	configPath := filepath.Join(c.Root, ".intelephense", "intelephense.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err == nil {
			_ = os.WriteFile(configPath, []byte(phpConfig), 0o644)
		}
	}

	if _, err := os.Stat(filepath.Join(c.Root, "composer.json")); err != nil {
		return nil
	}
	cmd := exec.CommandContext(ctx, "composer", "dump-autoload")
	cmd.Dir = c.Root
	// Best-effort: a missing composer binary or a failing dump-autoload
	// never blocks startup, it just means lower-quality indexing.
	_ = cmd.Run()
	return nil
}

// PHP launches Intelephense.
func PHP() phpLang {
	return phpLang{base{
		kind:    model.PHP,
		markers: []string{"composer.json", ".git"},
		command: "intelephense",
		args:    []string{"--stdio"},
	}}
}
