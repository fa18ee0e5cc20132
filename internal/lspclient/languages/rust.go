package languages

import (
	"context"
	"fmt"

	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// rustLang is rust-analyzer. It needs a post-initialize
// "rust-analyzer/reloadWorkspace" request before cross-file navigation
// works, and an initializationOptions.cargo.sysroot=null override.
type rustLang struct{ base }

func (rustLang) InitializationOptions() any {
	return map[string]any{
		"cargo": map[string]any{"sysroot": nil},
	}
}

func (rustLang) AfterInitialize(ctx context.Context, c *lspclient.Client) error {
	if err := c.Notify(ctx, "rust-analyzer/reloadWorkspace", nil); err != nil {
		return fmt.Errorf("languages: rust: reloadWorkspace: %w", err)
	}
	return nil
}

// Rust launches rust-analyzer.
func Rust() rustLang {
	return rustLang{base{
		kind:    model.Rust,
		markers: []string{"Cargo.toml", "Cargo.lock"},
		command: "rust-analyzer",
	}}
}
