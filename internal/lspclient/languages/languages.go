// Package languages holds the per-language bootstrap dimensions the LSP
// Supervisor needs to launch and initialize each supported server: root
// markers, launch command, did-open policy, and initialize-time quirks.
// One file per language, mirroring the reference implementation's
// lsp/languages/*.rs split, generalized to the full 9-language roster.
package languages

import (
	"context"

	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// base gives every Language the DidOpenEager/AfterInitialize no-ops so each
// language file only overrides what it needs.
type base struct {
	kind    model.LanguageKind
	markers []string
	command string
	args    []string
}

func (b base) Kind() model.LanguageKind                                 { return b.kind }
func (b base) RootMarkers() []string                                    { return b.markers }
func (b base) Command() (string, []string)                              { return b.command, b.args }
func (b base) InitializationOptions() any                               { return nil }
func (b base) DidOpenEager() bool                                       { return false }
func (b base) RootURIIsFirstFolder() bool                               { return false }
func (b base) AfterInitialize(context.Context, *lspclient.Client) error { return nil }

var _ lspclient.Language = base{}
