// Package gateway holds the gateway's process-wide configuration, the
// context-scoped mount-directory override, and the error taxonomy shared by
// the manager and the HTTP layer.
package gateway

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Config is the gateway's merged configuration: defaults overlaid with
// flag and TOML file values via NewDefaultConfig and LoadFile.
type Config struct {
	// MountDir is the default workspace root used when a request does not
	// override it.
	MountDir string

	// BindAddr is the HTTP listen address, e.g. ":7749".
	BindAddr string

	// AuthEnabled gates the bearer-token middleware.
	AuthEnabled bool
	// JWTSecret signs/verifies bearer tokens when AuthEnabled is true.
	JWTSecret string

	// LanguageBinaries overrides the default command for a language server,
	// keyed by model.LanguageKind string value (e.g. "python": "/opt/pyright").
	LanguageBinaries map[string]string

	// DebounceInterval is set by the --debounce flag but is not passed to
	// the workspace watcher, which always coalesces over the fixed
	// workspace.DebounceInterval (2s).
	DebounceInterval time.Duration

	// AstGrepBinary overrides the default "ast-grep" matcher binary name.
	AstGrepBinary string
	SymbolConfigPath     string
	IdentifierConfigPath string
	ReferenceConfigPath  string
	// FullReferenceConfigPath is the looser reference rule-set used for
	// full-scan requests and while chasing intra-symbol bindings; empty
	// falls back to ReferenceConfigPath.
	FullReferenceConfigPath string
}

// NewDefaultConfig returns the gateway's zero-config defaults.
func NewDefaultConfig() Config {
	return Config{
		MountDir:         "/mnt/workspace",
		BindAddr:         ":7749",
		LanguageBinaries: map[string]string{},
		DebounceInterval: 2 * time.Second,
		AstGrepBinary:    "ast-grep",
	}
}

// FromEnv overlays the two auth environment flags onto c:
// CODELENS_AUTH_ENABLED turns the bearer-token middleware on and
// CODELENS_JWT_SECRET supplies the signing secret. Flags and the config
// file take effect first; the environment wins when set.
func FromEnv(c Config) Config {
	switch strings.ToLower(os.Getenv("CODELENS_AUTH_ENABLED")) {
	case "1", "true", "yes":
		c.AuthEnabled = true
	}
	if secret := os.Getenv("CODELENS_JWT_SECRET"); secret != "" {
		c.JWTSecret = secret
	}
	return c
}

// Validate catches a misconfiguration that would otherwise surface as a
// confusing runtime 500 on the first authenticated request: auth enabled
// with no signing secret is a fatal startup error.
func (c Config) Validate() error {
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("gateway: auth is enabled but no JWT secret is configured")
	}
	return nil
}
