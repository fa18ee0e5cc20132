// Command codelens-gateway runs the code-intelligence gateway HTTP server:
// it discovers which languages are present under a mount directory, starts
// one language-server client per language, and serves the four core
// navigation operations plus workspace file access over JSON/HTTP
// The CLI uses cobra for subcommands and a larger flag surface than a single
// flat flag set would comfortably hold.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens-gateway/internal/astbridge"
	"github.com/codelens-dev/codelens-gateway/internal/gateway"
	"github.com/codelens-dev/codelens-gateway/internal/httpapi"
	"github.com/codelens-dev/codelens-gateway/internal/manager"
)

var version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codelens-gateway",
		Short: "Language-agnostic code-intelligence gateway",
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cfg := gateway.NewDefaultConfig()
	var configFile string
	var logDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := gateway.LoadFile(cfg, configFile)
			if err != nil {
				return err
			}
			return runServe(gateway.FromEnv(merged), logDir)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.MountDir, "mount-dir", cfg.MountDir, "workspace root the gateway operates on")
	flags.StringVar(&cfg.BindAddr, "addr", cfg.BindAddr, "HTTP listen address")
	flags.BoolVar(&cfg.AuthEnabled, "auth-enabled", cfg.AuthEnabled, "require a bearer token on every endpoint but /system/health")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HMAC secret used to verify bearer tokens")
	flags.StringVar(&cfg.AstGrepBinary, "ast-grep-binary", cfg.AstGrepBinary, "syntactic matcher binary name or path")
	flags.StringVar(&cfg.SymbolConfigPath, "symbol-config", cfg.SymbolConfigPath, "ast-grep rule file for definition-site symbols")
	flags.StringVar(&cfg.IdentifierConfigPath, "identifier-config", cfg.IdentifierConfigPath, "ast-grep rule file for bare identifiers")
	flags.StringVar(&cfg.ReferenceConfigPath, "reference-config", cfg.ReferenceConfigPath, "ast-grep rule file for references")
	flags.StringVar(&cfg.FullReferenceConfigPath, "full-reference-config", cfg.FullReferenceConfigPath, "looser ast-grep reference rule file used for full scans")
	flags.DurationVar(&cfg.DebounceInterval, "debounce", cfg.DebounceInterval, "filesystem-watcher debounce window (not applied: the watcher uses a fixed 2s window)")
	flags.StringVar(&configFile, "config", "codelens.toml", "optional TOML config file, overlaid on flags")
	flags.StringVar(&logDir, "log-dir", "", "directory to write per-language-server stderr logs")

	return cmd
}

func runServe(cfg gateway.Config, logDir string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	astCfg := astbridge.Config{
		SymbolConfigPath:        cfg.SymbolConfigPath,
		IdentifierConfigPath:    cfg.IdentifierConfigPath,
		ReferenceConfigPath:     cfg.ReferenceConfigPath,
		FullReferenceConfigPath: cfg.FullReferenceConfigPath,
		Binary:                  cfg.AstGrepBinary,
	}

	mgr, err := manager.New(cfg.MountDir, astCfg)
	if err != nil {
		return fmt.Errorf("codelens-gateway: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("codelens-gateway: starting language servers under %s", cfg.MountDir)
	if err := mgr.Start(ctx, logDir, cfg.LanguageBinaries); err != nil {
		return fmt.Errorf("codelens-gateway: %w", err)
	}
	if err := mgr.StartWatcher(); err != nil {
		return fmt.Errorf("codelens-gateway: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: httpapi.New(mgr, cfg),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("codelens-gateway: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = mgr.Close(shutdownCtx)
	}()

	log.Printf("codelens-gateway: listening on %s", cfg.BindAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
