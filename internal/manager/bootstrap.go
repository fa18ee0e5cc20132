package manager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codelens-dev/codelens-gateway/internal/gateway"
	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/lspclient/languages"
	"github.com/codelens-dev/codelens-gateway/internal/model"
	"github.com/codelens-dev/codelens-gateway/internal/rpc"
)

// Start implements "language detection happens at start
// time": it walks the workspace document index once, builds the set of
// languages actually present (by extension), and launches + initializes one
// LspClient per detected language, registering each with the manager.
// logDir receives each child's piped stderr; binOverrides
// lets an operator substitute a non-default server binary per language
// (gateway.Config.LanguageBinaries).
func (m *Manager) Start(ctx context.Context, logDir string, binOverrides map[string]string) error {
	present, err := m.detectLanguages()
	if err != nil {
		return err
	}

	byKind := make(map[model.LanguageKind]lspclient.Language)
	for _, l := range languages.All() {
		byKind[l.Kind()] = l
	}

	for lang := range present {
		langCfg, ok := byKind[lang]
		if !ok {
			continue
		}
		if err := m.startClient(ctx, langCfg, logDir, binOverrides); err != nil {
			return fmt.Errorf("manager: start %s client: %w", lang, err)
		}
	}
	return nil
}

// detectLanguages walks the index's file list once and returns the set of
// LanguageKind present, per the closed extension table.
func (m *Manager) detectLanguages() (map[model.LanguageKind]bool, error) {
	files, err := m.index.ListFiles()
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "workspace file retrieval failed", err)
	}
	present := make(map[model.LanguageKind]bool)
	for _, f := range files {
		if lang, ok := model.DetectLanguage(f); ok {
			present[lang] = true
		}
	}
	return present, nil
}

// startClient launches lang's server, performs the LSP initialize handshake
// plus its post-initialize quirk (AfterInitialize), eagerly opens every
// matching file if lang uses the Eager-all did-open policy, and registers
// the resulting client with the manager.
func (m *Manager) startClient(ctx context.Context, lang lspclient.Language, logDir string, binOverrides map[string]string) error {
	command, args := lang.Command()
	if override, ok := binOverrides[string(lang.Kind())]; ok && override != "" {
		command = override
	}

	handler := lspclient.NewNotificationHandler(string(lang.Kind()))
	proc, err := rpc.Start(ctx, string(lang.Kind()), logDir, command, args, handler)
	if err != nil {
		return err
	}

	client := lspclient.New(lang.Kind(), m.root, proc)
	if err := client.Initialize(ctx, lang); err != nil {
		_ = proc.Close()
		return err
	}
	if err := lang.AfterInitialize(ctx, client); err != nil {
		_ = proc.Close()
		return err
	}

	if lang.DidOpenEager() {
		if err := m.openAllFiles(ctx, client, lang.Kind()); err != nil {
			_ = proc.Close()
			return err
		}
	}

	m.RegisterClient(lang.Kind(), client)
	return nil
}

// openAllFiles satisfies the Eager-all did-open policy: walk
// every workspace file belonging to lang and open it before any request can
// arrive, a documented requirement of tsserver/clangd-style indexers.
func (m *Manager) openAllFiles(ctx context.Context, client *lspclient.Client, lang model.LanguageKind) error {
	files, err := m.index.ListFiles()
	if err != nil {
		return gateway.Wrap(gateway.InternalError, "workspace file retrieval failed", err)
	}
	for _, f := range files {
		fileLang, ok := model.DetectLanguage(f)
		if !ok || fileLang != lang {
			continue
		}
		content, err := m.index.ReadSourceCode(f)
		if err != nil {
			return gateway.Wrap(gateway.InternalError, "source code retrieval failed", err)
		}
		if err := client.DidOpen(ctx, filepath.Join(m.root, f), languageID(lang, f), content); err != nil {
			return gateway.Wrap(gateway.InternalError, "didOpen failed", err)
		}
	}
	return nil
}
