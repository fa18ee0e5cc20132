// Package manager is the gateway orchestrator: it owns the per-language LSP
// clients, the workspace document index, and the syntactic bridge, and
// exposes the seven HTTP-facing operations.
package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/codelens-dev/codelens-gateway/internal/astbridge"
	"github.com/codelens-dev/codelens-gateway/internal/gateway"
	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/model"
	"github.com/codelens-dev/codelens-gateway/internal/resolver"
	"github.com/codelens-dev/codelens-gateway/internal/workspace"
)

// Manager is the single point of coordination the HTTP layer talks to.
type Manager struct {
	root    string
	index   *workspace.Index
	bridge  *astbridge.Bridge
	watcher *workspace.Watcher

	mu      sync.Mutex
	clients map[model.LanguageKind]*lspclient.Client
}

// New constructs a Manager rooted at root, with the syntactic bridge
// configured per astCfg. No language server is started here: Start launches
// one per language detected in the workspace, and an operation on a language
// with no running client fails with LspClientNotFound.
func New(root string, astCfg astbridge.Config) (*Manager, error) {
	if err := astCfg.Validate(); err != nil {
		return nil, err
	}
	idx := workspace.New(root, nil, nil)
	m := &Manager{
		root:    root,
		index:   idx,
		bridge:  astbridge.New(astCfg),
		clients: make(map[model.LanguageKind]*lspclient.Client),
	}
	return m, nil
}

// Close shuts down every running language server and stops the watcher.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, c := range m.clients {
		if err := c.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return firstErr
}

// ListFiles returns every workspace-relative file path the index currently
// tracks, sorted.
func (m *Manager) ListFiles(ctx context.Context) ([]string, error) {
	files, err := m.index.ListFiles()
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "workspace file retrieval failed", err)
	}
	sort.Strings(files)
	return files, nil
}

func (m *Manager) requireFile(path string) error {
	files, err := m.index.ListFiles()
	if err != nil {
		return gateway.Wrap(gateway.InternalError, "workspace file retrieval failed", err)
	}
	for _, f := range files {
		if f == path {
			return nil
		}
	}
	return gateway.New(gateway.FileNotFound, path)
}

// ReadSourceCode returns path's content, optionally clamped to rng.
func (m *Manager) ReadSourceCode(ctx context.Context, path string, rng *model.Range) (string, error) {
	if err := m.requireFile(path); err != nil {
		return "", err
	}
	if rng == nil {
		content, err := m.index.ReadSourceCode(path)
		if err != nil {
			return "", gateway.Wrap(gateway.InternalError, "source code retrieval failed", err)
		}
		return content, nil
	}
	content, err := m.index.ReadRange(path, *rng)
	if err != nil {
		return "", gateway.Wrap(gateway.InternalError, "source code retrieval failed", err)
	}
	return content, nil
}

// DefinitionsInFile returns every definition-site symbol found in path via
// the syntactic bridge alone, with no LSP round trip.
func (m *Manager) DefinitionsInFile(ctx context.Context, path string) ([]model.Symbol, error) {
	if err := m.requireFile(path); err != nil {
		return nil, err
	}
	matches, err := m.bridge.FileSymbols(ctx, m.abs(path))
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "symbol retrieval failed", err)
	}
	symbols := make([]model.Symbol, 0, len(matches))
	for _, mm := range matches {
		symbols = append(symbols, symbolFromMatch(path, mm))
	}
	return symbols, nil
}

// symbolFromMatch converts a definition-site match to the Symbol reported
// at the HTTP boundary. The symbol's range starts at character 0 of its
// first line (whole-line start, preserving the real end) so callers can
// display full lines of the declaration; the identifier position keeps the
// precise name-token column.
func symbolFromMatch(relPath string, mm astbridge.Match) model.Symbol {
	rng := mm.ContextRange().Range
	rng.Start.Character = 0
	return model.Symbol{
		Name:               mm.MetaVariables.Single.Name.Text,
		Kind:               mm.RuleID,
		IdentifierPosition: model.FilePosition{Path: relPath, Position: mm.IdentifierRange().Range.Start},
		FileRange:          model.FileRange{Path: relPath, Range: rng},
		SourceCode:         mm.SourceCode(),
	}
}

// FindDefinition resolves the definition of the symbol at pos in path via
// the appropriate language server.
func (m *Manager) FindDefinition(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error) {
	if err := m.requireFile(path); err != nil {
		return nil, err
	}
	lang, ok := model.DetectLanguage(path)
	if !ok {
		return nil, gateway.New(gateway.UnsupportedFileType, path)
	}
	client, err := m.clientFor(ctx, lang)
	if err != nil {
		return nil, err
	}
	if err := m.ensureOpen(ctx, client, lang, path); err != nil {
		return nil, err
	}
	defs, err := client.Definition(ctx, m.abs(path), pos)
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "definition retrieval failed", err)
	}
	return normalizeRanges(m.toRelative(ctx, defs)), nil
}

// FindReferences resolves every reference to the symbol at pos in path.
func (m *Manager) FindReferences(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error) {
	if err := m.requireFile(path); err != nil {
		return nil, err
	}
	lang, ok := model.DetectLanguage(path)
	if !ok {
		return nil, gateway.New(gateway.UnsupportedFileType, path)
	}
	client, err := m.clientFor(ctx, lang)
	if err != nil {
		return nil, err
	}
	if err := m.ensureOpen(ctx, client, lang, path); err != nil {
		return nil, err
	}
	refs, err := client.References(ctx, m.abs(path), pos)
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "reference retrieval failed", err)
	}
	return normalizeRanges(m.toRelative(ctx, refs)), nil
}

// ensureOpen satisfies the Lazy did-open policy: before a
// request targets path, open it with the client if it hasn't been opened
// yet. Eager-all languages (TypeScript, C/C++) have already opened every
// file at startup (see bootstrap.go), so this is a no-op for them: the
// client's own opened-uri set makes the call idempotent either way.
func (m *Manager) ensureOpen(ctx context.Context, client *lspclient.Client, lang model.LanguageKind, path string) error {
	content, err := m.index.ReadSourceCode(path)
	if err != nil {
		return gateway.Wrap(gateway.InternalError, "source code retrieval failed", err)
	}
	if err := client.DidOpen(ctx, m.abs(path), languageID(lang, path), content); err != nil {
		return gateway.Wrap(gateway.InternalError, "didOpen failed", err)
	}
	return nil
}

// Category classifies where a resolved reference's definition chain
// terminated.
type Category int

const (
	// Workspace means the chain terminated at a definition inside the
	// workspace with a recoverable Symbol.
	Workspace Category = iota
	// External means every terminal definition lies outside the workspace
	// (standard library, third-party dependency).
	External
	// NotFound means the chain produced no definitions, or none that a
	// Symbol could be recovered for.
	NotFound
)

// ReferencedSymbol is one reference to the symbol under inspection and its
// resolved, categorized definition chain. Symbols is only populated for
// Category == Workspace, one entry per workspace-rooted definition
// location the syntactic bridge could recover a Symbol for.
type ReferencedSymbol struct {
	Reference   model.Identifier
	Definitions []model.FileRange
	Symbols     []model.Symbol
	Category    Category
}

// FindReferencedSymbols resolves every referenced symbol chained from the
// symbol at pos in path, categorizing each into workspace/external/not-found
// empty definitions is not_found; a definition path
// that falls inside the workspace root makes it workspace_symbols (demoted
// to not_found if no Symbol can be recovered there); otherwise external.
func (m *Manager) FindReferencedSymbols(ctx context.Context, path string, pos model.Position, fullScan bool) ([]ReferencedSymbol, error) {
	if err := m.requireFile(path); err != nil {
		return nil, err
	}
	lang, ok := model.DetectLanguage(path)
	if !ok {
		return nil, gateway.New(gateway.UnsupportedFileType, path)
	}
	if !model.ReferencedSymbolsSupported[lang] {
		return nil, gateway.New(gateway.NotImplemented, resolver.ErrNotImplemented.Error())
	}
	client, err := m.clientFor(ctx, lang)
	if err != nil {
		return nil, err
	}
	if err := m.ensureOpen(ctx, client, lang, path); err != nil {
		return nil, err
	}

	res := resolver.New(m.bridge, client)
	resolved, err := res.ResolveFile(ctx, lang, m.abs(path), pos, fullScan)
	if err != nil {
		if err == resolver.ErrRecursionLimitExceeded {
			return nil, gateway.Wrap(gateway.RecursionLimitExceeded, "definition chain too deep", err)
		}
		return nil, gateway.Wrap(gateway.InternalError, "referenced symbol resolution failed", err)
	}

	out := make([]ReferencedSymbol, 0, len(resolved))
	for _, r := range resolved {
		rs := ReferencedSymbol{
			Reference: model.Identifier{
				Name:      r.Reference.MetaVariables.Single.Name.Text,
				FileRange: model.FileRange{Path: path, Range: r.Reference.IdentifierRange().Range},
				Kind:      identifierKind(r.Reference.RuleID),
			},
		}
		rs.Category, rs.Definitions, rs.Symbols = m.classifyDefinitions(ctx, r.Definitions)
		out = append(out, rs)
	}
	return out, nil
}

// classifyDefinitions implements the workspace/external/not_found split
// A definition location counts as workspace-rooted
// when it resolves to a path inside the manager's root; for each such
// location it looks up the enclosing Symbol via the syntactic bridge. If no
// workspace-rooted location yields a recoverable Symbol, the whole reference
// demotes to not_found.
func (m *Manager) classifyDefinitions(ctx context.Context, defs []model.FileRange) (Category, []model.FileRange, []model.Symbol) {
	if len(defs) == 0 {
		return NotFound, nil, nil
	}

	root := m.effectiveRoot(ctx)
	var workspaceDefs []model.FileRange
	var symbols []model.Symbol
	anyWorkspace := false
	for _, d := range defs {
		rel, err := filepath.Rel(root, d.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		anyWorkspace = true
		rel = filepath.ToSlash(rel)
		match, ok, err := m.bridge.SymbolFromPosition(ctx, d.Path, d.Range.Start)
		if err != nil || !ok {
			continue
		}
		workspaceDefs = append(workspaceDefs, model.FileRange{Path: rel, Range: d.Range})
		symbols = append(symbols, symbolFromMatch(rel, match))
	}

	switch {
	case !anyWorkspace:
		return External, normalizeRanges(m.toRelative(ctx, defs)), nil
	case len(workspaceDefs) == 0:
		return NotFound, nil, nil
	default:
		return Workspace, normalizeRanges(workspaceDefs), symbols
	}
}

// FindIdentifier returns every syntactic identifier in path named name; if
// pos is given, it returns the exact match at that position or, if none
// matches exactly, the three closest by Euclidean distance, a 200-level
// result in either case (unlike find-references,
// which treats the same situation as an error).
func (m *Manager) FindIdentifier(ctx context.Context, path, name string, pos *model.Position) ([]model.Identifier, error) {
	if err := m.requireFile(path); err != nil {
		return nil, err
	}
	matches, err := m.bridge.FileIdentifiers(ctx, m.abs(path))
	if err != nil {
		return nil, gateway.Wrap(gateway.InternalError, "identifier retrieval failed", err)
	}

	var candidates []model.Identifier
	for _, mm := range matches {
		if mm.Text != name {
			continue
		}
		candidates = append(candidates, model.Identifier{
			Name:      mm.Text,
			FileRange: model.FileRange{Path: path, Range: mm.RangeModel()},
		})
	}

	if pos == nil || len(candidates) == 0 {
		return candidates, nil
	}
	for _, c := range candidates {
		if c.FileRange.Range.Start == *pos {
			return []model.Identifier{c}, nil
		}
	}
	return closestN(candidates, *pos, 3), nil
}

func closestN(candidates []model.Identifier, pos model.Position, n int) []model.Identifier {
	type scored struct {
		id   model.Identifier
		dist float64
	}
	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		dl := float64(c.FileRange.Range.Start.Line - pos.Line)
		dc := float64(c.FileRange.Range.Start.Character - pos.Character)
		scoredList = append(scoredList, scored{id: c, dist: dl*dl + dc*dc})
	}
	// Stable so equidistant candidates keep their input order.
	sort.SliceStable(scoredList, func(i, j int) bool { return scoredList[i].dist < scoredList[j].dist })
	if len(scoredList) > n {
		scoredList = scoredList[:n]
	}
	out := make([]model.Identifier, 0, len(scoredList))
	for _, s := range scoredList {
		out = append(out, s.id)
	}
	return out
}

// identifierKind maps a matcher rule id to the Identifier kind reported at
// the HTTP boundary; the generic "all-identifiers" rule carries no kind.
func identifierKind(ruleID string) model.IdentifierKind {
	if ruleID == "all-identifiers" {
		return model.None
	}
	return model.IdentifierKind(ruleID)
}

func (m *Manager) abs(relPath string) string {
	return filepath.Join(m.root, relPath)
}

// effectiveRoot is the mount directory paths are relativized against:
// m.root unless the request context carries an override.
func (m *Manager) effectiveRoot(ctx context.Context) string {
	return gateway.MountDir(ctx, m.root)
}

func (m *Manager) toRelative(ctx context.Context, ranges []model.FileRange) []model.FileRange {
	root := m.effectiveRoot(ctx)
	out := make([]model.FileRange, 0, len(ranges))
	for _, r := range ranges {
		rel := r
		if rp, err := filepath.Rel(root, r.Path); err == nil && !strings.HasPrefix(rp, "..") {
			rel.Path = filepath.ToSlash(rp)
		}
		out = append(out, rel)
	}
	return out
}

func (m *Manager) clientFor(ctx context.Context, lang model.LanguageKind) (*lspclient.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[lang]; ok {
		return c, nil
	}
	return nil, gateway.New(gateway.LspClientNotFound, fmt.Sprintf("no running language server for %s", lang))
}

// RegisterClient installs an already-initialized client for lang, called by
// the startup sequence once per detected language.
func (m *Manager) RegisterClient(lang model.LanguageKind, c *lspclient.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[lang] = c
}

// RunningLanguages reports, for every LanguageKind the gateway knows about,
// whether a client is currently running, the {status, version, languages}
// shape the /system/health endpoint returns.
func (m *Manager) RunningLanguages() map[model.LanguageKind]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.LanguageKind]bool, len(model.AllLanguages))
	for _, lang := range model.AllLanguages {
		_, running := m.clients[lang]
		out[lang] = running
	}
	return out
}

// StartWatcher begins the debounced filesystem watcher invalidating the
// shared workspace index.
func (m *Manager) StartWatcher() error {
	w, err := workspace.NewWatcher(m.root, m.index)
	if err != nil {
		return gateway.Wrap(gateway.InternalError, "failed to start workspace watcher", err)
	}
	m.watcher = w
	return nil
}

// SelectedIdentifier returns the syntactic identifier whose range starts
// exactly at pos in path, or ok=false with the three closest candidates
// (the closest-identifier tiebreak) if none matches exactly. Used
// by find-definition/find-references to report which token the request's
// position actually landed on.
func (m *Manager) SelectedIdentifier(ctx context.Context, path string, pos model.Position) (model.Identifier, bool, []model.Identifier, error) {
	if err := m.requireFile(path); err != nil {
		return model.Identifier{}, false, nil, err
	}
	matches, err := m.bridge.FileIdentifiers(ctx, m.abs(path))
	if err != nil {
		return model.Identifier{}, false, nil, gateway.Wrap(gateway.InternalError, "identifier retrieval failed", err)
	}
	candidates := make([]model.Identifier, 0, len(matches))
	for _, mm := range matches {
		candidates = append(candidates, model.Identifier{
			Name:      mm.Text,
			FileRange: model.FileRange{Path: path, Range: mm.RangeModel()},
		})
	}
	for _, c := range candidates {
		if c.FileRange.Range.Start == pos {
			return c, true, nil, nil
		}
	}
	return model.Identifier{}, false, closestN(candidates, pos, 3), nil
}

// languageID maps a LanguageKind/path pair to the LSP languageId textDocument
// open with, splitting TypeScript/JavaScript's shared client by extension.
func languageID(lang model.LanguageKind, path string) string {
	if lang == model.TypeScriptJavaScript {
		switch {
		case strings.HasSuffix(path, ".tsx"):
			return "typescriptreact"
		case strings.HasSuffix(path, ".jsx"):
			return "javascriptreact"
		case strings.HasSuffix(path, ".ts"):
			return "typescript"
		default:
			return "javascript"
		}
	}
	return string(lang)
}
