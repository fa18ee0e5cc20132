package lspclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/codelens-dev/codelens-gateway/internal/model"
	"github.com/codelens-dev/codelens-gateway/internal/protocol"
	"github.com/codelens-dev/codelens-gateway/internal/rpc"
)

// Language describes one supported language server's bootstrap dimensions:
// how to find its root, which command to launch, when to send didOpen, and
// any quirks its initialize request needs. Implementations live one file per
// language under internal/lspclient/languages.
type Language interface {
	Kind() model.LanguageKind
	RootMarkers() []string
	Command() (string, []string)
	InitializationOptions() any
	DidOpenEager() bool
	// RootURIIsFirstFolder reports whether this server's initialize
	// request needs root_uri set to the first workspace folder rather than
	// the overall workspace root (true for C#, PHP, and Ruby).
	RootURIIsFirstFolder() bool
	AfterInitialize(ctx context.Context, c *Client) error
}

// Client wraps one language server's jsonrpc2 connection with the gateway's
// request vocabulary: initialize, didOpen, definition, references, and
// document symbols. A soft KeyError mapping turns "no definition here"-style
// server errors into empty results rather than propagating them as failures,
// mirroring the original manager's send_request behavior.
type Client struct {
	Lang    model.LanguageKind
	RootURI lsp.DocumentURI
	Root    string

	proc   *rpc.Process
	opened map[lsp.DocumentURI]bool
}

// New wraps an already-started Process as an LSP Client rooted at root
// (an absolute filesystem path).
func New(lang model.LanguageKind, root string, proc *rpc.Process) *Client {
	return &Client{
		Lang:    lang,
		Root:    root,
		RootURI: pathToURI(root),
		proc:    proc,
		opened:  make(map[lsp.DocumentURI]bool),
	}
}

// Initialize sends the initialize request followed by the initialized
// notification, per the LSP handshake. lang supplies the initializationOptions
// payload and whether this server's root_uri quirk needs the first workspace
// folder instead of the overall root.
func (c *Client) Initialize(ctx context.Context, lang Language) error {
	folders := []protocol.WorkspaceFolder{{URI: c.RootURI, Name: filepath.Base(c.Root)}}

	rootURI := c.RootURI
	rootPath := c.Root
	if lang.RootURIIsFirstFolder() {
		rootURI = folders[0].URI
		rootPath = uriToPath(rootURI)
	}

	params := protocol.InitializeParams{
		InitializeParams: lsp.InitializeParams{
			ProcessID:             os.Getpid(),
			RootURI:               rootURI,
			RootPath:              rootPath,
			InitializationOptions: lang.InitializationOptions(),
		},
		Capabilities: protocol.ClientCapabilities{
			ClientCapabilities: lsp.ClientCapabilities{
				Experimental: map[string]any{"serverStatusNotification": true},
			},
			TextDocument: protocol.TextDocumentClientCapabilities{
				DocumentSymbol: protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
			},
		},
		WorkspaceFolders: folders,
	}

	var result lsp.InitializeResult
	if err := c.proc.Conn.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("lspclient: %s: initialize: %w", c.Lang, err)
	}
	return c.proc.Conn.Notify(ctx, "initialized", struct{}{})
}

// Notify sends an arbitrary notification to the underlying connection, for
// post-initialize quirks (e.g. rust-analyzer/reloadWorkspace) that don't fit
// the typed request/notification methods above.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	return c.proc.Conn.Notify(ctx, method, params)
}

// Shutdown performs the LSP shutdown/exit sequence and closes the process.
func (c *Client) Shutdown(ctx context.Context) error {
	_ = c.proc.Conn.Call(ctx, "shutdown", nil, nil)
	_ = c.proc.Conn.Notify(ctx, "exit", nil)
	return c.proc.Close()
}

// DidOpen notifies the server that path is open with the given text,
// tracking it so repeated opens of the same file are skipped.
func (c *Client) DidOpen(ctx context.Context, path, languageID, text string) error {
	uri := pathToURI(path)
	if c.opened[uri] {
		return nil
	}
	params := lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	}
	if err := c.proc.Conn.Notify(ctx, "textDocument/didOpen", params); err != nil {
		return fmt.Errorf("lspclient: %s: didOpen %s: %w", c.Lang, path, err)
	}
	c.opened[uri] = true
	return nil
}

// Definition calls textDocument/definition and normalizes the response to
// []model.FileRange, applying the soft KeyError mapping to an empty slice.
func (c *Client) Definition(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error) {
	params := lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: pathToURI(path)},
		Position:     lsp.Position{Line: pos.Line, Character: pos.Character},
	}
	var resp protocol.GotoDefinitionResponse
	if err := c.proc.Conn.Call(ctx, "textDocument/definition", params, &resp); err != nil {
		if isSoftError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lspclient: %s: definition %s:%s: %w", c.Lang, path, pos, err)
	}
	return locationsToFileRanges(resp.Locations()), nil
}

// References calls textDocument/references (always includeDeclaration:
// true, matching the original manager) and normalizes to []model.FileRange.
func (c *Client) References(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error) {
	params := lsp.ReferenceParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: pathToURI(path)},
			Position:     lsp.Position{Line: pos.Line, Character: pos.Character},
		},
		Context: lsp.ReferenceContext{IncludeDeclaration: true},
	}
	var resp []lsp.Location
	if err := c.proc.Conn.Call(ctx, "textDocument/references", params, &resp); err != nil {
		if isSoftError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lspclient: %s: references %s:%s: %w", c.Lang, path, pos, err)
	}
	return locationsToFileRanges(resp), nil
}

// DocumentSymbols calls textDocument/documentSymbol and flattens whichever
// of the two wire shapes (hierarchical DocumentSymbol or flat
// SymbolInformation) the server returned.
func (c *Client) DocumentSymbols(ctx context.Context, path string) ([]model.Symbol, error) {
	params := lsp.DocumentSymbolParams{TextDocument: lsp.TextDocumentIdentifier{URI: pathToURI(path)}}

	var raw []hierOrFlat
	if err := c.proc.Conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		if isSoftError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lspclient: %s: documentSymbol %s: %w", c.Lang, path, err)
	}

	var hier []protocol.DocumentSymbol
	var flat []lsp.SymbolInformation
	for _, item := range raw {
		if item.isHier {
			hier = append(hier, item.hier)
		} else {
			flat = append(flat, item.flat)
		}
	}

	var symbols []model.Symbol
	if len(hier) > 0 {
		for _, s := range protocol.FlattenDocumentSymbols(hier) {
			symbols = append(symbols, model.Symbol{
				Name: s.Name,
				Kind: protocol.SymbolKindString(s.Kind),
				IdentifierPosition: model.FilePosition{
					Path:     path,
					Position: model.Position{Line: s.SelectionRange.Start.Line, Character: s.SelectionRange.Start.Character},
				},
				FileRange: model.FileRange{
					Path: path,
					Range: model.Range{
						Start: model.Position{Line: s.Range.Start.Line, Character: s.Range.Start.Character},
						End:   model.Position{Line: s.Range.End.Line, Character: s.Range.End.Character},
					},
				},
			})
		}
	} else {
		for _, s := range flat {
			symbols = append(symbols, model.Symbol{
				Name: s.Name,
				Kind: protocol.SymbolKindString(s.Kind),
				IdentifierPosition: model.FilePosition{
					Path:     uriToPath(s.Location.URI),
					Position: model.Position{Line: s.Location.Range.Start.Line, Character: s.Location.Range.Start.Character},
				},
				FileRange: model.FileRange{
					Path: uriToPath(s.Location.URI),
					Range: model.Range{
						Start: model.Position{Line: s.Location.Range.Start.Line, Character: s.Location.Range.Start.Character},
						End:   model.Position{Line: s.Location.Range.End.Line, Character: s.Location.Range.End.Character},
					},
				},
			})
		}
	}
	return symbols, nil
}

func locationsToFileRanges(locs []lsp.Location) []model.FileRange {
	out := make([]model.FileRange, 0, len(locs))
	for _, l := range locs {
		out = append(out, model.FileRange{
			Path: uriToPath(l.URI),
			Range: model.Range{
				Start: model.Position{Line: l.Range.Start.Line, Character: l.Range.Start.Character},
				End:   model.Position{Line: l.Range.End.Line, Character: l.Range.End.Character},
			},
		})
	}
	return out
}

// isSoftError reports whether err is a server error whose message begins
// with "KeyError", which some servers return when asked about a position
// they don't index. That specific case maps to an empty result instead of a
// failure; it is the sole implicit recovery the client performs.
func isSoftError(err error) bool {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return strings.HasPrefix(rpcErr.Message, "KeyError")
	}
	return false
}

func pathToURI(path string) lsp.DocumentURI {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return lsp.DocumentURI(u.String())
}

func uriToPath(uri lsp.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		return string(uri)
	}
	return filepath.FromSlash(u.Path)
}
