// Package protocol supplements github.com/sourcegraph/go-lsp with the LSP
// 3.10+ wire shapes that library predates: workspace folders, hierarchical
// document symbols, LocationLink, and the three-way goto-definition
// response union. Everything go-lsp already defines (Position, Range,
// Location, SymbolKind, SymbolInformation, the initialize handshake types)
// is used from there directly.
package protocol

import (
	"encoding/json"

	"github.com/sourcegraph/go-lsp"
)

// WorkspaceFolder names a root passed in InitializeParams. Added in LSP
// 3.6, after go-lsp's cutoff.
type WorkspaceFolder struct {
	URI  lsp.DocumentURI `json:"uri"`
	Name string          `json:"name"`
}

// DocumentSymbolClientCapabilities advertises hierarchical symbol support
// (LSP 3.10).
type DocumentSymbolClientCapabilities struct {
	HierarchicalDocumentSymbolSupport bool `json:"hierarchicalDocumentSymbolSupport"`
}

// TextDocumentClientCapabilities extends go-lsp's with the documentSymbol
// capability block it lacks; the shallower field wins the "documentSymbol"
// key on the wire.
type TextDocumentClientCapabilities struct {
	lsp.TextDocumentClientCapabilities
	DocumentSymbol DocumentSymbolClientCapabilities `json:"documentSymbol"`
}

// ClientCapabilities extends go-lsp's capabilities with the supplemented
// text-document block.
type ClientCapabilities struct {
	lsp.ClientCapabilities
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
}

// InitializeParams extends go-lsp's initialize params with workspace
// folders and the supplemented capabilities, shadowing the embedded
// "capabilities" key.
type InitializeParams struct {
	lsp.InitializeParams
	Capabilities     ClientCapabilities `json:"capabilities"`
	WorkspaceFolders []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
}

// LocationLink is the richer goto-definition shape some servers (gopls,
// rust-analyzer) return instead of a plain Location.
type LocationLink struct {
	OriginSelectionRange *lsp.Range      `json:"originSelectionRange,omitempty"`
	TargetURI            lsp.DocumentURI `json:"targetUri"`
	TargetRange          lsp.Range       `json:"targetRange"`
	TargetSelectionRange lsp.Range       `json:"targetSelectionRange"`
}

// DocumentSymbol is the hierarchical shape returned when a server honors
// hierarchicalDocumentSymbolSupport. Children are flattened by the caller.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Kind           lsp.SymbolKind   `json:"kind"`
	Range          lsp.Range        `json:"range"`
	SelectionRange lsp.Range        `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// FlattenDocumentSymbols walks a DocumentSymbol tree depth-first and returns
// every node (including container nodes) as a flat slice.
func FlattenDocumentSymbols(symbols []DocumentSymbol) []DocumentSymbol {
	var out []DocumentSymbol
	var walk func(DocumentSymbol)
	walk = func(s DocumentSymbol) {
		flat := s
		flat.Children = nil
		out = append(out, flat)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range symbols {
		walk(s)
	}
	return out
}

// symbolKindNames covers the full LSP 3.x kind range; go-lsp's constants
// stop at Array (18).
var symbolKindNames = map[lsp.SymbolKind]string{
	1:  "file",
	2:  "module",
	3:  "namespace",
	4:  "package",
	5:  "class",
	6:  "method",
	7:  "property",
	8:  "field",
	9:  "constructor",
	10: "enum",
	11: "interface",
	12: "function",
	13: "variable",
	14: "constant",
	15: "string",
	16: "number",
	17: "boolean",
	18: "array",
	19: "object",
	20: "key",
	21: "null",
	22: "enum_member",
	23: "struct",
	24: "event",
	25: "operator",
	26: "type_parameter",
}

// SymbolKindString maps the LSP numeric SymbolKind to the lowercase string
// the gateway reports at its HTTP boundary.
func SymbolKindString(k lsp.SymbolKind) string {
	if s, ok := symbolKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// GotoDefinitionResponse decodes the three shapes textDocument/definition is
// allowed to return on the wire: a single Location, an array of Location, or
// an array of LocationLink. Locations() normalizes all three to []Location.
type GotoDefinitionResponse struct {
	single *lsp.Location
	multi  []lsp.Location
	links  []LocationLink
}

// UnmarshalJSON sniffs which of the three shapes raw holds.
func (g *GotoDefinitionResponse) UnmarshalJSON(raw []byte) error {
	trimmed := trimLeadingSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if trimmed[0] != '[' {
		var loc lsp.Location
		if err := json.Unmarshal(raw, &loc); err != nil {
			return err
		}
		g.single = &loc
		return nil
	}

	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if len(probe) == 0 {
		g.multi = []lsp.Location{}
		return nil
	}
	var linkProbe struct {
		TargetURI *lsp.DocumentURI `json:"targetUri"`
	}
	_ = json.Unmarshal(probe[0], &linkProbe)
	if linkProbe.TargetURI != nil {
		var links []LocationLink
		if err := json.Unmarshal(raw, &links); err != nil {
			return err
		}
		g.links = links
		return nil
	}
	var locs []lsp.Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		return err
	}
	g.multi = locs
	return nil
}

// Locations normalizes all three goto-definition wire shapes to Location,
// using TargetSelectionRange as the authoritative range for LocationLink
// entries (the narrower, name-only span rather than the enclosing
// declaration range).
func (g *GotoDefinitionResponse) Locations() []lsp.Location {
	switch {
	case g == nil:
		return nil
	case g.single != nil:
		return []lsp.Location{*g.single}
	case g.links != nil:
		out := make([]lsp.Location, 0, len(g.links))
		for _, l := range g.links {
			out = append(out, lsp.Location{URI: l.TargetURI, Range: l.TargetSelectionRange})
		}
		return out
	default:
		return g.multi
	}
}

func trimLeadingSpace(raw []byte) []byte {
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return raw[i:]
}
