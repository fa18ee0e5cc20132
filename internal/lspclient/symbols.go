package lspclient

import (
	"encoding/json"

	"github.com/sourcegraph/go-lsp"

	"github.com/codelens-dev/codelens-gateway/internal/protocol"
)

// hierOrFlat decodes one element of a textDocument/documentSymbol response,
// which may be a hierarchical DocumentSymbol or a flat SymbolInformation
// depending on whether the server honors hierarchicalDocumentSymbolSupport.
// The two shapes are told apart by the presence of "location" (flat only).
type hierOrFlat struct {
	isHier bool
	hier   protocol.DocumentSymbol
	flat   lsp.SymbolInformation
}

func (h *hierOrFlat) UnmarshalJSON(raw []byte) error {
	var probe struct {
		Location *json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if probe.Location != nil {
		h.isHier = false
		return json.Unmarshal(raw, &h.flat)
	}
	h.isHier = true
	return json.Unmarshal(raw, &h.hier)
}
