package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/codelens-dev/codelens-gateway/internal/manager"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// handleDefinitionsInFile serves GET /symbol/definitions-in-file.
func (s *Server) handleDefinitionsInFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("file_path")
	if path == "" {
		badRequest(w, "file_path is required")
		return
	}
	symbols, err := s.mgr.DefinitionsInFile(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, symbols)
}

type findDefinitionRequest struct {
	Position           model.FilePosition `json:"position"`
	IncludeSourceCode  bool                `json:"include_source_code"`
	IncludeRawResponse bool                `json:"include_raw_response"`
}

type findDefinitionResponse struct {
	Definitions          []model.FileRange  `json:"definitions"`
	SelectedIdentifier   *model.Identifier   `json:"selected_identifier"`
	SourceCodeContext    *model.CodeContext  `json:"source_code_context,omitempty"`
	RawResponse          any                 `json:"raw_response,omitempty"`
}

// handleFindDefinition serves POST /symbol/find-definition.
func (s *Server) handleFindDefinition(w http.ResponseWriter, r *http.Request) {
	var req findDefinitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path, pos := req.Position.Path, req.Position.Position

	defs, err := s.mgr.FindDefinition(r.Context(), path, pos)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := findDefinitionResponse{Definitions: defs}
	if ident, ok, _, err := s.mgr.SelectedIdentifier(r.Context(), path, pos); err == nil && ok {
		resp.SelectedIdentifier = &ident
	}
	if req.IncludeSourceCode && len(defs) > 0 {
		if src, err := s.mgr.ReadSourceCode(r.Context(), defs[0].Path, &defs[0].Range); err == nil {
			resp.SourceCodeContext = &model.CodeContext{FileRange: defs[0], SourceCode: src}
		}
	}
	if req.IncludeRawResponse {
		resp.RawResponse = defs
	}
	writeJSON(w, http.StatusOK, resp)
}

type findReferencesRequest struct {
	IdentifierPosition  model.FilePosition `json:"identifier_position"`
	IncludeCodeContextLines int            `json:"include_code_context_lines"`
	IncludeRawResponse  bool               `json:"include_raw_response"`
}

type findReferencesResponse struct {
	References         []model.FileRange   `json:"references"`
	SelectedIdentifier model.Identifier     `json:"selected_identifier"`
	Context            []model.CodeContext  `json:"context,omitempty"`
	RawResponse        any                  `json:"raw_response,omitempty"`
}

// handleFindReferences serves POST /symbol/find-references. Unlike
// find-definition, a missing identifier at the given position is a 400
// error naming the three closest candidates.
func (s *Server) handleFindReferences(w http.ResponseWriter, r *http.Request) {
	var req findReferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path, pos := req.IdentifierPosition.Path, req.IdentifierPosition.Position

	ident, ok, closest, err := s.mgr.SelectedIdentifier(r.Context(), path, pos)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		badRequest(w, "no identifier at %s:%s; closest candidates: %s", path, pos, formatClosest(closest))
		return
	}

	refs, err := s.mgr.FindReferences(r.Context(), path, pos)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := findReferencesResponse{References: refs, SelectedIdentifier: ident}
	if req.IncludeCodeContextLines > 0 {
		resp.Context = make([]model.CodeContext, 0, len(refs))
		for _, ref := range refs {
			rng := contextWindow(ref.Range, req.IncludeCodeContextLines)
			src, err := s.mgr.ReadSourceCode(r.Context(), ref.Path, &rng)
			if err != nil {
				continue
			}
			resp.Context = append(resp.Context, model.CodeContext{FileRange: model.FileRange{Path: ref.Path, Range: rng}, SourceCode: src})
		}
	}
	if req.IncludeRawResponse {
		resp.RawResponse = refs
	}
	writeJSON(w, http.StatusOK, resp)
}

// contextWindow expands rng by lines of context above and below, clamped to
// zero at the top (the reader clamps the bottom itself).
func contextWindow(rng model.Range, lines int) model.Range {
	start := rng.Start.Line - lines
	if start < 0 {
		start = 0
	}
	return model.Range{
		Start: model.Position{Line: start, Character: 0},
		End:   model.Position{Line: rng.End.Line + lines, Character: 0},
	}
}

type findReferencedSymbolsRequest struct {
	IdentifierPosition model.FilePosition `json:"identifier_position"`
	FullScan           bool               `json:"full_scan"`
}

type referencedSymbolOut struct {
	Reference   model.Identifier `json:"reference"`
	Definitions []model.FileRange `json:"definitions"`
	Symbols     []model.Symbol    `json:"symbols,omitempty"`
}

type findReferencedSymbolsResponse struct {
	WorkspaceSymbols []referencedSymbolOut `json:"workspace_symbols"`
	ExternalSymbols  []referencedSymbolOut `json:"external_symbols"`
	NotFound         []referencedSymbolOut `json:"not_found"`
}

// handleFindReferencedSymbols serves POST /symbol/find-referenced-symbols.
// full_scan widens the initial reference scan to the looser rule-set; the
// resolver always uses the looser set once it starts chasing intra-symbol
// bindings regardless.
func (s *Server) handleFindReferencedSymbols(w http.ResponseWriter, r *http.Request) {
	var req findReferencedSymbolsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path, pos := req.IdentifierPosition.Path, req.IdentifierPosition.Position

	resolved, err := s.mgr.FindReferencedSymbols(r.Context(), path, pos, req.FullScan)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := findReferencedSymbolsResponse{}
	for _, rs := range resolved {
		out := referencedSymbolOut{Reference: rs.Reference, Definitions: rs.Definitions, Symbols: rs.Symbols}
		switch rs.Category {
		case manager.Workspace:
			resp.WorkspaceSymbols = append(resp.WorkspaceSymbols, out)
		case manager.External:
			resp.ExternalSymbols = append(resp.ExternalSymbols, out)
		default:
			resp.NotFound = append(resp.NotFound, out)
		}
	}
	sortReferencedSymbols(resp.WorkspaceSymbols)
	sortReferencedSymbols(resp.ExternalSymbols)
	sortReferencedSymbols(resp.NotFound)
	writeJSON(w, http.StatusOK, resp)
}

// sortReferencedSymbols orders one output list by the reference's
// (path, start line) so repeated requests return identical orderings.
func sortReferencedSymbols(list []referencedSymbolOut) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Reference.FileRange, list[j].Reference.FileRange
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Range.Start.Compare(b.Range.Start) < 0
	})
}

type findIdentifierRequest struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Position *model.Position `json:"position,omitempty"`
}

// handleFindIdentifier serves POST /symbol/find-identifier.
func (s *Server) handleFindIdentifier(w http.ResponseWriter, r *http.Request) {
	var req findIdentifierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Path == "" {
		badRequest(w, "name and path are required")
		return
	}
	identifiers, err := s.mgr.FindIdentifier(r.Context(), req.Path, req.Name, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identifiers": identifiers})
}

// handleListFiles serves GET /workspace/list-files.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.mgr.ListFiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

type readSourceCodeRequest struct {
	Path  string      `json:"path"`
	Range *model.Range `json:"range,omitempty"`
}

// handleReadSourceCode serves POST /workspace/read-source-code.
func (s *Server) handleReadSourceCode(w http.ResponseWriter, r *http.Request) {
	var req readSourceCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		badRequest(w, "path is required")
		return
	}
	content, err := s.mgr.ReadSourceCode(r.Context(), req.Path, req.Range)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"source_code": content})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		badRequest(w, "request body is required")
		return false
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid request body: %v", err)
		return false
	}
	return true
}

func formatClosest(closest []model.Identifier) string {
	out := ""
	for i, c := range closest {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s@%s", c.Name, c.FileRange.Range.Start)
	}
	return out
}
