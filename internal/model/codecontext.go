package model

// CodeContext pairs a FileRange with the source text it spans, attached to
// find-definition/find-references responses when a caller opts in via
// include_source_code / include_code_context_lines.
type CodeContext struct {
	FileRange  FileRange `json:"file_range"`
	SourceCode string    `json:"source_code"`
}
