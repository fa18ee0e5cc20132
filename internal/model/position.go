// Package model defines the data types shared across the gateway: LSP-unit
// positions and ranges, workspace-relative file locations, and the
// definition/identifier shapes returned to HTTP callers.
//
// Invariant: every Position and Range in this package is expressed in LSP
// units (0-based line, UTF-16 code-unit character offset). No function in
// this package performs any other unit conversion; callers that need to
// convert from byte offsets or rune counts must do so before constructing a
// Position.
package model

import "fmt"

// Position is a (line, character) pair, both 0-based.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Compare returns -1, 0, or 1 as p is less than, equal to, or greater than o,
// comparing line first, then character.
func (p Position) Compare(o Position) int {
	if p.Line != o.Line {
		if p.Line < o.Line {
			return -1
		}
		return 1
	}
	switch {
	case p.Character < o.Character:
		return -1
	case p.Character > o.Character:
		return 1
	default:
		return 0
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a half-open-looking but inclusive-on-both-endpoints span between
// two Positions. Invariant: Start <= End lexicographically. A zero-width
// Range (Start == End) is valid and contains exactly that one point.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos lies within r, inclusive of both endpoints.
func (r Range) Contains(pos Position) bool {
	return r.Start.Compare(pos) <= 0 && r.End.Compare(pos) >= 0
}

// FilePosition is a Position inside a specific workspace-relative file.
type FilePosition struct {
	Path     string   `json:"path"`
	Position Position `json:"position"`
}

// FileRange is a Range inside a specific workspace-relative file.
type FileRange struct {
	Path  string `json:"path"`
	Range Range  `json:"range"`
}

// Contains reports whether fp lies within fr: the paths must match, and the
// position must fall within fr.Range inclusive on both endpoints. Both
// containment checks in this codebase (this one, and the syntactic-match
// equivalent in internal/astbridge) are implemented in terms of this single
// method so they never disagree.
func (fr FileRange) Contains(fp FilePosition) bool {
	return fr.Path == fp.Path && fr.Range.Contains(fp.Position)
}
