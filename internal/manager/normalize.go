package manager

import (
	"sort"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// normalizeRanges sorts a slice of FileRange by (path, line, character) at
// the start position, the stable ordering callers rely on so results
// are deterministic across repeated requests.
func normalizeRanges(ranges []model.FileRange) []model.FileRange {
	out := append([]model.FileRange{}, ranges...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Range.Start.Compare(out[j].Range.Start) < 0
	})
	return out
}
