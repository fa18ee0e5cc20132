// Package workspace implements the gateway's Workspace Document Index: a
// cached, glob-scoped view of the files under a mounted root, re-read on
// demand. A watched filesystem change invalidates only the changed path;
// a pattern update clears the whole cache.
package workspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// DefaultExcludePatterns are always applied on top of any caller-supplied
// exclude list.
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/.*/**",
	"**/dist/**",
	"**/target/**",
	"**/build/**",
	".git/**",
}

// Index caches file contents under Root, scoped by include/exclude glob
// patterns, and serves range-clamped reads. A single Index instance is
// shared by every per-language client rooted at the same directory.
type Index struct {
	Root string

	mu       sync.RWMutex
	cache    map[string]*string // nil marks "known to exist, not yet read"
	include  []string
	exclude  []string
	gitignore []string
}

// New creates an Index rooted at root with the given include patterns; the
// DefaultExcludePatterns are always merged in behind any caller excludes.
func New(root string, include, exclude []string) *Index {
	idx := &Index{
		Root:    root,
		cache:   make(map[string]*string),
		include: include,
		exclude: append(append([]string{}, exclude...), DefaultExcludePatterns...),
	}
	idx.loadGitignore()
	return idx
}

// loadGitignore parses the workspace-root .gitignore, if any, into
// doublestar-compatible exclude patterns. Only the root file is honored;
// nested .gitignore files are not composed (a deliberate scope cut from a
// full VCS-ignore walker).
func (idx *Index) loadGitignore() {
	data, err := os.ReadFile(filepath.Join(idx.Root, ".gitignore"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		if !strings.Contains(line, "*") {
			line = line + "/**"
		} else if !strings.HasSuffix(line, "/**") && !strings.Contains(filepath.Base(line), ".") {
			line = line + "/**"
		}
		idx.gitignore = append(idx.gitignore, line)
	}
}

// UpdatePatterns replaces the include/exclude pattern set and invalidates
// the cache, matching the original manager's update_patterns + implicit
// re-walk on next list_files.
func (idx *Index) UpdatePatterns(include, exclude []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.include = include
	idx.exclude = append(append([]string{}, exclude...), DefaultExcludePatterns...)
	idx.cache = make(map[string]*string)
}

// Invalidate clears the whole cache, as UpdatePatterns also does; ordinary
// filesystem events go through InvalidatePath instead.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cache = make(map[string]*string)
}

// InvalidatePath drops the cached content for one workspace-relative path,
// keeping (or creating) the key so the next read re-fetches from disk. A
// path outside the include/exclude patterns is ignored.
func (idx *Index) InvalidatePath(relPath string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.matches(relPath) {
		return
	}
	idx.cache[relPath] = nil
}

func (idx *Index) matches(relPath string) bool {
	slashPath := filepath.ToSlash(relPath)
	included := len(idx.include) == 0
	for _, pat := range idx.include {
		if ok, _ := doublestar.Match(pat, slashPath); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pat := range append(idx.exclude, idx.gitignore...) {
		if ok, _ := doublestar.Match(pat, slashPath); ok {
			return false
		}
	}
	return true
}

// ListFiles walks Root once (caching the result set) and returns every
// workspace-relative path that matches the current include/exclude patterns.
func (idx *Index) ListFiles() ([]string, error) {
	idx.mu.RLock()
	if len(idx.cache) > 0 {
		paths := make([]string, 0, len(idx.cache))
		for p := range idx.cache {
			paths = append(paths, p)
		}
		idx.mu.RUnlock()
		return paths, nil
	}
	idx.mu.RUnlock()

	var found []string
	err := filepath.Walk(idx.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(idx.Root, path)
		if err != nil {
			return nil
		}
		if idx.matches(rel) {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: list files under %s: %w", idx.Root, err)
	}

	idx.mu.Lock()
	for _, p := range found {
		idx.cache[p] = nil
	}
	idx.mu.Unlock()
	return found, nil
}

// ReadSourceCode returns the full content of relPath, populating the cache
// on first read. Content with invalid UTF-8 is decoded lossily, matching the
// original's from_utf8_lossy fallback; the caller is only warned, not failed.
func (idx *Index) ReadSourceCode(relPath string) (string, error) {
	idx.mu.RLock()
	if c, ok := idx.cache[relPath]; ok && c != nil {
		content := *c
		idx.mu.RUnlock()
		return content, nil
	}
	idx.mu.RUnlock()

	full := filepath.Join(idx.Root, relPath)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("workspace: read %s: %w", relPath, err)
	}
	if !isValidUTF8(data) {
		log.Printf("workspace: %s contains invalid UTF-8, decoding lossily", relPath)
	}
	content := string(data)

	idx.mu.Lock()
	idx.cache[relPath] = &content
	idx.mu.Unlock()
	return content, nil
}

// ReadRange reads relPath and extracts the text inside rng, clamping to
// content bounds exactly as the original extract_range does: an out-of-range
// end line is pulled back to the last line, an inverted range yields "", and
// character offsets on the first/last line are clamped per-line rather than
// causing an error.
func (idx *Index) ReadRange(relPath string, rng model.Range) (string, error) {
	content, err := idx.ReadSourceCode(relPath)
	if err != nil {
		return "", err
	}
	return ExtractRange(content, rng), nil
}

// ExtractRange slices content to the lines/characters spanned by rng,
// clamping out-of-bounds line/character values instead of erroring.
func ExtractRange(content string, rng model.Range) string {
	lines := strings.Split(content, "\n")
	// strings.Split on "" yields [""], but an empty file has zero lines.
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	total := len(lines)

	startLine := rng.Start.Line
	endLine := rng.End.Line
	if endLine >= total {
		endLine = total - 1
	}
	if startLine > endLine {
		return ""
	}

	selected := append([]string{}, lines[startLine:endLine+1]...)
	for i := range selected {
		runes := []rune(selected[i])
		n := len(runes)
		switch {
		case startLine == endLine:
			start := clamp(rng.Start.Character, n)
			end := clamp(rng.End.Character, n)
			if start > end {
				selected[i] = ""
			} else {
				selected[i] = string(runes[start:end])
			}
		case i == 0:
			start := clamp(rng.Start.Character, n)
			selected[i] = string(runes[start:])
		case i == len(selected)-1:
			end := clamp(rng.End.Character, n)
			selected[i] = string(runes[:end])
		}
	}
	return strings.Join(selected, "\n")
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

// debounce coalesces a burst of filesystem events into a single call to fn,
// firing at most once per interval after the last event.
type debounce struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
}

func newDebounce(interval time.Duration) *debounce {
	return &debounce{interval: interval}
}

func (d *debounce) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}
