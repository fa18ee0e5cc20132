package languages

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/codelens-dev/codelens-gateway/internal/lspclient"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

var cppSourceExts = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
}

// cppLang is clangd. Like typescript-language-server it needs every
// workspace file opened eagerly (DidOpenEager) and, when no
// compile_commands.json exists,
// a synthesized minimal one so the indexer has a command line to work from
// (the C/C++ post-initialize action: synthesize-over-run,
// option rather than shelling out to `compiledb`).
type cppLang struct{ base }

func (cppLang) DidOpenEager() bool { return true }

func (cppLang) AfterInitialize(ctx context.Context, c *lspclient.Client) error {
	path := filepath.Join(c.Root, "compile_commands.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var entries []compileCommand
	err := filepath.Walk(c.Root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !cppSourceExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		dir := filepath.Dir(p)
		entries = append(entries, compileCommand{
			Directory: dir,
			Command:   "cc -c " + p,
			File:      p,
		})
		return nil
	})
	if err != nil {
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

type compileCommand struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

// CPP launches clangd.
func CPP() cppLang {
	return cppLang{base{
		kind:    model.CPP,
		markers: []string{"compile_commands.json", "Makefile", ".clangd", ".git"},
		command: "clangd",
		args:    []string{"--background-index"},
	}}
}
