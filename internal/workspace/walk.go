package workspace

import (
	"os"
	"path/filepath"
)

// skipDirs are never descended into while registering fsnotify watches,
// independent of the Index's own include/exclude patterns: watching inside
// them would be pure overhead (dependency trees, VCS internals).
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"target":       true,
}

// walkDirs invokes fn once per directory under root, skipping skipDirs.
func walkDirs(root string, fn func(dir string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if skipDirs[filepath.Base(path)] {
			return filepath.SkipDir
		}
		return fn(path)
	})
}
