package workspace

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the watcher waits after the last filesystem
// event before broadcasting an invalidation, using a ~2s
// coalescing window.
const DebounceInterval = 2 * time.Second

// Watcher recursively watches a root directory and, after a burst of
// changes settles, invalidates the changed paths in every registered Index,
// replacing the reference implementation's tokio broadcast channel with a
// debounced fan-out to subscribers.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	debounce *debounce
	subs     []*Index

	mu      sync.Mutex
	pending map[string]bool
}

// NewWatcher starts watching every directory under root (recursively) and
// returns a Watcher whose Close stops it. subs have their changed entries
// invalidated together on every debounced change.
func NewWatcher(root string, subs ...*Index) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("workspace: watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		fsw:      fsw,
		debounce: newDebounce(DebounceInterval),
		subs:     subs,
		pending:  make(map[string]bool),
	}

	if err := addRecursive(fsw, root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("workspace: watch %s: %w", root, err)
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if rel, err := filepath.Rel(w.root, event.Name); err == nil {
				w.mu.Lock()
				w.pending[rel] = true
				w.mu.Unlock()
			}
			// New directories need their own watch before events inside
			// them can be seen.
			if event.Op&fsnotify.Create != 0 {
				_ = addRecursive(w.fsw, event.Name)
			}
			w.debounce.trigger(w.flush)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("workspace: watch error: %v", err)
		}
	}
}

// flush invalidates every accumulated path in every subscribed index once
// the debounce window has settled.
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := w.pending
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	log.Printf("workspace: invalidating %d changed path(s)", len(paths))
	for rel := range paths {
		for _, idx := range w.subs {
			idx.InvalidatePath(rel)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return walkDirs(root, func(dir string) error {
		return fsw.Add(dir)
	})
}
