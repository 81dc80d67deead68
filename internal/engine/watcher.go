package engine

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches rapid filesystem events (editor save storms,
// build-tool touches) into one incremental run.
const debounceWindow = 500 * time.Millisecond

// Watcher re-runs incremental pipelines when source files change.
type Watcher struct {
	eng   *Engine
	onRun func(*Summary)
	fsw   *fsnotify.Watcher
}

// NewWatcher creates a watcher over the engine's project root. onRun, when
// non-nil, receives the summary of each completed run.
func NewWatcher(eng *Engine, onRun func(*Summary)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{eng: eng, onRun: onRun, fsw: fsw}, nil
}

// Watch blocks, running an incremental pipeline whenever watched source
// files change, until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.fsw.Close()

	root, err := filepath.Abs(w.eng.cfg.Root)
	if err != nil {
		return err
	}
	if err := w.addDirs(root); err != nil {
		return err
	}
	log.Printf("[watcher] watching %s", root)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			// New directories must be watched as they appear.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addDirs(ev.Name)
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			timerCh = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watcher] error: %v", err)

		case <-timerCh:
			timerCh = nil
			summary, err := w.eng.Run(ctx, Options{})
			if err != nil {
				log.Printf("[watcher] incremental run failed: %v", err)
				continue
			}
			log.Printf("[watcher] incremental run: %d parsed, %d replacements",
				summary.FilesParsed, summary.Replacements)
			if w.onRun != nil {
				w.onRun(summary)
			}
		}
	}
}

// relevant filters events down to supported source files outside the output
// directory.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.ToSlash(ev.Name)
	if strings.Contains(name, "/"+w.eng.cfg.Output.Dir+"/") {
		return false
	}
	if filepath.Base(name) == "" {
		return false
	}
	return w.eng.coord.Registry().Supports(ev.Name)
}

// addDirs registers a directory tree with the fsnotify watcher, skipping
// excluded directories.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil {
			rel = filepath.ToSlash(rel)
			if rel == w.eng.cfg.Output.Dir || w.eng.matchesAny(w.eng.cfg.Exclude, rel) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("[watcher] cannot watch %s: %v", path, err)
		}
		return nil
	})
}
