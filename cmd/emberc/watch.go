package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"ember/internal/compiler"
)

var watchLog = commonlog.GetLogger("ember.watch")

// settle is how long the watcher waits for a burst of writes to end.
const settle = 100 * time.Millisecond

// watchAndBuild rebuilds path whenever it or one of its imports changes,
// until interrupted. Directories are watched rather than files because
// editors often save by renaming a temporary file over the original.
func watchAndBuild(path string, cfg config) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	dirs := map[string]bool{}
	files := map[string]bool{}
	rebuild := func() {
		result, ok := build(abs, cfg)
		next := watchedFiles(abs, result)
		if !ok {
			// imports are only known after a successful check
			for file := range files {
				next[file] = true
			}
		}
		files = next
		for file := range files {
			dir := filepath.Dir(file)
			if dirs[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				watchLog.Warningf("cannot watch %s: %s", dir, err)
				continue
			}
			dirs[dir] = true
		}
		color.Cyan("Watching %d file(s) for changes", len(files))
	}

	rebuild()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			watchLog.Debugf("%s: %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			rebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			watchLog.Errorf("watch error: %s", err)
		case <-interrupt:
			return nil
		}
	}
}

// watchedFiles is the source plus every file module it imported in the
// last build. Standard modules have no file.
func watchedFiles(path string, result *compiler.Result) map[string]bool {
	files := map[string]bool{path: true}
	if result == nil {
		return files
	}
	for _, imp := range result.Imports() {
		if filepath.IsAbs(imp) {
			files[filepath.Clean(imp)] = true
		}
	}
	return files
}
