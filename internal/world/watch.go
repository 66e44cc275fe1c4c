package world

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/funvibe/typeset/internal/config"
	"github.com/funvibe/typeset/internal/file"
)

// Watcher reports changed document sources under a project root, for
// recompile-on-save workflows. Only files with recognized source
// extensions are reported.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan file.ID
	errs   chan error
	done   chan struct{}
}

// Watch starts watching root and all its subdirectories.
func Watch(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fs:     fw,
		events: make(chan file.ID, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !isSourcePath(ev.Name) {
				continue
			}
			select {
			case w.events <- file.Intern(ev.Name):
			case <-w.done:
				return
			}
		}
	}
}

// Events yields the IDs of changed source files. Closed after Close.
func (w *Watcher) Events() <-chan file.ID {
	return w.events
}

// Errors yields watcher errors, if any occurred.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func isSourcePath(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
