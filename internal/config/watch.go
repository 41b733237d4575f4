package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce groups the write bursts editors produce when saving a file.
const debounce = 300 * time.Millisecond

// Watcher reloads the config file on change and pushes the values into a
// Live settings store.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	live    *Live
	onErr   func(error)
	done    chan struct{}
}

// Watch starts watching path's directory and applies the file to live on
// every settled change. onErr, if non-nil, receives reload failures.
func Watch(path string, live *Live, onErr func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the file: editors replace files on
	// save, which would silently drop a file-level watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &Watcher{
		watcher: fw,
		path:    path,
		live:    live,
		onErr:   onErr,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-w.done:
			return
		case <-timer.C:
			if pending {
				pending = false
				w.reload()
			}
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.report(err)
		return
	}
	w.live.ApplyFile(cfg)
}

func (w *Watcher) report(err error) {
	if w.onErr != nil {
		w.onErr(err)
	}
}
