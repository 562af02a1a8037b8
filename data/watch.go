package data

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lixenwraith/battle-director/core"
)

// Watcher hot-reloads yaml tables when the file changes on disk
// Bursty editor saves are debounced; a reload that fails to parse keeps
// the previous tables live
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	path    string
	log     *log.Logger
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher starts watching the table file's directory
func NewWatcher(path string, store *Store, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		store:   store,
		path:    path,
		log:     logger,
		closeCh: make(chan struct{}),
	}
	core.Go(watcher.run)
	return watcher, nil
}

// Close stops the watcher, idempotent
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	var lastReload time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Clean(event.Name), filepath.Clean(w.path)) {
				continue
			}
			now := time.Now()
			if now.Sub(lastReload) < 100*time.Millisecond {
				continue
			}
			lastReload = now
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Printf("table watcher: %v", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	t, err := Load(w.path)
	if err != nil {
		w.log.Printf("table reload failed, keeping previous: %v", err)
		return
	}
	w.store.Replace(t)
	w.log.Printf("tables reloaded from %s", w.path)
}
