package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher is the second producer feeding the session event bus: it surfaces
// token-file mutations made by other processes as SourceExternal changes on
// the wrapped FileStore. The two producers are merged at the subscription
// boundary, never folded into one ambiguous signal.
type Watcher struct {
	store   *FileStore
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewWatcher starts watching the store's token file for external mutations.
func NewWatcher(store *FileStore) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: the token file itself is removed on logout and
	// recreated on login, which breaks per-file watches.
	if err := fsw.Add(filepath.Dir(store.Path())); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		store:   store,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	w.closed = true
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	target := w.store.Path()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != target {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				w.store.applyExternal("", false)
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				w.refresh()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal to the session; the next
			// in-process mutation still signals normally.
		}
	}
}

func (w *Watcher) refresh() {
	data, err := os.ReadFile(w.store.Path())
	if err != nil {
		if os.IsNotExist(err) {
			w.store.applyExternal("", false)
		}
		return
	}
	w.store.applyExternal(string(data), true)
}
