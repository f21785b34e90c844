package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// TokenFileName is the fixed storage key for the persisted session token.
const TokenFileName = "accessToken"

// FileStore persists the session token as a single string value under a fixed
// file name. Persistence only spans the lifetime of one logical session:
// construction unconditionally purges any token left behind by a previous
// process, so a restart always begins unauthenticated.
type FileStore struct {
	mu        sync.RWMutex
	path      string
	lock      *flock.Flock
	token     string
	present   bool
	closed    bool
	listeners map[int]Listener
	nextID    int
}

// NewFileStore creates the store rooted at dir, purging any persisted token.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("session: token directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: create token dir: %w", err)
	}
	path := filepath.Join(dir, TokenFileName)
	s := &FileStore{
		path:      path,
		lock:      flock.New(path + ".lock"),
		listeners: map[int]Listener{},
	}
	// Sessions never survive a restart.
	if err := s.removeFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the persisted token file.
func (s *FileStore) Path() string {
	return s.path
}

// Set stores the token in memory and on disk, then signals subscribers.
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.writeFile(token); err != nil {
		s.mu.Unlock()
		return err
	}
	s.token = token
	s.present = true
	fns := s.snapshotLocked()
	s.mu.Unlock()

	emit(fns, Change{Source: SourceLocal, Authenticated: true})
	return nil
}

// Get returns the cached token without touching the filesystem.
func (s *FileStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// Clear removes the token from memory and disk, then signals subscribers.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.removeFile(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.token = ""
	s.present = false
	fns := s.snapshotLocked()
	s.mu.Unlock()

	emit(fns, Change{Source: SourceLocal, Authenticated: false})
	return nil
}

// Authenticated reports whether a token is held.
func (s *FileStore) Authenticated() bool {
	_, ok := s.Get()
	return ok
}

// Subscribe registers fn for future changes.
func (s *FileStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close stops accepting mutations. Reads keep working on the cached value.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// applyExternal reconciles the cache with a token observed on disk by the
// watcher. It emits only when the effective state actually changed, so file
// echoes of this process's own writes stay silent.
func (s *FileStore) applyExternal(token string, present bool) {
	s.mu.Lock()
	if s.present == present && s.token == token {
		s.mu.Unlock()
		return
	}
	s.token = token
	s.present = present
	fns := s.snapshotLocked()
	s.mu.Unlock()

	emit(fns, Change{Source: SourceExternal, Authenticated: present})
}

func (s *FileStore) snapshotLocked() []Listener {
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (s *FileStore) writeFile(token string) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("session: lock token file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write token: %w", err)
	}
	return nil
}

func (s *FileStore) removeFile() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("session: lock token file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove token: %w", err)
	}
	return nil
}
