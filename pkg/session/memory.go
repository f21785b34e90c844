package session

import "sync"

// MemoryStore keeps the session token in process memory. It is the store of
// choice for tests and for embedding the client in another program that
// manages its own persistence.
type MemoryStore struct {
	mu        sync.RWMutex
	token     string
	present   bool
	listeners map[int]Listener
	nextID    int
}

// NewMemoryStore returns an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listeners: map[int]Listener{}}
}

// Set replaces the current token and signals subscribers.
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.present = true
	fns := s.snapshotLocked()
	s.mu.Unlock()

	emit(fns, Change{Source: SourceLocal, Authenticated: true})
	return nil
}

// Get returns the current token without side effects.
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// Clear removes the token and signals subscribers, even when already empty.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.present = false
	fns := s.snapshotLocked()
	s.mu.Unlock()

	emit(fns, Change{Source: SourceLocal, Authenticated: false})
	return nil
}

// Authenticated reports whether a token is held.
func (s *MemoryStore) Authenticated() bool {
	_, ok := s.Get()
	return ok
}

// Subscribe registers fn for future changes.
func (s *MemoryStore) Subscribe(fn Listener) func() {
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

func (s *MemoryStore) snapshotLocked() []Listener {
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// emit delivers ch to every listener before the mutating call returns, which
// keeps the "signal fires before control continues" ordering guarantee.
func emit(fns []Listener, ch Change) {
	for _, fn := range fns {
		fn(ch)
	}
}
