package notify

import (
	"context"
	"sync"
)

// Memory is an in-process notifier for tests and headless embeddings.
type Memory struct {
	mu             sync.Mutex
	perm           Permission
	grantOnRequest bool
	requests       int
	notes          []Note
}

// NewMemory builds a notifier starting in the given permission state.
// grantOnRequest decides how an undetermined state resolves when asked.
func NewMemory(perm Permission, grantOnRequest bool) *Memory {
	return &Memory{perm: perm, grantOnRequest: grantOnRequest}
}

// Permission returns the current state.
func (m *Memory) Permission() Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perm
}

// RequestPermission resolves the undetermined state per configuration.
func (m *Memory) RequestPermission(_ context.Context) (Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if m.perm == PermissionUndetermined {
		if m.grantOnRequest {
			m.perm = PermissionGranted
		} else {
			m.perm = PermissionDenied
		}
	}
	return m.perm, nil
}

// Notify records the note.
func (m *Memory) Notify(_ context.Context, note Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, note)
	return nil
}

// Notes returns a copy of everything delivered so far.
func (m *Memory) Notes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Note, len(m.notes))
	copy(out, m.notes)
	return out
}

// Requests returns how many times permission was requested.
func (m *Memory) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}
