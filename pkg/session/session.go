package session

import "errors"

var (
	// ErrClosed indicates the store can no longer be mutated.
	ErrClosed = errors.New("session: store closed")
	// ErrWatcherClosed indicates the token watcher was already shut down.
	ErrWatcherClosed = errors.New("session: watcher closed")
)

// Source identifies which producer observed a credential change. Local
// mutations and out-of-process file mutations stay distinct all the way to
// the subscriber so callers can tell "this process logged out" from "another
// process logged out".
type Source int

const (
	// SourceLocal marks a mutation made through this store instance.
	SourceLocal Source = iota
	// SourceExternal marks a mutation observed on the shared token file.
	SourceExternal
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Change describes a single credential mutation. Exactly one Change is
// delivered per Set or Clear, before the mutating call returns.
type Change struct {
	Source        Source
	Authenticated bool
}

// Listener receives credential changes. Listeners run synchronously on the
// mutating goroutine and must not block.
type Listener func(Change)

// Store is the single source of truth for the session token. Reads are pure;
// every mutation emits exactly one Change to all subscribers.
type Store interface {
	// Set replaces the current token.
	Set(token string) error

	// Get returns the current token. The boolean is false when no session
	// exists.
	Get() (string, bool)

	// Clear removes the token. Clearing an already-empty store is a no-op
	// apart from re-emitting the change signal.
	Clear() error

	// Authenticated reports whether a token is currently held.
	Authenticated() bool

	// Subscribe registers a listener and returns its cancel function.
	Subscribe(fn Listener) (cancel func())
}
