// Package notify is the permission-gated notification sink used to surface
// job completion. Notification failure is never an error anywhere in the
// client; a denied or unavailable sink degrades to silence.
package notify

import "context"

// Permission mirrors the three-state OS notification permission.
type Permission int

const (
	// PermissionUndetermined means no permission decision exists yet.
	PermissionUndetermined Permission = iota
	// PermissionGranted allows raising notifications.
	PermissionGranted
	// PermissionDenied suppresses notifications silently.
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Note is one user-facing notification.
type Note struct {
	Title string
	Body  string
}

// Notifier raises OS-level notifications behind a permission gate.
type Notifier interface {
	// Permission returns the current permission state without prompting.
	Permission() Permission

	// RequestPermission resolves an undetermined state, prompting or
	// probing as the platform requires, and returns the resulting state.
	RequestPermission(ctx context.Context) (Permission, error)

	// Notify raises the note. Callers should gate on Permission first;
	// Post implements the canonical flow.
	Notify(ctx context.Context, note Note) error
}

// Post runs the canonical permission flow: granted notifies immediately,
// undetermined requests permission once and notifies only if it was granted,
// denied stays silent. Errors are swallowed; the return value reports only
// whether a notification was actually raised.
func Post(ctx context.Context, n Notifier, note Note) bool {
	if n == nil {
		return false
	}
	switch n.Permission() {
	case PermissionGranted:
		return n.Notify(ctx, note) == nil
	case PermissionUndetermined:
		perm, err := n.RequestPermission(ctx)
		if err != nil || perm != PermissionGranted {
			return false
		}
		return n.Notify(ctx, note) == nil
	default:
		return false
	}
}
