package notify

import (
	"context"
	"sync"

	"github.com/gen2brain/beeep"
)

// Desktop raises notifications through the platform notification daemon.
// Desktop environments have no runtime permission prompt the way browsers
// do, so the undetermined state is resolved by probing the daemon once: a
// delivery failure demotes the permission to denied and stays silent from
// then on.
type Desktop struct {
	mu   sync.Mutex
	perm Permission
	icon string
}

// NewDesktop builds a desktop notifier. appName labels notifications in the
// daemon; icon may be empty.
func NewDesktop(appName, icon string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{perm: PermissionUndetermined, icon: icon}
}

// Permission returns the current state without touching the daemon.
func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm
}

// RequestPermission probes the daemon availability once.
func (d *Desktop) RequestPermission(_ context.Context) (Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.perm != PermissionUndetermined {
		return d.perm, nil
	}
	// There is nothing to ask on desktop platforms; assume granted and let
	// the first delivery failure flip the decision.
	d.perm = PermissionGranted
	return d.perm, nil
}

// Notify delivers the note, demoting the permission on failure.
func (d *Desktop) Notify(_ context.Context, note Note) error {
	if err := beeep.Notify(note.Title, note.Body, d.icon); err != nil {
		d.mu.Lock()
		d.perm = PermissionDenied
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.perm = PermissionGranted
	d.mu.Unlock()
	return nil
}
