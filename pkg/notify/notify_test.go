package notify

import (
	"context"
	"testing"
)

func TestPostWhenGranted(t *testing.T) {
	m := NewMemory(PermissionGranted, false)
	if !Post(context.Background(), m, Note{Title: "done"}) {
		t.Fatalf("granted permission must deliver")
	}
	notes := m.Notes()
	if len(notes) != 1 || notes[0].Title != "done" {
		t.Fatalf("notes = %+v", notes)
	}
	if m.Requests() != 0 {
		t.Fatalf("granted state must not be re-requested")
	}
}

func TestPostWhenDenied(t *testing.T) {
	m := NewMemory(PermissionDenied, true)
	if Post(context.Background(), m, Note{Title: "done"}) {
		t.Fatalf("denied permission must stay silent")
	}
	if len(m.Notes()) != 0 {
		t.Fatalf("notes = %+v", m.Notes())
	}
	if m.Requests() != 0 {
		t.Fatalf("a settled denial must not be re-requested")
	}
}

func TestPostResolvesUndeterminedOnce(t *testing.T) {
	m := NewMemory(PermissionUndetermined, true)
	if !Post(context.Background(), m, Note{Title: "first"}) {
		t.Fatalf("grant-on-request must deliver")
	}
	if !Post(context.Background(), m, Note{Title: "second"}) {
		t.Fatalf("later posts ride the settled grant")
	}
	if m.Requests() != 1 {
		t.Fatalf("permission requested %d times, want 1", m.Requests())
	}
	if len(m.Notes()) != 2 {
		t.Fatalf("notes = %+v", m.Notes())
	}
}

func TestPostUndeterminedDenied(t *testing.T) {
	m := NewMemory(PermissionUndetermined, false)
	if Post(context.Background(), m, Note{Title: "done"}) {
		t.Fatalf("a denied request must not deliver")
	}
	if m.Permission() != PermissionDenied {
		t.Fatalf("permission = %v, want denied after the request resolves", m.Permission())
	}
	if len(m.Notes()) != 0 {
		t.Fatalf("notes = %+v", m.Notes())
	}
}

func TestPostNilNotifier(t *testing.T) {
	if Post(context.Background(), nil, Note{Title: "done"}) {
		t.Fatalf("nil notifier must report undelivered")
	}
}
