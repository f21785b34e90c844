// Package pipeline tracks server-side batch jobs the backend exposes no
// status endpoint for. Completion is inferred from side effects on the
// article listing: a changed newest-item marker, or an item published after
// the job started. The inference is a heuristic by contract, so the tracker
// tolerates transient poll failures and reports a weaker "timed out" state
// when the budget runs out before the predicate fires.
package pipeline

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyRunning rejects a trigger while a run of the same kind is
	// active.
	ErrAlreadyRunning = errors.New("pipeline: job already running")
	// ErrAborted marks a run ended by an explicit Abort call.
	ErrAborted = errors.New("pipeline: run aborted")
	// ErrUnknownJob is returned by Abort for kinds with no active run.
	ErrUnknownJob = errors.New("pipeline: no active run")
)

// State is the lifecycle position of one job run.
type State int

const (
	// StateIdle means the run has been created but not yet triggered.
	StateIdle State = iota
	// StateRunning means the trigger succeeded and polling is underway.
	StateRunning
	// StateCompleted means the completion predicate fired.
	StateCompleted
	// StateTimedOut means the attempt budget ran out before the predicate
	// fired. The job has likely finished anyway; the caller is told to
	// check manually.
	StateTimedOut
	// StateFailed means the trigger call itself failed, or the run was
	// aborted. No polling happens after a failed trigger.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one of the three end states.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateTimedOut, StateFailed:
		return true
	default:
		return false
	}
}

// Item is one observable record on the listing endpoint, newest first.
type Item struct {
	ID          int64
	PublishedAt time.Time
}

// Marker is the baseline snapshot captured immediately before a trigger: the
// identifier of the newest record at that moment. A nil *Marker means the
// listing was empty when the job started, in which case any item at all
// counts as completion.
type Marker struct {
	ID int64
}

// JobRun is one tracked job instance.
type JobRun struct {
	ID        string
	Kind      string
	StartedAt time.Time
	Baseline  *Marker
	Attempt   uint
	State     State
}
