package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inskhq/insk-go/pkg/notify"
	"github.com/inskhq/insk-go/pkg/pollwait"
	"github.com/inskhq/insk-go/pkg/telemetry"
)

// Defaults: poll every 10s, give up after 30 attempts (about five minutes of
// wall clock), and absorb up to 60s of clock skew between trigger time and
// item publish time.
const (
	DefaultInterval    = 10 * time.Second
	DefaultMaxAttempts = 30
	DefaultSkewWindow  = time.Minute
)

// Feed reads the observation endpoint, newest item first.
type Feed interface {
	Newest(ctx context.Context) ([]Item, error)
}

// Trigger starts the backend job. The call is fire-and-forget: the backend
// acknowledges and returns no job handle.
type Trigger func(ctx context.Context) error

// Config tunes a Tracker.
type Config struct {
	Interval    time.Duration
	MaxAttempts uint
	// SkewWindow is subtracted from the trigger time before comparing item
	// publish timestamps, so items stamped slightly before the trigger
	// still count.
	SkewWindow time.Duration
	Logger     zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.SkewWindow <= 0 {
		c.SkewWindow = DefaultSkewWindow
	}
	return c
}

// Tracker owns job-run state. At most one run per kind is active at a time;
// the tracker enforces this itself rather than trusting call-site
// discipline, since the trigger endpoint is not idempotent.
type Tracker struct {
	feed     Feed
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time

	mu     sync.Mutex
	active map[string]*activeRun
	last   map[string]JobRun
}

type activeRun struct {
	cancel context.CancelCauseFunc
}

// NewTracker builds a tracker over the given observation feed.
func NewTracker(feed Feed, notifier notify.Notifier, cfg Config) (*Tracker, error) {
	if feed == nil {
		return nil, fmt.Errorf("pipeline: feed required")
	}
	return &Tracker{
		feed:     feed,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		active:   map[string]*activeRun{},
		last:     map[string]JobRun{},
	}, nil
}

// Run triggers the job and blocks until a terminal state, polling the feed
// for evidence of completion. The returned JobRun always carries a terminal
// state; the error is non-nil only for rejected, failed or aborted runs.
func (t *Tracker) Run(ctx context.Context, kind string, trigger Trigger) (JobRun, error) {
	if trigger == nil {
		return JobRun{}, fmt.Errorf("pipeline: trigger required")
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	job := JobRun{
		ID:    uuid.NewString(),
		Kind:  kind,
		State: StateIdle,
	}

	t.mu.Lock()
	if _, busy := t.active[kind]; busy {
		t.mu.Unlock()
		return JobRun{}, ErrAlreadyRunning
	}
	t.active[kind] = &activeRun{cancel: cancel}
	t.mu.Unlock()

	started := t.now()
	defer func() {
		t.mu.Lock()
		delete(t.active, kind)
		t.last[kind] = job
		t.mu.Unlock()
		telemetry.RecordRun(ctx, telemetry.RunData{
			Kind:     kind,
			State:    job.State.String(),
			Attempts: int(job.Attempt),
			Duration: t.now().Sub(started),
		})
	}()

	log := t.cfg.Logger.With().Str("job", kind).Str("run", job.ID).Logger()

	// Baseline capture happens strictly before the trigger; it is the
	// comparison point for every later poll.
	items, err := t.feed.Newest(runCtx)
	if err != nil {
		job.State = StateFailed
		return job, fmt.Errorf("pipeline: baseline read: %w", err)
	}
	if len(items) > 0 {
		job.Baseline = &Marker{ID: items[0].ID}
	}
	job.StartedAt = t.now()

	if err := trigger(runCtx); err != nil {
		// The trigger never ran server-side as far as we know; polling
		// would only chase ghosts.
		job.State = StateFailed
		log.Warn().Err(err).Msg("pipeline trigger failed")
		return job, fmt.Errorf("pipeline: trigger: %w", err)
	}
	job.State = StateRunning
	log.Info().Msg("pipeline triggered, polling for completion")

	outcome, waitErr := pollwait.Wait(runCtx, pollwait.Config{
		Interval:    t.cfg.Interval,
		MaxAttempts: t.cfg.MaxAttempts,
		OnAttempt: func(attempt uint, satisfied bool, err error) {
			job.Attempt = attempt
			o := "pending"
			switch {
			case err != nil:
				o = "error"
				log.Warn().Uint("attempt", attempt).Err(err).Msg("poll failed, continuing")
			case satisfied:
				o = "done"
			}
			telemetry.RecordPoll(runCtx, telemetry.PollData{Kind: kind, Attempt: int(attempt), Outcome: o})
		},
	}, func(ctx context.Context) (bool, error) {
		fresh, err := t.feed.Newest(ctx)
		if err != nil {
			return false, err
		}
		return completed(fresh, job.Baseline, job.StartedAt, t.cfg.SkewWindow), nil
	})

	switch outcome {
	case pollwait.OutcomeDone:
		job.State = StateCompleted
		log.Info().Uint("attempts", job.Attempt).Msg("pipeline completed")
		notify.Post(ctx, t.notifier, notify.Note{
			Title: "News pipeline completed",
			Body:  "New articles have been added. Check the article list.",
		})
		return job, nil
	case pollwait.OutcomeExhausted:
		job.State = StateTimedOut
		log.Info().Uint("attempts", job.Attempt).Msg("pipeline polling exhausted")
		notify.Post(ctx, t.notifier, notify.Note{
			Title: "News pipeline processing finished",
			Body:  "Processing is likely complete. Please check the article list manually.",
		})
		return job, nil
	default:
		job.State = StateFailed
		if cause := context.Cause(runCtx); cause != nil {
			waitErr = cause
		}
		return job, waitErr
	}
}

// Abort cancels the active run of the given kind. The run ends Failed with
// ErrAborted and raises no notification. The backend job, if one started,
// keeps running; only the local wait ends.
func (t *Tracker) Abort(kind string) error {
	t.mu.Lock()
	run, ok := t.active[kind]
	t.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}
	run.cancel(ErrAborted)
	return nil
}

// Running reports whether a run of the given kind is active.
func (t *Tracker) Running(kind string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[kind]
	return ok
}

// Last returns a snapshot of the most recent terminal run for kind.
func (t *Tracker) Last(kind string) (JobRun, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.last[kind]
	return job, ok
}

// completed is the completion predicate: the newest marker moved away from
// the baseline, or any fetched item was published after startedAt minus the
// skew window. False negatives and false positives are accepted trade-offs
// of having no real job-status channel.
func completed(items []Item, baseline *Marker, startedAt time.Time, skew time.Duration) bool {
	if len(items) == 0 {
		return false
	}
	if baseline == nil {
		return true
	}
	if items[0].ID != baseline.ID {
		return true
	}
	cutoff := startedAt.Add(-skew)
	for _, it := range items {
		if !it.PublishedAt.IsZero() && it.PublishedAt.After(cutoff) {
			return true
		}
	}
	return false
}
