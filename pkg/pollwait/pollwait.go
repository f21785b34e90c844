// Package pollwait implements a bounded poll-until-predicate loop. It exists
// to keep completion-inference heuristics out of the components that use
// them: callers supply the probe, pollwait owns the timing, the attempt
// budget and the strictly sequential scheduling.
package pollwait

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Outcome is the terminal result of a Wait call.
type Outcome int

const (
	// OutcomeDone means the predicate was satisfied within the budget.
	OutcomeDone Outcome = iota
	// OutcomeExhausted means the attempt budget ran out first.
	OutcomeExhausted
	// OutcomeCanceled means the surrounding context ended the loop.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Probe checks the predicate once. A true result ends the loop. An error is
// treated as transient: it is reported to the observer, consumes one attempt
// and the loop continues.
type Probe func(ctx context.Context) (bool, error)

// Config bounds a Wait call.
type Config struct {
	// Interval is the fixed delay between consecutive attempts.
	Interval time.Duration
	// MaxAttempts caps how many times the probe runs, regardless of
	// per-attempt outcomes. A slow probe that errors still spends its
	// attempt; there are no free retries.
	MaxAttempts uint
	// OnAttempt, when set, observes every attempt in order.
	OnAttempt func(attempt uint, satisfied bool, err error)
}

var (
	errBadConfig = errors.New("pollwait: interval and max attempts must be positive")
	errNotReady  = errors.New("pollwait: predicate not satisfied")
)

// Wait runs probe on the configured cadence until it reports true, the
// attempt budget is spent, or ctx ends. Attempts are strictly sequential:
// attempt N+1 is only scheduled after attempt N's outcome is observed.
func Wait(ctx context.Context, cfg Config, probe Probe) (Outcome, error) {
	if cfg.Interval <= 0 || cfg.MaxAttempts == 0 {
		return OutcomeCanceled, errBadConfig
	}
	if probe == nil {
		return OutcomeCanceled, errors.New("pollwait: probe required")
	}

	var attempt uint
	op := func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempt++
		ok, err := probe(ctx)
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt, ok, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			return struct{}{}, err
		}
		if ok {
			return struct{}{}, nil
		}
		return struct{}{}, errNotReady
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(cfg.Interval)),
		backoff.WithMaxTries(cfg.MaxAttempts),
	)
	switch {
	case err == nil:
		return OutcomeDone, nil
	case ctx.Err() != nil:
		return OutcomeCanceled, ctx.Err()
	default:
		// Budget spent. The final attempt's own error, transient or not,
		// still means exhaustion rather than failure.
		return OutcomeExhausted, nil
	}
}
