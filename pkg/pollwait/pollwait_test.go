package pollwait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitStopsAtFirstSatisfiedAttempt(t *testing.T) {
	var calls int
	outcome, err := Wait(context.Background(), Config{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	}, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if outcome != OutcomeDone {
		t.Fatalf("outcome = %v, want done", outcome)
	}
	if calls != 3 {
		t.Fatalf("probe ran %d times, want exactly 3", calls)
	}
}

func TestWaitExhaustsAfterExactBudget(t *testing.T) {
	var calls int
	var seen []uint
	outcome, err := Wait(context.Background(), Config{
		Interval:    time.Millisecond,
		MaxAttempts: 30,
		OnAttempt: func(attempt uint, satisfied bool, err error) {
			seen = append(seen, attempt)
			if satisfied || err != nil {
				t.Errorf("attempt %d: satisfied=%v err=%v", attempt, satisfied, err)
			}
		},
	}, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if outcome != OutcomeExhausted {
		t.Fatalf("outcome = %v, want exhausted", outcome)
	}
	if calls != 30 {
		t.Fatalf("probe ran %d times, want exactly 30", calls)
	}
	for i, a := range seen {
		if a != uint(i+1) {
			t.Fatalf("attempt sequence broken at index %d: %v", i, seen)
		}
	}
}

func TestTransientErrorsConsumeAttempts(t *testing.T) {
	probeErr := errors.New("feed unavailable")
	var calls int
	outcome, err := Wait(context.Background(), Config{
		Interval:    time.Millisecond,
		MaxAttempts: 4,
	}, func(ctx context.Context) (bool, error) {
		calls++
		return false, probeErr
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if outcome != OutcomeExhausted {
		t.Fatalf("outcome = %v, want exhausted", outcome)
	}
	if calls != 4 {
		t.Fatalf("erroring probe ran %d times, want 4; errors must not grant free retries", calls)
	}
}

func TestRecoveryAfterTransientError(t *testing.T) {
	var calls int
	outcome, err := Wait(context.Background(), Config{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	}, func(ctx context.Context) (bool, error) {
		calls++
		if calls == 1 {
			return false, errors.New("blip")
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if outcome != OutcomeDone {
		t.Fatalf("outcome = %v, want done after recovery", outcome)
	}
	if calls != 2 {
		t.Fatalf("probe ran %d times, want 2", calls)
	}
}

func TestCancellationEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	outcome, err := Wait(ctx, Config{
		Interval:    time.Millisecond,
		MaxAttempts: 100,
	}, func(ctx context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})
	if outcome != OutcomeCanceled {
		t.Fatalf("outcome = %v, want canceled", outcome)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls > 3 {
		t.Fatalf("probe kept running after cancellation: %d calls", calls)
	}
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	type obs struct {
		attempt   uint
		satisfied bool
		failed    bool
	}
	var got []obs
	_, err := Wait(context.Background(), Config{
		Interval:    time.Millisecond,
		MaxAttempts: 5,
		OnAttempt: func(attempt uint, satisfied bool, err error) {
			got = append(got, obs{attempt, satisfied, err != nil})
		},
	}, func(ctx context.Context) (bool, error) {
		switch len(got) {
		case 1:
			return false, errors.New("blip")
		case 2:
			return true, nil
		default:
			return false, nil
		}
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	want := []obs{{1, false, false}, {2, false, true}, {3, true, false}}
	if len(got) != len(want) {
		t.Fatalf("observed %d attempts, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attempt %d observed as %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestRejectsBadConfig(t *testing.T) {
	if _, err := Wait(context.Background(), Config{MaxAttempts: 5}, func(ctx context.Context) (bool, error) { return true, nil }); err == nil {
		t.Fatalf("zero interval must be rejected")
	}
	if _, err := Wait(context.Background(), Config{Interval: time.Second}, func(ctx context.Context) (bool, error) { return true, nil }); err == nil {
		t.Fatalf("zero attempt budget must be rejected")
	}
	if _, err := Wait(context.Background(), Config{Interval: time.Second, MaxAttempts: 1}, nil); err == nil {
		t.Fatalf("nil probe must be rejected")
	}
}
