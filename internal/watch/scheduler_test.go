package watch

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubSleep returns a sleep func that succeeds for the first n calls
// and reports cancellation afterwards.
func stubSleep(n int) func(context.Context, time.Duration) bool {
	calls := 0
	return func(context.Context, time.Duration) bool {
		calls++
		return calls <= n
	}
}

func TestStep_CycleStates(t *testing.T) {
	s := NewScheduler(func(context.Context) error { return nil }, time.Second)
	s.sleep = stubSleep(1)

	if s.State() != StateIdle {
		t.Fatalf("initial state = %s, want %s", s.State(), StateIdle)
	}
	if got := s.Step(context.Background()); got != StateSleeping {
		t.Fatalf("after pass state = %s, want %s", got, StateSleeping)
	}
	if got := s.Step(context.Background()); got != StateIdle {
		t.Fatalf("after sleep state = %s, want %s", got, StateIdle)
	}
}

func TestStep_CancellationAtSleepBoundary(t *testing.T) {
	passes := 0
	s := NewScheduler(func(context.Context) error {
		passes++
		return nil
	}, time.Second)
	s.sleep = stubSleep(0)

	s.Step(context.Background()) // pass
	if got := s.Step(context.Background()); got != StateStopped {
		t.Fatalf("state after cancelled sleep = %s, want %s", got, StateStopped)
	}
	if passes != 1 {
		t.Fatalf("passes = %d, want 1", passes)
	}

	// Further steps are inert.
	if got := s.Step(context.Background()); got != StateStopped {
		t.Fatalf("state after extra step = %s, want %s", got, StateStopped)
	}
}

func TestStep_PassErrorContinuesCycle(t *testing.T) {
	s := NewScheduler(func(context.Context) error {
		return errors.New("vault unreachable")
	}, time.Second)
	s.sleep = stubSleep(2)

	if got := s.Step(context.Background()); got != StateSleeping {
		t.Fatalf("state after failed pass = %s, want %s", got, StateSleeping)
	}
	if s.Passes() != 1 {
		t.Fatalf("passes = %d, want 1", s.Passes())
	}
}

func TestRun_StopsWhenSleepCancelled(t *testing.T) {
	passes := 0
	s := NewScheduler(func(context.Context) error {
		passes++
		return nil
	}, time.Second)
	s.sleep = stubSleep(2)

	s.Run(context.Background())

	if s.State() != StateStopped {
		t.Fatalf("state = %s, want %s", s.State(), StateStopped)
	}
	if passes != 3 {
		t.Fatalf("passes = %d, want 3", passes)
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if sleepContext(ctx, time.Minute) {
		t.Fatal("sleep reported completion for a cancelled context")
	}
}

func TestSleepContext_Elapses(t *testing.T) {
	if !sleepContext(context.Background(), time.Millisecond) {
		t.Fatal("sleep reported cancellation for an uncancelled context")
	}
}
