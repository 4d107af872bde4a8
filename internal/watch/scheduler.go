// Package watch runs repeated sync passes on a fixed interval.
package watch

import (
	"context"
	"time"

	"github.com/klauern/notesync/internal/logging"
)

// State is the scheduler's position in its cycle.
type State string

const (
	// StateIdle means the next step starts a pass.
	StateIdle State = "idle"

	// StateRunning means a pass is in flight.
	StateRunning State = "running"

	// StateSleeping means the next step waits out the interval.
	StateSleeping State = "sleeping"

	// StateStopped is terminal; further steps are no-ops.
	StateStopped State = "stopped"
)

// PassFunc executes one sync pass.
type PassFunc func(ctx context.Context) error

// Scheduler drives repeated passes as an explicit state machine.
// Cancellation is observed at the sleep boundary: an in-flight pass
// finishes before the scheduler stops.
type Scheduler struct {
	interval time.Duration
	pass     PassFunc
	state    State
	passes   int

	// sleep waits for d or cancellation, returning false when
	// cancelled. Injectable for tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewScheduler builds a scheduler running pass every interval.
func NewScheduler(pass PassFunc, interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		pass:     pass,
		state:    StateIdle,
		sleep:    sleepContext,
	}
}

// State returns the scheduler's current state.
func (s *Scheduler) State() State { return s.state }

// Passes returns how many passes have completed, failed ones included.
func (s *Scheduler) Passes() int { return s.passes }

// Step advances the state machine by one transition and returns the
// resulting state. A pass that fails is logged and does not stop the
// cycle.
func (s *Scheduler) Step(ctx context.Context) State {
	switch s.state {
	case StateIdle:
		s.state = StateRunning
		if err := s.pass(ctx); err != nil {
			logging.Error("sync pass failed", logging.Err(err))
		}
		s.passes++
		s.state = StateSleeping

	case StateSleeping:
		if s.sleep(ctx, s.interval) {
			s.state = StateIdle
		} else {
			logging.Info("watch cancelled", logging.Count(s.passes))
			s.state = StateStopped
		}
	}

	return s.state
}

// Run steps the scheduler until it stops.
func (s *Scheduler) Run(ctx context.Context) {
	logging.Info("watching for changes",
		logging.Operation("watch"), logging.Interval(s.interval))

	for s.state != StateStopped {
		s.Step(ctx)
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
