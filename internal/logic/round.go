package logic

import (
	"errors"
	"time"
)

// ErrNotArming is returned by Arm when no arm was requested.
var ErrNotArming = errors.New("round: arm without pending request")

// Round tracks one player's rounds and detects presses.
// Not safe for concurrent use; owned by a single monitor.
type Round struct {
	limit     int
	state     State
	index     int
	previous  Level
	armedAt   time.Time
	requested bool
}

// NewRound creates a round machine that finishes after limit scored rounds.
func NewRound(limit int) *Round {
	r := &Round{
		limit:    limit,
		state:    StateIdle,
		previous: LevelUnknown,
	}
	if limit <= 0 {
		r.state = StateDone
	}
	return r
}

// Process takes a newly observed level and returns the resulting event, if any.
// A level equal to the previously observed one is ignored.
func (r *Round) Process(in Input) *Event {
	if r.state.Terminal() {
		return nil
	}
	if in.Level == LevelUnknown || in.Level == r.previous {
		return nil
	}
	r.previous = in.Level

	switch r.state {
	case StateIdle:
		if in.Level != LevelLow {
			// Button already down with nothing armed.
			return nil
		}
		r.requested = true
		return &Event{
			Timestamp: in.Time,
			Type:      EventArm,
			Round:     r.index + 1,
		}

	case StateArmed:
		if in.Level != LevelHigh {
			return nil
		}
		return r.score(in.Time)
	}

	return nil
}

// Arm records the stimulus time for the requested round and moves to ARMED.
func (r *Round) Arm(at time.Time) error {
	if r.state != StateIdle || !r.requested {
		return ErrNotArming
	}
	r.requested = false
	r.armedAt = at
	r.state = StateArmed
	return nil
}

func (r *Round) score(end time.Time) *Event {
	elapsed := end.Sub(r.armedAt)
	clamped := false
	if elapsed < 0 {
		elapsed = 0
		clamped = true
	}

	r.armedAt = time.Time{}
	r.index++
	r.state = StateScored

	ev := &Event{
		Timestamp: end,
		Type:      EventScore,
		Round:     r.index,
		Elapsed:   elapsed,
		Clamped:   clamped,
	}

	if r.index >= r.limit {
		r.state = StateDone
	} else {
		r.state = StateIdle
	}
	return ev
}

// Cancel abandons any in-flight round. Terminal states are left untouched.
func (r *Round) Cancel() {
	if r.state.Terminal() {
		return
	}
	r.requested = false
	r.armedAt = time.Time{}
	r.state = StateCancelled
}

// State returns the current state.
func (r *Round) State() State {
	return r.state
}

// Index returns the number of scored rounds.
func (r *Round) Index() int {
	return r.index
}

// Limit returns the configured round limit.
func (r *Round) Limit() int {
	return r.limit
}

// Previous returns the last observed level.
func (r *Round) Previous() Level {
	return r.previous
}

// ArmedAt returns the stimulus time of the armed round, or the zero time.
func (r *Round) ArmedAt() time.Time {
	return r.armedAt
}
