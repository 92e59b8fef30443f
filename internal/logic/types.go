// Package logic contains the pure round logic for the reaction game.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Level is the logical level of a GPIO line.
type Level int

const (
	// LevelUnknown is the sentinel used before any level has been observed.
	LevelUnknown Level = iota
	LevelLow
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "0"
	case LevelHigh:
		return "1"
	default:
		return "?"
	}
}

// LevelFromValue converts a raw line value (0 or 1) into a Level.
func LevelFromValue(v int) Level {
	if v == 0 {
		return LevelLow
	}
	return LevelHigh
}

// State is the state of a player's round machine.
type State string

const (
	StateIdle      State = "IDLE"
	StateArmed     State = "ARMED"
	StateScored    State = "SCORED"
	StateDone      State = "DONE"
	StateCancelled State = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// EventType identifies what a processed input asks the caller to do.
type EventType string

const (
	// EventArm asks the caller to run the stimulus and confirm with Round.Arm.
	EventArm EventType = "ARM"
	// EventScore reports a completed round; the caller turns the light off.
	EventScore EventType = "SCORE"
)

// Input represents a single observed level of the button line.
type Input struct {
	Level Level
	Time  time.Time
}

// Event is emitted by Round.Process on a transition.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Round is the 1-based number of the round the event belongs to.
	Round int
	// Elapsed is the reaction latency (EventScore only).
	Elapsed time.Duration
	// Clamped is set when the clock went backwards and Elapsed was forced to 0.
	Clamped bool
}
