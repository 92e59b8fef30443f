// Package gpio provides button inputs and light outputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// Input is a button line with edge notifications.
type Input interface {
	// WaitForEdge blocks until an edge is seen or the timeout expires.
	// Returns true on edge, false on timeout.
	WaitForEdge(timeout time.Duration) (bool, error)

	// Level returns the current logical level of the line.
	Level() (logic.Level, error)

	// Close releases GPIO resources.
	Close() error
}

// Output is a light line.
type Output interface {
	// SetLevel drives the line to the given level.
	SetLevel(level logic.Level) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device the game lines live on.
const DefaultChip = "gpiochip0"

// Default line offsets. Player 1 uses the left button, player 2 the right.
const (
	DefaultPinP1Button = 47
	DefaultPinP1Light  = 26
	DefaultPinP2Button = 27
	DefaultPinP2Light  = 46
)

// Pins is the pair of line offsets wired to one player.
type Pins struct {
	Button int
	Light  int
}

var (
	// ErrNotSupported is returned on platforms without the GPIO character device.
	ErrNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")

	// ErrClosed is returned when waiting on a released line.
	ErrClosed = errors.New("gpio: line closed")

	// ErrBadLevel is returned when driving a line to LevelUnknown.
	ErrBadLevel = errors.New("gpio: cannot drive unknown level")
)
