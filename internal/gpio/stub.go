//go:build !linux

package gpio

import (
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// NewRealChip returns an error on non-Linux platforms.
func NewRealChip(name string) (*RealChip, error) {
	return nil, ErrNotSupported
}

// Input is not implemented on non-Linux platforms.
func (c *RealChip) Input(offset int, debounce time.Duration) (*RealInput, error) {
	return nil, ErrNotSupported
}

// Output is not implemented on non-Linux platforms.
func (c *RealChip) Output(offset int) (*RealOutput, error) {
	return nil, ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (c *RealChip) Close() error {
	return nil
}

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// WaitForEdge is not implemented on non-Linux platforms.
func (in *RealInput) WaitForEdge(timeout time.Duration) (bool, error) {
	return false, ErrNotSupported
}

// Level is not implemented on non-Linux platforms.
func (in *RealInput) Level() (logic.Level, error) {
	return logic.LevelUnknown, ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (in *RealInput) Close() error {
	return nil
}

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// SetLevel is not implemented on non-Linux platforms.
func (out *RealOutput) SetLevel(level logic.Level) error {
	return ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (out *RealOutput) Close() error {
	return nil
}
