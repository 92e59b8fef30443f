//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// edgeBuffer is how many undelivered edge events a button keeps.
const edgeBuffer = 16

// RealChip hands out lines from an actual GPIO chip.
type RealChip struct {
	chip *gpiocdev.Chip
}

// NewRealChip opens the named GPIO character device.
func NewRealChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &RealChip{chip: chip}, nil
}

// Input requests offset as a button with events on both edges.
// A non-zero debounce enables kernel debouncing on the line.
func (c *RealChip) Input(offset int, debounce time.Duration) (*RealInput, error) {
	in := &RealInput{
		offset: offset,
		edges:  make(chan gpiocdev.LineEvent, edgeBuffer),
		done:   make(chan struct{}),
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(in.handle),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", offset, err)
	}
	in.line = line
	return in, nil
}

// Output requests offset as a light, initially off.
func (c *RealChip) Output(offset int) (*RealOutput, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request light pin %d: %w", offset, err)
	}
	return &RealOutput{line: line, offset: offset}, nil
}

// Close releases the chip. Lines must be closed separately.
func (c *RealChip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

// RealInput is a button line on actual hardware.
type RealInput struct {
	line   *gpiocdev.Line
	offset int
	edges  chan gpiocdev.LineEvent
	done   chan struct{}
}

// handle runs on the gpiocdev event goroutine. Events beyond the buffer are
// dropped; the level is re-read when the edge is consumed anyway.
func (in *RealInput) handle(evt gpiocdev.LineEvent) {
	select {
	case in.edges <- evt:
	default:
	}
}

// WaitForEdge blocks until an edge event arrives or timeout expires.
func (in *RealInput) WaitForEdge(timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-in.edges:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-in.done:
		return false, ErrClosed
	}
}

// Level reads the current value of the button line.
func (in *RealInput) Level() (logic.Level, error) {
	v, err := in.line.Value()
	if err != nil {
		return logic.LevelUnknown, fmt.Errorf("read button pin %d: %w", in.offset, err)
	}
	return logic.LevelFromValue(v), nil
}

// Close releases the button line.
func (in *RealInput) Close() error {
	select {
	case <-in.done:
		return nil
	default:
		close(in.done)
	}
	if err := in.line.Close(); err != nil {
		return fmt.Errorf("close button pin %d: %w", in.offset, err)
	}
	return nil
}

// RealOutput is a light line on actual hardware.
type RealOutput struct {
	line   *gpiocdev.Line
	offset int
}

// SetLevel drives the light line.
func (out *RealOutput) SetLevel(level logic.Level) error {
	var v int
	switch level {
	case logic.LevelLow:
		v = 0
	case logic.LevelHigh:
		v = 1
	default:
		return ErrBadLevel
	}
	if err := out.line.SetValue(v); err != nil {
		return fmt.Errorf("set light pin %d: %w", out.offset, err)
	}
	return nil
}

// Close turns the light off and releases the line.
// The line is reconfigured as an input first so nothing is left driven.
func (out *RealOutput) Close() error {
	var errs []error

	if err := out.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear light pin %d: %w", out.offset, err))
	}
	if err := out.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure light pin %d: %w", out.offset, err))
	}
	if err := out.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close light pin %d: %w", out.offset, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
