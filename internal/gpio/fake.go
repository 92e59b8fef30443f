package gpio

import (
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// FakeInput is a test double that delivers scripted button levels.
type FakeInput struct {
	// Levels contains the scripted levels. Each WaitForEdge call that
	// reports an edge consumes the next level.
	Levels []logic.Level

	// WaitError, if set, is returned by WaitForEdge once FailAt levels
	// have been consumed.
	WaitError error
	FailAt    int

	// LevelError, if set, will be returned by Level().
	LevelError error

	// Closed tracks if Close was called
	Closed bool

	index   int
	current logic.Level
	drained chan struct{}
}

// NewFakeInput creates a FakeInput with the given levels.
func NewFakeInput(levels ...logic.Level) *FakeInput {
	return &FakeInput{
		Levels:  levels,
		drained: make(chan struct{}),
	}
}

// WaitForEdge reports an edge while scripted levels remain.
// Once exhausted it behaves like a quiet line: it sleeps for timeout and
// reports no edge.
func (f *FakeInput) WaitForEdge(timeout time.Duration) (bool, error) {
	if f.WaitError != nil && f.index >= f.FailAt {
		return false, f.WaitError
	}

	if f.index >= len(f.Levels) {
		f.markDrained()
		time.Sleep(timeout)
		return false, nil
	}

	f.current = f.Levels[f.index]
	f.index++
	if f.index == len(f.Levels) {
		f.markDrained()
	}
	return true, nil
}

// Level returns the most recently delivered level.
func (f *FakeInput) Level() (logic.Level, error) {
	if f.LevelError != nil {
		return logic.LevelUnknown, f.LevelError
	}
	return f.current, nil
}

// Drained is closed once every scripted level has been delivered.
func (f *FakeInput) Drained() <-chan struct{} {
	return f.drained
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.Closed = true
	return nil
}

func (f *FakeInput) markDrained() {
	select {
	case <-f.drained:
	default:
		close(f.drained)
	}
}

// FakeOutput records levels driven onto a light line.
type FakeOutput struct {
	// Levels is the history of levels set, oldest first.
	Levels []logic.Level

	// SetError, if set, will be returned by SetLevel().
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetLevel records the level.
func (f *FakeOutput) SetLevel(level logic.Level) error {
	if f.SetError != nil {
		return f.SetError
	}
	if level == logic.LevelUnknown {
		return ErrBadLevel
	}
	f.Levels = append(f.Levels, level)
	return nil
}

// Level returns the last level set, or LevelUnknown if none.
func (f *FakeOutput) Level() logic.Level {
	if len(f.Levels) == 0 {
		return logic.LevelUnknown
	}
	return f.Levels[len(f.Levels)-1]
}

// Close turns the light off and marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Levels = append(f.Levels, logic.LevelLow)
	f.Closed = true
	return nil
}
