package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sweeney/reaction-duel/internal/gpio"
	"github.com/sweeney/reaction-duel/internal/logic"
)

// Default stimulus delay range.
const (
	DefaultMinWait = 2 * time.Second
	DefaultMaxWait = 6 * time.Second
)

// Scheduler waits a random time and then lights a player's output.
// Each monitor owns its own Scheduler; it is not safe for concurrent use.
type Scheduler struct {
	MinWait time.Duration
	MaxWait time.Duration

	// Sleep waits for d or until ctx is done. Replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now stamps the activation time.
	Now func() time.Time

	rng *rand.Rand
}

// NewScheduler creates a scheduler drawing delays uniformly from [minWait, maxWait].
func NewScheduler(minWait, maxWait time.Duration, seed int64) *Scheduler {
	return &Scheduler{
		MinWait: minWait,
		MaxWait: maxWait,
		Sleep:   sleep,
		Now:     time.Now,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Delay draws the next stimulus delay.
func (s *Scheduler) Delay() time.Duration {
	if s.MaxWait <= s.MinWait {
		return s.MinWait
	}
	return s.MinWait + time.Duration(s.rng.Int63n(int64(s.MaxWait-s.MinWait)+1))
}

// Stimulate blocks for a random delay, turns the light on and returns the
// time it did so. If ctx is done first the light stays off and ctx's error
// is returned.
func (s *Scheduler) Stimulate(ctx context.Context, out gpio.Output) (time.Time, error) {
	if err := s.Sleep(ctx, s.Delay()); err != nil {
		return time.Time{}, err
	}
	if err := out.SetLevel(logic.LevelHigh); err != nil {
		return time.Time{}, fmt.Errorf("%w: light on: %w", ErrOutput, err)
	}
	return s.Now(), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
