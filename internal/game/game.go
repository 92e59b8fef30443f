// Package game runs the two-player reaction game: one monitor goroutine per
// player, each waiting for button edges, lighting the player's output after
// a random delay and timing the press.
package game

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NewGameID returns a fresh identifier for a game.
func NewGameID() string {
	return uuid.New().String()
}

// Game starts the player monitors together and waits for all of them.
type Game struct {
	ID       string
	monitors []*Monitor
	log      *log.Entry
}

// New creates a game over the given monitors.
func New(id string, monitors ...*Monitor) *Game {
	return &Game{
		ID:       id,
		monitors: monitors,
		log:      log.WithField("game", id),
	}
}

// Play runs every monitor on its own goroutine and blocks until all have
// returned. A monitor failing does not stop the others. The returned error
// is the first monitor failure, if any; per-player errors are in the
// results.
func (g *Game) Play(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(g.monitors))

	var eg errgroup.Group
	for i, m := range g.monitors {
		i, m := i, m
		eg.Go(func() error {
			res, err := m.Run(ctx)
			results[i] = res
			return err
		})
	}

	err := eg.Wait()
	if err != nil {
		g.log.WithError(err).Warn("a player stopped before finishing")
	}
	return results, err
}
