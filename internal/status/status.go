// Package status provides a thread-safe scoreboard for the reaction game.
// It is written by the player monitors and read by HTTP handlers and the
// MQTT summary.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// Config contains game configuration for display.
type Config struct {
	Rounds        int
	PollTimeoutMs int64
	MinWaitMs     int64
	MaxWaitMs     int64
	DebounceMs    int64
	Chip          string
	Broker        string
	HTTPAddr      string
}

// PlayerStatus is the scoreboard entry for one player.
type PlayerStatus struct {
	Name      string
	State     logic.State
	Round     int
	Limit     int
	Last      time.Duration
	Best      time.Duration
	Total     time.Duration
	Average   time.Duration
	Anomalies int
	Error     string // set when the player's monitor stopped on a fatal error
}

// Finished reports whether the player will not play any more rounds.
func (p PlayerStatus) Finished() bool {
	return p.State.Terminal() || p.Error != ""
}

// Snapshot is a point-in-time view of the game.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	GameID        string
	Players       []PlayerStatus
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the game started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Finished reports whether every player is finished.
func (s Snapshot) Finished() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !p.Finished() {
			return false
		}
	}
	return true
}

// Player returns the entry for name.
func (s Snapshot) Player(name string) (PlayerStatus, bool) {
	for _, p := range s.Players {
		if p.Name == name {
			return p, true
		}
	}
	return PlayerStatus{}, false
}

// Tracker holds mutable game state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with one IDLE entry per player name.
func NewTracker(startTime time.Time, gameID string, cfg Config, names ...string) *Tracker {
	players := make([]PlayerStatus, len(names))
	for i, name := range names {
		players[i] = PlayerStatus{
			Name:  name,
			State: logic.StateIdle,
			Limit: cfg.Rounds,
		}
	}
	return &Tracker{
		snap: Snapshot{
			GameID:    gameID,
			Players:   players,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdatePlayer replaces the entry with the same name. Unknown names are added.
// Each monitor only ever updates its own player.
func (t *Tracker) UpdatePlayer(ps PlayerStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.snap.Players {
		if t.snap.Players[i].Name == ps.Name {
			t.snap.Players[i] = ps
			return
		}
	}
	t.snap.Players = append(t.snap.Players, ps)
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the game state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Players = append([]PlayerStatus(nil), t.snap.Players...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
