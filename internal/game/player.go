package game

import (
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
	"github.com/sweeney/reaction-duel/internal/status"
)

// Player is one contestant and their accumulated results.
// Only the player's own monitor goroutine mutates it.
type Player struct {
	name    string
	round   *logic.Round
	latency logic.Latency
}

// NewPlayer creates a player who will play the given number of rounds.
func NewPlayer(name string, rounds int) *Player {
	return &Player{
		name:  name,
		round: logic.NewRound(rounds),
	}
}

// Name returns the player's display name.
func (p *Player) Name() string {
	return p.name
}

// State returns the player's round state.
func (p *Player) State() logic.State {
	return p.round.State()
}

// Rounds returns the number of scored rounds.
func (p *Player) Rounds() int {
	return p.round.Index()
}

// Summarize returns the cumulative latency and number of scored rounds.
func (p *Player) Summarize() (time.Duration, int) {
	return p.latency.Summarize()
}

// Result returns the player's results so far.
func (p *Player) Result() Result {
	total, _ := p.latency.Summarize()
	return Result{
		Name:      p.name,
		State:     p.round.State(),
		Rounds:    p.round.Index(),
		Limit:     p.round.Limit(),
		Total:     total,
		Average:   p.latency.Average(),
		Best:      p.latency.Best(),
		Anomalies: p.latency.Anomalies(),
	}
}

func (p *Player) status() status.PlayerStatus {
	r := p.Result()
	return status.PlayerStatus{
		Name:      r.Name,
		State:     r.State,
		Round:     r.Rounds,
		Limit:     r.Limit,
		Last:      p.latency.Last(),
		Best:      r.Best,
		Total:     r.Total,
		Average:   r.Average,
		Anomalies: r.Anomalies,
	}
}

// Result is a player's outcome once their monitor has stopped.
type Result struct {
	Name      string
	State     logic.State
	Rounds    int
	Limit     int
	Total     time.Duration
	Average   time.Duration
	Best      time.Duration
	Anomalies int
	// Err is set when the monitor stopped on a fatal error.
	Err error
}
