package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/reaction-duel/internal/gpio"
	"github.com/sweeney/reaction-duel/internal/logic"
	"github.com/sweeney/reaction-duel/internal/mqtt"
	"github.com/sweeney/reaction-duel/internal/status"
)

// DefaultPollTimeout bounds each wait for a button edge. Cancellation is
// noticed at least this often.
const DefaultPollTimeout = time.Second

var (
	// ErrPoll is wrapped by errors from waiting on or reading the button.
	ErrPoll = errors.New("poll failed")

	// ErrOutput is wrapped by errors from driving the light.
	ErrOutput = errors.New("light write failed")
)

// MonitorOptions carries the optional collaborators of a Monitor.
type MonitorOptions struct {
	GameID      string
	PollTimeout time.Duration
	Publisher   mqtt.Publisher  // nil disables publishing
	Tracker     *status.Tracker // nil disables scoreboard updates
	Logger      *log.Entry
	Now         func() time.Time
}

// Monitor runs one player's game on its own goroutine.
// It owns the player's button, light and results; nothing is shared with
// the other player's monitor.
type Monitor struct {
	player *Player
	in     gpio.Input
	out    gpio.Output
	sched  *Scheduler

	gameID      string
	pollTimeout time.Duration
	pub         mqtt.Publisher
	tracker     *status.Tracker
	log         *log.Entry
	now         func() time.Time
}

// NewMonitor binds a player to their button, light and stimulus scheduler.
func NewMonitor(p *Player, in gpio.Input, out gpio.Output, sched *Scheduler, opts MonitorOptions) *Monitor {
	m := &Monitor{
		player:      p,
		in:          in,
		out:         out,
		sched:       sched,
		gameID:      opts.GameID,
		pollTimeout: opts.PollTimeout,
		pub:         opts.Publisher,
		tracker:     opts.Tracker,
		log:         opts.Logger,
		now:         opts.Now,
	}
	if m.pollTimeout <= 0 {
		m.pollTimeout = DefaultPollTimeout
	}
	if m.pub == nil {
		m.pub = mqtt.NopPublisher{}
	}
	if m.log == nil {
		m.log = log.WithField("player", p.Name())
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Player returns the monitored player.
func (m *Monitor) Player() *Player {
	return m.player
}

// Run plays rounds until the limit is reached, ctx is cancelled, or the
// button or light fails. Cancellation is checked once per poll timeout.
// A non-nil error means the monitor stopped early; the returned Result
// still holds everything recorded up to that point.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	round := m.player.round
	m.log.Infof("%s: waiting for button release to start round 1 of %d", m.player.Name(), round.Limit())
	m.update("")

	for !round.State().Terminal() {
		if ctx.Err() != nil {
			m.cancel()
			break
		}

		edge, err := m.in.WaitForEdge(m.pollTimeout)
		if err != nil {
			return m.fail(fmt.Errorf("%w: %w", ErrPoll, err))
		}
		if !edge {
			m.log.Debug(".")
			continue
		}

		level, err := m.in.Level()
		if err != nil {
			return m.fail(fmt.Errorf("%w: %w", ErrPoll, err))
		}
		m.log.WithField("level", level).Debug("button edge")

		err = m.process(ctx, logic.Input{Level: level, Time: m.now()})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.cancel()
			break
		}
		if err != nil {
			return m.fail(err)
		}
	}

	res := m.player.Result()
	m.log.WithFields(log.Fields{
		"state":  res.State,
		"rounds": res.Rounds,
		"total":  res.Total,
	}).Infof("%s: finished", m.player.Name())
	return res, nil
}

// process feeds one observed level through the round machine and carries
// out whatever the resulting event asks for.
func (m *Monitor) process(ctx context.Context, in logic.Input) error {
	round := m.player.round

	ev := round.Process(in)
	if ev == nil {
		return nil
	}

	switch ev.Type {
	case logic.EventArm:
		m.log.Debugf("round %d: scheduling light", ev.Round)
		armedAt, err := m.sched.Stimulate(ctx, m.out)
		if err != nil {
			return err
		}
		if err := round.Arm(armedAt); err != nil {
			return err
		}
		m.log.Debugf("round %d: light on", ev.Round)

	case logic.EventScore:
		if ev.Clamped {
			m.player.latency.Anomaly()
			m.log.WithField("round", ev.Round).Warn("clock went backwards, reaction time clamped to 0")
		}
		m.player.latency.Accumulate(ev.Elapsed)
		m.log.WithFields(log.Fields{
			"round":    ev.Round,
			"reaction": ev.Elapsed,
		}).Infof("Reaction time for %s on round %d was %v", m.player.Name(), ev.Round, ev.Elapsed)

		if err := m.out.SetLevel(logic.LevelLow); err != nil {
			return fmt.Errorf("%w: light off: %w", ErrOutput, err)
		}

		result := mqtt.RoundResult{
			GameID: m.gameID,
			Player: m.player.Name(),
			Limit:  round.Limit(),
			Event:  *ev,
		}
		if err := m.pub.PublishRound(result); err != nil {
			m.log.WithError(err).Warn("publish round failed")
		}
	}

	m.update("")
	return nil
}

// cancel abandons the in-flight round and makes sure the light is off.
func (m *Monitor) cancel() {
	round := m.player.round
	armed := round.State() == logic.StateArmed
	round.Cancel()
	if armed {
		if err := m.out.SetLevel(logic.LevelLow); err != nil {
			m.log.WithError(err).Warn("light off after cancel failed")
		}
	}
	m.log.Infof("%s: cancelled after %d rounds", m.player.Name(), round.Index())
	m.update("")
}

func (m *Monitor) fail(err error) (Result, error) {
	m.log.WithError(err).Errorf("%s: monitor stopped", m.player.Name())
	m.update(err.Error())
	res := m.player.Result()
	res.Err = err
	return res, err
}

func (m *Monitor) update(errText string) {
	if m.tracker == nil {
		return
	}
	ps := m.player.status()
	ps.Error = errText
	m.tracker.UpdatePlayer(ps)
}
