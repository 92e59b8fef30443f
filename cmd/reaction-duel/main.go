// Command reaction-duel runs a two-player reaction-time game on GPIO
// buttons and lights, optionally publishing results to MQTT.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/reaction-duel/internal/config"
	"github.com/sweeney/reaction-duel/internal/game"
	"github.com/sweeney/reaction-duel/internal/gpio"
	"github.com/sweeney/reaction-duel/internal/logic"
	"github.com/sweeney/reaction-duel/internal/mqtt"
	"github.com/sweeney/reaction-duel/internal/status"
	"github.com/sweeney/reaction-duel/internal/web"
)

const exitUsage = 2

// broker is what the game needs from an MQTT connection.
type broker interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

// station is one player's button and light.
type station struct {
	name string
	in   gpio.Input
	out  gpio.Output
}

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		fmt.Fprintf(os.Stderr, "reaction-duel: %v\n\n", err)
		config.WriteHelp(os.Stderr)
		os.Exit(exitUsage)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := cfg.SetLogLevel(); err != nil {
		fmt.Fprintf(os.Stderr, "reaction-duel: %v\n", err)
		os.Exit(exitUsage)
	}

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("reaction-duel stopped")
	}
}

func run(cfg *config.Config) error {
	chip, err := gpio.NewRealChip(cfg.Chip)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Chip, err)
	}
	defer chip.Close()

	stations, err := openStations(chip, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := teardown(stations); err != nil {
			log.WithError(err).Warn("teardown")
		}
	}()

	if cfg.PrintState {
		return printState(os.Stdout, stations)
	}

	gameID := game.NewGameID()
	pub, err := newPublisher(cfg.Broker, gameID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer pub.Close()

	// Tracker exists before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), gameID, cfg.Status(), cfg.Players()...)

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Infof("scoreboard listening on %s", cfg.HTTPAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EchoConsole {
		go game.EchoConsole(ctx, os.Stdin)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log.WithFields(log.Fields{
		"game":     gameID,
		"rounds":   cfg.Rounds,
		"min_wait": cfg.MinWait,
		"max_wait": cfg.MaxWait,
		"broker":   cfg.Broker,
	}).Info("started")

	return play(ctx, cfg, gameID, stations, pub, tracker, os.Stdout, sigCh)
}

// play runs one game over the given stations and reports it. It returns
// the first monitor failure, if any; a signal ends the game without error.
func play(ctx context.Context, cfg *config.Config, gameID string, stations []station, pub broker, tracker *status.Tracker, w io.Writer, sig <-chan os.Signal) error {
	publishSystem(pub, tracker, gameID, "STARTUP", "")

	names := make([]string, len(stations))
	monitors := make([]*game.Monitor, len(stations))
	seed := time.Now().UnixNano()
	for i, st := range stations {
		names[i] = st.name
		sched := game.NewScheduler(cfg.MinWait, cfg.MaxWait, seed+int64(i))
		monitors[i] = game.NewMonitor(game.NewPlayer(st.name, cfg.Rounds), st.in, st.out, sched, game.MonitorOptions{
			GameID:      gameID,
			PollTimeout: cfg.PollTimeout,
			Publisher:   pub,
			Tracker:     tracker,
			Logger:      log.WithFields(log.Fields{"player": st.name, "game": gameID}),
		})
	}
	game.WriteGreeting(w, names...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reason := make(chan string, 1)
	watching := make(chan struct{})
	go func() {
		defer close(watching)
		select {
		case s := <-sig:
			log.Infof("received %v, stopping game", s)
			fmt.Fprintln(w, "Ctrl-c pressed. Exiting game...")
			reason <- signalName(s)
			cancel()
		case <-ctx.Done():
		}
	}()

	results, playErr := game.New(gameID, monitors...).Play(ctx)
	cancel()
	<-watching

	if err := game.WriteSummary(w, results); err != nil {
		log.WithError(err).Warn("write summary")
	}
	publishSystem(pub, tracker, gameID, "SUMMARY", "")

	select {
	case r := <-reason:
		publishSystem(pub, tracker, gameID, "SHUTDOWN", r)
	default:
	}
	return playErr
}

func publishSystem(pub broker, tracker *status.Tracker, gameID, event, reason string) {
	tracker.SetMQTTConnected(pub.IsConnected())
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		GameID:     gameID,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := pub.PublishSystem(ev); err != nil {
		log.WithError(err).Warnf("publish %s event failed", event)
		return
	}
	log.Debugf("published %s event", event)
}

func newPublisher(brokerURL, gameID string) (broker, error) {
	if brokerURL == "" {
		return mqtt.NopPublisher{}, nil
	}
	pub, err := mqtt.NewRealPublisher(brokerURL, "reaction-duel-"+gameID, gameID)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func openStations(chip *gpio.RealChip, cfg *config.Config) ([]station, error) {
	pins := cfg.Pins()
	var stations []station
	for i, name := range cfg.Players() {
		in, err := chip.Input(pins[i].Button, cfg.Debounce)
		if err != nil {
			teardown(stations)
			return nil, fmt.Errorf("%s button on line %d: %w", name, pins[i].Button, err)
		}
		out, err := chip.Output(pins[i].Light)
		if err != nil {
			in.Close()
			teardown(stations)
			return nil, fmt.Errorf("%s light on line %d: %w", name, pins[i].Light, err)
		}
		stations = append(stations, station{name: name, in: in, out: out})
	}
	return stations, nil
}

// teardown turns every light off and releases all lines.
func teardown(stations []station) error {
	var errs []error
	for _, st := range stations {
		if err := st.out.SetLevel(logic.LevelLow); err != nil {
			errs = append(errs, fmt.Errorf("%s light off: %w", st.name, err))
		}
		if err := st.out.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s light: %w", st.name, err))
		}
		if err := st.in.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s button: %w", st.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func printState(w io.Writer, stations []station) error {
	for _, st := range stations {
		level, err := st.in.Level()
		if err != nil {
			return fmt.Errorf("read %s button: %w", st.name, err)
		}
		fmt.Fprintf(w, "%s: %s\n", st.name, level)
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
