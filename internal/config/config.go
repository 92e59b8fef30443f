// Package config parses the command line and environment into a game
// configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/reaction-duel/internal/gpio"
	"github.com/sweeney/reaction-duel/internal/status"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every tunable of a game. Flags take precedence over
// REACTION_* environment variables, which take precedence over defaults.
type Config struct {
	Rounds      int           `long:"rounds" env:"REACTION_ROUNDS" default:"10" description:"rounds per player"`
	PollTimeout time.Duration `long:"poll-timeout" env:"REACTION_POLL_TIMEOUT" default:"1s" description:"longest wait for a button edge before checking for shutdown"`
	MinWait     time.Duration `long:"min-wait" env:"REACTION_MIN_WAIT" default:"2s" description:"shortest delay before the light comes on"`
	MaxWait     time.Duration `long:"max-wait" env:"REACTION_MAX_WAIT" default:"6s" description:"longest delay before the light comes on"`

	Chip     string        `long:"chip" env:"REACTION_GPIO_CHIP" default:"gpiochip0" description:"GPIO character device"`
	P1Button int           `long:"p1-button" default:"47" description:"player 1 button line offset"`
	P1Light  int           `long:"p1-light" default:"26" description:"player 1 light line offset"`
	P2Button int           `long:"p2-button" default:"27" description:"player 2 button line offset"`
	P2Light  int           `long:"p2-light" default:"46" description:"player 2 light line offset"`
	Debounce time.Duration `long:"debounce" env:"REACTION_DEBOUNCE" default:"0s" description:"kernel debounce period for the buttons (0 disables)"`

	Broker   string `long:"broker" env:"REACTION_BROKER" description:"MQTT broker URL, e.g. tcp://localhost:1883 (empty disables MQTT)"`
	HTTPAddr string `long:"http" env:"REACTION_HTTP" description:"scoreboard listen address, e.g. :8080 (empty disables)"`
	LogLevel string `long:"log-level" env:"REACTION_LOG_LEVEL" default:"info" description:"log level"`

	PrintState  bool `long:"print-state" description:"print both button levels and exit"`
	EchoConsole bool `long:"echo-console" description:"log bytes read from stdin at debug level"`

	EnvFile string `long:"env-file" default:".env" description:"dotenv file with REACTION_* variables (ignored if missing)"`

	Args struct {
		Player1 string `positional-arg-name:"player1" description:"name of the player on the left button"`
		Player2 string `positional-arg-name:"player2" description:"name of the player on the right button"`
	} `positional-args:"yes" required:"yes"`
}

// Parse loads the dotenv file named by --env-file and then parses args
// (without the program name). A request for help is returned as an error
// for which IsHelp reports true.
func Parse(args []string) (*Config, error) {
	if err := loadEnvFile(args); err != nil {
		return nil, err
	}

	var cfg Config
	rest, err := newParser(&cfg).ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q", ErrInvalid, rest)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteHelp writes the usage line and option summary to w.
func WriteHelp(w io.Writer) {
	var cfg Config
	newParser(&cfg).WriteHelp(w)
}

func newParser(cfg *Config) *flags.Parser {
	parser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "reaction-duel"
	parser.Usage = "[OPTIONS] player1 player2"
	return parser
}

// IsHelp reports whether err is the result of --help.
func IsHelp(err error) bool {
	var ferr *flags.Error
	return errors.As(err, &ferr) && ferr.Type == flags.ErrHelp
}

// loadEnvFile picks --env-file out of args ahead of the real parse, so the
// file can feed the env defaults.
func loadEnvFile(args []string) error {
	var pre struct {
		EnvFile string `long:"env-file" default:".env"`
	}
	parser := flags.NewParser(&pre, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if pre.EnvFile == "" {
		return nil
	}

	err := godotenv.Load(pre.EnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("file", pre.EnvFile).Debug("no env file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", pre.EnvFile, err)
	}
	return nil
}

// Validate checks the configuration for values the game cannot run with.
func (c *Config) Validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalid, c.Rounds)
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("%w: poll timeout must be positive, got %v", ErrInvalid, c.PollTimeout)
	}
	if c.MinWait < 0 || c.MaxWait < c.MinWait {
		return fmt.Errorf("%w: need 0 <= min-wait <= max-wait, got %v and %v", ErrInvalid, c.MinWait, c.MaxWait)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalid)
	}

	p1, p2 := c.Args.Player1, c.Args.Player2
	if p1 == "" || p2 == "" {
		return fmt.Errorf("%w: two player names are required", ErrInvalid)
	}
	if p1 == p2 {
		return fmt.Errorf("%w: player names must differ, both are %q", ErrInvalid, p1)
	}

	seen := map[int]string{}
	for _, pin := range []struct {
		name   string
		offset int
	}{
		{"p1-button", c.P1Button},
		{"p1-light", c.P1Light},
		{"p2-button", c.P2Button},
		{"p2-light", c.P2Light},
	} {
		if pin.offset < 0 {
			return fmt.Errorf("%w: %s offset must not be negative", ErrInvalid, pin.name)
		}
		if other, ok := seen[pin.offset]; ok {
			return fmt.Errorf("%w: %s and %s share line %d", ErrInvalid, other, pin.name, pin.offset)
		}
		seen[pin.offset] = pin.name
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Players returns the two player names, left button first.
func (c *Config) Players() []string {
	return []string{c.Args.Player1, c.Args.Player2}
}

// Pins returns the button and light offsets for each player, in player order.
func (c *Config) Pins() []gpio.Pins {
	return []gpio.Pins{
		{Button: c.P1Button, Light: c.P1Light},
		{Button: c.P2Button, Light: c.P2Light},
	}
}

// SetLogLevel applies the configured log level to the standard logger.
func (c *Config) SetLogLevel() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// Status returns the subset of the configuration shown on the scoreboard.
func (c *Config) Status() status.Config {
	return status.Config{
		Rounds:        c.Rounds,
		PollTimeoutMs: c.PollTimeout.Milliseconds(),
		MinWaitMs:     c.MinWait.Milliseconds(),
		MaxWaitMs:     c.MaxWait.Milliseconds(),
		DebounceMs:    c.Debounce.Milliseconds(),
		Chip:          c.Chip,
		Broker:        c.Broker,
		HTTPAddr:      c.HTTPAddr,
	}
}
