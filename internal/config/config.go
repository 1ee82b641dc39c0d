// Package config loads server settings. Values come from, in increasing
// precedence: built-in defaults, a .env file, the process environment and
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"battleship/internal/game"
)

type Config struct {
	TCPAddr          string        `validate:"required"`
	HTTPAddr         string        // empty disables the HTTP API and websocket endpoint
	Fleet            string        `validate:"oneof=standard test"`
	ReturnToLobby    bool
	PlacementTimeout time.Duration `validate:"gte=0"`
	TurnTimeout      time.Duration `validate:"gte=0"`
	QueueTimeout     time.Duration `validate:"gte=0"`
	MaintainInterval time.Duration `validate:"gt=0"`
	MaxSessions      int           `validate:"gte=1"`
	AdmissionLimit   int           `validate:"gte=0"` // connections per remote host and window, zero disables
	AdmissionWindow  time.Duration `validate:"gt=0"`
}

func Default() Config {
	return Config{
		TCPAddr:          ":5001",
		HTTPAddr:         ":8080",
		Fleet:            game.RosterStandard,
		PlacementTimeout: 5 * time.Minute,
		TurnTimeout:      2 * time.Minute,
		QueueTimeout:     15 * time.Minute,
		MaintainInterval: 30 * time.Second,
		MaxSessions:      100,
		AdmissionLimit:   100,
		AdmissionWindow:  time.Minute,
	}
}

// Roster returns the fleet selected by the Fleet setting.
func (c Config) Roster() game.Roster {
	roster, err := game.RosterByName(c.Fleet)
	if err != nil {
		return game.StandardRoster()
	}
	return roster
}

var validate = validator.New()

// Load builds the configuration for a process started with args (without
// the program name). envFiles default to ".env"; a missing file is not an
// error.
func Load(args []string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
		log.Println("No .env file found")
	}

	cfg := Default()
	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("battleship", flag.ContinueOnError)
	fset.StringVar(&cfg.TCPAddr, "addr", cfg.TCPAddr, "TCP address for line-protocol players")
	fset.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP address for the status API and websocket players (empty disables)")
	fset.StringVar(&cfg.Fleet, "fleet", cfg.Fleet, "fleet roster: standard or test")
	fset.BoolVar(&cfg.ReturnToLobby, "return-to-lobby", cfg.ReturnToLobby, "re-queue players after each game instead of disconnecting them")
	fset.DurationVar(&cfg.PlacementTimeout, "placement-timeout", cfg.PlacementTimeout, "time allowed to place a fleet (0 disables)")
	fset.DurationVar(&cfg.TurnTimeout, "turn-timeout", cfg.TurnTimeout, "time allowed per turn (0 disables)")
	fset.DurationVar(&cfg.QueueTimeout, "queue-timeout", cfg.QueueTimeout, "time a player may wait for an opponent (0 disables)")
	fset.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "maximum concurrent games")
	fset.IntVar(&cfg.AdmissionLimit, "admission-limit", cfg.AdmissionLimit, "connections admitted per remote host each admission window (0 disables)")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	if v, ok := os.LookupEnv("TCP_ADDR"); ok {
		c.TCPAddr = v
	}
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		c.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("FLEET"); ok {
		c.Fleet = v
	}

	if v, ok := os.LookupEnv("RETURN_TO_LOBBY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RETURN_TO_LOBBY: %w", err)
		}
		c.ReturnToLobby = b
	}

	durations := map[string]*time.Duration{
		"PLACEMENT_TIMEOUT": &c.PlacementTimeout,
		"TURN_TIMEOUT":      &c.TurnTimeout,
		"QUEUE_TIMEOUT":     &c.QueueTimeout,
		"MAINTAIN_INTERVAL": &c.MaintainInterval,
		"ADMISSION_WINDOW":  &c.AdmissionWindow,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"MAX_SESSIONS":    &c.MaxSessions,
		"ADMISSION_LIMIT": &c.AdmissionLimit,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}
