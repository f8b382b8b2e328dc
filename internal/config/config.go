// Package config assembles the daemon configuration from defaults, VOLUMED_*
// environment variables (optionally loaded from a .env file) and command
// line flags, in that precedence order.
package config

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "VOLUMED"

// Config holds all daemon settings.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	BindAddr  string `envconfig:"BIND" default:"0.0.0.0"`
	Device    string `envconfig:"DEVICE" default:"auto"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	StateFile string `envconfig:"STATE_FILE" default:"/var/lib/alsa/asound.state"`
}

// Load builds the configuration from the environment and os.Args.
func Load() (*Config, error) {
	// A .env file is optional; missing is the normal case outside dev.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("error loading .env file", "err", err)
	}

	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	fs := newFlagSet(cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("volumed", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	fs.StringVar(&cfg.BindAddr, "bind", cfg.BindAddr, "Bind address")
	fs.StringVar(&cfg.Device, "device", cfg.Device, `Mixer device ("auto", "default" or "hw:N")`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "ALSA state file to watch for external changes")
	return fs
}

// HelpText returns the flag usage block for startup errors.
func HelpText() string {
	var buf bytes.Buffer
	fs := newFlagSet(&Config{
		Port:      8080,
		BindAddr:  "0.0.0.0",
		Device:    "auto",
		LogLevel:  "info",
		StateFile: "/var/lib/alsa/asound.state",
	})
	fs.SetOutput(&buf)
	fs.Usage()
	return buf.String()
}
