// Package config loads the debugger settings from a TOML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DefaultFile is used when no config path is given and BFDB_CONFIG isn't set, if it exists.
	DefaultFile = "bfdb.toml"

	EnvConfig   = "BFDB_CONFIG"
	EnvColor    = "BFDB_COLOR"
	EnvMaxSteps = "BFDB_MAX_STEPS"
	EnvLogLevel = "BFDB_LOG_LEVEL"
)

type Config struct {
	// Color enables ANSI colors in the terminal output
	Color bool `toml:"color"`
	// MaxSteps bounds the 'run' and 'continue' commands, 0 means unbounded
	MaxSteps int `toml:"max_steps"`
	// Window is the amount of lines/instructions shown before and after the current one
	Window int `toml:"window"`
	// TapeWindow is the amount of cells shown around the current cell
	TapeWindow int `toml:"tape_window"`
	// Macro is a macro file which is run at the start of every debug session
	Macro string `toml:"macro"`

	Log Log `toml:"log"`
}

type Log struct {
	Level string `toml:"level"`
	// File, if set, receives all log records as JSON lines
	File string `toml:"file"`
	// Journal enables logging to the systemd journal
	Journal bool `toml:"journal"`
}

// Default returns the configuration used when no file or environment variables are present
func Default() Config {
	return Config{
		Color:      true,
		MaxSteps:   0,
		Window:     9,
		TapeWindow: 16,
		Log: Log{
			Level: "warn",
		},
	}
}

// Load reads the configuration. If path is empty, BFDB_CONFIG is used and if that is empty as well, DefaultFile is
// read if it exists. Environment variables take precedence over values from the file. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (Config, error) {
	cfg := Default()

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, key := range undecoded {
				keys[i] = key.String()
			}

			return cfg, fmt.Errorf("config: unknown key(s): %s", strings.Join(keys, ", "))
		}
	}

	err = applyEnv(&cfg)
	if err != nil {
		return cfg, err
	}

	if cfg.MaxSteps < 0 {
		return cfg, fmt.Errorf("config: max_steps can't be negative")
	}

	if cfg.Window <= 0 {
		cfg.Window = Default().Window
	}

	if cfg.TapeWindow <= 0 {
		cfg.TapeWindow = Default().TapeWindow
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvColor); ok {
		color, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvColor, err)
		}
		cfg.Color = color
	}

	if v, ok := os.LookupEnv(EnvMaxSteps); ok {
		maxSteps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMaxSteps, err)
		}
		cfg.MaxSteps = maxSteps
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Log.Level = v
	}

	return nil
}
