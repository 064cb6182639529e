package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dylandreimerink/bfdb/cmd/debug"
	"github.com/dylandreimerink/bfdb/pkg/config"
	"github.com/dylandreimerink/bfdb/pkg/logs"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "bfdb [source file] [input file]",
	Short: "bfdb is an interactive debugger for tape based esoteric programs",
	Long: "bfdb loads a program made of the '+-><,.[]' operators plus the '!' breakpoint operator and lets you " +
		"step through it while inspecting the tape, program counter and output. Without sub-command it starts " +
		"an interactive debug session for the given source file.",
	Args:          cobra.MaximumNArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		return debug.Start(setup, args, "")
	},
}

// setup loads the configuration and builds the logger. Diagnostics go to stderr so they don't mix with the output of
// programs.
func setup() (debug.Options, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return debug.Options{}, nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, closer, err := logs.New(cfg.Log, os.Stderr)
	if err != nil {
		return debug.Options{}, nil, err
	}

	logger.Debug("config loaded",
		"path", configPath,
		"max_steps", cfg.MaxSteps,
		"color", cfg.Color,
	)

	return debug.Options{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
	}, closer, nil
}

func Execute() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to a TOML config file, defaults to $"+config.EnvConfig+
		" or ./"+config.DefaultFile)
	f.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error, overrides the config")

	rootCmd.AddCommand(
		debug.DebugCmd(setup),
		runCommand(),
		graphCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		// Errors go to stdout, scripts driving bfdb only capture that
		fmt.Fprintln(os.Stdout, err)
		os.Exit(1)
	}
}
