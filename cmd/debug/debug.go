package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	prompt "github.com/c-bata/go-prompt"
	"github.com/dylandreimerink/bfdb/pkg/config"
	"github.com/dylandreimerink/bfdb/pkg/engine"
	"github.com/dylandreimerink/bfdb/pkg/program"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
)

// Options are the dependencies of a debug session
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Out receives all output of commands, defaults to stdout
	Out io.Writer
}

// SetupFunc loads the configuration and logger, the returned closer is closed when the session ends.
type SetupFunc func() (Options, io.Closer, error)

// Session is a single interactive debug session, it owns the VM of the loaded program.
type Session struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer

	vm         *engine.VM
	source     string
	sourcePath string
	inputPath  string

	breakpoints []Breakpoint
	macros      macroState

	lastArgs []string
	quit     bool
}

func NewSession(opts Options) *Session {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ansi.DisableColors(!opts.Config.Color)

	return &Session{
		cfg:    opts.Config,
		logger: opts.Logger,
		out:    opts.Out,
		macros: newMacroState(),
	}
}

// Load reads the program and optional input file and replaces the current VM. Watches and breakpoints belong to
// the old program, so they are dropped.
func (s *Session) Load(sourcePath, inputPath string) error {
	prog, src, err := program.LoadFile(sourcePath)
	if err != nil {
		return err
	}

	input, err := program.ReadInput(inputPath)
	if err != nil {
		return err
	}

	s.vm = engine.New(prog, input, engine.WithLogger(s.logger))
	s.source = src
	s.sourcePath = sourcePath
	s.inputPath = inputPath
	s.breakpoints = nil

	s.logger.Debug("program loaded",
		"source", sourcePath,
		"input", inputPath,
		"instructions", len(prog),
		"input_bytes", len(input),
	)

	return nil
}

// VM returns the VM of the loaded program, nil if no program has been loaded
func (s *Session) VM() *engine.VM {
	return s.vm
}

// Quit returns true once the user asked to leave the session
func (s *Session) Quit() bool {
	return s.quit
}

// requireVM prints an error if no program is loaded yet
func (s *Session) requireVM() bool {
	if s.vm == nil {
		s.printRed("No program loaded, use 'load {source file} [input file]' first\n")
		return false
	}

	return true
}

// Prompt runs the interactive prompt until the user exits
func (s *Session) Prompt() {
	fmt.Fprintln(s.out, "Type 'help' for list of commands.")

	if s.vm != nil {
		s.showView()
	}

	p := prompt.New(
		s.Execute,
		s.complete,
		prompt.OptionTitle("tape debugger"),
		prompt.OptionPrefix("(bfdb) "),
		prompt.OptionAddKeyBind(prompt.KeyBind{Key: prompt.ControlC, Fn: func(b *prompt.Buffer) {
			fmt.Fprintln(s.out, "Ctrl+C disabled, please use the 'quit' or 'exit' command")
		}}),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && s.quit
		}),
	)
	p.Run()
}

// Start sets up a session, loads the program given in args (source file and optional input file), runs the macro
// file if given and then prompts until the user exits.
func Start(setup SetupFunc, args []string, macroPath string) error {
	opts, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	s := NewSession(opts)

	if len(args) > 0 {
		inputPath := ""
		if len(args) > 1 {
			inputPath = args[1]
		}

		if err = s.Load(args[0], inputPath); err != nil {
			return err
		}
	}

	if macroPath == "" {
		macroPath = opts.Config.Macro
	}

	if macroPath != "" {
		s.runMacroFile(macroPath)
	}

	if s.quit {
		return nil
	}

	s.Prompt()

	return nil
}

func DebugCmd(setup SetupFunc) *cobra.Command {
	var (
		macroPath string
	)

	debugCmd := &cobra.Command{
		Use:   "debug {source file} [input file]",
		Short: "debug starts an interactive debug session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start(setup, args, macroPath)
		},
	}

	f := debugCmd.Flags()
	f.StringVar(&macroPath, "macro", "", "Path to a macro file which will be executed to setup the session")

	return debugCmd
}
