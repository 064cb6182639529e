package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dylandreimerink/bfdb/pkg/engine"
	"github.com/dylandreimerink/bfdb/pkg/program"
	"github.com/spf13/cobra"
)

var runMaxSteps int

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run {source file} [input file]",
		Short: "Run a program to completion without the debugger",
		Long: "This command loads the program and runs it until it ends, writing its output to stdout. If the " +
			"program stops for another reason, like a breakpoint instruction, a watch or a tape underflow, the " +
			"state is printed on its own line after the output.",
		RunE: runProgram,
		Args: cobra.RangeArgs(1, 2),
	}

	f := cmd.Flags()
	f.IntVar(&runMaxSteps, "max-steps", -1, "Stop after this many steps, 0 means no limit. Defaults to max_steps "+
		"from the config")

	return cmd
}

func runProgram(cmd *cobra.Command, args []string) error {
	opts, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	prog, _, err := program.LoadFile(args[0])
	if err != nil {
		return err
	}

	var inputPath string
	if len(args) > 1 {
		inputPath = args[1]
	}

	input, err := program.ReadInput(inputPath)
	if err != nil {
		return err
	}

	maxSteps := opts.Config.MaxSteps
	if runMaxSteps >= 0 {
		maxSteps = runMaxSteps
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	vm := engine.New(prog, input, engine.WithLogger(opts.Logger))
	runErr := vm.RunContext(ctx, maxSteps)

	out := cmd.OutOrStdout()
	if _, err = out.Write(vm.Output()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	opts.Logger.Info("program stopped", "state", vm.State(), "steps", vm.Steps())

	switch {
	case errors.Is(runErr, engine.ErrStepLimit):
		return fmt.Errorf("stopped after %d steps: %w", vm.Steps(), runErr)
	case errors.Is(runErr, context.Canceled):
		return fmt.Errorf("interrupted after %d steps", vm.Steps())
	case runErr != nil:
		return runErr
	}

	if vm.State() != engine.StateProgramEnded {
		fmt.Fprintln(out)
		fmt.Fprintln(out, vm.State())
	}

	return nil
}
