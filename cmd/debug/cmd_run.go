package debug

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/dylandreimerink/bfdb/pkg/engine"
)

var cmdRun = Command{
	Name:    "run",
	Summary: "Run the program until it stops",
	Description: "Executes instructions until the program ends, hits a breakpoint instruction, triggers a watch or " +
		"underflows the tape. Press Ctrl+C to interrupt a program which doesn't stop. The step limit defaults to " +
		"max_steps from the config, 0 means no limit.",
	Exec: runExec,
	Args: []CmdArg{{
		Name:     "step limit",
		Required: false,
	}},
}

func runExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	limit, ok := s.stepLimit(args)
	if !ok {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s.reportRunErr(s.vm.RunContext(ctx, limit))
	s.reportState()
	s.showView()
}

// stepLimit parses the optional step limit argument, falling back to the configured limit
func (s *Session) stepLimit(args []string) (int, bool) {
	if len(args) == 0 {
		return s.cfg.MaxSteps, true
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 0 {
		s.printRed("Invalid step limit '%s', must be a positive integer\n", args[0])
		return 0, false
	}

	return limit, true
}

// runUntil runs the VM until it stops or stop returns true before an instruction. It can be interrupted with Ctrl+C
// and gives up after maxSteps steps if maxSteps is positive.
func (s *Session) runUntil(stop func() bool, maxSteps int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return s.vm.RunUntil(ctx, maxSteps, func(*engine.VM) bool {
		return stop()
	})
}

func (s *Session) reportRunErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrStepLimit):
		fmt.Fprintln(s.out, yellow(fmt.Sprintf("Stopped after %d steps, the step limit was reached", s.vm.Steps())))
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(s.out, yellow("Interrupted"))
	default:
		s.printRed("%s\n", err)
	}
}
