package debug

import (
	"strconv"
)

var cmdStep = Command{
	Name:    "step",
	Aliases: []string{"s"},
	Summary: "Execute one or more instructions",
	Description: "Without argument a single instruction is executed, even if the VM was stopped by a breakpoint or " +
		"watch. With a count, at most that many instructions are executed, stopping at breakpoints and watches.",
	Exec: stepExec,
	Args: []CmdArg{{
		Name:     "count",
		Required: false,
	}},
}

func stepExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	if len(args) == 0 {
		s.vm.Step()
	} else {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			s.printRed("Invalid step count '%s', must be a positive integer\n", args[0])
			return
		}

		s.vm.StepN(n)
	}

	s.reportState()
	s.showView()
}
