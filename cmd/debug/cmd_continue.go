package debug

import (
	"fmt"
)

var cmdContinue = Command{
	Name:    "continue",
	Aliases: []string{"c"},
	Summary: "Continue execution of the program until it stops or a breakpoint is hit",
	Description: "Like run, but also stops at enabled breakpoints set with 'breakpoint set'. The VM is re-armed " +
		"first, so continue resumes after a breakpoint instruction or watch.",
	Exec: continueExec,
	Args: []CmdArg{{
		Name:     "step limit",
		Required: false,
	}},
}

func continueExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	limit, ok := s.stepLimit(args)
	if !ok {
		return
	}

	// Execute the current instruction unconditionally, else we would stop at the breakpoint we are sitting on
	s.vm.Step()

	hit := -1
	err := s.runUntil(func() bool {
		for i, bp := range s.breakpoints {
			if bp.ShouldBreak(s.vm) {
				hit = i
				return true
			}
		}
		return false
	}, limit)
	s.reportRunErr(err)

	if hit != -1 {
		fmt.Fprintf(s.out, "Hit breakpoint '%d'\n", hit)

		switch s.breakpoints[hit].(type) {
		case *InstructionBreakpoint:
			listInstructionExec(s, nil)
		default:
			listLinesExec(s, nil)
		}
		return
	}

	s.reportState()
	s.showView()
}
