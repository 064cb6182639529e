package debug

import (
	"fmt"
	"strconv"
	"strings"
)

var cmdListInstructions = Command{
	Name:    "list-instructions",
	Aliases: []string{"li"},
	Summary: "Lists the instructions of the program",
	Exec:    listInstructionExec,
	Args: []CmdArg{
		{
			Name:     "start",
			Required: false,
		},
		{
			Name:     "end",
			Required: false,
		},
	},
}

func listInstructionExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	prog := s.vm.Program()
	pc := s.vm.PC()

	start := pc - s.cfg.Window
	end := pc + s.cfg.Window

	var err error
	if len(args) >= 1 {
		start, err = strconv.Atoi(args[0])
		if err != nil {
			s.printRed("invalid start: %s\n", err)
			return
		}
	}

	if len(args) >= 2 {
		end, err = strconv.Atoi(args[1])
		if err != nil {
			s.printRed("invalid end: %s\n", err)
			return
		}
	}

	if start < 0 {
		start = 0
	}
	if end > len(prog) {
		end = len(prog)
	}

	if end <= start {
		s.printRed("'end' must be bigger than 'start'\n")
		return
	}

	lines := strings.Split(s.source, "\n")
	lastLine := -1

	indexPadSize := len(strconv.Itoa(end))
	for i := start; i < end; i++ {
		inst := prog[i]

		// Show the source line above its first instruction
		if inst.Line != lastLine && inst.Line > 0 && inst.Line <= len(lines) {
			line := strings.TrimSpace(lines[inst.Line-1])
			fmt.Fprint(s.out, "   ", strings.Repeat(" ", indexPadSize), "; ")
			fmt.Fprintln(s.out, green(fmt.Sprintf("%d: %s", inst.Line, line)))
			lastLine = inst.Line
		}

		if i == pc {
			fmt.Fprint(s.out, yellow(" => "))
		} else {
			fmt.Fprint(s.out, "    ")
		}

		fmt.Fprint(s.out, blue(fmt.Sprintf("%*d ", indexPadSize, i)))
		fmt.Fprintln(s.out, inst)
	}
}
