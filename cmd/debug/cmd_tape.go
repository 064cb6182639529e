package debug

import (
	"fmt"
	"strconv"
)

var cmdTape = Command{
	Name:    "tape",
	Aliases: []string{"mem", "memory"},
	Summary: "Show the contents of the tape",
	Description: "Shows the cells from {start} up to {end} as a hex dump, 16 cells per row. The current cell is " +
		"green. Without arguments the whole tape is shown.",
	Exec: tapeExec,
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

func tapeExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	tape := s.vm.Tape()
	ptr := s.vm.Pointer()

	start, end := 0, len(tape)

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
	if end > len(tape) {
		end = len(tape)
	}

	if end <= start {
		s.printRed("'end' must be bigger than 'start', the tape has %d cells\n", len(tape))
		return
	}

	fmt.Fprintf(s.out, "%s (%d cells, pointer at %d):\n", green("tape"), len(tape), ptr)
	fmt.Fprint(s.out, blue(fmt.Sprintf("0x%08X ", start)))
	for j := start; j < end; j++ {
		if j == ptr {
			fmt.Fprint(s.out, green(fmt.Sprintf("%02X ", tape[j])))
		} else {
			fmt.Fprintf(s.out, "%02X ", tape[j])
		}

		n := j - start
		if n%16 == 15 && j+1 < end {
			fmt.Fprintf(s.out, "\n%s ", blue(fmt.Sprintf("0x%08X", j+1)))
		} else if n%8 == 7 {
			fmt.Fprint(s.out, " ")
		}
	}
	fmt.Fprint(s.out, "\n\n")
}
