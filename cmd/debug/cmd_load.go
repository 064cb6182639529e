package debug

import (
	"fmt"
)

var cmdLoad = Command{
	Name:        "load",
	Summary:     "Load a program and optionally its input",
	Description: "This command reads and parses the source file and starts a fresh VM. Watches and breakpoints of a previously loaded program are dropped.",
	Exec:        loadExec,
	Args: []CmdArg{
		{
			Name:     "source file path",
			Required: true,
		},
		{
			Name:     "input file path",
			Required: false,
		},
	},
	CustomCompletion: fileCompletion,
}

func loadExec(s *Session, args []string) {
	if len(args) == 0 {
		s.printRed("At least one argument required\n")
		helpExec(s, []string{"load"})
		return
	}

	inputPath := ""
	if len(args) > 1 {
		inputPath = args[1]
	}

	if err := s.Load(args[0], inputPath); err != nil {
		s.printRed("%s\n", err)
		return
	}

	prog := s.vm.Program()
	fmt.Fprintf(s.out, "Loaded program '%s' with %d instructions\n", args[0], len(prog)-1)
	if inputPath != "" {
		fmt.Fprintf(s.out, "Loaded %d bytes of input from '%s'\n", len(s.vm.Input()), inputPath)
	}
}
