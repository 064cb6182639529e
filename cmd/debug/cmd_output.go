package debug

import "fmt"

var cmdOutput = Command{
	Name:    "output",
	Aliases: []string{"out"},
	Summary: "Show the output written by the program",
	Exec: func(s *Session, args []string) {
		if !s.requireVM() {
			return
		}

		fmt.Fprintln(s.out, decodeOutput(s.vm.Output()))
	},
}
