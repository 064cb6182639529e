package debug

import "fmt"

var cmdReset = Command{
	Name:    "reset",
	Summary: "Reset the VM to the start of the program",
	Description: "Clears the tape, output and input cursor and moves the program counter back to the first " +
		"instruction. Watches and breakpoints are kept.",
	Exec: func(s *Session, args []string) {
		if !s.requireVM() {
			return
		}

		s.vm.Reset()
		fmt.Fprintln(s.out, "VM reset")
	},
}
