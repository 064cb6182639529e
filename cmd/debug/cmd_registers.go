package debug

import (
	"fmt"
)

var cmdRegisters = Command{
	Name:    "registers",
	Aliases: []string{"r", "regs"},
	Summary: "Show registers",
	Exec:    registersExec,
}

func registersExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	vm := s.vm
	fmt.Fprint(s.out, "Registers:\n")

	fmt.Fprintf(s.out, "%s = %s", blue("   PC"), yellow(fmt.Sprintf("%d", vm.PC())))
	if inst, ok := vm.Current(); ok {
		fmt.Fprintf(s.out, " -> %s", yellow(inst.String()))
	}
	fmt.Fprint(s.out, "\n")

	ptr := vm.Pointer()
	fmt.Fprintf(s.out, "%s = %s\n", blue("  PTR"), yellow(fmt.Sprintf("%d", ptr)))
	fmt.Fprintf(s.out, "%s = %s\n", blue(" CELL"), yellow(fmt.Sprintf("%d", vm.Tape()[ptr])))
	fmt.Fprintf(s.out, "%s = %s\n", blue("STATE"), yellow(vm.State().String()))
	fmt.Fprintf(s.out, "%s = %s\n", blue("STEPS"), yellow(fmt.Sprintf("%d", vm.Steps())))
	fmt.Fprintf(s.out, "%s = %s\n", blue("   IN"), yellow(fmt.Sprintf("%d/%d", vm.InputOffset(), len(vm.Input()))))
	fmt.Fprintf(s.out, "%s = %s\n", blue("  OUT"), yellow(fmt.Sprintf("%d", len(vm.Output()))))
}
