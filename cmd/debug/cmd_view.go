package debug

import (
	"fmt"
	"strings"

	"github.com/dylandreimerink/bfdb/pkg/engine"
	"github.com/dylandreimerink/bfdb/pkg/program"
)

var cmdView = Command{
	Name:    "view",
	Aliases: []string{"v"},
	Summary: "Show the program, tape, state and output",
	Exec: func(s *Session, args []string) {
		if !s.requireVM() {
			return
		}

		s.showView()
	},
}

// showView renders the combined view shown after every command which executes instructions
func (s *Session) showView() {
	vm := s.vm
	pc := vm.PC()

	var sb strings.Builder
	for i, inst := range vm.Program() {
		if i == pc {
			sb.WriteString(instHighlight(inst.Op.String()))
		} else {
			sb.WriteString(inst.Op.String())
		}
	}
	fmt.Fprintln(s.out, sb.String())

	if inst, ok := vm.Current(); ok {
		fmt.Fprintf(s.out, "source: %s\n", location(inst))
	} else {
		fmt.Fprintln(s.out, "source: -")
	}

	tape := vm.Tape()
	ptr := vm.Pointer()
	start, end := tapeWindow(len(tape), ptr, s.cfg.TapeWindow)

	var mem, ind strings.Builder
	for i := start; i < end; i++ {
		cell := fmt.Sprintf("%3d", tape[i])
		index := fmt.Sprintf("%3d", i)
		if i == ptr {
			cell = cellHighlight(cell)
			index = cellHighlight(index)
		}

		mem.WriteString(cell + " ")
		ind.WriteString(index + " ")
	}
	fmt.Fprintf(s.out, "mem: %s\n", mem.String())
	fmt.Fprintf(s.out, "ind: %s\n", ind.String())

	fmt.Fprintf(s.out, "%s. steps: %d\n", vm.State(), vm.Steps())
	fmt.Fprintf(s.out, "output: %s\n", decodeOutput(vm.Output()))
}

// tapeWindow returns the range of at most size cells to show, keeping ptr in view
func tapeWindow(tapeLen, ptr, size int) (int, int) {
	if size <= 0 || size >= tapeLen {
		return 0, tapeLen
	}

	start := ptr - size/2
	if start < 0 {
		start = 0
	}

	end := start + size
	if end > tapeLen {
		end = tapeLen
		start = end - size
	}

	return start, end
}

// decodeOutput turns output bytes into printable text, invalid UTF-8 is replaced
func decodeOutput(out []byte) string {
	return strings.ToValidUTF8(string(out), "�")
}

// reportState describes why the VM stopped, nothing is printed while it is still running
func (s *Session) reportState() {
	switch s.vm.State() {
	case engine.StateProgramEnded:
		fmt.Fprintln(s.out, "Program exited")

	case engine.StateBreakpointHit:
		fmt.Fprintf(s.out, "Hit breakpoint instruction at %s\n", s.lastLocation())

	case engine.StateWatchTriggered:
		ptr := s.vm.Pointer()
		fmt.Fprintf(s.out, "Watch triggered: cell %d == %d\n", ptr, s.vm.Tape()[ptr])

	case engine.StateTapeUnderflow:
		s.printRed("Tape underflow at %s\n", s.lastLocation())
	}
}

// lastLocation is the source location of the instruction executed last
func (s *Session) lastLocation() string {
	pc := s.vm.LastPC()
	prog := s.vm.Program()
	if pc < 0 || pc >= len(prog) {
		return "-"
	}

	return location(prog[pc])
}

func location(inst program.Instruction) string {
	return fmt.Sprintf("%d:%d", inst.Line, inst.Column)
}
