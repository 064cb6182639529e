package debug

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/dylandreimerink/bfdb/pkg/engine"
	"github.com/dylandreimerink/bfdb/pkg/program"
)

var cmdDump = Command{
	Name:    "dump",
	Aliases: []string{"spew"},
	Summary: "Dump the complete VM state",
	Exec:    dumpExec,
}

// vmSnapshot collects everything the VM exposes, spew can't see unexported fields
type vmSnapshot struct {
	Source      string
	Input       string
	PC          int
	Current     *program.Instruction
	Pointer     int
	Tape        []byte
	InputOffset int
	InputBytes  []byte
	Output      []byte
	State       engine.State
	Steps       int
	Watches     []engine.Watch
	Breakpoints []Breakpoint
}

func dumpExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	snap := vmSnapshot{
		Source:      s.sourcePath,
		Input:       s.inputPath,
		PC:          s.vm.PC(),
		Pointer:     s.vm.Pointer(),
		Tape:        s.vm.Tape(),
		InputOffset: s.vm.InputOffset(),
		InputBytes:  s.vm.Input(),
		Output:      s.vm.Output(),
		State:       s.vm.State(),
		Steps:       s.vm.Steps(),
		Watches:     s.vm.Watches(),
		Breakpoints: s.breakpoints,
	}
	if inst, ok := s.vm.Current(); ok {
		snap.Current = &inst
	}

	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(s.out, snap)
}
