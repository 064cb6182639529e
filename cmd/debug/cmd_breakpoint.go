package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dylandreimerink/bfdb/pkg/engine"
	"github.com/go-delve/delve/pkg/locspec"
	"golang.org/x/exp/slices"
)

var cmdBreakpoint = Command{
	Name:    "breakpoint",
	Aliases: []string{"b", "br", "bp", "break"},
	Summary: "Commands related to breakpoints",
	Description: "Breakpoints stop 'continue' before the instruction they point at is executed. Unlike the '!' " +
		"instruction they don't change the program.",
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "List all breakpoints",
			Exec:    listBreakpointsExec,
		},
		{
			Name:    "set",
			Aliases: []string{"add"},
			Summary: "Set a new breakpoint",
			Description: "The location is '*<instruction index>', '+<offset>' or '-<offset>' relative to the " +
				"current instruction, or '<line>' for the first instruction of a source line.",
			Exec: setBreakpointExec,
			Args: []CmdArg{{
				Name:     "loc spec",
				Required: true,
			}},
		},
		{
			Name:    "enable",
			Summary: "Enable a breakpoint",
			Exec:    enableBreakpointExec,
			Args: []CmdArg{{
				Name:     "breakpoint id",
				Required: true,
			}},
		},
		{
			Name:    "disable",
			Summary: "Disable a breakpoint",
			Exec:    disableBreakpointExec,
			Args: []CmdArg{{
				Name:     "breakpoint id",
				Required: true,
			}},
		},
	},
}

func listBreakpointsExec(s *Session, args []string) {
	if len(s.breakpoints) == 0 {
		fmt.Fprintln(s.out, "No breakpoints set")
		return
	}

	indexPadSize := len(strconv.Itoa(len(s.breakpoints)))
	for i, bp := range s.breakpoints {
		if bp.Enabled() {
			fmt.Fprint(s.out, blue(fmt.Sprintf("%*d ", indexPadSize, i)))
		} else {
			fmt.Fprint(s.out, blueStrike(fmt.Sprintf("%*d ", indexPadSize, i)))
		}

		desc := fmt.Sprintf("%s\n", bp)
		if bp.Enabled() {
			fmt.Fprint(s.out, desc)
		} else {
			fmt.Fprint(s.out, whiteStrike(desc))
		}
	}
}

func setBreakpointExec(s *Session, args []string) {
	if len(args) < 1 {
		s.printRed("Missing {loc spec} argument\n\n")
		fmt.Fprintln(s.out, "Usage:")
		helpExec(s, []string{"breakpoint", "set"})
		return
	}

	if !s.requireVM() {
		return
	}

	bp, err := parseBreakpoint(s.vm, args[0])
	if err != nil {
		s.printRed("%s\n", err)
		return
	}

	bp.Enable()
	s.breakpoints = append(s.breakpoints, bp)
	fmt.Fprintf(s.out, "Added breakpoint with id '%d'\n", len(s.breakpoints)-1)
}

// parseBreakpoint turns a location spec into a breakpoint for the program loaded in vm
func parseBreakpoint(vm *engine.VM, spec string) (Breakpoint, error) {
	loc, err := locspec.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("Invalid loc spec: %w", err)
	}

	prog := vm.Program()

	switch loc := loc.(type) {
	case *locspec.AddrLocationSpec:
		pc, err := strconv.Atoi(strings.TrimSpace(loc.AddrExpr))
		if err != nil {
			return nil, fmt.Errorf("Invalid instruction number '%s', must be formatted like *<instruction number>",
				loc.AddrExpr)
		}

		if pc < 0 || pc > prog.Halt() {
			return nil, fmt.Errorf("Instruction number %d out of range, the program has %d instructions",
				pc, len(prog))
		}

		return &InstructionBreakpoint{ProgramCounter: pc}, nil

	case *locspec.OffsetLocationSpec:
		pc := vm.PC() + loc.Offset
		if pc < 0 {
			return nil, fmt.Errorf("Instruction number can't be negative")
		}
		if pc > prog.Halt() {
			return nil, fmt.Errorf("Instruction number %d is past the end of the program", pc)
		}

		return &InstructionBreakpoint{ProgramCounter: pc}, nil

	case *locspec.LineLocationSpec:
		if !slices.Contains(prog.Lines(), loc.Line) {
			return nil, fmt.Errorf("Line %d contains no instructions", loc.Line)
		}

		return &LineBreakpoint{Line: loc.Line}, nil

	case *locspec.RegexLocationSpec:
		return nil, fmt.Errorf("Regex locspec not supported by bfdb")

	default:
		return nil, fmt.Errorf("Unsupported locspec type '%T'", loc)
	}
}

func (s *Session) breakpointByID(args []string) (int, bool) {
	if len(args) < 1 {
		s.printRed("Missing required argument 'breakpoint id'\n")
		return 0, false
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.printRed("%s\n", err)
		return 0, false
	}

	if id < 0 || len(s.breakpoints) <= id {
		s.printRed("No breakpoint with id '%d' exists, use 'breakpoint list' to see valid options\n", id)
		return 0, false
	}

	return id, true
}

func enableBreakpointExec(s *Session, args []string) {
	id, ok := s.breakpointByID(args)
	if !ok {
		return
	}

	s.breakpoints[id].Enable()
	fmt.Fprintf(s.out, "Breakpoint '%d' is enabled\n", id)
}

func disableBreakpointExec(s *Session, args []string) {
	id, ok := s.breakpointByID(args)
	if !ok {
		return
	}

	s.breakpoints[id].Disable()
	fmt.Fprintf(s.out, "Breakpoint '%d' is disabled\n", id)
}

type Breakpoint interface {
	ShouldBreak(vm *engine.VM) bool
	Enabled() bool
	Enable()
	Disable()
	String() string
}

type abstractBreakpoint struct {
	enabled bool
}

func (ab *abstractBreakpoint) Enabled() bool {
	return ab.enabled
}

func (ab *abstractBreakpoint) Enable() {
	ab.enabled = true
}

func (ab *abstractBreakpoint) Disable() {
	ab.enabled = false
}

// InstructionBreakpoint breaks before the instruction at ProgramCounter is executed
type InstructionBreakpoint struct {
	abstractBreakpoint
	ProgramCounter int
}

func (ib *InstructionBreakpoint) ShouldBreak(vm *engine.VM) bool {
	if !ib.enabled {
		return false
	}

	return vm.PC() == ib.ProgramCounter
}

func (ib *InstructionBreakpoint) String() string {
	return fmt.Sprintf("*%d", ib.ProgramCounter)
}

// LineBreakpoint breaks when execution enters a source line, not on every instruction of that line
type LineBreakpoint struct {
	abstractBreakpoint
	Line int
}

func (lb *LineBreakpoint) ShouldBreak(vm *engine.VM) bool {
	if !lb.enabled {
		return false
	}

	inst, ok := vm.Current()
	if !ok || inst.Line != lb.Line {
		return false
	}

	// Compare with the instruction which actually ran, a loop end jumping back stays on the same line
	last := vm.LastPC()
	if last < 0 {
		return true
	}

	return vm.Program()[last].Line != lb.Line
}

func (lb *LineBreakpoint) String() string {
	return fmt.Sprintf("line %d", lb.Line)
}
