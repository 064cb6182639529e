// Package engine implements the virtual machine which executes a loaded program one instruction at a time.
//
// A VM is not safe for concurrent use, callers which share one must serialize all calls.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dylandreimerink/bfdb/pkg/program"
	"golang.org/x/exp/slices"
)

// State is the run state of the VM, every state except StateRunning stops execution.
type State int

const (
	StateRunning State = iota
	StateTapeUnderflow
	StateProgramEnded
	StateBreakpointHit
	StateWatchTriggered
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateTapeUnderflow:
		return "TapeUnderflow"
	case StateProgramEnded:
		return "ProgramEnded"
	case StateBreakpointHit:
		return "BreakpointHit"
	case StateWatchTriggered:
		return "WatchTriggered"
	}

	return "Unknown"
}

// Watch stops execution as soon as the cell at Index is changed to Value by an increment or decrement.
type Watch struct {
	Index int
	Value byte
}

// ErrStepLimit is returned by RunContext when the step bound is reached before the VM stopped on its own.
var ErrStepLimit = errors.New("step limit reached")

// How many steps RunUntil takes between checks of its context
const ctxCheckInterval = 1024

// VM holds all state of a single program execution.
type VM struct {
	prog program.Program
	pc   int
	// Index of the instruction executed last, -1 if none was executed since the last reset
	lastPC int

	tape []byte
	ptr  int

	input    []byte
	inputPtr int
	output   []byte

	state   State
	steps   int
	watches map[Watch]struct{}

	logger *slog.Logger
}

// Option configures optional VM settings
type Option func(vm *VM)

// WithLogger sets the logger used to report state transitions at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(vm *VM) {
		vm.logger = logger
	}
}

// New creates a VM which takes ownership of the program and input.
func New(prog program.Program, input []byte, opts ...Option) *VM {
	vm := &VM{
		prog:    prog,
		input:   input,
		watches: make(map[Watch]struct{}),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.Reset()

	return vm
}

// Reset puts the VM back into its initial state. The program, input and watches are kept.
func (vm *VM) Reset() {
	vm.pc = 0
	vm.lastPC = -1
	vm.tape = []byte{0}
	vm.ptr = 0
	vm.inputPtr = 0
	vm.output = nil
	vm.state = StateRunning
	vm.steps = 0
}

// Program returns the loaded program, it must not be modified.
func (vm *VM) Program() program.Program {
	return vm.prog
}

// Tape returns a copy of the tape
func (vm *VM) Tape() []byte {
	tape := make([]byte, len(vm.tape))
	copy(tape, vm.tape)
	return tape
}

// Pointer returns the index of the current cell
func (vm *VM) Pointer() int {
	return vm.ptr
}

// PC returns the index of the next instruction to execute. After the halt instruction has executed it is one past
// the end of the program.
func (vm *VM) PC() int {
	return vm.pc
}

// LastPC returns the index of the instruction executed last, or -1 if nothing was executed since the last reset.
// Unlike PC()-1 this follows jumps.
func (vm *VM) LastPC() int {
	return vm.lastPC
}

// Current returns the instruction at the program counter, false is returned once the program has finished.
func (vm *VM) Current() (program.Instruction, bool) {
	if vm.pc >= len(vm.prog) {
		return program.Instruction{}, false
	}

	return vm.prog[vm.pc], true
}

func (vm *VM) State() State {
	return vm.state
}

// Output returns a copy of all bytes written so far
func (vm *VM) Output() []byte {
	out := make([]byte, len(vm.output))
	copy(out, vm.output)
	return out
}

// Input returns the input bytes, they must not be modified.
func (vm *VM) Input() []byte {
	return vm.input
}

// InputOffset returns the index of the next input byte to be read
func (vm *VM) InputOffset() int {
	return vm.inputPtr
}

// Steps returns the amount of instructions executed since the last reset
func (vm *VM) Steps() int {
	return vm.steps
}

// AddWatch registers a memory watch. The index doesn't have to exist on the tape yet.
func (vm *VM) AddWatch(index int, value byte) {
	vm.watches[Watch{Index: index, Value: value}] = struct{}{}
}

// RemoveWatch removes a memory watch, returning false if it didn't exist.
func (vm *VM) RemoveWatch(index int, value byte) bool {
	w := Watch{Index: index, Value: value}
	if _, found := vm.watches[w]; !found {
		return false
	}

	delete(vm.watches, w)
	return true
}

// Watches returns all registered watches sorted by index and value
func (vm *VM) Watches() []Watch {
	watches := make([]Watch, 0, len(vm.watches))
	for w := range vm.watches {
		watches = append(watches, w)
	}

	slices.SortFunc(watches, func(a, b Watch) bool {
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Value < b.Value
	})

	return watches
}

// Step is the explicit single step, it re-arms the VM and executes the next instruction. This allows execution to
// resume after a breakpoint or watch stopped it.
func (vm *VM) Step() {
	vm.state = StateRunning
	vm.step()
}

// StepN executes at most n instructions, stopping as soon as the VM leaves the running state.
func (vm *VM) StepN(n int) {
	for i := 0; i < n; i++ {
		vm.step()
		if vm.state != StateRunning {
			return
		}
	}
}

// Run executes instructions until the VM leaves the running state. It never returns if the program loops forever,
// use RunContext if that is a concern.
func (vm *VM) Run() {
	for vm.state == StateRunning {
		vm.step()
	}
}

// RunContext is Run with an upper bound and cancellation. If maxSteps is bigger than zero ErrStepLimit is returned
// once that many instructions have been executed. The VM stays in the running state when the limit is hit or the
// context is canceled, so execution can be continued.
func (vm *VM) RunContext(ctx context.Context, maxSteps int) error {
	return vm.RunUntil(ctx, maxSteps, nil)
}

// RunUntil is RunContext with an extra stop condition. stop is called before every instruction and execution halts,
// without error, as soon as it returns true. A nil stop never halts.
func (vm *VM) RunUntil(ctx context.Context, maxSteps int, stop func(vm *VM) bool) error {
	for n := 0; vm.state == StateRunning; n++ {
		if maxSteps > 0 && n >= maxSteps {
			return ErrStepLimit
		}

		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if stop != nil && stop(vm) {
			return nil
		}

		vm.step()
	}

	return nil
}

func (vm *VM) step() {
	if vm.pc >= len(vm.prog) {
		vm.state = StateProgramEnded
		return
	}

	if vm.state != StateRunning {
		return
	}

	inst := vm.prog[vm.pc]
	vm.lastPC = vm.pc
	jumped := false

	switch inst.Op {
	case program.OpIncrement:
		vm.tape[vm.ptr]++
		vm.checkWatches()

	case program.OpDecrement:
		vm.tape[vm.ptr]--
		vm.checkWatches()

	case program.OpMoveRight:
		vm.ptr++
		if vm.ptr == len(vm.tape) {
			vm.tape = append(vm.tape, 0)
		}

	case program.OpMoveLeft:
		if vm.ptr == 0 {
			vm.setState(StateTapeUnderflow, inst)
			break
		}
		vm.ptr--

	case program.OpReadByte:
		if vm.inputPtr < len(vm.input) {
			vm.tape[vm.ptr] = vm.input[vm.inputPtr]
			vm.inputPtr++
		} else {
			vm.tape[vm.ptr] = 0
		}

	case program.OpWriteByte:
		vm.output = append(vm.output, vm.tape[vm.ptr])

	case program.OpLoopBegin:
		if vm.tape[vm.ptr] == 0 {
			vm.pc = inst.Target
			jumped = true
		}

	case program.OpLoopEnd:
		if vm.tape[vm.ptr] != 0 {
			vm.pc = inst.Target
			jumped = true
		}

	case program.OpBreakpoint:
		vm.setState(StateBreakpointHit, inst)

	case program.OpHalt:
		vm.setState(StateProgramEnded, inst)
	}

	// A jump lands on the matching bracket, which re-checks the cell on the next step
	if !jumped {
		vm.pc++
	}
	vm.steps++
}

func (vm *VM) checkWatches() {
	if _, found := vm.watches[Watch{Index: vm.ptr, Value: vm.tape[vm.ptr]}]; found {
		vm.logger.Debug("watch triggered", "index", vm.ptr, "value", vm.tape[vm.ptr], "pc", vm.pc)
		vm.state = StateWatchTriggered
	}
}

func (vm *VM) setState(state State, inst program.Instruction) {
	vm.state = state
	vm.logger.Debug("vm stopped",
		"state", state,
		"pc", vm.pc,
		"line", inst.Line,
		"column", inst.Column,
		"steps", vm.steps,
	)
}
