package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/dylandreimerink/bfdb/pkg/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVM(t *testing.T, src string, input []byte) *VM {
	t.Helper()

	prog, err := program.Load(src)
	require.NoError(t, err)

	return New(prog, input)
}

func TestNewVM(t *testing.T) {
	vm := newVM(t, "+", nil)

	assert.Equal(t, []byte{0}, vm.Tape())
	assert.Equal(t, 0, vm.Pointer())
	assert.Equal(t, 0, vm.PC())
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, 0, vm.Steps())
	assert.Empty(t, vm.Output())
	assert.Empty(t, vm.Watches())
}

func TestRunWriteScenario(t *testing.T) {
	vm := newVM(t, "+++.", nil)
	vm.Run()

	assert.Equal(t, []byte{3}, vm.Output())
	assert.Equal(t, StateProgramEnded, vm.State())
	assert.Equal(t, 5, vm.Steps())

	_, ok := vm.Current()
	assert.False(t, ok)
}

func TestRunClearLoop(t *testing.T) {
	vm := newVM(t, "+++++[-]", nil)
	vm.Run()

	assert.Equal(t, byte(0), vm.Tape()[0])
	assert.Equal(t, StateProgramEnded, vm.State())
}

func TestRunSkipsLoopOnZero(t *testing.T) {
	vm := newVM(t, "[+.]>", nil)
	vm.Run()

	assert.Empty(t, vm.Output())
	assert.Equal(t, []byte{0, 0}, vm.Tape())
	assert.Equal(t, StateProgramEnded, vm.State())
}

func TestRunNestedLoops(t *testing.T) {
	// 3 * 4 = 12 into cell 2
	vm := newVM(t, "+++[>++++[>+<-]<-]>>.", nil)
	vm.Run()

	assert.Equal(t, []byte{12}, vm.Output())
	assert.Equal(t, []byte{0, 0, 12}, vm.Tape())
}

func TestReadInput(t *testing.T) {
	vm := newVM(t, ",", []byte{65})
	vm.Run()

	assert.Equal(t, byte(65), vm.Tape()[0])
	assert.Equal(t, 1, vm.InputOffset())
}

func TestReadPastEndOfInput(t *testing.T) {
	vm := newVM(t, ",>,>+,,", []byte{7})
	vm.Run()

	assert.Equal(t, []byte{7, 0, 0}, vm.Tape())
	assert.Equal(t, 1, vm.InputOffset())
	assert.Equal(t, StateProgramEnded, vm.State())
}

func TestCellArithmeticWraps(t *testing.T) {
	t.Run("decrement zero", func(t *testing.T) {
		vm := newVM(t, "-", nil)
		vm.Run()
		assert.Equal(t, byte(255), vm.Tape()[0])
	})

	t.Run("increment 255", func(t *testing.T) {
		vm := newVM(t, "-+", nil)
		vm.Run()
		assert.Equal(t, byte(0), vm.Tape()[0])
	})
}

func TestTapeGrowth(t *testing.T) {
	vm := newVM(t, ">><>>", nil)

	vm.StepN(1)
	assert.Len(t, vm.Tape(), 2)
	vm.StepN(1)
	assert.Len(t, vm.Tape(), 3)
	vm.StepN(1)
	assert.Len(t, vm.Tape(), 3)
	assert.Equal(t, 1, vm.Pointer())
	vm.StepN(1)
	assert.Len(t, vm.Tape(), 3)
	vm.StepN(1)
	assert.Len(t, vm.Tape(), 4)
	assert.Equal(t, 3, vm.Pointer())
}

func TestTapeUnderflow(t *testing.T) {
	vm := newVM(t, "+<+", nil)
	vm.Run()

	assert.Equal(t, StateTapeUnderflow, vm.State())
	assert.Equal(t, 0, vm.Pointer())
	assert.Equal(t, []byte{1}, vm.Tape())
	assert.Equal(t, 2, vm.PC())

	// Further non-explicit steps are no-ops
	vm.StepN(10)
	vm.Run()
	assert.Equal(t, []byte{1}, vm.Tape())
	assert.Equal(t, 2, vm.Steps())

	// The explicit step resumes after the offending instruction
	vm.Step()
	assert.Equal(t, []byte{2}, vm.Tape())
	assert.Equal(t, StateRunning, vm.State())
}

func TestBreakpointInstruction(t *testing.T) {
	vm := newVM(t, "+!+.", nil)
	vm.Run()

	assert.Equal(t, StateBreakpointHit, vm.State())
	assert.Equal(t, []byte{1}, vm.Tape())
	assert.Equal(t, 2, vm.PC())
	assert.Empty(t, vm.Output())

	vm.Step()
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, []byte{2}, vm.Tape())

	vm.Run()
	assert.Equal(t, StateProgramEnded, vm.State())
	assert.Equal(t, []byte{2}, vm.Output())
}

func TestWatch(t *testing.T) {
	vm := newVM(t, "+++>+++", nil)
	vm.AddWatch(0, 2)
	vm.AddWatch(1, 3)

	vm.Run()
	assert.Equal(t, StateWatchTriggered, vm.State())
	assert.Equal(t, []byte{2}, vm.Tape())

	vm.Step()
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, []byte{3}, vm.Tape())

	vm.Run()
	assert.Equal(t, StateWatchTriggered, vm.State())
	assert.Equal(t, []byte{3, 3}, vm.Tape())
}

func TestWatchOnlyFiresForItsCell(t *testing.T) {
	// Cell 1 is set to 1 by a read and a move, neither of which are increments at index 1
	vm := newVM(t, ">,<+>", []byte{1})
	vm.AddWatch(1, 1)
	vm.Run()

	assert.Equal(t, StateProgramEnded, vm.State())
	assert.Equal(t, []byte{1, 1}, vm.Tape())
}

func TestWatchNotAllocatedYet(t *testing.T) {
	vm := newVM(t, "+>>+", nil)
	vm.AddWatch(2, 1)

	vm.StepN(3)
	assert.Equal(t, StateRunning, vm.State())
	vm.StepN(1)
	assert.Equal(t, StateWatchTriggered, vm.State())
}

func TestWatchDuplicatesAndRemove(t *testing.T) {
	vm := newVM(t, "+", nil)
	vm.AddWatch(3, 1)
	vm.AddWatch(0, 9)
	vm.AddWatch(3, 1)
	vm.AddWatch(0, 2)

	assert.Equal(t, []Watch{{0, 2}, {0, 9}, {3, 1}}, vm.Watches())

	assert.True(t, vm.RemoveWatch(0, 9))
	assert.False(t, vm.RemoveWatch(0, 9))
	assert.Equal(t, []Watch{{0, 2}, {3, 1}}, vm.Watches())
}

func TestStepNMatchesSingleSteps(t *testing.T) {
	const src = "++[>+++<-]>.<,!+>>-<<[-]"

	for n := 0; n < 40; n++ {
		a := newVM(t, src, []byte{4})
		b := newVM(t, src, []byte{4})
		a.AddWatch(1, 5)
		b.AddWatch(1, 5)

		a.StepN(n)
		for i := 0; i < n; i++ {
			b.StepN(1)
			if b.State() != StateRunning {
				break
			}
		}

		assert.Equal(t, b.Tape(), a.Tape(), "n=%d", n)
		assert.Equal(t, b.Pointer(), a.Pointer(), "n=%d", n)
		assert.Equal(t, b.Output(), a.Output(), "n=%d", n)
		assert.Equal(t, b.State(), a.State(), "n=%d", n)
		assert.Equal(t, b.Steps(), a.Steps(), "n=%d", n)
	}
}

func TestStepNStopsEarly(t *testing.T) {
	vm := newVM(t, "+!++", nil)
	vm.StepN(100)

	assert.Equal(t, StateBreakpointHit, vm.State())
	assert.Equal(t, 2, vm.Steps())
}

func TestStepAfterEnd(t *testing.T) {
	vm := newVM(t, "+", nil)
	vm.Run()
	require.Equal(t, StateProgramEnded, vm.State())
	steps := vm.Steps()

	vm.Step()
	vm.Step()
	assert.Equal(t, StateProgramEnded, vm.State())
	assert.Equal(t, steps, vm.Steps())
	assert.Equal(t, []byte{1}, vm.Tape())
}

func TestJumpLandsOnMatchingBracket(t *testing.T) {
	vm := newVM(t, "[+]", nil)

	vm.StepN(1)
	assert.Equal(t, 2, vm.PC())
	vm.StepN(1)
	assert.Equal(t, 3, vm.PC())
	assert.Equal(t, StateRunning, vm.State())
}

func TestReset(t *testing.T) {
	vm := newVM(t, ",>+.", []byte{9})
	vm.AddWatch(5, 5)
	vm.Run()

	vm.Reset()
	assert.Equal(t, []byte{0}, vm.Tape())
	assert.Equal(t, 0, vm.PC())
	assert.Equal(t, 0, vm.Pointer())
	assert.Equal(t, 0, vm.Steps())
	assert.Equal(t, 0, vm.InputOffset())
	assert.Empty(t, vm.Output())
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, []Watch{{5, 5}}, vm.Watches())

	vm.Run()
	assert.Equal(t, []byte{9, 1}, vm.Tape())
}

func TestAccessorsReturnCopies(t *testing.T) {
	vm := newVM(t, "+.", nil)
	vm.Run()

	tape := vm.Tape()
	tape[0] = 42
	out := vm.Output()
	out[0] = 42

	assert.Equal(t, []byte{1}, vm.Tape())
	assert.Equal(t, []byte{1}, vm.Output())
}

func TestRunContextStepLimit(t *testing.T) {
	vm := newVM(t, "+[]", nil)

	err := vm.RunContext(context.Background(), 100)
	assert.True(t, errors.Is(err, ErrStepLimit))
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, 100, vm.Steps())

	err = vm.RunContext(context.Background(), 50)
	assert.True(t, errors.Is(err, ErrStepLimit))
	assert.Equal(t, 150, vm.Steps())
}

func TestRunContextCanceled(t *testing.T) {
	vm := newVM(t, "+[]", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := vm.RunContext(ctx, 0)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateRunning, vm.State())
}

func TestRunContextFinishes(t *testing.T) {
	vm := newVM(t, "+++.", nil)

	err := vm.RunContext(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, StateProgramEnded, vm.State())
	assert.Equal(t, 5, vm.Steps())
}

func TestRunUntilStop(t *testing.T) {
	vm := newVM(t, "+++++.", nil)

	err := vm.RunUntil(context.Background(), 0, func(vm *VM) bool {
		return vm.Tape()[0] == 3
	})
	require.NoError(t, err)
	assert.Equal(t, StateRunning, vm.State())
	assert.Equal(t, 3, vm.PC())
	assert.Equal(t, 3, vm.Steps())

	// The step limit still applies
	err = vm.RunUntil(context.Background(), 1, func(vm *VM) bool { return false })
	assert.True(t, errors.Is(err, ErrStepLimit))
	assert.Equal(t, 4, vm.Steps())
}

func TestLastPCFollowsJumps(t *testing.T) {
	vm := newVM(t, "++[-]", nil)
	assert.Equal(t, -1, vm.LastPC())

	vm.StepN(5)
	// The loop end jumped back to the loop begin
	assert.Equal(t, 2, vm.PC())
	assert.Equal(t, 4, vm.LastPC())

	vm.Reset()
	assert.Equal(t, -1, vm.LastPC())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "TapeUnderflow", StateTapeUnderflow.String())
	assert.Equal(t, "ProgramEnded", StateProgramEnded.String())
	assert.Equal(t, "BreakpointHit", StateBreakpointHit.String())
	assert.Equal(t, "WatchTriggered", StateWatchTriggered.String())
}
