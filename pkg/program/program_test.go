package program

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimple(t *testing.T) {
	prog, err := Load("+-><,.!")
	require.NoError(t, err)
	require.Len(t, prog, 8)

	want := []Op{OpIncrement, OpDecrement, OpMoveRight, OpMoveLeft, OpReadByte, OpWriteByte, OpBreakpoint, OpHalt}
	for i, op := range want {
		assert.Equal(t, op, prog[i].Op, "instruction %d", i)
	}

	assert.Equal(t, 7, prog.Halt())
	assert.Equal(t, Instruction{Op: OpHalt}, prog[prog.Halt()])
}

func TestLoadEmpty(t *testing.T) {
	prog, err := Load("")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, OpHalt, prog[0].Op)
}

func TestLoadIgnoresOtherCharacters(t *testing.T) {
	prog, err := Load("hello + world\n\t- é >")
	require.NoError(t, err)
	require.Len(t, prog, 4)

	assert.Equal(t, Instruction{Op: OpIncrement, Line: 1, Column: 6}, prog[0])
	assert.Equal(t, Instruction{Op: OpDecrement, Line: 2, Column: 1}, prog[1])
	// The multi-byte rune counts as a single column
	assert.Equal(t, Instruction{Op: OpMoveRight, Line: 2, Column: 5}, prog[2])
}

func TestLoadCarriageReturn(t *testing.T) {
	prog, err := Load("+\r\n-\r\n")
	require.NoError(t, err)
	require.Len(t, prog, 3)
	assert.Equal(t, 1, prog[0].Line)
	assert.Equal(t, 2, prog[1].Line)
	assert.Equal(t, 0, prog[1].Column)
}

func TestLoadResolvesLoopTargets(t *testing.T) {
	tests := []string{
		"[]",
		"+[-]",
		"++[>++[>+<-]<-]",
		"[[[]]][][[]]",
		"[\n+\n[\n-\n]\n]",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			prog, err := Load(src)
			require.NoError(t, err)

			assert.Equal(t, OpHalt, prog[len(prog)-1].Op)

			for i, inst := range prog {
				switch inst.Op {
				case OpLoopBegin:
					require.Equal(t, OpLoopEnd, prog[inst.Target].Op, "begin %d", i)
					assert.Equal(t, i, prog[inst.Target].Target, "begin %d", i)
					assert.Greater(t, inst.Target, i)
				case OpLoopEnd:
					require.Equal(t, OpLoopBegin, prog[inst.Target].Op, "end %d", i)
					assert.Equal(t, i, prog[inst.Target].Target, "end %d", i)
					assert.Less(t, inst.Target, i)
				}
			}
		})
	}
}

func TestLoadNestedTargets(t *testing.T) {
	prog, err := Load("[[]]")
	require.NoError(t, err)

	assert.Equal(t, 3, prog[0].Target)
	assert.Equal(t, 2, prog[1].Target)
	assert.Equal(t, 1, prog[2].Target)
	assert.Equal(t, 0, prog[3].Target)
}

func TestLoadUnmatchedClose(t *testing.T) {
	_, err := Load("+\n+]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatchedBracket))

	var closeErr *UnmatchedCloseBracketError
	require.True(t, errors.As(err, &closeErr))
	assert.Equal(t, 2, closeErr.Line)
	assert.Equal(t, 1, closeErr.Column)
	assert.Equal(t, "no opening bracket for closing bracket at 2:1", err.Error())
}

func TestLoadUnmatchedCloseAfterBalanced(t *testing.T) {
	_, err := Load("[]]")

	var closeErr *UnmatchedCloseBracketError
	require.True(t, errors.As(err, &closeErr))
	assert.Equal(t, 1, closeErr.Line)
	assert.Equal(t, 2, closeErr.Column)
}

func TestLoadUnmatchedOpen(t *testing.T) {
	_, err := Load("+\n [ [ []")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatchedBracket))

	var openErr *UnmatchedOpenBracketError
	require.True(t, errors.As(err, &openErr))
	// The outermost unclosed bracket is reported
	assert.Equal(t, 2, openErr.Line)
	assert.Equal(t, 1, openErr.Column)
	assert.Equal(t, "no matching closing bracket for open bracket at 2:1", err.Error())
}

func TestProgramLines(t *testing.T) {
	prog, err := Load("+\n\nfoo\n-+\n>")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5}, prog.Lines())
}

func TestInstructionString(t *testing.T) {
	prog, err := Load("[+]")
	require.NoError(t, err)

	assert.Equal(t, "[ loop-begin -> 2", prog[0].String())
	assert.Equal(t, "+ increment", prog[1].String())
	assert.Equal(t, "] loop-end -> 0", prog[2].String())
	assert.Equal(t, "  halt", prog[3].String())
}
