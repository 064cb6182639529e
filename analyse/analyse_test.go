package analyse

import (
	"strings"
	"testing"

	"github.com/dylandreimerink/bfdb/pkg/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramBlocks(t *testing.T) {
	prog, err := program.Load("+[-].")
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	require.Len(t, blocks, 3)

	b0, b1, b2 := blocks[0], blocks[1], blocks[2]

	assert.Equal(t, 0, b0.Start)
	assert.Len(t, b0.Block, 2)
	assert.Equal(t, program.OpLoopBegin, b0.Last().Op)
	assert.Same(t, b1, b0.NoBranch)
	assert.Same(t, b2, b0.Branch)

	assert.Equal(t, 2, b1.Start)
	assert.Same(t, b2, b1.NoBranch)
	assert.Same(t, b1, b1.Branch)

	assert.Equal(t, 4, b2.Start)
	assert.Equal(t, program.OpHalt, b2.Last().Op)
	assert.Nil(t, b2.NoBranch)
	assert.Nil(t, b2.Branch)
}

func TestProgramBlocksStraightLine(t *testing.T) {
	prog, err := program.Load("++>.")
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Block, 5)
}

func TestProgramBlocksAdjacentBrackets(t *testing.T) {
	prog, err := program.Load("[[]]")
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	require.Len(t, blocks, 5)

	for i, block := range blocks {
		assert.Equal(t, i, block.Index)
		assert.Equal(t, i, block.Start)
	}

	// The outer begin jumps past the outer end, into the halt block
	assert.Same(t, blocks[4], blocks[0].Branch)
	// The inner end jumps back into the inner body, which starts at the inner end itself
	assert.Same(t, blocks[2], blocks[2].Branch)
	// The outer end jumps back to the instruction after the outer begin
	assert.Same(t, blocks[1], blocks[3].Branch)
}

func TestProgramBlocksDoesNotModifyProgram(t *testing.T) {
	prog, err := program.Load("+[-]")
	require.NoError(t, err)
	orig := append(program.Program(nil), prog...)

	blocks := ProgramBlocks(prog)
	blocks[0].Block[0].Op = program.OpDecrement

	assert.Equal(t, orig, prog)
}

func TestFlowPermutations(t *testing.T) {
	prog, err := program.Load("+[-].")
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	perms, truncated := FlowPermutations(blocks[0], 0)
	assert.False(t, truncated)

	var paths []string
	for _, perm := range perms {
		paths = append(paths, perm.String())
	}

	assert.Equal(t, []string{
		"0 -> 2",
		"0 -> 1 -> 2",
		"0 -> 1 -> 1 -> 2",
	}, paths)
}

func TestFlowPermutationsLimit(t *testing.T) {
	prog, err := program.Load(strings.Repeat("+[-]\n", 12))
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	perms, truncated := FlowPermutations(blocks[0], 8)
	assert.True(t, truncated)
	assert.Len(t, perms, 8)

	// Every collected path still runs to the end of the program
	for _, perm := range perms {
		assert.Nil(t, perm.Last().NoBranch)
	}
}

func TestBlockString(t *testing.T) {
	prog, err := program.Load("[]")
	require.NoError(t, err)

	blocks := ProgramBlocks(prog)
	assert.Equal(t, "Block 0:\n0 [ loop-begin -> 1\nNo-Branch: 1\nBranch: 2\n", blocks[0].String())
}
