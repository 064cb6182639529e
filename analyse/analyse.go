package analyse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dylandreimerink/bfdb/pkg/program"
	"golang.org/x/exp/slices"
)

// ProgramBlocks splits a program into blocks of straight-line code. A block ends after every loop instruction and
// after the halt instruction.
func ProgramBlocks(prog program.Program) []*ProgBlock {
	prog = slices.Clone(prog)

	blocks := make([]*ProgBlock, 0)
	// Instruction index -> block which starts at that index
	startToBlock := make(map[int]*ProgBlock)

	curBlock := &ProgBlock{}
	for i, inst := range prog {
		if len(curBlock.Block) == 0 {
			curBlock.Start = i
			startToBlock[i] = curBlock
		}

		curBlock.Block = append(curBlock.Block, inst)

		if !inst.Op.IsLoop() && inst.Op != program.OpHalt {
			continue
		}

		newBlock := &ProgBlock{
			Index: curBlock.Index + 1,
		}

		// Halt is the end of the program, there is nothing after it
		if inst.Op != program.OpHalt {
			curBlock.NoBranch = newBlock
		}

		blocks = append(blocks, curBlock)
		curBlock = newBlock
	}

	for _, block := range blocks {
		lastInst := block.Last()
		if !lastInst.Op.IsLoop() {
			continue
		}

		// Taking the jump lands on the matching bracket, which then falls through to the instruction after it.
		block.Branch = startToBlock[lastInst.Target+1]
	}

	return blocks
}

type ProgBlock struct {
	Index int
	// Index of the first instruction of the block within the program
	Start int
	// The current block of code
	Block []program.Instruction

	// The next block of we don't branch
	NoBranch *ProgBlock
	// The next block if we do branch. For a loop begin this is when the cell is zero, for a loop end when the cell
	// is non-zero.
	Branch *ProgBlock
}

// Last returns the last instruction of the block
func (pb *ProgBlock) Last() program.Instruction {
	return pb.Block[len(pb.Block)-1]
}

func (pb *ProgBlock) String() string {
	noBranch := -1
	if pb.NoBranch != nil {
		noBranch = pb.NoBranch.Index
	}

	branch := -1
	if pb.Branch != nil {
		branch = pb.Branch.Index
	}

	var sb strings.Builder
	for i, inst := range pb.Block {
		sb.WriteString(fmt.Sprintf("%d %s\n", pb.Start+i, inst))
	}

	return fmt.Sprintf(
		"Block %d:\n%sNo-Branch: %d\nBranch: %d\n",
		pb.Index,
		sb.String(),
		noBranch,
		branch,
	)
}

// DefaultMaxPermutations is used by FlowPermutations when no positive limit is given
const DefaultMaxPermutations = 1000

// FlowPermutations lists the paths through the program, a branch target appears at most twice per path. The amount
// of paths grows exponentially with the amount of loops, so at most maxPerms paths are collected. truncated is true
// if more paths exist.
func FlowPermutations(entryBlock *ProgBlock, maxPerms int) (perms []FlowPermutation, truncated bool) {
	if maxPerms <= 0 {
		maxPerms = DefaultMaxPermutations
	}

	// A list of permutations which are still evolving
	activePermutations := []FlowPermutation{{Blocks: []*ProgBlock{entryBlock}}}
	// List of permutations which are "complete"
	donePermutations := make([]FlowPermutation, 0)

	const maxIter = 1000000
	i := 0

	// Keep iterating until there are no more permutations
	for {
		if i >= maxIter {
			// A safeguard against programs with a huge amount of nested loops
			truncated = true
			break
		}
		i++

		updated := false

		for permIndex, perm := range activePermutations {
			lastBlock := perm.Last()

			if lastBlock.NoBranch == nil {
				// We hit the halt instruction, this permutation is "done"
				activePermutations = slices.Delete(activePermutations, permIndex, permIndex+1)
				donePermutations = append(donePermutations, perm)

				// Break, we modified activePermutations, doing so a second time will cause issues, so just re-run
				//  the outer loop
				updated = true
				break
			}

			// If this block can branch, create a new permutation of the branch
			if lastBlock.Branch != nil {
				// We only make a permutation for the first loop iteration
				if SliceCount(perm.Blocks, lastBlock.Branch) < 2 {
					if len(activePermutations)+len(donePermutations) >= maxPerms {
						truncated = true
					} else {
						newPerm := perm.Copy()
						newPerm.Blocks = append(newPerm.Blocks, lastBlock.Branch)
						activePermutations = append(activePermutations, newPerm)
					}
					updated = true
				}
			}

			// If we are here, lastBlock.NoBranch != nil, so append a new block to the current permutation
			perm.Blocks = append(perm.Blocks, lastBlock.NoBranch)
			activePermutations[permIndex] = perm
			updated = true
		}

		if !updated {
			break
		}
	}

	return donePermutations, truncated
}

func SliceCount[E comparable](s []E, v E) int {
	var count int
	for _, e := range s {
		if e == v {
			count++
		}
	}
	return count
}

type FlowPermutation struct {
	Blocks []*ProgBlock
}

func (fp FlowPermutation) Copy() FlowPermutation {
	return FlowPermutation{
		Blocks: slices.Clone(fp.Blocks),
	}
}

func (fp FlowPermutation) Last() *ProgBlock {
	return fp.Blocks[len(fp.Blocks)-1]
}

func (fp FlowPermutation) String() string {
	var sb strings.Builder
	for i, block := range fp.Blocks {
		if i != 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(strconv.Itoa(block.Index))
	}
	return sb.String()
}
