// Package program turns source text into an executable instruction sequence with all loop jumps resolved.
package program

import (
	"errors"
	"fmt"
	"strings"
)

// Op is a single primitive operation
type Op uint8

const (
	OpIncrement Op = iota
	OpDecrement
	OpMoveRight
	OpMoveLeft
	OpReadByte
	OpWriteByte
	OpLoopBegin
	OpLoopEnd
	OpBreakpoint
	OpHalt
)

var opSymbols = map[rune]Op{
	'+': OpIncrement,
	'-': OpDecrement,
	'>': OpMoveRight,
	'<': OpMoveLeft,
	',': OpReadByte,
	'.': OpWriteByte,
	'[': OpLoopBegin,
	']': OpLoopEnd,
	'!': OpBreakpoint,
}

func (o Op) String() string {
	switch o {
	case OpIncrement:
		return "+"
	case OpDecrement:
		return "-"
	case OpMoveRight:
		return ">"
	case OpMoveLeft:
		return "<"
	case OpReadByte:
		return ","
	case OpWriteByte:
		return "."
	case OpLoopBegin:
		return "["
	case OpLoopEnd:
		return "]"
	case OpBreakpoint:
		return "!"
	case OpHalt:
		return " "
	}

	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Name returns a human readable name of the op
func (o Op) Name() string {
	switch o {
	case OpIncrement:
		return "increment"
	case OpDecrement:
		return "decrement"
	case OpMoveRight:
		return "move-right"
	case OpMoveLeft:
		return "move-left"
	case OpReadByte:
		return "read"
	case OpWriteByte:
		return "write"
	case OpLoopBegin:
		return "loop-begin"
	case OpLoopEnd:
		return "loop-end"
	case OpBreakpoint:
		return "breakpoint"
	case OpHalt:
		return "halt"
	}

	return o.String()
}

// IsLoop returns true for the loop begin and loop end ops, the only ops which carry a jump target.
func (o Op) IsLoop() bool {
	return o == OpLoopBegin || o == OpLoopEnd
}

// Instruction is an op plus the location in the source it came from.
type Instruction struct {
	Op Op
	// Target is the index of the matching bracket, only valid for loop ops
	Target int
	// Line is 1-based, the appended halt instruction has line 0
	Line int
	// Column is 0-based, counted in runes
	Column int
}

func (i Instruction) String() string {
	if i.Op.IsLoop() {
		return fmt.Sprintf("%s %s -> %d", i.Op, i.Op.Name(), i.Target)
	}

	return fmt.Sprintf("%s %s", i.Op, i.Op.Name())
}

// Program is a loaded instruction sequence, always terminated by exactly one OpHalt.
type Program []Instruction

// Halt returns the index of the terminating halt instruction
func (p Program) Halt() int {
	return len(p) - 1
}

// Lines returns the distinct source lines which contain at least one instruction, in ascending order.
func (p Program) Lines() []int {
	var lines []int
	for _, inst := range p {
		if inst.Line == 0 {
			continue
		}

		if len(lines) == 0 || lines[len(lines)-1] != inst.Line {
			lines = append(lines, inst.Line)
		}
	}

	return lines
}

// ErrUnmatchedBracket is matched by both bracket errors returned by Load
var ErrUnmatchedBracket = errors.New("unmatched bracket")

// UnmatchedOpenBracketError is returned when a '[' has no matching ']'
type UnmatchedOpenBracketError struct {
	Line   int
	Column int
}

func (e *UnmatchedOpenBracketError) Error() string {
	return fmt.Sprintf("no matching closing bracket for open bracket at %d:%d", e.Line, e.Column)
}

func (e *UnmatchedOpenBracketError) Is(target error) bool {
	return target == ErrUnmatchedBracket
}

// UnmatchedCloseBracketError is returned when a ']' has no matching '['
type UnmatchedCloseBracketError struct {
	Line   int
	Column int
}

func (e *UnmatchedCloseBracketError) Error() string {
	return fmt.Sprintf("no opening bracket for closing bracket at %d:%d", e.Line, e.Column)
}

func (e *UnmatchedCloseBracketError) Is(target error) bool {
	return target == ErrUnmatchedBracket
}

// Load parses the source text into a program. Every rune which isn't one of the nine recognized symbols is ignored.
func Load(source string) (Program, error) {
	var (
		prog Program
		// Indexes of loop begin instructions which have not been closed yet
		pending []int
	)

	for lineIdx, line := range strings.Split(source, "\n") {
		line = strings.TrimSuffix(line, "\r")
		lineNumber := lineIdx + 1

		column := 0
		for _, r := range line {
			op, ok := opSymbols[r]
			if !ok {
				column++
				continue
			}

			inst := Instruction{
				Op:     op,
				Line:   lineNumber,
				Column: column,
			}

			switch op {
			case OpLoopBegin:
				// Target is patched once the closing bracket is found
				pending = append(pending, len(prog))

			case OpLoopEnd:
				if len(pending) == 0 {
					return nil, &UnmatchedCloseBracketError{Line: lineNumber, Column: column}
				}

				start := pending[len(pending)-1]
				pending = pending[:len(pending)-1]

				prog[start].Target = len(prog)
				inst.Target = start
			}

			prog = append(prog, inst)
			column++
		}
	}

	if len(pending) > 0 {
		// Report the outermost bracket, it is the one the user most likely forgot to close
		first := prog[pending[0]]
		return nil, &UnmatchedOpenBracketError{Line: first.Line, Column: first.Column}
	}

	prog = append(prog, Instruction{Op: OpHalt})

	return prog, nil
}
