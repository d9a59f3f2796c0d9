// Package vm implements the Interpreter of spec §4.6: a bytecode VM
// executing SCAN/FIND/SPLIT/MATCH over buffered input, maintaining capture
// spans, lookahead head/tail frames, and anchors.
//
// The execution-loop shape (program counter plus a running best match)
// is grounded on nfa/pikevm.go's Search/searchAt methods in the teacher
// repo, adapted from "thread list over NFA states" to "single program
// counter over assembled bytecode", matching the single-DFA-path nature of
// spec §4.4's compiled program.
package vm

import (
	"github.com/coregx/reflexgrep/asm"
	"github.com/coregx/reflexgrep/charset"
)

// Method selects one of the four execution modes of spec §4.6.
type Method int

const (
	Scan Method = iota
	Find
	Split
	Match
)

// Capture records one (begin, end) byte-offset span; group 0 is the whole
// match.
type Capture struct {
	Begin, End int
	Valid      bool
}

// Result is the outcome of one VM run.
type Result struct {
	Matched  bool
	Label    int
	Begin    int
	End      int
	Redo     bool
	Captures map[int]Capture // keyed by lookahead/group id
}

// Interpreter runs a Program over a byte slice. Interpreter holds no
// mutable state between calls; every field below is read-only configuration.
type Interpreter struct {
	Program *asm.Program
}

// New returns an Interpreter for prog.
func New(prog *asm.Program) *Interpreter {
	return &Interpreter{Program: prog}
}

type headFrame struct {
	id  int
	pos int
}

// Run executes the Interpreter in the given Method starting at `pos`
// within `input`, per spec §4.6's execution loop.
func (vm *Interpreter) Run(input []byte, start int, method Method) Result {
	switch method {
	case Scan:
		return vm.runAnchored(input, start, false)
	case Match:
		return vm.runAnchored(input, start, true)
	case Find:
		for p := start; p <= len(input); p++ {
			r := vm.runAnchored(input, p, false)
			if r.Matched {
				return r
			}
		}
		return Result{}
	case Split:
		r := vm.runAnchored(input, start, false)
		return r
	default:
		return Result{}
	}
}

// runAnchored executes the bytecode program once, anchored at `pos`.
// mustConsumeAll enforces MATCH semantics (spec §4.6: "the match must
// consume all remaining input").
func (vm *Interpreter) runAnchored(input []byte, startPos int, mustConsumeAll bool) Result {
	pc := uint32(0)
	position := startPos
	bestAccept := 0
	bestEnd := -1
	bestRedo := false
	var heads []headFrame
	captures := map[int]Capture{}

	cells := vm.Program.Cells
	for {
		if pc >= uint32(len(cells)) {
			break
		}
		cell := cells[pc]
		switch cell.Op {
		case asm.OpTake:
			if bestEnd == -1 || position > bestEnd || (position == bestEnd && cell.Label < bestAccept) {
				bestAccept = cell.Label
				bestEnd = position
				bestRedo = false
			}
			pc++
		case asm.OpRedo:
			bestRedo = true
			bestEnd = position
			pc++
		case asm.OpHead:
			heads = append(heads, headFrame{id: cell.ID, pos: position})
			pc++
		case asm.OpTail:
			if n := len(heads); n > 0 {
				top := heads[n-1]
				heads = heads[:n-1]
				if top.id == cell.ID {
					captures[cell.ID] = Capture{Begin: top.pos, End: position, Valid: true}
				}
			}
			pc++
		case asm.OpGoto:
			matched, consumed := vm.matchGoto(cell, input, position)
			if matched {
				if consumed {
					position++
				}
				pc = cell.PC
				continue
			}
			pc++
		case asm.OpHalt:
			pc = uint32(len(cells))
		default:
			pc++
		}
	}

	if bestEnd == -1 {
		return Result{}
	}
	if mustConsumeAll && bestEnd != len(input) {
		return Result{}
	}
	captures[0] = Capture{Begin: startPos, End: bestEnd, Valid: true}
	return Result{
		Matched:  true,
		Label:    bestAccept,
		Begin:    startPos,
		End:      bestEnd,
		Redo:     bestRedo,
		Captures: captures,
	}
}

// matchGoto evaluates a single GOTO cell against the input at `position`,
// returning whether it matched and whether a byte was consumed (meta
// transitions never consume).
func (vm *Interpreter) matchGoto(cell asm.Cell, input []byte, position int) (matched, consumed bool) {
	if int(cell.Lo) >= charset.MetaBase {
		return vm.evalMeta(rune(cell.Lo), input, position), false
	}
	if position >= len(input) {
		return false, false
	}
	c := rune(input[position])
	if c >= cell.Lo && c <= cell.Hi {
		return true, true
	}
	return false, false
}

// evalMeta evaluates a zero-width boundary predicate at position, per
// spec §4.6: "Boundary meta symbols evaluate against neighboring bytes
// without consuming".
func (vm *Interpreter) evalMeta(meta rune, input []byte, position int) bool {
	prevByte, haveP := byteBefore(input, position)
	currByte, haveC := byteAt(input, position)
	switch meta {
	case charset.BOL:
		return position == 0 || (haveP && prevByte == '\n')
	case charset.EOL:
		return position == len(input) || (haveC && currByte == '\n')
	case charset.BOB:
		return position == 0
	case charset.EOB:
		return position == len(input)
	case charset.WBB, charset.WBE:
		return isWord(prevByte, haveP) != isWord(currByte, haveC)
	case charset.NWB, charset.NWE:
		return isWord(prevByte, haveP) == isWord(currByte, haveC)
	case charset.BWB, charset.EWB:
		return position == 0 && isWord(currByte, haveC)
	case charset.BWE, charset.EWE:
		return position == len(input) && isWord(prevByte, haveP)
	default:
		return false
	}
}

func byteBefore(input []byte, pos int) (byte, bool) {
	if pos <= 0 || pos > len(input) {
		return 0, false
	}
	return input[pos-1], true
}

func byteAt(input []byte, pos int) (byte, bool) {
	if pos < 0 || pos >= len(input) {
		return 0, false
	}
	return input[pos], true
}

func isWord(b byte, have bool) bool {
	if !have {
		return false
	}
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
