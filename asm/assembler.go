package asm

import (
	"sort"

	"github.com/coregx/reflexgrep/dfa/core"
)

// LongJumpForwardThreshold / LongJumpBackwardThreshold select the widened
// LONG cell form per spec §4.4 Pass A: "a forward jump > 32 KiB or any
// backward jump > 64 KiB uses the LONG form".
const (
	LongJumpForwardThreshold  = 32 * 1024
	LongJumpBackwardThreshold = 64 * 1024
)

// Assembler performs the two-pass size-then-emit assembly of spec §4.4,
// grounded on chronos-tachyon-go-peggy/peggyvm/assembler.go's Assembler
// (which also separates "declare instructions" from "fix addresses").
type Assembler struct {
	dfa *core.DFA
}

// New returns an Assembler for dfa.
func New(dfa *core.DFA) *Assembler {
	return &Assembler{dfa: dfa}
}

// Assemble runs Pass A (size) then Pass B (emit) and returns the Program.
func (a *Assembler) Assemble() *Program {
	base := a.sizePass()
	cells := a.emitPass(base)
	return &Program{Cells: cells, StateBase: base, NumAccepts: a.dfa.NumAccepts}
}

// sizePass counts cells per state (Pass A) to compute each state's base
// address. It runs exactly once and never widens a jump: Pass B emits no
// LONG cells and does not consult NeedsLong, so every GOTO cell is one cell
// whose PC field holds the full 32-bit target.
func (a *Assembler) sizePass() []uint32 {
	base := make([]uint32, len(a.dfa.States))
	var pc uint32
	for i, st := range a.dfa.States {
		base[i] = pc
		pc += a.cellCount(st)
	}
	return base
}

func (a *Assembler) cellCount(st *core.State) uint32 {
	var n uint32
	if st.Accept != 0 || st.Redo {
		n++
	}
	n += uint32(len(st.Tails))
	n += uint32(len(st.Heads))
	n += uint32(len(st.Edges))
	covers0xFF := false
	for _, e := range st.Edges {
		if e.Lo <= 0xff && e.Hi >= 0xff {
			covers0xFF = true
		}
	}
	if !covers0xFF {
		n++ // trailing HALT
	}
	return n
}

func (a *Assembler) emitPass(base []uint32) []Cell {
	var cells []Cell
	for i, st := range a.dfa.States {
		cells = append(cells, a.emitState(st, base, i)...)
	}
	return cells
}

// emitState emits the cells for one state in the order spec §3 mandates:
// REDO|TAKE, then TAILs ascending, then HEADs ascending, then edges sorted
// descending by upper byte.
func (a *Assembler) emitState(st *core.State, base []uint32, idx int) []Cell {
	var cells []Cell
	if st.Redo {
		cells = append(cells, Cell{Op: OpRedo})
	} else if st.Accept != 0 {
		cells = append(cells, Cell{Op: OpTake, Label: st.Accept})
	}
	tails := append([]int(nil), st.Tails...)
	sort.Ints(tails)
	for _, id := range tails {
		cells = append(cells, Cell{Op: OpTail, ID: id})
	}
	heads := append([]int(nil), st.Heads...)
	sort.Ints(heads)
	for _, id := range heads {
		cells = append(cells, Cell{Op: OpHead, ID: id})
	}
	edges := append([]core.Edge(nil), st.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Hi > edges[j].Hi })
	covers0xFF := false
	for _, e := range edges {
		targetPC := base[e.Target-1]
		pc := targetPC
		cells = append(cells, Cell{Op: OpGoto, Lo: e.Lo, Hi: e.Hi, PC: pc})
		if e.Lo <= 0xff && e.Hi >= 0xff {
			covers0xFF = true
		}
	}
	if !covers0xFF {
		cells = append(cells, Cell{Op: OpHalt})
	}
	_ = idx
	return cells
}

// NeedsLong reports whether a jump from `fromPC` to `toPC` must use the
// LONG extension cell form, per the thresholds in spec §4.4 Pass A.
func NeedsLong(fromPC, toPC uint32) bool {
	if toPC >= fromPC {
		return toPC-fromPC > LongJumpForwardThreshold
	}
	return fromPC-toPC > LongJumpBackwardThreshold
}
