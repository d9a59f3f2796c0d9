// Package core implements the DFABuilder of spec §4.3: subset construction
// over a followpos position automaton, with lazy-trim and edge compaction.
// There is no tree-DFA merge step: literal alternations go through the same
// subset construction as every other pattern.
//
// The state cache is grounded on dfa/lazy/cache.go's Cache type in the
// teacher repo (a map keyed by a state-set hash, eagerly populated rather
// than lazily, since spec §4.3 calls for eager subset construction rather
// than the teacher's on-demand lazy DFA).
package core

// Edge is one outgoing transition: bytes [Lo, Hi] lead to Target.
type Edge struct {
	Lo, Hi rune
	Target uint32
}

// PathKind tags a state for the predictor's breadth-first sweep (spec
// §4.5 step 3): KeepPath/LoopPath/DeadPath sentinels.
type PathKind int

const (
	UnknownPath PathKind = iota
	KeepPath
	LoopPath
	DeadPath
)

// State is one DFA state (spec §3 "DFA state").
type State struct {
	ID     uint32
	Accept int  // 0 = non-accepting, else accept label >= 1
	Redo   bool // true for a (?^...) negative-match state
	Heads  []int
	Tails  []int
	Edges  []Edge // sorted, disjoint, covering the bytes that leave this state
	First  int    // breadth-first depth from the start state; -1 if unreachable
	Path   PathKind
	Index  int // bytecode address, set by the Assembler
}

// HasEdgeFor reports whether any edge in s covers r.
func (s *State) HasEdgeFor(r rune) (uint32, bool) {
	for _, e := range s.Edges {
		if e.Lo <= r && r <= e.Hi {
			return e.Target, true
		}
	}
	return 0, false
}
