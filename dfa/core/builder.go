package core

import (
	"fmt"
	"sort"

	"github.com/coregx/reflexgrep/charset"
	"github.com/coregx/reflexgrep/parser"
	"github.com/coregx/reflexgrep/pos"
)

// Config bounds the subset construction (spec §4.3 "Limits (fatal)").
type Config struct {
	MaxStates int
	// CompactReverse selects reverse (descending-from-0xFF) edge
	// compaction when true, forward (ascending) when false. spec §9's
	// open question: this implementation defaults to reverse, the
	// source-commented "best" choice, and is internally consistent about
	// it (see SPEC_FULL.md).
	CompactReverse bool
}

// DefaultConfig mirrors meta/config.go's DefaultConfig() pattern.
func DefaultConfig() Config {
	return Config{MaxStates: 1 << 16, CompactReverse: true}
}

// DFA is the subset-constructed automaton (spec §3 "DFA state").
type DFA struct {
	States     []*State
	Start      uint32
	NumAccepts int
}

// LimitError reports a fatal compile-time limit violation (spec §7 "limits"
// error kind — always fatal, raised during compile).
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return "dfa: " + e.Message }

// Build performs subset construction over the parsed followpos automaton,
// producing a DFA per spec §4.3.
func Build(res *parser.Result, cfg Config) (*DFA, error) {
	b := &builder{
		res:     res,
		cfg:     cfg,
		cache:   make(map[string]uint32),
		headLoc: make(map[int]int),
		tailLoc: make(map[int]int),
	}
	for _, la := range res.Lookaheads {
		b.headLoc[la.OpenLoc] = la.ID
		b.tailLoc[la.CloseLoc] = la.ID
	}

	start := res.Start.Clone()
	start.LazyTrim()
	startID, err := b.getOrCreate(start)
	if err != nil {
		return nil, err
	}
	for len(b.pending) > 0 {
		id := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.expand(id); err != nil {
			return nil, err
		}
	}
	return &DFA{States: b.states, Start: startID, NumAccepts: res.NumAccepts}, nil
}

type builder struct {
	res     *parser.Result
	cfg     Config
	cache   map[string]uint32
	sets    []*pos.Set
	states  []*State
	pending []uint32
	headLoc map[int]int
	tailLoc map[int]int
}

// getOrCreate returns the state id for set s, allocating a new state (and
// queuing it for expansion) if s has not been seen before — grounded on
// dfa/lazy/cache.go's Cache.Get/Insert pattern, generalized from "NFA
// state-set hash" to "sorted PosSet key".
func (b *builder) getOrCreate(s *pos.Set) (uint32, error) {
	key := s.Key()
	if id, ok := b.cache[key]; ok {
		return id, nil
	}
	if len(b.states) >= b.cfg.MaxStates {
		return 0, &LimitError{Message: fmt.Sprintf("exceeded MAX_STATES=%d", b.cfg.MaxStates)}
	}
	id := uint32(len(b.states)) + 1
	st := &State{ID: id, First: -1}
	b.classifyAcceptAndTicked(s, st)
	b.states = append(b.states, st)
	b.sets = append(b.sets, s)
	b.cache[key] = id
	b.pending = append(b.pending, id)
	return id, nil
}

// classifyAcceptAndTicked sets st.Accept/Redo/Heads/Tails from the
// non-transitional positions in s (spec §4.3 step 1 operates only on the
// transitional positions; accept/ticked positions are metadata on the
// state itself).
func (b *builder) classifyAcceptAndTicked(s *pos.Set, st *State) {
	best := 0
	for _, p := range s.Sorted() {
		switch {
		case p.Accept():
			label := b.res.LocAccept[p.Loc()]
			if p.Negate() {
				st.Redo = true
			}
			if best == 0 || label < best {
				best = label
			}
		case p.Ticked():
			if id, ok := b.headLoc[p.Loc()]; ok {
				st.Heads = appendUnique(st.Heads, id)
			}
			if id, ok := b.tailLoc[p.Loc()]; ok {
				st.Tails = appendUnique(st.Tails, id)
			}
		}
	}
	st.Accept = best
}

func appendUnique(xs []int, v int) []int {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}

// expand computes the move partition and edges for state id (spec §4.3
// steps 1-4).
func (b *builder) expand(id uint32) error {
	st := b.states[id-1]
	s := b.sets[id-1]

	type transitional struct {
		cls    *charset.Set
		follow *pos.Set
	}
	var trans []transitional
	for _, p := range s.Sorted() {
		if p.Accept() || p.Ticked() {
			continue
		}
		cls, ok := b.res.LocClass[p.Loc()]
		if !ok || cls == nil {
			continue
		}
		follow := b.res.Follow.Follow(p)
		trans = append(trans, transitional{cls: cls, follow: follow})
	}
	if len(trans) == 0 {
		return nil
	}

	breaks := make(map[rune]bool)
	for _, t := range trans {
		for _, r := range t.cls.Ranges() {
			breaks[r.Lo] = true
			breaks[r.Hi+1] = true
		}
	}
	sortedBreaks := make([]rune, 0, len(breaks))
	for r := range breaks {
		sortedBreaks = append(sortedBreaks, r)
	}
	sort.Slice(sortedBreaks, func(i, j int) bool { return sortedBreaks[i] < sortedBreaks[j] })

	var edges []Edge
	for i := 0; i+1 < len(sortedBreaks); i++ {
		lo := sortedBreaks[i]
		hi := sortedBreaks[i+1] - 1
		if hi < lo {
			continue
		}
		target := pos.NewSet()
		for _, t := range trans {
			if t.cls.Contains(lo) {
				target.AddSet(t.follow)
			}
		}
		if target.Empty() {
			continue
		}
		target.LazyTrim()
		targetID, err := b.getOrCreate(target)
		if err != nil {
			return err
		}
		edges = append(edges, Edge{Lo: lo, Hi: hi, Target: targetID})
	}
	st.Edges = compact(edges, b.cfg.CompactReverse)
	return nil
}

// compact merges adjacent edges sharing a target, scanning either forward
// (ascending) or reverse (descending from the top) per spec §4.3 step 4.
func compact(edges []Edge, reverse bool) []Edge {
	if len(edges) == 0 {
		return edges
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Lo < edges[j].Lo })
	if reverse {
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
	}
	out := edges[:1]
	for _, e := range edges[1:] {
		last := &out[len(out)-1]
		adjacent := reverse && e.Hi+1 == last.Lo || !reverse && last.Hi+1 == e.Lo
		if adjacent && e.Target == last.Target {
			if reverse {
				last.Lo = e.Lo
			} else {
				last.Hi = e.Hi
			}
			continue
		}
		out = append(out, e)
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
