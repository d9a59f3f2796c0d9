// Package predictor implements analyze_dfa from spec §4.5: a breadth-first
// s-t cut through the compiled DFA produces a bitap Bloom filter, a
// paired-byte hash table, PM4/PM-hash tables, and first/lookback character
// sets the Prefilter uses to skip over input that cannot start a match.
//
// Grounded on prefilter/prefilter.go's PrefilterI selection logic and
// simd/byte_frequencies.go's static English-oriented frequency table
// (reused here unmodified — it is exactly the "static English-oriented
// byte-frequency table" spec §4.5 step 1 names).
package predictor

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/reflexgrep/dfa/core"
	"github.com/coregx/reflexgrep/simd"
)

const (
	// BTAP is the size of the paired-byte Bloom table tap[].
	BTAP = 2048
	// HashSize is the size of the PM4/PM-hash tables pma[]/pmh[].
	HashSize = 8192
	// MaxCutDepth bounds the BFS search for the best s-t cut (spec §4.5
	// step 2: "up to depth <= 16").
	MaxCutDepth = 16
	// SweepDepth is how many extra levels past the cut are swept to mark
	// KeepPath/LoopPath/DeadPath (spec §4.5 step 3: "sweep forward up to 7
	// more levels").
	SweepDepth = 7
	// MinCap caps min_ at 8 (spec §4.5: "min_ is ... capped at 8").
	MinCap = 8
)

// Config carries predictor tuning knobs. Analyze does not read either field:
// the Boyer-Moore shift table is built whenever the literal prefix is at
// least 2 bytes long, whatever BoyerMooreMinLen holds.
type Config struct {
	BoyerMooreMinLen int
	Accuracy         int // 0..9, higher = less noise, more tables (spec §4.5)
}

// DefaultConfig mirrors meta/config.go's DefaultConfig().
func DefaultConfig() Config {
	return Config{BoyerMooreMinLen: 3, Accuracy: 4}
}

// Tables holds the immutable predictor blob (spec §3 "Predictor tables").
type Tables struct {
	Chr []byte // literal prefix, when the pattern starts with one (len_ > 0)
	One bool   // true if the automaton is a single straight-line chain

	Bit [256]uint8  // 8-lane Bloom filter over byte position (only if len_==0)
	Tap [BTAP]uint8 // paired-byte Bloom
	PMA [HashSize]uint8
	PMH [HashSize]uint8
	UsePMA bool // min_ <= 3 uses PM4 (PMA); min_ >= 4 uses PM-hash (PMH)

	Fst [256]bool // bytes that may start a match
	Cbk [256]bool // lookback byte set
	Lbk int       // max lookback distance
	Lbm int       // min lookback distance
	HasLookback bool

	Min int // minimum match length, capped at MinCap
	Len int // literal prefix length (== len(Chr))

	Bms [256]int // Boyer-Moore shift table, valid when Len >= 2

	// Aho is non-nil when the start state fans out into three or more
	// disjoint literal chains (a top-level alternation of literals, e.g.
	// "(foo|bar|baz)") too numerous for the bms[]/bit[] scalar tables to
	// discriminate efficiently; the Prefilter prefers it over bitap when set.
	Aho      *ahocorasick.Automaton
	AhoLits  [][]byte
}

// hashPair matches prefilter/teddy.go's paired-byte hashing shape (spec
// §4.5 step 5's "hash(prev, curr)"), generalized to an arbitrary table
// size via the same XOR-shift mixing spec.md's tap[] table prescribes.
func hashPair(prev, curr byte, size int) int {
	return int(((uint32(prev) << 6) ^ uint32(curr))) & (size - 1)
}

// Analyze runs the s-t cut selection and table population of spec §4.5
// over the compiled DFA.
func Analyze(d *core.DFA, cfg Config) *Tables {
	t := &Tables{}
	depths := bfsDepths(d)
	cut := selectCut(d, depths, cfg)
	markPaths(d, depths, cut)
	t.Min = minMatchLength(d, depths, MinCap)
	t.Chr, t.One = straightLineLiteral(d)
	t.Len = len(t.Chr)

	for i := range t.Fst {
		t.Fst[i] = false
	}
	start := d.States[d.Start-1]
	for _, e := range start.Edges {
		markByteRange(&t.Fst, e.Lo, e.Hi)
	}

	populateBitTables(d, depths, t)
	populateLookback(d, t)
	if t.Len >= 2 {
		t.Bms = boyerMooreTable(t.Chr)
	}
	if t.Len == 0 {
		if lits := literalAlternatives(d); len(lits) >= 3 {
			t.AhoLits = lits
			t.Aho = buildAhoCorasick(lits)
		}
	}
	return t
}

// literalAlternatives detects a top-level alternation of literals: the
// start state's edges are each single bytes leading to disjoint
// straight-line chains that terminate in an accepting state. Returns nil
// unless every branch out of the start state resolves to a clean literal.
func literalAlternatives(d *core.DFA) [][]byte {
	start := d.States[d.Start-1]
	if len(start.Edges) < 3 {
		return nil
	}
	var lits [][]byte
	for _, e := range start.Edges {
		if e.Lo != e.Hi || e.Lo > 0xff {
			return nil
		}
		chr, ok := walkLiteralChain(d, e.Target, []byte{byte(e.Lo)})
		if !ok {
			return nil
		}
		lits = append(lits, chr)
	}
	return lits
}

// walkLiteralChain extends a single-byte-edge chain from id, starting with
// the bytes already collected in prefix, until it reaches an accepting
// state with no further edges (or fails on branching/range edges).
func walkLiteralChain(d *core.DFA, id uint32, prefix []byte) ([]byte, bool) {
	chr := prefix
	seen := map[uint32]bool{}
	for {
		if seen[id] {
			return nil, false
		}
		seen[id] = true
		st := d.States[id-1]
		switch len(st.Edges) {
		case 0:
			if st.Accept == 0 {
				return nil, false
			}
			return chr, true
		case 1:
			e := st.Edges[0]
			if e.Lo != e.Hi || e.Lo > 0xff {
				return nil, false
			}
			chr = append(chr, byte(e.Lo))
			id = e.Target
		default:
			return nil, false
		}
		if len(chr) > 255 {
			return nil, false
		}
	}
}

// buildAhocorasick compiles lits into a multi-literal automaton, grounded
// on meta/compile.go's ahocorasick.NewBuilder()/AddPattern/Build usage for
// its own "large literal alternation" strategy.
func buildAhoCorasick(lits [][]byte) *ahocorasick.Automaton {
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return auto
}

func markByteRange(set *[256]bool, lo, hi rune) {
	l, h := lo, hi
	if l < 0 {
		l = 0
	}
	if h > 0xff {
		h = 0xff
	}
	for b := l; b <= h; b++ {
		set[b] = true
	}
}

// bfsDepths computes the breadth-first depth of every state from the start
// state (spec §4.5 step 1).
func bfsDepths(d *core.DFA) []int {
	depths := make([]int, len(d.States))
	for i := range depths {
		depths[i] = -1
	}
	depths[d.Start-1] = 0
	queue := []uint32{d.Start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		st := d.States[id-1]
		for _, e := range st.Edges {
			if depths[e.Target-1] == -1 {
				depths[e.Target-1] = depths[id-1] + 1
				queue = append(queue, e.Target)
			}
		}
	}
	return depths
}

// selectCut scores candidate BFS-frontier cuts by (min character count,
// number of backedges, span length) and returns the best depth, per spec
// §4.5 step 2.
func selectCut(d *core.DFA, depths []int, cfg Config) int {
	bestDepth := 0
	bestScore := -1
	for depth := 0; depth <= MaxCutDepth; depth++ {
		byteCount := 0
		backedges := 0
		sawState := false
		for i, st := range d.States {
			if depths[i] != depth {
				continue
			}
			sawState = true
			for _, e := range st.Edges {
				if e.Lo <= 0xff {
					byteCount += int(minRune(e.Hi, 0xff)-maxRune(e.Lo, 0)) + 1
				}
				if depths[e.Target-1] >= 0 && depths[e.Target-1] <= depth {
					backedges++
				}
			}
		}
		if !sawState {
			continue
		}
		score := -byteCount*1000 - backedges*10 + depth
		if bestScore == -1 || score > bestScore {
			bestScore = score
			bestDepth = depth
		}
	}
	_ = cfg
	return bestDepth
}

func minRune(a, b rune) rune {
	if a < b {
		return a
	}
	return b
}
func maxRune(a, b rune) rune {
	if a > b {
		return a
	}
	return b
}

// markPaths implements spec §4.5 step 3: states up to SweepDepth past the
// cut are tagged KeepPath/LoopPath/DeadPath, then a backward sweep
// propagates DeadPath upward.
func markPaths(d *core.DFA, depths []int, cut int) {
	for i, st := range d.States {
		depth := depths[i]
		switch {
		case depth < 0:
			st.Path = core.UnknownPath
		case st.Accept != 0:
			st.Path = core.KeepPath
		case depth <= cut+SweepDepth:
			st.Path = core.KeepPath
			for _, e := range st.Edges {
				if depths[e.Target-1] >= 0 && depths[e.Target-1] <= depth {
					st.Path = core.LoopPath
				}
			}
		default:
			st.Path = core.DeadPath
		}
	}
	changed := true
	for changed {
		changed = false
		for i, st := range d.States {
			if st.Path == core.DeadPath {
				continue
			}
			allDead := len(st.Edges) > 0
			for _, e := range st.Edges {
				if d.States[e.Target-1].Path != core.DeadPath {
					allDead = false
				}
			}
			if allDead && st.Accept == 0 {
				st.Path = core.DeadPath
				changed = true
			}
			_ = i
		}
	}
}

// minMatchLength estimates the minimum path length from the start state to
// any accepting state, capped at cap (spec §4.5: "min_ is the minimum
// match length capped at 8").
func minMatchLength(d *core.DFA, depths []int, cap int) int {
	best := -1
	for i, st := range d.States {
		if st.Accept != 0 && depths[i] >= 0 {
			if best == -1 || depths[i] < best {
				best = depths[i]
			}
		}
	}
	if best < 0 {
		return 0
	}
	if best > cap {
		return cap
	}
	return best
}

// straightLineLiteral detects whether the DFA is a single straight-line
// chain of byte edges from the start state (spec §4.5: "len_ is the length
// of the literal prefix if the automaton is a single straight-line chain
// (one_ = true)").
func straightLineLiteral(d *core.DFA) ([]byte, bool) {
	var chr []byte
	id := d.Start
	seen := map[uint32]bool{}
	for {
		if seen[id] {
			return chr, false
		}
		seen[id] = true
		st := d.States[id-1]
		if len(st.Edges) != 1 {
			return chr, len(chr) > 0 && st.Accept != 0
		}
		e := st.Edges[0]
		if e.Lo != e.Hi || e.Lo > 0xff {
			return chr, false
		}
		chr = append(chr, byte(e.Lo))
		id = e.Target
		if len(chr) > 255 {
			return chr[:255], false
		}
	}
}

// populateBitTables sweeps states at depths 0..min(8, min_) to populate
// bit[]/tap[]/pma[]/pmh[], per spec §4.5 step 5.
func populateBitTables(d *core.DFA, depths []int, t *Tables) {
	if t.Len > 0 {
		return // exact literal prefix: bitap tables are unused (spec §6 byte layout)
	}
	for i := range t.Bit {
		t.Bit[i] = 0xff
	}
	for i := range t.Tap {
		t.Tap[i] = 0xff
	}
	for i := range t.PMA {
		t.PMA[i] = 0xff
	}
	for i := range t.PMH {
		t.PMH[i] = 0xff
	}
	t.UsePMA = t.Min < 4

	limit := t.Min
	if limit > 8 {
		limit = 8
	}
	type walkState struct {
		id   uint32
		prev byte
		k    int
	}
	queue := []walkState{{id: d.Start, prev: 0, k: 0}}
	visited := map[[3]int]bool{}
	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]
		if w.k > limit {
			continue
		}
		key := [3]int{int(w.id), int(w.prev), w.k}
		if visited[key] {
			continue
		}
		visited[key] = true
		st := d.States[w.id-1]
		for _, e := range st.Edges {
			lo, hi := e.Lo, e.Hi
			if lo > 0xff {
				continue
			}
			if hi > 0xff {
				hi = 0xff
			}
			for c := lo; c <= hi; c++ {
				b := byte(c)
				t.Bit[b] &^= 1 << uint(w.k)
				if w.k > 0 {
					h := hashPair(w.prev, b, BTAP)
					t.Tap[h] &^= 1 << uint(w.k)
					if t.UsePMA {
						h2 := hashPair(w.prev, b, HashSize)
						t.PMA[h2] &^= 3 << uint(2*w.k%6)
					} else {
						h2 := hashPair(w.prev, b, HashSize)
						t.PMH[h2] &^= 1 << uint(w.k%8)
					}
				}
				queue = append(queue, walkState{id: e.Target, prev: b, k: w.k + 1})
			}
		}
	}
}

// populateLookback marks in cbk[] the byte ranges of every edge leaving a
// state marked LoopPath. lbk and lbm are not derived from the automaton:
// when any LoopPath state exists they are set to 64 and 1 and HasLookback
// is set; otherwise they are 0 and -1.
func populateLookback(d *core.DFA, t *Tables) {
	maxLb, minLb := 0, -1
	any := false
	for _, st := range d.States {
		if st.Path != core.LoopPath {
			continue
		}
		any = true
		for _, e := range st.Edges {
			if e.Lo <= 0xff {
				markByteRange(&t.Cbk, e.Lo, e.Hi)
			}
		}
	}
	if any {
		t.HasLookback = true
		maxLb = 64
		minLb = 1
	}
	t.Lbk, t.Lbm = maxLb, minLb
}

// boyerMooreTable computes the classic bad-character shift table, used
// when len_ >= 2 (spec §4.5's "Boyer-Moore-style bms[256] shift table").
func boyerMooreTable(needle []byte) [256]int {
	var bms [256]int
	n := len(needle)
	for i := range bms {
		bms[i] = n
	}
	for i := 0; i < n-1; i++ {
		bms[needle[i]] = n - 1 - i
	}
	return bms
}

// ByteFrequency returns the corpus-sourced rarity rank for byte b (0 =
// rare, 255 = common), reusing simd.ByteFrequencies verbatim.
func ByteFrequency(b byte) byte { return simd.ByteFrequencies[b] }
