package prefilter

import (
	"github.com/coregx/reflexgrep/literal"
	"github.com/coregx/reflexgrep/predictor"
)

// Lookback mirrors the predictor's cbk/lbk/lbm lookback bound. Nothing in
// this package uses it: bitapFind applies the lookback check through
// lookbackOK, which reads Cbk and Lbk directly from predictor.Tables.
type Lookback struct {
	Cbk [256]bool
	Lbk int
	Lbm int
}

// predictorPrefilter scans over predictor.Tables, implementing the
// Prefilter interface so it can be used wherever Builder's literal-derived
// prefilters are used. Find uses the Aho-Corasick automaton when Tables.Aho
// is set; otherwise, when the pattern has a literal prefix (len_ > 0), the
// Builder-selected prefilter over that prefix; otherwise the bitap scan.
// The Boyer-Moore shift table (Tables.Bms) is not used.
type predictorPrefilter struct {
	tables *predictor.Tables
	// literalPF is the Builder-selected memchr/memmem prefilter over the
	// straight-line literal prefix (t.Chr), when one exists, so the
	// literal-prefix fast path goes through the same
	// selectPrefilter/memchr/memmem machinery every other literal-derived
	// prefilter in this package uses.
	literalPF Prefilter
}

var _ Prefilter = (*predictorPrefilter)(nil)

// NewFromTables adapts a compiled pattern's predictor.Tables into a
// Prefilter, reusing the teacher's Prefilter interface instead of
// introducing a parallel one.
func NewFromTables(t *predictor.Tables) Prefilter {
	p := &predictorPrefilter{tables: t}
	if t.Len > 0 {
		seq := literal.NewSeq(literal.NewLiteral(t.Chr, false))
		p.literalPF = NewBuilder(seq, nil).Build()
	}
	return p
}

func (p *predictorPrefilter) Find(haystack []byte, start int) int {
	t := p.tables
	if t.Aho != nil {
		if m := t.Aho.Find(haystack, start); m != nil {
			return m.Start
		}
		return -1
	}
	if p.literalPF != nil {
		return p.literalPF.Find(haystack, start)
	}
	return bitapFind(haystack, start, t)
}

func (p *predictorPrefilter) IsComplete() bool { return false }
func (p *predictorPrefilter) LiteralLen() int  { return p.tables.Len }
func (p *predictorPrefilter) HeapBytes() int {
	return len(p.tables.Bit) + len(p.tables.Tap) + len(p.tables.PMA) + len(p.tables.PMH)
}

// bitapFind runs the bitap scan, testing the next Min bytes at each
// position against bit[] only (tap[] and the PM tables are not consulted)
// to find the first position that might begin a match, then, where the
// predictor set HasLookback, requiring the preceding Lbk bytes to lie in
// Tables.Cbk.
func bitapFind(haystack []byte, start int, t *predictor.Tables) int {
	min := t.Min
	if min == 0 {
		min = 1
	}
	for i := start; i+min <= len(haystack)+0 && i < len(haystack); i++ {
		if candidateAt(haystack, i, t) {
			if t.HasLookback && !lookbackOK(haystack, i, t) {
				continue
			}
			return i
		}
	}
	return -1
}

func candidateAt(haystack []byte, i int, t *predictor.Tables) bool {
	for k := 0; k < t.Min && i+k < len(haystack); k++ {
		b := haystack[i+k]
		if t.Bit[b]&(1<<uint(k)) != 0 {
			return false
		}
	}
	return true
}

func lookbackOK(haystack []byte, i int, t *predictor.Tables) bool {
	lo := i - t.Lbk
	if lo < 0 {
		lo = 0
	}
	for j := lo; j < i; j++ {
		if !t.Cbk[haystack[j]] {
			return false
		}
	}
	return true
}
