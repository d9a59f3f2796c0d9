// Package parser implements the RegexParser of spec §4.1: a recursive-
// descent compiler turning regex source text directly into a followpos
// position automaton (no intermediate NFA-instruction representation), in
// the spirit of the classic Aho-Sethi-Ullman construction used by the
// reflex/ugrep pattern compiler this module reimplements.
//
// The four mutually-recursive grammar levels (parse1 alternation, parse2
// concatenation+anchors, parse3 quantifiers, parse4 atoms) are grounded
// stylistically on nfa/compile.go's recursive-descent Compiler in the
// teacher repo (per-method error propagation, an explicit options struct),
// generalized from "regex source -> Thompson NFA instructions" to "regex
// source -> firstpos/lastpos/followpos".
package parser

import (
	"strings"

	"github.com/coregx/reflexgrep/charset"
	"github.com/coregx/reflexgrep/pos"
)

// LookaheadSpan records one `(?=...)` group's bracketing offsets and the
// lookahead id the Assembler will emit HEAD/TAIL cells for.
type LookaheadSpan struct {
	ID        int
	OpenLoc   int
	CloseLoc  int
}

// Result is everything the DFABuilder needs from a parsed pattern.
type Result struct {
	Start       *pos.Set
	Follow      *pos.Map
	LazyCount   uint8
	Lookaheads  []LookaheadSpan
	LocClass    map[int]*charset.Set // source offset -> character class at that leaf
	LocAccept   map[int]int          // source offset of an accept leaf -> its accept label (1-based)
	NumAccepts  int
	EndOffsets  []int // source offsets separating top-level alternations
}

// Parser holds per-compile state for one call to Parse.
type Parser struct {
	src   string
	i     int // current byte offset (also used as the next leaf's Loc)
	opts  Options

	nextLazy      uint8
	nextLookahead int
	lookaheads    []LookaheadSpan
	locClass      map[int]*charset.Set
	locAccept     map[int]int
	endOffsets    []int
}

// Parse compiles pattern under opts into a Result.
func Parse(pattern string, opts Options) (*Result, error) {
	if len(pattern) > opts.MaxLength {
		return nil, &SyntaxError{Kind: ErrExceedsLength, Source: pattern, Offset: opts.MaxLength}
	}
	if pattern == "" {
		return nil, &SyntaxError{Kind: ErrEmptyExpression, Source: pattern, Offset: 0}
	}
	p := &Parser{
		src:       pattern,
		opts:      opts,
		locClass:  make(map[int]*charset.Set),
		locAccept: make(map[int]int),
	}
	root, err := p.parseTop()
	if err != nil {
		return nil, err
	}
	if p.i != len(p.src) {
		return nil, p.errorf(ErrMismatchedParens, p.i, "unexpected %q", p.src[p.i])
	}
	root.annotate()
	fm := pos.NewMap()
	walkFollow(root, fm)
	for _, l := range fm.Positions() {
		fm.Follow(l).LazyTrim()
	}
	return &Result{
		Start:      root.first,
		Follow:     fm,
		LazyCount:  p.nextLazy,
		Lookaheads: p.lookaheads,
		LocClass:   p.locClass,
		LocAccept:  p.locAccept,
		NumAccepts: len(p.endOffsets) + 1,
		EndOffsets: p.endOffsets,
	}, nil
}

// parseTop parses the whole pattern as a top-level alternation, tagging
// each alternative with a distinct accept leaf so that accept labels 1..N
// map back to sub-patterns (spec §4.1).
func (p *Parser) parseTop() (*node, error) {
	label := 1
	first, err := p.parseAlt1WithAccept(label)
	if err != nil {
		return nil, err
	}
	result := first
	for p.i < len(p.src) && p.src[p.i] == '|' {
		p.i++
		p.endOffsets = append(p.endOffsets, p.i)
		label++
		branch, err := p.parseAlt1WithAccept(label)
		if err != nil {
			return nil, err
		}
		result = newAlt(result, branch)
	}
	return result, nil
}

// parseAlt1WithAccept parses one top-level alternative (itself possibly
// containing nested, non-accept-tagged alternation via parse4's grouping)
// and appends an accept leaf labeled `label`.
func (p *Parser) parseAlt1WithAccept(label int) (*node, error) {
	body, err := p.parse2()
	if err != nil {
		return nil, err
	}
	acceptLoc := p.i
	p.locAccept[acceptLoc] = label
	accept := newLeaf(Position{Loc: acceptLoc, Flags: pos.FlagAccept}, nil)
	return newConcat(body, accept), nil
}

// parse1 parses a (possibly nested, non-accept-tagged) alternation, used
// inside groups. left | right: nullability ORed, lastpos unioned (spec
// §4.1).
func (p *Parser) parse1() (*node, error) {
	left, err := p.parse2()
	if err != nil {
		return nil, err
	}
	for p.i < len(p.src) && p.src[p.i] == '|' {
		p.i++
		right, err := p.parse2()
		if err != nil {
			return nil, err
		}
		left = newAlt(left, right)
	}
	return left, nil
}

// parse2 parses concatenation and leading anchors: ^, \A, \b, \<, \>.
func (p *Parser) parse2() (*node, error) {
	var result *node
	for p.i < len(p.src) {
		c := p.src[p.i]
		if c == '|' || c == ')' {
			break
		}
		atom, err := p.parseAnchorOrQuant()
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = atom
		} else {
			result = newConcat(result, atom)
		}
	}
	if result == nil {
		result = newEmpty()
	}
	return result, nil
}

// parseAnchorOrQuant recognizes a leading anchor, else falls through to
// parse3 (quantified atom).
func (p *Parser) parseAnchorOrQuant() (*node, error) {
	if p.i < len(p.src) {
		loc := p.i
		switch {
		case p.hasPrefix("^"):
			p.i++
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.BOL)), nil
		case p.hasPrefix("$"):
			p.i++
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.EOL)), nil
		case p.hasPrefix(`\A`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.BOB)), nil
		case p.hasPrefix(`\Z`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.EOB)), nil
		case p.hasPrefix(`\b`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Union(charset.Single(charset.WBB), charset.Single(charset.WBE))), nil
		case p.hasPrefix(`\B`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Union(charset.Single(charset.NWB), charset.Single(charset.NWE))), nil
		case p.hasPrefix(`\<`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.WBB)), nil
		case p.hasPrefix(`\>`):
			p.i += 2
			return newLeaf(Position{Loc: loc, Flags: pos.FlagAnchor}, charset.Single(charset.WBE)), nil
		}
	}
	return p.parse3()
}

func (p *Parser) hasPrefix(s string) bool { return strings.HasPrefix(p.src[p.i:], s) }

// parse3 parses quantifiers `?` `*` `+` `{n,m}`, each optionally followed
// by a lazy `?` that registers a fresh lazy id and tags the quantified
// sub-expression's firstpos with it.
func (p *Parser) parse3() (*node, error) {
	atom, err := p.parse4()
	if err != nil {
		return nil, err
	}
	for p.i < len(p.src) {
		c := p.src[p.i]
		switch c {
		case '?':
			p.i++
			lazy, err := p.maybeLazy()
			if err != nil {
				return nil, err
			}
			atom = newAlt(atom, newEmpty())
			if lazy != 0 {
				tagQuestLazy(atom, lazy)
			}
		case '*':
			p.i++
			lazy, err := p.maybeLazy()
			if err != nil {
				return nil, err
			}
			atom = newStar(atom, lazy)
		case '+':
			p.i++
			lazy, err := p.maybeLazy()
			if err != nil {
				return nil, err
			}
			atom = newPlus(atom, lazy)
		case '{':
			save := p.i
			min, max, ok, err := p.tryParseBraces()
			if err != nil {
				return nil, err
			}
			if !ok {
				p.i = save
				return atom, nil
			}
			lazy, err := p.maybeLazy()
			if err != nil {
				return nil, err
			}
			atom, err = p.expandCounted(atom, min, max, lazy)
			if err != nil {
				return nil, err
			}
		default:
			return atom, nil
		}
	}
	return atom, nil
}

// tagQuestLazy tags the true-branch firstpos of a `X?` alternation with a
// lazy id so that the empty branch is explored first (lazy "prefer
// shortest" semantics).
func tagQuestLazy(n *node, lazyID uint8) {
	n.left = &node{kind: nodeStar, left: n.left, lazyID: lazyID} // reuse Star's lazy-tagging of first/last via annotate
	n.kind = nodeAlt
}

func (p *Parser) maybeLazy() (uint8, error) {
	if p.i < len(p.src) && p.src[p.i] == '?' {
		p.i++
		if int(p.nextLazy)+1 > p.opts.MaxLazy {
			return 0, p.errorf(ErrExceedsLimits, p.i, "too many lazy quantifiers")
		}
		p.nextLazy++
		return p.nextLazy, nil
	}
	return 0, nil
}

// tryParseBraces attempts to parse `{n}`, `{n,}`, or `{n,m}` starting at
// p.i == '{'. Returns ok=false (and leaves p.i untouched by the caller via
// `save`) if the braces do not form a valid repeat count, matching spec's
// treatment of a bare `{` as a literal when it is not a valid quantifier.
func (p *Parser) tryParseBraces() (min, max int, ok bool, err error) {
	j := p.i + 1
	start := j
	for j < len(p.src) && p.src[j] >= '0' && p.src[j] <= '9' {
		j++
	}
	if j == start {
		return 0, 0, false, nil
	}
	min = atoi(p.src[start:j])
	max = min
	if j < len(p.src) && p.src[j] == ',' {
		j++
		start2 := j
		for j < len(p.src) && p.src[j] >= '0' && p.src[j] <= '9' {
			j++
		}
		if j == start2 {
			max = -1 // unbounded
		} else {
			max = atoi(p.src[start2:j])
		}
	}
	if j >= len(p.src) || p.src[j] != '}' {
		return 0, 0, false, nil
	}
	p.i = j + 1
	if max >= 0 && max < min {
		return 0, 0, false, p.errorf(ErrInvalidRepeat, p.i, "min %d exceeds max %d", min, max)
	}
	return min, max, true, nil
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// expandCounted unrolls X{n,m} into n required copies followed by (m-n)
// optional nested copies, or into n-1 required copies plus an unbounded
// Plus when max is unbounded — spec §4.1 parse3's "expanded by m-1 virtual
// copies via iter-indexed Position clones".
func (p *Parser) expandCounted(atom *node, min, max int, lazy uint8) (*node, error) {
	if min == 0 && max == 0 {
		return newEmpty(), nil
	}
	var result *node
	for k := 0; k < min; k++ {
		copyK := cloneWithIter(atom, k)
		if result == nil {
			result = copyK
		} else {
			result = newConcat(result, copyK)
		}
	}
	switch {
	case max < 0: // {n,}
		var tail *node
		if min == 0 {
			tail = newStar(atom, lazy)
		} else {
			tail = newPlus(cloneWithIter(atom, min-1), lazy)
			// the min-1'th required copy above already covers one
			// occurrence; fold it into the Plus loop instead of counting it
			// twice.
			if result != nil {
				result = nil
				for k := 0; k < min-1; k++ {
					copyK := cloneWithIter(atom, k)
					if result == nil {
						result = copyK
					} else {
						result = newConcat(result, copyK)
					}
				}
			}
		}
		if result == nil {
			return tail, nil
		}
		return newConcat(result, tail), nil
	default: // {n,m}
		extra := max - min
		optional := p.buildOptionalChain(atom, extra, min, lazy)
		if result == nil {
			return optional, nil
		}
		if optional.kind == nodeEmpty {
			return result, nil
		}
		return newConcat(result, optional), nil
	}
}

// buildOptionalChain builds the right-nested (X (X (X)?)?)? chain for the
// optional tail of a bounded counted repetition.
func (p *Parser) buildOptionalChain(atom *node, count, iterStart int, lazy uint8) *node {
	if count == 0 {
		return newEmpty()
	}
	copyK := cloneWithIter(atom, iterStart)
	rest := p.buildOptionalChain(atom, count-1, iterStart+1, lazy)
	var body *node
	if rest.kind == nodeEmpty {
		body = copyK
	} else {
		body = newConcat(copyK, rest)
	}
	quest := newAlt(body, newEmpty())
	if lazy != 0 {
		tagQuestLazy(quest, lazy)
	}
	return quest
}
