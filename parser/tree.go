package parser

import (
	"github.com/coregx/reflexgrep/charset"
	"github.com/coregx/reflexgrep/pos"
)

// nodeKind discriminates the syntax-tree node produced by parse1..parse4.
type nodeKind int

const (
	nodeEmpty nodeKind = iota // matches zero-width, nullable
	nodeLeaf                  // a literal byte/class/anchor at one source position
	nodeConcat
	nodeAlt
	nodeStar // zero-or-more: lastpos loops back into firstpos (possibly lazy)
	nodePlus // one-or-more: same loop-back as nodeStar but not nullable
)

// node is one vertex of the regex syntax tree built by parse1..parse4. Once
// built, nullable/firstpos/lastpos are computed bottom-up by annotate, and
// followpos is computed top-down by a second walk (walkFollow).
type node struct {
	kind nodeKind

	// nodeLeaf fields.
	leafPos Position // the leaf's own tree position (see Position below)
	set     *charset.Set

	// nodeConcat / nodeAlt / nodeStar fields.
	left, right *node

	// nodeStar fields.
	lazyID uint8 // 0 = greedy

	// computed by annotate()
	nullable bool
	first    *pos.Set
	last     *pos.Set
}

// Position names a leaf's location for followpos purposes: source offset
// plus the repetition-unrolling iteration assigned by {n,m} expansion.
type Position struct {
	Loc   int
	Iter  int
	Flags pos.Flag
}

func newLeaf(p Position, set *charset.Set) *node {
	return &node{kind: nodeLeaf, leafPos: p, set: set}
}

func newEmpty() *node { return &node{kind: nodeEmpty, nullable: true, first: pos.NewSet(), last: pos.NewSet()} }

func newConcat(l, r *node) *node { return &node{kind: nodeConcat, left: l, right: r} }

func newAlt(l, r *node) *node { return &node{kind: nodeAlt, left: l, right: r} }

func newStar(sub *node, lazyID uint8) *node { return &node{kind: nodeStar, left: sub, lazyID: lazyID} }

func newPlus(sub *node, lazyID uint8) *node { return &node{kind: nodePlus, left: sub, lazyID: lazyID} }

// cloneWithIter deep-copies n, assigning every leaf's repetition iteration
// to iter. Used by {n,m} counted-repetition expansion (spec §4.1 parse3:
// "expanded by m-1 virtual copies via iter-indexed Position clones") so
// that each unrolled copy of the sub-pattern gets distinct Positions.
func cloneWithIter(n *node, iter int) *node {
	if n == nil {
		return nil
	}
	c := &node{kind: n.kind, lazyID: n.lazyID, set: n.set}
	if n.kind == nodeLeaf {
		c.leafPos = Position{Loc: n.leafPos.Loc, Iter: iter, Flags: n.leafPos.Flags}
	}
	c.left = cloneWithIter(n.left, iter)
	c.right = cloneWithIter(n.right, iter)
	return c
}

// markNegate tags every leaf within n with FlagNegate, used by the (?^...)
// redo atom (spec §4.1 parse4). See DESIGN.md for why this implementation
// marks every leaf rather than only the firstpos-reachable ones.
func markNegate(n *node) {
	if n == nil {
		return
	}
	if n.kind == nodeLeaf {
		n.leafPos.Flags |= pos.FlagNegate
	}
	markNegate(n.left)
	markNegate(n.right)
}

// annotate computes nullable, firstpos, and lastpos bottom-up, following
// the classic Aho-Sethi-Ullman construction spec §4 describes as parse1..4
// accumulating nullability/firstpos/lastpos while parsing. We compute it as
// a post-parse walk instead of incrementally, which is equivalent and
// easier to get right for the nested quantifier/lookahead cases.
func (n *node) annotate() {
	switch n.kind {
	case nodeEmpty:
		// already set by newEmpty
	case nodeLeaf:
		p := pos.New(n.leafPos.Loc, n.leafPos.Iter, 0, n.leafPos.Flags)
		n.nullable = false
		n.first = pos.NewSetFrom(p)
		n.last = pos.NewSetFrom(p)
	case nodeConcat:
		n.left.annotate()
		n.right.annotate()
		n.nullable = n.left.nullable && n.right.nullable
		if n.left.nullable {
			n.first = union(n.left.first, n.right.first)
		} else {
			n.first = n.left.first.Clone()
		}
		if n.right.nullable {
			n.last = union(n.left.last, n.right.last)
		} else {
			n.last = n.right.last.Clone()
		}
	case nodeAlt:
		n.left.annotate()
		n.right.annotate()
		n.nullable = n.left.nullable || n.right.nullable
		n.first = union(n.left.first, n.right.first)
		n.last = union(n.left.last, n.right.last)
	case nodeStar:
		n.left.annotate()
		n.nullable = true
		n.first = tagLazy(n.left.first, n.lazyID)
		n.last = tagLazy(n.left.last, n.lazyID)
	case nodePlus:
		n.left.annotate()
		n.nullable = n.left.nullable
		n.first = tagLazy(n.left.first, n.lazyID)
		n.last = tagLazy(n.left.last, n.lazyID)
	}
}

func tagLazy(s *pos.Set, lazyID uint8) *pos.Set {
	if lazyID == 0 {
		return s.Clone()
	}
	out := pos.NewSet()
	for _, p := range s.Sorted() {
		out.Add(p.WithLazy(lazyID))
	}
	return out
}

func union(a, b *pos.Set) *pos.Set {
	out := a.Clone()
	out.AddSet(b)
	return out
}

// walkFollow computes followpos (spec §3's FollowMap) by walking the tree
// top-down: for a Concat node, every lastpos of the left child follows
// into firstpos of the right child; for a Star node, every lastpos of the
// body follows back into its own firstpos (the unbounded-repetition
// back-edge from spec §4.1's parse3).
func walkFollow(n *node, fm *pos.Map) {
	switch n.kind {
	case nodeConcat:
		for _, p := range n.left.last.Sorted() {
			fm.AddFollowSet(p, n.right.first)
		}
		walkFollow(n.left, fm)
		walkFollow(n.right, fm)
	case nodeAlt:
		walkFollow(n.left, fm)
		walkFollow(n.right, fm)
	case nodeStar, nodePlus:
		for _, p := range n.last.Sorted() {
			fm.AddFollowSet(p, n.first)
		}
		walkFollow(n.left, fm)
	}
}
