package core

import (
	"testing"

	"github.com/coregx/reflexgrep/parser"
)

func mustParse(t *testing.T, pattern string) *parser.Result {
	t.Helper()
	res, err := parser.Parse(pattern, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", pattern, err)
	}
	return res
}

func TestBuildSimpleLiteral(t *testing.T) {
	res := mustParse(t, "ab")
	dfa, err := Build(res, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(dfa.States) == 0 {
		t.Fatal("expected at least one state")
	}
	start := dfa.States[dfa.Start-1]
	target, ok := start.HasEdgeFor('a')
	if !ok {
		t.Fatal("start state should have an edge for 'a'")
	}
	mid := dfa.States[target-1]
	target2, ok := mid.HasEdgeFor('b')
	if !ok {
		t.Fatal("second state should have an edge for 'b'")
	}
	end := dfa.States[target2-1]
	if end.Accept == 0 {
		t.Error("state after consuming \"ab\" should be accepting")
	}
}

func TestBuildEdgesPartitionByteSpace(t *testing.T) {
	res := mustParse(t, "[ab]")
	dfa, err := Build(res, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	start := dfa.States[dfa.Start-1]
	var covered int
	for _, e := range start.Edges {
		if e.Hi < e.Lo {
			t.Fatalf("edge %v has Hi < Lo", e)
		}
		covered += int(e.Hi-e.Lo) + 1
	}
	// spec §8 invariant 3: every DFA state's edges plus the implicit
	// HALT set partition 0..255 exactly once -- edges here must not
	// overlap, and must not exceed the byte range.
	seen := map[rune]bool{}
	for _, e := range start.Edges {
		for r := e.Lo; r <= e.Hi; r++ {
			if seen[r] {
				t.Fatalf("byte %q covered by more than one edge", r)
			}
			seen[r] = true
		}
	}
}

func TestBuildAlternation(t *testing.T) {
	res := mustParse(t, "cat|dog")
	dfa, err := Build(res, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	start := dfa.States[dfa.Start-1]
	if _, ok := start.HasEdgeFor('c'); !ok {
		t.Error("start state should accept 'c' (from \"cat\")")
	}
	if _, ok := start.HasEdgeFor('d'); !ok {
		t.Error("start state should accept 'd' (from \"dog\")")
	}
}

func TestBuildMaxStatesLimit(t *testing.T) {
	res := mustParse(t, "a{1,50}")
	_, err := Build(res, Config{MaxStates: 1, CompactReverse: true})
	if err == nil {
		t.Fatal("expected a LimitError when MaxStates is exceeded")
	}
	if _, ok := err.(*LimitError); !ok {
		t.Errorf("err = %T, want *LimitError", err)
	}
}

func TestBuildLookaheadHeadsAndTails(t *testing.T) {
	res := mustParse(t, `a(?=b)`)
	dfa, err := Build(res, DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var sawHead bool
	for _, st := range dfa.States {
		if len(st.Heads) > 0 {
			sawHead = true
		}
	}
	if !sawHead {
		t.Error("expected at least one state tagged with a lookahead Head id")
	}
}
