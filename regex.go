// Package coregex provides a high-performance regex engine for Go, built
// around a followpos-DFA-to-bytecode compiler and a bytecode match engine
// instead of the backtracking/lazy-DFA hybrid a stdlib-compatible regexp
// package would use.
//
// coregex is the search core of a recursive grep tool: patterns compile to
// a predictor (fast candidate-finding prefilter) plus a bytecode program
// run by a small VM, and Regex exposes the subset of stdlib regexp's API
// that maps onto that engine (Match/Find/FindAll, but not submatch groups
// - see Limitations below).
//
// Basic usage:
//
//	re, err := coregex.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	match := re.Find([]byte("hello 123 world"))
//	fmt.Println(string(match)) // "123"
//
// Advanced usage:
//
//	config := coregex.DefaultConfig()
//	re, err := coregex.CompileWithConfig("(a|b|c)*", config)
//
// Limitations:
//   - No submatch/capture-group API (FindSubmatch, NumSubexp, ...): the
//     engine tracks lookahead head/tail captures for the match package's
//     Record type, not arbitrary parenthesized subexpressions, so there is
//     no stdlib-compatible submatch surface to expose here.
package coregex

import (
	"github.com/coregx/reflexgrep/match"
)

// Regex represents a compiled regular expression, delegating to the
// match package's Pattern/Orchestrator pipeline.
//
// A Regex is safe to use concurrently from multiple goroutines.
type Regex struct {
	re      *match.Regex
	pattern string
}

// Compile compiles a regular expression pattern with DefaultConfig.
//
// Example:
//
//	re, err := coregex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// Example:
//
//	var emailRegex = coregex.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("coregex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	re, err := coregex.CompileWithConfig("(a|b|c)*", config)
func CompileWithConfig(pattern string, config match.Config) (*Regex, error) {
	re, err := match.CompileRegexWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	return &Regex{re: re, pattern: pattern}, nil
}

// DefaultConfig returns the default configuration for compilation.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	config.Predictor.BoyerMooreMinLen = 4
//	re, _ := coregex.CompileWithConfig("pattern", config)
func DefaultConfig() match.Config {
	return match.DefaultConfig()
}

// Match reports whether the byte slice b contains any match of the pattern.
func (r *Regex) Match(b []byte) bool {
	return r.re.Match(b)
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// Find returns a slice holding the text of the leftmost match in b.
// Returns nil if no match is found.
func (r *Regex) Find(b []byte) []byte {
	return r.re.Find(b)
}

// FindString returns a string holding the text of the leftmost match in s.
// Returns empty string if no match is found.
func (r *Regex) FindString(s string) string {
	m := r.Find([]byte(s))
	if m == nil {
		return ""
	}
	return string(m)
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. The match is at b[loc[0]:loc[1]].
// Returns nil if no match is found.
func (r *Regex) FindIndex(b []byte) []int {
	return r.re.FindIndex(b)
}

// FindStringIndex returns a two-element slice of integers defining the
// location of the leftmost match in s.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAll returns a slice of all successive non-overlapping matches of the
// pattern in b. If n > 0, it returns at most n matches. If n <= 0, it
// returns all matches.
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	if n == 0 {
		return nil
	}
	locs := r.re.FindAllIndex(b)
	if n > 0 && len(locs) > n {
		locs = locs[:n]
	}
	if len(locs) == 0 {
		return nil
	}
	matches := make([][]byte, len(locs))
	for i, loc := range locs {
		matches[i] = b[loc[0]:loc[1]]
	}
	return matches
}

// FindAllString returns a slice of all successive matches of the pattern in
// s. If n > 0, it returns at most n matches. If n <= 0, it returns all
// matches.
func (r *Regex) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = string(m)
	}
	return result
}

// FindAllIndex returns the [start, end) byte offsets of all successive
// non-overlapping matches of the pattern in b, in order.
func (r *Regex) FindAllIndex(b []byte) [][]int {
	return r.re.FindAllIndex(b)
}

// FindAllStringIndex returns the [start, end) byte offsets of all
// successive non-overlapping matches of the pattern in s, in order.
func (r *Regex) FindAllStringIndex(s string) [][]int {
	return r.FindAllIndex([]byte(s))
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}
