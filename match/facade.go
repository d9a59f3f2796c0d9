package match

import "github.com/coregx/reflexgrep/input"

// Regex is the public compiled-pattern facade, mirroring regex.go's
// Regex/Compile/MustCompile/Find* API surface but driven by this module's
// own parser/dfa/asm/vm pipeline instead of the teacher's NFA/meta engine.
type Regex struct {
	pattern *Pattern
}

// CompileRegex compiles pattern with DefaultConfig.
func CompileRegex(pattern string) (*Regex, error) {
	return CompileRegexWithConfig(pattern, DefaultConfig())
}

// MustCompileRegex compiles pattern and panics on error.
func MustCompileRegex(pattern string) *Regex {
	re, err := CompileRegex(pattern)
	if err != nil {
		panic("match: CompileRegex(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileRegexWithConfig compiles pattern with a caller-supplied Config.
func CompileRegexWithConfig(pattern string, cfg Config) (*Regex, error) {
	p, err := Compile(pattern, cfg)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: p}, nil
}

// Match reports whether b contains any match of the pattern.
func (r *Regex) Match(b []byte) bool {
	return r.FindIndex(b) != nil
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns the leftmost match in b, or nil.
func (r *Regex) Find(b []byte) []byte {
	loc := r.FindIndex(b)
	if loc == nil {
		return nil
	}
	return b[loc[0]:loc[1]]
}

// FindIndex returns the [start, end) byte offsets of the leftmost match in
// b, or nil.
func (r *Regex) FindIndex(b []byte) []int {
	var loc []int
	o := New(r.pattern, "", func(rec Record) bool {
		loc = []int{rec.ByteOffset, rec.ByteOffset + rec.Length}
		return false
	})
	in := input.NewMemory(b)
	if err := o.Run(in); err != nil {
		return nil
	}
	return loc
}

// FindAllIndex returns the [start, end) byte offsets of every non-
// overlapping match in b, in order.
func (r *Regex) FindAllIndex(b []byte) [][]int {
	var locs [][]int
	o := New(r.pattern, "", func(rec Record) bool {
		locs = append(locs, []int{rec.ByteOffset, rec.ByteOffset + rec.Length})
		return true
	})
	in := input.NewMemory(b)
	o.Run(in)
	return locs
}
