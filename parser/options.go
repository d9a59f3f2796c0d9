package parser

// Options holds the per-compile option map spec §4.1 names: case-insensitive
// `i`, multiline `m`, dotall `s`, extended `x`, fixed-strings `q`, and the
// literal-escape character `e` (defaults to '\\'), plus the `r` robust-mode
// flag. Parse does not read Robust: a pattern longer than MaxLength always
// fails with ErrExceedsLength.
type Options struct {
	CaseInsensitive bool
	Multiline       bool
	DotAll          bool
	Extended        bool
	FixedStrings    bool
	EscapeChar      byte
	Robust          bool

	// MaxLazy / MaxLookahead bound the parser per spec §4.3's
	// "at most 255 lazy ids" and "Lookahead id space fits in a 16-bit
	// counter" limits; MaxLength bounds total source length. MaxLoc is not
	// read by the parser; pos.New enforces pos.MaxLoc on source offsets.
	MaxLoc       int
	MaxLazy      int
	MaxLookahead int
	MaxLength    int
}

// DefaultOptions returns the option set used when the caller supplies none,
// following meta/config.go's DefaultConfig() pattern in the teacher.
func DefaultOptions() Options {
	return Options{
		EscapeChar:   '\\',
		MaxLoc:       1<<24 - 1,
		MaxLazy:      255,
		MaxLookahead: 1<<16 - 1,
		MaxLength:    1 << 20,
	}
}
