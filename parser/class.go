package parser

import "github.com/coregx/reflexgrep/charset"

// parseClass parses a `[...]` character class per spec §4.2: individual
// characters, ranges, POSIX classes, escape classes, and collating
// symbols/equivalence classes (accepted syntactically, treated as the bare
// character).
func (p *Parser) parseClass() (*node, error) {
	openLoc := p.i
	p.i++ // consume '['
	negate := false
	if p.i < len(p.src) && p.src[p.i] == '^' {
		negate = true
		p.i++
	}
	set := charset.New()
	first := true
	for {
		if p.i >= len(p.src) {
			return nil, p.errorf(ErrMismatchedBrackets, openLoc, "unterminated class")
		}
		if p.src[p.i] == ']' && !first {
			p.i++
			break
		}
		first = false
		if p.hasPrefix("[:") {
			name, err := p.readPosixClassName()
			if err != nil {
				return nil, err
			}
			cls, err := charset.Posix(name)
			if err != nil {
				return nil, p.errorf(ErrInvalidClass, openLoc, "%v", err)
			}
			set = charset.Union(set, cls)
			continue
		}
		if p.hasPrefix("[.") || p.hasPrefix("[=") {
			r, err := p.readCollatingSymbol()
			if err != nil {
				return nil, err
			}
			set.Add(charset.Range{Lo: r, Hi: r})
			continue
		}
		if p.i+1 < len(p.src) && p.src[p.i] == p.opts.EscapeChar && isClassEscapeLetter(p.src[p.i+1]) {
			cls, err := charset.Escape(p.src[p.i+1])
			if err != nil {
				return nil, p.errorf(ErrInvalidEscape, openLoc, "%v", err)
			}
			p.i += 2
			set = charset.Union(set, cls)
			continue
		}
		lo, err := p.readClassChar()
		if err != nil {
			return nil, err
		}
		if p.i+1 < len(p.src) && p.src[p.i] == '-' && p.src[p.i+1] != ']' {
			p.i++ // consume '-'
			hi, err := p.readClassChar()
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, p.errorf(ErrInvalidClassRange, openLoc, "range out of order")
			}
			set.Add(charset.Range{Lo: lo, Hi: hi})
		} else {
			set.Add(charset.Range{Lo: lo, Hi: lo})
		}
	}
	if negate {
		set = charset.Complement(set, 0xff)
	}
	if p.opts.CaseInsensitive {
		set = charset.CaseFold(set)
	}
	p.locClass[openLoc] = set
	return newLeaf(Position{Loc: openLoc}, set), nil
}

// readClassChar reads one class member that resolves to a single rune: a
// raw byte, \n/\t/\r, \xHH, or a literal escaped byte. The caller
// intercepts escape-class letters (\d\D\s\S\w\W\h\H\l\L\u\U) before
// calling this, since those expand into a whole charset.Set union rather
// than a single rune.
func (p *Parser) readClassChar() (rune, error) {
	c := p.src[p.i]
	if c != p.opts.EscapeChar {
		p.i++
		return rune(c), nil
	}
	if p.i+1 >= len(p.src) {
		return 0, p.errorf(ErrInvalidEscape, p.i, "dangling escape in class")
	}
	next := p.src[p.i+1]
	switch next {
	case 'n':
		p.i += 2
		return '\n', nil
	case 't':
		p.i += 2
		return '\t', nil
	case 'r':
		p.i += 2
		return '\r', nil
	case 'x':
		p.i += 2
		return p.readHexEscape()
	default:
		p.i += 2
		return rune(next), nil
	}
}

// isClassEscapeLetter reports whether c names one of the multi-char escape
// classes (\d\D\s\S\w\W\h\H\l\L\u\U) that charset.Escape recognizes,
// mirroring parser/atoms.go's parseEscape dispatch for the non-bracket case.
func isClassEscapeLetter(c byte) bool {
	switch c {
	case 'd', 'D', 's', 'S', 'w', 'W', 'h', 'H', 'l', 'L', 'u', 'U':
		return true
	default:
		return false
	}
}

func (p *Parser) readPosixClassName() (string, error) {
	start := p.i
	p.i += 2 // consume "[:"
	nameStart := p.i
	for p.i < len(p.src) && p.src[p.i] != ':' {
		p.i++
	}
	if p.i+1 >= len(p.src) || p.src[p.i] != ':' || p.src[p.i+1] != ']' {
		return "", p.errorf(ErrInvalidClass, start, "malformed [: :] class")
	}
	name := p.src[nameStart:p.i]
	p.i += 2
	return name, nil
}

// readCollatingSymbol accepts `[.x.]`/`[=x=]` syntactically and returns the
// bare character, per spec §4.2.
func (p *Parser) readCollatingSymbol() (rune, error) {
	start := p.i
	closer := p.src[p.i+1] // '.' or '='
	p.i += 2
	symStart := p.i
	for p.i < len(p.src) && p.src[p.i] != closer {
		p.i++
	}
	if p.i+1 >= len(p.src) || p.src[p.i] != closer || p.src[p.i+1] != ']' {
		return 0, p.errorf(ErrInvalidCollating, start, "malformed collating symbol")
	}
	sym := p.src[symStart:p.i]
	p.i += 2
	if len(sym) == 0 {
		return 0, p.errorf(ErrInvalidCollating, start, "empty collating symbol")
	}
	return rune(sym[0]), nil
}
