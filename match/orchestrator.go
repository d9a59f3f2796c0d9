package match

import (
	"sort"

	"github.com/coregx/reflexgrep/input"
	"github.com/coregx/reflexgrep/vm"
)

// Sink receives Records as the Orchestrator finds them and returns false
// to stop the search early.
type Sink func(Record) bool

// Orchestrator drives Prefilter -> Interpreter over one Input, per spec
// §4.9: "call Prefilter to obtain the next candidate pos; call
// Interpreter in SCAN or MATCH mode at that pos".
type Orchestrator struct {
	Pattern  *Pattern
	Partname string
	Sink     Sink
}

// New returns an Orchestrator for one (pattern, part) pair.
func New(p *Pattern, partname string, sink Sink) *Orchestrator {
	return &Orchestrator{Pattern: p, Partname: partname, Sink: sink}
}

// Run searches in to completion, calling Sink for each match and stopping
// when Sink returns false, the input reaches EOF, or an error occurs.
func (o *Orchestrator) Run(in *input.Input) error {
	line, col := 1, 1
	lastOffset := 0

	for {
		data := in.Bytes()
		pos := in.Pos()

		cand := o.Pattern.Prefilter.Find(data, pos)
		if cand < 0 {
			if in.AtEOF() {
				return nil
			}
			n, err := in.Refill()
			if err != nil {
				return err
			}
			if n == 0 {
				return nil
			}
			continue
		}

		res := o.Pattern.interp.Run(data, cand, vm.Scan)
		if !res.Matched {
			if cand+1 > len(data) {
				if in.AtEOF() {
					return nil
				}
				n, err := in.Refill()
				if err != nil {
					return err
				}
				if n == 0 {
					return nil
				}
				continue
			}
			in.SetPos(cand + 1)
			continue
		}

		line, col = advanceLineCol(data, lastOffset, res.Begin, line, col)
		lastOffset = res.Begin

		rec := Record{
			Partname:    o.Partname,
			ByteOffset:  res.Begin,
			Line:        line,
			Column:      col,
			Length:      res.End - res.Begin,
			AcceptLabel: res.Label,
			Captures:    convertCaptures(res.Captures),
		}
		if !o.Sink(rec) {
			return nil
		}

		next := res.End
		if next <= pos {
			next = pos + 1
		}
		in.SetPos(next)
	}
}

// advanceLineCol counts newlines and non-continuation UTF-8 bytes between
// from and to, per spec §4.9: "counting newlines between cur and the
// match start; UTF-8 column counting uses bytes with continuation-bit
// 10xxxxxx excluded".
func advanceLineCol(data []byte, from, to, line, col int) (int, int) {
	for i := from; i < to && i < len(data); i++ {
		b := data[i]
		if b == '\n' {
			line++
			col = 1
			continue
		}
		if b&0xC0 != 0x80 {
			col++
		}
	}
	return line, col
}

func convertCaptures(caps map[int]vm.Capture) []Capture {
	if len(caps) == 0 {
		return nil
	}
	ids := make([]int, 0, len(caps))
	for id := range caps {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Capture, 0, len(caps))
	for _, id := range ids {
		c := caps[id]
		out = append(out, Capture{Begin: c.Begin, End: c.End})
	}
	return out
}
