// Package input implements the Input component of spec §3/§9: a growing
// byte buffer over an in-memory source, a file, or a byte stream, with
// transparent re-encoding to UTF-8 via codec.Decoder.
//
// The buffer growth/shift discipline is grounded on the ambient pattern
// nfa/backtrack.go uses for its own input slicing (a single growable []byte
// plus cursor fields), generalized to the four-cursor invariant spec §3
// names: cur <= pos <= end <= max.
package input

import (
	"bufio"
	"io"

	"github.com/coregx/reflexgrep/codec"
)

// Source identifies which variant backs an Input; spec §9 requires that
// "each Input instance owns exactly one of the variants {Memory, File,
// Stream}".
type Source int

const (
	Memory Source = iota
	File
	Stream
)

// defaultGrow is the minimum number of bytes Refill tries to add per call.
const defaultGrow = 64 * 1024

// Input is a unified byte source with cur/pos/end cursors over a growable
// buffer, per spec §3's Input buffer data model.
type Input struct {
	source Source
	reader *bufio.Reader
	closer io.Closer

	dec *codec.Decoder

	buf []byte
	cur int // consumer cursor: bytes before this are retired and eligible for shift
	pos int // matcher cursor: the Interpreter's current scan position
	end int // valid-byte boundary
	eof bool

	robust bool // spec §7: option 'r' forces exceeds-length to raise rather than truncate
}

// MaxBuffer bounds how large the buffer may grow before Refill raises
// ErrExceedsLength under robust mode (spec §7).
const MaxBuffer = 256 * 1024 * 1024

// NewMemory wraps an in-memory byte slice that is already UTF-8.
func NewMemory(data []byte) *Input {
	return &Input{source: Memory, buf: data, end: len(data), eof: true}
}

// NewFile wraps an os.File-like io.ReadCloser as a File-backed Input,
// decoding through dec if non-nil.
func NewFile(f io.ReadCloser, dec *codec.Decoder, robust bool) *Input {
	return &Input{source: File, reader: bufio.NewReader(f), closer: f, dec: dec, robust: robust}
}

// NewStream wraps an arbitrary io.Reader (e.g. a DecompChain part) as a
// Stream-backed Input.
func NewStream(r io.Reader, dec *codec.Decoder, robust bool) *Input {
	rc, ok := r.(io.Closer)
	in := &Input{source: Stream, reader: bufio.NewReader(r), dec: dec, robust: robust}
	if ok {
		in.closer = rc
	}
	return in
}

// Close releases the underlying source, per spec §9's "guaranteed release
// on drop/close".
func (in *Input) Close() error {
	if in.closer != nil {
		err := in.closer.Close()
		in.closer = nil
		return err
	}
	return nil
}

// Reset reassigns in to a fresh Memory source, closing the previous source
// first (spec §9: "Reassigning an Input closes the previous source
// first").
func (in *Input) Reset(data []byte) error {
	if err := in.Close(); err != nil {
		return err
	}
	in.source = Memory
	in.reader = nil
	in.dec = nil
	in.buf = data
	in.cur, in.pos, in.end = 0, 0, len(data)
	in.eof = true
	return nil
}

// Len returns the number of valid bytes currently buffered.
func (in *Input) Len() int { return in.end }

// Bytes returns the valid portion of the buffer, [0:end).
func (in *Input) Bytes() []byte { return in.buf[:in.end] }

// Pos returns the matcher cursor.
func (in *Input) Pos() int { return in.pos }

// SetPos moves the matcher cursor, clamped to [cur, end].
func (in *Input) SetPos(p int) {
	if p < in.cur {
		p = in.cur
	}
	if p > in.end {
		p = in.end
	}
	in.pos = p
}

// Advance moves the consumer cursor forward to at least pos, making bytes
// before it eligible for a future Shift.
func (in *Input) Advance(pos int) {
	if pos > in.cur {
		in.cur = pos
	}
}

// AtEOF reports whether the source is exhausted (no more bytes can ever be
// produced past end) and pos has reached end.
func (in *Input) AtEOF() bool { return in.eof && in.pos >= in.end }

// Refill requests more bytes when the matcher reaches the end of the
// buffer (spec §4.6: "on EOB: request more bytes from Input"). It returns
// the number of new bytes appended, or 0 at EOF.
func (in *Input) Refill() (int, error) {
	if in.source == Memory || in.eof {
		return 0, nil
	}
	in.maybeShift()
	if in.end+defaultGrow > len(in.buf) {
		if err := in.grow(); err != nil {
			return 0, err
		}
	}

	n, err := in.reader.Read(in.buf[in.end:])
	if n > 0 {
		chunk := in.buf[in.end : in.end+n]
		if in.dec != nil {
			decoded, derr := in.dec.Decode(chunk)
			if derr != nil {
				return 0, derr
			}
			in.replaceTail(decoded)
			n = len(decoded)
		} else {
			in.end += n
		}
	}
	if err != nil {
		if err == io.EOF {
			in.eof = true
			return n, nil
		}
		return n, err
	}
	return n, nil
}

// replaceTail substitutes the most recently read raw chunk with its
// decoded form, since transcoding may change the byte count (spec §3:
// "transparent re-encoding to UTF-8").
func (in *Input) replaceTail(decoded []byte) {
	rawStart := in.end
	in.buf = append(in.buf[:rawStart], decoded...)
	in.end = rawStart + len(decoded)
}

// maybeShift moves retained bytes [cur:end) to the start of buf whenever
// cur > 0, invalidating any interior iterator into the buffer per spec §3.
func (in *Input) maybeShift() {
	if in.cur == 0 {
		return
	}
	n := copy(in.buf, in.buf[in.cur:in.end])
	in.end = n
	in.pos -= in.cur
	in.cur = 0
}

// grow extends buf's capacity, raising ErrExceedsLength if robust mode is
// set and the new size would exceed MaxBuffer (spec §7).
func (in *Input) grow() error {
	want := in.end + defaultGrow
	if want > MaxBuffer {
		if in.robust {
			return ErrExceedsLength
		}
		want = MaxBuffer
		if want <= in.end {
			return ErrExceedsLength
		}
	}
	grown := make([]byte, want)
	copy(grown, in.buf[:in.end])
	in.buf = grown
	return nil
}
