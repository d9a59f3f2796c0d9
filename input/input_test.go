package input

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewMemory(t *testing.T) {
	in := NewMemory([]byte("hello"))
	if in.Len() != 5 {
		t.Errorf("Len() = %d, want 5", in.Len())
	}
	if !bytes.Equal(in.Bytes(), []byte("hello")) {
		t.Errorf("Bytes() = %q, want %q", in.Bytes(), "hello")
	}
	in.SetPos(in.Len())
	if !in.AtEOF() {
		t.Error("Memory-backed Input should be immediately at EOF once pos reaches end")
	}
}

func TestSetPosClampsToValidRange(t *testing.T) {
	in := NewMemory([]byte("hello"))
	in.Advance(2)
	in.SetPos(-5)
	if in.Pos() != 2 {
		t.Errorf("SetPos below cur should clamp to cur, got %d", in.Pos())
	}
	in.SetPos(1000)
	if in.Pos() != in.Len() {
		t.Errorf("SetPos above end should clamp to end, got %d", in.Pos())
	}
}

func TestRefillFromStream(t *testing.T) {
	r := strings.NewReader("streamed bytes")
	in := NewStream(r, nil, false)
	total := 0
	for {
		n, err := in.Refill()
		if err != nil {
			t.Fatalf("Refill: %v", err)
		}
		total += n
		if in.AtEOF() {
			break
		}
		if n == 0 {
			break
		}
	}
	if !bytes.Equal(in.Bytes(), []byte("streamed bytes")) {
		t.Errorf("Bytes() = %q, want %q", in.Bytes(), "streamed bytes")
	}
	if total != len("streamed bytes") {
		t.Errorf("total read = %d, want %d", total, len("streamed bytes"))
	}
}

type errCloser struct {
	io.Reader
	closed bool
}

func (c *errCloser) Close() error {
	c.closed = true
	return nil
}

func TestCloseReleasesSource(t *testing.T) {
	ec := &errCloser{Reader: strings.NewReader("x")}
	in := NewStream(ec, nil, false)
	if err := in.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ec.closed {
		t.Error("Close() did not close the underlying reader")
	}
}

func TestResetClosesPreviousSource(t *testing.T) {
	ec := &errCloser{Reader: strings.NewReader("x")}
	in := NewStream(ec, nil, false)
	if err := in.Reset([]byte("new data")); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !ec.closed {
		t.Error("Reset() did not close the previous source")
	}
	if !bytes.Equal(in.Bytes(), []byte("new data")) {
		t.Errorf("Bytes() after Reset = %q, want %q", in.Bytes(), "new data")
	}
}

func TestAdvanceShiftsBufferEventually(t *testing.T) {
	in := NewStream(strings.NewReader("0123456789"), nil, false)
	if _, err := in.Refill(); err != nil {
		t.Fatalf("Refill: %v", err)
	}
	in.Advance(5)
	in.SetPos(7)
	beforeShiftPos := in.Pos()
	in.maybeShift()
	if in.Pos() != beforeShiftPos-5 {
		t.Errorf("pos after shift = %d, want %d", in.Pos(), beforeShiftPos-5)
	}
}
