package match

import (
	"testing"

	"github.com/coregx/reflexgrep/vm"
)

func TestAdvanceLineColCountsNewlines(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := advanceLineCol(data, 0, 6, 1, 1)
	if line != 3 || col != 1 {
		t.Errorf("advanceLineCol = (%d, %d), want (3, 1)", line, col)
	}
}

func TestAdvanceLineColSkipsUTF8Continuations(t *testing.T) {
	// "é" is 0xC3 0xA9 in UTF-8: one continuation byte.
	data := []byte{'a', 0xC3, 0xA9, 'b'}
	line, col := advanceLineCol(data, 0, 4, 1, 1)
	if line != 1 || col != 4 {
		t.Errorf("advanceLineCol = (%d, %d), want (1, 4)", line, col)
	}
}

func TestConvertCapturesSortsByID(t *testing.T) {
	caps := map[int]vm.Capture{
		2: {Begin: 5, End: 7, Valid: true},
		0: {Begin: 0, End: 10, Valid: true},
		1: {Begin: 1, End: 3, Valid: true},
	}
	out := convertCaptures(caps)
	want := []Capture{{0, 10}, {1, 3}, {5, 7}}
	if len(out) != len(want) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(want))
	}
	for i, c := range want {
		if out[i] != c {
			t.Errorf("out[%d] = %+v, want %+v", i, out[i], c)
		}
	}
}

func TestConvertCapturesEmpty(t *testing.T) {
	if out := convertCaptures(nil); out != nil {
		t.Errorf("convertCaptures(nil) = %v, want nil", out)
	}
}
