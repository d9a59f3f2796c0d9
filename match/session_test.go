package match

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

// buildZip packs name->content pairs into an in-memory zip archive, in the
// order given.
func buildZip(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

// TestSessionSearchesEveryArchiveEntry is spec §8 concrete scenario 6:
// Session.SearchFile must drive a Pattern over every part a decomp.Chain
// yields from a zip archive, tagging each Record's Partname with the
// "outer:inner" form decomp.Worker assigns.
func TestSessionSearchesEveryArchiveEntry(t *testing.T) {
	files := map[string]string{
		"a.txt": "foo\n",
		"b.txt": "foobar\n",
	}
	order := []string{"a.txt", "b.txt"}
	data := buildZip(t, files, order)

	pat, err := Compile("foo", DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	type hit struct {
		partname string
		offset   int
	}
	var hits []hit
	sess := NewSession(pat, func(rec Record) bool {
		hits = append(hits, hit{rec.Partname, rec.ByteOffset})
		return true
	})

	if err := sess.SearchFile(context.Background(), "archive.zip", bytes.NewReader(data)); err != nil {
		t.Fatalf("SearchFile: %v", err)
	}

	want := []hit{
		{"archive.zip:a.txt", 0},
		{"archive.zip:b.txt", 0},
	}
	if len(hits) != len(want) {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
	for i, w := range want {
		if hits[i] != w {
			t.Errorf("hits[%d] = %+v, want %+v", i, hits[i], w)
		}
	}
}

func TestSessionSearchFileHonorsCancellation(t *testing.T) {
	pat, err := Compile("foo", DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	sess := NewSession(pat, func(Record) bool { return true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sess.SearchFile(ctx, "plain.txt", bytes.NewReader([]byte("foo bar foo")))
	if err == nil {
		t.Error("expected an error from a pre-cancelled context")
	}
}
