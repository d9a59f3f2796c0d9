package decomp

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"
)

func TestDetectGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("hello gzip"))
	zw.Close()

	if kind := Detect(buf.Bytes()); kind != Gzip {
		t.Errorf("Detect(gzip stream) = %v, want Gzip", kind)
	}
}

func TestDetectNone(t *testing.T) {
	if kind := Detect([]byte("plain text, not compressed")); kind != None {
		t.Errorf("Detect(plain text) = %v, want None", kind)
	}
}

func TestNewReaderGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("hello gzip round trip"))
	zw.Close()

	rc, err := NewReader(Gzip, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello gzip round trip" {
		t.Errorf("got %q, want %q", got, "hello gzip round trip")
	}
}

func TestNewReaderNoneIsPassthrough(t *testing.T) {
	rc, err := NewReader(None, bytes.NewReader([]byte("raw bytes")))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, _ := io.ReadAll(rc)
	if string(got) != "raw bytes" {
		t.Errorf("got %q, want %q", got, "raw bytes")
	}
}

func TestWorkerSingleStreamPart(t *testing.T) {
	w := NewWorker(bytes.NewReader([]byte("plain stream contents")), None, nil)
	part, err := w.Start("file.txt")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if part.Name != "file.txt" {
		t.Errorf("part.Name = %q, want %q", part.Name, "file.txt")
	}
	got, err := io.ReadAll(part.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "plain stream contents" {
		t.Errorf("got %q, want %q", got, "plain stream contents")
	}
	if _, err := w.OpenNext(); err != io.EOF {
		t.Errorf("OpenNext() on single-part stream err = %v, want io.EOF", err)
	}
}

func TestChainOpenNonCompressed(t *testing.T) {
	c, err := Open("plain.txt", bytes.NewReader([]byte("uncompressed data")), DefaultConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	part, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	got, _ := io.ReadAll(part.Body)
	if string(got) != "uncompressed data" {
		t.Errorf("got %q, want %q", got, "uncompressed data")
	}
}
