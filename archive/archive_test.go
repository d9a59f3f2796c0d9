package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestDetectZip(t *testing.T) {
	kind, ok := Detect([]byte("PK\x03\x04rest of header"))
	if !ok || kind != Zip {
		t.Errorf("Detect zip magic = (%v, %v), want (Zip, true)", kind, ok)
	}
}

func TestDetectCpio(t *testing.T) {
	for _, magic := range []string{"070707", "070701", "070702"} {
		kind, ok := Detect([]byte(magic))
		if !ok || kind != Cpio {
			t.Errorf("Detect(%q) = (%v, %v), want (Cpio, true)", magic, kind, ok)
		}
	}
}

func TestDetectUnknown(t *testing.T) {
	if kind, ok := Detect([]byte("just plain text")); ok {
		t.Errorf("Detect(plain text) = (%v, %v), want ok=false", kind, ok)
	}
}

func TestTarCursorSkipsDirectoriesAndYieldsFiles(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: "dir/", Typeflag: tar.TypeDir}); err != nil {
		t.Fatal(err)
	}
	body := []byte("hello tar")
	if err := tw.WriteHeader(&tar.Header{Name: "dir/file.txt", Typeflag: tar.TypeReg, Size: int64(len(body))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatal(err)
	}
	tw.Close()

	c := Walk(&buf, Tar)
	name, r, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if name != "dir/file.txt" {
		t.Errorf("name = %q, want %q", name, "dir/file.txt")
	}
	got, _ := io.ReadAll(r)
	if !bytes.Equal(got, body) {
		t.Errorf("body = %q, want %q", got, body)
	}
	if _, _, err := c.Next(); err != ErrEndOfArchive {
		t.Errorf("second Next() err = %v, want ErrEndOfArchive", err)
	}
}

func TestZipCursorYieldsFiles(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("a/b.txt")
	if err != nil {
		t.Fatal(err)
	}
	body := []byte("hello zip")
	w.Write(body)
	zw.Close()

	c := Walk(bytes.NewReader(buf.Bytes()), Zip)
	name, r, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if name != "a/b.txt" {
		t.Errorf("name = %q, want %q", name, "a/b.txt")
	}
	got, _ := io.ReadAll(r)
	if !bytes.Equal(got, body) {
		t.Errorf("body = %q, want %q", got, body)
	}
}

func buildNewcEntry(name string, body []byte) []byte {
	var buf bytes.Buffer
	writeNewcHeader(&buf, name, body)
	return buf.Bytes()
}

func writeNewcHeader(buf *bytes.Buffer, name string, body []byte) {
	header := make([]byte, 110)
	copy(header[0:6], "070701")
	hexField := func(off int, v uint64) {
		s := []byte("00000000")
		hex := []byte("0123456789abcdef")
		for i := 7; i >= 0; i-- {
			s[i] = hex[v&0xf]
			v >>= 4
		}
		copy(header[off:off+8], s)
	}
	hexField(14, uint64(cpioTypeReg|0644))
	hexField(54, uint64(len(body)))
	hexField(94, uint64(len(name)+1))
	buf.Write(header)
	buf.WriteString(name)
	buf.WriteByte(0)
	pad := (4 - (110+len(name)+1)%4) % 4
	buf.Write(make([]byte, pad))
	buf.Write(body)
	bodyPad := (4 - len(body)%4) % 4
	buf.Write(make([]byte, bodyPad))
}

func TestCpioNewcCursorYieldsFile(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(buildNewcEntry("file.txt", []byte("hello cpio")))
	trailer := make([]byte, 110)
	copy(trailer[0:6], "070701")
	hexField := func(b []byte, off int, v uint64) {
		s := []byte("00000000")
		hex := []byte("0123456789abcdef")
		for i := 7; i >= 0; i-- {
			s[i] = hex[v&0xf]
			v >>= 4
		}
		copy(b[off:off+8], s)
	}
	hexField(trailer, 94, uint64(len(cpioTrailer)+1))
	stream.Write(trailer)
	stream.WriteString(cpioTrailer)
	stream.WriteByte(0)
	pad := (4 - (110+len(cpioTrailer)+1)%4) % 4
	stream.Write(make([]byte, pad))

	c := Walk(&stream, Cpio)
	name, r, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if name != "file.txt" {
		t.Errorf("name = %q, want %q", name, "file.txt")
	}
	got, _ := io.ReadAll(r)
	if string(got) != "hello cpio" {
		t.Errorf("body = %q, want %q", got, "hello cpio")
	}
	if _, _, err := c.Next(); err != ErrEndOfArchive {
		t.Errorf("Next() after trailer err = %v, want ErrEndOfArchive", err)
	}
}
