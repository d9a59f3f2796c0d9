package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
)

// infoZipUnicodePathID is the Info-ZIP Unicode Path extra field id (spec
// §4.8: "Info-ZIP Unicode Path extra fields (id 0x7075)").
const infoZipUnicodePathID = 0x7075

// zipCursor walks a zip stream. archive/zip requires io.ReaderAt, so the
// container is buffered fully before walking (zip central directories are
// trailer-based and cannot be streamed incrementally).
type zipCursor struct {
	zr   *zip.Reader
	i    int
	size int64
}

func newZipCursor(r io.Reader) Cursor {
	data, err := io.ReadAll(r)
	if err != nil {
		return &errCursor{err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &errCursor{err: err}
	}
	return &zipCursor{zr: zr, size: int64(len(data))}
}

func (c *zipCursor) Next() (string, io.Reader, error) {
	for c.i < len(c.zr.File) {
		f := c.zr.File[c.i]
		c.i++
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, err
		}
		name := f.Name
		if unicodeName, ok := parseUnicodePathExtra(f.Extra); ok {
			name = unicodeName
		}
		return name, rc, nil
	}
	return "", nil, ErrEndOfArchive
}

// parseUnicodePathExtra scans a zip entry's extra field for an Info-ZIP
// Unicode Path record and returns its UTF-8 name.
func parseUnicodePathExtra(extra []byte) (string, bool) {
	for len(extra) >= 4 {
		id := binary.LittleEndian.Uint16(extra[0:2])
		size := binary.LittleEndian.Uint16(extra[2:4])
		if int(size)+4 > len(extra) {
			return "", false
		}
		data := extra[4 : 4+size]
		if id == infoZipUnicodePathID && len(data) > 5 {
			// version(1) + crc32(4) + utf8 name
			return string(data[5:]), true
		}
		extra = extra[4+size:]
	}
	return "", false
}

type errCursor struct{ err error }

func (c *errCursor) Next() (string, io.Reader, error) { return "", nil, c.err }
