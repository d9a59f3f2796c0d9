// Package archive implements the container-walking half of spec §4.8:
// recognizing tar/cpio/zip containers by magic bytes and iterating their
// regular-file entries as (name, io.Reader) pairs.
//
// stdlib archive/tar and archive/zip are used for tar and zip, since no
// example repo in the retrieval pack implements either container format
// (see DESIGN.md); cpio is hand-rolled for the same reason.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
)

// Kind identifies a recognized archive container format.
type Kind int

const (
	Unknown Kind = iota
	Tar
	Cpio
	Zip
)

// ErrEndOfArchive is returned by Cursor.Next once every regular-file entry
// has been yielded.
var ErrEndOfArchive = errors.New("archive: end of archive")

// Detect inspects the first block of a stream and reports the container
// Kind it indicates, per spec §4.8's magic-byte rules.
func Detect(lead []byte) (Kind, bool) {
	if bytes.HasPrefix(lead, []byte("PK\x03\x04")) {
		return Zip, true
	}
	if len(lead) > 262 && (bytes.Equal(lead[257:263], []byte("ustar\x00")) || bytes.Equal(lead[257:263], []byte("ustar "))) {
		return Tar, true
	}
	if len(lead) >= 6 {
		switch string(lead[:6]) {
		case "070707", "070701", "070702":
			return Cpio, true
		}
	}
	return Unknown, false
}

// Cursor yields one archive's regular-file entries in traversal order.
type Cursor interface {
	// Next returns the next regular-file entry's name and contents, or
	// ErrEndOfArchive when the archive is exhausted. Directory entries
	// are skipped transparently.
	Next() (name string, body io.Reader, err error)
}

// Walk returns a Cursor over r for the given container Kind.
func Walk(r io.Reader, kind Kind) Cursor {
	switch kind {
	case Tar:
		return &tarCursor{tr: tar.NewReader(r)}
	case Zip:
		return newZipCursor(r)
	case Cpio:
		return &cpioCursor{r: r}
	default:
		return &emptyCursor{}
	}
}

type emptyCursor struct{}

func (emptyCursor) Next() (string, io.Reader, error) { return "", nil, ErrEndOfArchive }
