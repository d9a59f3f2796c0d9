package archive

import (
	"archive/tar"
	"io"
)

// tarCursor walks a tar/ustar stream. archive/tar already folds GNU
// long-name records (typeflag 'L') and pax extended headers (typeflag 'x',
// including their "path=" attribute) into tar.Header.Name, so spec §4.8's
// "honours extended pax headers ... gnu long-name records" requirement is
// satisfied by the stdlib reader directly; this cursor only needs to skip
// non-regular entries.
type tarCursor struct {
	tr *tar.Reader
}

func (c *tarCursor) Next() (string, io.Reader, error) {
	for {
		hdr, err := c.tr.Next()
		if err == io.EOF {
			return "", nil, ErrEndOfArchive
		}
		if err != nil {
			return "", nil, err
		}
		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeRegA {
			continue
		}
		return hdr.Name, c.tr, nil
	}
}
