package match

import (
	"bufio"
	"io"
	"os"
	"sort"

	"github.com/coregx/reflexgrep/store"
)

// Index wraps a `._UG#_Store` sidecar file (spec §6), letting repeat
// searches over an unchanged tree skip files whose content hash bitmap
// hasn't moved since the last recorded run — store is otherwise never
// reached outside its own package: Session.SearchPath reaches
// store.ReadAll through ShouldSkip, and store.Encode is reached only
// through Flush.
type Index struct {
	// Path is the sidecar file's location, conventionally a
	// "._UG#_Store" file next to the tree root being searched.
	Path string

	// LogSize sets the hash bitmap size (1<<LogSize buckets), matching
	// the header's logsize field (spec §6: "logsize|flags; low 5 bits =
	// logsize (0..16)").
	LogSize uint8

	records map[string]store.Record
	loaded  bool
}

// NewIndex returns an Index backed by the store file at path, using a
// 1024-bucket hash bitmap per entry.
func NewIndex(path string) *Index {
	return &Index{Path: path, LogSize: 10}
}

func (ix *Index) load() error {
	if ix.loaded {
		return nil
	}
	ix.records = map[string]store.Record{}
	f, err := os.Open(ix.Path)
	if err != nil {
		if os.IsNotExist(err) {
			ix.loaded = true
			return nil
		}
		return err
	}
	defer f.Close()
	recs, err := store.ReadAll(f)
	if err != nil {
		return err
	}
	for _, r := range recs {
		ix.records[r.Basename] = r
	}
	ix.loaded = true
	return nil
}

// ShouldSkip reports whether pathname's content bitmap is identical to
// the bitmap last recorded for it (loaded from Path or set by an earlier
// ShouldSkip call), recording the freshly computed bitmap either way. A path seen for the first time
// is never skipped.
func (ix *Index) ShouldSkip(pathname string, r io.Reader) (bool, error) {
	if err := ix.load(); err != nil {
		return false, err
	}
	bits, err := bigramBitmap(r, ix.LogSize)
	if err != nil {
		return false, err
	}
	rec := store.Record{Accuracy: '4', LogSize: ix.LogSize, Basename: pathname, Hashes: bits}
	prev, seen := ix.records[pathname]
	ix.records[pathname] = rec
	if !seen {
		return false, nil
	}
	return equalBytes(prev.Hashes, bits), nil
}

// Flush writes the current in-memory records back to Path, preceded by
// the store magic, per spec §6's "records are contiguous with no
// separators. A 4-byte magic precedes the first record" layout. Records
// are written sorted by basename, so an unchanged record set is written
// byte-identically; spec §6's uniqueness-by-basename invariant holds
// since ShouldSkip already collapses duplicates before Flush ever runs.
func (ix *Index) Flush() error {
	f, err := os.Create(ix.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := store.WriteMagic(f); err != nil {
		return err
	}
	names := make([]string, 0, len(ix.records))
	for name := range ix.records {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := store.Encode(f, ix.records[name]); err != nil {
			return err
		}
	}
	return nil
}

// bigramBitmap sets bit hash(prev, cur) for every adjacent byte pair in
// r, mirroring spec §6's hashes[2^logsize] sidecar field: a file whose
// bitmap is unchanged since the last run contains no new byte bigrams,
// so repeat searches can skip it.
func bigramBitmap(r io.Reader, logSize uint8) ([]byte, error) {
	bits := make([]byte, 1<<logSize)
	mask := uint32(1<<logSize) - 1

	br := bufio.NewReaderSize(r, 64*1024)
	prev, havePrev := byte(0), false
	buf := make([]byte, 32*1024)
	for {
		n, err := br.Read(buf)
		for i := 0; i < n; i++ {
			b := buf[i]
			if havePrev {
				h := (uint32(prev)*131 + uint32(b)) & mask
				bits[h] = 1
			}
			prev, havePrev = b, true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return bits, nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
