// Package decomp implements DecompChain from spec §4.8: transparent
// nesting of compressed containers up to zmax layers, one worker per
// stage, handed off through a pipe protocol gated by four condition
// variables (pipe_ready, pipe_close, pipe_zstream, part_ready).
//
// Grounded on WoozyMasta-lzo's decompress_reader.go/sliding_window_pool.go
// worker/reader shape, generalized from a single LZO stream to a chain of
// interchangeable codec stages.
package decomp

import (
	"bytes"
	"io"

	dsnetbzip2 "github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/woozymasta/lzo"
)

// Kind identifies a recognized single-stream compression codec (as
// distinct from an archive container format, which the archive package
// handles).
type Kind int

const (
	None Kind = iota
	Gzip
	Bzip2
	Xz
	Zstd
	Lzo
)

// magic entries are checked in table order against the stage's leading
// bytes (no prefix here is a prefix of another, so the order does not
// change the result), per spec §4.8's "Archive format detection is by
// magic bytes" approach generalized to compression codecs.
var magicTable = []struct {
	kind Kind
	pfx  []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Bzip2, []byte("BZh")},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{Lzo, []byte{0x89, 'L', 'Z', 'O', 0x00, '\r', '\n', 0x1a, '\n'}},
}

// Detect inspects the leading bytes of a stage's input and returns the
// compression Kind they indicate, or None when nothing matches (the bytes
// are passed through unchanged, or handed to the archive package if they
// match a container magic instead).
func Detect(lead []byte) Kind {
	for _, m := range magicTable {
		if bytes.HasPrefix(lead, m.pfx) {
			return m.kind
		}
	}
	return None
}

// NewReader wraps r with the decompressor for kind, exercising the
// domain-stack dependency each Kind names.
func NewReader(kind Kind, r io.Reader) (io.ReadCloser, error) {
	switch kind {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		return zr, nil
	case Bzip2:
		zr, err := dsnetbzip2.NewReader(r, nil)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		return io.NopCloser(zr), nil
	case Xz:
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		return io.NopCloser(zr), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		return zr.IOReadCloser(), nil
	case Lzo:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		data = bytes.TrimPrefix(data, []byte{0x89, 'L', 'Z', 'O', 0x00, '\r', '\n', 0x1a, '\n'})
		out, err := lzoDecompressGrow(data)
		if err != nil {
			return nil, &StageError{Kind: kind, Err: err}
		}
		return io.NopCloser(bytes.NewReader(out)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// lzoMaxOutGrow caps how many times lzoDecompressGrow doubles its output
// buffer before giving up, bounding memory use on corrupt/adversarial
// blocks.
const lzoMaxOutGrow = 24

// lzoDecompressGrow retries lzo.Decompress with a doubling output buffer,
// since the library requires the caller to pre-size the output
// (DecompressOptions.OutLen) and the DecompChain does not know a part's
// uncompressed size ahead of time.
func lzoDecompressGrow(data []byte) ([]byte, error) {
	outLen := len(data) * 3
	if outLen < 64 {
		outLen = 64
	}
	for i := 0; i < lzoMaxOutGrow; i++ {
		out, err := lzo.Decompress(data, &lzo.DecompressOptions{OutLen: outLen})
		if err == nil {
			return out, nil
		}
		if err != lzo.ErrOutputOverrun {
			return nil, err
		}
		outLen *= 2
	}
	return nil, lzo.ErrOutputOverrun
}
