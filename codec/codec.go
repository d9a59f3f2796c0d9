// Package codec implements the Codec component of spec §2: UTF-8 ↔
// codepoint conversion, BOM-based encoding detection, and legacy code-page
// transcoding to UTF-8.
//
// Grounded on internal/conv/conv.go's narrowing-conversion style (bounds
// checks before truncation, panic on programmer error) for the rune/byte
// plumbing, and on golang.org/x/text/encoding's charmap/unicode tables for
// the legacy code pages spec §6 names.
package codec

import (
	"bytes"
	"fmt"

	"github.com/coregx/reflexgrep/internal/conv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies one of the character encodings spec §6 says Input
// must recognize.
type Encoding int

const (
	Plain Encoding = iota // ASCII/UTF-8 without BOM
	UTF8
	UTF16BE
	UTF16LE
	UTF32BE
	UTF32LE
	ISO88591
	ISO88592
	ISO88593
	ISO88594
	ISO88595
	ISO88596
	ISO88597
	ISO88598
	ISO88599
	ISO885910
	ISO885911
	// ISO-8859-12 does not exist; spec.md explicitly omits it.
	ISO885913
	ISO885914
	ISO885915
	ISO885916
	CP437
	CP850
	CP858
	MacRoman
	CP1250
	CP1251
	CP1252
	CP1253
	CP1254
	CP1255
	CP1256
	CP1257
	CP1258
	KOI8R
	KOI8U
	KOI8RU
	EBCDIC
	Custom
)

// bomEntry is one recognized byte-order mark and the Encoding it selects.
type bomEntry struct {
	mark []byte
	enc  Encoding
}

// bomTable is checked longest-prefix-first, matching spec §6's "UTF-8/16BE/
// 16LE/32BE/32LE with BOM detection" list.
var bomTable = []bomEntry{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, UTF32BE},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, UTF32LE},
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFE, 0xFF}, UTF16BE},
	{[]byte{0xFF, 0xFE}, UTF16LE},
}

// DetectBOM inspects the leading bytes of data and returns the encoding a
// byte-order mark selects, plus the number of bytes the mark occupies. It
// returns (Plain, 0) when no known mark is present.
func DetectBOM(data []byte) (Encoding, int) {
	for _, e := range bomTable {
		if bytes.HasPrefix(data, e.mark) {
			return e.enc, len(e.mark)
		}
	}
	return Plain, 0
}

// Decoder transcodes a source encoding to UTF-8.
type Decoder struct {
	enc      Encoding
	xenc     encoding.Encoding // non-nil for x/text-table-backed encodings
	custom   *[256]rune        // non-nil only for Custom
	macCRLF  bool
}

// charmapTable maps Encoding values backed by golang.org/x/text/encoding/
// charmap's single-byte tables.
var charmapTable = map[Encoding]encoding.Encoding{
	ISO88591:  charmap.ISO8859_1,
	ISO88592:  charmap.ISO8859_2,
	ISO88593:  charmap.ISO8859_3,
	ISO88594:  charmap.ISO8859_4,
	ISO88595:  charmap.ISO8859_5,
	ISO88596:  charmap.ISO8859_6,
	ISO88597:  charmap.ISO8859_7,
	ISO88598:  charmap.ISO8859_8,
	ISO88599:  charmap.ISO8859_9,
	ISO885910: charmap.ISO8859_10,
	ISO885911: charmap.Windows874, // closest available Thai-range table
	ISO885913: charmap.ISO8859_13,
	ISO885914: charmap.ISO8859_14,
	ISO885915: charmap.ISO8859_15,
	ISO885916: charmap.ISO8859_16,
	CP437:     charmap.CodePage437,
	CP850:     charmap.CodePage850,
	CP858:     charmap.CodePage858,
	MacRoman:  charmap.Macintosh,
	CP1250:    charmap.Windows1250,
	CP1251:    charmap.Windows1251,
	CP1252:    charmap.Windows1252,
	CP1253:    charmap.Windows1253,
	CP1254:    charmap.Windows1254,
	CP1255:    charmap.Windows1255,
	CP1256:    charmap.Windows1256,
	CP1257:    charmap.Windows1257,
	CP1258:    charmap.Windows1258,
	KOI8R:     charmap.KOI8R,
	KOI8U:     charmap.KOI8U,
	KOI8RU:    charmap.KOI8U, // x/text carries no distinct KOI8-RU table
	EBCDIC:    charmap.CodePage037,
}

// NewDecoder builds a Decoder for enc. custom is consulted only when enc is
// Custom, per spec §6's "caller-supplied custom 256-entry table of 16-bit
// target code points".
func NewDecoder(enc Encoding, custom *[256]rune) (*Decoder, error) {
	switch enc {
	case Plain, UTF8:
		return &Decoder{enc: enc}, nil
	case UTF16BE:
		return &Decoder{enc: enc, xenc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}, nil
	case UTF16LE:
		return &Decoder{enc: enc, xenc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}, nil
	case UTF32BE, UTF32LE:
		return &Decoder{enc: enc}, nil // handled directly; x/text has no UTF-32 codec
	case Custom:
		if custom == nil {
			return nil, fmt.Errorf("codec: Custom encoding requires a 256-entry table")
		}
		return &Decoder{enc: enc, custom: custom}, nil
	default:
		xenc, ok := charmapTable[enc]
		if !ok {
			return nil, fmt.Errorf("codec: unrecognized encoding %d", enc)
		}
		return &Decoder{enc: enc, xenc: xenc, macCRLF: enc == MacRoman}, nil
	}
}

// Decode transcodes src to UTF-8, returning the UTF-8 bytes.
func (d *Decoder) Decode(src []byte) ([]byte, error) {
	switch d.enc {
	case Plain, UTF8:
		return src, nil
	case UTF32BE:
		return decodeUTF32(src, true)
	case UTF32LE:
		return decodeUTF32(src, false)
	case Custom:
		return decodeCustom(src, d.custom), nil
	default:
		out, err := d.xenc.NewDecoder().Bytes(src)
		if err != nil {
			return nil, &DecodeError{Enc: d.enc, Err: err}
		}
		if d.macCRLF {
			out = bytes.ReplaceAll(out, []byte{'\r'}, []byte{'\n'})
		}
		return out, nil
	}
}

func decodeUTF32(src []byte, bigEndian bool) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("codec: UTF-32 input length %d not a multiple of 4", len(src))
	}
	var out []byte
	for i := 0; i < len(src); i += 4 {
		var cp uint32
		if bigEndian {
			cp = uint32(src[i])<<24 | uint32(src[i+1])<<16 | uint32(src[i+2])<<8 | uint32(src[i+3])
		} else {
			cp = uint32(src[i+3])<<24 | uint32(src[i+2])<<16 | uint32(src[i+1])<<8 | uint32(src[i])
		}
		out = appendRune(out, rune(conv.Uint64ToUint32(uint64(cp))))
	}
	return out, nil
}

func decodeCustom(src []byte, table *[256]rune) []byte {
	var out []byte
	for _, b := range src {
		out = appendRune(out, table[b])
	}
	return out
}

func appendRune(dst []byte, r rune) []byte {
	var buf [4]byte
	n := encodeRuneUTF8(buf[:], r)
	return append(dst, buf[:n]...)
}

// encodeRuneUTF8 is a small local UTF-8 encoder kept separate from
// utf8.EncodeRune only so invalid code points fall back to U+FFFD instead
// of silently truncating, matching how legacy code-page tables map unused
// slots to the replacement character.
func encodeRuneUTF8(buf []byte, r rune) int {
	if r < 0 || r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		r = 0xFFFD
	}
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = 0xC0 | byte(r>>6)
		buf[1] = 0x80 | byte(r&0x3F)
		return 2
	case r < 0x10000:
		buf[0] = 0xE0 | byte(r>>12)
		buf[1] = 0x80 | byte((r>>6)&0x3F)
		buf[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		buf[0] = 0xF0 | byte(r>>18)
		buf[1] = 0x80 | byte((r>>12)&0x3F)
		buf[2] = 0x80 | byte((r>>6)&0x3F)
		buf[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}
