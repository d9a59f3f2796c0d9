package predictor

import "fmt"

// EncodeBlob serializes t into the predictor byte layout of spec §6. The
// bit, tap and PM tables are bit-inverted on disk so the zero buffer
// encodes "no match anywhere"; the literal prefix and the packed cbk/fst
// bitsets are written as they are.
func (t *Tables) EncodeBlob() []byte {
	var out []byte
	out = append(out, byte(t.Len))

	var bits byte
	if t.Min > 8 {
		bits |= 8
	} else {
		bits |= byte(t.Min) & 0x0f
	}
	if t.One {
		bits |= 1 << 4
	}
	if t.HasLookback {
		bits |= 1 << 5
	}
	bits |= 1 << 7 // has_tap_table always 1 in modern builds
	out = append(out, bits)

	if t.Len > 0 {
		out = append(out, t.Chr...)
	} else {
		out = append(out, invert(t.Bit[:])...)
		out = append(out, invert(t.Tap[:])...)
		if t.UsePMA {
			out = append(out, invert(t.PMA[:])...)
		} else {
			out = append(out, invert(t.PMH[:])...)
		}
	}

	if t.HasLookback {
		out = append(out, byte(t.Lbk), byte(t.Lbk>>8))
		out = append(out, byte(t.Lbm), byte(t.Lbm>>8))
		out = append(out, packBitset(t.Cbk[:])...)
		out = append(out, packBitset(t.Fst[:])...)
	}
	return out
}

func invert(b []uint8) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = ^v
	}
	return out
}

func packBitset(bools []bool) []byte {
	out := make([]byte, 32)
	for i, v := range bools {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBitset(data []byte) [256]bool {
	var out [256]bool
	for i := range out {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// DecodeBlob parses a predictor byte blob produced by EncodeBlob.
func DecodeBlob(data []byte) (*Tables, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("predictor: blob too short")
	}
	t := &Tables{}
	t.Len = int(data[0])
	bits := data[1]
	t.Min = int(bits & 0x0f)
	t.One = bits&(1<<4) != 0
	t.HasLookback = bits&(1<<5) != 0
	off := 2

	if t.Len > 0 {
		if off+t.Len > len(data) {
			return nil, fmt.Errorf("predictor: truncated literal prefix")
		}
		t.Chr = append([]byte(nil), data[off:off+t.Len]...)
		off += t.Len
	} else {
		if off+256 > len(data) {
			return nil, fmt.Errorf("predictor: truncated bit table")
		}
		copy(t.Bit[:], invert(data[off:off+256]))
		off += 256
		if off+BTAP > len(data) {
			return nil, fmt.Errorf("predictor: truncated tap table")
		}
		copy(t.Tap[:], invert(data[off:off+BTAP]))
		off += BTAP
		t.UsePMA = t.Min < 4
		if off+HashSize > len(data) {
			return nil, fmt.Errorf("predictor: truncated hash table")
		}
		if t.UsePMA {
			copy(t.PMA[:], invert(data[off:off+HashSize]))
		} else {
			copy(t.PMH[:], invert(data[off:off+HashSize]))
		}
		off += HashSize
	}

	if t.HasLookback {
		if off+4+64 > len(data) {
			return nil, fmt.Errorf("predictor: truncated lookback section")
		}
		t.Lbk = int(data[off]) | int(data[off+1])<<8
		t.Lbm = int(data[off+2]) | int(data[off+3])<<8
		off += 4
		t.Cbk = unpackBitset(data[off : off+32])
		off += 32
		t.Fst = unpackBitset(data[off : off+32])
		off += 32
	}
	return t, nil
}
