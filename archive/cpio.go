package archive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// cpio mode bits (S_IFMT family); only the file-type bits matter here.
const (
	cpioTypeMask = 0170000
	cpioTypeReg  = 0100000
	cpioTypeDir  = 0040000
)

const cpioTrailer = "TRAILER!!!"

// cpioCursor walks odc ("070707") or newc/newc+crc ("070701"/"070702")
// cpio streams, per spec §4.8's magic-byte detection list.
type cpioCursor struct {
	r    io.Reader
	br   *bufio.Reader
	done bool
}

func (c *cpioCursor) ensure() {
	if c.br == nil {
		c.br = bufio.NewReaderSize(c.r, 4096)
	}
}

func (c *cpioCursor) Next() (string, io.Reader, error) {
	c.ensure()
	for {
		if c.done {
			return "", nil, ErrEndOfArchive
		}
		magic, err := peekN(c.br, 6)
		if err != nil {
			return "", nil, err
		}
		switch string(magic) {
		case "070707":
			return c.nextODC()
		case "070701", "070702":
			return c.nextNewc()
		default:
			return "", nil, fmt.Errorf("archive: unrecognized cpio magic %q", magic)
		}
	}
}

func peekN(br *bufio.Reader, n int) ([]byte, error) {
	b, err := br.Peek(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func readExact(br *bufio.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(br, buf)
	return buf, err
}

// nextODC parses one "070707" (odc, POD format) header: fixed-width
// octal ASCII fields, no padding between sections.
func (c *cpioCursor) nextODC() (string, io.Reader, error) {
	for {
		hdr, err := readExact(c.br, 76)
		if err != nil {
			return "", nil, err
		}
		mode := parseOctal(hdr[18:24])
		namesize := parseOctal(hdr[59:65])
		filesize := parseOctal(hdr[65:76])

		nameBuf, err := readExact(c.br, int(namesize))
		if err != nil {
			return "", nil, err
		}
		name := strings.TrimRight(string(nameBuf), "\x00")

		if name == cpioTrailer {
			c.done = true
			return "", nil, ErrEndOfArchive
		}

		body := io.LimitReader(c.br, int64(filesize))
		if mode&cpioTypeMask != cpioTypeReg {
			io.Copy(io.Discard, body)
			continue
		}
		return name, body, nil
	}
}

// nextNewc parses one "070701"/"070702" (newc, SVR4 ± CRC) header:
// fixed-width hex ASCII fields, header+name padded to 4 bytes, body
// padded to 4 bytes.
func (c *cpioCursor) nextNewc() (string, io.Reader, error) {
	for {
		hdr, err := readExact(c.br, 110)
		if err != nil {
			return "", nil, err
		}
		mode := parseHex(hdr[14:22])
		filesize := parseHex(hdr[54:62])
		namesize := parseHex(hdr[94:102])

		nameBuf, err := readExact(c.br, int(namesize))
		if err != nil {
			return "", nil, err
		}
		name := strings.TrimRight(string(nameBuf), "\x00")
		if pad := (4 - (110+int(namesize))%4) % 4; pad > 0 {
			if _, err := readExact(c.br, pad); err != nil {
				return "", nil, err
			}
		}

		if name == cpioTrailer {
			c.done = true
			return "", nil, ErrEndOfArchive
		}

		body := io.LimitReader(c.br, int64(filesize))
		if mode&cpioTypeMask != cpioTypeReg {
			io.Copy(io.Discard, body)
			c.skipBodyPad(int64(filesize))
			continue
		}
		return name, &paddedBody{r: body, br: c.br, pad: (4 - int(filesize)%4) % 4}, nil
	}
}

func (c *cpioCursor) skipBodyPad(filesize int64) {
	if pad := (4 - int(filesize)%4) % 4; pad > 0 {
		readExact(c.br, pad)
	}
}

// paddedBody drains a newc entry's 4-byte body padding once the caller has
// fully read the entry, so the next header starts aligned.
type paddedBody struct {
	r      io.Reader
	br     *bufio.Reader
	pad    int
	padded bool
}

func (p *paddedBody) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if err == io.EOF && !p.padded {
		p.padded = true
		if p.pad > 0 {
			readExact(p.br, p.pad)
		}
	}
	return n, err
}

func parseOctal(b []byte) uint64 {
	n, _ := strconv.ParseUint(strings.TrimSpace(string(b)), 8, 64)
	return n
}

func parseHex(b []byte) uint64 {
	n, _ := strconv.ParseUint(string(b), 16, 64)
	return n
}
