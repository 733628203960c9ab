// Package encode serializes a composited surface into ANSI escape
// sequences and half-block glyphs.
//
// Two vertically adjacent pixels become one terminal cell: the even row is
// the foreground of an upper-half-block glyph, the odd row its background.
// Escape format is the 24-bit SGR wire contract real terminals expect:
// ESC[38;2;R;G;Bm for foreground, ESC[48;2;R;G;Bm for background.
package encode

import (
	"bytes"
	"strconv"

	"pixelterm/internal/surface"
)

const (
	sgrFg = "\x1b[38;2;"
	sgrBg = "\x1b[48;2;"
	reset = "\x1b[0m"

	upperHalf = "▀" // ▀ top pixel as foreground
	lowerHalf = "▄" // ▄ bottom pixel as foreground, top left default
)

// Encoder turns surfaces into printable byte streams. It keeps its output
// buffer and numeric scratch between calls, so a warmed-up encoder
// allocates nothing per frame. The slice returned by Encode is only valid
// until the next call.
type Encoder struct {
	buf bytes.Buffer
	num []byte

	fg, bg         surface.RGB
	haveFg, haveBg bool
}

// New returns an encoder with a pre-sized output buffer.
func New() *Encoder {
	e := &Encoder{num: make([]byte, 0, 16)}
	e.buf.Grow(16384)
	return e
}

// Encode serializes the surface. Rows are consumed in pairs; for an odd
// height the final unpaired row is emitted foreground-only over the
// terminal's default background. Every cell row ends with an explicit
// reset so the output never leaks color state.
func (e *Encoder) Encode(s *surface.Surface) []byte {
	e.buf.Reset()
	e.haveFg = false
	e.haveBg = false

	y := 0
	for ; y+1 < s.H; y += 2 {
		top := y * s.W
		for x := 0; x < s.W; x++ {
			e.cell(s, top+x, top+s.W+x)
		}
		e.endRow()
	}
	if y < s.H {
		top := y * s.W
		for x := 0; x < s.W; x++ {
			e.halfCell(s, top+x, upperHalf)
		}
		e.endRow()
	}
	return e.buf.Bytes()
}

// cell emits one glyph for the pixel pair at indices ti (top) and bi
// (bottom). Pixels whose shadow is Empty render as terminal default: both
// empty gives a plain space, a single drawn pixel gives a half block with
// only the foreground set.
func (e *Encoder) cell(s *surface.Surface, ti, bi int) {
	topSet := s.Shadow[ti] != surface.Empty
	botSet := s.Shadow[bi] != surface.Empty
	switch {
	case topSet && botSet:
		e.setFg(s.Color[ti])
		e.setBg(s.Color[bi])
		e.buf.WriteString(upperHalf)
	case topSet:
		e.halfCell(s, ti, upperHalf)
	case botSet:
		e.halfCell(s, bi, lowerHalf)
	default:
		e.clearBg()
		e.buf.WriteByte(' ')
	}
}

// halfCell emits a single drawn pixel against the default background.
func (e *Encoder) halfCell(s *surface.Surface, i int, glyph string) {
	if s.Shadow[i] == surface.Empty {
		e.clearBg()
		e.buf.WriteByte(' ')
		return
	}
	e.clearBg()
	e.setFg(s.Color[i])
	e.buf.WriteString(glyph)
}

func (e *Encoder) endRow() {
	e.buf.WriteString(reset)
	e.buf.WriteByte('\n')
	e.haveFg = false
	e.haveBg = false
}

// clearBg drops SGR state when a background escape is active, so the
// terminal's default background shows through. A lone foreground escape is
// harmless for default-background cells and does not force a reset.
func (e *Encoder) clearBg() {
	if !e.haveBg {
		return
	}
	e.buf.WriteString(reset)
	e.haveFg = false
	e.haveBg = false
}

// setFg emits a foreground escape unless the color is already active.
// Elision is the dominant size win: every unelided cell costs ~43 bytes.
func (e *Encoder) setFg(c surface.RGB) {
	if e.haveFg && c == e.fg {
		return
	}
	e.buf.WriteString(sgrFg)
	e.writeRGB(c)
	e.fg = c
	e.haveFg = true
}

func (e *Encoder) setBg(c surface.RGB) {
	if e.haveBg && c == e.bg {
		return
	}
	e.buf.WriteString(sgrBg)
	e.writeRGB(c)
	e.bg = c
	e.haveBg = true
}

// writeRGB appends "R;G;Bm" using the held scratch slice; strconv.Itoa
// would allocate for components above 99.
func (e *Encoder) writeRGB(c surface.RGB) {
	n := strconv.AppendUint(e.num[:0], uint64(c.R), 10)
	n = append(n, ';')
	n = strconv.AppendUint(n, uint64(c.G), 10)
	n = append(n, ';')
	n = strconv.AppendUint(n, uint64(c.B), 10)
	n = append(n, 'm')
	e.num = n
	e.buf.Write(n)
}
