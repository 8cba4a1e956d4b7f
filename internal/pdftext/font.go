// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"strings"
	"unicode/utf16"
)

// Font describes how the strings shown with one font resource map to text.
// The zero value and a nil *Font both decode strings with Decode.
type Font struct {
	codeBytes int
	toUnicode *CMap
}

// Fonts maps font resource names (without the leading slash) to fonts, as
// found in a page's /Resources /Font dictionary.
type Fonts map[string]*Font

// NewFont describes a font resource. composite is true for Type0 fonts,
// whose character codes are two bytes wide unless the ToUnicode codespace
// says otherwise. toUnicode is the decoded ToUnicode stream, or nil.
func NewFont(composite bool, toUnicode []byte) *Font {
	f := &Font{codeBytes: 1}
	if composite {
		f.codeBytes = 2
	}
	if len(toUnicode) > 0 {
		f.toUnicode = ParseCMap(toUnicode)
		if composite && f.toUnicode.codeBytes > 0 {
			f.codeBytes = f.toUnicode.codeBytes
		}
	}
	return f
}

// decode returns the text of raw and the number of character codes in it.
func (f *Font) decode(raw []byte) (string, int) {
	if f == nil || (f.toUnicode == nil && f.codeBytes == 1) {
		text := Decode(raw)
		return text, len([]rune(text))
	}

	n := f.codeBytes
	var b strings.Builder
	codes := 0
	for i := 0; i+n <= len(raw); i += n {
		codes++
		var code uint32
		for _, c := range raw[i : i+n] {
			code = code<<8 | uint32(c)
		}
		if s, ok := f.toUnicode.Lookup(code); ok {
			b.WriteString(s)
			continue
		}
		if n == 1 {
			b.WriteString(Decode(raw[i : i+1]))
		}
	}
	return clean(b.String()), codes
}

// CMap maps character codes to Unicode text. It holds the bfchar and
// bfrange entries of a ToUnicode stream.
type CMap struct {
	codeBytes int // width of the first codespace range, 0 when absent
	chars     map[uint32]string
	ranges    []cmapRange
}

type cmapRange struct {
	lo, hi uint32
	base   []uint16 // UTF-16 start value; the last unit counts up
	list   []string // explicit destinations, one per code
}

// ParseCMap reads the codespace, bfchar and bfrange sections of a CMap
// stream. Other CMap operators are ignored and malformed entries are
// skipped.
func ParseCMap(data []byte) *CMap {
	c := &CMap{chars: make(map[uint32]string)}
	lx := &lexer{data: data}
	for {
		tok := lx.next()
		if tok.kind == tokEOF {
			return c
		}
		if tok.kind != tokKeyword {
			continue
		}
		switch string(tok.str) {
		case "begincodespacerange":
			c.readCodespace(lx)
		case "beginbfchar":
			c.readChars(lx)
		case "beginbfrange":
			c.readRanges(lx)
		}
	}
}

// Lookup returns the text mapped to code.
func (c *CMap) Lookup(code uint32) (string, bool) {
	if c == nil {
		return "", false
	}
	if s, ok := c.chars[code]; ok {
		return s, true
	}
	for _, r := range c.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		off := code - r.lo
		if r.list != nil {
			if int(off) < len(r.list) {
				return r.list[off], true
			}
			return "", false
		}
		if len(r.base) == 0 {
			return "", false
		}
		u := append([]uint16(nil), r.base...)
		u[len(u)-1] += uint16(off)
		return string(utf16.Decode(u)), true
	}
	return "", false
}

// section collects the tokens up to the end keyword, or EOF.
func section(lx *lexer, end string) []token {
	var toks []token
	for {
		tok := lx.next()
		if tok.kind == tokEOF || (tok.kind == tokKeyword && string(tok.str) == end) {
			return toks
		}
		toks = append(toks, tok)
	}
}

func (c *CMap) readCodespace(lx *lexer) {
	toks := section(lx, "endcodespacerange")
	if len(toks) >= 1 && toks[0].kind == tokString && c.codeBytes == 0 {
		c.codeBytes = len(toks[0].str)
	}
}

func (c *CMap) readChars(lx *lexer) {
	toks := section(lx, "endbfchar")
	for i := 0; i+1 < len(toks); i += 2 {
		src, dst := toks[i], toks[i+1]
		if src.kind != tokString || dst.kind != tokString {
			continue
		}
		c.chars[codeOf(src.str)] = string(utf16.Decode(units(dst.str)))
	}
}

func (c *CMap) readRanges(lx *lexer) {
	toks := section(lx, "endbfrange")
	for i := 0; i+2 < len(toks); {
		lo, hi := toks[i], toks[i+1]
		if lo.kind != tokString || hi.kind != tokString {
			i++
			continue
		}
		r := cmapRange{lo: codeOf(lo.str), hi: codeOf(hi.str)}
		i += 2

		switch toks[i].kind {
		case tokString:
			r.base = units(toks[i].str)
			i++
		case tokArrayStart:
			i++
			r.list = []string{}
			for i < len(toks) && toks[i].kind != tokArrayEnd {
				if toks[i].kind == tokString {
					r.list = append(r.list, string(utf16.Decode(units(toks[i].str))))
				}
				i++
			}
			i++
		default:
			i++
			continue
		}
		if r.hi >= r.lo {
			c.ranges = append(c.ranges, r)
		}
	}
}

func codeOf(b []byte) uint32 {
	var code uint32
	for _, c := range b {
		code = code<<8 | uint32(c)
	}
	return code
}

// units splits big-endian bytes into UTF-16 code units.
func units(b []byte) []uint16 {
	u := make([]uint16, 0, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		v := uint16(b[i]) << 8
		if i+1 < len(b) {
			v |= uint16(b[i+1])
		} else {
			v >>= 8
		}
		u = append(u, v)
	}
	return u
}
