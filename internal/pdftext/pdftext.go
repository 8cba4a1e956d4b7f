// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext recovers readable text from decoded PDF page content
// streams. It interprets the text-showing and text-positioning operators,
// tracks the text matrix to find line breaks, and groups lines into
// paragraphs by vertical spacing and font size.
//
// Strings shown with a font that has a ToUnicode CMap are decoded through
// it, with two-byte codes for composite (Type0) fonts. Other strings are
// decoded as UTF-16BE when they carry a byte order mark and as
// WinAnsiEncoding otherwise. Positions are taken in default user space, so
// content drawn under a flipped or scaled CTM lays out like unflipped text.
package pdftext

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Line is a run of text sharing one baseline.
type Line struct {
	Text string
	X, Y float64
	// Size is the effective font size in user space units.
	Size float64
}

// Paragraph is a block of consecutive lines.
type Paragraph struct {
	Text string
	Size float64
}

const (
	// kernSpace is the TJ displacement, in thousandths of an em, beyond
	// which an adjustment is read as a word break.
	kernSpace = 200

	// avgGlyphWidth approximates glyph advance in ems when widths are
	// unknown.
	avgGlyphWidth = 0.5
)

type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// translate returns the matrix pre-multiplied by a translation (tx, ty).
func (m matrix) translate(tx, ty float64) matrix {
	m[4] += tx*m[0] + ty*m[2]
	m[5] += tx*m[1] + ty*m[3]
	return m
}

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) scale() float64 {
	s := math.Hypot(m[2], m[3])
	if s == 0 {
		return 1
	}
	return s
}

type operand struct {
	tok token
	arr []token
}

// interpreter holds the text state while walking one content stream.
type interpreter struct {
	ctm      matrix
	saved    []matrix // q/Q stack of CTMs
	tm, tlm  matrix
	leading  float64
	fontSize float64
	fonts    Fonts
	font     *Font

	lines []Line
	cur   *strings.Builder
	line  Line
	endX  float64 // estimated x after the last shown glyph
	open  bool
}

// Extract returns the text lines shown by a decoded page content stream, in
// content order. fonts resolves the names given to Tf and may be nil.
func Extract(content []byte, fonts Fonts) []Line {
	lx := &lexer{data: content}
	in := &interpreter{ctm: identity, tm: identity, tlm: identity, fontSize: 1, fonts: fonts}

	var stack []operand
	arrayDepth := -1
	var array []token
	dictDepth := 0

	for {
		tok := lx.next()
		if tok.kind == tokEOF {
			break
		}

		if dictDepth > 0 {
			switch tok.kind {
			case tokDictStart:
				dictDepth++
			case tokDictEnd:
				dictDepth--
			}
			continue
		}

		if arrayDepth >= 0 {
			switch tok.kind {
			case tokArrayEnd:
				stack = append(stack, operand{arr: array})
				array = nil
				arrayDepth = -1
			case tokArrayStart, tokDictStart, tokDictEnd:
				// Nested structures do not occur in TJ arrays; skip them.
			default:
				array = append(array, tok)
			}
			continue
		}

		switch tok.kind {
		case tokArrayStart:
			arrayDepth = 0
			array = nil
		case tokDictStart:
			dictDepth = 1
		case tokKeyword:
			op := string(tok.str)
			switch op {
			case "true", "false", "null":
				stack = append(stack, operand{tok: tok})
				continue
			case "ID":
				lx.skipInlineImage()
			}
			in.apply(op, stack)
			stack = stack[:0]
		default:
			stack = append(stack, operand{tok: tok})
		}
	}
	in.flush()
	return in.lines
}

func nums(stack []operand, n int) ([]float64, bool) {
	if len(stack) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, o := range stack[len(stack)-n:] {
		if o.arr != nil || o.tok.kind != tokNumber {
			return nil, false
		}
		out[i] = o.tok.num
	}
	return out, true
}

func lastString(stack []operand) ([]byte, bool) {
	if len(stack) == 0 {
		return nil, false
	}
	o := stack[len(stack)-1]
	if o.arr != nil || o.tok.kind != tokString {
		return nil, false
	}
	return o.tok.str, true
}

func (in *interpreter) apply(op string, stack []operand) {
	switch op {
	case "q":
		in.saved = append(in.saved, in.ctm)
	case "Q":
		if n := len(in.saved); n > 0 {
			in.ctm = in.saved[n-1]
			in.saved = in.saved[:n-1]
		}
	case "cm":
		if v, ok := nums(stack, 6); ok {
			in.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(in.ctm)
		}
	case "BT":
		in.tm, in.tlm = identity, identity
	case "Tf":
		if len(stack) < 2 {
			return
		}
		name, size := stack[len(stack)-2], stack[len(stack)-1]
		if size.arr == nil && size.tok.kind == tokNumber {
			in.fontSize = size.tok.num
		}
		if name.arr == nil && name.tok.kind == tokName {
			in.font = in.fonts[string(name.tok.str)]
		}
	case "TL":
		if v, ok := nums(stack, 1); ok {
			in.leading = v[0]
		}
	case "Td":
		if v, ok := nums(stack, 2); ok {
			in.tlm = in.tlm.translate(v[0], v[1])
			in.tm = in.tlm
		}
	case "TD":
		if v, ok := nums(stack, 2); ok {
			in.leading = -v[1]
			in.tlm = in.tlm.translate(v[0], v[1])
			in.tm = in.tlm
		}
	case "Tm":
		if v, ok := nums(stack, 6); ok {
			in.tlm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			in.tm = in.tlm
		}
	case "T*":
		in.nextLine()
	case "Tj":
		if s, ok := lastString(stack); ok {
			in.show(s)
		}
	case "'":
		in.nextLine()
		if s, ok := lastString(stack); ok {
			in.show(s)
		}
	case "\"":
		in.nextLine()
		if s, ok := lastString(stack); ok {
			in.show(s)
		}
	case "TJ":
		if len(stack) == 0 || stack[len(stack)-1].arr == nil {
			return
		}
		for _, t := range stack[len(stack)-1].arr {
			switch t.kind {
			case tokString:
				in.show(t.str)
			case tokNumber:
				in.kern(t.num)
			}
		}
	}
}

func (in *interpreter) nextLine() {
	in.tlm = in.tlm.translate(0, -in.leading)
	in.tm = in.tlm
}

// device returns the text matrix in default user space.
func (in *interpreter) device() matrix {
	return in.tm.mul(in.ctm)
}

// size returns the effective font size in default user space.
func (in *interpreter) size() float64 {
	return math.Abs(in.fontSize) * in.device().scale()
}

// kern applies a TJ adjustment, given in thousandths of an em.
func (in *interpreter) kern(adj float64) {
	dx := -adj / 1000 * in.fontSize
	in.tm = in.tm.translate(dx, 0)
	if adj <= -kernSpace && in.open && in.cur.Len() > 0 {
		appendSpace(in.cur)
	}
	in.endX = in.device()[4]
}

func (in *interpreter) show(raw []byte) {
	text, codes := in.font.decode(raw)
	if text == "" {
		return
	}
	size := in.size()
	d := in.device()
	x, y := d[4], d[5]

	switch {
	case !in.open:
		in.start(x, y, size)
	case math.Abs(y-in.line.Y) > size*0.5:
		in.flush()
		in.start(x, y, size)
	case x-in.endX > size*0.3:
		appendSpace(in.cur)
	}
	in.cur.WriteString(text)
	if size > in.line.Size {
		in.line.Size = size
	}

	advance := float64(codes) * avgGlyphWidth * in.fontSize
	in.tm = in.tm.translate(advance, 0)
	in.endX = in.device()[4]
}

func (in *interpreter) start(x, y, size float64) {
	in.cur = &strings.Builder{}
	in.line = Line{X: x, Y: y, Size: size}
	in.open = true
}

func (in *interpreter) flush() {
	if !in.open {
		return
	}
	text := strings.TrimSpace(in.cur.String())
	if text != "" {
		in.line.Text = text
		in.lines = append(in.lines, in.line)
	}
	in.open = false
	in.cur = nil
}

func appendSpace(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, " ") {
		return
	}
	b.WriteByte(' ')
}

// Decode converts PDF string bytes to UTF-8 text. Control characters are
// dropped; tabs and line breaks become spaces.
func Decode(raw []byte) string {
	var s string
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		u := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			u = append(u, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		s = string(utf16.Decode(u))
	} else {
		b, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			b = raw
		}
		s = string(b)
	}
	return clean(s)
}

// clean drops control characters and turns tabs and line breaks into
// spaces.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case r < 0x20 || r == 0x7f || r == utf8.RuneError:
			return -1
		}
		return r
	}, s)
}

// Paragraphs groups lines into paragraphs. A new paragraph starts when the
// vertical gap exceeds paragraphGap line heights, when the text moves up the
// page (a new column or block), or when the font size changes noticeably.
func Paragraphs(lines []Line) []Paragraph {
	const (
		paragraphGap = 1.6
		sizeDelta    = 0.15
	)

	var out []Paragraph
	var b strings.Builder
	var size, lastY float64

	emit := func() {
		if b.Len() > 0 {
			out = append(out, Paragraph{Text: b.String(), Size: size})
		}
		b.Reset()
	}

	for i, ln := range lines {
		if i > 0 {
			gap := lastY - ln.Y
			height := math.Max(size, ln.Size)
			breakPara := gap <= 0 ||
				gap > height*paragraphGap ||
				math.Abs(ln.Size-size) > size*sizeDelta
			if breakPara {
				emit()
			}
		}

		if b.Len() == 0 {
			size = ln.Size
			b.WriteString(ln.Text)
		} else {
			joinLine(&b, ln.Text)
		}
		lastY = ln.Y
	}
	emit()
	return out
}

// joinLine appends text to a paragraph, rejoining words hyphenated across a
// line break.
func joinLine(b *strings.Builder, text string) {
	s := b.String()
	if strings.HasSuffix(s, "-") && len(s) > 1 {
		first, _ := utf8.DecodeRuneInString(text)
		prev, _ := utf8.DecodeLastRuneInString(s[:len(s)-1])
		if isLower(first) && isLetter(prev) {
			b.Reset()
			b.WriteString(s[:len(s)-1])
			b.WriteString(text)
			return
		}
	}
	b.WriteByte(' ')
	b.WriteString(text)
}

func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isLetter(r rune) bool { return isLower(r) || (r >= 'A' && r <= 'Z') }
