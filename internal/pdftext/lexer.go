// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokName
	tokKeyword
	tokArrayStart
	tokArrayEnd
	tokDictStart
	tokDictEnd
)

type token struct {
	kind tokenKind
	num  float64
	str  []byte // decoded string bytes, name or keyword text
}

// lexer splits a page content stream into PDF tokens. It is lenient:
// malformed input never fails, it only yields fewer useful tokens.
type lexer struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) next() token {
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return token{kind: tokEOF}
		}
		c := l.data[l.pos]
		switch c {
		case '%':
			l.skipComment()
			continue
		case '(':
			l.pos++
			return token{kind: tokString, str: l.literalString()}
		case '<':
			if l.peek(1) == '<' {
				l.pos += 2
				return token{kind: tokDictStart}
			}
			l.pos++
			return token{kind: tokString, str: l.hexString()}
		case '>':
			l.pos++
			if l.peek(0) == '>' {
				l.pos++
				return token{kind: tokDictEnd}
			}
			continue
		case '[':
			l.pos++
			return token{kind: tokArrayStart}
		case ']':
			l.pos++
			return token{kind: tokArrayEnd}
		case '{', '}', ')':
			l.pos++
			continue
		case '/':
			l.pos++
			return token{kind: tokName, str: l.regular()}
		}

		word := l.regular()
		if len(word) == 0 {
			l.pos++
			continue
		}
		if looksNumeric(word[0]) {
			if f, err := strconv.ParseFloat(string(word), 64); err == nil {
				return token{kind: tokNumber, num: f}
			}
		}
		return token{kind: tokKeyword, str: word}
	}
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
}

func (l *lexer) skipComment() {
	for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
		l.pos++
	}
}

func (l *lexer) regular() []byte {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		l.pos++
	}
	return l.data[start:l.pos]
}

func looksNumeric(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

// literalString reads a (...) string after the opening parenthesis,
// honouring nesting and backslash escapes.
func (l *lexer) literalString() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out
			}
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// Line continuation; swallow an optional LF.
				if l.peek(0) == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data); i++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// hexString reads a <...> string after the opening angle bracket.
func (l *lexer) hexString() []byte {
	end := bytes.IndexByte(l.data[l.pos:], '>')
	var raw []byte
	if end < 0 {
		raw = l.data[l.pos:]
		l.pos = len(l.data)
	} else {
		raw = l.data[l.pos : l.pos+end]
		l.pos += end + 1
	}

	out := make([]byte, 0, len(raw)/2+1)
	var hi byte
	half := false
	for _, c := range raw {
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if !half {
			hi = v
			half = true
			continue
		}
		out = append(out, hi<<4|v)
		half = false
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage advances past inline image data that follows an ID
// operator, stopping after the terminating EI keyword.
func (l *lexer) skipInlineImage() {
	// A single whitespace byte separates ID from the data.
	if l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isWhitespace(l.data[i-1])
		after := i+2 >= len(l.data) || isWhitespace(l.data[i+2]) || isDelimiter(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}
