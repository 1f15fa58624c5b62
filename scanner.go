// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonls

import (
	"unicode/utf8"

	"github.com/jsonls-dev/jsonls/internal/escape"

	"go4.org/mem"
)

// Token is the type of a lexical token produced by the Scanner.
//
// Numeric literals are reported as a single Number kind: whether a
// literal denotes an integer is a property of its lexeme (absence of
// a decimal point), and that determination belongs to the parser and
// the AST (ast.Number.IsInteger), not to the scanner.
type Token byte

// The token kinds produced by Next.
const (
	Invalid Token = iota
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	Colon
	Comma
	String
	Number
	True
	False
	Null
	LineComment
	BlockComment
	Trivia
	LineBreak
	Unknown
	EOF
)

var tokenNames = [...]string{
	Invalid:      "invalid",
	OpenBrace:    `"{"`,
	CloseBrace:   `"}"`,
	OpenBracket:  `"["`,
	CloseBracket: `"]"`,
	Colon:        `":"`,
	Comma:        `","`,
	String:       "string",
	Number:       "number",
	True:         "true",
	False:        "false",
	Null:         "null",
	LineComment:  "line comment",
	BlockComment: "block comment",
	Trivia:       "trivia",
	LineBreak:    "line break",
	Unknown:      "unknown",
	EOF:          "end of input",
}

func (t Token) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return "invalid"
}

// ScanError classifies a lexical problem found while scanning a single
// token. The zero value, ErrNone, means the token is well-formed.
type ScanError int

// The scan-level error codes.
const (
	ErrNone ScanError = iota
	ErrInvalidUnicode
	ErrInvalidEscape
	ErrUnexpectedEndOfNumber
	ErrUnexpectedEndOfComment
	ErrUnexpectedEndOfString
	ErrInvalidCharacter
)

// A Scanner tokenizes a fixed byte slice of JSON source. Next always
// succeeds: a malformed token is reported with its best-effort span and
// kind, together with a non-zero ScanError. The scanner never stops
// being usable, which is what lets the parser recover from a lexical
// error and keep going.
type Scanner struct {
	src []byte
	pos int // offset of the next unconsumed byte

	tok   Token
	start int // offset of the current token
	end   int // offset just past the current token
	err   ScanError

	// decoded is the decoded text of the current String token (quotes
	// removed, escapes resolved). It is only populated for String
	// tokens, lazily, the first time StringValue is called.
	decoded    string
	decodedSet bool
}

// NewScanner constructs a Scanner over src. The caller must not modify
// src while the scanner (or any Document parsed from it) is in use.
func NewScanner(src []byte) *Scanner { return &Scanner{src: src} }

// Next advances the scanner to the next token and reports its kind.
// At the end of the input, Next returns EOF on every subsequent call.
func (s *Scanner) Next() Token {
	s.decodedSet = false
	s.start = s.pos
	s.err = ErrNone

	if s.pos >= len(s.src) {
		s.tok, s.start, s.end = EOF, len(s.src), len(s.src)
		return EOF
	}

	ch := s.src[s.pos]
	switch {
	case ch == '\n' || ch == '\r':
		s.scanLineBreaks()
	case isHSpace(ch):
		s.scanTrivia()
	case ch == '{':
		s.one(OpenBrace)
	case ch == '}':
		s.one(CloseBrace)
	case ch == '[':
		s.one(OpenBracket)
	case ch == ']':
		s.one(CloseBracket)
	case ch == ':':
		s.one(Colon)
	case ch == ',':
		s.one(Comma)
	case ch == '"':
		s.scanString()
	case ch == '-' || isDigit(ch):
		s.scanNumber()
	case isIdentStart(ch):
		s.scanIdent()
	case ch == '/' && s.pos+1 < len(s.src) && (s.src[s.pos+1] == '/' || s.src[s.pos+1] == '*'):
		s.scanComment()
	default:
		_, n := utf8.DecodeRune(s.src[s.pos:])
		if n == 0 {
			n = 1
		}
		s.pos += n
		s.tok, s.end, s.err = Unknown, s.pos, ErrInvalidCharacter
	}
	return s.tok
}

// Token reports the kind of the current token.
func (s *Scanner) Token() Token { return s.tok }

// ScanError reports the lexical error, if any, attached to the current
// token.
func (s *Scanner) ScanError() ScanError { return s.err }

// Span reports the byte span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.start, End: s.end} }

// Text returns the raw, undecoded source text of the current token,
// including quotes for a String token.
func (s *Scanner) Text() []byte { return s.src[s.start:s.end] }

// StringValue returns the decoded value of the current String token
// (quotes removed, \-escapes resolved, surrogate pairs combined). It
// panics if the current token is not a String.
func (s *Scanner) StringValue() string {
	if s.tok != String {
		panic("jsonls: StringValue called on non-string token")
	}
	if !s.decodedSet {
		inner := s.Text()
		if len(inner) >= 1 && inner[0] == '"' {
			inner = inner[1:]
		}
		if len(inner) >= 1 && inner[len(inner)-1] == '"' {
			inner = inner[:len(inner)-1]
		}
		dec, ok := escape.Unquote(mem.B(inner))
		if !ok && s.err == ErrNone {
			s.err = ErrInvalidEscape
		}
		s.decoded = string(dec)
		s.decodedSet = true
	}
	return s.decoded
}

func (s *Scanner) one(t Token) {
	s.pos++
	s.tok, s.end = t, s.pos
}

func (s *Scanner) scanTrivia() {
	for s.pos < len(s.src) && isHSpace(s.src[s.pos]) {
		s.pos++
	}
	s.tok, s.end = Trivia, s.pos
}

func (s *Scanner) scanLineBreaks() {
	for s.pos < len(s.src) && (s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
	s.tok, s.end = LineBreak, s.pos
}

// scanIdent consumes a run of identifier characters (letters, digits,
// '_', '$'). If the resulting text is exactly "true", "false", or
// "null" it is reported as the matching constant token; otherwise it
// is reported as Unknown with no scan error, since a bareword is
// lexically well-formed, just not a JSON value; the parser decides
// whether it is acceptable, e.g. as an unquoted object key.
func (s *Scanner) scanIdent() {
	start := s.pos
	for s.pos < len(s.src) && isIdentCont(s.src[s.pos]) {
		s.pos++
	}
	switch string(s.src[start:s.pos]) {
	case "true":
		s.tok = True
	case "false":
		s.tok = False
	case "null":
		s.tok = Null
	default:
		s.tok = Unknown
	}
	s.end = s.pos
}

func (s *Scanner) scanString() {
	s.pos++ // opening quote
	for {
		if s.pos >= len(s.src) {
			s.tok, s.end, s.err = String, s.pos, ErrUnexpectedEndOfString
			return
		}
		ch := s.src[s.pos]
		if ch == '"' {
			s.pos++
			s.tok, s.end = String, s.pos
			return
		}
		if ch == '\n' {
			// An unterminated string never crosses a line break.
			s.tok, s.end, s.err = String, s.pos, ErrUnexpectedEndOfString
			return
		}
		if ch == '\\' {
			s.pos++
			if s.pos >= len(s.src) {
				s.tok, s.end, s.err = String, s.pos, ErrUnexpectedEndOfString
				return
			}
			esc := s.src[s.pos]
			switch esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.pos++
			case 'u':
				s.pos++
				if !s.skipHex4() {
					s.err = ErrInvalidUnicode
				}
			default:
				s.pos++
				s.err = ErrInvalidEscape
			}
			continue
		}
		_, n := utf8.DecodeRune(s.src[s.pos:])
		if n == 0 {
			n = 1
		}
		s.pos += n
	}
}

func (s *Scanner) skipHex4() bool {
	for i := 0; i < 4; i++ {
		if s.pos >= len(s.src) || !isHexDigit(s.src[s.pos]) {
			return false
		}
		s.pos++
	}
	return true
}

func (s *Scanner) scanNumber() {
	if s.src[s.pos] == '-' {
		s.pos++
	}
	if s.pos >= len(s.src) || !isDigit(s.src[s.pos]) {
		s.tok, s.end, s.err = Number, s.pos, ErrUnexpectedEndOfNumber
		return
	}
	if s.src[s.pos] == '0' {
		s.pos++
	} else {
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		n := 0
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
			n++
		}
		if n == 0 {
			s.tok, s.end, s.err = Number, s.pos, ErrUnexpectedEndOfNumber
			return
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		n := 0
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
			n++
		}
		if n == 0 {
			s.tok, s.end, s.err = Number, s.pos, ErrUnexpectedEndOfNumber
			return
		}
	}
	s.tok, s.end = Number, s.pos
}

func (s *Scanner) scanComment() {
	start := s.pos
	s.pos += 2 // "//" or "/*"
	if s.src[start+1] == '/' {
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.pos++
		}
		s.tok, s.end = LineComment, s.pos
		return
	}
	for {
		if s.pos+1 >= len(s.src) {
			s.pos = len(s.src)
			s.tok, s.end, s.err = BlockComment, s.pos, ErrUnexpectedEndOfComment
			return
		}
		if s.src[s.pos] == '*' && s.src[s.pos+1] == '/' {
			s.pos += 2
			s.tok, s.end = BlockComment, s.pos
			return
		}
		s.pos++
	}
}

func isHSpace(ch byte) bool { return ch == ' ' || ch == '\t' }
func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isLetter(ch byte) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '$'
}
func isIdentCont(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
