// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsonls-dev/jsonls"
)

// ParseOptions controls optional parser behavior.
type ParseOptions struct {
	// Comments, if true, causes line and block comment ranges to be
	// collected into Document.Comments in source order. If false,
	// comments are skipped silently, like any other trivia.
	Comments bool
}

// Parse parses src and returns a Document. Parse never fails: every
// lexical or grammatical problem becomes a Diagnostic in the returned
// Document's SyntaxErrors, and the parser always produces its best
// attempt at a tree.
func Parse(src []byte, opts ParseOptions) *Document {
	p := &parser{
		src:                src,
		sc:                 jsonls.NewScanner(src),
		opts:               opts,
		lastReportedOffset: -1,
	}
	p.advance()

	root := p.tryParseValue()
	if root == nil && p.tok != jsonls.EOF {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeValueExpected, "Value expected.")
	}
	if p.tok != jsonls.EOF {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeEndOfFileExpected, "End of file expected.")
	}

	doc := &Document{Source: src, Root: root, Comments: p.comments}
	doc.ensureLineIndex() // built here so later reads never mutate doc
	doc.SyntaxErrors = make([]jsonls.Diagnostic, len(p.rawDiags))
	for i, d := range p.rawDiags {
		doc.SyntaxErrors[i] = jsonls.Diagnostic{
			Range: jsonls.Location{
				Span:  d.span,
				First: doc.PositionAt(d.span.Pos),
				Last:  doc.PositionAt(d.span.End),
			},
			Message:  d.message,
			Severity: d.severity,
			Code:     d.code,
		}
	}
	return doc
}

// rawDiag is a syntax problem recorded during parsing, before its
// offsets have been mapped to line/column positions (which requires a
// completed Document).
type rawDiag struct {
	span     jsonls.Span
	severity jsonls.Severity
	code     jsonls.Code
	message  string
}

// parser is a single-use, error-tolerant recursive-descent parser
// driving a jsonls.Scanner directly. It never aborts: every production
// failure is recorded as a diagnostic and recovered from.
type parser struct {
	src []byte
	sc  *jsonls.Scanner

	opts     ParseOptions
	tok      jsonls.Token
	comments []jsonls.Span
	rawDiags []rawDiag

	lastReportedOffset int
}

// advance moves to the next significant token, filtering trivia, line
// breaks, and comments. Any scanner-level error attached to a filtered
// or significant token is reported as it is produced, so lexical
// diagnostics always precede production-level ones.
func (p *parser) advance() {
	for {
		t := p.sc.Next()
		if se := p.sc.ScanError(); se != jsonls.ErrNone {
			p.reportScanError(se)
		}
		switch t {
		case jsonls.Trivia, jsonls.LineBreak:
			continue
		case jsonls.LineComment, jsonls.BlockComment:
			if p.opts.Comments {
				p.comments = append(p.comments, p.sc.Span())
			}
			continue
		default:
			p.tok = t
			return
		}
	}
}

func (p *parser) reportScanError(se jsonls.ScanError) {
	var code jsonls.Code
	var msg string
	switch se {
	case jsonls.ErrInvalidUnicode:
		code, msg = jsonls.CodeInvalidUnicode, "Invalid unicode sequence in string."
	case jsonls.ErrInvalidEscape:
		code, msg = jsonls.CodeInvalidEscapeCharacter, "Invalid escape character in string."
	case jsonls.ErrUnexpectedEndOfNumber:
		code, msg = jsonls.CodeUnexpectedEndOfNumber, "Unexpected end of number."
	case jsonls.ErrUnexpectedEndOfComment:
		code, msg = jsonls.CodeUnexpectedEndOfComment, "Unexpected end of comment."
	case jsonls.ErrUnexpectedEndOfString:
		code, msg = jsonls.CodeUnexpectedEndOfString, "Unexpected end of string."
	case jsonls.ErrInvalidCharacter:
		code, msg = jsonls.CodeInvalidCharacter, "Invalid character in JSON text."
	default:
		return
	}
	p.report(p.sc.Span(), jsonls.SeverityError, code, msg)
}

// report records a diagnostic at span, unless span starts at the same
// offset as the last diagnostic reported: at most one diagnostic is
// emitted per source offset.
func (p *parser) report(span jsonls.Span, severity jsonls.Severity, code jsonls.Code, message string) {
	if span.Pos == p.lastReportedOffset {
		return
	}
	p.lastReportedOffset = span.Pos
	p.rawDiags = append(p.rawDiags, rawDiag{span: span, severity: severity, code: code, message: message})
}

// skipUntil advances past tokens until the current token is one of
// stops, or EOF. It never consumes the stop token itself.
func (p *parser) skipUntil(stops ...jsonls.Token) {
	for p.tok != jsonls.EOF {
		for _, s := range stops {
			if p.tok == s {
				return
			}
		}
		p.advance()
	}
}

// startsOnLaterLine reports whether the current token begins on a
// source line strictly after fromOffset. Used by the missing-colon
// heuristic in parseProperty.
func (p *parser) startsOnLaterLine(fromOffset int) bool {
	to := p.sc.Span().Pos
	if to > len(p.src) {
		to = len(p.src)
	}
	for i := fromOffset; i < to; i++ {
		if p.src[i] == '\n' {
			return true
		}
	}
	return false
}

// tryParseValue parses a single JSON value at the current token and
// returns it, or returns nil (consuming nothing) if the current token
// cannot start a value.
func (p *parser) tryParseValue() Node {
	switch p.tok {
	case jsonls.OpenBrace:
		return p.parseObject()
	case jsonls.OpenBracket:
		return p.parseArray()
	case jsonls.String:
		return p.consumeStringNode()
	case jsonls.Number:
		return p.parseNumber()
	case jsonls.True:
		return p.parseBool(true)
	case jsonls.False:
		return p.parseBool(false)
	case jsonls.Null:
		return p.parseNull()
	default:
		return nil
	}
}

// parseElementValue parses one array element, reporting and
// recovering ("Value expected.", skip to ']' or ',') if the current
// token cannot start a value.
func (p *parser) parseElementValue() Node {
	v := p.tryParseValue()
	if v == nil {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeValueExpected, "Value expected.")
		p.skipUntil(jsonls.CloseBracket, jsonls.Comma)
	}
	return v
}

func (p *parser) parseArray() *Array {
	start := p.sc.Span().Pos
	arr := &Array{}
	arr.offset = start
	p.advance() // consume '['

	if p.tok == jsonls.CloseBracket {
		end := p.sc.Span().End
		arr.length = end - start
		p.advance()
		return arr
	}

	for {
		item := p.parseElementValue()
		if item != nil {
			item.setParent(arr)
			arr.Items = append(arr.Items, item)
		}

		if p.tok == jsonls.Comma {
			commaSpan := p.sc.Span()
			p.advance()
			if p.tok == jsonls.CloseBracket {
				p.report(commaSpan, jsonls.SeverityError, jsonls.CodeTrailingComma, "Trailing comma.")
				break
			}
			continue
		}
		if p.tok == jsonls.CloseBracket || p.tok == jsonls.EOF {
			break
		}
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeCommaExpected, "Expected comma.")
	}

	if p.tok == jsonls.CloseBracket {
		end := p.sc.Span().End
		arr.length = end - start
		p.advance()
	} else {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeCloseBracketExpected, "Expected closing bracket.")
		arr.length = p.sc.Span().Pos - start
	}
	return arr
}

func (p *parser) parseObject() *Object {
	start := p.sc.Span().Pos
	obj := &Object{}
	obj.offset = start
	p.advance() // consume '{'

	if p.tok == jsonls.CloseBrace {
		end := p.sc.Span().End
		obj.length = end - start
		p.advance()
		return obj
	}

	reportedDup := map[string]bool{}
	for {
		prop := p.parseProperty()
		if prop != nil {
			prop.setParent(obj)
			obj.Properties = append(obj.Properties, prop)
			if prop.Key != nil {
				p.checkDuplicateKey(obj, prop, reportedDup)
			}
		}

		if p.tok == jsonls.Comma {
			commaSpan := p.sc.Span()
			p.advance()
			if p.tok == jsonls.CloseBrace {
				p.report(commaSpan, jsonls.SeverityError, jsonls.CodeTrailingComma, "Trailing comma.")
				break
			}
			continue
		}
		if p.tok == jsonls.CloseBrace || p.tok == jsonls.EOF {
			break
		}
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeCommaExpected, "Expected comma.")
	}

	if p.tok == jsonls.CloseBrace {
		end := p.sc.Span().End
		obj.length = end - start
		p.advance()
	} else {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeCloseBraceExpected, "Expected closing brace.")
		obj.length = p.sc.Span().Pos - start
	}
	return obj
}

// checkDuplicateKey implements the duplicate-key warning rule: the
// first occurrence is warned about only once it is shown to have a
// duplicate, at which point both it and the new occurrence are
// warned; any further occurrence of the same key warns only on
// itself.
func (p *parser) checkDuplicateKey(obj *Object, prop *Property, reported map[string]bool) {
	key := prop.Key.Value
	var first *Property
	for _, other := range obj.Properties[:len(obj.Properties)-1] {
		if other.Key != nil && other.Key.Value == key {
			first = other
			break
		}
	}
	if first == nil {
		return
	}
	msg := fmt.Sprintf("Duplicate object key %q.", key)
	if !reported[key] {
		p.report(first.Key.Span(), jsonls.SeverityWarning, jsonls.CodeDuplicateKey, msg)
		reported[key] = true
	}
	p.report(prop.Key.Span(), jsonls.SeverityWarning, jsonls.CodeDuplicateKey, msg)
}

// parseProperty parses one object member: a key, an optional colon,
// and an optional value, applying the unquoted-key and missing-colon
// recovery rules.
func (p *parser) parseProperty() *Property {
	prop := &Property{ColonOffset: -1}
	prop.offset = p.sc.Span().Pos

	key := p.parsePropertyKey()
	if key == nil {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodePropertyNameExpected, "Property name expected.")
		p.skipUntil(jsonls.CloseBrace, jsonls.Comma)
		prop.length = p.sc.Span().Pos - prop.offset
		return prop
	}
	key.setParent(prop)
	prop.Key = key
	end := key.Span().End

	if p.tok == jsonls.Colon {
		prop.ColonOffset = p.sc.Span().Pos
		p.advance()
		if val := p.parsePropertyValue(); val != nil {
			val.setParent(prop)
			prop.Value = val
			end = val.Span().End
		}
	} else {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeColonExpected, "Colon expected.")
		if p.tok == jsonls.String && p.startsOnLaterLine(key.Span().End) {
			// Heuristic: a string literal starting on a later source
			// line is almost certainly the next property's key, not
			// this property's value. Finalize with a missing value
			// rather than swallow it.
		} else if val := p.parsePropertyValue(); val != nil {
			val.setParent(prop)
			prop.Value = val
			end = val.Span().End
		}
	}
	prop.length = end - prop.offset
	return prop
}

func (p *parser) parsePropertyValue() Node {
	v := p.tryParseValue()
	if v == nil {
		p.report(p.sc.Span(), jsonls.SeverityError, jsonls.CodeValueExpected, "Value expected.")
		p.skipUntil(jsonls.CloseBrace, jsonls.Comma)
	}
	return v
}

// parsePropertyKey recognizes a double-quoted key, or (recovery) an
// unquoted bareword, whose text is adopted as the key's value
// verbatim.
func (p *parser) parsePropertyKey() *String {
	switch p.tok {
	case jsonls.String:
		return p.consumeStringNode()
	case jsonls.Unknown, jsonls.True, jsonls.False, jsonls.Null:
		span := p.sc.Span()
		text := string(p.sc.Text())
		p.report(span, jsonls.SeverityError, jsonls.CodePropertyNameExpected, "Property keys must be doublequoted.")
		p.advance()
		return &String{base: base{offset: span.Pos, length: span.Len()}, Raw: text, Value: text}
	default:
		return nil
	}
}

func (p *parser) consumeStringNode() *String {
	span := p.sc.Span()
	raw := string(p.sc.Text())
	preErr := p.sc.ScanError()
	val := p.sc.StringValue()
	if postErr := p.sc.ScanError(); postErr != jsonls.ErrNone && preErr == jsonls.ErrNone {
		p.reportScanError(postErr)
	}
	p.advance()
	return &String{base: base{offset: span.Pos, length: span.Len()}, Raw: raw, Value: val}
}

func (p *parser) parseNumber() *Number {
	span := p.sc.Span()
	text := string(p.sc.Text())
	p.advance()

	n := &Number{
		base:      base{offset: span.Pos, length: span.Len()},
		Text:      text,
		IsInteger: !strings.Contains(text, "."),
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) {
		p.report(span, jsonls.SeverityError, jsonls.CodeInvalidNumberFormat, "Invalid number format.")
		v = math.NaN()
	}
	n.Value = v
	return n
}

func (p *parser) parseBool(value bool) *Bool {
	span := p.sc.Span()
	p.advance()
	return &Bool{base: base{offset: span.Pos, length: span.Len()}, Value: value}
}

func (p *parser) parseNull() *Null {
	span := p.sc.Span()
	p.advance()
	return &Null{base: base{offset: span.Pos, length: span.Len()}}
}
