package jsonls

import "go.lsp.dev/protocol"

// Severity classifies how serious a Diagnostic is.
type Severity int

// The severities a Diagnostic may carry. The zero value, SeverityNone,
// means "let the caller decide": callers supply a default severity
// when none is attached (see the defaultSeverity parameter of
// schema.ValidateDocument).
const (
	SeverityNone Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "none"
	}
}

// Tag annotates a Diagnostic with additional client-facing metadata,
// e.g. marking a deprecated property.
type Tag int

// The tags a Diagnostic may carry.
const (
	TagDeprecated Tag = iota + 1
)

// Code identifies the specific rule that produced a Diagnostic. Most
// validator diagnostics carry no code (the zero value, CodeNone);
// scanner and parser diagnostics always carry one of the codes below.
type Code int

// Parser and scanner diagnostic codes, per the scanner/parser error
// vocabulary.
const (
	CodeNone Code = iota
	CodeInvalidSymbol
	CodeInvalidNumberFormat
	CodePropertyNameExpected
	CodeValueExpected
	CodeColonExpected
	CodeCommaExpected
	CodeCloseBraceExpected
	CodeCloseBracketExpected
	CodeEndOfFileExpected
	CodeInvalidCommentToken
	CodeUnexpectedEndOfComment
	CodeUnexpectedEndOfString
	CodeUnexpectedEndOfNumber
	CodeInvalidUnicode
	CodeInvalidEscapeCharacter
	CodeInvalidCharacter
	CodeTrailingComma
	CodeDuplicateKey
	CodeCommaOrCloseBraceExpected
	CodeCommaOrCloseBracketExpected

	// Validator diagnostic codes.
	CodeEnumValueMismatch
	CodeDeprecated
)

var codeNames = map[Code]string{
	CodeInvalidSymbol:               "InvalidSymbol",
	CodeInvalidNumberFormat:         "InvalidNumberFormat",
	CodePropertyNameExpected:        "PropertyNameExpected",
	CodeValueExpected:               "ValueExpected",
	CodeColonExpected:               "ColonExpected",
	CodeCommaExpected:               "CommaExpected",
	CodeCloseBraceExpected:          "CloseBraceExpected",
	CodeCloseBracketExpected:        "CloseBracketExpected",
	CodeEndOfFileExpected:           "EndOfFileExpected",
	CodeInvalidCommentToken:         "InvalidCommentToken",
	CodeUnexpectedEndOfComment:      "UnexpectedEndOfComment",
	CodeUnexpectedEndOfString:       "UnexpectedEndOfString",
	CodeUnexpectedEndOfNumber:       "UnexpectedEndOfNumber",
	CodeInvalidUnicode:              "InvalidUnicode",
	CodeInvalidEscapeCharacter:      "InvalidEscapeCharacter",
	CodeInvalidCharacter:            "InvalidCharacter",
	CodeTrailingComma:               "TrailingComma",
	CodeDuplicateKey:                "DuplicateKey",
	CodeCommaOrCloseBraceExpected:   "CommaOrCloseBraceExpected",
	CodeCommaOrCloseBracketExpected: "CommaOrCloseBracketExpected",
	CodeEnumValueMismatch:           "EnumValueMismatch",
	CodeDeprecated:                  "Deprecated",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return ""
}

// A Diagnostic reports a single problem found in a source document,
// already mapped from a byte span to line/column positions.
type Diagnostic struct {
	Range    Location
	Message  string
	Severity Severity
	Code     Code
	Tags     []Tag
}

// A Problem is a diagnostic located only by byte offset and length,
// the form the validator produces before a Document maps it to a
// Diagnostic using its line index.
type Problem struct {
	Offset, Length int
	Message        string
	Severity       Severity
	Code           Code
	Tags           []Tag
}

// ToProtocolDiagnostic converts d to the wire type used by the
// Language Server Protocol. This is the only place in the module that
// depends on go.lsp.dev/protocol; the core parser and validator never
// import it, since publishing diagnostics over a transport is outside
// this module's scope.
func ToProtocolDiagnostic(d Diagnostic, source string) protocol.Diagnostic {
	pd := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      uint32(d.Range.First.Line - 1),
				Character: uint32(d.Range.First.Column),
			},
			End: protocol.Position{
				Line:      uint32(d.Range.Last.Line - 1),
				Character: uint32(d.Range.Last.Column),
			},
		},
		Severity: toProtocolSeverity(d.Severity),
		Message:  d.Message,
		Source:   source,
	}
	if d.Code != CodeNone {
		pd.Code = d.Code.String()
	}
	for _, t := range d.Tags {
		pd.Tags = append(pd.Tags, toProtocolTag(t))
	}
	return pd
}

func toProtocolSeverity(s Severity) protocol.DiagnosticSeverity {
	switch s {
	case SeverityError:
		return protocol.DiagnosticSeverityError
	case SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func toProtocolTag(t Tag) protocol.DiagnosticTag {
	switch t {
	case TagDeprecated:
		return protocol.DiagnosticTagDeprecated
	default:
		return 0
	}
}
