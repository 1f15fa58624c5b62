package jsonls_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsonls-dev/jsonls"
)

func scanAll(src string) (toks []jsonls.Token, errs []jsonls.ScanError) {
	s := jsonls.NewScanner([]byte(src))
	for {
		tok := s.Next()
		toks = append(toks, tok)
		errs = append(errs, s.ScanError())
		if tok == jsonls.EOF {
			return
		}
	}
}

func TestScanner_tokens(t *testing.T) {
	tests := []struct {
		input string
		want  []jsonls.Token
	}{
		{"", []jsonls.Token{jsonls.EOF}},
		{"   ", []jsonls.Token{jsonls.Trivia, jsonls.EOF}},
		{"\n\r\n", []jsonls.Token{jsonls.LineBreak, jsonls.EOF}},
		{"true false null", []jsonls.Token{
			jsonls.True, jsonls.Trivia, jsonls.False, jsonls.Trivia, jsonls.Null, jsonls.EOF,
		}},
		{"{}[]:,", []jsonls.Token{
			jsonls.OpenBrace, jsonls.CloseBrace, jsonls.OpenBracket, jsonls.CloseBracket,
			jsonls.Colon, jsonls.Comma, jsonls.EOF,
		}},
		{`"a b c"`, []jsonls.Token{jsonls.String, jsonls.EOF}},
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100`, []jsonls.Token{
			jsonls.Number, jsonls.Trivia, jsonls.Number, jsonls.Trivia, jsonls.Number, jsonls.Trivia,
			jsonls.Number, jsonls.Trivia, jsonls.Number, jsonls.Trivia, jsonls.Number, jsonls.Trivia,
			jsonls.Number, jsonls.EOF,
		}},
		{"// a line comment\n1", []jsonls.Token{
			jsonls.LineComment, jsonls.LineBreak, jsonls.Number, jsonls.EOF,
		}},
		{"/* block */1", []jsonls.Token{jsonls.BlockComment, jsonls.Number, jsonls.EOF}},
		{"foo", []jsonls.Token{jsonls.Unknown, jsonls.EOF}},
		{"@", []jsonls.Token{jsonls.Unknown, jsonls.EOF}},
	}
	for _, test := range tests {
		got, _ := scanAll(test.input)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("scan(%q): tokens (-want +got)\n%s", test.input, diff)
		}
	}
}

func TestScanner_neverStuck(t *testing.T) {
	// Every malformed input must still eventually reach EOF: the
	// scanner's "never fails" contract.
	tests := []string{
		`"unterminated`,
		`"bad \x escape"`,
		`"bad \u12 unicode"`,
		`/* unterminated block`,
		`1.`,
		`1e`,
		`-`,
		"\x01",
	}
	for _, input := range tests {
		toks, errs := scanAll(input)
		if toks[len(toks)-1] != jsonls.EOF {
			t.Errorf("scan(%q): did not terminate at EOF, got %v", input, toks)
		}
		sawErr := false
		for _, e := range errs {
			if e != jsonls.ErrNone {
				sawErr = true
			}
		}
		if !sawErr {
			t.Errorf("scan(%q): expected a ScanError somewhere, got none", input)
		}
	}
}

func TestScanner_unterminatedStringStopsAtLineBreak(t *testing.T) {
	s := jsonls.NewScanner([]byte("\"abc\ndef\""))
	tok := s.Next()
	if tok != jsonls.String {
		t.Fatalf("Next() = %v, want String", tok)
	}
	if s.ScanError() != jsonls.ErrUnexpectedEndOfString {
		t.Errorf("ScanError() = %v, want ErrUnexpectedEndOfString", s.ScanError())
	}
	if string(s.Text()) != "\"abc" {
		t.Errorf("Text() = %q, want %q", s.Text(), "\"abc")
	}
}

func TestScanner_stringValueDecoding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`""`, ""},
		{`"abc"`, "abc"},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"A"`, "A"},
		{`"😀"`, "😀"},
	}
	for _, test := range tests {
		s := jsonls.NewScanner([]byte(test.input))
		if tok := s.Next(); tok != jsonls.String {
			t.Fatalf("scan(%q): Next() = %v, want String", test.input, tok)
		}
		if got := s.StringValue(); got != test.want {
			t.Errorf("scan(%q): StringValue() = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestScanner_spans(t *testing.T) {
	s := jsonls.NewScanner([]byte(`  "hi"`))
	s.Next() // trivia
	if tok := s.Next(); tok != jsonls.String {
		t.Fatalf("Next() = %v, want String", tok)
	}
	if got, want := s.Span(), (jsonls.Span{Pos: 2, End: 6}); got != want {
		t.Errorf("Span() = %+v, want %+v", got, want)
	}
}

func TestQuoteUnquote(t *testing.T) {
	tests := []string{"", "hello", "a\nb\tc", `quote " backslash \`, "😀 astral"}
	for _, s := range tests {
		q := jsonls.Quote(s)
		got, ok := jsonls.Unquote(q)
		if !ok {
			t.Errorf("Unquote(Quote(%q)) reported !ok", s)
		}
		if string(got) != s {
			t.Errorf("Unquote(Quote(%q)) = %q, want %q", s, got, s)
		}
	}
}

func TestUnquote_invalid(t *testing.T) {
	tests := []string{
		`"unterminated`,
		`no quotes`,
		`"a`,
	}
	for _, in := range tests {
		if _, ok := jsonls.Unquote(in); ok {
			t.Errorf("Unquote(%q): want !ok", in)
		}
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  jsonls.Severity
		want string
	}{
		{jsonls.SeverityError, "error"},
		{jsonls.SeverityWarning, "warning"},
		{jsonls.SeverityInfo, "info"},
		{jsonls.SeverityHint, "hint"},
		{jsonls.SeverityNone, "none"},
	}
	for _, test := range tests {
		if got := test.sev.String(); got != test.want {
			t.Errorf("Severity(%d).String() = %q, want %q", test.sev, got, test.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if got := jsonls.CodeDuplicateKey.String(); got != "DuplicateKey" {
		t.Errorf("CodeDuplicateKey.String() = %q, want %q", got, "DuplicateKey")
	}
	if got := jsonls.Code(9999).String(); got != "" {
		t.Errorf("unknown Code.String() = %q, want empty", got)
	}
}
