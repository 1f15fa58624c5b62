package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsonls-dev/jsonls"
	"github.com/jsonls-dev/jsonls/ast"
)

func parse(src string) *ast.Document {
	return ast.Parse([]byte(src), ast.ParseOptions{})
}

func codes(diags []jsonls.Diagnostic) []jsonls.Code {
	out := make([]jsonls.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestParse_wellFormed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null", "null"},
		{"true", "true"},
		{"false", "false"},
		{"number", "123.45e6"},
		{"string", `"hello"`},
		{"emptyArray", "[]"},
		{"emptyObject", "{}"},
		{"nestedArray", `[1, [2, 3], {"a": null}]`},
		{"nestedObject", `{"a": {"b": [1,2,3]}, "c": "d"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := parse(test.input)
			if len(doc.SyntaxErrors) != 0 {
				t.Fatalf("SyntaxErrors = %v, want none", doc.SyntaxErrors)
			}
			if doc.Root == nil {
				t.Fatal("Root is nil")
			}
			if doc.Root.Offset() != 0 {
				t.Errorf("Root.Offset() = %d, want 0", doc.Root.Offset())
			}
			if doc.Root.Offset()+doc.Root.Length() > len(test.input) {
				t.Errorf("Root span exceeds input length")
			}
		})
	}
}

func TestParse_roundTripsValue(t *testing.T) {
	doc := parse(`{"a": 1, "b": [true, false, null], "c": "s"}`)
	got := ast.Value(doc.Root)
	want := map[string]any{
		"a": float64(1),
		"b": []any{true, false, nil},
		"c": "s",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Value mismatch (-want +got)\n%s", diff)
	}
}

func TestParse_duplicateKeys(t *testing.T) {
	// { "a": 1, "a": 2 } yields two Warning diagnostics with code
	// DuplicateKey at the two key spans.
	doc := parse(`{ "a": 1, "a": 2 }`)
	var dups []jsonls.Diagnostic
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeDuplicateKey {
			dups = append(dups, d)
		}
	}
	if len(dups) != 2 {
		t.Fatalf("DuplicateKey diagnostics = %d, want 2 (%v)", len(dups), doc.SyntaxErrors)
	}
	for _, d := range dups {
		if d.Severity != jsonls.SeverityWarning {
			t.Errorf("duplicate key diagnostic severity = %v, want Warning", d.Severity)
		}
	}
	obj := doc.Root.(*ast.Object)
	if len(obj.Properties) != 2 {
		t.Fatalf("Properties count = %d, want 2", len(obj.Properties))
	}
	if dups[0].Range.Span != obj.Properties[0].Key.Span() {
		t.Errorf("first diagnostic not located at first key span")
	}
	if dups[1].Range.Span != obj.Properties[1].Key.Span() {
		t.Errorf("second diagnostic not located at second key span")
	}
}

func TestParse_duplicateKeysThreeOccurrences(t *testing.T) {
	// The first duplicate marks the key slot as "already reported" so
	// further duplicates warn only on themselves: three occurrences
	// yield three warnings (first+second from the first collision, one
	// more for the third occurrence alone).
	doc := parse(`{ "a": 1, "a": 2, "a": 3 }`)
	n := 0
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeDuplicateKey {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("DuplicateKey diagnostics = %d, want 3 (%v)", n, doc.SyntaxErrors)
	}
}

func TestParse_trailingComma(t *testing.T) {
	// [1, 2, 3,] yields one TrailingComma diagnostic at the comma
	// before ']'; array length = 3.
	doc := parse(`[1, 2, 3,]`)
	var trailing []jsonls.Diagnostic
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeTrailingComma {
			trailing = append(trailing, d)
		}
	}
	if len(trailing) != 1 {
		t.Fatalf("TrailingComma diagnostics = %d, want 1 (%v)", len(trailing), doc.SyntaxErrors)
	}
	arr, ok := doc.Root.(*ast.Array)
	if !ok {
		t.Fatalf("Root is %T, want *ast.Array", doc.Root)
	}
	if len(arr.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(arr.Items))
	}
	if len(doc.SyntaxErrors) != 1 {
		t.Errorf("SyntaxErrors = %v, want exactly the trailing comma", doc.SyntaxErrors)
	}
}

func TestParse_unquotedKey(t *testing.T) {
	// { foo: 1 } errors with "Property keys must be doublequoted" at
	// foo; the tree has one property with key "foo" and value 1.
	doc := parse(`{ foo: 1 }`)
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodePropertyNameExpected {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PropertyNameExpected diagnostic, got %v", doc.SyntaxErrors)
	}
	obj, ok := doc.Root.(*ast.Object)
	if !ok || len(obj.Properties) != 1 {
		t.Fatalf("Root = %#v, want one property", doc.Root)
	}
	prop := obj.Properties[0]
	if prop.Key == nil || prop.Key.Value != "foo" {
		t.Fatalf("key = %#v, want \"foo\"", prop.Key)
	}
	num, ok := prop.Value.(*ast.Number)
	if !ok || num.Value != 1 {
		t.Fatalf("value = %#v, want number 1", prop.Value)
	}
}

func TestParse_missingComma(t *testing.T) {
	doc := parse(`[1 2]`)
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeCommaExpected {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CommaExpected, got %v", doc.SyntaxErrors)
	}
	arr := doc.Root.(*ast.Array)
	if len(arr.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(arr.Items))
	}
}

func TestParse_missingValueAfterComma(t *testing.T) {
	doc := parse(`[1, , 2]`)
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeValueExpected {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ValueExpected, got %v", doc.SyntaxErrors)
	}
	arr := doc.Root.(*ast.Array)
	if len(arr.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2 (skipped the missing slot)", len(arr.Items))
	}
}

func TestParse_missingColon(t *testing.T) {
	doc := parse(`{"a" 1}`)
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeColonExpected {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ColonExpected, got %v", doc.SyntaxErrors)
	}
	obj := doc.Root.(*ast.Object)
	prop := obj.Properties[0]
	if prop.ColonOffset != -1 {
		t.Errorf("ColonOffset = %d, want -1", prop.ColonOffset)
	}
}

func TestParse_missingColonLaterLineHeuristic(t *testing.T) {
	// If the next token after a missing colon is a string literal on a
	// later line, the property is finalized with a missing value
	// instead of swallowing the next property's key.
	doc := parse("{\"a\"\n\"b\": 1}")
	obj, ok := doc.Root.(*ast.Object)
	if !ok {
		t.Fatalf("Root = %#v, not *ast.Object", doc.Root)
	}
	if len(obj.Properties) != 2 {
		t.Fatalf("Properties = %d, want 2 (the heuristic should not swallow \"b\")", len(obj.Properties))
	}
	first := obj.Properties[0]
	if first.Key.Value != "a" || first.Value != nil {
		t.Errorf("first property = %#v, want key \"a\" with no value", first)
	}
	second := obj.Properties[1]
	if second.Key.Value != "b" {
		t.Errorf("second property key = %q, want \"b\"", second.Key.Value)
	}
	numVal, ok := second.Value.(*ast.Number)
	if !ok || numVal.Value != 1 {
		t.Errorf("second property value = %#v, want number 1", second.Value)
	}
}

func TestParse_numberIsInteger(t *testing.T) {
	tests := []struct {
		input       string
		wantInteger bool
	}{
		{"5", true},
		{"-5", true},
		{"5e10", true},
		{"5.0", false},
		{"5.5e10", false},
	}
	for _, test := range tests {
		doc := parse(test.input)
		n, ok := doc.Root.(*ast.Number)
		if !ok {
			t.Fatalf("%q: Root = %#v, not *ast.Number", test.input, doc.Root)
		}
		if n.IsInteger != test.wantInteger {
			t.Errorf("%q: IsInteger = %v, want %v", test.input, n.IsInteger, test.wantInteger)
		}
	}
}

func TestParse_invalidNumberFormat(t *testing.T) {
	// "1e" would not do: the scanner reports UnexpectedEndOfNumber at
	// the same offset first, and the one-diagnostic-per-offset rule
	// would suppress the parser's InvalidNumberFormat there. "1e999"
	// scans cleanly but overflows to a non-finite double.
	doc := parse(`1e999`)
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeInvalidNumberFormat {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected InvalidNumberFormat, got %v", doc.SyntaxErrors)
	}
}

func TestParse_endOfFileExpected(t *testing.T) {
	doc := parse(`1 2`)
	if diff := cmp.Diff([]jsonls.Code{jsonls.CodeEndOfFileExpected}, codes(doc.SyntaxErrors)); diff != "" {
		t.Errorf("codes mismatch (-want +got)\n%s", diff)
	}
}

func TestParse_emptyInput(t *testing.T) {
	doc := parse(``)
	if doc.Root != nil {
		t.Errorf("Root = %#v, want nil", doc.Root)
	}
}

func TestParse_garbageYieldsValueExpected(t *testing.T) {
	// "]" is a well-formed token that cannot start a value, so it
	// exercises ValueExpected cleanly. "@@@" would not do: its first
	// byte is not a valid JSON character at all, so the scanner itself
	// reports InvalidCharacter at offset 0, and the one-diagnostic-per-
	// offset rule suppresses the ValueExpected the parser would
	// otherwise also report at that same offset.
	doc := parse(`]`)
	if doc.Root != nil {
		t.Errorf("Root = %#v, want nil", doc.Root)
	}
	found := false
	for _, d := range doc.SyntaxErrors {
		if d.Code == jsonls.CodeValueExpected {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ValueExpected, got %v", doc.SyntaxErrors)
	}
}

func TestParse_oneDiagnosticPerOffset(t *testing.T) {
	// At most one diagnostic is emitted per source offset: an
	// unterminated string at EOF should not also duplicate a
	// close-bracket-expected error at the same point.
	doc := parse(`["a`)
	offsets := map[int]int{}
	for _, d := range doc.SyntaxErrors {
		offsets[d.Range.Span.Pos]++
	}
	for offset, n := range offsets {
		if n > 1 {
			t.Errorf("offset %d has %d diagnostics, want at most 1", offset, n)
		}
	}
}

func TestParse_comments(t *testing.T) {
	doc := ast.Parse([]byte("// leading\n{/* inner */\"a\": 1}"), ast.ParseOptions{Comments: true})
	if len(doc.Comments) != 2 {
		t.Fatalf("Comments = %v, want 2 entries", doc.Comments)
	}
	noComments := ast.Parse([]byte("// leading\n{/* inner */\"a\": 1}"), ast.ParseOptions{})
	if len(noComments.Comments) != 0 {
		t.Errorf("Comments = %v, want none when not requested", noComments.Comments)
	}
}

func TestParse_offsetsNestWithinParent(t *testing.T) {
	doc := parse(`{"a": [1, 2, {"b": true}]}`)
	doc.Visit(func(n ast.Node) bool {
		p := n.Parent()
		if p == nil {
			return true
		}
		if n.Offset() < p.Offset() || n.Offset()+n.Length() > p.Offset()+p.Length() {
			t.Errorf("node %#v does not nest within parent %#v", n, p)
		}
		return true
	})
}

func TestGetNodeFromOffset(t *testing.T) {
	doc := parse(`{"a": 1, "b": [2, 3]}`)
	doc.Visit(func(n ast.Node) bool {
		got := doc.GetNodeFromOffset(n.Offset(), false)
		if got == nil {
			t.Errorf("GetNodeFromOffset(%d) = nil", n.Offset())
			return true
		}
		if got.Offset() > n.Offset() || got.Offset()+got.Length() <= n.Offset() {
			t.Errorf("GetNodeFromOffset(%d) = %#v, does not contain the offset", n.Offset(), got)
		}
		return true
	})
}

func TestGetNodeFromOffset_includeRightBound(t *testing.T) {
	doc := parse(`1`)
	end := doc.Root.Offset() + doc.Root.Length()
	if got := doc.GetNodeFromOffset(end, false); got != nil {
		t.Errorf("GetNodeFromOffset(%d, false) = %#v, want nil", end, got)
	}
	if got := doc.GetNodeFromOffset(end, true); got != doc.Root {
		t.Errorf("GetNodeFromOffset(%d, true) = %#v, want Root", end, got)
	}
}

func TestDocument_PositionAt(t *testing.T) {
	doc := parse("{\n  \"a\": 1\n}")
	pos := doc.PositionAt(4) // the opening quote of "a" on line 2
	if pos.Line != 2 {
		t.Errorf("PositionAt(4).Line = %d, want 2", pos.Line)
	}
}

func TestParse_neverNilOnMalformedInput(t *testing.T) {
	tests := []string{
		`{`,
		`[`,
		`{"a":`,
		`{"a": [1, 2`,
		`]`,
		`}`,
		`garbage`,
		`{{{{`,
	}
	for _, input := range tests {
		doc := parse(input)
		if doc == nil {
			t.Fatalf("Parse(%q) returned nil Document", input)
		}
	}
}
