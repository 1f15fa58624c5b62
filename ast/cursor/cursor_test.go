package cursor_test

import (
	"testing"

	"github.com/jsonls-dev/jsonls/ast"
	"github.com/jsonls-dev/jsonls/ast/cursor"
)

const testJSON = `{
  "list": [
    {"x": 1},
    {"x": 2}
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  },
  "o": ["hi", "yourself"]
}`

func parse(src string) *ast.Document {
	return ast.Parse([]byte(src), ast.ParseOptions{})
}

func TestCursor_Down(t *testing.T) {
	doc := parse(testJSON)
	root := doc.Root

	tests := []struct {
		name string
		path []any
		fail bool
	}{
		{"NilInput", nil, false},
		{"NoMatch", []any{"nonesuch"}, true},
		{"ObjIndexRange", []any{11}, true},
		{"ArrayPos", []any{"list", 1}, false},
		{"ArrayNeg", []any{"list", -1}, false},
		{"ArrayRange", []any{"o", 25}, true},
		{"ObjPath", []any{"xyz", "d"}, false},
		{"Nested", []any{"list", 0, "x"}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := cursor.New(root).Down(test.path...)
			err := c.Err()
			if (err != nil) != test.fail {
				t.Fatalf("Down(%v).Err() = %v, want fail=%v", test.path, err, test.fail)
			}
		})
	}
}

func TestCursor_ArrayNegativeIndex(t *testing.T) {
	doc := parse(testJSON)
	pos := cursor.New(doc.Root).Down("list", 1)
	neg := cursor.New(doc.Root).Down("list", -1)
	if pos.Err() != nil || neg.Err() != nil {
		t.Fatalf("unexpected errors: pos=%v neg=%v", pos.Err(), neg.Err())
	}
	if pos.Node() != neg.Node() {
		t.Errorf("Down(list, 1) != Down(list, -1)")
	}
}

func TestCursor_PropertyIndirection(t *testing.T) {
	// A bare string path element stops on the Property node itself...
	doc := parse(testJSON)
	c := cursor.New(doc.Root).Down("xyz", "d")
	if c.Err() != nil {
		t.Fatalf("Down: %v", c.Err())
	}
	prop, ok := c.Node().(*ast.Property)
	if !ok {
		t.Fatalf("Node() = %#v, want *ast.Property", c.Node())
	}
	if prop.Key.Value != "d" {
		t.Errorf("Key = %q, want \"d\"", prop.Key.Value)
	}

	// ...but a trailing nil element dereferences it into its Value.
	c2 := cursor.New(doc.Root).Down("xyz", "d", nil)
	if c2.Err() != nil {
		t.Fatalf("Down with trailing nil: %v", c2.Err())
	}
	b, ok := c2.Node().(*ast.Bool)
	if !ok || !b.Value {
		t.Fatalf("Node() = %#v, want Bool(true)", c2.Node())
	}
}

func TestCursor_Up(t *testing.T) {
	doc := parse(testJSON)
	c := cursor.New(doc.Root).Down("xyz", "d")
	if c.Err() != nil {
		t.Fatalf("Down: %v", c.Err())
	}
	dProp := c.Node()
	c.Up() // pop "d", land on the object value of the "xyz" property
	if c.Node() == dProp {
		t.Errorf("Up() did not move the cursor")
	}
	if c.AtOrigin() {
		t.Errorf("AtOrigin() = true after a single Up, want still two levels deep")
	}
	c.Up() // pop the "xyz" object value
	c.Up() // pop the "xyz" property, back to origin
	if !c.AtOrigin() {
		t.Errorf("AtOrigin() = false, want true after popping all three levels")
	}
}

func TestCursor_Path(t *testing.T) {
	doc := parse(testJSON)
	c := cursor.New(doc.Root).Down("xyz", "d")
	if c.Err() != nil {
		t.Fatalf("Down: %v", c.Err())
	}
	path := c.Path()
	if len(path) != 4 { // origin, xyz property, xyz object value, d property
		t.Fatalf("Path() = %v entries, want 4", len(path))
	}
	if path[0] != doc.Root {
		t.Errorf("Path()[0] != origin")
	}
}

func TestCursor_Func(t *testing.T) {
	doc := parse(testJSON)
	firstItem := func(n ast.Node) (ast.Node, error) {
		arr := n.(*ast.Array)
		return arr.Items[0], nil
	}
	c := cursor.New(doc.Root).Down("o", firstItem)
	if c.Err() != nil {
		t.Fatalf("Down: %v", c.Err())
	}
	s, ok := c.Node().(*ast.String)
	if !ok || s.Value != "hi" {
		t.Errorf("Node() = %#v, want string \"hi\"", c.Node())
	}
}

func TestPath(t *testing.T) {
	doc := parse(testJSON)
	n, err := cursor.Path(doc.Root, "xyz", "p", nil)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	b, ok := n.(*ast.Bool)
	if !ok || !b.Value {
		t.Errorf("Path result = %#v, want Bool(true)", n)
	}
}

func TestCursor_Reset(t *testing.T) {
	doc := parse(testJSON)
	c := cursor.New(doc.Root).Down("xyz", "d")
	c.Reset()
	if !c.AtOrigin() {
		t.Error("AtOrigin() = false after Reset")
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v after Reset, want nil", c.Err())
	}
}
