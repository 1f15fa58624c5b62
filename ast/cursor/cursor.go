// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the syntax tree of a JSON
// document.
package cursor

import (
	"fmt"

	"github.com/jsonls-dev/jsonls/ast"
)

// Path is a convenience wrapper that constructs a cursor at origin,
// applies path, and returns the node reached.
func Path(origin ast.Node, path ...any) (ast.Node, error) {
	c := New(origin).Down(path...)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c.Node(), nil
}

// A Cursor is a pointer that navigates into the structure of an
// ast.Node.
type Cursor struct {
	org ast.Node
	stk []ast.Node
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Node) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin node of c.
func (c *Cursor) Origin() ast.Node { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Node reports the node currently under the cursor.
func (c *Cursor) Node() ast.Node {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of nodes from the origin to the
// current location in c.
func (c *Cursor) Path() []ast.Node {
	return append([]ast.Node{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current node, where path elements are either strings (denoting object
// keys), integers (denoting indices into arrays or object property lists),
// functions (see below), or nil. Down returns c; if the path is valid, the
// cursor rests on the element reached (see Node). If the path cannot be
// completely consumed, traversal stops and an error is recorded. Use Err to
// recover the error.
//
// If a path element is a string, the current node must be an object, and the
// string resolves to one of its properties by key. The property itself is
// pushed, so a trailing nil path element dereferences it; a non-final string
// or int element implicitly continues from the property's value.
//
// If a path element is an integer, the current node must be an array or
// object, and the integer resolves to an index into its elements or
// properties respectively. Negative indices count backward from the end (-1
// is last, -2 second last). An error is reported if the index is out of
// bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next node in the sequence. The function must have a signature
//
//	func(ast.Node) (ast.Node, error)
//
// If the function reports an error, traversal stops and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Node()
	for _, elt := range path {
		// If the previous step ended on a property, interpret the next
		// path element relative to the property's value.
		if p, ok := cur.(*ast.Property); ok {
			cur = c.push(p.Value)
		}

		switch t := elt.(type) {
		case string:
			obj, ok := cur.(*ast.Object)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", cur, elt)
			}
			p := obj.Find(t)
			if p == nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(p)

		case int:
			switch e := cur.(type) {
			case *ast.Array:
				i, ok := fixArrayBound(len(e.Items), t)
				if !ok {
					return c.setErrorf("array index %d out of bounds (n=%d)", t, len(e.Items))
				}
				cur = c.push(e.Items[i])
			case *ast.Object:
				i, ok := fixArrayBound(len(e.Properties), t)
				if !ok {
					return c.setErrorf("object index %d out of bounds (n=%d)", t, len(e.Properties))
				}
				cur = c.push(e.Properties[i])
			default:
				return c.setErrorf("cannot traverse %T with %v", cur, elt)
			}

		case func(ast.Node) (ast.Node, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		case nil:
			// Do nothing. This case supports indirecting through a property at
			// the end of the path.

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(n ast.Node) ast.Node { c.stk = append(c.stk, n); return n }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
