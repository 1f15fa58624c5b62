package ast

import (
	"sort"

	"github.com/jsonls-dev/jsonls"
)

// Document is the result of parsing a JSON source text: a syntax tree
// together with every diagnostic the parser recorded along the way.
type Document struct {
	// Source is the original text the document was parsed from.
	Source []byte

	// Root is the top-level value, or nil if none could be parsed.
	Root Node

	// SyntaxErrors are the diagnostics recorded while parsing, in the
	// order they were encountered.
	SyntaxErrors []jsonls.Diagnostic

	// Comments holds the byte spans of comments found in Source, in
	// source order. Only populated when parsed with ParseOptions.Comments.
	Comments []jsonls.Span

	lineStarts []int
}

// ensureLineIndex lazily builds the byte-offset index of line starts
// used by PositionAt.
func (d *Document) ensureLineIndex() {
	if d.lineStarts != nil {
		return
	}
	starts := []int{0}
	for i, b := range d.Source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	d.lineStarts = starts
}

// PositionAt converts a byte offset into Source to a 1-based line and
// 0-based column.
func (d *Document) PositionAt(offset int) jsonls.LineCol {
	d.ensureLineIndex()
	i := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return jsonls.LineCol{Line: i + 1, Column: offset - d.lineStarts[i]}
}

// GetNodeFromOffset returns the deepest node containing offset, or
// nil if offset falls outside the root value entirely. When
// includeRightBound is true, a node whose span ends exactly at offset
// is considered to contain it (useful for completion requests
// positioned just after a node).
func (d *Document) GetNodeFromOffset(offset int, includeRightBound bool) Node {
	return nodeFromOffset(d.Root, offset, includeRightBound)
}

func nodeFromOffset(n Node, offset int, includeRightBound bool) Node {
	if n == nil {
		return nil
	}
	sp := n.Span()
	contains := sp.Contains(offset) || (includeRightBound && offset == sp.End)
	if !contains {
		return nil
	}
	for _, child := range children(n) {
		if found := nodeFromOffset(child, offset, includeRightBound); found != nil {
			return found
		}
	}
	return n
}

func children(n Node) []Node {
	switch v := n.(type) {
	case *Array:
		return v.Items
	case *Object:
		out := make([]Node, len(v.Properties))
		for i, p := range v.Properties {
			out[i] = p
		}
		return out
	case *Property:
		var out []Node
		if v.Key != nil {
			out = append(out, v.Key)
		}
		if v.Value != nil {
			out = append(out, v.Value)
		}
		return out
	default:
		return nil
	}
}

// Visit performs a pre-order depth-first traversal of the tree rooted
// at d.Root, calling fn for each node. Traversal stops early if fn
// returns false.
func (d *Document) Visit(fn func(Node) bool) {
	visit(d.Root, fn)
}

func visit(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range children(n) {
		if !visit(child, fn) {
			return false
		}
	}
	return true
}
