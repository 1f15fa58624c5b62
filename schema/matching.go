package schema

import "github.com/jsonls-dev/jsonls/ast"

// Tuple records that schema was applied while validating node.
// Inverted is true when the application came from inside a `not`,
// flipping the record's sense.
type Tuple struct {
	Node     ast.Node
	Schema   *Schema
	Inverted bool
}

// MatchingSchemas is an append-only collector of Tuples produced
// while validating a node against a schema. A "full" collector
// records everything (optionally scoped); a "no-op" collector
// discards everything, used for inner trial evaluations whose
// records matter only if the trial survives.
type MatchingSchemas interface {
	add(node ast.Node, schema *Schema)
	addInverted(tuples []Tuple)
	sub() MatchingSchemas
	merge(other MatchingSchemas)
	tuples() []Tuple
}

type noopCollector struct{}

func (noopCollector) add(ast.Node, *Schema) {}
func (noopCollector) addInverted([]Tuple)   {}
func (noopCollector) sub() MatchingSchemas  { return noopCollector{} }
func (noopCollector) merge(MatchingSchemas) {}
func (noopCollector) tuples() []Tuple       { return nil }

type fullCollector struct {
	focusOffset int // -1 disables scoping by offset
	exclude     ast.Node
	recs        []Tuple
}

// NewCollector returns a full MatchingSchemas collector scoped to
// focusOffset (-1 to record every tuple regardless of offset) and
// excluding exclude (nil to exclude nothing).
func NewCollector(focusOffset int, exclude ast.Node) MatchingSchemas {
	return &fullCollector{focusOffset: focusOffset, exclude: exclude}
}

func (c *fullCollector) included(node ast.Node) bool {
	if node == nil || node == c.exclude {
		return false
	}
	if c.focusOffset == -1 {
		return true
	}
	return node.Span().Contains(c.focusOffset)
}

func (c *fullCollector) add(node ast.Node, schema *Schema) {
	if !c.included(node) {
		return
	}
	c.recs = append(c.recs, Tuple{Node: node, Schema: schema})
}

func (c *fullCollector) addInverted(tuples []Tuple) {
	for _, t := range tuples {
		if !c.included(t.Node) {
			continue
		}
		t.Inverted = !t.Inverted
		c.recs = append(c.recs, t)
	}
}

func (c *fullCollector) sub() MatchingSchemas {
	return &fullCollector{focusOffset: c.focusOffset, exclude: c.exclude}
}

func (c *fullCollector) merge(other MatchingSchemas) {
	c.recs = append(c.recs, other.tuples()...)
}

func (c *fullCollector) tuples() []Tuple { return c.recs }
