// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines the syntax tree for JSON documents and the
// parser that builds one from source text.
package ast

import (
	"github.com/jsonls-dev/jsonls"
)

// Kind identifies the concrete type of a Node.
type Kind int

// The node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindProperty
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindProperty:
		return "property"
	default:
		return "invalid"
	}
}

// A Node is a single element of a JSON syntax tree. Every node knows
// its own byte span in the source and a non-owning back-reference to
// its parent (nil at the root). A parent exclusively owns its
// children; Parent is never used for ownership.
type Node interface {
	Kind() Kind
	Offset() int
	Length() int
	Span() jsonls.Span
	Parent() Node

	setParent(Node)
}

// base carries the fields and behavior common to every node kind:
// the byte span in the source and the parent back-reference.
type base struct {
	offset, length int
	parent         Node
}

func (b *base) Offset() int      { return b.offset }
func (b *base) Length() int      { return b.length }
func (b *base) Span() jsonls.Span {
	return jsonls.Span{Pos: b.offset, End: b.offset + b.length}
}
func (b *base) Parent() Node     { return b.parent }
func (b *base) setParent(p Node) { b.parent = p }

// Null represents the JSON null literal.
type Null struct{ base }

func (n *Null) Kind() Kind { return KindNull }

// Bool represents a JSON boolean literal.
type Bool struct {
	base
	Value bool
}

func (b *Bool) Kind() Kind { return KindBool }

// Number represents a JSON numeric literal.
type Number struct {
	base

	// Text is the raw lexeme, preserved to support exact textual
	// round-tripping and the IsInteger determination.
	Text string

	// Value is the literal's value as a finite IEEE-754 double. It is
	// NaN if Text could not be parsed (a malformed literal reached
	// here via error recovery).
	Value float64

	// IsInteger is true iff Text contains no decimal point. The
	// presence of an exponent alone does not make a number
	// non-integral.
	IsInteger bool
}

func (n *Number) Kind() Kind { return KindNumber }

// String represents a JSON string literal. Offset/Length span the
// quoted source text, including the quotes.
type String struct {
	base

	// Raw is the undecoded source text, including quotes.
	Raw string

	// Value is the decoded string value.
	Value string
}

func (s *String) Kind() Kind { return KindString }

// Array represents a JSON array value.
type Array struct {
	base
	Items []Node
}

func (a *Array) Kind() Kind { return KindArray }

// Object represents a JSON object value: an ordered sequence of
// properties in source order. Duplicate keys are permitted in the
// tree (and flagged as diagnostics at parse time).
type Object struct {
	base
	Properties []*Property
}

func (o *Object) Kind() Kind { return KindObject }

// Find returns the first property of o with the given key, or nil.
func (o *Object) Find(key string) *Property {
	for _, p := range o.Properties {
		if p.Key != nil && p.Key.Value == key {
			return p
		}
	}
	return nil
}

// Has reports whether o has a property with the given key.
func (o *Object) Has(key string) bool { return o.Find(key) != nil }

// Property is a single key/value member of an Object. Value is nil
// when the parser recovered from a missing value. ColonOffset is -1
// when no colon was seen.
type Property struct {
	base

	Key         *String
	Value       Node
	ColonOffset int
}

func (p *Property) Kind() Kind { return KindProperty }
