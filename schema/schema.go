// Package schema implements a JSON Schema (Draft-04/06/07) validator
// over the syntax trees produced by package ast.
package schema

import (
	"regexp"
	"sync"
)

// Schema is a node of a JSON Schema document: either the boolean
// schema ("true" means any instance validates, "false" means none
// does) or a keyword map. The zero value is not usable;
// build one with FromAny, FromBool, or FromMap.
type Schema struct {
	isBool    bool
	boolValue bool
	keywords  map[string]any

	mu           sync.Mutex
	patternCache map[string]*regexp.Regexp
}

// FromBool wraps the boolean schema v.
func FromBool(v bool) *Schema { return &Schema{isBool: true, boolValue: v} }

// FromMap wraps a decoded keyword map as a schema.
func FromMap(kw map[string]any) *Schema { return &Schema{keywords: kw} }

// FromAny builds a Schema from a decoded JSON value, as produced by
// unmarshaling a schema document into `any`. A value that is neither
// a bool nor a map[string]any (including a resolved-away or absent
// $ref) is treated as the empty, always-true schema.
func FromAny(v any) *Schema {
	switch t := v.(type) {
	case bool:
		return FromBool(t)
	case map[string]any:
		return FromMap(t)
	default:
		return FromBool(true)
	}
}

// IsBool reports whether s is the boolean form of schema.
func (s *Schema) IsBool() bool { return s != nil && s.isBool }

// BoolValue reports the boolean schema's value. It is only meaningful
// when IsBool is true.
func (s *Schema) BoolValue() bool { return s != nil && s.boolValue }

func (s *Schema) kw(name string) (any, bool) {
	if s == nil || s.isBool || s.keywords == nil {
		return nil, false
	}
	v, ok := s.keywords[name]
	return v, ok
}

func (s *Schema) stringKw(name string) (string, bool) {
	v, ok := s.kw(name)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *Schema) floatKw(name string) (float64, bool) {
	v, ok := s.kw(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func (s *Schema) boolKw(name string) (bool, bool) {
	v, ok := s.kw(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (s *Schema) schemaKw(name string) (*Schema, bool) {
	v, ok := s.kw(name)
	if !ok {
		return nil, false
	}
	return FromAny(v), true
}

func (s *Schema) schemaListKw(name string) ([]*Schema, bool) {
	v, ok := s.kw(name)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Schema, len(list))
	for i, e := range list {
		out[i] = FromAny(e)
	}
	return out, true
}

func (s *Schema) schemaMapKw(name string) (map[string]*Schema, bool) {
	v, ok := s.kw(name)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]*Schema, len(m))
	for k, e := range m {
		out[k] = FromAny(e)
	}
	return out, true
}

func (s *Schema) stringListKw(name string) ([]string, bool) {
	v, ok := s.kw(name)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if str, ok := e.(string); ok {
			out = append(out, str)
		}
	}
	return out, true
}

// itemsKw resolves the "items" keyword, which may be a single schema
// (apply to every element) or a list (tuple validation against the
// element at the same index).
func (s *Schema) itemsKw() (single *Schema, list []*Schema, ok bool) {
	v, present := s.kw("items")
	if !present {
		return nil, nil, false
	}
	if l, isList := v.([]any); isList {
		out := make([]*Schema, len(l))
		for i, e := range l {
			out[i] = FromAny(e)
		}
		return nil, out, true
	}
	return FromAny(v), nil, true
}

// overrideMessage returns the value of the first of keys that is set
// and non-empty, or fallback. Used for errorMessage/patternErrorMessage
// overrides.
func (s *Schema) overrideMessage(fallback string, keys ...string) string {
	for _, k := range keys {
		if msg, ok := s.stringKw(k); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

// compiledPattern compiles and caches pattern, scoped to this schema
// node. A compilation failure is cached as a nil entry, and is not
// reported as an error: the constraint is simply skipped, so a
// malformed schema pattern cannot block validation of the rest of the
// document.
func (s *Schema) compiledPattern(pattern string) *regexp.Regexp {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patternCache == nil {
		s.patternCache = make(map[string]*regexp.Regexp)
	}
	if re, cached := s.patternCache[pattern]; cached {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		s.patternCache[pattern] = nil
		return nil
	}
	s.patternCache[pattern] = re
	return re
}

func isDeprecated(s *Schema) bool {
	if b, ok := s.boolKw("deprecated"); ok && b {
		return true
	}
	if msg, ok := s.stringKw("deprecationMessage"); ok && msg != "" {
		return true
	}
	return false
}

func deprecationMessage(s *Schema) string {
	if msg, ok := s.stringKw("deprecationMessage"); ok && msg != "" {
		return msg
	}
	return "Deprecated."
}
