package ast

import "unicode/utf16"

// Value projects n to a plain Go value: nil, bool, float64, string,
// []any, or map[string]any (last-property-wins for duplicate keys,
// matching encoding/json's own unmarshal behavior). This is what the
// validator and DeepEqual compare against enum/const candidates and
// against each other.
func Value(n Node) any {
	switch v := n.(type) {
	case nil:
		return nil
	case *Null:
		return nil
	case *Bool:
		return v.Value
	case *Number:
		return v.Value
	case *String:
		return v.Value
	case *Array:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = Value(item)
		}
		return out
	case *Object:
		out := make(map[string]any, len(v.Properties))
		for _, p := range v.Properties {
			if p.Key == nil {
				continue
			}
			out[p.Key.Value] = Value(p.Value)
		}
		return out
	case *Property:
		return Value(v.Value)
	default:
		return nil
	}
}

// DeepEqual reports whether a and b are the same JSON value: equal
// primitives, pairwise-equal array elements in order, or objects with
// equal key sets and per-key equal values. a and b are typically the
// result of Value, or of json.Unmarshal into any.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := toFloat(b)
		return ok && av == bv
	case int, int64:
		av2, _ := toFloat(a)
		bv, ok := toFloat(b)
		return ok && av2 == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !DeepEqual(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// UniqueItems reports whether every pair of elements of items is
// distinct under DeepEqual, as required by the uniqueItems keyword.
func UniqueItems(items []any) bool {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if DeepEqual(items[i], items[j]) {
				return false
			}
		}
	}
	return true
}

// UTF16Len reports the length of s measured in UTF-16 code units, the
// unit the minLength and maxLength schema keywords count in. A rune
// outside the Basic Multilingual Plane counts as two units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// IsObject, IsArray, IsString, IsNumber, IsBool, IsNull are type
// predicates over a projected Value (the result of Value or of
// json.Unmarshal into any), used by the validator's `type` keyword.
func IsObject(v any) bool { _, ok := v.(map[string]any); return ok }
func IsArray(v any) bool  { _, ok := v.([]any); return ok }
func IsString(v any) bool { _, ok := v.(string); return ok }
func IsBool(v any) bool   { _, ok := v.(bool); return ok }
func IsNull(v any) bool   { return v == nil }
func IsNumber(v any) bool { _, ok := toFloat(v); return ok }
