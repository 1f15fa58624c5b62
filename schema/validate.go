package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jsonls-dev/jsonls"
	"github.com/jsonls-dev/jsonls/ast"
)

// validateSchema is the validator's entry point: it applies schema to
// node and returns the resulting problems/match
// counters together with any deprecation hints surfaced along the
// way. It never fails: an absent or malformed keyword is simply
// skipped.
func validateSchema(node ast.Node, schema *Schema, collector MatchingSchemas) (*ValidationResult, *DeprecationResult) {
	result := &ValidationResult{}
	dep := &DeprecationResult{}
	if node == nil {
		return result, dep
	}

	if prop, ok := node.(*ast.Property); ok {
		if prop.Value == nil {
			return result, dep
		}
		return validateSchema(prop.Value, schema, collector)
	}

	if schema == nil {
		return result, dep
	}
	if schema.IsBool() {
		if !schema.BoolValue() {
			result.addProblem(node.Span(), "Not allowed.", jsonls.CodeNone)
		}
		collector.add(node, schema)
		return result, dep
	}

	switch n := node.(type) {
	case *ast.Number:
		validateNumber(n, schema, result)
	case *ast.String:
		validateString(n, schema, result)
	case *ast.Array:
		validateArray(n, schema, result, dep, collector)
	case *ast.Object:
		validateObject(n, schema, result, dep, collector)
	}

	validateType(node, schema, result)
	if allOf, ok := schema.schemaListKw("allOf"); ok {
		applyAllOf(node, allOf, result, dep, collector)
	}
	if not, ok := schema.schemaKw("not"); ok {
		applyNot(node, not, result, collector)
	}
	if anyOf, ok := schema.schemaListKw("anyOf"); ok {
		applyAnyOf(node, anyOf, result, dep, collector)
	}
	if oneOf, ok := schema.schemaListKw("oneOf"); ok {
		applyOneOf(node, oneOf, result, dep, collector)
	}
	if ifS, ok := schema.schemaKw("if"); ok {
		thenS, _ := schema.schemaKw("then")
		elseS, _ := schema.schemaKw("else")
		applyIfThenElse(node, ifS, thenS, elseS, result, dep, collector)
	}
	validateEnum(node, schema, result)
	validateConst(node, schema, result)

	if isDeprecated(schema) {
		dep.Problems = append(dep.Problems, jsonls.Problem{
			Offset: node.Offset(), Length: node.Length(),
			Message: deprecationMessage(schema), Severity: jsonls.SeverityHint,
			Code: jsonls.CodeDeprecated, Tags: []jsonls.Tag{jsonls.TagDeprecated},
		})
	}

	collector.add(node, schema)
	return result, dep
}

// ValidateDocument runs the validator over doc.Root against sch and
// maps every problem to a Diagnostic via doc.PositionAt. A problem
// without its own severity uses defaultSeverity.
func ValidateDocument(doc *ast.Document, sch *Schema, defaultSeverity jsonls.Severity) []jsonls.Diagnostic {
	diags, _ := GetDiagnosticsAndMatchingSchemas(doc, sch, defaultSeverity, -1, nil)
	return diags
}

// GetMatchingSchemas returns every (sub)schema applied while
// validating doc.Root against sch, optionally scoped to a focusOffset
// (-1 for none) and excluding a node (nil for none).
func GetMatchingSchemas(doc *ast.Document, sch *Schema, focusOffset int, exclude ast.Node) []Tuple {
	_, tuples := GetDiagnosticsAndMatchingSchemas(doc, sch, jsonls.SeverityWarning, focusOffset, exclude)
	return tuples
}

// GetDiagnosticsAndMatchingSchemas validates doc.Root against sch in
// a single walk, returning both the mapped diagnostics and the
// matching-schema tuples.
func GetDiagnosticsAndMatchingSchemas(doc *ast.Document, sch *Schema, defaultSeverity jsonls.Severity, focusOffset int, exclude ast.Node) ([]jsonls.Diagnostic, []Tuple) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	collector := NewCollector(focusOffset, exclude)
	result, dep := validateSchema(doc.Root, sch, collector)

	diags := make([]jsonls.Diagnostic, 0, len(result.Problems)+len(dep.Problems))
	for _, p := range result.Problems {
		diags = append(diags, problemToDiagnostic(doc, p, defaultSeverity))
	}
	for _, p := range dep.Problems {
		diags = append(diags, problemToDiagnostic(doc, p, defaultSeverity))
	}
	return diags, collector.tuples()
}

func problemToDiagnostic(doc *ast.Document, p jsonls.Problem, defaultSeverity jsonls.Severity) jsonls.Diagnostic {
	sev := p.Severity
	if sev == jsonls.SeverityNone {
		sev = defaultSeverity
	}
	span := jsonls.Span{Pos: p.Offset, End: p.Offset + p.Length}
	return jsonls.Diagnostic{
		Range: jsonls.Location{
			Span:  span,
			First: doc.PositionAt(span.Pos),
			Last:  doc.PositionAt(span.End),
		},
		Message:  p.Message,
		Severity: sev,
		Code:     p.Code,
		Tags:     p.Tags,
	}
}

// validateType implements the type-agnostic `type` keyword check.
// "integer" matches a number node whose lexeme had no decimal point.
func validateType(node ast.Node, schema *Schema, result *ValidationResult) {
	raw, ok := schema.kw("type")
	if !ok {
		return
	}
	want := typeTagsOf(raw)
	if len(want) == 0 || typeMatches(node, want) {
		return
	}
	var fallback string
	if len(want) == 1 {
		fallback = fmt.Sprintf("Incorrect type. Expected %q.", want[0])
	} else {
		quoted := make([]string, len(want))
		for i, w := range want {
			quoted[i] = strconv.Quote(w)
		}
		fallback = fmt.Sprintf("Incorrect type. Expected one of %s.", strings.Join(quoted, ", "))
	}
	msg := schema.overrideMessage(fallback, "errorMessage")
	result.addProblem(node.Span(), msg, jsonls.CodeNone)
}

func typeTagsOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func typeMatches(node ast.Node, want []string) bool {
	for _, w := range want {
		switch w {
		case "null":
			if node.Kind() == ast.KindNull {
				return true
			}
		case "boolean":
			if node.Kind() == ast.KindBool {
				return true
			}
		case "object":
			if node.Kind() == ast.KindObject {
				return true
			}
		case "array":
			if node.Kind() == ast.KindArray {
				return true
			}
		case "string":
			if node.Kind() == ast.KindString {
				return true
			}
		case "number":
			if node.Kind() == ast.KindNumber {
				return true
			}
		case "integer":
			if n, ok := node.(*ast.Number); ok && n.IsInteger {
				return true
			}
		}
	}
	return false
}

// validateEnum and validateConst implement the `enum` and `const`
// keywords by deep equality against the node's projected value.
func validateEnum(node ast.Node, schema *Schema, result *ValidationResult) {
	raw, ok := schema.kw("enum")
	if !ok {
		return
	}
	list, ok := raw.([]any)
	if !ok {
		return
	}
	val := ast.Value(node)
	for _, cand := range list {
		if ast.DeepEqual(val, cand) {
			result.EnumValueMatch = true
			result.EnumValues = list
			return
		}
	}
	result.EnumValues = list
	result.Problems = append(result.Problems, jsonls.Problem{
		Offset: node.Offset(), Length: node.Length(),
		Message: enumMismatchMessage(list), Code: jsonls.CodeEnumValueMismatch,
	})
}

func validateConst(node ast.Node, schema *Schema, result *ValidationResult) {
	raw, ok := schema.kw("const")
	if !ok {
		return
	}
	val := ast.Value(node)
	if ast.DeepEqual(val, raw) {
		result.EnumValueMatch = true
		result.EnumValues = []any{raw}
		return
	}
	result.EnumValues = []any{raw}
	result.Problems = append(result.Problems, jsonls.Problem{
		Offset: node.Offset(), Length: node.Length(),
		Message: enumMismatchMessage([]any{raw}), Code: jsonls.CodeEnumValueMismatch,
	})
}

// validateNumber implements the numeric keywords: multipleOf and the
// four bounds. minimum/maximum are inclusive unless the paired
// exclusiveMinimum/exclusiveMaximum is boolean true (the Draft-04
// form); a numeric exclusiveMinimum/exclusiveMaximum (Draft-06+) is
// an independent exclusive bound. Both forms are honored at once.
func validateNumber(n *ast.Number, schema *Schema, result *ValidationResult) {
	v := n.Value

	if divisor, ok := schema.floatKw("multipleOf"); ok {
		if !isMultipleOf(n.Text, divisor) {
			result.addProblem(n.Span(), fmt.Sprintf("Value is not divisible by %s.", formatNumber(divisor)), jsonls.CodeNone)
		}
	}

	if exMin, ok := schema.floatKw("exclusiveMinimum"); ok {
		if v <= exMin {
			result.addProblem(n.Span(), fmt.Sprintf("Value is below the exclusive minimum of %s.", formatNumber(exMin)), jsonls.CodeNone)
		}
	}
	if minimum, ok := schema.floatKw("minimum"); ok {
		exclusive, _ := schema.boolKw("exclusiveMinimum")
		if exclusive {
			if v <= minimum {
				result.addProblem(n.Span(), fmt.Sprintf("Value is below the exclusive minimum of %s.", formatNumber(minimum)), jsonls.CodeNone)
			}
		} else if v < minimum {
			result.addProblem(n.Span(), fmt.Sprintf("Value is below the minimum of %s.", formatNumber(minimum)), jsonls.CodeNone)
		}
	}

	if exMax, ok := schema.floatKw("exclusiveMaximum"); ok {
		if v >= exMax {
			result.addProblem(n.Span(), fmt.Sprintf("Value is above the exclusive maximum of %s.", formatNumber(exMax)), jsonls.CodeNone)
		}
	}
	if maximum, ok := schema.floatKw("maximum"); ok {
		exclusive, _ := schema.boolKw("exclusiveMaximum")
		if exclusive {
			if v >= maximum {
				result.addProblem(n.Span(), fmt.Sprintf("Value is above the exclusive maximum of %s.", formatNumber(maximum)), jsonls.CodeNone)
			}
		} else if v > maximum {
			result.addProblem(n.Span(), fmt.Sprintf("Value is above the maximum of %s.", formatNumber(maximum)), jsonls.CodeNone)
		}
	}
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// isMultipleOf reports whether the number whose lexeme is text is an
// integer multiple of divisor. It decomposes both into a decimal
// mantissa and scale and compares on an aligned integer basis, to
// avoid the false negatives floating-point division gives for values
// like 0.1.
func isMultipleOf(text string, divisor float64) bool {
	vMantissa, vScale, ok1 := decompose(text)
	dMantissa, dScale, ok2 := decompose(strconv.FormatFloat(divisor, 'f', -1, 64))
	if !ok1 || !ok2 || dMantissa == 0 {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || divisor == 0 {
			return true
		}
		q := v / divisor
		return q == math.Trunc(q)
	}
	scale := vScale
	if dScale > scale {
		scale = dScale
	}
	vm := vMantissa * pow10(scale-vScale)
	dm := dMantissa * pow10(scale-dScale)
	if dm == 0 {
		return true
	}
	return vm%dm == 0
}

func pow10(n int) int64 {
	r := int64(1)
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

var decimalPattern = regexp.MustCompile(`^(-?\d+)(\.\d+)?([eE][+-]?\d+)?$`)

// decompose splits a numeric lexeme into an integer mantissa and a
// base-10 scale such that value == mantissa * 10^-scale.
func decompose(text string) (mantissa int64, scale int, ok bool) {
	m := decimalPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	digits, fracPart, expPart := m[1], m[2], m[3]
	fracDigits := 0
	if fracPart != "" {
		digits += fracPart[1:]
		fracDigits = len(fracPart) - 1
	}
	exp := 0
	if expPart != "" {
		e, err := strconv.Atoi(expPart[1:])
		if err != nil {
			return 0, 0, false
		}
		exp = e
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return v, fracDigits - exp, true
}

// validateString implements the string keywords. minLength and
// maxLength count UTF-16 code units, not bytes or runes.
func validateString(s *ast.String, schema *Schema, result *ValidationResult) {
	length := ast.UTF16Len(s.Value)
	if minLen, ok := schema.floatKw("minLength"); ok && length < int(minLen) {
		result.addProblem(s.Span(), fmt.Sprintf("String is shorter than the minimum length of %d.", int(minLen)), jsonls.CodeNone)
	}
	if maxLen, ok := schema.floatKw("maxLength"); ok && length > int(maxLen) {
		result.addProblem(s.Span(), fmt.Sprintf("String is longer than the maximum length of %d.", int(maxLen)), jsonls.CodeNone)
	}
	if pattern, ok := schema.stringKw("pattern"); ok {
		if re := schema.compiledPattern(pattern); re != nil && !re.MatchString(s.Value) {
			fallback := fmt.Sprintf("String does not match the pattern of %q.", pattern)
			msg := schema.overrideMessage(fallback, "patternErrorMessage", "errorMessage")
			result.addProblem(s.Span(), msg, jsonls.CodeNone)
		}
	}
	if format, ok := schema.stringKw("format"); ok {
		if msg, bad := checkFormat(format, s.Value); bad {
			result.addProblem(s.Span(), msg, jsonls.CodeNone)
		}
	}
}

// validateArray implements the array keywords: items (single-schema
// and tuple forms), additionalItems, contains, minItems, maxItems,
// and uniqueItems.
func validateArray(a *ast.Array, schema *Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	n := len(a.Items)

	if single, list, ok := schema.itemsKw(); ok {
		if list != nil {
			for i, item := range a.Items {
				if i >= len(list) {
					break
				}
				sub, subDep := validateSchema(item, list[i], collector)
				result.mergePropertyMatch(sub)
				dep.merge(subDep)
			}
			if n > len(list) {
				extra := a.Items[len(list):]
				if additional, hasAdditional := schema.schemaKw("additionalItems"); hasAdditional {
					if additional.IsBool() && !additional.BoolValue() {
						result.addProblem(a.Span(), fmt.Sprintf("Array has too many items. Expected %d or fewer.", len(list)), jsonls.CodeNone)
					} else {
						for _, item := range extra {
							sub, subDep := validateSchema(item, additional, collector)
							result.mergePropertyMatch(sub)
							dep.merge(subDep)
						}
					}
				}
			}
		} else {
			for _, item := range a.Items {
				sub, subDep := validateSchema(item, single, collector)
				result.mergePropertyMatch(sub)
				dep.merge(subDep)
			}
		}
	}

	if contains, ok := schema.schemaKw("contains"); ok {
		matched := false
		for _, item := range a.Items {
			sub, _ := validateSchema(item, contains, noopCollector{})
			if !sub.hasProblems() {
				matched = true
				break
			}
		}
		if !matched {
			result.addProblem(a.Span(), "Array does not contain a matching item.", jsonls.CodeNone)
		}
	}

	if minItems, ok := schema.floatKw("minItems"); ok && n < int(minItems) {
		result.addProblem(a.Span(), fmt.Sprintf("Array has too few items. Expected %d or more.", int(minItems)), jsonls.CodeNone)
	}
	if maxItems, ok := schema.floatKw("maxItems"); ok && n > int(maxItems) {
		result.addProblem(a.Span(), fmt.Sprintf("Array has too many items. Expected %d or fewer.", int(maxItems)), jsonls.CodeNone)
	}
	if unique, ok := schema.boolKw("uniqueItems"); ok && unique {
		values := make([]any, n)
		for i, item := range a.Items {
			values[i] = ast.Value(item)
		}
		if !ast.UniqueItems(values) {
			result.addProblem(a.Span(), "Array has duplicate items.", jsonls.CodeNone)
		}
	}
}

// validateObject implements the object keywords: required,
// properties, patternProperties, additionalProperties, size bounds,
// dependencies, and propertyNames.
func validateObject(o *ast.Object, schema *Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	seenKeys := make(map[string]*ast.Property, len(o.Properties))
	unprocessed := make(map[string]bool, len(o.Properties))
	for _, p := range o.Properties {
		if p.Key == nil {
			continue
		}
		seenKeys[p.Key.Value] = p
		unprocessed[p.Key.Value] = true
	}

	if required, ok := schema.stringListKw("required"); ok {
		for _, key := range required {
			if _, present := seenKeys[key]; !present {
				result.Problems = append(result.Problems, jsonls.Problem{
					Offset: missingPropertySpan(o).Pos, Length: missingPropertySpan(o).Len(),
					Message: fmt.Sprintf("Missing property %q.", key), Code: jsonls.CodeNone,
				})
			}
		}
	}

	if props, ok := schema.schemaMapKw("properties"); ok {
		for key, propSchema := range props {
			prop, present := seenKeys[key]
			if !present {
				continue
			}
			delete(unprocessed, key)
			if propSchema.IsBool() && !propSchema.BoolValue() {
				result.addProblem(prop.Key.Span(), fmt.Sprintf("Property %s is not allowed.", jsonls.Quote(key)), jsonls.CodeNone)
				continue
			}
			sub, subDep := validateSchema(prop.Value, propSchema, collector)
			result.mergePropertyMatch(sub)
			// propSchema's own deprecation hint belongs at the property's
			// key, not at its value: relocate the hint validateSchema
			// already produced for it rather than appending a second one.
			// Hints from deeper in propSchema (nested items/combinators)
			// keep the span of the node they actually describe.
			for i := range subDep.Problems {
				p := &subDep.Problems[i]
				if p.Code == jsonls.CodeDeprecated && p.Offset == prop.Value.Offset() && p.Length == prop.Value.Length() {
					p.Offset = prop.Key.Offset()
					p.Length = prop.Key.Length()
				}
			}
			dep.merge(subDep)
		}
	}

	if patProps, ok := schema.schemaMapKw("patternProperties"); ok {
		for pattern, propSchema := range patProps {
			re := schema.compiledPattern(pattern)
			if re == nil {
				continue
			}
			for key := range unprocessed {
				if !re.MatchString(key) {
					continue
				}
				prop := seenKeys[key]
				sub, subDep := validateSchema(prop.Value, propSchema, collector)
				result.mergePropertyMatch(sub)
				dep.merge(subDep)
				delete(unprocessed, key)
			}
		}
	}

	if additional, ok := schema.schemaKw("additionalProperties"); ok {
		for key := range unprocessed {
			prop := seenKeys[key]
			if additional.IsBool() && !additional.BoolValue() {
				result.addProblem(prop.Key.Span(), fmt.Sprintf("Property %s is not allowed.", jsonls.Quote(key)), jsonls.CodeNone)
				continue
			}
			sub, subDep := validateSchema(prop.Value, additional, collector)
			result.mergePropertyMatch(sub)
			dep.merge(subDep)
		}
	}

	if minProps, ok := schema.floatKw("minProperties"); ok && len(o.Properties) < int(minProps) {
		result.addProblem(o.Span(), fmt.Sprintf("Object has too few properties. Expected %d or more.", int(minProps)), jsonls.CodeNone)
	}
	if maxProps, ok := schema.floatKw("maxProperties"); ok && len(o.Properties) > int(maxProps) {
		result.addProblem(o.Span(), fmt.Sprintf("Object has too many properties. Expected %d or fewer.", int(maxProps)), jsonls.CodeNone)
	}

	if raw, ok := schema.kw("dependencies"); ok {
		if depMap, ok := raw.(map[string]any); ok {
			for key, depVal := range depMap {
				if _, present := seenKeys[key]; !present {
					continue
				}
				if list, isList := depVal.([]any); isList {
					for _, req := range list {
						reqKey, ok := req.(string)
						if !ok {
							continue
						}
						if _, present := seenKeys[reqKey]; !present {
							result.Problems = append(result.Problems, jsonls.Problem{
								Offset: missingPropertySpan(o).Pos, Length: missingPropertySpan(o).Len(),
								Message: fmt.Sprintf("Missing property %q.", reqKey), Code: jsonls.CodeNone,
							})
						}
					}
					continue
				}
				sub, subDep := validateSchema(o, FromAny(depVal), collector)
				result.merge(sub)
				dep.merge(subDep)
			}
		}
	}

	if names, ok := schema.schemaKw("propertyNames"); ok {
		for _, p := range o.Properties {
			if p.Key == nil {
				continue
			}
			sub, _ := validateSchema(p.Key, names, collector)
			result.mergePropertyMatch(sub)
		}
	}
}

func missingPropertySpan(o *ast.Object) jsonls.Span {
	if parentProp, ok := o.Parent().(*ast.Property); ok && parentProp.Key != nil {
		return parentProp.Key.Span()
	}
	return jsonls.Span{Pos: o.Offset(), End: o.Offset() + 1}
}
