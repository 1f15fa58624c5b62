package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsonls-dev/jsonls"
	"github.com/jsonls-dev/jsonls/ast"
)

// ValidationResult accumulates the diagnostics and match-quality
// counters produced while validating one node against one schema.
type ValidationResult struct {
	Problems []jsonls.Problem

	EnumValueMatch         bool
	EnumValues             []any
	PrimaryValueMatches    int
	PropertiesValueMatches int
	PropertiesMatches      int
}

func (r *ValidationResult) hasProblems() bool { return len(r.Problems) > 0 }

func (r *ValidationResult) addProblem(span jsonls.Span, message string, code jsonls.Code) {
	r.Problems = append(r.Problems, jsonls.Problem{
		Offset: span.Pos, Length: span.Len(), Message: message, Code: code,
	})
}

// compare reports whether r ranks strictly better (positive), worse
// (negative), or the same (zero) as other as a candidate "best match"
// among anyOf/oneOf alternatives: having no problems
// wins; then enum match; then primary value matches; then
// properties-value matches; then properties matches.
func (r *ValidationResult) compare(other *ValidationResult) int {
	rp, op := r.hasProblems(), other.hasProblems()
	if rp != op {
		if rp {
			return -1
		}
		return 1
	}
	if r.EnumValueMatch != other.EnumValueMatch {
		if r.EnumValueMatch {
			return 1
		}
		return -1
	}
	if d := r.PrimaryValueMatches - other.PrimaryValueMatches; d != 0 {
		return d
	}
	if d := r.PropertiesValueMatches - other.PropertiesValueMatches; d != 0 {
		return d
	}
	return r.PropertiesMatches - other.PropertiesMatches
}

// merge folds sub's problems and counters into r wholesale, used by
// allOf and by anyOf/oneOf once a best (or tied-best) alternative is
// chosen.
func (r *ValidationResult) merge(sub *ValidationResult) {
	r.Problems = append(r.Problems, sub.Problems...)
	r.PrimaryValueMatches += sub.PrimaryValueMatches
	r.PropertiesValueMatches += sub.PropertiesValueMatches
	r.PropertiesMatches += sub.PropertiesMatches
}

// mergePropertyMatch folds the result of validating one property
// value (or one array item) into the parent's counters.
func (r *ValidationResult) mergePropertyMatch(sub *ValidationResult) {
	r.Problems = append(r.Problems, sub.Problems...)
	r.PropertiesMatches++
	if sub.EnumValueMatch || (!sub.hasProblems() && sub.PropertiesMatches > 0) {
		r.PropertiesValueMatches++
	}
	if sub.EnumValueMatch && len(sub.EnumValues) == 1 {
		r.PrimaryValueMatches++
	}
}

// DeprecationResult accumulates the Hint diagnostics produced by
// deprecated schemas encountered while validating.
type DeprecationResult struct {
	Problems []jsonls.Problem
}

func (d *DeprecationResult) merge(sub *DeprecationResult) {
	d.Problems = append(d.Problems, sub.Problems...)
}

// mergeEnumValues unions the enum candidate lists of two tied,
// failing alternatives and rewrites their "Valid values" message to
// the union, so the reported message reflects every acceptable value
// across alternatives.
func mergeEnumValues(a, b *ValidationResult) {
	if len(a.EnumValues) == 0 || len(b.EnumValues) == 0 {
		return
	}
	union := append(append([]any{}, a.EnumValues...), b.EnumValues...)
	msg := enumMismatchMessage(union)
	a.EnumValues, b.EnumValues = union, union
	for i := range a.Problems {
		if a.Problems[i].Code == jsonls.CodeEnumValueMismatch {
			a.Problems[i].Message = msg
		}
	}
	for i := range b.Problems {
		if b.Problems[i].Code == jsonls.CodeEnumValueMismatch {
			b.Problems[i].Message = msg
		}
	}
}

func enumMismatchMessage(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if b, err := json.Marshal(v); err == nil {
			parts[i] = string(b)
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return "Value is not accepted. Valid values: " + strings.Join(parts, ", ") + "."
}

// testAlternatives trial-validates node against every alternative
// under its own sub-collector and tracks the best-ranked candidate.
// It reports how many alternatives matched without problems, which
// oneOf uses to detect an ambiguous match.
func testAlternatives(node ast.Node, alternatives []*Schema, collector MatchingSchemas) (best *ValidationResult, bestDep *DeprecationResult, bestSub MatchingSchemas, matches int) {
	for _, alt := range alternatives {
		sub := collector.sub()
		res, resDep := validateSchema(node, alt, sub)
		if !res.hasProblems() {
			matches++
		}
		if best == nil {
			best, bestDep, bestSub = res, resDep, sub
			continue
		}
		switch {
		case !best.hasProblems() && !res.hasProblems():
			best.merge(res)
			bestDep.merge(resDep)
			bestSub.merge(sub)
		case best.hasProblems() && res.hasProblems() && best.compare(res) == 0:
			mergeEnumValues(best, res)
			if res.compare(best) > 0 {
				best, bestDep, bestSub = res, resDep, sub
			}
		default:
			if res.compare(best) > 0 {
				best, bestDep, bestSub = res, resDep, sub
			}
		}
	}
	if best == nil {
		best, bestDep, bestSub = &ValidationResult{}, &DeprecationResult{}, collector.sub()
	}
	return best, bestDep, bestSub, matches
}

func applyAllOf(node ast.Node, alts []*Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	for _, alt := range alts {
		sub, subDep := validateSchema(node, alt, collector)
		result.merge(sub)
		dep.merge(subDep)
	}
}

func applyAnyOf(node ast.Node, alts []*Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	best, bestDep, bestSub, _ := testAlternatives(node, alts, collector)
	result.merge(best)
	dep.merge(bestDep)
	collector.merge(bestSub)
}

func applyOneOf(node ast.Node, alts []*Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	best, bestDep, bestSub, matches := testAlternatives(node, alts, collector)
	if matches > 1 {
		result.addProblem(jsonls.Span{Pos: node.Offset(), End: node.Offset() + 1},
			"Matches multiple schemas when only one must validate.", jsonls.CodeNone)
	}
	result.merge(best)
	dep.merge(bestDep)
	collector.merge(bestSub)
}

func applyNot(node ast.Node, not *Schema, result *ValidationResult, collector MatchingSchemas) {
	sub := collector.sub()
	trial, _ := validateSchema(node, not, sub)
	if !trial.hasProblems() {
		result.addProblem(node.Span(), "Matches a schema that is not allowed.", jsonls.CodeNone)
	}
	collector.addInverted(sub.tuples())
}

func applyIfThenElse(node ast.Node, ifS, thenS, elseS *Schema, result *ValidationResult, dep *DeprecationResult, collector MatchingSchemas) {
	sub := collector.sub()
	trial, _ := validateSchema(node, ifS, sub)
	collector.merge(sub)
	if !trial.hasProblems() {
		if thenS != nil {
			branch, branchDep := validateSchema(node, thenS, collector)
			result.merge(branch)
			dep.merge(branchDep)
		}
	} else if elseS != nil {
		branch, branchDep := validateSchema(node, elseS, collector)
		result.merge(branch)
		dep.merge(branchDep)
	}
}
