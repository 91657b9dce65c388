package testrunner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcptest/mcptest/pkg/pattern"
)

// operatorAliases maps common typos and aliases from other assertion
// frameworks onto this engine's canonical operator names.
var operatorAliases = map[string]string{
	"gt":                   "greaterThan",
	"gte":                  "greaterThanOrEqual",
	"lt":                   "lessThan",
	"lte":                  "lessThanOrEqual",
	"eq":                   "equals",
	"ne":                   "notEquals",
	"neq":                  "notEquals",
	"arrayHas":             "arrayContains",
	"includes":             "contains",
	"len":                  "length",
	"size":                 "length",
	"regexp":               "regex",
	"isEmpty":              "stringEmpty",
	"notEmpty":             "stringNotEmpty",
	"startswith":           "startsWith",
	"endswith":             "endsWith",
	"equalsignorecase":     "equalsIgnoreCase",
	"containsignorecase":   "containsIgnoreCase",
	"divisible":            "divisibleBy",
	"roundto":              "decimalPlaces",
}

// Analyze produces failure suggestions for a PatternError (malformed
// test) or a slice of Mismatch diffs (well-formed but failing test). It
// is pure and stateless: given the same inputs it always returns the
// same suggestions.
func Analyze(perr *pattern.PatternError, diffs []Diff) []Suggestion {
	if perr != nil {
		return analyzePatternError(perr)
	}
	var out []Suggestion
	for _, d := range diffs {
		out = append(out, analyzeDiff(d)...)
	}
	return out
}

func analyzePatternError(perr *pattern.PatternError) []Suggestion {
	const prefix = "unknown operator "
	idx := strings.Index(perr.Message, prefix)
	if idx < 0 {
		return nil
	}
	quoted := perr.Message[idx+len(prefix):]
	op := strings.Trim(quoted, `"`)

	if canon, ok := lookupAlias(op); ok {
		return []Suggestion{{
			Kind:      "unknownOperator",
			Severity:  "error",
			Original:  op,
			Corrected: canon,
			Rationale: fmt.Sprintf("%q is not a recognized operator; did you mean %q?", op, canon),
		}}
	}
	return []Suggestion{{
		Kind:      "unknownOperator",
		Severity:  "error",
		Original:  op,
		Rationale: fmt.Sprintf("%q is not a recognized operator; see the operator catalog for valid names", op),
	}}
}

func lookupAlias(op string) (string, bool) {
	if canon, ok := operatorAliases[op]; ok {
		return canon, true
	}
	canon, ok := operatorAliases[strings.ToLower(op)]
	return canon, ok
}

// analyzeDiff proposes a type-context suggestion for a plain-equality
// mismatch against a numeric actual value: a literal-number expectation
// that will never match a server's dynamic numeric field is better
// expressed as a numeric match: operator.
func analyzeDiff(d Diff) []Suggestion {
	if d.Reason != "values are not equal" {
		return nil
	}
	if _, ok := d.Actual.(float64); !ok {
		return nil
	}
	if _, ok := d.Expected.(float64); !ok {
		return nil
	}
	return []Suggestion{{
		Kind:      "typeContext",
		Severity:  "info",
		Original:  fmt.Sprintf("%v", d.Expected),
		Rationale: "comparing against a dynamic numeric value by literal equality is brittle; consider match:approximately or match:greaterThan/lessThan",
	}}
}

// sortedAliasKeys is exposed for tests asserting the alias table's shape
// without hardcoding map iteration order.
func sortedAliasKeys() []string {
	keys := make([]string, 0, len(operatorAliases))
	for k := range operatorAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
