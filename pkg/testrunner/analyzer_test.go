package testrunner

import (
	"strings"
	"testing"

	"github.com/mcptest/mcptest/pkg/pattern"
)

func TestAnalyze_KnownAliasSuggestsCanonicalOperator(t *testing.T) {
	perr := &pattern.PatternError{Path: "result.count", Message: `unknown operator "gt"`}

	suggestions := Analyze(perr, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected exactly one suggestion, got %v", suggestions)
	}
	if suggestions[0].Corrected != "greaterThan" {
		t.Errorf("expected correction to greaterThan, got %q", suggestions[0].Corrected)
	}
}

func TestAnalyze_UnknownOperatorWithNoAlias(t *testing.T) {
	perr := &pattern.PatternError{Message: `unknown operator "frobnicate"`}

	suggestions := Analyze(perr, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected exactly one suggestion, got %v", suggestions)
	}
	if suggestions[0].Corrected != "" {
		t.Errorf("expected no correction for a genuinely unknown operator, got %q", suggestions[0].Corrected)
	}
}

func TestAnalyze_NonOperatorPatternErrorYieldsNoSuggestion(t *testing.T) {
	perr := &pattern.PatternError{Message: "pattern object mixes reserved match keys with literal fields"}

	if got := Analyze(perr, nil); got != nil {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestAnalyze_NumericLiteralMismatchSuggestsNumericOperator(t *testing.T) {
	diffs := []Diff{{Path: "result.count", Expected: 5.0, Actual: 7.0, Reason: "values are not equal"}}

	suggestions := Analyze(nil, diffs)
	if len(suggestions) != 1 || suggestions[0].Kind != "typeContext" {
		t.Fatalf("expected a typeContext suggestion, got %v", suggestions)
	}
}

func TestAnalyze_NonNumericMismatchYieldsNoSuggestion(t *testing.T) {
	diffs := []Diff{{Path: "result.name", Expected: "foo", Actual: "bar", Reason: "values are not equal"}}

	if got := Analyze(nil, diffs); got != nil {
		t.Errorf("expected no suggestions for a string mismatch, got %v", got)
	}
}

func TestAliasTable_MapsToRegisteredOperatorNames(t *testing.T) {
	for _, alias := range sortedAliasKeys() {
		canonical := operatorAliases[alias]
		if canonical == "" {
			t.Errorf("alias %q maps to an empty canonical name", alias)
			continue
		}
		_, perr := pattern.Evaluate("match:"+canonical, "probe", "")
		if perr != nil && strings.Contains(perr.Message, "unknown operator") {
			t.Errorf("alias %q maps to %q, which is not a registered operator: %v", alias, canonical, perr)
		}
	}
}

func TestAnalyze_DivisibleAliasMapsToRegisteredOperator(t *testing.T) {
	perr := &pattern.PatternError{Message: `unknown operator "divisible"`}

	suggestions := Analyze(perr, nil)
	if len(suggestions) != 1 || suggestions[0].Corrected != "divisibleBy" {
		t.Fatalf("expected a correction to divisibleBy, got %v", suggestions)
	}
}
