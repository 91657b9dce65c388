// Package pattern evaluates the assertion DSL used in test suites'
// expect.response and expect.stderr trees against an actual JSON value
// decoded from a server's reply: deep equality for plain literals, plus
// a family of typed match:OP operators, tokenized behind a single
// "match:" prefix and nested anywhere inside the expected tree.
package pattern

import (
	"fmt"
	"reflect"
)

// Result is the outcome of evaluating a pattern tree against a value.
type Result struct {
	Ok       bool
	Path     string
	Expected any
	Actual   any
	Reason   string
}

// Mismatch builds a failing Result.
func Mismatch(path string, expected, actual any, reason string) Result {
	return Result{Path: path, Expected: expected, Actual: actual, Reason: reason}
}

// Match builds a passing Result.
func Match(path string) Result {
	return Result{Ok: true, Path: path}
}

// Evaluate compares actual against the expected pattern tree rooted at
// path (use "" for the root). It returns a *PatternError, rather than a
// failing Result, when the pattern tree itself is malformed: unknown
// operator, wrong arity, invalid regex, or a map mixing reserved and
// literal keys.
func Evaluate(expected, actual any, path string) (Result, *PatternError) {
	switch exp := expected.(type) {
	case string:
		if tok, ok := parseToken(exp); ok {
			return evalToken(tok, actual, path)
		}
		return equalityResult(exp, actual, path), nil

	case map[string]any:
		return evalObject(exp, actual, path)

	case []any:
		return evalArray(exp, actual, path)

	default:
		return equalityResult(exp, actual, path), nil
	}
}

// evalObject handles a map[string]any pattern node: either a composite
// operator (one of the reserved keys) or a literal field-by-field match.
func evalObject(exp map[string]any, actual any, path string) (Result, *PatternError) {
	reserved, literal := splitReservedKeys(exp)
	if len(reserved) > 0 && len(literal) > 0 {
		return Result{}, &PatternError{Path: path, Message: "pattern object mixes reserved match keys with literal fields"}
	}
	if len(reserved) > 0 {
		return evalComposite(exp, actual, path)
	}

	actualMap, ok := actual.(map[string]any)
	if !ok {
		return Mismatch(path, exp, actual, fmt.Sprintf("expected an object, got %s", typeName(actual))), nil
	}

	for key, subExpected := range exp {
		subPath := joinPath(path, key)
		subActual, present := actualMap[key]
		if !present {
			return Mismatch(subPath, subExpected, nil, "field missing from actual object"), nil
		}
		res, perr := Evaluate(subExpected, subActual, subPath)
		if perr != nil {
			return Result{}, perr
		}
		if !res.Ok {
			return res, nil
		}
	}
	return Match(path), nil
}

func evalArray(exp []any, actual any, path string) (Result, *PatternError) {
	actualArr, ok := actual.([]any)
	if !ok {
		return Mismatch(path, exp, actual, fmt.Sprintf("expected an array, got %s", typeName(actual))), nil
	}
	if len(exp) != len(actualArr) {
		return Mismatch(path, len(exp), len(actualArr), "array length mismatch"), nil
	}
	for i, subExpected := range exp {
		subPath := fmt.Sprintf("%s[%d]", path, i)
		res, perr := Evaluate(subExpected, actualArr[i], subPath)
		if perr != nil {
			return Result{}, perr
		}
		if !res.Ok {
			return res, nil
		}
	}
	return Match(path), nil
}

func equalityResult(expected, actual any, path string) Result {
	if deepEqual(expected, actual) {
		return Match(path)
	}
	return Mismatch(path, expected, actual, "values are not equal")
}

// deepEqual compares two decoded-JSON values. Numbers always compare as
// float64 (no integer/float distinction), matching encoding/json's
// default interface{} decoding.
func deepEqual(a, b any) bool {
	af, aIsFloat := asFloat(a)
	bf, bIsFloat := asFloat(b)
	if aIsFloat && bIsFloat {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
