package pattern

import (
	"fmt"
	"math"
	"strconv"
)

func typeOperators() map[string]operatorEntry {
	return map[string]operatorEntry{
		"type":   {arity: 1, fn: opType},
		"exists": {arity: 0, fn: opExists},
		"length": {arity: 1, fn: opLength},
		"count":  {arity: 1, fn: opCount},
	}
}

// opType implements type:T for T in {string, number, integer, boolean,
// object, array, null}. "integer" is a refinement of "number": a
// decoded JSON number with no fractional component.
func opType(args []string, actual any) (bool, string, *PatternError) {
	if args[0] == "integer" {
		f, ok := asFloat(actual)
		isInt := ok && f == math.Trunc(f)
		return isInt, fmt.Sprintf("expected an integer, got %s", typeName(actual)), nil
	}
	got := typeName(actual)
	return got == args[0], fmt.Sprintf("expected type %q, got %q", args[0], got), nil
}

func opExists(args []string, actual any) (bool, string, *PatternError) {
	return actual != nil, "value is null or absent", nil
}

// opLength handles length:N against either a string or an array,
// matching whichever the actual value happens to be.
func opLength(args []string, actual any) (bool, string, *PatternError) {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return false, "", &PatternError{Message: fmt.Sprintf("expected an integer argument, got %q", args[0])}
	}
	switch v := actual.(type) {
	case string:
		return len(v) == n, fmt.Sprintf("string length %d does not equal %d", len(v), n), nil
	case []any:
		return len(v) == n, fmt.Sprintf("array length %d does not equal %d", len(v), n), nil
	default:
		return false, fmt.Sprintf("length: expected a string or array, got %s", typeName(actual)), nil
	}
}

func opCount(args []string, actual any) (bool, string, *PatternError) {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return false, "", &PatternError{Message: fmt.Sprintf("expected an integer argument, got %q", args[0])}
	}
	obj, ok := actual.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("count: expected an object, got %s", typeName(actual)), nil
	}
	return len(obj) == n, fmt.Sprintf("key count %d does not equal %d", len(obj), n), nil
}
