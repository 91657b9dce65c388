package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

func stringOperators() map[string]operatorEntry {
	return map[string]operatorEntry{
		"contains":          {arity: 1, fn: opStringContains},
		"startsWith":        {arity: 1, fn: opStartsWith},
		"endsWith":          {arity: 1, fn: opEndsWith},
		"equalsIgnoreCase":  {arity: 1, fn: opEqualsIgnoreCase},
		"containsIgnoreCase": {arity: 1, fn: opContainsIgnoreCase},
		"regex":             {arity: 1, fn: opRegex},

		"stringLength":                   {arity: 1, fn: opStringLength},
		"stringLengthLessThan":           {arity: 1, fn: opStringLengthLessThan},
		"stringLengthGreaterThan":        {arity: 1, fn: opStringLengthGreaterThan},
		"stringLengthGreaterThanOrEqual": {arity: 1, fn: opStringLengthGreaterThanOrEqual},
		"stringLengthLessThanOrEqual":    {arity: 1, fn: opStringLengthLessThanOrEqual},
		"stringLengthBetween":            {arity: 2, fn: opStringLengthBetween},

		"stringEmpty":    {arity: 0, fn: opStringEmpty},
		"stringNotEmpty": {arity: 0, fn: opStringNotEmpty},
	}
}

func asString(actual any) (string, bool) {
	s, ok := actual.(string)
	return s, ok
}

func opStringContains(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return strings.Contains(s, args[0]), fmt.Sprintf("%q does not contain %q", s, args[0]), nil
}

func opStartsWith(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return strings.HasPrefix(s, args[0]), fmt.Sprintf("%q does not start with %q", s, args[0]), nil
}

func opEndsWith(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return strings.HasSuffix(s, args[0]), fmt.Sprintf("%q does not end with %q", s, args[0]), nil
}

func opEqualsIgnoreCase(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return strings.EqualFold(s, args[0]), fmt.Sprintf("%q does not equal %q (ignoring case)", s, args[0]), nil
}

func opContainsIgnoreCase(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(args[0])), fmt.Sprintf("%q does not contain %q (ignoring case)", s, args[0]), nil
}

func opRegex(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	re, err := regexp2.Compile(args[0], regexp2.None)
	if err != nil {
		return false, "", &PatternError{Message: fmt.Sprintf("invalid regex %q: %v", args[0], err)}
	}
	matched, err := re.MatchString(s)
	if err != nil {
		return false, "", &PatternError{Message: fmt.Sprintf("regex %q failed to evaluate: %v", args[0], err)}
	}
	return matched, fmt.Sprintf("%q does not match regex %q", s, args[0]), nil
}

func parseIntArg(arg string) (int, *PatternError) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, &PatternError{Message: fmt.Sprintf("expected an integer argument, got %q", arg)}
	}
	return n, nil
}

func opStringLength(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	n, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return len(s) == n, fmt.Sprintf("string length %d does not equal %d", len(s), n), nil
}

func opStringLengthLessThan(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	n, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return len(s) < n, fmt.Sprintf("string length %d is not less than %d", len(s), n), nil
}

func opStringLengthGreaterThan(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	n, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return len(s) > n, fmt.Sprintf("string length %d is not greater than %d", len(s), n), nil
}

func opStringLengthGreaterThanOrEqual(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	n, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return len(s) >= n, fmt.Sprintf("string length %d is not >= %d", len(s), n), nil
}

func opStringLengthLessThanOrEqual(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	n, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return len(s) <= n, fmt.Sprintf("string length %d is not <= %d", len(s), n), nil
}

func opStringLengthBetween(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	lo, perr := parseIntArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	hi, perr := parseIntArg(args[1])
	if perr != nil {
		return false, "", perr
	}
	return len(s) >= lo && len(s) <= hi, fmt.Sprintf("string length %d is not between %d and %d", len(s), lo, hi), nil
}

func opStringEmpty(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return s == "", fmt.Sprintf("%q is not empty", s), nil
}

func opStringNotEmpty(args []string, actual any) (bool, string, *PatternError) {
	s, ok := asString(actual)
	if !ok {
		return false, fmt.Sprintf("expected a string, got %s", typeName(actual)), nil
	}
	return s != "", "string is empty", nil
}
