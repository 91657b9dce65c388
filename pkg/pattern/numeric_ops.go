package pattern

import (
	"fmt"
	"math"
	"strconv"
)

func numericOperators() map[string]operatorEntry {
	return map[string]operatorEntry{
		"equals":               {arity: 1, fn: opNumEquals},
		"notEquals":            {arity: 1, fn: opNumNotEquals},
		"greaterThan":          {arity: 1, fn: opGreaterThan},
		"greaterThanOrEqual":   {arity: 1, fn: opGreaterThanOrEqual},
		"lessThan":             {arity: 1, fn: opLessThan},
		"lessThanOrEqual":      {arity: 1, fn: opLessThanOrEqual},
		"between":              {arity: 2, fn: opBetween},
		"range":                {arity: 2, fn: opBetween},
		"approximately":        {arity: 2, fn: opApproximately},
		"multipleOf":           {arity: 1, fn: opMultipleOf},
		"divisibleBy":          {arity: 1, fn: opMultipleOf},
		"decimalPlaces":        {arity: 1, fn: opDecimalPlaces},
	}
}

func numericActual(actual any) (float64, bool) {
	return asFloat(actual)
}

func parseFloatArg(arg string) (float64, *PatternError) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, &PatternError{Message: fmt.Sprintf("expected a numeric argument, got %q", arg)}
	}
	return f, nil
}

func opNumEquals(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a == n, fmt.Sprintf("%v does not equal %v", a, n), nil
}

func opNumNotEquals(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a != n, fmt.Sprintf("%v equals %v", a, n), nil
}

func opGreaterThan(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a > n, fmt.Sprintf("%v is not greater than %v", a, n), nil
}

func opGreaterThanOrEqual(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a >= n, fmt.Sprintf("%v is not >= %v", a, n), nil
}

func opLessThan(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a < n, fmt.Sprintf("%v is not less than %v", a, n), nil
}

func opLessThanOrEqual(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	return a <= n, fmt.Sprintf("%v is not <= %v", a, n), nil
}

// opBetween implements both between:MIN:MAX and its range alias, per the
// law that between:A:B is equivalent to greaterThanOrEqual:A AND
// lessThanOrEqual:B.
func opBetween(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	lo, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	hi, perr := parseFloatArg(args[1])
	if perr != nil {
		return false, "", perr
	}
	return a >= lo && a <= hi, fmt.Sprintf("%v is not between %v and %v", a, lo, hi), nil
}

func opApproximately(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	target, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	tol, perr := parseFloatArg(args[1])
	if perr != nil {
		return false, "", perr
	}
	return math.Abs(a-target) <= tol, fmt.Sprintf("%v is not within %v of %v", a, tol, target), nil
}

func opMultipleOf(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, perr := parseFloatArg(args[0])
	if perr != nil {
		return false, "", perr
	}
	if n == 0 {
		return false, "", &PatternError{Message: "multipleOf/divisibleBy argument must not be zero"}
	}
	quotient := a / n
	return quotient == math.Trunc(quotient), fmt.Sprintf("%v is not a multiple of %v", a, n), nil
}

func opDecimalPlaces(args []string, actual any) (bool, string, *PatternError) {
	a, ok := numericActual(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual)), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return false, "", &PatternError{Message: fmt.Sprintf("expected an integer argument, got %q", args[0])}
	}
	scaled := a * math.Pow10(n)
	return math.Abs(scaled-math.Round(scaled)) < 1e-9, fmt.Sprintf("%v has more than %d decimal place(s)", a, n), nil
}
