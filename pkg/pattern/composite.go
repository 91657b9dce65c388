package pattern

import (
	"fmt"
	"strings"
)

// reservedKeys are the composite-operator markers recognized inside a
// pattern object. A pattern object may use these keys, or plain literal
// field names, but never both at once.
var reservedKeys = map[string]struct{}{
	"partial":       {},
	"extractField":  {},
	"value":         {},
	"arrayElements": {},
	"crossField":    {},
}

// splitReservedKeys partitions a pattern object's keys into composite
// markers and literal field names.
func splitReservedKeys(exp map[string]any) (reserved, literal map[string]any) {
	reserved = map[string]any{}
	literal = map[string]any{}
	for k, v := range exp {
		if _, ok := reservedKeys[k]; ok {
			reserved[k] = v
		} else {
			literal[k] = v
		}
	}
	return reserved, literal
}

// evalComposite dispatches a reserved-key pattern object to the
// composite operator it names: partial, extractField+value,
// arrayElements, or crossField.
func evalComposite(exp map[string]any, actual any, path string) (Result, *PatternError) {
	reserved, _ := splitReservedKeys(exp)

	_, hasPartial := reserved["partial"]
	_, hasExtract := reserved["extractField"]
	_, hasValue := reserved["value"]
	_, hasArrayElements := reserved["arrayElements"]
	_, hasCrossField := reserved["crossField"]

	switch {
	case hasPartial && len(reserved) == 1:
		return evalPartial(reserved["partial"], actual, path)
	case hasExtract && hasValue && len(reserved) == 2:
		return evalExtractField(reserved["extractField"], reserved["value"], actual, path)
	case hasArrayElements && len(reserved) == 1:
		return evalArrayElements(reserved["arrayElements"], actual, path)
	case hasCrossField && len(reserved) == 1:
		return evalCrossField(reserved["crossField"], actual, path)
	case hasExtract != hasValue:
		return Result{}, &PatternError{Path: path, Message: "extractField and value must be used together"}
	default:
		return Result{}, &PatternError{Path: path, Message: "pattern object combines incompatible composite keys"}
	}
}

// evalPartial matches a sub-pattern object against actual's fields,
// exactly like a literal pattern object: only the fields named in
// subPattern are checked, extra fields on actual are ignored.
func evalPartial(subPattern any, actual any, path string) (Result, *PatternError) {
	fields, ok := subPattern.(map[string]any)
	if !ok {
		return Result{}, &PatternError{Path: path, Message: "partial requires an object of fields to check"}
	}
	actualMap, ok := actual.(map[string]any)
	if !ok {
		return Mismatch(path, subPattern, actual, fmt.Sprintf("expected an object, got %s", typeName(actual))), nil
	}
	for key, subExpected := range fields {
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

// evalExtractField resolves a dot/bracket/wildcard path against actual,
// then evaluates value as a pattern against whatever it resolved to.
func evalExtractField(fieldPath any, value any, actual any, path string) (Result, *PatternError) {
	fp, ok := fieldPath.(string)
	if !ok {
		return Result{}, &PatternError{Path: path, Message: "extractField must be a string path"}
	}
	extracted, ok := resolvePath(actual, fp)
	if !ok {
		return Mismatch(joinPath(path, fp), value, nil, fmt.Sprintf("path %q did not resolve against the actual value", fp)), nil
	}
	return Evaluate(value, extracted, joinPath(path, fp))
}

// evalArrayElements requires every element of the actual array to
// satisfy the same sub-pattern.
func evalArrayElements(subPattern any, actual any, path string) (Result, *PatternError) {
	arr, ok := actual.([]any)
	if !ok {
		return Mismatch(path, subPattern, actual, fmt.Sprintf("expected an array, got %s", typeName(actual))), nil
	}
	for i, el := range arr {
		subPath := fmt.Sprintf("%s[%d]", path, i)
		res, perr := Evaluate(subPattern, el, subPath)
		if perr != nil {
			return Result{}, perr
		}
		if !res.Ok {
			return res, nil
		}
	}
	return Match(path), nil
}

var crossFieldOps = []string{"<=", ">=", "==", "!=", "<", ">"}

// evalCrossField evaluates a "LHS OP RHS" expression, where LHS and RHS
// are paths resolved against actual and OP compares the two resolved
// values by deep equality for == and !=, and as compareOrdered does for
// the ordering operators.
func evalCrossField(expr any, actual any, path string) (Result, *PatternError) {
	exprStr, ok := expr.(string)
	if !ok {
		return Result{}, &PatternError{Path: path, Message: "crossField must be a string expression"}
	}

	var op, lhsPath, rhsPath string
	for _, candidate := range crossFieldOps {
		if idx := strings.Index(exprStr, " "+candidate+" "); idx >= 0 {
			lhsPath = strings.TrimSpace(exprStr[:idx])
			rhsPath = strings.TrimSpace(exprStr[idx+len(candidate)+2:])
			op = candidate
			break
		}
	}
	if op == "" {
		return Result{}, &PatternError{Path: path, Message: fmt.Sprintf("crossField expression %q is not of the form \"LHS OP RHS\"", exprStr)}
	}

	lhs, ok := resolvePath(actual, lhsPath)
	if !ok {
		return Mismatch(path, exprStr, nil, fmt.Sprintf("crossField left-hand path %q did not resolve", lhsPath)), nil
	}
	rhs, ok := resolvePath(actual, rhsPath)
	if !ok {
		return Mismatch(path, exprStr, nil, fmt.Sprintf("crossField right-hand path %q did not resolve", rhsPath)), nil
	}

	var matched bool
	switch op {
	case "==":
		matched = deepEqual(lhs, rhs)
	case "!=":
		matched = !deepEqual(lhs, rhs)
	default:
		cmp, perr := compareOrdered(lhs, rhs, op, path)
		if perr != nil {
			return Result{}, perr
		}
		matched = cmp
	}

	if matched {
		return Match(path), nil
	}
	return Mismatch(path, exprStr, fmt.Sprintf("%v %s %v", lhs, op, rhs), "cross-field comparison failed"), nil
}

// compareOrdered evaluates a <, <=, > or >= comparison: numerically when
// both operands parse as numbers, lexicographically when both are
// plain strings.
func compareOrdered(lhs, rhs any, op, path string) (bool, *PatternError) {
	lnum, rnum := lhs, rhs
	if s, ok := lhs.(string); ok {
		lnum = coerceScalar(s)
	}
	if s, ok := rhs.(string); ok {
		rnum = coerceScalar(s)
	}
	if lf, lok := asFloat(lnum); lok {
		if rf, rok := asFloat(rnum); rok {
			switch op {
			case "<":
				return lf < rf, nil
			case "<=":
				return lf <= rf, nil
			case ">":
				return lf > rf, nil
			default:
				return lf >= rf, nil
			}
		}
	}

	ls, lok := asString(lhs)
	rs, rok := asString(rhs)
	if !lok || !rok {
		return false, &PatternError{Path: path, Message: fmt.Sprintf("crossField comparison %q requires both operands to be numbers or both to be strings", op)}
	}
	cmp := strings.Compare(ls, rs)
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}
