package pattern

import (
	"fmt"
	"strconv"
	"time"
)

func dateOperators() map[string]operatorEntry {
	return map[string]operatorEntry{
		"dateValid":   {arity: 0, fn: opDateValid},
		"dateAfter":   {arity: 1, fn: opDateAfter},
		"dateBefore":  {arity: 1, fn: opDateBefore},
		"dateBetween": {arity: 2, fn: opDateBetween},
		"dateAge":     {arity: 1, fn: opDateAge},
		"dateEquals":  {arity: 1, fn: opDateEquals},
		"dateFormat":  {arity: 1, fn: opDateFormat},
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseDate accepts an ISO-8601 (date or datetime), a US-style M/D/Y date,
// or a millisecond/second Unix timestamp encoded as a JSON number or a
// numeric string.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parseUnixLike(ms), true
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return parseUnixLike(int64(t)), true
	default:
		return time.Time{}, false
	}
}

func parseUnixLike(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func opDateValid(args []string, actual any) (bool, string, *PatternError) {
	_, ok := parseDate(actual)
	return ok, fmt.Sprintf("%v is not a recognizable date", actual), nil
}

func opDateAfter(args []string, actual any) (bool, string, *PatternError) {
	a, ok := parseDate(actual)
	if !ok {
		return false, fmt.Sprintf("%v is not a recognizable date", actual), nil
	}
	ref, ok := parseDate(args[0])
	if !ok {
		return false, "", &PatternError{Message: fmt.Sprintf("%q is not a recognizable date", args[0])}
	}
	return a.After(ref), fmt.Sprintf("%s is not after %s", a, ref), nil
}

func opDateBefore(args []string, actual any) (bool, string, *PatternError) {
	a, ok := parseDate(actual)
	if !ok {
		return false, fmt.Sprintf("%v is not a recognizable date", actual), nil
	}
	ref, ok := parseDate(args[0])
	if !ok {
		return false, "", &PatternError{Message: fmt.Sprintf("%q is not a recognizable date", args[0])}
	}
	return a.Before(ref), fmt.Sprintf("%s is not before %s", a, ref), nil
}

func opDateBetween(args []string, actual any) (bool, string, *PatternError) {
	a, ok := parseDate(actual)
	if !ok {
		return false, fmt.Sprintf("%v is not a recognizable date", actual), nil
	}
	lo, ok := parseDate(args[0])
	if !ok {
		return false, "", &PatternError{Message: fmt.Sprintf("%q is not a recognizable date", args[0])}
	}
	hi, ok := parseDate(args[1])
	if !ok {
		return false, "", &PatternError{Message: fmt.Sprintf("%q is not a recognizable date", args[1])}
	}
	inRange := !a.Before(lo) && !a.After(hi)
	return inRange, fmt.Sprintf("%s is not between %s and %s", a, lo, hi), nil
}

func opDateEquals(args []string, actual any) (bool, string, *PatternError) {
	a, ok := parseDate(actual)
	if !ok {
		return false, fmt.Sprintf("%v is not a recognizable date", actual), nil
	}
	ref, ok := parseDate(args[0])
	if !ok {
		return false, "", &PatternError{Message: fmt.Sprintf("%q is not a recognizable date", args[0])}
	}
	return a.Equal(ref), fmt.Sprintf("%s does not equal %s", a, ref), nil
}

// opDateAge implements dateAge:SPEC, where SPEC is "<number><unit>" and
// unit is one of s, m, h, d. It reports whether actual falls within that
// duration of now.
func opDateAge(args []string, actual any) (bool, string, *PatternError) {
	a, ok := parseDate(actual)
	if !ok {
		return false, fmt.Sprintf("%v is not a recognizable date", actual), nil
	}
	d, perr := parseAgeSpec(args[0])
	if perr != nil {
		return false, "", perr
	}
	age := time.Since(a)
	if age < 0 {
		age = -age
	}
	return age <= d, fmt.Sprintf("%s is older than %s", a, d), nil
}

func parseAgeSpec(spec string) (time.Duration, *PatternError) {
	if spec == "" {
		return 0, &PatternError{Message: "dateAge requires a \"<number><unit>\" argument"}
	}
	unit := spec[len(spec)-1]
	numPart := spec[:len(spec)-1]
	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, &PatternError{Message: fmt.Sprintf("invalid dateAge argument %q", spec)}
	}
	var unitDur time.Duration
	switch unit {
	case 's':
		unitDur = time.Second
	case 'm':
		unitDur = time.Minute
	case 'h':
		unitDur = time.Hour
	case 'd':
		unitDur = 24 * time.Hour
	default:
		return 0, &PatternError{Message: fmt.Sprintf("dateAge unit must be one of s, m, h, d; got %q", string(unit))}
	}
	return time.Duration(n * float64(unitDur)), nil
}

// opDateFormat implements dateFormat:KIND for KIND in iso, iso-date,
// us-date, timestamp — a shape check, not a value comparison.
func opDateFormat(args []string, actual any) (bool, string, *PatternError) {
	kind := args[0]
	s, isString := actual.(string)

	switch kind {
	case "iso":
		if !isString {
			return false, fmt.Sprintf("expected an ISO-8601 string, got %s", typeName(actual)), nil
		}
		_, err := time.Parse(time.RFC3339, s)
		if err != nil {
			_, err = time.Parse(time.RFC3339Nano, s)
		}
		return err == nil, fmt.Sprintf("%q is not ISO-8601", s), nil
	case "iso-date":
		if !isString {
			return false, fmt.Sprintf("expected an ISO date string, got %s", typeName(actual)), nil
		}
		_, err := time.Parse("2006-01-02", s)
		return err == nil, fmt.Sprintf("%q is not an ISO date (YYYY-MM-DD)", s), nil
	case "us-date":
		if !isString {
			return false, fmt.Sprintf("expected a US date string, got %s", typeName(actual)), nil
		}
		_, err := time.Parse("01/02/2006", s)
		return err == nil, fmt.Sprintf("%q is not a US date (MM/DD/YYYY)", s), nil
	case "timestamp":
		switch v := actual.(type) {
		case float64:
			return true, "", nil
		case string:
			_, err := strconv.ParseInt(v, 10, 64)
			return err == nil, fmt.Sprintf("%q is not a numeric timestamp", v), nil
		default:
			return false, fmt.Sprintf("expected a numeric timestamp, got %s", typeName(actual)), nil
		}
	default:
		return false, "", &PatternError{Message: fmt.Sprintf("unknown dateFormat kind %q (want iso, iso-date, us-date, or timestamp)", kind)}
	}
}
