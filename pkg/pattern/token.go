package pattern

import "strings"

// matchToken is a parsed "match:OP[:ARG...]" string. Tokenization splits
// on ":" up to the operator's declared arity, so every argument except
// the last may not itself contain a colon — the last argument absorbs
// whatever remains on the line. This lets regex patterns and full
// ISO-8601 datetimes (which contain colons in their time component) be
// used as a trailing argument, e.g. dateBetween's second bound, at the
// cost of disallowing a colon in an earlier argument of the same
// operator.
type matchToken struct {
	negate bool
	op     string
	args   []string
}

// parseToken reports whether s is a match: pattern string and, if so,
// its negation flag, operator name, and raw argument strings (split but
// not yet validated against the operator's arity).
func parseToken(s string) (matchToken, bool) {
	if !strings.HasPrefix(s, "match:") {
		return matchToken{}, false
	}
	rest := s[len("match:"):]

	negate := false
	if strings.HasPrefix(rest, "not:") {
		negate = true
		rest = rest[len("not:"):]
	}

	op, argStr, hasArgs := strings.Cut(rest, ":")

	tok := matchToken{negate: negate, op: op}
	if hasArgs {
		tok.args = splitArity(argStr, operatorArity(op))
	}
	return tok, true
}

// splitArity splits argStr on ":" into at most n parts when n > 1,
// folding any overflow into the final part; n of 1 or less (an unknown
// operator, or one taking a single free-form argument) keeps argStr whole.
func splitArity(argStr string, n int) []string {
	if n <= 1 {
		return []string{argStr}
	}
	return strings.SplitN(argStr, ":", n)
}
