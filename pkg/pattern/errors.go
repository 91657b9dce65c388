package pattern

import "fmt"

// PatternError reports a malformed pattern: unknown operator, wrong
// argument count, an argument that doesn't parse, invalid regex, or a
// reserved/literal key collision. It is distinct from a Result mismatch,
// which reports a well-formed pattern that the actual value simply
// didn't satisfy.
type PatternError struct {
	Path    string
	Message string
}

func (e *PatternError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
