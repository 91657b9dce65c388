package config

import (
	"fmt"
	"strings"

	"github.com/mcptest/mcptest/pkg/mcp"
)

// ValidationError reports one malformed field in a descriptor or suite.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "validation errors:\n  - " + strings.Join(msgs, "\n  - ")
}

// ValidateDescriptor checks a launch descriptor for errors.
func ValidateDescriptor(d *mcp.ServerDescriptor) error {
	var errs ValidationErrors

	if d.Runtime == "docker" {
		if d.Image == "" {
			errs = append(errs, ValidationError{"image", "is required when runtime is \"docker\""})
		}
	} else if d.Command == "" {
		errs = append(errs, ValidationError{"command", "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateSuite checks a suite for errors, returning any non-fatal
// warnings (duplicate it names are permitted — request ids are scoped
// to a single exchange, not suite-wide — so this stays a warning, not
// an error) alongside a fatal error when present.
func ValidateSuite(s *Suite) (warnings []string, err error) {
	var errs ValidationErrors

	if len(s.Tests) == 0 {
		errs = append(errs, ValidationError{"tests", "suite must declare at least one test"})
	}

	seen := make(map[string]bool)
	for i, tc := range s.Tests {
		prefix := fmt.Sprintf("tests[%d]", i)
		if tc.It == "" {
			errs = append(errs, ValidationError{prefix + ".it", "is required"})
		} else if seen[tc.It] {
			warnings = append(warnings, fmt.Sprintf("%s.it: duplicate test name %q", prefix, tc.It))
		} else {
			seen[tc.It] = true
		}

		if tc.Request.Method == "" {
			errs = append(errs, ValidationError{prefix + ".request.method", "is required"})
		}

		if msg, ok := validateStderrExpectation(tc.Expect.Stderr); !ok {
			errs = append(errs, ValidationError{prefix + ".expect.stderr", msg})
		}
	}

	if len(errs) > 0 {
		return warnings, errs
	}
	return warnings, nil
}

// validateStderrExpectation checks the shape of expect.stderr: absent,
// the literal toBeEmptyToken, or any string (plain equality or a match:
// pattern — full pattern-syntax validation happens at evaluation time).
func validateStderrExpectation(v any) (string, bool) {
	if v == nil {
		return "", true
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("must be a string (got %T)", v), false
	}
	if s == "" {
		return "must not be an empty string; use " + toBeEmptyToken + " instead", false
	}
	return "", true
}
