package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPrinter_Summary_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	p.Summary(nil)

	if buf.Len() != 0 {
		t.Errorf("Summary(nil) should output nothing, got %q", buf.String())
	}
}

func TestPrinter_Summary_WithSuites(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	suites := []SuiteResult{
		{
			Description: "tools list",
			Duration:    42 * time.Millisecond,
			Tests: []TestResult{
				{Name: "lists tools", Outcome: Pass},
				{Name: "rejects bad input", Outcome: Fail},
			},
		},
		{
			Description: "resources",
			Duration:    10 * time.Millisecond,
			Tests: []TestResult{
				{Name: "crashes the server", Outcome: Error},
			},
		},
	}
	p.Summary(suites)

	got := buf.String()
	for _, header := range []string{"SUITE", "TESTS", "PASSED", "FAILED", "ERRORS", "DURATION"} {
		if !strings.Contains(got, header) {
			t.Errorf("Summary() should contain %s header, got %q", header, got)
		}
	}
	if !strings.Contains(got, "tools list") || !strings.Contains(got, "resources") {
		t.Error("Summary() should contain suite descriptions")
	}
	if !strings.Contains(got, "TOTAL") {
		t.Error("Summary() should contain a TOTAL footer row")
	}
}

func TestItoa(t *testing.T) {
	if itoa(0) != "0" || itoa(42) != "42" {
		t.Errorf("itoa produced unexpected output")
	}
}
