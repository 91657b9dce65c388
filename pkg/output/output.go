// Package output renders suite/test run results to a terminal: a
// charmbracelet/log-styled PASS/FAIL/ERR stream per test, a final
// go-pretty summary table, colorized via lipgloss only on a real TTY.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Outcome is a test's classification: pass, a failed assertion, or an
// error (startup failure, read timeout, pattern error, server death).
type Outcome string

const (
	Pass  Outcome = "pass"
	Fail  Outcome = "fail"
	Error Outcome = "error"
)

// TestResult is one test case's outcome, ready for rendering.
type TestResult struct {
	Name      string
	Outcome   Outcome
	Diffs     []string // populated on Fail: one line per mismatched path
	ErrorKind string   // populated on Error: e.g. "serverDied", "readTimeout"
	Hint      string   // optional Failure Analyzer suggestion, rendered "hint: ..."
	Duration  time.Duration
}

// SuiteResult aggregates a suite's test results.
type SuiteResult struct {
	Description string
	Tests       []TestResult
	Duration    time.Duration
}

func (s SuiteResult) counts() (passed, failed, errored int) {
	for _, t := range s.Tests {
		switch t.Outcome {
		case Pass:
			passed++
		case Fail:
			failed++
		case Error:
			errored++
		}
	}
	return
}

// Reporter renders run results to a terminal or plain writer.
type Reporter struct {
	out    io.Writer
	logger *log.Logger
	isTTY  bool
	width  int
}

// New creates a Reporter writing to stdout.
func New() *Reporter {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a Reporter writing to an arbitrary writer.
func NewWithWriter(w io.Writer) *Reporter {
	isTTY := isTerminal(w)

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
	})
	if isTTY {
		logger.SetStyles(amberStyles())
	}

	return &Reporter{
		out:    w,
		logger: logger,
		isTTY:  isTTY,
		width:  terminalWidth(w),
	}
}

// SetDebug toggles debug-level log output, hidden by default.
func (p *Reporter) SetDebug(on bool) {
	if on {
		p.logger.SetLevel(log.DebugLevel)
	} else {
		p.logger.SetLevel(log.InfoLevel)
	}
}

// Info logs an informational message, outside the PASS/FAIL/ERR stream
// produced by Test — startup, discovery, and shutdown progress.
func (p *Reporter) Info(msg string, keyvals ...any) {
	p.logger.Info(msg, keyvals...)
}

// Warn logs a non-fatal warning, e.g. a suite-load warning.
func (p *Reporter) Warn(msg string, keyvals ...any) {
	p.logger.Warn(msg, keyvals...)
}

// Error logs a fatal or unexpected condition outside a test's own
// PASS/FAIL/ERR line, e.g. a descriptor that failed to load.
func (p *Reporter) Error(msg string, keyvals ...any) {
	p.logger.Error(msg, keyvals...)
}

// Debug logs a verbose diagnostic, hidden unless SetDebug(true).
func (p *Reporter) Debug(msg string, keyvals ...any) {
	p.logger.Debug(msg, keyvals...)
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// terminalWidth reports the writer's terminal width, falling back to 80
// columns when w isn't a real terminal or the ioctl fails.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// Banner prints the harness name and version.
func (p *Reporter) Banner(ver string) {
	if !p.isTTY {
		fmt.Fprintf(p.out, "mcptest %s\n\n", ver)
		return
	}
	amber := lipgloss.NewStyle().Foreground(ColorAmber).Bold(true)
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(p.out, "%s %s\n\n", amber.Render("mcptest"), muted.Render(ver))
}

// Suite prints a suite's description as a section header before its
// tests are reported one by one.
func (p *Reporter) Suite(description string) {
	p.Section(description)
}

// Test prints one PASS/FAIL/ERR line, with diffs/hints indented beneath
// a failing or errored test.
func (p *Reporter) Test(r TestResult) {
	p.Print("%s  %s", p.resultLabel(r.Outcome), r.Name)
	if r.Outcome == Error {
		p.Print(" (%s)", r.ErrorKind)
	}
	p.Println(fmt.Sprintf("  %s", r.Duration))

	for _, d := range r.Diffs {
		p.Println("    " + d)
	}
	if r.Hint != "" {
		p.Println("    hint: " + r.Hint)
	}
}

// Print writes a message directly to output without formatting.
func (p *Reporter) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a message with newline directly to output.
func (p *Reporter) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Section prints a section header.
func (p *Reporter) Section(title string) {
	if p.isTTY {
		style := lipgloss.NewStyle().Foreground(ColorAmber).Bold(true)
		p.Println(style.Render(title))
	} else {
		p.Println(title)
	}
}
