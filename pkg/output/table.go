package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary prints the final per-suite results table: suite name, test
// count, pass/fail/error counts, and duration.
func (p *Reporter) Summary(suites []SuiteResult) {
	if len(suites) == 0 {
		return
	}

	p.Println()

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(p.tableStyle())
	t.SetAllowedRowLength(p.width)

	t.AppendHeader(table.Row{"Suite", "Tests", "Passed", "Failed", "Errors", "Duration"})

	var totalPassed, totalFailed, totalErrored int
	for _, s := range suites {
		passed, failed, errored := s.counts()
		totalPassed += passed
		totalFailed += failed
		totalErrored += errored

		status := colorOrPlain(p, passed, ColorGreen)
		t.AppendRow(table.Row{s.Description, len(s.Tests), status, colorOrPlain(p, failed, ColorRed), colorOrPlain(p, errored, ColorAmber), s.Duration})
	}

	t.AppendFooter(table.Row{"TOTAL", totalPassed + totalFailed + totalErrored, totalPassed, totalFailed, totalErrored, ""})

	t.Render()
	p.Println()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func colorOrPlain(p *Reporter, n int, c lipgloss.Color) string {
	if p.isTTY && n > 0 {
		return colorCount(n, c)
	}
	return itoa(n)
}

func colorCount(n int, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(itoa(n))
}

// tableStyle returns the standard amber-themed table style.
func (p *Reporter) tableStyle() table.Style {
	style := table.StyleRounded
	if p.isTTY {
		style.Color.Header = text.Colors{text.FgHiYellow, text.Bold}
		style.Color.Border = text.Colors{text.FgHiBlack}
	}
	style.Options.SeparateRows = false
	return style
}
