package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Amber color theme, carried over from the style this harness's CLI
// family uses across its tools.
var (
	ColorAmber = lipgloss.Color("#f59e0b")
	ColorWhite = lipgloss.Color("#fafaf9")
	ColorMuted = lipgloss.Color("#78716c")
	ColorGreen = lipgloss.Color("#10b981")
	ColorRed   = lipgloss.Color("#f43f5e")
	ColorGray  = lipgloss.Color("#a8a29e")
)

// amberStyles returns charmbracelet/log's default level styles
// recolored to the amber theme, used for the Reporter's generic
// Info/Warn/Error/Debug passthroughs.
func amberStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(ColorAmber).
		Bold(true)

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERRO").
		Foreground(ColorRed).
		Bold(true)

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBU").
		Foreground(ColorMuted)

	styles.Key = lipgloss.NewStyle().Foreground(ColorAmber)
	styles.Value = lipgloss.NewStyle().Foreground(ColorGray)

	return styles
}

// resultLabel renders a test's PASS/FAIL/ERR label, colorized only when
// p is writing to a real terminal.
func (p *Reporter) resultLabel(o Outcome) string {
	var text, color string
	switch o {
	case Pass:
		text, color = "PASS", string(ColorGreen)
	case Fail:
		text, color = "FAIL", string(ColorRed)
	default:
		text, color = "ERR ", string(ColorAmber)
	}
	if !p.isTTY {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(text)
}
