package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleReporter prints report output to a terminal.
type ConsoleReporter struct {
	out    io.Writer
	failed bool

	messageStyle lipgloss.Style
	warnStyle    lipgloss.Style
	failStyle    lipgloss.Style
}

// NewConsoleReporter creates a ConsoleReporter writing to out. Colors are
// only used when out is a terminal.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	r := lipgloss.NewRenderer(out)
	return &ConsoleReporter{
		out:          out,
		messageStyle: r.NewStyle().Foreground(lipgloss.Color("10")),
		warnStyle:    r.NewStyle().Foreground(lipgloss.Color("11")),
		failStyle:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// Message prints an informational line.
func (c *ConsoleReporter) Message(msg string) {
	fmt.Fprintln(c.out, c.messageStyle.Render(msg))
}

// Warn prints a warning line.
func (c *ConsoleReporter) Warn(msg string) {
	fmt.Fprintln(c.out, c.warnStyle.Render("warning: "+msg))
}

// Fail prints an error line and marks the run as failed.
func (c *ConsoleReporter) Fail(msg string) {
	c.failed = true
	fmt.Fprintln(c.out, c.failStyle.Render("failure: "+msg))
}

// Markdown prints md unchanged.
func (c *ConsoleReporter) Markdown(md string) {
	fmt.Fprint(c.out, md)
}

// Failed reports whether Fail was called.
func (c *ConsoleReporter) Failed() bool {
	return c.failed
}
