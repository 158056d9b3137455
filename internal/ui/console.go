// Package ui handles console output and the confirmation prompt.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const barWidth = 30

// Console writes progress and messages for a single run
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	tty    bool
	styles styles
	bar    progress.Model

	inProgress bool // a \r-updated line is currently open
}

// NewConsole returns a console on stdin/stdout, detecting whether stdout
// is a terminal.
func NewConsole() *Console {
	return NewConsoleWriter(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

// NewConsoleWriter returns a console on arbitrary streams. Overwriting
// progress lines and the progress bar are only used when tty is true.
func NewConsoleWriter(in io.Reader, out io.Writer, tty bool) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		tty:    tty,
		styles: newStyles(lipgloss.NewRenderer(out)),
		bar: progress.New(
			progress.WithSolidFill(string(Accent)),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
			progress.WithFillCharacters('━', '─'),
		),
	}
}

// Printf writes a plain message
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Dim writes a de-emphasized line
func (c *Console) Dim(text string) {
	fmt.Fprintln(c.out, c.styles.dim.Render(text))
}

// Confirm prints prompt and reads one line. Only "y" (any case, surrounding
// whitespace ignored) confirms; EOF counts as a refusal.
func (c *Console) Confirm(prompt string) (bool, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(c.out)
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}

// Progress returns a domain.ProgressFunc-compatible callback that reports
// "label... done/total". On a terminal the line is overwritten in place.
func (c *Console) Progress(label string) func(done, total int) {
	return func(done, total int) {
		counter := fmt.Sprintf("%s... %d/%d", label, done, total)
		if !c.tty {
			fmt.Fprintln(c.out, counter)
			return
		}

		percent := 1.0
		if total > 0 {
			percent = float64(done) / float64(total)
		}
		fmt.Fprintf(c.out, "\r%s %s", counter, c.bar.ViewAs(percent))
		c.inProgress = true
	}
}

// EndProgress terminates an overwriting progress line
func (c *Console) EndProgress() {
	if c.inProgress {
		fmt.Fprintln(c.out)
		c.inProgress = false
	}
}

// Failure prints a marked error line, closing an open progress line first
func (c *Console) Failure(format string, args ...any) {
	if c.inProgress {
		fmt.Fprintln(c.out)
		c.inProgress = false
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(c.out, "%s %s\n", c.styles.marker.Render(" !"), msg)
}

// Summary prints a "label: ok/total" line, highlighting failures
func (c *Console) Summary(label string, ok, total int) {
	line := fmt.Sprintf("%s: %d/%d", label, ok, total)
	if failed := total - ok; failed > 0 {
		fmt.Fprintf(c.out, "%s %s\n", line, c.styles.errText.Render(fmt.Sprintf("(%d failed)", failed)))
		return
	}
	fmt.Fprintln(c.out, c.styles.success.Render(line))
}
