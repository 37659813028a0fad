package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter renders one kind of CLI text. With colour it applies its
// colour; without, it wraps the text in its plain-text delimiters.
type Formatter struct {
	color *color.Color
	open  string
	close string
}

func newFormatter(open, close string, attrs ...color.Attribute) Formatter {
	return Formatter{color: color.New(attrs...), open: open, close: close}
}

// Sprint formats the arguments like fmt.Sprint.
func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if Plain() {
		return f.open + text + f.close
	}
	return f.color.Sprint(text)
}

// Plain reports whether output is uncoloured: NO_COLOR is set
// (https://no-color.org/) or fatih/color found no colour support.
func Plain() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

var (
	// Code is a command to run. Plain: `backticks`.
	Code = newFormatter("`", "`", color.FgYellow)

	// Path is a file or directory on the server.
	Path = newFormatter("", "", color.FgYellow)

	// URL is a private or share URL. Plain: <angle brackets>.
	URL = newFormatter("<", ">", color.FgBlue, color.Underline)

	// Highlight is a file name or recipient. Plain: 'quotes'.
	Highlight = newFormatter("'", "'", color.FgCyan)

	// Muted is secondary detail such as digests and relative times.
	// Plain: (parentheses).
	Muted = newFormatter("(", ")", color.FgHiBlack)

	// Success is a positive state such as an active grant.
	Success = newFormatter("", "", color.FgGreen)

	failure = newFormatter("", "", color.FgRed)
	hint    = newFormatter("", "", color.FgCyan)
	caution = newFormatter("", "", color.FgYellow)
)

// Check marks a completed operation.
func Check() string { return Success.Sprint("✓") }

// Cross marks a failed operation.
func Cross() string { return failure.Sprint("✗") }

// Arrow marks a suggested next step.
func Arrow() string { return hint.Sprint("→") }

// Caution marks a result that needs the operator's attention.
func Caution() string { return caution.Sprint("⚠") }

// EnsureNewline appends a newline to s unless it already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}
