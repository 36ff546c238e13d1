package fip

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// diagnostic.go adds colorized terminal rendering on top of
// RenderDiagnostics' plain strings, styled the way cmd/dang/repl.go styles
// its own prompt/result/error output: a handful of package-level
// lipgloss.Style values keyed by semantic role rather than one style per
// call site.
var (
	diagErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	diagWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	diagInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	diagLocationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderDiagnosticsColor renders diags the way RenderDiagnostics does, but
// with the severity label and location colorized for an interactive
// terminal. cmd/fip/main.go uses it for every diagnostic it prints; it does
// not check whether its output is a terminal.
func RenderDiagnosticsColor(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = renderOne(d)
	}
	return out
}

func renderOne(d Diagnostic) string {
	var severityStyle lipgloss.Style
	switch d.Severity() {
	case SeverityError:
		severityStyle = diagErrorStyle
	case SeverityWarning:
		severityStyle = diagWarningStyle
	default:
		severityStyle = diagInfoStyle
	}

	loc := d.Location()
	message := strings.TrimPrefix(d.Error(), loc.String()+": ")
	// Every Diagnostic's Error() leads with "<kind>: ", drop it here since
	// the severity badge already carries that information.
	if idx := strings.Index(message, ": "); idx >= 0 {
		message = message[idx+2:]
	}

	var b strings.Builder
	if loc.File != "" || loc.Pos.Line != 0 {
		b.WriteString(diagLocationStyle.Render(loc.String() + ":"))
		b.WriteString(" ")
	}
	b.WriteString(severityStyle.Render(string(d.Severity()) + ":"))
	b.WriteString(" ")
	b.WriteString(message)
	return b.String()
}

// SummarizeDiagnostics returns a plain, unstyled one-line
// "N error(s), M warning(s)" count, for printing after a batch of
// diagnostics.
func SummarizeDiagnostics(diags []Diagnostic) string {
	var errs, warns int
	for _, d := range diags {
		switch d.Severity() {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}
