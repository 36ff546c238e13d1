package fip

import (
	"fmt"
	"strings"
)

// RenderDiagnostics renders a list of Diagnostic values in the
// `<file>:<line>:<column>: <severity>: <message>` form used by the CLI and
// editor tooling (spec §6/§7).
func RenderDiagnostics(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		loc := d.Location()
		message := strings.TrimPrefix(d.Error(), loc.String()+": ")
		if idx := strings.Index(message, ": "); idx >= 0 {
			message = message[idx+2:]
		}
		if loc.File != "" || loc.Pos.Line != 0 {
			out[i] = fmt.Sprintf("%s: %s: %s", loc, d.Severity(), message)
		} else {
			out[i] = fmt.Sprintf("%s: %s", d.Severity(), message)
		}
	}
	return out
}

// unexpectedEOF builds a ParseError for input that ends mid-construct, with
// a message naming what was being parsed when input ran out. The parser's
// own unterminated array/call/block errors are built with Parser.errorf
// instead.
func unexpectedEOF(loc Location, construct string) *ParseError {
	return &ParseError{Loc: loc, Message: fmt.Sprintf("unexpected end of file while parsing %s", construct)}
}
