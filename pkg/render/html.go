package render

import (
	"html"
	"strconv"
	"strings"

	"github.com/cc-tools/sudokud/pkg/engine"
)

const (
	htmlHeader  = "<!DOCTYPE html><pre>"
	htmlFooter  = "</pre>"
	htmlNewline = "<br>"

	// GridWidth is the number of cells per row of a position.
	GridWidth = 9
)

// HTML renders out as an HTML fragment. The engine payload is reduced to the
// moves or solution cells selected by the operation's Layout.
func (r *Renderer) HTML(out engine.Outcome) string {
	var b strings.Builder
	b.WriteString(htmlHeader)
	b.WriteString(FormatPosition(out.Position, GridWidth))
	b.WriteString(htmlNewline)

	if out.OK() {
		b.WriteString(r.ExtractPayload(out.Payload, LayoutFor(out.Operation)))
		b.WriteString(htmlNewline)
	} else {
		b.WriteString(html.EscapeString(out.Diagnostic))
		b.WriteString(htmlNewline)
		b.WriteString(htmlNewline)
	}

	b.WriteString(RuntimeHTML(out.ElapsedMS))
	b.WriteString(htmlFooter)
	return b.String()
}

// FormatPosition lays the position's digits out perRow to a line, separating
// cells with a space and ending each full row with <br>. Spaces in the input
// only delimit tokens; every digit is its own cell.
func FormatPosition(position string, perRow int) string {
	if perRow <= 0 {
		perRow = GridWidth
	}
	var b strings.Builder
	i := 0
	for _, c := range position {
		if c == ' ' {
			continue
		}
		b.WriteRune(c)
		i++
		if i%perRow == 0 {
			b.WriteString(htmlNewline)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// RuntimeHTML renders the runtime footer, "n/a" for engine.NoElapsed.
func RuntimeHTML(elapsedMS int) string {
	if elapsedMS == engine.NoElapsed {
		return "runtime: n/a ms"
	}
	return "runtime: " + strconv.Itoa(elapsedMS) + "ms"
}
