package render

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/cc-tools/sudokud/pkg/engine"
)

// RecordElement is the engine payload element holding one cell record.
const RecordElement = "m"

// Layout describes how engine payload records are reduced to HTML text.
type Layout struct {
	// PerRow is the number of records per output line.
	PerRow int

	// Children are the child-node indices of each record to print.
	Children []int

	// Delimiter joins the selected children of one record.
	Delimiter string
}

var (
	// MovesLayout prints one "cell.value" move per line.
	MovesLayout = Layout{PerRow: 1, Children: []int{0, 1}, Delimiter: "."}

	// SolutionLayout prints the solved values nine to a line.
	SolutionLayout = Layout{PerRow: GridWidth, Children: []int{1}}
)

// LayoutFor returns the layout for an engine operation.
func LayoutFor(op engine.Operation) Layout {
	if op == engine.OperationSolution {
		return SolutionLayout
	}
	return MovesLayout
}

// ExtractPayload finds every <m> element of the engine payload and prints
// the text of the child nodes selected by layout. Child indices count all
// child nodes, text nodes included. A payload that does not parse yields "".
func (r *Renderer) ExtractPayload(payload string, layout Layout) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(payload); err != nil {
		r.log.Error("engine payload is not valid XML", "error", err)
		return ""
	}

	perRow := layout.PerRow
	if perRow <= 0 {
		perRow = 1
	}

	var b strings.Builder
	for i, record := range doc.FindElements("//" + RecordElement) {
		for j, idx := range layout.Children {
			if j > 0 {
				b.WriteString(layout.Delimiter)
			}
			if idx < 0 || idx >= len(record.Child) {
				r.log.Warn("engine payload record is missing a child", "record", i, "child", idx)
				continue
			}
			b.WriteString(textContent(record.Child[idx]))
		}
		if (i+1)%perRow == 0 {
			b.WriteString(htmlNewline)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// textContent returns the concatenated character data of a node and all of
// its descendants.
func textContent(tok etree.Token) string {
	switch t := tok.(type) {
	case *etree.CharData:
		return t.Data
	case *etree.Element:
		var b strings.Builder
		for _, c := range t.Child {
			b.WriteString(textContent(c))
		}
		return b.String()
	default:
		return ""
	}
}
