package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/cc-tools/sudokud/pkg/engine"
)

// BadXMLFallback is the whole body of a pretty XML response whose compact
// form could not be parsed.
const BadXMLFallback = "internal error: bad xml."

// CompactXML renders out as a single-line <sudoku> document. The engine
// payload is embedded verbatim, so a malformed payload yields malformed XML.
func CompactXML(out engine.Outcome) string {
	var b strings.Builder
	b.WriteString("<sudoku>")
	b.WriteString(RequestXML(out.Position))
	b.WriteString(out.Payload)
	b.WriteString(DiagnosticXML(out.Diagnostic))
	b.WriteString(RuntimeXML(out.ElapsedMS))
	b.WriteString("</sudoku>")
	return b.String()
}

// RequestXML echoes the request position.
func RequestXML(position string) string {
	return "<request>" + escape(position) + "</request>"
}

// DiagnosticXML renders the diagnostic element; empty on success.
func DiagnosticXML(diagnostic string) string {
	return "<diagnostic>" + escape(diagnostic) + "</diagnostic>"
}

// RuntimeXML renders the runtime element; empty content for engine.NoElapsed.
func RuntimeXML(elapsedMS int) string {
	if elapsedMS == engine.NoElapsed {
		return "<runtime></runtime>"
	}
	return "<runtime>" + strconv.Itoa(elapsedMS) + "</runtime>"
}

// PrettyXML re-parses compact and serialises it indented, prefixed with an
// XML declaration. Parse failures yield BadXMLFallback.
func (r *Renderer) PrettyXML(compact string) string {
	parsed := etree.NewDocument()
	if err := parsed.ReadFromString(compact); err != nil {
		r.log.Error("pretty print failed", "error", err)
		return BadXMLFallback
	}
	root, reason := singleRoot(parsed)
	if root == nil {
		r.log.Error("pretty print failed", "error", reason)
		return BadXMLFallback
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(root)
	doc.Indent(r.indent)

	result, err := doc.WriteToString()
	if err != nil {
		r.log.Error("pretty print failed", "error", err)
		return BadXMLFallback
	}
	return result
}

// singleRoot returns the document element when it is the only element at
// the top level and no text surrounds it. etree tolerates both.
func singleRoot(doc *etree.Document) (*etree.Element, string) {
	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, "multiple root elements"
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, "text outside root element"
			}
		}
	}
	if root == nil {
		return nil, "no root element"
	}
	return root, ""
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
