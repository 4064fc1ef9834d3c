// Package render encodes engine outcomes as HTML or XML response bodies.
//
// Two independent axes select the presentation: HTML or XML, and for XML a
// compact or an indented ("pretty") serialisation. Success and failure
// renders share the diagnostic element and runtime footer so clients can
// always look for <diagnostic> or "runtime:" in the body.
//
// HTML bodies show the position as a 9-per-row grid followed by the engine's
// answer, extracted from its XML payload:
//
//	<!DOCTYPE html><pre>5 3 0 0 7 0 0 0 0<br>...<br>2.4<br>2.6<br>...<br>runtime: 12ms</pre>
//
// XML bodies echo the request and embed the engine payload verbatim:
//
//	<sudoku><request>...</request><moves>...</moves><diagnostic></diagnostic><runtime>12</runtime></sudoku>
//
// Pretty XML re-parses the compact form with github.com/beevik/etree and
// indents it; if the compact form is not well-formed the body is the literal
// BadXMLFallback.
package render
