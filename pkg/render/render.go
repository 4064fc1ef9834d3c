package render

import (
	"log/slog"
	"net/http"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// Content types set on rendered responses.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeXML  = "application/xml"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Mode selects the presentation of a response.
type Mode struct {
	XML    bool
	Pretty bool
}

// String returns "html", "xml" or "xml-pretty".
func (m Mode) String() string {
	switch {
	case !m.XML:
		return "html"
	case m.Pretty:
		return "xml-pretty"
	default:
		return "xml"
	}
}

// Response is a rendered body ready to be written to the transport.
type Response struct {
	Body        string
	ContentType string
	Status      int
}

// Renderer renders engine outcomes.
type Renderer struct {
	log    *slog.Logger
	indent int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used to report unparseable engine payloads and
// pretty-print failures.
func WithLogger(log *slog.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithIndent sets the number of spaces per level for pretty XML.
func WithIndent(spaces int) Option {
	return func(r *Renderer) {
		if spaces >= 0 {
			r.indent = spaces
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		log:    logging.Nop(),
		indent: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render encodes out in the given mode. The status is 200 for every engine
// outcome; failures are reported in the body.
func (r *Renderer) Render(out engine.Outcome, mode Mode) Response {
	resp := Response{Status: http.StatusOK}

	switch {
	case !mode.XML:
		resp.Body = r.HTML(out)
		resp.ContentType = ContentTypeHTML
	case mode.Pretty:
		resp.Body = r.PrettyXML(CompactXML(out))
		resp.ContentType = ContentTypeXML
	default:
		resp.Body = CompactXML(out)
		resp.ContentType = ContentTypeXML
	}
	return resp
}

// Text returns a plain-text response.
func Text(status int, body string) Response {
	return Response{Body: body, ContentType: ContentTypeText, Status: status}
}
