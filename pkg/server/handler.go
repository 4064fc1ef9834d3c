package server

import (
	"net/http"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/httputil"
	"github.com/cc-tools/sudokud/pkg/metrics"
	"github.com/cc-tools/sudokud/pkg/params"
	"github.com/cc-tools/sudokud/pkg/render"
)

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) bool {
	return s.dispatch(w, r, engine.OperationMoves)
}

func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request) bool {
	return s.dispatch(w, r, engine.OperationSolution)
}

// dispatch validates the query, runs op on the engine and writes the
// rendered answer. Validation failures never reach the engine and are
// answered with status 200, like every engine outcome.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, op engine.Operation) bool {
	log := s.log.With("request_id", RequestID(r.Context()), "operation", op)

	req, err := params.Extract(r.URL.Query())
	if err != nil {
		log.Info("rejected request", "error", err, "client", ClientIP(r))
		if metrics.ValidationFailuresTotal != nil {
			metrics.ValidationFailuresTotal.WithLabelValues(string(op)).Inc()
		}
		httputil.WriteText(w, http.StatusOK, params.MessagePositionInvalid)
		return false
	}
	for _, ferr := range req.FlagErrors {
		log.Warn("optional flag ignored", "error", ferr)
	}

	out := s.client.Invoke(r.Context(), op, req.Position)
	resp := s.renderer.Render(out, render.Mode{XML: req.XML, Pretty: req.Pretty})
	httputil.WriteBody(w, resp.Status, resp.ContentType, resp.Body)
	return out.OK()
}
