// Health probe handler for the adapter.

package server

import (
	"net/http"
	"time"

	"github.com/cc-tools/sudokud/pkg/httputil"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Binding   bool   `json:"binding"`
	Capacity  int    `json:"capacity"`
	Engine    string `json:"engine"`
	Error     string `json:"error,omitempty"`
	Uptime    int    `json:"uptimeSeconds"`
	Timestamp string `json:"timestamp"`
}

// handleHealth reports the startup binding. An invalid binding makes the
// adapter useless, so it is reported as 503.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Binding:   s.binding.Valid(),
		Capacity:  s.binding.Capacity(),
		Engine:    s.binding.EngineName(),
		Uptime:    s.Uptime(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if !resp.Binding {
		resp.Status = "unhealthy"
		if err := s.binding.Err(); err != nil {
			resp.Error = err.Error()
		}
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
