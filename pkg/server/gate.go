package server

import (
	"log/slog"
	"net/http"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/httputil"
)

// MessageBindingInvalid is the body of every gated response when the engine
// failed to bind.
const MessageBindingInvalid = "engine binding invalid."

// BindingGate answers every request with 500 when binding is invalid and
// passes through to next otherwise. The binding is read once; it never
// changes after startup.
func BindingGate(binding *engine.Binding, log *slog.Logger, next http.Handler) http.Handler {
	if binding.Valid() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Error("request rejected", "reason", MessageBindingInvalid, "path", r.URL.Path, "client", ClientIP(r))
		httputil.WriteText(w, http.StatusInternalServerError, MessageBindingInvalid)
	})
}
