package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an http.Handler exposing the default registry in the
// Prometheus text format. Init is called if it has not been already.
func Handler() http.Handler {
	reg := Init()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	})
}

// SetBindingValid records the outcome of the startup engine binding.
func SetBindingValid(valid bool) {
	if BindingValid == nil {
		return
	}
	if valid {
		BindingValid.Set(1)
		return
	}
	BindingValid.Set(0)
}
