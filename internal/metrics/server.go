package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check is a named readiness probe; a nil error means ready.
type Check func() error

// NewServer creates the operator-facing HTTP server: /metrics, /healthz and
// a /readyz that runs every check and answers 503 if any of them fails.
func NewServer(addr string, checks map[string]Check) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", ReadyHandler(checks))

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// ReadyHandler runs checks on every request and reports each result by name.
func ReadyHandler(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		results := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(); err != nil {
				results[name] = err.Error()
				healthy = false
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(results)
	}
}
