package httpserver

import (
	"net/http"
	"time"
)

// New builds the engine's HTTP server. Read and idle timeouts are fixed:
// submission payloads are small JSON bodies, so slow clients are cut off
// early rather than tying up handler goroutines.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
