package httpserver

import (
	"net/http"
	"time"
)

// New builds the ledger's HTTP server. The header timeout is the only knob
// worth setting here; per-route behavior lives in the transport package.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
