package app

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/pkg/ledger"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Scope each request to a ledger. Clients send X-Ledger-Id; a missing
	// header gets a fresh id, echoed back so the client can keep it.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ledgerId := req.Header.Get("X-Ledger-Id")
			if ledgerId == "" {
				ledgerId = uuid.NewString()
				log.Debugf("issued new ledger id: %s", ledgerId)
			}
			w.Header().Set("X-Ledger-Id", ledgerId)
			ctx := ledger.WithLedgerId(req.Context(), ledgerId)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
