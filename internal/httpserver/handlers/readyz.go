package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready only while the document store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if d.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
