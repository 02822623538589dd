package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/utils"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload asks the fixture reloader for an immediate re-seed. The trigger
// holds a single pending request; extra requests are refused.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r, d.TrustProxy)

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual reseed triggered via endpoint",
				logger.String("remote_ip", ip))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true, Message: "reseed triggered"})
		default:
			d.Logger.Warn("reseed already pending",
				logger.String("remote_ip", ip))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Triggered: false, Message: "reseed already pending, please wait"})
		}
	}
}
