package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/handlers"
)

func init() { Register(registerHealthz) }

// Liveness stays open so orchestrators can probe it from anywhere.
func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}
