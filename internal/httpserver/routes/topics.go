package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/handlers"
)

func init() { Register(registerTopics) }

func registerTopics(r chi.Router, d deps.Deps) {
	r.Get("/api/topics", handlers.ListTopics(d))
	r.Get("/api/topics/{key}", handlers.GetTopic(d))
}
