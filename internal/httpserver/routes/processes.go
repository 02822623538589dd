package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/handlers"
)

func init() { Register(registerProcesses) }

func registerProcesses(r chi.Router, d deps.Deps) {
	r.Get("/api/scenarios", handlers.ListScenarios(d))
	r.Get("/api/processes/{scenarioName}", handlers.GetProcess(d))
}
