package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
)

// Registrar mounts one group of routes. Middlewares that need deps (admin
// guards, rate limits) are built inside the registrar.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar; called from init in each route file.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route on r. Called once per router.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
