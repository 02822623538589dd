package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

// ListScenarios returns the summaries of the stored scenarios.
func ListScenarios(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		briefs, err := d.Processes.Summaries(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, briefs)
	}
}

// GetProcess resolves a scenario by type, name or title and returns its
// process view.
func GetProcess(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "scenarioName")

		process, err := d.Processes.Resolve(r.Context(), name)
		if err != nil {
			d.Logger.Debug("process lookup failed",
				logger.String("scenario", name),
				logger.Error(err))
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, process)
	}
}
