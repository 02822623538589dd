package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`

	Counts *redisstore.Stats       `json:"counts,omitempty"`
	Topics *int                    `json:"topics,omitempty"`
	Reload *scheduler.ReloadStatus `json:"reload,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":   checkStore(r.Context(), d),
			"fixture": checkFixture(d),
		}
		if d.Reloader != nil {
			status := d.Reloader.Status()
			components["reloader"] = componentStatus{
				OK:     status.LastError == "",
				Error:  status.LastError,
				Reload: &status,
			}
		}

		writeJSON(w, http.StatusOK, infraResponse{
			ServingMode: servingMode(components),
			Components:  components,
		})
	}
}

// servingMode summarises where topic reads are answered from.
func servingMode(components map[string]componentStatus) string {
	store := components["store"]
	fixture := components["fixture"]

	switch {
	case store.OK && store.Counts != nil && store.Counts.Topics > 0:
		return "store"
	case store.OK && fixture.OK:
		return "fixture-fallback"
	case fixture.OK:
		return "degraded"
	default:
		return "critical"
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "client not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	stats, err := d.Store.Stats(ctx)
	if err != nil {
		return componentStatus{
			OK:     false,
			Impact: "bookmarks-and-processes-unavailable",
			Error:  "unreachable",
		}
	}
	return componentStatus{OK: true, Mode: "redis", Counts: &stats}
}

func checkFixture(d deps.Deps) componentStatus {
	if d.Fixture == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}

	ds, err := d.Fixture.Load()
	switch {
	case err != nil:
		return componentStatus{OK: false, Impact: "no-topic-fallback", Error: err.Error()}
	case ds == nil:
		return componentStatus{OK: false, Impact: "no-topic-fallback", Error: "file not found"}
	}
	n := len(ds.Topics)
	return componentStatus{OK: true, Topics: &n}
}
