package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	// One bucket table shared by every write route.
	writes := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.WriteBurst,
		RefillPerMin: d.WriteRefillPerMin,
		TrustProxy:   d.TrustProxy,
	})

	r.Get("/api/bookmarks", handlers.ListBookmarks(d))
	r.With(writes).Post("/api/bookmarks", handlers.CreateBookmark(d))
	r.Get("/api/bookmarks/{id}", handlers.GetBookmark(d))
	r.With(writes).Patch("/api/bookmarks/{id}", handlers.UpdateBookmark(d))
	r.With(writes).Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
}
