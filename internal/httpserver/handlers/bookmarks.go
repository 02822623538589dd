package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

type successResponse struct {
	Success bool `json:"success"`
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		bookmarks, err := d.Bookmarks.List(r.Context(), limit)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarks)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark created", logger.String("id", b.ID))
		writeJSON(w, http.StatusCreated, b)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.BookmarkPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		b, err := d.Bookmarks.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// DeleteBookmark always reports success, whether or not the id existed.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Bookmarks.Delete(r.Context(), id); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark deleted", logger.String("id", id))
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// parseLimit reads ?limit=. Absent means the default cap.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid("limit", "limit must be a non-negative integer")
	}
	return n, nil
}
