package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type scenarioNotFoundResponse struct {
	Error     string   `json:"error"`
	Available []string `json:"available"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err onto the API error taxonomy. Anything unexpected is
// logged in full and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var (
		snf *domain.ScenarioNotFoundError
		nf  *domain.NotFoundError
		ve  *domain.ValidationError
		mbe *http.MaxBytesError
	)

	switch {
	case errors.As(err, &snf):
		available := snf.Available
		if available == nil {
			available = []string{}
		}
		writeJSON(w, http.StatusNotFound, scenarioNotFoundResponse{Error: snf.Error(), Available: available})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message})
	case errors.As(err, &mbe):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
	default:
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error"})
	}
}

// decodeJSON reads a size-limited JSON body into dst. An empty body leaves
// dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &mbe):
			return err
		default:
			return domain.Invalid("body", "invalid JSON body")
		}
	}
	if dec.More() {
		return domain.Invalid("body", "invalid JSON body")
	}
	return nil
}

// pathParam returns a decoded URL parameter. chi hands back the escaped
// segment when the request path carries escapes such as %2F.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
