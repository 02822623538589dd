package mw

import (
	"encoding/json"
	"net/http"
)

// reject ends the request with a JSON error body, the same shape the API
// handlers use.
func reject(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: http.StatusText(status)})
}
