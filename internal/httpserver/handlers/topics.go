package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
)

type topicsResponse struct {
	Topics []*domain.Topic `json:"topics"`
}

func ListTopics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := d.Topics.List(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, topicsResponse{Topics: topics})
	}
}

func GetTopic(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic, err := d.Topics.Get(r.Context(), pathParam(r, "key"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, topic)
	}
}
