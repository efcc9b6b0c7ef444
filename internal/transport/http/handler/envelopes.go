package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campus-market-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/register responses. Tokens travel in cookies, so
// the body only carries the user view.
type AuthEnvelope struct {
	User    *domain.SafeUser `json:"user,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ItemEnvelope wraps single-item responses.
type ItemEnvelope struct {
	Item  *domain.Item `json:"item,omitempty"`
	Error string       `json:"error,omitempty"`
}

// PaginatedItemsEnvelope wraps item list responses. NextCursor is empty on the
// last page.
type PaginatedItemsEnvelope struct {
	Data       []domain.Item `json:"data"`
	NextCursor string        `json:"next_cursor,omitempty"`
	Count      int           `json:"count"`
	Error      string        `json:"error,omitempty"`
}

// UploadEnvelope wraps image upload responses.
type UploadEnvelope struct {
	URLs  []string `json:"urls,omitempty"`
	Error string   `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
