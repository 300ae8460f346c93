package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v with the given status and marks the response no-store.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// NoContent answers 204 for actions that return nothing, such as sending a
// reset email.
func NoContent(w http.ResponseWriter) {
	NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
