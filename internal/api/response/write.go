package response

import (
	"encoding/json"
	"net/http"
)

// JSON encodes data before touching the response, so an encoding failure
// still produces a clean 500 instead of a truncated body
func JSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`)
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	// Game state changes with every move
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// NoContent writes a 204 for endpoints that only change state
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
