package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rodbv/clean-node-api/internal/controller"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeResponse serializes a controller envelope. Error bodies are reduced to
// their message.
func writeResponse(w http.ResponseWriter, resp controller.HTTPResponse) {
	if err, ok := resp.Body.(error); ok {
		writeError(w, resp.StatusCode, err.Error())
		return
	}
	writeJSON(w, resp.StatusCode, resp.Body)
}
