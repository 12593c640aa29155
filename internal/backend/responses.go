package backend

import (
	"encoding/json"
	"net/http"
)

// Error bodies use the hosted service's `{"error": "..."}` shape so the
// gateway sees the same surface against either backend.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
