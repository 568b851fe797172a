package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// maxRequestBytes bounds request bodies; profiles and answers are small.
const maxRequestBytes = 1 << 20

// validatable is implemented by every request type in internal/types.
type validatable interface {
	Validate() error
}

// decodeRequest reads a JSON body into req and validates it. It writes a 400
// and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, req validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps err to a status and a client-safe message. Server
// side failures are logged with op.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s failed: %v", op, err)
	}
	writeError(w, status, publicMessage(err))
}
