// Package utils holds the small helpers shared across the HTTP surface:
// JSON response writing and API key hashing.
package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithError writes a JSON error body with the given status code.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithJSON writes the payload as a JSON response. Encoding failures
// after the header is written can only be reported on the wire as-is.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return err
	}
	return nil
}
