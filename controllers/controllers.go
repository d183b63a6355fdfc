package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"linkup_server/apperr"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto an HTTP status and the shared
// `{"error": ...}` envelope. Dependency failures are masked.
func writeError(w http.ResponseWriter, err error) {
	log.Printf("❌ Request failed: %v", err)
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{"error": apperr.UserMessage(err)})
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running!"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the server! This is the Linkup API."})
}
