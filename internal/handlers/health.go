package handlers

import (
	"net/http"
	"time"
)

// Health reports liveness. No dependency checks, load balancers hit this.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Hospitality Hub API is running",
		Data: map[string]interface{}{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
