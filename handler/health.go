package handler

import (
	"net/http"
	"time"
)

// healthcheckHandler reports liveness. It always answers 200 while the
// process is up.
func (h *Handler) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	health := envelope{
		"success":     true,
		"message":     "book inventory API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.config.Server.Env,
		"port":        h.config.Server.Port,
	}
	err := h.encodeJSON(w, http.StatusOK, health, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
