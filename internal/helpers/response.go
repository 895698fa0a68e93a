package helpers

import (
	"encoding/json"
	"net/http"

	"portal/internal/models"

	"go.uber.org/zap"
)

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, errors []string) {
	RespondWithJSON(w, code, models.Error{Status: code, Error: errors})
}

// WantsJSON reports whether the client asked for a JSON answer instead of a page.
func WantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" ||
		r.Header.Get("Content-Type") == "application/json"
}
