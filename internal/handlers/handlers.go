package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	applog "github.com/akobyansamvel/sweet/internal/log"
)

// Error kinds carried in JSON error bodies. The client shows a generic
// message today, but the kind lets a richer UI tell failures apart.
const (
	kindValidation    = "validation_error"
	kindNotFound      = "not_found"
	kindConflict      = "conflict"
	kindMissingConfig = "missing_configuration"
	kindDangling      = "dangling_reference"
	kindInternal      = "internal"
)

var database *gorm.DB

// Configure installs the shared database handle used by the HTTP handlers.
func Configure(db *gorm.DB) {
	database = db
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// pathID extracts the {id} route parameter. A missing or malformed value
// writes a not-found response and reports false.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	idValue, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || idValue == 0 {
		applog.Debug(r.Context(), "invalid resource identifier", "identifier", raw, "error", err)
		writeJSONError(w, http.StatusNotFound, kindNotFound, "resource not found")
		return 0, false
	}
	return uint(idValue), true
}

func requireDatabase(w http.ResponseWriter, r *http.Request) bool {
	if database == nil {
		applog.Debug(r.Context(), "request without configured database")
		writeJSONError(w, http.StatusServiceUnavailable, kindInternal, "service unavailable")
		return false
	}
	return true
}
