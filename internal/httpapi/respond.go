package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"jobtrail/core-service/internal/apperr"
)

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeErr maps the error taxonomy onto HTTP status codes: not-found 404,
// validation 400, transient 503, everything else 500 with the detail kept
// out of the response.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsNotFound(err):
		jsonError(w, "not found", http.StatusNotFound)
	case apperr.IsValidation(err):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case apperr.IsTransient(err):
		slog.Warn("transient failure", "err", err)
		jsonError(w, "temporarily unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error("internal error", "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

// userID extracts the x-user-id header forwarded by the gateway. An empty
// value means the request never went through the gateway's auth.
func userID(r *http.Request) (string, bool) {
	uid := r.Header.Get("x-user-id")
	return uid, uid != ""
}

// pathID validates a uuid path parameter before it reaches a query.
func pathID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.Validationf("invalid id %q", raw)
	}
	return id.String(), nil
}
