package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrUnknownSortColumn),
		errors.Is(err, dashboard.ErrUnknownDateRange),
		errors.Is(err, dashboard.ErrMalformedLayout),
		errors.Is(err, dashboard.ErrUnknownPageAction),
		errors.Is(err, dashboard.ErrUnknownCommand),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrGridStatic),
		errors.Is(err, dashboard.ErrGridNotInitialized),
		errors.Is(err, dashboard.ErrDestroyed):
		return http.StatusConflict
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrBadRequest marks request payload problems.
var ErrBadRequest = errors.New("httpapi: bad request")

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}
