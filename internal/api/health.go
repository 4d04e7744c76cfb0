package api

import "net/http"

// HandleHealth serves GET /health (liveness check). clients reports the
// number of live sync connections.
func HandleHealth(clients func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "pasosync",
			"clients": clients(),
		})
	}
}

// HandleMetrics serves GET /metrics as the JSON snapshot returned by snapshot
func HandleMetrics[T any](snapshot func() T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, snapshot())
	}
}
