package handler

import (
	"context"
	"log/slog"
	"net/http"

	"printd/internal/service"
)

// SyncJobHandler exposes one scheduler job for manual triggering, so an
// operator can force a sweep without waiting for the next tick.
func SyncJobHandler(name string, run func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := run(r.Context()); err != nil {
			slog.Error("manual sync job failed", "job", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"job": name, "run": "ok"})
	}
}

// PlacesHandler serves the current place-name snapshot.
func PlacesHandler(cache *service.PlaceCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cache.Snapshot())
	}
}
