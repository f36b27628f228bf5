package controllers

import (
	"net/http"

	"github.com/svelazco/storeflow-backend/api/responses"
	"github.com/svelazco/storeflow-backend/internal/availability"
)

// Live answers as long as the process is up.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Ready reports the cached backend state. The service keeps answering from
// memory while degraded, so readiness stays 200 with the mode exposed.
func Ready(prober *availability.Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "unavailable"
		mode := "memory"
		if prober != nil && prober.Available() {
			database = "available"
			mode = "relational"
		}
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": database,
			"mode":     mode,
		})
	}
}
