package api

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck reports liveness and whether the database answers a ping
// within two seconds. The status code is 200 either way.
func (s *APIServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	if s.deps.DB == nil {
		database = "unconfigured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.Connect(ctx); err != nil {
			s.logger.Warn("database ping failed", "error", err)
			database = "unavailable"
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}
