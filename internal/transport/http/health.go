package http

import (
	"context"
	stdhttp "net/http"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and database reachability.
func HealthHandler(db pinger) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		database := "connected"
		code := stdhttp.StatusOK
		if err := db.Ping(ctx); err != nil {
			status = "degraded"
			database = "unreachable"
			code = stdhttp.StatusServiceUnavailable
		}

		writeJSON(w, code, map[string]string{
			"status":   status,
			"database": database,
		})
	}
}
