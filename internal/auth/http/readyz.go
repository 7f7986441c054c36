package http

import (
	"net/http"
	"time"

	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It degrades to 503 when the store
// cannot be reached.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
