package http

import (
	"net/http"
	"time"

	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

// LivezHandler is the liveness probe. It answers 200 whenever the process
// is up, independent of dependency health.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
