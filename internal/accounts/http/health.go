package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
	"github.com/aussiebroadwan/qayimli/pkg/httpx"
	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
)

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler answers 503 when the database is unreachable or no token
// verifier is configured.
func ReadyzHandler(startTime time.Time, version string, st store.Store, verifier jwtx.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if verifier == nil {
			checks.Signer = "error: no verifier configured"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
