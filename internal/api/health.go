package api

import (
	"context"
	"net/http"
	"time"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/models/dtos/responses"
)

// Pinger checks a backing service.
type Pinger func(ctx context.Context) error

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(pingDB Pinger, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svcs := make(map[string]responses.ServiceStatus)

		pgStatus := responses.ServiceStatus{Status: "ok", Details: "Postgres Connected"}
		if err := pingDB(r.Context()); err != nil {
			pgStatus = responses.ServiceStatus{Status: "down", Details: err.Error()}
		}
		svcs["postgres"] = pgStatus

		overall := "ok"
		code := http.StatusOK
		for _, s := range svcs {
			if s.Status != "ok" {
				overall = "down"
				code = http.StatusServiceUnavailable
				break
			}
		}

		common.WriteJSON(w, code, responses.HealthCheckResponse{
			Status:   overall,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: svcs,
		})
	}
}
