package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime  int64         `json:"uptime_seconds"`
	Entries int           `json:"entries"`
	Reports *ReportStatus `json:"reports,omitempty"`
}

// ReportStatus summarizes the report subsystem configuration.
type ReportStatus struct {
	BugReportsAllowed bool `json:"bug_reports_allowed"`
	CooldownSeconds   int  `json:"cooldown_seconds"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime: int64(time.Since(g.startedAt).Seconds()),
		}

		if g.store != nil {
			resp.Entries = g.store.Len()
		}

		if g.reports != nil {
			resp.Reports = &ReportStatus{
				BugReportsAllowed: g.reports.AllowBugReports(),
				CooldownSeconds:   g.reports.CooldownSeconds(),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
