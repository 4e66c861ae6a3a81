package gateway

import (
	"encoding/json"
	"net/http"
	"os"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"` // "ok" or "degraded"
	Entries int    `json:"entries"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the FAQ store is loaded and its backing file is
// readable, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status: "ok",
		}

		if g.store == nil {
			resp.Status = "degraded"
		} else {
			resp.Entries = g.store.Len()
			if _, err := os.Stat(g.store.Path()); err != nil {
				resp.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
