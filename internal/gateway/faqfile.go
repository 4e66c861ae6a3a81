package gateway

import "net/http"

// handleFAQFile returns an http.HandlerFunc for GET /faq.json. It serves
// the persisted FAQ collection straight from disk, the same file the
// download command hands out over chat.
func (g *Gateway) handleFAQFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "faq store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, g.store.Path())
	}
}
