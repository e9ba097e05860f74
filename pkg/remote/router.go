package remote

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router returns the hub's HTTP routes:
//
//	GET {Path}         WebSocket endpoint
//	GET /debug/tree    tree as last delivered to clients, as HTML
//	GET /healthz       liveness and client count
//	GET /metrics       Prometheus metrics, when WithGatherer was given
func (h *Hub) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(h.cfg.Path, h.ServeWS)
	r.Get("/debug/tree", h.serveTree)
	r.Get("/healthz", h.serveHealth)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Hub) serveTree(w http.ResponseWriter, _ *http.Request) {
	html, stale := h.TreeHTML()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if stale {
		w.Header().Set("X-Vtree-Stale", "true")
	}
	w.Write([]byte(html))
}

func (h *Hub) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": h.Clients(),
	})
}
