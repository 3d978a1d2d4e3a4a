package main

import (
	"fmt"
	"net/http"
	"time"

	"wiki-notify/internal/config"
	hhttp "wiki-notify/internal/handler/http"
)

// newMetricsServer builds the operations listener.
//
// Endpoints:
//   - GET /metrics - Prometheus scrape endpoint
//   - GET /health  - Webhook and dispatch status (503 while draining)
//   - GET /ready   - Readiness probe
func newMetricsServer(cfg *config.Config, ready *hhttp.ReadyHandler, version string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /health", &hhttp.HealthHandler{Config: cfg, Version: version, Ready: ready})
	mux.Handle("GET /ready", ready)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
