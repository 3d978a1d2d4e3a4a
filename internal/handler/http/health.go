package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"wiki-notify/internal/config"
	"wiki-notify/internal/observability/logging"
)

// Health states. Degraded still answers 200: the process works, but some
// notifications will not be delivered.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports whether the notifier can deliver anything.
type HealthHandler struct {
	Config  *config.Config
	Version string
	Ready   *ReadyHandler
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]CheckStatus{
		"webhook":  h.checkWebhook(),
		"dispatch": h.checkDispatch(),
	}

	status, code := StatusHealthy, http.StatusOK
	for _, c := range checks {
		switch c.Status {
		case StatusUnhealthy:
			status, code = StatusUnhealthy, http.StatusServiceUnavailable
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

func (h *HealthHandler) checkWebhook() CheckStatus {
	if h.Config == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	wh := h.Config.Webhook
	if wh.URL == "" {
		return CheckStatus{Status: StatusDegraded, Message: "webhook URL is empty, notifications are dropped"}
	}
	details := map[string]any{
		"url":         logging.RedactURL(wh.URL),
		"send_method": string(wh.Method),
		"timeout":     wh.Timeout.Std().String(),
	}
	if wh.ProxyURL != "" {
		details["proxy"] = logging.RedactURL(wh.ProxyURL)
	}
	if wh.InsecureSkipVerify {
		return CheckStatus{Status: StatusDegraded, Message: "TLS verification disabled", Details: details}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkDispatch() CheckStatus {
	if h.Ready != nil && !h.Ready.IsReady() {
		return CheckStatus{Status: StatusUnhealthy, Message: "shutting down"}
	}
	mode := "sync"
	details := map[string]any{"mode": mode}
	if h.Config != nil && h.Config.Dispatch.Async {
		details["mode"] = "async"
		details["max_concurrent"] = h.Config.Dispatch.MaxConcurrent
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler answers readiness probes. It turns unready once draining starts.
type ReadyHandler struct {
	draining atomic.Bool
}

// SetDraining marks the process as shutting down.
func (h *ReadyHandler) SetDraining() {
	h.draining.Store(true)
}

// IsReady reports whether the process still accepts callbacks.
func (h *ReadyHandler) IsReady() bool {
	return !h.draining.Load()
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.IsReady() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Warn("ready: failed to write response", slog.Any("error", err))
	}
}
