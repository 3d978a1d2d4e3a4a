package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Configuration metrics
var (
	// configLoadTimestamp is the Unix time of the last successful Load.
	configLoadTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_config_load_timestamp",
		Help: "Unix timestamp of last notifier configuration load",
	})

	// configFallbacksTotal counts rejected environment overrides by variable.
	configFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_config_fallbacks_total",
		Help: "Total number of rejected environment overrides",
	}, []string{"field"})

	// configFallbackActive is 1 when the running configuration ignored at
	// least one environment override.
	configFallbackActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_config_fallback_active",
		Help: "1 if any environment override was rejected at load, 0 otherwise",
	})
)

func recordFallback(field string) {
	configFallbacksTotal.WithLabelValues(field).Inc()
}

func recordLoad(fallbacks int) {
	configLoadTimestamp.SetToCurrentTime()
	if fallbacks > 0 {
		configFallbackActive.Set(1)
	} else {
		configFallbackActive.Set(0)
	}
}
