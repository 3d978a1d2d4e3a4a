package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when NOTIFIER_CONFIG is not set. A missing file at the
// default path is not an error.
const DefaultPath = "config/notifier.yaml"

// Load builds the configuration: defaults, then the YAML file at path (skipped
// when path is empty), then environment overrides. It returns warnings for
// environment values that could not be applied; those fall back to the value
// from the file or the defaults. The returned Config has been validated.
func Load(path string) (*Config, []string, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path comes from the operator (env var or default), not from requests
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, nil, err
		}
	}

	warnings := applyEnv(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("invalid notifier configuration: %w", err)
	}

	recordLoad(len(warnings))
	return cfg, warnings, nil
}

// ResolvePath returns the configuration path to load: NOTIFIER_CONFIG when set,
// otherwise DefaultPath if it exists, otherwise "" (defaults and env only).
func ResolvePath() string {
	if p := os.Getenv("NOTIFIER_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// decode overlays YAML data onto cfg. Unknown keys are rejected so typos in
// toggle names do not silently leave an event enabled.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// envOverride maps one environment variable onto the configuration.
type envOverride struct {
	key   string
	apply func(cfg *Config, value string) error
}

var envOverrides = []envOverride{
	{"NOTIFIER_WEBHOOK_URL", func(c *Config, v string) error { c.Webhook.URL = v; return nil }},
	{"NOTIFIER_CHANNEL", func(c *Config, v string) error { c.Webhook.Channel = v; return nil }},
	{"NOTIFIER_SENDER_NAME", func(c *Config, v string) error { c.Webhook.SenderName = v; return nil }},
	{"NOTIFIER_PROXY_URL", func(c *Config, v string) error { c.Webhook.ProxyURL = v; return nil }},
	{"NOTIFIER_SEND_METHOD", func(c *Config, v string) error {
		m := SendMethod(strings.ToLower(v))
		if m != SendMethodLibrary && m != SendMethodStreaming {
			return fmt.Errorf("must be %q or %q", SendMethodLibrary, SendMethodStreaming)
		}
		c.Webhook.Method = m
		return nil
	}},
	{"NOTIFIER_WEBHOOK_TIMEOUT", func(c *Config, v string) error {
		var d Duration
		if err := d.UnmarshalYAML(&yaml.Node{Kind: yaml.ScalarNode, Value: v}); err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("must be positive")
		}
		c.Webhook.Timeout = d
		return nil
	}},
	{"NOTIFIER_SUPPRESSING_PERMISSION", func(c *Config, v string) error { c.SuppressingPermission = v; return nil }},
	{"NOTIFIER_ASYNC", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Dispatch.Async = b
		return nil
	}},
	{"NOTIFIER_HOOK_TOKEN", func(c *Config, v string) error { c.Server.HookToken = v; return nil }},
	{"NOTIFIER_LISTEN_ADDR", func(c *Config, v string) error { c.Server.ListenAddr = v; return nil }},
	{"METRICS_PORT", func(c *Config, v string) error {
		port, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if port <= 0 || port > 65535 {
			return fmt.Errorf("port out of range")
		}
		c.Server.MetricsPort = port
		return nil
	}},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error {
		f := strings.ToLower(v)
		if f != "json" && f != "text" {
			return fmt.Errorf("must be json or text")
		}
		c.Log.Format = f
		return nil
	}},
}

// applyEnv applies every set environment override and collects a warning for
// each value that was rejected.
func applyEnv(cfg *Config, getenv func(string) string) []string {
	var warnings []string
	for _, o := range envOverrides {
		value := getenv(o.key)
		if value == "" {
			continue
		}
		if err := o.apply(cfg, value); err != nil {
			warnings = append(warnings, fmt.Sprintf("Invalid %s='%s': %v, keeping configured value", o.key, value, err))
			recordFallback(o.key)
		}
	}
	return warnings
}
