// Package config holds the notifier configuration. A Config is built once at
// startup (defaults, then the YAML file, then environment overrides), validated,
// and then passed by pointer to every component. Nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"time"

	"wiki-notify/internal/domain/entity"
)

// SendMethod selects the webhook transport.
type SendMethod string

const (
	// SendMethodLibrary posts through a pooled HTTP client with a buffered body.
	SendMethodLibrary SendMethod = "library"
	// SendMethodStreaming posts through a one-shot connection with a chunked body.
	SendMethodStreaming SendMethod = "streaming"
)

// ColorStyle selects how attachment colors are written on the wire.
type ColorStyle string

const (
	// ColorStyleSemantic writes good / warning / danger.
	ColorStyleSemantic ColorStyle = "semantic"
	// ColorStyleHex writes hex codes for platforms without semantic tokens.
	ColorStyleHex ColorStyle = "hex"
)

// Config is the full notifier configuration.
type Config struct {
	// SiteName is the wiki's display name, used when Webhook.SenderName is empty.
	SiteName string `yaml:"site_name"`

	Webhook    WebhookConfig    `yaml:"webhook"`
	Events     EventsConfig     `yaml:"events"`
	Details    DetailsConfig    `yaml:"details"`
	Exclusions ExclusionsConfig `yaml:"exclusions"`

	// SuppressingPermission silences notifications for actions performed by
	// users holding it. Empty disables the check.
	SuppressingPermission string `yaml:"suppressing_permission"`

	// GroupPermissions maps a user group to the permissions it grants.
	GroupPermissions map[string][]string `yaml:"group_permissions"`

	Wiki     WikiConfig     `yaml:"wiki"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// WebhookConfig describes the outbound webhook.
type WebhookConfig struct {
	URL        string `yaml:"url"`
	SenderName string `yaml:"sender_name"`
	// Channel overrides the webhook's default channel, e.g. "#wiki".
	Channel   string     `yaml:"channel"`
	IconEmoji string     `yaml:"icon_emoji"`
	Method    SendMethod `yaml:"send_method"`
	ProxyURL  string     `yaml:"proxy_url"`
	Timeout   Duration   `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification. Off unless
	// explicitly enabled.
	InsecureSkipVerify bool       `yaml:"insecure_skip_verify"`
	ColorStyle         ColorStyle `yaml:"color_style"`
	// RateLimitPerSecond caps outbound posts. Zero disables the limiter.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
}

// EventsConfig toggles each event kind.
type EventsConfig struct {
	PageSaved         bool `yaml:"page_saved"`
	PageCreated       bool `yaml:"page_created"`
	PageDeleted       bool `yaml:"page_deleted"`
	PageMoved         bool `yaml:"page_moved"`
	PageProtected     bool `yaml:"page_protected"`
	UserCreated       bool `yaml:"user_created"`
	UserBlocked       bool `yaml:"user_blocked"`
	FileUploaded      bool `yaml:"file_uploaded"`
	UserGroupsChanged bool `yaml:"user_groups_changed"`
}

// Enabled reports whether notifications for kind are switched on.
func (e EventsConfig) Enabled(kind entity.Kind) bool {
	switch kind {
	case entity.KindPageSaved:
		return e.PageSaved
	case entity.KindPageCreated:
		return e.PageCreated
	case entity.KindPageDeleted:
		return e.PageDeleted
	case entity.KindPageMoved:
		return e.PageMoved
	case entity.KindPageProtected:
		return e.PageProtected
	case entity.KindUserCreated:
		return e.UserCreated
	case entity.KindUserBlocked:
		return e.UserBlocked
	case entity.KindFileUploaded:
		return e.FileUploaded
	case entity.KindUserGroupsChanged:
		return e.UserGroupsChanged
	}
	return false
}

// DetailsConfig toggles optional message content.
type DetailsConfig struct {
	IncludePageURLs     bool `yaml:"include_page_urls"`
	IncludeUserURLs     bool `yaml:"include_user_urls"`
	IgnoreMinorEdits    bool `yaml:"ignore_minor_edits"`
	IncludeDiffSize     bool `yaml:"include_diff_size"`
	ShowNewUserEmail    bool `yaml:"show_new_user_email"`
	ShowNewUserFullName bool `yaml:"show_new_user_fullname"`
	ShowNewUserIP       bool `yaml:"show_new_user_ip"`
}

// ExclusionsConfig lists subjects that never produce notifications.
type ExclusionsConfig struct {
	// Namespaces are matched exactly against the title namespace.
	Namespaces []string `yaml:"namespaces"`
	// Titles are matched as prefixes of the base title (without namespace).
	Titles []string `yaml:"titles"`
	// LegacyPrefixes are matched as prefixes of the full title.
	LegacyPrefixes []string `yaml:"legacy_prefixes"`
	// IncludeOnly, when set, suppresses every title not starting with one of its entries.
	IncludeOnly []string `yaml:"include_only"`
}

// WikiConfig describes how links into the wiki are built.
type WikiConfig struct {
	BaseURL    string `yaml:"base_url"`
	ScriptPath string `yaml:"script_path"`

	UserPage      string `yaml:"user_page"`
	BlockUser     string `yaml:"block_user"`
	UserRights    string `yaml:"user_rights"`
	UserTalk      string `yaml:"user_talk"`
	Contributions string `yaml:"contributions"`
	BlockList     string `yaml:"block_list"`
	EditAction    string `yaml:"edit_action"`
	DeleteAction  string `yaml:"delete_action"`
	HistoryAction string `yaml:"history_action"`
	DiffAction    string `yaml:"diff_action"`
}

// DispatchConfig controls where the dispatch step runs.
type DispatchConfig struct {
	// Async moves dispatch off the caller's path onto a bounded worker pool.
	Async         bool     `yaml:"async"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	QueueTimeout  Duration `yaml:"queue_timeout"`
}

// ServerConfig configures the ingest and metrics listeners.
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsPort int    `yaml:"metrics_port"`
	// HookToken, when set, must be presented in the X-Hook-Token header.
	HookToken string `yaml:"hook_token"`
	// TraceSampleRatio is the share of root spans that are sampled.
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when neither file nor environment
// says otherwise. All event kinds are on, links and diff sizes are shown, and
// new-user personal data is hidden.
func Default() *Config {
	return &Config{
		SiteName: "Wiki",
		Webhook: WebhookConfig{
			Method:     SendMethodLibrary,
			Timeout:    Duration(5 * time.Second),
			ColorStyle: ColorStyleSemantic,
		},
		Events: EventsConfig{
			PageSaved:         true,
			PageCreated:       true,
			PageDeleted:       true,
			PageMoved:         true,
			PageProtected:     true,
			UserCreated:       true,
			UserBlocked:       true,
			FileUploaded:      true,
			UserGroupsChanged: true,
		},
		Details: DetailsConfig{
			IncludePageURLs: true,
			IncludeUserURLs: true,
			IncludeDiffSize: true,
		},
		Wiki: WikiConfig{
			ScriptPath:    "index.php?title=",
			UserPage:      "User:",
			BlockUser:     "Special:Block/",
			UserRights:    "Special:UserRights/",
			UserTalk:      "User_talk:",
			Contributions: "Special:Contributions/",
			BlockList:     "Special:BlockList",
			EditAction:    "action=edit",
			DeleteAction:  "action=delete",
			HistoryAction: "action=history",
			DiffAction:    "diff=prev&oldid=",
		},
		Dispatch: DispatchConfig{
			MaxConcurrent: 10,
			QueueTimeout:  Duration(5 * time.Second),
		},
		Server: ServerConfig{
			ListenAddr:       ":8080",
			MetricsPort:      9090,
			TraceSampleRatio: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// SenderName returns the configured sender name, or the site name when unset.
func (c *Config) SenderName() string {
	if c.Webhook.SenderName != "" {
		return c.Webhook.SenderName
	}
	return c.SiteName
}

// Validate checks configuration correctness. An empty webhook URL is allowed:
// the dispatcher treats it as a no-op and logs a warning per event.
func (c *Config) Validate() error {
	var errs []error

	if c.Webhook.URL != "" {
		if err := entity.ValidateURL("webhook.url", c.Webhook.URL, "http", "https"); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Webhook.ProxyURL != "" {
		if err := entity.ValidateURL("webhook.proxy_url", c.Webhook.ProxyURL, "http", "https", "socks5"); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Webhook.Method {
	case SendMethodLibrary, SendMethodStreaming:
	default:
		errs = append(errs, fmt.Errorf("webhook.send_method must be %q or %q, got %q",
			SendMethodLibrary, SendMethodStreaming, c.Webhook.Method))
	}

	switch c.Webhook.ColorStyle {
	case ColorStyleSemantic, ColorStyleHex:
	default:
		errs = append(errs, fmt.Errorf("webhook.color_style must be %q or %q, got %q",
			ColorStyleSemantic, ColorStyleHex, c.Webhook.ColorStyle))
	}

	if c.Webhook.Timeout.Std() <= 0 {
		errs = append(errs, fmt.Errorf("webhook.timeout must be positive, got %v", c.Webhook.Timeout.Std()))
	}

	if c.Webhook.RateLimitPerSecond < 0 {
		errs = append(errs, fmt.Errorf("webhook.rate_limit_per_second cannot be negative"))
	}

	if c.Wiki.BaseURL != "" {
		if err := entity.ValidateURL("wiki.base_url", c.Wiki.BaseURL, "http", "https"); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Dispatch.Async {
		if c.Dispatch.MaxConcurrent < 1 || c.Dispatch.MaxConcurrent > 100 {
			errs = append(errs, fmt.Errorf("dispatch.max_concurrent must be between 1 and 100, got %d",
				c.Dispatch.MaxConcurrent))
		}
		if c.Dispatch.QueueTimeout.Std() <= 0 {
			errs = append(errs, fmt.Errorf("dispatch.queue_timeout must be positive"))
		}
	}

	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("server.metrics_port must be between 1 and 65535, got %d",
			c.Server.MetricsPort))
	}

	if c.Server.TraceSampleRatio < 0 || c.Server.TraceSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("server.trace_sample_ratio must be between 0 and 1, got %v",
			c.Server.TraceSampleRatio))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
