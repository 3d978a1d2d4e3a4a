// Package wiki provides the host capabilities the notifier reads from the
// wiki: building links to pages and users, and answering permission checks
// for the acting user.
package wiki

import (
	"net/url"
	"strconv"
	"strings"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/usecase/format"
)

var _ format.LinkBuilder = (*URLBuilder)(nil)

// keep ":" and "/" readable in titles such as "Help:FAQ" or "Sub/Page".
var titleUnescaper = strings.NewReplacer("%3A", ":", "%2F", "/")

// URLBuilder builds wiki URLs from the configured base URL, script path and
// per-action endings. With no base URL it returns "" for every link.
type URLBuilder struct {
	base string
	cfg  config.WikiConfig
}

// NewURLBuilder creates a URLBuilder from the wiki configuration.
func NewURLBuilder(cfg config.WikiConfig) *URLBuilder {
	b := &URLBuilder{cfg: cfg}
	if cfg.BaseURL != "" {
		b.base = cfg.BaseURL + cfg.ScriptPath
	}
	return b
}

// PageURL implements format.LinkBuilder.
func (b *URLBuilder) PageURL(title entity.Title, link format.PageLink) string {
	if b.base == "" {
		return ""
	}
	page := b.base + encodeTitle(title.FullText())
	switch link {
	case format.PageEdit:
		return page + "&" + b.cfg.EditAction
	case format.PageDelete:
		return page + "&" + b.cfg.DeleteAction
	case format.PageHistory:
		return page + "&" + b.cfg.HistoryAction
	default:
		return page
	}
}

// DiffURL implements format.LinkBuilder.
func (b *URLBuilder) DiffURL(title entity.Title, revisionID int64) string {
	if b.base == "" {
		return ""
	}
	return b.base + encodeTitle(title.FullText()) + "&" + b.cfg.DiffAction + strconv.FormatInt(revisionID, 10)
}

// UserURL implements format.LinkBuilder.
func (b *URLBuilder) UserURL(name string, link format.UserLink) string {
	if b.base == "" {
		return ""
	}
	var ending string
	switch link {
	case format.UserBlock:
		ending = b.cfg.BlockUser
	case format.UserGroups:
		ending = b.cfg.UserRights
	case format.UserTalk:
		ending = b.cfg.UserTalk
	case format.UserContribs:
		ending = b.cfg.Contributions
	default:
		ending = b.cfg.UserPage
	}
	return b.base + ending + encodeTitle(name)
}

// BlockListURL implements format.LinkBuilder.
func (b *URLBuilder) BlockListURL() string {
	if b.base == "" {
		return ""
	}
	return b.base + b.cfg.BlockList
}

// encodeTitle turns a display title into its URL form: spaces become
// underscores and everything else is query-escaped except ":" and "/".
func encodeTitle(s string) string {
	return titleUnescaper.Replace(url.QueryEscape(strings.ReplaceAll(s, " ", "_")))
}
