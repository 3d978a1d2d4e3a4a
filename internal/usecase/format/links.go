package format

import "wiki-notify/internal/domain/entity"

// PageLink selects which page URL a LinkBuilder returns.
type PageLink int

const (
	PageView PageLink = iota
	PageEdit
	PageDelete
	PageHistory
)

// UserLink selects which user URL a LinkBuilder returns.
type UserLink int

const (
	UserPage UserLink = iota
	UserBlock
	UserGroups
	UserTalk
	UserContribs
)

// LinkBuilder is the host capability that turns titles and user names into
// absolute wiki URLs. An implementation may return "" when it cannot build a
// URL; the formatter then renders the label without a link.
type LinkBuilder interface {
	PageURL(title entity.Title, link PageLink) string
	DiffURL(title entity.Title, revisionID int64) string
	UserURL(name string, link UserLink) string
	BlockListURL() string
}
