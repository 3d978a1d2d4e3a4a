// Package format turns a NotificationEvent into an OutboundMessage.
//
// Each event kind has exactly one template, looked up in a dispatch table.
// Templates are pure: they read the event and the detail toggles, call the
// LinkBuilder, and never consult the clock. Formatting the same event twice
// yields identical messages.
package format

import (
	"errors"
	"fmt"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
)

// Placeholders rendered instead of empty free text.
const (
	NoSummary = "none provided"
	NoReason  = "none given"
)

// ErrUnsupportedKind is returned for events whose kind has no template.
var ErrUnsupportedKind = errors.New("no template for event kind")

// template renders one event kind.
type template func(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage

// Formatter builds outbound messages. It is safe for concurrent use.
type Formatter struct {
	details   config.DetailsConfig
	links     LinkBuilder
	templates map[entity.Kind]template
}

// New creates a Formatter using the given detail toggles and link builder.
func New(details config.DetailsConfig, links LinkBuilder) *Formatter {
	return &Formatter{
		details: details,
		links:   links,
		templates: map[entity.Kind]template{
			entity.KindPageSaved:         formatPageSaved,
			entity.KindPageCreated:       formatPageCreated,
			entity.KindPageDeleted:       formatPageDeleted,
			entity.KindPageMoved:         formatPageMoved,
			entity.KindPageProtected:     formatPageProtected,
			entity.KindUserCreated:       formatUserCreated,
			entity.KindUserBlocked:       formatUserBlocked,
			entity.KindFileUploaded:      formatFileUploaded,
			entity.KindUserGroupsChanged: formatUserGroupsChanged,
		},
	}
}

// Format renders ev. The event must already be validated.
func (f *Formatter) Format(ev entity.NotificationEvent) (entity.OutboundMessage, error) {
	tmpl, ok := f.templates[ev.Kind]
	if !ok {
		return entity.OutboundMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, ev.Kind)
	}
	return tmpl(f, ev), nil
}

// message wraps a finished sentence into the single-attachment message shape
// shared by every template.
func (f *Formatter) message(ev entity.NotificationEvent, s *sentence, color entity.Color, fields []entity.Field) entity.OutboundMessage {
	if fields == nil {
		fields = []entity.Field{}
	}
	title := ev.Subject.Title.FullText()
	return entity.OutboundMessage{
		Text: s.Plain(),
		Attachments: []entity.Attachment{{
			Fallback:  s.Plain(),
			Color:     color,
			Title:     title,
			TitleLink: f.links.PageURL(ev.Subject.Title, PageView),
			Text:      s.Rich(),
			Fields:    fields,
			Timestamp: ev.Timestamp.Unix(),
		}},
	}
}

// user writes a user name linked to its user page, followed by the user
// action links when they are enabled.
func (f *Formatter) user(s *sentence, name string) {
	s.link(name, f.links.UserURL(name, UserPage))
	if !f.details.IncludeUserURLs {
		return
	}
	s.richOnly(actionLinks(
		[2]string{"block", f.links.UserURL(name, UserBlock)},
		[2]string{"groups", f.links.UserURL(name, UserGroups)},
		[2]string{"talk", f.links.UserURL(name, UserTalk)},
		[2]string{"contribs", f.links.UserURL(name, UserContribs)},
	))
}

// page writes a title linked to the page, followed by the page action links
// when they are enabled. A positive revisionID adds a diff link.
func (f *Formatter) page(s *sentence, title entity.Title, revisionID int64) {
	s.link(title.FullText(), f.links.PageURL(title, PageView))
	if !f.details.IncludePageURLs {
		return
	}
	links := [][2]string{
		{"edit", f.links.PageURL(title, PageEdit)},
		{"delete", f.links.PageURL(title, PageDelete)},
		{"history", f.links.PageURL(title, PageHistory)},
	}
	if revisionID > 0 {
		links = append(links, [2]string{"diff", f.links.DiffURL(title, revisionID)})
	}
	s.richOnly(actionLinks(links...))
}

// sizeField appends the diff-size suffix and field when enabled and known.
func (f *Formatter) sizeField(s *sentence, ev entity.NotificationEvent, fields []entity.Field) []entity.Field {
	if !f.details.IncludeDiffSize || ev.SizeDelta == nil {
		return fields
	}
	delta := SizeDelta(*ev.SizeDelta)
	s.text(" " + delta)
	return append(fields, entity.Field{Name: "Size", Value: delta, Short: true})
}
