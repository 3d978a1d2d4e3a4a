package format

import (
	"strings"

	"wiki-notify/internal/domain/entity"
)

func formatPageSaved(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	verb := " has edited page "
	if ev.Extra.Minor {
		verb = " has made a minor edit to page "
	}
	summary := orPlaceholder(ev.Summary, NoSummary)

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(verb)
	f.page(s, ev.Subject.Title, ev.Extra.RevisionID)
	s.text(". Summary: " + summary)

	fields := []entity.Field{{Name: "Summary", Value: summary}}
	fields = f.sizeField(s, ev, fields)
	return f.message(ev, s, entity.ColorYellow, fields)
}

func formatPageCreated(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	summary := orPlaceholder(ev.Summary, NoSummary)

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has created page ")
	f.page(s, ev.Subject.Title, 0)
	s.text(". Summary: " + summary)

	fields := []entity.Field{{Name: "Summary", Value: summary}}
	fields = f.sizeField(s, ev, fields)
	return f.message(ev, s, entity.ColorGreen, fields)
}

func formatPageDeleted(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	reason := orPlaceholder(ev.Summary, NoReason)

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has deleted page ")
	// The page is gone; only its name is rendered.
	s.text(ev.Subject.Title.FullText())
	s.text(". Reason: " + reason)

	msg := f.message(ev, s, entity.ColorRed, []entity.Field{
		{Name: "Reason", Value: reason},
	})
	msg.Attachments[0].TitleLink = ""
	return msg
}

func formatPageMoved(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	reason := orPlaceholder(ev.Summary, NoReason)
	from, to := ev.Subject.Title, ev.Extra.Destination

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has moved page ")
	s.link(from.FullText(), f.links.PageURL(from, PageView))
	s.text(" to ")
	f.page(s, to, 0)
	s.text(". Reason: " + reason)

	msg := f.message(ev, s, entity.ColorYellow, []entity.Field{
		{Name: "From", Value: from.FullText(), Short: true},
		{Name: "To", Value: to.FullText(), Short: true},
		{Name: "Reason", Value: reason},
	})
	// The destination is where the content lives now.
	msg.Attachments[0].Title = to.FullText()
	msg.Attachments[0].TitleLink = f.links.PageURL(to, PageView)
	return msg
}

func formatPageProtected(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	reason := orPlaceholder(ev.Summary, NoReason)
	verb := " has changed protection of page "
	if !ev.Extra.Protected {
		verb = " has removed protection of page "
	}

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(verb)
	f.page(s, ev.Subject.Title, 0)
	s.text(". Reason: " + reason)

	return f.message(ev, s, entity.ColorYellow, []entity.Field{
		{Name: "Reason", Value: reason},
	})
}

func formatUserCreated(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	account := ev.Subject.User

	var (
		extras []string
		fields []entity.Field
	)
	add := func(enabled bool, name, value string) {
		if !enabled {
			return
		}
		value = orPlaceholder(value, NoSummary)
		extras = append(extras, value)
		fields = append(fields, entity.Field{Name: name, Value: value, Short: true})
	}
	add(f.details.ShowNewUserEmail, "Email", account.Email)
	add(f.details.ShowNewUserFullName, "Real name", account.RealName)
	add(f.details.ShowNewUserIP, "IP", account.IP)

	s := &sentence{}
	s.text("New user account ")
	f.user(s, account.Name)
	s.text(" was just created")
	if len(extras) > 0 {
		s.text(" (" + strings.Join(extras, ", ") + ")")
	}

	return f.message(ev, s, entity.ColorGreen, fields)
}

func formatUserBlocked(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	reason := orPlaceholder(ev.Summary, NoReason)
	expiry := orPlaceholder(ev.Extra.BlockExpiry, "infinite")

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has blocked ")
	f.user(s, ev.Subject.User.Name)
	s.text(". Reason: " + reason + ". Block expiration: " + expiry + ".")
	if url := f.links.BlockListURL(); url != "" {
		s.richOnly(" " + richLink("List of all blocks", url))
	}

	return f.message(ev, s, entity.ColorRed, []entity.Field{
		{Name: "Reason", Value: reason},
		{Name: "Expires", Value: expiry, Short: true},
	})
}

func formatFileUploaded(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	summary := ev.Summary
	if strings.TrimSpace(summary) == "" {
		summary = ev.Extra.FileDescription
	}
	summary = orPlaceholder(summary, NoSummary)
	mime := orPlaceholder(ev.Extra.MimeType, "unknown")
	size := ByteSize(ev.Extra.FileSize)

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has uploaded file ")
	s.link(ev.Subject.Title.FullText(), f.links.PageURL(ev.Subject.Title, PageView))
	s.text(" (format: " + mime + ", size: " + size + ", summary: " + summary + ")")

	return f.message(ev, s, entity.ColorGreen, []entity.Field{
		{Name: "Format", Value: mime, Short: true},
		{Name: "Size", Value: size, Short: true},
		{Name: "Summary", Value: summary},
	})
}

func formatUserGroupsChanged(f *Formatter, ev entity.NotificationEvent) entity.OutboundMessage {
	groups := joinOr(ev.Extra.Groups, "none")
	reason := orPlaceholder(ev.Summary, NoReason)

	s := &sentence{}
	f.user(s, ev.Actor.Name)
	s.text(" has changed user groups for ")
	f.user(s, ev.Subject.User.Name)
	s.text(". New groups: " + groups)

	fields := []entity.Field{{Name: "New groups", Value: groups}}
	if len(ev.Extra.AddedGroups) > 0 {
		fields = append(fields, entity.Field{Name: "Added", Value: strings.Join(ev.Extra.AddedGroups, ", "), Short: true})
	}
	if len(ev.Extra.RemovedGroups) > 0 {
		fields = append(fields, entity.Field{Name: "Removed", Value: strings.Join(ev.Extra.RemovedGroups, ", "), Short: true})
	}
	fields = append(fields, entity.Field{Name: "Reason", Value: reason})

	return f.message(ev, s, entity.ColorYellow, fields)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
