package format

import "strings"

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape makes s safe inside Slack mrkdwn, including link labels.
func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}

// sentence builds the plain and the rich rendering of a message side by side.
// Plain text carries no markup; rich text is Slack mrkdwn.
type sentence struct {
	plain strings.Builder
	rich  strings.Builder
}

func (s *sentence) text(v string) *sentence {
	s.plain.WriteString(v)
	s.rich.WriteString(escape(v))
	return s
}

// link writes label, linked to url in the rich rendering when url is set.
func (s *sentence) link(label, url string) *sentence {
	s.plain.WriteString(label)
	s.rich.WriteString(richLink(label, url))
	return s
}

// richOnly appends markup that has no plain-text counterpart, such as the
// action links after a page or user name.
func (s *sentence) richOnly(v string) *sentence {
	s.rich.WriteString(v)
	return s
}

func (s *sentence) Plain() string { return s.plain.String() }
func (s *sentence) Rich() string  { return s.rich.String() }

func richLink(label, url string) string {
	if url == "" {
		return escape(label)
	}
	return "<" + url + "|" + escape(label) + ">"
}

// actionLinks renders " (<u1|a> | <u2|b>)" skipping empty URLs. It returns ""
// when no URL is available.
func actionLinks(links ...[2]string) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		if l[1] == "" {
			continue
		}
		parts = append(parts, richLink(l[0], l[1]))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " | ") + ")"
}

// orPlaceholder returns v, or placeholder when v is blank.
func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
