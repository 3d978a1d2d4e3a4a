package notify

import (
	"slices"
	"strings"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
)

// Reason names the exclusion rule that suppressed a title.
type Reason string

const (
	ReasonNamespace    Reason = "namespace"
	ReasonTitlePrefix  Reason = "title_prefix"
	ReasonLegacyPrefix Reason = "legacy_prefix"
	ReasonNotIncluded  Reason = "not_included"
)

// Filter applies the subject exclusion rules. Comparisons are case-sensitive
// and literal; empty list entries are ignored.
type Filter struct {
	namespaces  []string
	titles      []string
	legacy      []string
	includeOnly []string
}

// NewFilter creates a Filter from the exclusion settings.
func NewFilter(cfg config.ExclusionsConfig) *Filter {
	return &Filter{
		namespaces:  nonEmpty(cfg.Namespaces),
		titles:      nonEmpty(cfg.Titles),
		legacy:      nonEmpty(cfg.LegacyPrefixes),
		includeOnly: nonEmpty(cfg.IncludeOnly),
	}
}

// Match reports the first rule suppressing any of titles. Each title is
// checked against namespace, title prefix, legacy prefix and then the
// include-only list, in that order.
func (f *Filter) Match(titles ...entity.Title) (Reason, bool) {
	for _, t := range titles {
		if reason, ok := f.match(t); ok {
			return reason, true
		}
	}
	return "", false
}

// IsSuppressed reports whether any of titles is excluded.
func (f *Filter) IsSuppressed(titles ...entity.Title) bool {
	_, ok := f.Match(titles...)
	return ok
}

func (f *Filter) match(t entity.Title) (Reason, bool) {
	if t.Namespace != "" && slices.Contains(f.namespaces, t.Namespace) {
		return ReasonNamespace, true
	}
	if hasAnyPrefix(t.Text, f.titles) {
		return ReasonTitlePrefix, true
	}
	full := t.FullText()
	if hasAnyPrefix(full, f.legacy) {
		return ReasonLegacyPrefix, true
	}
	if len(f.includeOnly) > 0 && !hasAnyPrefix(full, f.includeOnly) {
		return ReasonNotIncluded, true
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
