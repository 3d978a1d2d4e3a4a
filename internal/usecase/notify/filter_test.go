package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name       string
		exclusions config.ExclusionsConfig
		titles     []entity.Title
		wantReason Reason
		wantMatch  bool
	}{
		{
			name:   "no rules",
			titles: []entity.Title{{Text: "Anything"}},
		},
		{
			name:       "namespace exact",
			exclusions: config.ExclusionsConfig{Namespaces: []string{"Talk"}},
			titles:     []entity.Title{{Namespace: "Talk", Text: "Main Page"}},
			wantReason: ReasonNamespace,
			wantMatch:  true,
		},
		{
			name:       "namespace is not a prefix match",
			exclusions: config.ExclusionsConfig{Namespaces: []string{"Talk"}},
			titles:     []entity.Title{{Namespace: "Talkative", Text: "X"}},
		},
		{
			name:       "main namespace ignores namespace rules",
			exclusions: config.ExclusionsConfig{Namespaces: []string{""}},
			titles:     []entity.Title{{Text: "X"}},
		},
		{
			name:       "base title prefix",
			exclusions: config.ExclusionsConfig{Titles: []string{"Sandbox"}},
			titles:     []entity.Title{{Namespace: "User", Text: "Sandbox/Alice"}},
			wantReason: ReasonTitlePrefix,
			wantMatch:  true,
		},
		{
			name:       "title prefix is case-sensitive",
			exclusions: config.ExclusionsConfig{Titles: []string{"sandbox"}},
			titles:     []entity.Title{{Text: "Sandbox"}},
		},
		{
			name:       "legacy full title prefix",
			exclusions: config.ExclusionsConfig{LegacyPrefixes: []string{"Help:Draft"}},
			titles:     []entity.Title{{Namespace: "Help", Text: "Drafting"}},
			wantReason: ReasonLegacyPrefix,
			wantMatch:  true,
		},
		{
			name:       "title rule does not see the namespace",
			exclusions: config.ExclusionsConfig{Titles: []string{"Help:"}},
			titles:     []entity.Title{{Namespace: "Help", Text: "FAQ"}},
		},
		{
			name:       "include-only passes listed prefix",
			exclusions: config.ExclusionsConfig{IncludeOnly: []string{"Project:"}},
			titles:     []entity.Title{{Namespace: "Project", Text: "Roadmap"}},
		},
		{
			name:       "include-only suppresses others",
			exclusions: config.ExclusionsConfig{IncludeOnly: []string{"Project:"}},
			titles:     []entity.Title{{Text: "Roadmap"}},
			wantReason: ReasonNotIncluded,
			wantMatch:  true,
		},
		{
			name:       "empty entries are ignored",
			exclusions: config.ExclusionsConfig{Titles: []string{""}, LegacyPrefixes: []string{""}, IncludeOnly: []string{""}},
			titles:     []entity.Title{{Text: "Roadmap"}},
		},
		{
			name:       "namespace wins over title prefix",
			exclusions: config.ExclusionsConfig{Namespaces: []string{"Talk"}, Titles: []string{"Main"}},
			titles:     []entity.Title{{Namespace: "Talk", Text: "Main Page"}},
			wantReason: ReasonNamespace,
			wantMatch:  true,
		},
		{
			name:       "move destination excluded",
			exclusions: config.ExclusionsConfig{Namespaces: []string{"Archive"}},
			titles:     []entity.Title{{Text: "Plan"}, {Namespace: "Archive", Text: "Plan"}},
			wantReason: ReasonNamespace,
			wantMatch:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.exclusions)

			reason, ok := f.Match(tt.titles...)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantMatch, f.IsSuppressed(tt.titles...))
		})
	}
}
