package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/usecase/format"
)

func newTestBuilder() *URLBuilder {
	cfg := config.Default().Wiki
	cfg.BaseURL = "https://wiki.example.org/"
	return NewURLBuilder(cfg)
}

func TestURLBuilder_PageURL(t *testing.T) {
	b := newTestBuilder()
	title := entity.Title{Namespace: "Help", Text: "Getting started"}

	tests := []struct {
		name string
		link format.PageLink
		want string
	}{
		{"view", format.PageView, "https://wiki.example.org/index.php?title=Help:Getting_started"},
		{"edit", format.PageEdit, "https://wiki.example.org/index.php?title=Help:Getting_started&action=edit"},
		{"delete", format.PageDelete, "https://wiki.example.org/index.php?title=Help:Getting_started&action=delete"},
		{"history", format.PageHistory, "https://wiki.example.org/index.php?title=Help:Getting_started&action=history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.PageURL(title, tt.link))
		})
	}
}

func TestURLBuilder_EscapesTitles(t *testing.T) {
	b := newTestBuilder()
	got := b.PageURL(entity.Title{Text: "Q&A/Part 1?"}, format.PageView)
	assert.Equal(t, "https://wiki.example.org/index.php?title=Q%26A/Part_1%3F", got)
}

func TestURLBuilder_DiffURL(t *testing.T) {
	b := newTestBuilder()
	assert.Equal(t,
		"https://wiki.example.org/index.php?title=Main_Page&diff=prev&oldid=1234",
		b.DiffURL(entity.Title{Text: "Main Page"}, 1234))
}

func TestURLBuilder_UserURL(t *testing.T) {
	b := newTestBuilder()

	tests := []struct {
		link format.UserLink
		want string
	}{
		{format.UserPage, "https://wiki.example.org/index.php?title=User:Jane_Doe"},
		{format.UserBlock, "https://wiki.example.org/index.php?title=Special:Block/Jane_Doe"},
		{format.UserGroups, "https://wiki.example.org/index.php?title=Special:UserRights/Jane_Doe"},
		{format.UserTalk, "https://wiki.example.org/index.php?title=User_talk:Jane_Doe"},
		{format.UserContribs, "https://wiki.example.org/index.php?title=Special:Contributions/Jane_Doe"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, b.UserURL("Jane Doe", tt.link))
	}
	assert.Equal(t, "https://wiki.example.org/index.php?title=Special:BlockList", b.BlockListURL())
}

func TestURLBuilder_NoBaseURL(t *testing.T) {
	b := NewURLBuilder(config.Default().Wiki)
	assert.Empty(t, b.PageURL(entity.Title{Text: "X"}, format.PageView))
	assert.Empty(t, b.DiffURL(entity.Title{Text: "X"}, 1))
	assert.Empty(t, b.UserURL("Bob", format.UserTalk))
	assert.Empty(t, b.BlockListURL())
}

func TestRightsChecker_HasPermission(t *testing.T) {
	checker := NewRightsChecker(map[string][]string{
		"bot":   {"bot", "autopatrol"},
		"sysop": {"block", "delete"},
	})

	tests := []struct {
		name       string
		user       entity.User
		permission string
		want       bool
	}{
		{"direct right", entity.User{Name: "A", Rights: []string{"bot"}}, "bot", true},
		{"granted by group", entity.User{Name: "B", Groups: []string{"bot"}}, "bot", true},
		{"group without permission", entity.User{Name: "C", Groups: []string{"sysop"}}, "bot", false},
		{"unknown group", entity.User{Name: "D", Groups: []string{"ghost"}}, "bot", false},
		{"case sensitive", entity.User{Name: "E", Rights: []string{"Bot"}}, "bot", false},
		{"empty permission", entity.User{Name: "F", Rights: []string{""}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.HasPermission(tt.user, tt.permission))
		})
	}
}

func TestRightsChecker_NilTable(t *testing.T) {
	checker := NewRightsChecker(nil)
	assert.False(t, checker.HasPermission(entity.User{Name: "A", Groups: []string{"bot"}}, "bot"))
	assert.True(t, checker.HasPermission(entity.User{Name: "A", Rights: []string{"bot"}}, "bot"))
}
