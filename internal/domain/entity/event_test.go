package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle_FullText(t *testing.T) {
	tests := []struct {
		name  string
		title Title
		want  string
	}{
		{name: "main namespace", title: Title{Text: "Main Page"}, want: "Main Page"},
		{name: "help namespace", title: Title{Namespace: "Help", Text: "FAQ"}, want: "Help:FAQ"},
		{name: "user title helper", title: UserTitle("Alice"), want: "User:Alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.title.FullText())
		})
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range AllKinds {
		assert.True(t, k.Valid(), "kind %q should be valid", k)
	}
	assert.False(t, Kind("page_exploded").Valid())
	assert.False(t, Kind("").Valid())
}

func TestKind_IsUserKind(t *testing.T) {
	assert.True(t, KindUserCreated.IsUserKind())
	assert.True(t, KindUserBlocked.IsUserKind())
	assert.True(t, KindUserGroupsChanged.IsUserKind())
	assert.False(t, KindPageSaved.IsUserKind())
	assert.False(t, KindFileUploaded.IsUserKind())
}

func validPageEvent() NotificationEvent {
	return NotificationEvent{
		Kind:      KindPageSaved,
		Actor:     User{Name: "Alice"},
		Subject:   Subject{Title: Title{Namespace: "Help", Text: "FAQ"}},
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationEvent_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*NotificationEvent)
		wantField string
	}{
		{name: "valid page event", mutate: func(*NotificationEvent) {}},
		{
			name:      "unknown kind",
			mutate:    func(e *NotificationEvent) { e.Kind = "bogus" },
			wantField: "kind",
		},
		{
			name:      "missing actor",
			mutate:    func(e *NotificationEvent) { e.Actor = User{} },
			wantField: "actor",
		},
		{
			name:      "missing timestamp",
			mutate:    func(e *NotificationEvent) { e.Timestamp = time.Time{} },
			wantField: "timestamp",
		},
		{
			name:      "missing title",
			mutate:    func(e *NotificationEvent) { e.Subject.Title = Title{} },
			wantField: "subject",
		},
		{
			name: "user kind without user",
			mutate: func(e *NotificationEvent) {
				e.Kind = KindUserBlocked
				e.Subject.Title = UserTitle("Mallory")
			},
			wantField: "subject",
		},
		{
			name: "user kind with user",
			mutate: func(e *NotificationEvent) {
				e.Kind = KindUserBlocked
				e.Subject = Subject{Title: UserTitle("Mallory"), User: &User{Name: "Mallory"}}
			},
		},
		{
			name:      "move without destination",
			mutate:    func(e *NotificationEvent) { e.Kind = KindPageMoved },
			wantField: "destination",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validPageEvent()
			tt.mutate(&ev)

			err := ev.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidationFailed))
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestNotificationEvent_Titles(t *testing.T) {
	ev := validPageEvent()
	assert.Equal(t, []Title{{Namespace: "Help", Text: "FAQ"}}, ev.Titles())

	ev.Kind = KindPageMoved
	ev.Extra.Destination = Title{Namespace: "Help", Text: "Questions"}
	assert.Equal(t, []Title{
		{Namespace: "Help", Text: "FAQ"},
		{Namespace: "Help", Text: "Questions"},
	}, ev.Titles())
}
