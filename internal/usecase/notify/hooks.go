package notify

import (
	"errors"
	"strings"
	"time"

	"wiki-notify/internal/domain/entity"
)

// Page save flags as reported by the wiki host.
const (
	EditNew    = 1
	EditUpdate = 2
	EditMinor  = 4
)

// Hook is a raw host callback. Each implementation mirrors the arguments of
// one host hook and knows how to turn them into a NotificationEvent.
type Hook interface {
	// Kind returns the event kind the callback resolves to.
	Kind() entity.Kind
	// event converts the payload. It fails when required fields are missing.
	event() (entity.NotificationEvent, error)
}

// PageRef identifies a page as namespace plus base title. The main
// namespace is the empty string.
type PageRef struct {
	Namespace string `json:"namespace"`
	Title     string `json:"title"`
}

func (p PageRef) title() entity.Title {
	return entity.Title{Namespace: p.Namespace, Text: p.Title}
}

// Revision describes the revision a save produced.
type Revision struct {
	ID   int64 `json:"id"`
	Size int64 `json:"size"`
	// ParentSize is the size of the previous revision, when known.
	ParentSize *int64 `json:"parent_size,omitempty"`
}

// PageSaveHook is raised after a page is created or edited.
type PageSaveHook struct {
	Page      PageRef     `json:"page"`
	User      entity.User `json:"user"`
	Summary   string      `json:"summary"`
	Flags     int         `json:"flags"`
	Revision  *Revision   `json:"revision"`
	NullEdit  bool        `json:"null_edit"`
	Timestamp time.Time   `json:"timestamp"`
}

// IsNew reports whether the save created the page.
func (h PageSaveHook) IsNew() bool { return h.Flags&EditNew != 0 }

// IsMinor reports whether the author flagged the save as minor.
func (h PageSaveHook) IsMinor() bool { return h.Flags&EditMinor != 0 }

func (h PageSaveHook) Kind() entity.Kind {
	if h.IsNew() {
		return entity.KindPageCreated
	}
	return entity.KindPageSaved
}

func (h PageSaveHook) event() (entity.NotificationEvent, error) {
	if h.Page.Title == "" {
		return entity.NotificationEvent{}, errors.New("page title is required")
	}
	if h.Revision == nil && !h.NullEdit {
		return entity.NotificationEvent{}, errors.New("revision is required")
	}

	ev := entity.NotificationEvent{
		Kind:      h.Kind(),
		Actor:     h.User,
		Subject:   entity.Subject{Title: h.Page.title()},
		Timestamp: h.Timestamp,
		Summary:   h.Summary,
	}
	if h.Revision == nil {
		return ev, nil
	}

	ev.Extra.RevisionID = h.Revision.ID
	switch {
	case h.IsNew():
		ev.SizeDelta = entity.Int64(h.Revision.Size)
	case h.Revision.ParentSize != nil:
		ev.SizeDelta = entity.Int64(h.Revision.Size - *h.Revision.ParentSize)
		ev.Extra.Minor = h.IsMinor()
	default:
		ev.Extra.Minor = h.IsMinor()
	}
	return ev, nil
}

// PageDeleteHook is raised after a page is deleted.
type PageDeleteHook struct {
	Page      PageRef     `json:"page"`
	User      entity.User `json:"user"`
	Reason    string      `json:"reason"`
	PageID    int64       `json:"page_id"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h PageDeleteHook) Kind() entity.Kind { return entity.KindPageDeleted }

func (h PageDeleteHook) event() (entity.NotificationEvent, error) {
	if h.Page.Title == "" {
		return entity.NotificationEvent{}, errors.New("page title is required")
	}
	return entity.NotificationEvent{
		Kind:      entity.KindPageDeleted,
		Actor:     h.User,
		Subject:   entity.Subject{Title: h.Page.title()},
		Timestamp: h.Timestamp,
		Summary:   h.Reason,
	}, nil
}

// PageMoveHook is raised after a page is renamed.
type PageMoveHook struct {
	From      PageRef     `json:"from"`
	To        PageRef     `json:"to"`
	User      entity.User `json:"user"`
	Reason    string      `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h PageMoveHook) Kind() entity.Kind { return entity.KindPageMoved }

func (h PageMoveHook) event() (entity.NotificationEvent, error) {
	if h.From.Title == "" || h.To.Title == "" {
		return entity.NotificationEvent{}, errors.New("source and destination titles are required")
	}
	return entity.NotificationEvent{
		Kind:      entity.KindPageMoved,
		Actor:     h.User,
		Subject:   entity.Subject{Title: h.From.title()},
		Timestamp: h.Timestamp,
		Summary:   h.Reason,
		Extra:     entity.Extra{Destination: h.To.title()},
	}, nil
}

// PageProtectHook is raised after page protection is changed or removed.
type PageProtectHook struct {
	Page      PageRef     `json:"page"`
	User      entity.User `json:"user"`
	Protect   bool        `json:"protect"`
	Reason    string      `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h PageProtectHook) Kind() entity.Kind { return entity.KindPageProtected }

func (h PageProtectHook) event() (entity.NotificationEvent, error) {
	if h.Page.Title == "" {
		return entity.NotificationEvent{}, errors.New("page title is required")
	}
	return entity.NotificationEvent{
		Kind:      entity.KindPageProtected,
		Actor:     h.User,
		Subject:   entity.Subject{Title: h.Page.title()},
		Timestamp: h.Timestamp,
		Summary:   h.Reason,
		Extra:     entity.Extra{Protected: h.Protect},
	}, nil
}

// UserCreateHook is raised after an account is created. Performer is set when
// someone else created the account; otherwise the new user is the actor.
type UserCreateHook struct {
	User      entity.User  `json:"user"`
	Performer *entity.User `json:"performer,omitempty"`
	ByEmail   bool         `json:"by_email"`
	Timestamp time.Time    `json:"timestamp"`
}

func (h UserCreateHook) Kind() entity.Kind { return entity.KindUserCreated }

func (h UserCreateHook) event() (entity.NotificationEvent, error) {
	if h.User.Name == "" {
		return entity.NotificationEvent{}, errors.New("user name is required")
	}
	actor := h.User
	if h.Performer != nil && h.Performer.Name != "" {
		actor = *h.Performer
	}
	account := h.User
	return entity.NotificationEvent{
		Kind:      entity.KindUserCreated,
		Actor:     actor,
		Subject:   entity.Subject{Title: entity.UserTitle(account.Name), User: &account},
		Timestamp: h.Timestamp,
	}, nil
}

// UserBlockHook is raised after a user or IP is blocked.
type UserBlockHook struct {
	Performer entity.User `json:"performer"`
	Target    entity.User `json:"target"`
	Reason    string      `json:"reason"`
	Expiry    string      `json:"expiry"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h UserBlockHook) Kind() entity.Kind { return entity.KindUserBlocked }

func (h UserBlockHook) event() (entity.NotificationEvent, error) {
	if h.Target.Name == "" {
		return entity.NotificationEvent{}, errors.New("block target is required")
	}
	target := h.Target
	return entity.NotificationEvent{
		Kind:      entity.KindUserBlocked,
		Actor:     h.Performer,
		Subject:   entity.Subject{Title: entity.UserTitle(target.Name), User: &target},
		Timestamp: h.Timestamp,
		Summary:   h.Reason,
		Extra:     entity.Extra{BlockExpiry: h.Expiry},
	}, nil
}

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	Description string `json:"description"`
}

// FileUploadHook is raised after an upload completes.
type FileUploadHook struct {
	User      entity.User  `json:"user"`
	File      UploadedFile `json:"file"`
	Comment   string       `json:"comment"`
	Timestamp time.Time    `json:"timestamp"`
}

func (h FileUploadHook) Kind() entity.Kind { return entity.KindFileUploaded }

func (h FileUploadHook) event() (entity.NotificationEvent, error) {
	name := strings.TrimPrefix(h.File.Name, entity.NamespaceFile+":")
	if name == "" {
		return entity.NotificationEvent{}, errors.New("file name is required")
	}
	if h.File.Size < 0 {
		return entity.NotificationEvent{}, errors.New("file size cannot be negative")
	}
	return entity.NotificationEvent{
		Kind:      entity.KindFileUploaded,
		Actor:     h.User,
		Subject:   entity.Subject{Title: entity.Title{Namespace: entity.NamespaceFile, Text: name}},
		Timestamp: h.Timestamp,
		Summary:   h.Comment,
		Extra: entity.Extra{
			MimeType:        h.File.MimeType,
			FileSize:        h.File.Size,
			FileDescription: h.File.Description,
		},
	}, nil
}

// UserGroupsHook is raised after a user's group memberships change.
// Groups is the full membership after the change.
type UserGroupsHook struct {
	Performer entity.User `json:"performer"`
	User      entity.User `json:"user"`
	Added     []string    `json:"added"`
	Removed   []string    `json:"removed"`
	Groups    []string    `json:"groups"`
	Reason    string      `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h UserGroupsHook) Kind() entity.Kind { return entity.KindUserGroupsChanged }

func (h UserGroupsHook) event() (entity.NotificationEvent, error) {
	if h.User.Name == "" {
		return entity.NotificationEvent{}, errors.New("user name is required")
	}
	target := h.User
	groups := h.Groups
	if groups == nil {
		groups = target.Groups
	}
	return entity.NotificationEvent{
		Kind:      entity.KindUserGroupsChanged,
		Actor:     h.Performer,
		Subject:   entity.Subject{Title: entity.UserTitle(target.Name), User: &target},
		Timestamp: h.Timestamp,
		Summary:   h.Reason,
		Extra: entity.Extra{
			Groups:        groups,
			AddedGroups:   h.Added,
			RemovedGroups: h.Removed,
		},
	}, nil
}
