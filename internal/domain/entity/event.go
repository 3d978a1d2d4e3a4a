// Package entity defines the core domain types of the notifier: the normalized
// NotificationEvent raised by the wiki host, the OutboundMessage built from it,
// and the small value types (titles, users) both of them reference.
package entity

import (
	"slices"
	"time"
)

// Kind identifies the lifecycle event a notification describes.
type Kind string

// Event kinds understood by the notifier.
const (
	KindPageSaved         Kind = "page_saved"
	KindPageCreated       Kind = "page_created"
	KindPageDeleted       Kind = "page_deleted"
	KindPageMoved         Kind = "page_moved"
	KindPageProtected     Kind = "page_protected"
	KindUserCreated       Kind = "user_created"
	KindUserBlocked       Kind = "user_blocked"
	KindFileUploaded      Kind = "file_uploaded"
	KindUserGroupsChanged Kind = "user_groups_changed"
)

// AllKinds lists every event kind in a stable order.
var AllKinds = []Kind{
	KindPageSaved,
	KindPageCreated,
	KindPageDeleted,
	KindPageMoved,
	KindPageProtected,
	KindUserCreated,
	KindUserBlocked,
	KindFileUploaded,
	KindUserGroupsChanged,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return slices.Contains(AllKinds, k)
}

// IsUserKind reports whether the subject of k is a user account rather than a page.
func (k Kind) IsUserKind() bool {
	switch k {
	case KindUserCreated, KindUserBlocked, KindUserGroupsChanged:
		return true
	}
	return false
}

// Namespace names used by the notifier when it builds titles itself.
const (
	NamespaceFile = "File"
	NamespaceUser = "User"
)

// Title is a page title split into its namespace and base text.
// The main namespace has an empty Namespace.
type Title struct {
	Namespace string `json:"namespace,omitempty"`
	Text      string `json:"text"`
}

// FullText returns the title as the wiki displays it, e.g. "Help:FAQ".
func (t Title) FullText() string {
	if t.Namespace == "" {
		return t.Text
	}
	return t.Namespace + ":" + t.Text
}

// IsZero reports whether the title carries no text.
func (t Title) IsZero() bool {
	return t.Text == ""
}

// UserTitle returns the user page title for a user name.
func UserTitle(name string) Title {
	return Title{Namespace: NamespaceUser, Text: name}
}

// User is an identity known to the wiki: the acting user of an event or the
// account an event is about.
type User struct {
	Name     string   `json:"name"`
	RealName string   `json:"real_name,omitempty"`
	Email    string   `json:"email,omitempty"`
	IP       string   `json:"ip,omitempty"`
	Groups   []string `json:"groups,omitempty"`
	Rights   []string `json:"rights,omitempty"`
}

// Subject is the entity an event affects. Page and upload events set Title;
// user events set User and derive Title from the user page.
type Subject struct {
	Title Title
	User  *User
}

// Extra holds kind-specific fields.
type Extra struct {
	RevisionID      int64
	Minor           bool
	Destination     Title
	Protected       bool
	BlockExpiry     string
	Groups          []string
	AddedGroups     []string
	RemovedGroups   []string
	MimeType        string
	FileSize        int64
	FileDescription string
}

// NotificationEvent is the normalized form of a host event. It is built by the
// event adapter, read by the filter and formatter, and discarded afterwards.
type NotificationEvent struct {
	Kind      Kind
	Actor     User
	Subject   Subject
	Timestamp time.Time
	Summary   string
	SizeDelta *int64
	Extra     Extra
}

// Titles returns every title the event touches. Moves report both the source
// and the destination.
func (e NotificationEvent) Titles() []Title {
	titles := []Title{e.Subject.Title}
	if e.Kind == KindPageMoved && !e.Extra.Destination.IsZero() {
		titles = append(titles, e.Extra.Destination)
	}
	return titles
}

// Validate checks that the event is fully formed.
func (e NotificationEvent) Validate() error {
	if !e.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: "unknown event kind " + string(e.Kind)}
	}
	if e.Actor.Name == "" {
		return &ValidationError{Field: "actor", Message: "actor name is required"}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}
	if e.Subject.Title.IsZero() {
		return &ValidationError{Field: "subject", Message: "subject title is required"}
	}
	if e.Kind.IsUserKind() && (e.Subject.User == nil || e.Subject.User.Name == "") {
		return &ValidationError{Field: "subject", Message: "subject user is required"}
	}
	if e.Kind == KindPageMoved && e.Extra.Destination.IsZero() {
		return &ValidationError{Field: "destination", Message: "move destination is required"}
	}
	return nil
}

// Int64 returns a pointer to v. It keeps optional size deltas readable at call sites.
func Int64(v int64) *int64 {
	return &v
}
