package wiki

import (
	"slices"

	"wiki-notify/internal/domain/entity"
)

// RightsChecker answers permission checks from the rights and groups the
// host reports for a user. A group grants the permissions listed for it in
// the group permission table.
type RightsChecker struct {
	groups map[string][]string
}

// NewRightsChecker creates a RightsChecker. groupPermissions may be nil.
func NewRightsChecker(groupPermissions map[string][]string) *RightsChecker {
	return &RightsChecker{groups: groupPermissions}
}

// HasPermission reports whether user holds permission, either directly or
// through one of its groups.
func (c *RightsChecker) HasPermission(user entity.User, permission string) bool {
	if permission == "" {
		return false
	}
	if slices.Contains(user.Rights, permission) {
		return true
	}
	for _, group := range user.Groups {
		if slices.Contains(c.groups[group], permission) {
			return true
		}
	}
	return false
}
