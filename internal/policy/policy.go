// Package policy decides what a caller may see or change. Every function is
// pure: the membership facts it needs are passed in as a Roster.
package policy

import (
	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

// Caller is the authenticated identity issuing a request.
type Caller struct {
	ID   int64
	Role models.Role
}

// IsAdmin reports whether the caller bypasses all access checks.
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// Roster is the set of user ids that are members of one project.
type Roster map[int64]struct{}

// NewRoster builds a roster from member ids.
func NewRoster(ids ...int64) Roster {
	r := make(Roster, len(ids))
	for _, id := range ids {
		r[id] = struct{}{}
	}
	return r
}

// Has reports whether userID is a member.
func (r Roster) Has(userID int64) bool {
	_, ok := r[userID]
	return ok
}

// CanViewProject reports whether the caller may read a project with the
// given roster.
func CanViewProject(c Caller, roster Roster) bool {
	return c.IsAdmin() || roster.Has(c.ID)
}

// CanViewTask reports whether the caller may read or work on a task. The
// roster belongs to the task's project.
func CanViewTask(c Caller, task models.Task, roster Roster) bool {
	if c.IsAdmin() {
		return true
	}
	return task.IsAssignee(c.ID) || task.CreatedByID == c.ID || roster.Has(c.ID)
}

// CanAssign checks that the caller may delegate the task and that the
// target user belongs to the task's project. Authorization is checked
// first, so an unauthorized caller never learns about membership.
func CanAssign(c Caller, task models.Task, roster Roster, targetUserID int64) error {
	if !c.IsAdmin() && !roster.Has(c.ID) && task.CreatedByID != c.ID {
		return apperr.Forbidden("you are not authorized to assign this task")
	}
	if !roster.Has(targetUserID) {
		return apperr.InvalidAssignee()
	}
	return nil
}

// ListScope returns the listing scope for the caller.
func ListScope(c Caller) models.Scope {
	if c.IsAdmin() {
		return models.Scope{All: true}
	}
	return models.Scope{UserID: c.ID}
}

// RequireAdmin gates administrator-only operations.
func RequireAdmin(c Caller) error {
	if !c.IsAdmin() {
		return apperr.Forbidden("administrator role required")
	}
	return nil
}
