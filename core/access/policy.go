// Package access decides which records a caller may see or mutate.
// Decisions are pure functions of (role, action, resource); ownership
// checks compare the caller's identity against a record's owning user.
package access

import (
	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

var (
	ErrPermissionDenied = core.NewPermissionError("permission denied")
	ErrNotOwnRecord     = core.NewPermissionError("you can only access your own student record")
)

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

type Resource int

const (
	ResourceStudent Resource = iota
	ResourceSubject
	ResourceMark
	ResourceAttendance
)

// Decision is the outcome of a policy check. AllowOwn permits the
// operation but narrows its scope to the caller's own student record,
// whatever query parameters were supplied.
type Decision int

const (
	Deny Decision = iota
	Allow
	AllowOwn
)

// Decide resolves (role, action, resource) to a Decision. Every role is
// matched exhaustively; an unknown role denies everything.
func Decide(role user.Role, action Action, resource Resource) Decision {
	switch role {
	case user.RoleAdmin:
		return Allow

	case user.RoleTeacher:
		switch action {
		case ActionRead:
			return Allow
		case ActionCreate:
			switch resource {
			case ResourceStudent, ResourceMark, ResourceAttendance:
				return Allow
			case ResourceSubject:
				return Deny
			}
		case ActionUpdate, ActionDelete:
			return Deny
		}
		return Deny

	case user.RoleStudent:
		if action != ActionRead {
			return Deny
		}
		switch resource {
		case ResourceSubject:
			return Allow
		case ResourceStudent, ResourceMark, ResourceAttendance:
			return AllowOwn
		}
		return Deny
	}
	return Deny
}

// Check maps a Decision other than Allow/AllowOwn to a permission error.
func Check(role user.Role, action Action, resource Resource) error {
	if Decide(role, action, resource) == Deny {
		return ErrPermissionDenied
	}
	return nil
}

// CheckOwnership verifies that the caller owns the record resolved to
// ownerUserID. A mismatch is a permission error, never a not-found: the
// caller learns they may not look, not whether anything is there.
// Admins and teachers always pass.
func CheckOwnership(callerID string, callerRole user.Role, ownerUserID string) error {
	switch callerRole {
	case user.RoleAdmin, user.RoleTeacher:
		return nil
	case user.RoleStudent:
		if callerID == ownerUserID {
			return nil
		}
		return ErrNotOwnRecord
	}
	return ErrPermissionDenied
}

// Scoped reports whether listings must be narrowed to the caller's own
// student record.
func Scoped(role user.Role, resource Resource) bool {
	return Decide(role, ActionRead, resource) == AllowOwn
}
