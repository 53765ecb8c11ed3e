// Package policy concentrates the authorization contract in one place:
// pure predicates over (principal, resource kind, action, resource state).
// Callers are responsible for re-fetching resources before evaluating.
package policy

import (
	"github.com/clienttracker/crm-system/internal/core/domain"
)

// Kind identifies the resource class a check applies to.
type Kind int

const (
	KindClient Kind = iota
	KindTask
	KindUser
)

// Action identifies the operation being attempted.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionCreate
	ActionDelete
)

// TaskRef supplies the state needed to evaluate task access: the task itself
// and the owner (assigned BDE) of its parent client.
type TaskRef struct {
	Task        *domain.Task
	ClientOwner string
}

type predicate func(p domain.Principal, resource any) bool

func never(domain.Principal, any) bool { return false }

// ownsClient reports whether the principal is the assigned BDE.
func ownsClient(p domain.Principal, resource any) bool {
	c, ok := resource.(*domain.Client)
	return ok && c.AssignedBDE == p.UserID
}

// touchesTask reports whether the principal is the task's assignee, its
// creator, or the owner of the parent client.
func touchesTask(p domain.Principal, resource any) bool {
	ref, ok := resource.(TaskRef)
	if !ok || ref.Task == nil {
		return false
	}
	return ref.Task.AssignedTo == p.UserID ||
		ref.Task.CreatedBy == p.UserID ||
		ref.ClientOwner == p.UserID
}

// isSelf reports whether the resource is the principal's own user record.
func isSelf(p domain.Principal, resource any) bool {
	u, ok := resource.(*domain.User)
	return ok && u.ID == p.UserID
}

func allow(domain.Principal, any) bool { return true }

// rules is the full access table. A missing entry means deny.
var rules = map[domain.Role]map[Kind]map[Action]predicate{
	domain.RoleSuperAdmin: {
		KindClient: {ActionRead: allow, ActionWrite: allow, ActionCreate: allow, ActionDelete: allow},
		KindTask:   {ActionRead: allow, ActionWrite: allow, ActionCreate: allow, ActionDelete: allow},
		KindUser: {
			ActionRead:   allow,
			ActionWrite:  allow,
			ActionCreate: allow,
			// Sole deletion authority, but never over its own account.
			ActionDelete: func(p domain.Principal, resource any) bool { return !isSelf(p, resource) },
		},
	},
	domain.RoleAdmin: {
		KindClient: {ActionRead: allow, ActionWrite: allow, ActionCreate: allow, ActionDelete: never},
		KindTask:   {ActionRead: allow, ActionWrite: allow, ActionCreate: allow, ActionDelete: never},
		KindUser: {
			ActionRead:   allow,
			ActionWrite:  allow,
			ActionCreate: allow,
			ActionDelete: never,
		},
	},
	domain.RoleBDE: {
		KindClient: {
			ActionRead:   ownsClient,
			ActionWrite:  ownsClient,
			ActionCreate: allow,
			ActionDelete: never,
		},
		KindTask: {
			ActionRead:   touchesTask,
			ActionWrite:  touchesTask,
			ActionCreate: allow,
			ActionDelete: never,
		},
		KindUser: {
			ActionRead:   isSelf,
			ActionWrite:  isSelf,
			ActionCreate: never,
			ActionDelete: never,
		},
	},
}

// Allow reports whether the principal may perform action on the resource.
// The resource argument carries current state (*domain.Client, TaskRef,
// *domain.User) and may be nil for create-level checks. Listing operations
// must not use Allow: restricted principals get a filtered list, never a
// denial (see Scope).
func Allow(p domain.Principal, kind Kind, action Action, resource any) bool {
	byKind, ok := rules[p.Role]
	if !ok {
		return false
	}
	byAction, ok := byKind[kind]
	if !ok {
		return false
	}
	pred, ok := byAction[action]
	if !ok {
		return false
	}
	return pred(p, resource)
}

// CanAssignRole reports whether the principal may create or promote an
// account with the given role. Admins may not mint accounts at or above
// their own tier.
func CanAssignRole(p domain.Principal, target domain.Role) bool {
	switch p.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		return target == domain.RoleBDE
	default:
		return false
	}
}

// Scope describes the owner filter a listing query must apply for the
// principal: empty means unscoped (sees everything), non-empty restricts
// visible clients to that assigned BDE.
func Scope(p domain.Principal) string {
	if p.Role == domain.RoleBDE {
		return p.UserID
	}
	return ""
}
