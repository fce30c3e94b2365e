package session

import (
	"github.com/dinerozz/orgs-console/internal/asyncview"
	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/internal/relation"
)

// State is the whole session state tree: one async model per view plus the
// invite sub-view. It is an immutable value; mutations go through the
// store's commit queue as pure State → State functions.
type State struct {
	Browse   asyncview.Model[[]entity.Group]
	Org      asyncview.Model[OrgDetail]
	Requests asyncview.Model[[]entity.Request]
	Invite   InviteView
}

// OrgDetail is the payload of the organization detail view. Group is nil
// when the organization does not exist (absence is a neutral state, not an
// error). MyRequests are the current user's open/closed requests touching
// the group; AdminRequests are the group's inbound requests, present only
// when the current user administers it.
type OrgDetail struct {
	Group         *entity.Group
	Relation      relation.Relation
	MyRequests    []entity.Request
	AdminRequests []entity.Request
}

// UserMatch is a directory search hit annotated with the user's relation to
// the organization being viewed.
type UserMatch struct {
	entity.User
	Relation relation.Relation
}

// SelectedUser is the invite view's current selection.
type SelectedUser struct {
	User     entity.User
	Relation relation.Relation
}

// InviteStage is the invitation-send sub-lifecycle of the invite view.
type InviteStage int

const (
	InviteNone InviteStage = iota
	InviteEditing
	InviteSendable
	InviteSending
	InviteSuccess
	InviteError
)

func (s InviteStage) String() string {
	switch s {
	case InviteNone:
		return "NONE"
	case InviteEditing:
		return "EDITING"
	case InviteSendable:
		return "SENDABLE"
	case InviteSending:
		return "SENDING"
	case InviteSuccess:
		return "SUCCESS"
	case InviteError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// InviteView is the invite-user view: search results, the selection, and
// the send lifecycle. Search results are replaced wholesale on each
// successful search, never merged.
type InviteView struct {
	Users    asyncview.Model[[]UserMatch]
	Selected *SelectedUser
	Stage    InviteStage
	Err      error
}

// replaceRequest swaps the request with updated.ID for updated in a copy of
// requests, leaving every other element untouched.
func replaceRequest(requests []entity.Request, updated entity.Request) []entity.Request {
	next := make([]entity.Request, len(requests))
	for i, r := range requests {
		if r.ID == updated.ID {
			next[i] = updated
		} else {
			next[i] = r
		}
	}
	return next
}
