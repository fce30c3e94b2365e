// Package relation computes a user's standing with respect to a group from
// the group snapshot and the set of requests touching that (user, group)
// pair. The classification is the single source of truth for relation;
// nothing else in the codebase derives it ad hoc.
package relation

import "github.com/dinerozz/orgs-console/internal/entity"

// Relation classifies a user's relationship to a group. Exactly one value
// applies to any (group, user) pair.
type Relation int

const (
	None Relation = iota
	View
	MemberRequestPending
	MemberInvitationPending
	Member
	Admin
	Owner
)

func (r Relation) String() string {
	switch r {
	case None:
		return "NONE"
	case View:
		return "VIEW"
	case MemberRequestPending:
		return "MEMBER_REQUEST_PENDING"
	case MemberInvitationPending:
		return "MEMBER_INVITATION_PENDING"
	case Member:
		return "MEMBER"
	case Admin:
		return "ADMIN"
	case Owner:
		return "OWNER"
	default:
		return "UNKNOWN"
	}
}

// Classify returns the relation of username to group, given the requests
// touching that pair. Precedence, first match wins:
//
//	owner > admin > member > open invitation > open request > viewable > none
//
// A user who is, say, both an admin and the subject of a stale open
// invitation record classifies as ADMIN.
func Classify(group entity.Group, username string, requests []entity.Request) Relation {
	if group.Owner == username {
		return Owner
	}
	if group.IsAdmin(username) {
		return Admin
	}
	if group.IsMember(username) {
		return Member
	}
	if HasOpenRequest(requests, group.ID, username, entity.KindMembershipInvitation) {
		return MemberInvitationPending
	}
	if HasOpenRequest(requests, group.ID, username, entity.KindMembershipRequest) {
		return MemberRequestPending
	}
	if !group.Private {
		return View
	}
	return None
}

// HasOpenRequest reports whether an open request of the given kind exists
// for the (requester, group) pair.
func HasOpenRequest(requests []entity.Request, groupID, requester string, kind entity.RequestKind) bool {
	return OpenRequest(requests, groupID, requester, kind) != nil
}

// OpenRequest returns the open request of the given kind for the
// (requester, group) pair, or nil. The service guarantees at most one.
func OpenRequest(requests []entity.Request, groupID, requester string, kind entity.RequestKind) *entity.Request {
	for i := range requests {
		r := &requests[i]
		if r.GroupID == groupID && r.Requester == requester && r.Type == kind && r.IsOpen() {
			return r
		}
	}
	return nil
}

// CanInvite reports whether an invitation may be sent to a user with the
// given relation. Only a plain viewer is invitable; members, admins, the
// owner, and users with a pending request or invitation are not.
func CanInvite(r Relation) bool {
	return r == View
}
