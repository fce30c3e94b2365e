package relation

import (
	"testing"

	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/stretchr/testify/assert"
)

func testGroup(private bool) entity.Group {
	return entity.Group{
		ID:      "commons",
		Name:    "Data Commons",
		Owner:   "olga",
		Admins:  []string{"alice"},
		Members: []string{"alice", "mike"},
		Private: private,
	}
}

func openRequest(groupID, requester string, kind entity.RequestKind) entity.Request {
	return entity.Request{
		ID:        "req-" + requester + "-" + string(kind),
		GroupID:   groupID,
		Requester: requester,
		Type:      kind,
		Status:    entity.StatusOpen,
	}
}

func TestClassifyPrecedence(t *testing.T) {
	group := testGroup(false)

	tests := []struct {
		name     string
		username string
		requests []entity.Request
		want     Relation
	}{
		{"owner", "olga", nil, Owner},
		{"admin", "alice", nil, Admin},
		{"member", "mike", nil, Member},
		{"open invitation", "vera", []entity.Request{
			openRequest("commons", "vera", entity.KindMembershipInvitation),
		}, MemberInvitationPending},
		{"open membership request", "rob", []entity.Request{
			openRequest("commons", "rob", entity.KindMembershipRequest),
		}, MemberRequestPending},
		{"stranger on a public group", "zed", nil, View},
		// Precedence: a role always beats a pending record.
		{"owner with stale open invitation", "olga", []entity.Request{
			openRequest("commons", "olga", entity.KindMembershipInvitation),
		}, Owner},
		{"admin with stale open invitation", "alice", []entity.Request{
			openRequest("commons", "alice", entity.KindMembershipInvitation),
		}, Admin},
		{"member with stale open request", "mike", []entity.Request{
			openRequest("commons", "mike", entity.KindMembershipRequest),
		}, Member},
		// Invitation beats request when both are pending.
		{"invitation and request both open", "vera", []entity.Request{
			openRequest("commons", "vera", entity.KindMembershipRequest),
			openRequest("commons", "vera", entity.KindMembershipInvitation),
		}, MemberInvitationPending},
		// Requests for other groups or users are ignored.
		{"open request for another group", "zed", []entity.Request{
			openRequest("elsewhere", "zed", entity.KindMembershipRequest),
		}, View},
		{"open request by another user", "zed", []entity.Request{
			openRequest("commons", "vera", entity.KindMembershipRequest),
		}, View},
		// Resource requests never affect membership relation.
		{"open resource request", "zed", []entity.Request{
			openRequest("commons", "zed", entity.KindResourceAccess),
		}, View},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(group, tt.username, tt.requests))
		})
	}
}

func TestClassifyPrivateGroup(t *testing.T) {
	group := testGroup(true)

	assert.Equal(t, None, Classify(group, "zed", nil))
	assert.Equal(t, Member, Classify(group, "mike", nil))
	assert.Equal(t, MemberRequestPending, Classify(group, "rob", []entity.Request{
		openRequest("commons", "rob", entity.KindMembershipRequest),
	}))
}

func TestClosedRequestsDoNotPend(t *testing.T) {
	group := testGroup(false)
	denied := openRequest("commons", "vera", entity.KindMembershipRequest)
	denied.Status = entity.StatusDenied

	assert.Equal(t, View, Classify(group, "vera", []entity.Request{denied}))
}

func TestOpenRequestLookup(t *testing.T) {
	requests := []entity.Request{
		openRequest("commons", "vera", entity.KindMembershipInvitation),
		openRequest("commons", "rob", entity.KindMembershipRequest),
	}

	found := OpenRequest(requests, "commons", "vera", entity.KindMembershipInvitation)
	assert.NotNil(t, found)
	assert.Equal(t, "vera", found.Requester)

	assert.Nil(t, OpenRequest(requests, "commons", "vera", entity.KindMembershipRequest))
	assert.False(t, HasOpenRequest(requests, "commons", "zed", entity.KindMembershipRequest))
}

func TestCanInvite(t *testing.T) {
	assert.True(t, CanInvite(View))

	for _, r := range []Relation{None, MemberRequestPending, MemberInvitationPending, Member, Admin, Owner} {
		assert.False(t, CanInvite(r), r.String())
	}
}
