package server

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/internal/groups"
	"github.com/dinerozz/orgs-console/pkg/apperr"
	"github.com/dinerozz/orgs-console/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seededStore() *Store {
	store := NewStore()
	store.AddUser(entity.User{Username: "olga", RealName: "Olga Petrova"})
	store.AddUser(entity.User{Username: "alice", RealName: "Alice Rivera"})
	store.AddUser(entity.User{Username: "vera", RealName: "Vera Ionova"})
	store.PutGroup(entity.Group{
		ID:      "commons",
		Name:    "Data Commons",
		Owner:   "olga",
		Admins:  []string{"alice"},
		Members: []string{"alice"},
	})
	return store
}

// clientFor mints a token for username and returns a groups client bound to
// the fixture service.
func clientFor(t *testing.T, srv *httptest.Server, username string) *groups.Client {
	t.Helper()
	token, err := utils.GenerateToken(username)
	require.NoError(t, err)
	return groups.NewClient(srv.URL, token, srv.Client())
}

func newFixture(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := seededStore()
	srv := httptest.NewServer(NewRouter(store))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestAuthenticationRefusals(t *testing.T) {
	srv, _ := newFixture(t)

	noToken := groups.NewClient(srv.URL, "", srv.Client())
	_, err := noToken.Info(context.Background())
	assert.True(t, apperr.IsAppCode(err, apperr.CodeNoToken))

	badToken := groups.NewClient(srv.URL, "not-a-jwt", srv.Client())
	_, err = badToken.Info(context.Background())
	assert.True(t, apperr.IsAppCode(err, apperr.CodeInvalidToken))
}

func TestInvitationRoundTrip(t *testing.T) {
	srv, _ := newFixture(t)
	ctx := context.Background()
	alice := clientFor(t, srv, "alice")
	vera := clientFor(t, srv, "vera")

	invite, err := alice.InviteUser(ctx, "commons", "vera")
	require.NoError(t, err)
	assert.Equal(t, entity.KindMembershipInvitation, invite.Type)
	assert.Equal(t, "vera", invite.Requester, "the invitation belongs to the invited user")
	assert.Equal(t, entity.StatusOpen, invite.Status)

	// The invitee sees it in the targeted list; the inviter does not.
	targeted, err := vera.TargetedRequests(ctx, groups.RequestListOptions{})
	require.NoError(t, err)
	require.Len(t, targeted, 1)
	assert.Equal(t, invite.ID, targeted[0].ID)

	targeted, err = alice.TargetedRequests(ctx, groups.RequestListOptions{})
	require.NoError(t, err)
	assert.Empty(t, targeted)

	// Only the invitee may accept.
	_, err = alice.AcceptRequest(ctx, invite.ID)
	assert.True(t, apperr.IsAppCode(err, apperr.CodeUnauthorized))

	accepted, err := vera.AcceptRequest(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, accepted.Status)

	group, err := vera.GetGroup(ctx, "commons")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Contains(t, group.Members, "vera")

	// A closed request cannot transition again.
	_, err = vera.AcceptRequest(ctx, invite.ID)
	assert.True(t, apperr.IsAppCode(err, apperr.CodeUnsupportedOperation))
}

func TestMembershipRequestLifecycle(t *testing.T) {
	srv, _ := newFixture(t)
	ctx := context.Background()
	alice := clientFor(t, srv, "alice")
	vera := clientFor(t, srv, "vera")

	request, err := vera.RequestMembership(ctx, "commons")
	require.NoError(t, err)
	assert.Equal(t, entity.KindMembershipRequest, request.Type)

	// The duplicate-open-request rule.
	_, err = vera.RequestMembership(ctx, "commons")
	assert.True(t, apperr.IsAppCode(err, apperr.CodeRequestAlreadyExists))

	// The requester sees it in created; the admin in the group's inbound list.
	created, err := vera.CreatedRequests(ctx, groups.RequestListOptions{})
	require.NoError(t, err)
	require.Len(t, created, 1)

	inbound, err := alice.GroupRequests(ctx, "commons", groups.RequestListOptions{})
	require.NoError(t, err)
	require.Len(t, inbound, 1)

	// Non-admins may not read the inbound list.
	_, err = vera.GroupRequests(ctx, "commons", groups.RequestListOptions{})
	assert.True(t, apperr.IsAppCode(err, apperr.CodeUnauthorized))

	denied, err := alice.DenyRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDenied, denied.Status)

	group, err := vera.GetGroup(ctx, "commons")
	require.NoError(t, err)
	assert.NotContains(t, group.Members, "vera", "denial changes no membership")

	// Closed requests drop out of default listings.
	inbound, err = alice.GroupRequests(ctx, "commons", groups.RequestListOptions{})
	require.NoError(t, err)
	assert.Empty(t, inbound)

	inbound, err = alice.GroupRequests(ctx, "commons", groups.RequestListOptions{IncludeClosed: true})
	require.NoError(t, err)
	assert.Len(t, inbound, 1)
}

func TestCancelOwnRequestOnly(t *testing.T) {
	srv, _ := newFixture(t)
	ctx := context.Background()
	vera := clientFor(t, srv, "vera")
	olga := clientFor(t, srv, "olga")

	request, err := vera.RequestMembership(ctx, "commons")
	require.NoError(t, err)

	_, err = olga.CancelRequest(ctx, request.ID)
	assert.True(t, apperr.IsAppCode(err, apperr.CodeUnauthorized))

	canceled, err := vera.CancelRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCanceled, canceled.Status)
}

func TestGroupLifecycle(t *testing.T) {
	srv, _ := newFixture(t)
	ctx := context.Background()
	vera := clientFor(t, srv, "vera")

	exists, err := vera.GroupExists(ctx, "modeling")
	require.NoError(t, err)
	assert.False(t, exists)

	group, err := vera.CreateGroup(ctx, entity.NewGroup{ID: "modeling", Name: "Modeling"})
	require.NoError(t, err)
	assert.Equal(t, "vera", group.Owner)

	_, err = vera.CreateGroup(ctx, entity.NewGroup{ID: "modeling", Name: "Again"})
	assert.True(t, apperr.IsAppCode(err, apperr.CodeGroupAlreadyExists))

	require.NoError(t, vera.UpdateGroup(ctx, "modeling", entity.GroupUpdate{Name: "Modeling Guild"}))

	fetched, err := vera.GetGroup(ctx, "modeling")
	require.NoError(t, err)
	assert.Equal(t, "Modeling Guild", fetched.Name)

	missing, err := vera.GetGroup(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkspaceAttachment(t *testing.T) {
	srv, store := newFixture(t)
	ctx := context.Background()
	alice := clientFor(t, srv, "alice")
	vera := clientFor(t, srv, "vera")

	// An admin attaches directly.
	outcome, err := alice.AddOrRequestWorkspace(ctx, "commons", 42)
	require.NoError(t, err)
	assert.True(t, outcome.Complete)

	group := store.Group("commons")
	require.Len(t, group.Resources.Workspace, 1)
	assert.Equal(t, "42", group.Resources.Workspace[0].RID)

	// A non-admin gets a resource-access request instead.
	outcome, err = vera.AddOrRequestWorkspace(ctx, "commons", 99)
	require.NoError(t, err)
	assert.False(t, outcome.Complete)
	assert.Equal(t, entity.KindResourceAccess, outcome.Type)
	assert.Equal(t, "99", outcome.Resource)

	require.NoError(t, alice.GrantReadAccess(ctx, outcome.ID))

	require.NoError(t, alice.DeleteResource(ctx, "commons", "workspace", "42"))
	assert.Empty(t, store.Group("commons").Resources.Workspace)
}

func TestAdminRoleTransitions(t *testing.T) {
	srv, store := newFixture(t)
	ctx := context.Background()
	olga := clientFor(t, srv, "olga")
	alice := clientFor(t, srv, "alice")

	// Only the owner changes the admin list.
	err := alice.MemberToAdmin(ctx, "commons", "alice")
	assert.True(t, apperr.IsAppCode(err, apperr.CodeUnauthorized))

	require.NoError(t, olga.AdminToMember(ctx, "commons", "alice"))
	assert.Empty(t, store.Group("commons").Admins)

	require.NoError(t, olga.MemberToAdmin(ctx, "commons", "alice"))
	assert.Contains(t, store.Group("commons").Admins, "alice")

	require.NoError(t, olga.RemoveMember(ctx, "commons", "alice"))
	assert.NotContains(t, store.Group("commons").Members, "alice")
}

func TestUserSearch(t *testing.T) {
	srv, _ := newFixture(t)
	vera := clientFor(t, srv, "vera")

	users, err := vera.SearchUsers(context.Background(), "ri")
	require.NoError(t, err)

	// Matches on realname too: "Alice Rivera".
	usernames := []string{}
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}
	assert.Equal(t, []string{"alice"}, usernames)
}
