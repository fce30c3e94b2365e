// Package session orchestrates the views of the organizations UI against
// the groups service: it owns the state tree, serializes mutations through
// a single commit queue, and exposes the operations the UI layer invokes
// (load, search, select, invite, accept/deny/cancel). All request
// transitions are server-authoritative: local state is updated only from
// the request object the service returns, never by guessing the new status.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/dinerozz/orgs-console/internal/debounce"
	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/internal/groups"
	"github.com/dinerozz/orgs-console/internal/relation"
)

// ErrNotSendable is returned by SendInvitation when no invitable user is
// selected.
var ErrNotSendable = errors.New("no invitable user selected")

// Service is the slice of the groups client the session needs.
// *groups.Client satisfies it.
type Service interface {
	GetGroups(ctx context.Context) ([]entity.Group, error)
	GetGroup(ctx context.Context, id string) (*entity.Group, error)
	GroupRequests(ctx context.Context, groupID string, opts groups.RequestListOptions) ([]entity.Request, error)
	TargetedRequests(ctx context.Context, opts groups.RequestListOptions) ([]entity.Request, error)
	CreatedRequests(ctx context.Context, opts groups.RequestListOptions) ([]entity.Request, error)
	RequestMembership(ctx context.Context, groupID string) (entity.Request, error)
	InviteUser(ctx context.Context, groupID, username string) (entity.Request, error)
	AcceptRequest(ctx context.Context, requestID string) (entity.Request, error)
	DenyRequest(ctx context.Context, requestID string) (entity.Request, error)
	CancelRequest(ctx context.Context, requestID string) (entity.Request, error)
	SearchUsers(ctx context.Context, query string) ([]entity.User, error)
}

// Session ties a user's view state to the groups service.
type Session struct {
	store      *Store
	svc        Service
	username   string
	searchGate *debounce.Gate
}

// New returns a session for username backed by svc.
func New(svc Service, username string) *Session {
	return &Session{
		store:      NewStore(),
		svc:        svc,
		username:   username,
		searchGate: debounce.NewGate(debounce.DefaultWindow),
	}
}

// NewWithWindow is New with an explicit search debounce window.
func NewWithWindow(svc Service, username string, window time.Duration) *Session {
	s := New(svc, username)
	s.searchGate = debounce.NewGate(window)
	return s
}

// Username returns the current user.
func (s *Session) Username() string {
	return s.username
}

// Snapshot returns the current state tree.
func (s *Session) Snapshot() State {
	return s.store.Snapshot()
}

// Close releases the store's mutation consumer.
func (s *Session) Close() {
	s.store.Close()
}

// LoadOrgs loads the browse-organizations view.
func (s *Session) LoadOrgs(ctx context.Context) error {
	s.store.Commit(func(st State) State {
		st.Browse = st.Browse.Load()
		return st
	})

	orgs, err := s.svc.GetGroups(ctx)
	s.store.Commit(func(st State) State {
		if err != nil {
			st.Browse = st.Browse.Fail(err)
		} else {
			st.Browse = st.Browse.Succeed(orgs)
		}
		return st
	})
	return err
}

// UnloadOrgs resets the browse view to NONE.
func (s *Session) UnloadOrgs() {
	s.store.Commit(func(st State) State {
		st.Browse = st.Browse.Unload()
		return st
	})
}

// LoadOrg loads the organization detail view for id. A missing organization
// commits a SUCCESS with a nil group: absence is a neutral state, not an
// error banner.
func (s *Session) LoadOrg(ctx context.Context, id string) error {
	s.store.Commit(func(st State) State {
		st.Org = st.Org.Load()
		return st
	})

	detail, err := s.fetchOrgDetail(ctx, id)
	s.store.Commit(func(st State) State {
		if err != nil {
			st.Org = st.Org.Fail(err)
		} else {
			st.Org = st.Org.Succeed(detail)
		}
		return st
	})
	return err
}

func (s *Session) fetchOrgDetail(ctx context.Context, id string) (OrgDetail, error) {
	group, err := s.svc.GetGroup(ctx, id)
	if err != nil {
		return OrgDetail{}, err
	}
	if group == nil {
		return OrgDetail{}, nil
	}

	mine, err := s.myRequests(ctx, id)
	if err != nil {
		return OrgDetail{}, err
	}

	detail := OrgDetail{
		Group:      group,
		Relation:   relation.Classify(*group, s.username, mine),
		MyRequests: mine,
	}

	if detail.Relation == relation.Owner || detail.Relation == relation.Admin {
		adminRequests, err := s.svc.GroupRequests(ctx, id, groups.RequestListOptions{})
		if err != nil {
			return OrgDetail{}, err
		}
		detail.AdminRequests = adminRequests
	}
	return detail, nil
}

// myRequests collects the current user's created and targeted requests
// filtered to the given group.
func (s *Session) myRequests(ctx context.Context, groupID string) ([]entity.Request, error) {
	created, err := s.svc.CreatedRequests(ctx, groups.RequestListOptions{})
	if err != nil {
		return nil, err
	}
	targeted, err := s.svc.TargetedRequests(ctx, groups.RequestListOptions{})
	if err != nil {
		return nil, err
	}

	var mine []entity.Request
	for _, r := range created {
		if r.GroupID == groupID {
			mine = append(mine, r)
		}
	}
	for _, r := range targeted {
		if r.GroupID == groupID {
			mine = append(mine, r)
		}
	}
	return mine, nil
}

// UnloadOrg resets the organization detail view to NONE.
func (s *Session) UnloadOrg() {
	s.store.Commit(func(st State) State {
		st.Org = st.Org.Unload()
		return st
	})
}

// LoadRequests loads the manage-requests view for a group the current user
// administers.
func (s *Session) LoadRequests(ctx context.Context, groupID string, includeClosed bool) error {
	s.store.Commit(func(st State) State {
		st.Requests = st.Requests.Load()
		return st
	})

	requests, err := s.svc.GroupRequests(ctx, groupID, groups.RequestListOptions{
		IncludeClosed: includeClosed,
		Sort:          groups.Descending,
	})
	s.store.Commit(func(st State) State {
		if err != nil {
			st.Requests = st.Requests.Fail(err)
		} else {
			st.Requests = st.Requests.Succeed(requests)
		}
		return st
	})
	return err
}

// UnloadRequests resets the manage-requests view to NONE.
func (s *Session) UnloadRequests() {
	s.store.Commit(func(st State) State {
		st.Requests = st.Requests.Unload()
		return st
	})
}

// SearchUsers queries the user directory for the invite view. Triggers
// arriving within the debounce window of the last dispatch are suppressed
// outright; suppressed is true and no call is made. Each successful search
// replaces the previous result list wholesale.
func (s *Session) SearchUsers(ctx context.Context, query string) (suppressed bool, err error) {
	if !s.searchGate.Allow() {
		return true, nil
	}

	s.store.Commit(func(st State) State {
		st.Invite.Users = st.Invite.Users.Load()
		if st.Invite.Stage == InviteNone {
			st.Invite.Stage = InviteEditing
		}
		return st
	})

	users, err := s.svc.SearchUsers(ctx, query)
	s.store.Commit(func(st State) State {
		if err != nil {
			st.Invite.Users = st.Invite.Users.Fail(err)
			return st
		}
		detail, _ := st.Org.Value()
		matches := make([]UserMatch, 0, len(users))
		for _, u := range users {
			matches = append(matches, UserMatch{
				User:     u,
				Relation: s.relationTo(detail, u.Username),
			})
		}
		st.Invite.Users = st.Invite.Users.Succeed(matches)
		return st
	})
	return false, err
}

// relationTo classifies username against the currently loaded organization.
// Pending requests are visible through the admin request list; the invite
// flow is only reachable by group admins.
func (s *Session) relationTo(detail OrgDetail, username string) relation.Relation {
	if detail.Group == nil {
		return relation.None
	}
	return relation.Classify(*detail.Group, username, detail.AdminRequests)
}

// SelectUser fixes the invite view's selection to a user from the current
// search results and recomputes its relation. Invitation send becomes
// enabled (SENDABLE) if and only if the relation is VIEW.
func (s *Session) SelectUser(username string) {
	s.store.Commit(func(st State) State {
		matches, ok := st.Invite.Users.Value()
		if !ok {
			return st
		}
		for _, m := range matches {
			if m.Username != username {
				continue
			}
			rel := s.relationTo(orgDetailOf(st), m.Username)
			st.Invite.Selected = &SelectedUser{User: m.User, Relation: rel}
			if relation.CanInvite(rel) {
				st.Invite.Stage = InviteSendable
			} else {
				st.Invite.Stage = InviteEditing
			}
			return st
		}
		return st
	})
}

func orgDetailOf(st State) OrgDetail {
	detail, _ := st.Org.Value()
	return detail
}

// SendInvitation sends a membership invitation to the selected user. It is
// refused locally unless the view is SENDABLE. The new request returned by
// the service is appended to the admin request list and the selection's
// relation is recomputed.
func (s *Session) SendInvitation(ctx context.Context) error {
	var (
		groupID  string
		username string
		ready    bool
	)
	s.store.Commit(func(st State) State {
		detail, ok := st.Org.Value()
		if !ok || detail.Group == nil || st.Invite.Selected == nil || st.Invite.Stage != InviteSendable {
			return st
		}
		ready = true
		groupID = detail.Group.ID
		username = st.Invite.Selected.User.Username
		st.Invite.Stage = InviteSending
		st.Invite.Err = nil
		return st
	})
	if !ready {
		return ErrNotSendable
	}

	request, err := s.svc.InviteUser(ctx, groupID, username)
	s.store.Commit(func(st State) State {
		if err != nil {
			st.Invite.Stage = InviteError
			st.Invite.Err = err
			return st
		}
		st.Invite.Stage = InviteSuccess
		if detail, ok := st.Org.Value(); ok && detail.Group != nil {
			detail.AdminRequests = append(detail.AdminRequests, request)
			st.Org = st.Org.Succeed(detail)
			if st.Invite.Selected != nil {
				sel := *st.Invite.Selected
				sel.Relation = s.relationTo(detail, sel.User.Username)
				st.Invite.Selected = &sel
			}
		}
		return st
	})
	return err
}

// UnloadInvite resets the invite view.
func (s *Session) UnloadInvite() {
	s.store.Commit(func(st State) State {
		st.Invite = InviteView{}
		return st
	})
}

// RequestMembership asks to join the currently loaded organization as the
// current user. A duplicate open request is refused by the service
// (DomainError, appcode 40010) and surfaced unchanged.
func (s *Session) RequestMembership(ctx context.Context, groupID string) error {
	request, err := s.svc.RequestMembership(ctx, groupID)
	if err != nil {
		return err
	}
	s.store.Commit(func(st State) State {
		if detail, ok := st.Org.Value(); ok && detail.Group != nil && detail.Group.ID == request.GroupID {
			detail.MyRequests = append(detail.MyRequests, request)
			detail.Relation = relation.Classify(*detail.Group, s.username, detail.MyRequests)
			st.Org = st.Org.Succeed(detail)
		}
		return st
	})
	return nil
}

// AcceptRequest accepts an open request and applies the service's returned
// request over local state. Membership may have changed server-side, so the
// affected group is re-fetched rather than locally patched.
func (s *Session) AcceptRequest(ctx context.Context, requestID string) error {
	updated, err := s.svc.AcceptRequest(ctx, requestID)
	if err != nil {
		return err
	}
	s.applyUpdatedRequest(updated)
	return s.refreshGroup(ctx, updated.GroupID)
}

// DenyRequest denies an open request; no membership change.
func (s *Session) DenyRequest(ctx context.Context, requestID string) error {
	updated, err := s.svc.DenyRequest(ctx, requestID)
	if err != nil {
		return err
	}
	s.applyUpdatedRequest(updated)
	return nil
}

// CancelRequest cancels the current user's own open request.
func (s *Session) CancelRequest(ctx context.Context, requestID string) error {
	updated, err := s.svc.CancelRequest(ctx, requestID)
	if err != nil {
		return err
	}
	s.applyUpdatedRequest(updated)
	return nil
}

// applyUpdatedRequest replaces the single matching request across the views
// holding request collections. Only the targeted request changes; sibling
// requests keep their status and fields.
func (s *Session) applyUpdatedRequest(updated entity.Request) {
	s.store.Commit(func(st State) State {
		if requests, ok := st.Requests.Value(); ok {
			st.Requests = st.Requests.Succeed(replaceRequest(requests, updated))
		}
		if detail, ok := st.Org.Value(); ok && detail.Group != nil {
			detail.MyRequests = replaceRequest(detail.MyRequests, updated)
			detail.AdminRequests = replaceRequest(detail.AdminRequests, updated)
			detail.Relation = relation.Classify(*detail.Group, s.username, detail.MyRequests)
			st.Org = st.Org.Succeed(detail)
		}
		return st
	})
}

// refreshGroup re-fetches a group after a transition with membership side
// effects and recomputes the current user's relation.
func (s *Session) refreshGroup(ctx context.Context, groupID string) error {
	detail, ok := s.store.Snapshot().Org.Value()
	if !ok || detail.Group == nil || detail.Group.ID != groupID {
		return nil
	}

	group, err := s.svc.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	s.store.Commit(func(st State) State {
		current, ok := st.Org.Value()
		if !ok || current.Group == nil || current.Group.ID != groupID {
			return st
		}
		current.Group = group
		if group != nil {
			current.Relation = relation.Classify(*group, s.username, current.MyRequests)
		}
		st.Org = st.Org.Succeed(current)
		return st
	})
	return nil
}
