package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/pkg/apperr"
	"github.com/gofrs/uuid"
)

// Fault is a domain refusal from the fixture store. The router renders it
// as the groups service's 500 + JSON error envelope.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

func fault(code int, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Store is the in-memory state behind the fixture groups service. It
// implements the request lifecycle and membership side effects the real
// service applies, including the at-most-one-open-request-per-kind rule.
// Deliberately unpersisted: the fixture exists for tests and local
// development within a single process lifetime.
type Store struct {
	mu       sync.Mutex
	started  time.Time
	groups   map[string]*entity.Group
	requests map[string]*entity.Request
	users    map[string]entity.User
	now      func() time.Time
}

// NewStore returns an empty fixture store.
func NewStore() *Store {
	return &Store{
		started:  time.Now(),
		groups:   make(map[string]*entity.Group),
		requests: make(map[string]*entity.Request),
		users:    make(map[string]entity.User),
		now:      time.Now,
	}
}

// AddUser registers a user in the fixture directory.
func (s *Store) AddUser(user entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

// PutGroup inserts a group directly, bypassing domain checks. Seeding only.
func (s *Store) PutGroup(group entity.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := group
	s.groups[group.ID] = &copied
}

// PutRequest inserts a request directly, bypassing domain checks. Seeding only.
func (s *Store) PutRequest(request entity.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := request
	s.requests[request.ID] = &copied
}

// Info returns the service root document.
func (s *Store) Info() entity.ServiceInfo {
	return entity.ServiceInfo{
		ServName:      "Groups",
		Version:       "0.1.0-fixture",
		ServerTime:    s.now().UnixMilli(),
		GitCommitHash: "fixture",
	}
}

// GroupExists reports whether a group id is taken.
func (s *Store) GroupExists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groups[id]
	return ok
}

// Group returns a group by id, or nil when absent.
func (s *Store) Group(id string) *entity.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[id]
	if !ok {
		return nil
	}
	copied := *group
	return &copied
}

// Groups returns the brief listing, ordered by id.
func (s *Store) Groups() []entity.BriefGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	brief := make([]entity.BriefGroup, 0, len(s.groups))
	for _, group := range s.groups {
		brief = append(brief, entity.BriefGroup{
			ID:     group.ID,
			Name:   group.Name,
			Owner:  group.Owner,
			Custom: group.Custom,
		})
	}
	sort.Slice(brief, func(i, j int) bool { return brief[i].ID < brief[j].ID })
	return brief
}

// CreateGroup creates a group owned by owner.
func (s *Store) CreateGroup(id, name, description, gravatarHash, owner string) (entity.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; ok {
		return entity.Group{}, fault(apperr.CodeGroupAlreadyExists, "group "+id+" already exists")
	}
	if id == "" {
		return entity.Group{}, fault(apperr.CodeMissingParameter, "group id is required")
	}

	now := s.now().UnixMilli()
	group := &entity.Group{
		ID:          id,
		Name:        name,
		Owner:       owner,
		Admins:      []string{},
		Members:     []string{},
		Description: description,
		CreateDate:  now,
		ModDate:     now,
		Custom:      entity.GroupCustom{GravatarHash: gravatarHash},
		Resources: entity.GroupResources{
			Workspace:     []entity.WorkspaceInfo{},
			CatalogMethod: []entity.AppInfo{},
		},
	}
	s.groups[id] = group
	return *group, nil
}

// UpdateGroup updates a group's mutable fields; admins and the owner only.
func (s *Store) UpdateGroup(id, name, description, gravatarHash, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return fault(apperr.CodeNoSuchGroup, "no such group: "+id)
	}
	if !s.isAdminOrOwner(group, actor) {
		return fault(apperr.CodeUnauthorized, actor+" may not administrate group "+id)
	}

	group.Name = name
	group.Description = description
	group.Custom.GravatarHash = gravatarHash
	group.ModDate = s.now().UnixMilli()
	return nil
}

func (s *Store) isAdminOrOwner(group *entity.Group, username string) bool {
	return group.Owner == username || group.IsAdmin(username)
}

// openRequest finds the open request of a kind for (requester, group).
func (s *Store) openRequest(groupID, requester string, kind entity.RequestKind) *entity.Request {
	for _, r := range s.requests {
		if r.GroupID == groupID && r.Requester == requester && r.Type == kind && r.IsOpen() {
			return r
		}
	}
	return nil
}

func (s *Store) newRequest(groupID, requester string, kind entity.RequestKind) *entity.Request {
	now := s.now().UnixMilli()
	request := &entity.Request{
		ID:         uuid.Must(uuid.NewV4()).String(),
		GroupID:    groupID,
		Requester:  requester,
		Type:       kind,
		Status:     entity.StatusOpen,
		CreateDate: now,
		ModDate:    now,
		ExpireDate: s.now().Add(14 * 24 * time.Hour).UnixMilli(),
	}
	s.requests[request.ID] = request
	return request
}

// RequestMembership creates a membership request from requester.
func (s *Store) RequestMembership(groupID, requester string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return entity.Request{}, fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if group.Owner == requester || group.IsAdmin(requester) || group.IsMember(requester) {
		return entity.Request{}, fault(apperr.CodeUserAlreadyMember, requester+" is already a member of "+groupID)
	}
	if s.openRequest(groupID, requester, entity.KindMembershipRequest) != nil {
		return entity.Request{}, fault(apperr.CodeRequestAlreadyExists, "an open membership request already exists")
	}

	return *s.newRequest(groupID, requester, entity.KindMembershipRequest), nil
}

// InviteUser creates a membership invitation addressed to username. The
// invitation's requester is the invited user, not the acting admin.
func (s *Store) InviteUser(groupID, actor, username string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return entity.Request{}, fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if !s.isAdminOrOwner(group, actor) {
		return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" may not invite users to "+groupID)
	}
	if _, ok := s.users[username]; !ok {
		return entity.Request{}, fault(apperr.CodeNoSuchUser, "no such user: "+username)
	}
	if group.Owner == username || group.IsAdmin(username) || group.IsMember(username) {
		return entity.Request{}, fault(apperr.CodeUserAlreadyMember, username+" is already a member of "+groupID)
	}
	if s.openRequest(groupID, username, entity.KindMembershipInvitation) != nil {
		return entity.Request{}, fault(apperr.CodeRequestAlreadyExists, "an open invitation already exists")
	}

	return *s.newRequest(groupID, username, entity.KindMembershipInvitation), nil
}

// Request returns a request by id.
func (s *Store) Request(id string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[id]
	if !ok {
		return entity.Request{}, fault(apperr.CodeNoSuchRequest, "no such request: "+id)
	}
	return *request, nil
}

// ListFilter mirrors the request listing query parameters.
type ListFilter struct {
	IncludeClosed bool
	Descending    bool
	ExcludeUpTo   int64
}

func (f ListFilter) keep(r *entity.Request) bool {
	if !f.IncludeClosed && !r.IsOpen() {
		return false
	}
	if f.ExcludeUpTo > 0 && r.ModDate <= f.ExcludeUpTo {
		return false
	}
	return true
}

func (f ListFilter) sorted(requests []entity.Request) []entity.Request {
	sort.Slice(requests, func(i, j int) bool {
		if f.Descending {
			return requests[i].CreateDate > requests[j].CreateDate
		}
		return requests[i].CreateDate < requests[j].CreateDate
	})
	return requests
}

// GroupRequests lists a group's inbound requests for its admins.
func (s *Store) GroupRequests(groupID, actor string, filter ListFilter) ([]entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if !s.isAdminOrOwner(group, actor) {
		return nil, fault(apperr.CodeUnauthorized, actor+" may not administrate group "+groupID)
	}

	requests := []entity.Request{}
	for _, r := range s.requests {
		if r.GroupID == groupID && filter.keep(r) {
			requests = append(requests, *r)
		}
	}
	return filter.sorted(requests), nil
}

// TargetedRequests lists the invitations addressed to username.
func (s *Store) TargetedRequests(username string, filter ListFilter) []entity.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := []entity.Request{}
	for _, r := range s.requests {
		if r.Requester == username && r.Type == entity.KindMembershipInvitation && filter.keep(r) {
			requests = append(requests, *r)
		}
	}
	return filter.sorted(requests)
}

// CreatedRequests lists the requests username created (invitations are
// created by admins, so they appear in the invitee's targeted list instead).
func (s *Store) CreatedRequests(username string, filter ListFilter) []entity.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := []entity.Request{}
	for _, r := range s.requests {
		if r.Requester == username && r.Type != entity.KindMembershipInvitation && filter.keep(r) {
			requests = append(requests, *r)
		}
	}
	return filter.sorted(requests)
}

// AcceptRequest accepts an open request. Invitations may only be accepted
// by the invited user; membership and resource requests by a group admin or
// the owner. Accepting a membership kind adds the requester to the members.
func (s *Store) AcceptRequest(id, actor string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, group, err := s.openRequestForUpdate(id)
	if err != nil {
		return entity.Request{}, err
	}

	switch request.Type {
	case entity.KindMembershipInvitation:
		if request.Requester != actor {
			return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" is not the invited user")
		}
	default:
		if !s.isAdminOrOwner(group, actor) {
			return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" may not administrate group "+request.GroupID)
		}
	}

	request.Status = entity.StatusAccepted
	request.ModDate = s.now().UnixMilli()
	if request.Type == entity.KindMembershipRequest || request.Type == entity.KindMembershipInvitation {
		if !group.IsMember(request.Requester) {
			group.Members = append(group.Members, request.Requester)
			group.ModDate = request.ModDate
		}
	}
	return *request, nil
}

// DenyRequest denies an open request; same actor rules as accept, no
// membership change.
func (s *Store) DenyRequest(id, actor string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, group, err := s.openRequestForUpdate(id)
	if err != nil {
		return entity.Request{}, err
	}

	switch request.Type {
	case entity.KindMembershipInvitation:
		if request.Requester != actor {
			return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" is not the invited user")
		}
	default:
		if !s.isAdminOrOwner(group, actor) {
			return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" may not administrate group "+request.GroupID)
		}
	}

	request.Status = entity.StatusDenied
	request.ModDate = s.now().UnixMilli()
	return *request, nil
}

// CancelRequest cancels a request; only its own requester may cancel, and
// only while it is open.
func (s *Store) CancelRequest(id, actor string) (entity.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, _, err := s.openRequestForUpdate(id)
	if err != nil {
		return entity.Request{}, err
	}
	if request.Requester != actor {
		return entity.Request{}, fault(apperr.CodeUnauthorized, actor+" did not create this request")
	}

	request.Status = entity.StatusCanceled
	request.ModDate = s.now().UnixMilli()
	return *request, nil
}

func (s *Store) openRequestForUpdate(id string) (*entity.Request, *entity.Group, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, nil, fault(apperr.CodeNoSuchRequest, "no such request: "+id)
	}
	if !request.IsOpen() {
		return nil, nil, fault(apperr.CodeUnsupportedOperation, "request "+id+" is closed")
	}
	group, ok := s.groups[request.GroupID]
	if !ok {
		return nil, nil, fault(apperr.CodeNoSuchGroup, "no such group: "+request.GroupID)
	}
	return request, group, nil
}

// AddOrRequestWorkspace attaches a workspace to a group directly when the
// actor administers the group, otherwise opens a resource-access request.
func (s *Store) AddOrRequestWorkspace(groupID, actor, workspaceID string) (entity.RequestOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return entity.RequestOutcome{}, fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	for _, ws := range group.Resources.Workspace {
		if ws.RID == workspaceID {
			return entity.RequestOutcome{}, fault(apperr.CodeWorkspaceAlreadyInUse, "workspace "+workspaceID+" is already in group "+groupID)
		}
	}

	if s.isAdminOrOwner(group, actor) {
		group.Resources.Workspace = append(group.Resources.Workspace, entity.WorkspaceInfo{
			RID:  workspaceID,
			Perm: "Admin",
		})
		group.ModDate = s.now().UnixMilli()
		return entity.RequestOutcome{Complete: true}, nil
	}

	if s.openRequest(groupID, actor, entity.KindResourceAccess) != nil {
		return entity.RequestOutcome{}, fault(apperr.CodeRequestAlreadyExists, "an open resource request already exists")
	}
	request := s.newRequest(groupID, actor, entity.KindResourceAccess)
	request.Resource = workspaceID
	request.ResourceType = "workspace"
	return entity.RequestOutcome{Request: *request, Complete: false}, nil
}

// DeleteResource removes a resource from a group.
func (s *Store) DeleteResource(groupID, actor, resourceType, resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if !s.isAdminOrOwner(group, actor) {
		return fault(apperr.CodeUnauthorized, actor+" may not administrate group "+groupID)
	}
	if resourceType != "workspace" {
		return fault(apperr.CodeIllegalParameter, "unknown resource type: "+resourceType)
	}

	for i, ws := range group.Resources.Workspace {
		if ws.RID == resourceID {
			group.Resources.Workspace = append(group.Resources.Workspace[:i], group.Resources.Workspace[i+1:]...)
			group.ModDate = s.now().UnixMilli()
			return nil
		}
	}
	return fault(apperr.CodeNoSuchWorkspace, "no such workspace: "+resourceID)
}

// PromoteMember moves a member into the admin list.
func (s *Store) PromoteMember(groupID, actor, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if group.Owner != actor {
		return fault(apperr.CodeUnauthorized, "only the owner may change admins")
	}
	if !group.IsMember(member) {
		return fault(apperr.CodeNoSuchUser, member+" is not a member of "+groupID)
	}
	if group.IsAdmin(member) {
		return nil
	}
	group.Admins = append(group.Admins, member)
	group.ModDate = s.now().UnixMilli()
	return nil
}

// DemoteAdmin moves an admin back to plain membership.
func (s *Store) DemoteAdmin(groupID, actor, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if group.Owner != actor {
		return fault(apperr.CodeUnauthorized, "only the owner may change admins")
	}
	for i, admin := range group.Admins {
		if admin == member {
			group.Admins = append(group.Admins[:i], group.Admins[i+1:]...)
			group.ModDate = s.now().UnixMilli()
			return nil
		}
	}
	return fault(apperr.CodeNoSuchUser, member+" is not an admin of "+groupID)
}

// RemoveMember removes a member; admins and the owner may remove anyone,
// a member may remove themselves.
func (s *Store) RemoveMember(groupID, actor, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fault(apperr.CodeNoSuchGroup, "no such group: "+groupID)
	}
	if !s.isAdminOrOwner(group, actor) && actor != member {
		return fault(apperr.CodeUnauthorized, actor+" may not remove members from "+groupID)
	}

	for i, m := range group.Members {
		if m == member {
			group.Members = append(group.Members[:i], group.Members[i+1:]...)
			for j, admin := range group.Admins {
				if admin == member {
					group.Admins = append(group.Admins[:j], group.Admins[j+1:]...)
					break
				}
			}
			group.ModDate = s.now().UnixMilli()
			return nil
		}
	}
	return fault(apperr.CodeNoSuchUser, member+" is not a member of "+groupID)
}

// SearchUsers matches directory users by substring on username or realname.
func (s *Store) SearchUsers(query string) []entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(query)
	matches := []entity.User{}
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Username), query) ||
			strings.Contains(strings.ToLower(user.RealName), query) {
			matches = append(matches, user)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Username < matches[j].Username })
	return matches
}
