package groups

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/dinerozz/orgs-console/internal/entity"
)

// SortDirection orders request listings by creation time.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// RequestListOptions are the optional filters for request listing endpoints.
type RequestListOptions struct {
	IncludeClosed bool
	Sort          SortDirection
	// ExcludeUpTo is an exclusive epoch-millis lower bound; zero means no bound.
	ExcludeUpTo int64
}

func (o RequestListOptions) query() url.Values {
	query := url.Values{}
	if o.IncludeClosed {
		query.Set("closed", "closed")
	}
	if o.Sort == Descending {
		query.Set("order", "desc")
	} else {
		query.Set("order", "asc")
	}
	if o.ExcludeUpTo > 0 {
		query.Set("excludeupto", strconv.FormatInt(o.ExcludeUpTo, 10))
	}
	return query
}

// Info fetches the service root document.
func (c *Client) Info(ctx context.Context) (entity.ServiceInfo, error) {
	var info entity.ServiceInfo
	err := c.get(ctx, []string{}, nil, &info)
	return info, err
}

// GroupExists checks for the existence of a group id.
func (c *Client) GroupExists(ctx context.Context, id string) (bool, error) {
	var result entity.GroupExists
	if err := c.get(ctx, []string{"group", id, "exists"}, nil, &result); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// ListGroups fetches the brief group listing.
func (c *Client) ListGroups(ctx context.Context) ([]entity.BriefGroup, error) {
	var brief []entity.BriefGroup
	if err := c.get(ctx, []string{"group"}, nil, &brief); err != nil {
		return nil, err
	}
	return brief, nil
}

// GetGroup fetches a group by id. Absence (404) returns nil, nil: a missing
// group is an application value here, not an error.
func (c *Client) GetGroup(ctx context.Context, id string) (*entity.Group, error) {
	var group entity.Group
	found, err := c.getOrNil(ctx, []string{"group", id}, &group)
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

// GetGroups lists brief groups and then fetches each full record in
// parallel. A group deleted between the listing and the per-id fetch comes
// back as a 404 and is silently dropped from the result.
func (c *Client) GetGroups(ctx context.Context) ([]entity.Group, error) {
	brief, err := c.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	fetched := make([]*entity.Group, len(brief))
	errs := make([]error, len(brief))
	var wg sync.WaitGroup
	for i, b := range brief {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			fetched[i], errs[i] = c.GetGroup(ctx, id)
		}(i, b.ID)
	}
	wg.Wait()

	result := make([]entity.Group, 0, len(brief))
	for i, group := range fetched {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if group != nil {
			result = append(result, *group)
		}
	}
	return result, nil
}

type groupPayload struct {
	Name        string             `json:"name"`
	Custom      entity.GroupCustom `json:"custom"`
	Description string             `json:"description"`
}

// CreateGroup creates a new group.
func (c *Client) CreateGroup(ctx context.Context, newGroup entity.NewGroup) (entity.Group, error) {
	var group entity.Group
	err := c.put(ctx, []string{"group", newGroup.ID}, groupPayload{
		Name:        newGroup.Name,
		Custom:      entity.GroupCustom{GravatarHash: newGroup.GravatarHash},
		Description: newGroup.Description,
	}, &group)
	return group, err
}

// UpdateGroup updates a group's mutable fields.
func (c *Client) UpdateGroup(ctx context.Context, id string, update entity.GroupUpdate) error {
	return c.putNoContent(ctx, []string{"group", id, "update"}, groupPayload{
		Name:        update.Name,
		Custom:      entity.GroupCustom{GravatarHash: update.GravatarHash},
		Description: update.Description,
	})
}

// GetRequest fetches a single request by id.
func (c *Client) GetRequest(ctx context.Context, requestID string) (entity.Request, error) {
	var request entity.Request
	err := c.get(ctx, []string{"request", "id", requestID}, nil, &request)
	return request, err
}

// GroupRequests lists the requests targeting a group, for its admins.
func (c *Client) GroupRequests(ctx context.Context, groupID string, opts RequestListOptions) ([]entity.Request, error) {
	var requests []entity.Request
	err := c.get(ctx, []string{"group", groupID, "requests"}, opts.query(), &requests)
	return requests, err
}

// TargetedRequests lists requests targeted at the current user (invitations).
func (c *Client) TargetedRequests(ctx context.Context, opts RequestListOptions) ([]entity.Request, error) {
	var requests []entity.Request
	err := c.get(ctx, []string{"request", "targeted"}, opts.query(), &requests)
	return requests, err
}

// CreatedRequests lists requests created by the current user.
func (c *Client) CreatedRequests(ctx context.Context, opts RequestListOptions) ([]entity.Request, error) {
	var requests []entity.Request
	err := c.get(ctx, []string{"request", "created"}, opts.query(), &requests)
	return requests, err
}

// RequestMembership asks to join a group as the current user. A duplicate
// open request is refused by the service with appcode 40010.
func (c *Client) RequestMembership(ctx context.Context, groupID string) (entity.Request, error) {
	var request entity.Request
	err := c.post(ctx, []string{"group", groupID, "requestmembership"}, nil, &request)
	return request, err
}

// AddOrRequestWorkspace adds a workspace to a group, or creates a
// resource-access request if the caller cannot add it directly.
func (c *Client) AddOrRequestWorkspace(ctx context.Context, groupID string, workspaceID int) (entity.RequestOutcome, error) {
	var outcome entity.RequestOutcome
	path := []string{"group", groupID, "resource", "workspace", strconv.Itoa(workspaceID)}
	err := c.post(ctx, path, nil, &outcome)
	return outcome, err
}

// DeleteResource removes a resource from a group.
func (c *Client) DeleteResource(ctx context.Context, groupID, resourceType, resourceID string) error {
	return c.delete(ctx, []string{"group", groupID, "resource", resourceType, resourceID})
}

// CancelRequest cancels the current user's own open request.
func (c *Client) CancelRequest(ctx context.Context, requestID string) (entity.Request, error) {
	var request entity.Request
	err := c.put(ctx, []string{"request", "id", requestID, "cancel"}, nil, &request)
	return request, err
}

// AcceptRequest accepts an open request. For invitations the acting user is
// the invitee; for membership requests it must be a group admin or the owner.
func (c *Client) AcceptRequest(ctx context.Context, requestID string) (entity.Request, error) {
	var request entity.Request
	err := c.put(ctx, []string{"request", "id", requestID, "accept"}, nil, &request)
	return request, err
}

// DenyRequest denies an open request.
func (c *Client) DenyRequest(ctx context.Context, requestID string) (entity.Request, error) {
	var request entity.Request
	err := c.put(ctx, []string{"request", "id", requestID, "deny"}, nil, &request)
	return request, err
}

// GrantReadAccess grants the requester read access to the resource behind a
// resource-access request.
func (c *Client) GrantReadAccess(ctx context.Context, requestID string) error {
	return c.post(ctx, []string{"request", "id", requestID, "getperm"}, nil, nil)
}

// MemberToAdmin promotes a group member to admin.
func (c *Client) MemberToAdmin(ctx context.Context, groupID, member string) error {
	return c.putNoContent(ctx, []string{"group", groupID, "user", member, "admin"}, nil)
}

// AdminToMember demotes a group admin to a plain member.
func (c *Client) AdminToMember(ctx context.Context, groupID, member string) error {
	return c.delete(ctx, []string{"group", groupID, "user", member, "admin"})
}

// RemoveMember removes a member from a group.
func (c *Client) RemoveMember(ctx context.Context, groupID, member string) error {
	return c.delete(ctx, []string{"group", groupID, "user", member})
}

// InviteUser invites a user to join a group, creating a membership
// invitation addressed to that user.
func (c *Client) InviteUser(ctx context.Context, groupID, username string) (entity.Request, error) {
	var request entity.Request
	err := c.post(ctx, []string{"group", groupID, "user", username}, nil, &request)
	return request, err
}

// SearchUsers queries the companion user directory by name or username.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]entity.User, error) {
	var users []entity.User
	err := c.get(ctx, []string{"user", "search", query}, nil, &users)
	return users, err
}
