package entity

// RequestKind discriminates what a request is asking for.
type RequestKind string

const (
	KindMembershipRequest    RequestKind = "membership-request"
	KindMembershipInvitation RequestKind = "membership-invitation"
	KindResourceAccess       RequestKind = "resource-access-request"
)

// RequestStatus is the lifecycle state of a request. Once a request leaves
// StatusOpen it never returns to it.
type RequestStatus string

const (
	StatusOpen     RequestStatus = "open"
	StatusAccepted RequestStatus = "accepted"
	StatusDenied   RequestStatus = "denied"
	StatusCanceled RequestStatus = "canceled"
	StatusExpired  RequestStatus = "expired"
)

// Request is a persisted ask (join, invite, resource access) between a user
// and a group. For invitations Requester is the invited user, not the admin
// who sent the invite.
type Request struct {
	ID           string        `json:"id"`
	GroupID      string        `json:"groupid"`
	Requester    string        `json:"requester"`
	Type         RequestKind   `json:"type"`
	Status       RequestStatus `json:"status"`
	Resource     string        `json:"resource,omitempty"`
	ResourceType string        `json:"resourcetype,omitempty"`
	CreateDate   int64         `json:"createdate"`
	ModDate      int64         `json:"moddate"`
	ExpireDate   int64         `json:"expiredate,omitempty"`
}

// IsOpen reports whether the request can still be acted on.
func (r Request) IsOpen() bool {
	return r.Status == StatusOpen
}

// RequestOutcome is the result of an operation that either creates a request
// or completes immediately (e.g. adding a workspace the caller already has
// rights to). When Complete is true the embedded request fields are zero.
type RequestOutcome struct {
	Request
	Complete bool `json:"complete"`
}
