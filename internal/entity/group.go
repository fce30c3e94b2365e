package entity

// Group is the full organization record as served by the groups service.
type Group struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Owner       string         `json:"owner"`
	Admins      []string       `json:"admins"`
	Members     []string       `json:"members"`
	Description string         `json:"description"`
	Private     bool           `json:"private"`
	CreateDate  int64          `json:"createdate"`
	ModDate     int64          `json:"moddate"`
	Resources   GroupResources `json:"resources"`
	Custom      GroupCustom    `json:"custom"`
}

// BriefGroup is the compact shape returned by the group listing endpoint.
type BriefGroup struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Owner  string      `json:"owner"`
	Custom GroupCustom `json:"custom"`
}

type GroupResources struct {
	Workspace     []WorkspaceInfo `json:"workspace"`
	CatalogMethod []AppInfo       `json:"catalogmethod"`
}

type GroupCustom struct {
	GravatarHash string `json:"gravatarhash,omitempty"`
}

type WorkspaceInfo struct {
	RID      string `json:"rid"`
	Name     string `json:"name"`
	NarrName string `json:"narrname"`
	Public   bool   `json:"public"`
	Perm     string `json:"perm"`
}

type AppInfo struct {
	RID string `json:"rid"`
}

// NewGroup carries the fields needed to create a group.
type NewGroup struct {
	ID           string
	Name         string
	GravatarHash string
	Description  string
}

// GroupUpdate carries the mutable group fields.
type GroupUpdate struct {
	Name         string
	GravatarHash string
	Description  string
}

type GroupExists struct {
	Exists bool `json:"exists"`
}

// ServiceInfo is the groups service root document.
type ServiceInfo struct {
	ServName      string `json:"servname"`
	Version       string `json:"version"`
	ServerTime    int64  `json:"servertime"`
	GitCommitHash string `json:"gitcommithash"`
}

// IsAdmin reports whether username is in the group's admin list.
func (g Group) IsAdmin(username string) bool {
	for _, admin := range g.Admins {
		if admin == username {
			return true
		}
	}
	return false
}

// IsMember reports whether username is in the group's member list.
func (g Group) IsMember(username string) bool {
	for _, member := range g.Members {
		if member == username {
			return true
		}
	}
	return false
}
