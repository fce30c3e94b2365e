package apperr

// Application error codes reported by the groups service.
const (
	CodeAuthenticationFailed  = 10000
	CodeNoToken               = 10010
	CodeInvalidToken          = 10020
	CodeUnauthorized          = 20000
	CodeMissingParameter      = 30000
	CodeIllegalParameter      = 30001
	CodeIllegalUserName       = 30010
	CodeGroupAlreadyExists    = 40000
	CodeRequestAlreadyExists  = 40010
	CodeUserAlreadyMember     = 40020
	CodeWorkspaceAlreadyInUse = 40030
	CodeNoSuchGroup           = 50000
	CodeNoSuchRequest         = 50010
	CodeNoSuchUser            = 50020
	CodeNoSuchWorkspace       = 50030
	CodeUnsupportedOperation  = 60000
)

// appErrorNames maps codes to the service's canonical apperror strings.
var appErrorNames = map[int]string{
	CodeAuthenticationFailed:  "Authentication failed",
	CodeNoToken:               "No authentication token",
	CodeInvalidToken:          "Invalid token",
	CodeUnauthorized:          "Unauthorized",
	CodeMissingParameter:      "Missing input parameter",
	CodeIllegalParameter:      "Illegal input parameter",
	CodeIllegalUserName:       "Illegal user name",
	CodeGroupAlreadyExists:    "Group already exists",
	CodeRequestAlreadyExists:  "Request already exists",
	CodeUserAlreadyMember:     "User already group member",
	CodeWorkspaceAlreadyInUse: "Workspace already in group",
	CodeNoSuchGroup:           "No such group",
	CodeNoSuchRequest:         "No such request",
	CodeNoSuchUser:            "No such user",
	CodeNoSuchWorkspace:       "No such workspace",
	CodeUnsupportedOperation:  "Unsupported operation",
}

// Name returns the canonical apperror string for a code, or "" if unknown.
func Name(code int) string {
	return appErrorNames[code]
}
