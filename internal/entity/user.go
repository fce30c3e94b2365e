package entity

// User is a directory entry from the companion user service.
type User struct {
	Username string `json:"username"`
	RealName string `json:"realname"`
}
