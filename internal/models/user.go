package models

// UserProfile is supplied by the client at join time and immutable for the
// duration of its membership. Usernames are not validated for uniqueness.
type UserProfile struct {
	Username string `json:"username"`
	Language string `json:"language"`
}

// RosterEntry is one row of a room's users_list broadcast.
type RosterEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Language string `json:"language"`
	PeerID   string `json:"peerId,omitempty"`
}

// AdminUserEntry is one row of the cross-room users snapshot sent to admins.
type AdminUserEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Language string `json:"language"`
	Room     string `json:"room"`
	Status   string `json:"status"`
}
