package models

// ✅ Message types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
)

// ✅ Group member roles
const (
	RoleAdmin   = "admin"
	RoleCoAdmin = "co-admin"
	RoleMember  = "member"
)

// ✅ Friend request statuses
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusDeclined = "declined"
)

// RecalledPlaceholder replaces the content of a recalled message.
const RecalledPlaceholder = "This message has been recalled."
