package socket

import (
	"context"

	"linkup_server/models"
	"linkup_server/services"
)

// Store interfaces consumed by the event hub. The services package
// satisfies them; tests substitute fakes.

type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ChatStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	RecallMessage(ctx context.Context, conversationID, timestamp, actorID string) (*models.Message, error)
	ForwardMessage(ctx context.Context, conversationID, timestamp, senderID, newReceiverID string) (*models.Message, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, name, ownerID string, members []models.GroupMember, avatarURL string) (*models.Group, error)
	GetGroupByID(ctx context.Context, groupID string) (*models.Group, error)
	AddMember(ctx context.Context, groupID string, member models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	UpdateMemberRole(ctx context.Context, groupID, userID, role string) error
	DisbandGroup(ctx context.Context, groupID string) error
	LeaveGroup(ctx context.Context, groupID, userID string) (*services.LeaveOutcome, error)
}

type GroupChatStore interface {
	CreateGroupMessage(ctx context.Context, msg models.GroupMessage) (*models.GroupMessage, error)
	GetGroupMessageByID(ctx context.Context, messageID string) (*models.GroupMessage, error)
	RecallGroupMessage(ctx context.Context, messageID, actorID string) (*models.GroupMessage, error)
	DeleteGroupMessage(ctx context.Context, messageID, actorID string) error
}

type FriendStore interface {
	SendRequest(ctx context.Context, fromEmail, toEmail string) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID, actorEmail string) (*models.FriendRequest, error)
	DeclineRequest(ctx context.Context, requestID, actorEmail string) (*models.FriendRequest, error)
	RemoveFriend(ctx context.Context, emailA, emailB string) error
}
