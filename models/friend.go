package models

// FriendRequest tracks the request lifecycle between two emails.
type FriendRequest struct {
	RequestID string `dynamodbav:"requestId" json:"requestId"`
	FromEmail string `dynamodbav:"fromEmail" json:"fromEmail"`
	ToEmail   string `dynamodbav:"toEmail" json:"toEmail"`
	Status    string `dynamodbav:"status" json:"status"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// Friendship is created when a request is accepted and removed on unfriend.
type Friendship struct {
	FriendshipID string `dynamodbav:"friendshipId" json:"friendshipId"`
	User1Email   string `dynamodbav:"user1Email" json:"user1Email"`
	User2Email   string `dynamodbav:"user2Email" json:"user2Email"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

// FriendSummary is one row of a user's friend list.
type FriendSummary struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// FriendRequestsTable is the DynamoDB table name for friend requests
const FriendRequestsTable = "FriendRequests"

// FriendshipsTable is the DynamoDB table name for accepted friendships
const FriendshipsTable = "Friends"
