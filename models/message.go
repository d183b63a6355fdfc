package models

import "sort"

// Message is a direct message, partitioned by conversationId with timestamp
// as the sort key.
type Message struct {
	MessageID        string `dynamodbav:"messageId" json:"messageId"`
	ConversationID   string `dynamodbav:"conversationId" json:"conversationId"`
	SenderID         string `dynamodbav:"senderId" json:"senderId"`
	ReceiverID       string `dynamodbav:"receiverId" json:"receiverId"`
	Content          string `dynamodbav:"content,omitempty" json:"content,omitempty"`
	FileURL          string `dynamodbav:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	Type             string `dynamodbav:"type" json:"type"`
	Timestamp        string `dynamodbav:"timestamp" json:"timestamp"`
	IsRead           bool   `dynamodbav:"isRead" json:"isRead"`
	IsRecalled       bool   `dynamodbav:"isRecalled" json:"isRecalled"`
	IsForwarded      bool   `dynamodbav:"isForwarded,omitempty" json:"isForwarded,omitempty"`
	OriginalSenderID string `dynamodbav:"originalSenderId,omitempty" json:"originalSenderId,omitempty"`
}

// ConversationSummary is one row of a user's conversation list: the other
// party, a denormalized preview of the last message and the unread count.
type ConversationSummary struct {
	ConversationID string   `json:"conversationId"`
	OtherUserID    string   `json:"otherUserId"`
	LastMessage    *Message `json:"lastMessage"`
	UnreadCount    int      `json:"unreadCount"`
}

// ConversationID derives the deterministic identifier for the direct thread
// between two users. The same pair always maps to the same id regardless of
// argument order.
func ConversationID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ids[0] + "#" + ids[1]
}

// MessagesTable is the DynamoDB table name for direct messages
const MessagesTable = "message"
