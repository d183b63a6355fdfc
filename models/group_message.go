package models

// GroupMessage is keyed by messageId alone; group lookups go through a
// filtered scan. Known scalability weakness, kept deliberately.
type GroupMessage struct {
	MessageID        string `dynamodbav:"messageId" json:"messageId"`
	GroupID          string `dynamodbav:"groupId" json:"groupId"`
	SenderID         string `dynamodbav:"senderId" json:"senderId"`
	Content          string `dynamodbav:"content,omitempty" json:"content,omitempty"`
	FileURL          string `dynamodbav:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	Type             string `dynamodbav:"type" json:"type"`
	Timestamp        string `dynamodbav:"timestamp" json:"timestamp"`
	IsRecalled       bool   `dynamodbav:"isRecalled" json:"isRecalled"`
	IsForwarded      bool   `dynamodbav:"isForwarded,omitempty" json:"isForwarded,omitempty"`
	OriginalSenderID string `dynamodbav:"originalSenderId,omitempty" json:"originalSenderId,omitempty"`
}

// GroupMessagesTable is the DynamoDB table name for group messages
const GroupMessagesTable = "groupMessage"
