package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/utils"
)

// ChatService owns the direct-message table. Blob cleanup on recall/delete is
// best-effort: a failed S3 delete is logged and never blocks the message
// mutation.
type ChatService struct {
	Dynamo *DynamoService
	Blobs  BlobStore
}

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}
var videoExtensions = []string{"mp4", "mov", "avi", "mkv", "webm"}

// DetectMessageType infers the message type from an attachment's file
// extension, falling back to the declared type for plain messages.
func DetectMessageType(fileURL, declared string) string {
	if fileURL == "" {
		if declared == "" {
			return models.MessageTypeText
		}
		return declared
	}
	ext := strings.ToLower(fileURL[strings.LastIndex(fileURL, ".")+1:])
	for _, e := range imageExtensions {
		if ext == e {
			return models.MessageTypeImage
		}
	}
	for _, e := range videoExtensions {
		if ext == e {
			return models.MessageTypeVideo
		}
	}
	return models.MessageTypeFile
}

// CreateMessage validates and stores a direct message, deriving the
// conversation identifier and defaulting identity/timestamp fields.
func (s *ChatService) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	if msg.SenderID == "" || msg.ReceiverID == "" {
		return nil, apperr.Validationf("senderId and receiverId are required")
	}
	if msg.Content == "" && msg.FileURL == "" {
		return nil, apperr.Validationf("message needs content or a file")
	}

	msg.ConversationID = models.ConversationID(msg.SenderID, msg.ReceiverID)
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("%s#%s#%d", msg.SenderID, msg.ReceiverID, time.Now().UnixMilli())
	}
	if msg.Timestamp == "" {
		msg.Timestamp = timestampNow()
	}
	msg.Type = DetectMessageType(msg.FileURL, msg.Type)
	msg.IsRead = false
	msg.IsRecalled = false

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, msg); err != nil {
		return nil, apperr.Dependency(err, "failed to store message")
	}

	log.Printf("📩 Stored message %s in conversation %s", msg.MessageID, msg.ConversationID)
	return &msg, nil
}

// GetMessagesByConversation returns the thread in ascending timestamp order.
func (s *ChatService) GetMessagesByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	keyCondition := "conversationId = :conversationId"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to fetch messages")
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

// GetMessage fetches one message by its composite key.
func (s *ChatService) GetMessage(ctx context.Context, conversationID, timestamp string) (*models.Message, error) {
	key := utils.CompositeKey("conversationId", conversationID, "timestamp", timestamp)

	item, err := s.Dynamo.GetItem(ctx, models.MessagesTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperr.NotFoundf("message not found")
		}
		return nil, apperr.Dependency(err, "failed to fetch message")
	}

	var msg models.Message
	if err := attributevalue.UnmarshalMap(item, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// RecallMessage tombstones a message: content becomes the placeholder, the
// file URL is dropped and isRecalled flips to true. Only the sender may
// recall, only once, and only within RecallWindow of sending.
func (s *ChatService) RecallMessage(ctx context.Context, conversationID, timestamp, actorID string) (*models.Message, error) {
	msg, err := s.GetMessage(ctx, conversationID, timestamp)
	if err != nil {
		return nil, err
	}
	if err := CanRecall(msg.SenderID, actorID, msg.IsRecalled, msg.Timestamp, time.Now()); err != nil {
		return nil, err
	}

	key := utils.CompositeKey("conversationId", conversationID, "timestamp", timestamp)
	updateExpression := "SET isRecalled = :recalled, content = :content REMOVE fileUrl"
	expressionValues := map[string]types.AttributeValue{
		":recalled": &types.AttributeValueMemberBOOL{Value: true},
		":content":  &types.AttributeValueMemberS{Value: models.RecalledPlaceholder},
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to recall message")
	}

	s.deleteBlob(ctx, msg.FileURL)

	var updated models.Message
	if err := attributevalue.UnmarshalMap(attrs, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse recalled message: %w", err)
	}
	log.Printf("↩️ Message at %s in %s recalled by %s", timestamp, conversationID, actorID)
	return &updated, nil
}

// DeleteMessage hard-removes a message record, sender only, and cleans up any
// attachment blob.
func (s *ChatService) DeleteMessage(ctx context.Context, conversationID, timestamp, actorID string) error {
	msg, err := s.GetMessage(ctx, conversationID, timestamp)
	if err != nil {
		return err
	}
	if msg.SenderID != actorID {
		return apperr.Authorizationf("only the sender can delete this message")
	}

	key := utils.CompositeKey("conversationId", conversationID, "timestamp", timestamp)
	if err := s.Dynamo.DeleteItem(ctx, models.MessagesTable, key); err != nil {
		return apperr.Dependency(err, "failed to delete message")
	}

	s.deleteBlob(ctx, msg.FileURL)
	return nil
}

// MarkMessagesAsRead flips isRead on the caller's unread, un-recalled
// messages in one conversation.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, conversationID, userID string) error {
	keyCondition := "conversationId = :cid"
	filter := "isRead = :unread AND receiverId = :userId AND isRecalled = :notRecalled"
	expressionValues := map[string]types.AttributeValue{
		":cid":         &types.AttributeValueMemberS{Value: conversationID},
		":unread":      &types.AttributeValueMemberBOOL{Value: false},
		":userId":      &types.AttributeValueMemberS{Value: userID},
		":notRecalled": &types.AttributeValueMemberBOOL{Value: false},
	}

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.MessagesTable, keyCondition, expressionValues, nil, filter)
	if err != nil {
		return apperr.Dependency(err, "failed to fetch unread messages")
	}

	for _, item := range items {
		var msg models.Message
		if err := attributevalue.UnmarshalMap(item, &msg); err != nil {
			continue
		}
		key := utils.CompositeKey("conversationId", msg.ConversationID, "timestamp", msg.Timestamp)
		updateValues := map[string]types.AttributeValue{
			":read": &types.AttributeValueMemberBOOL{Value: true},
		}
		if _, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, "SET isRead = :read", key, updateValues, nil); err != nil {
			log.Printf("❌ Failed to mark message %s as read: %v", msg.MessageID, err)
		}
	}
	return nil
}

// ListConversationsForUser scans every message touching the user and folds
// them into per-conversation summaries. Deliberately a non-indexed fallback;
// see the groupMessage scan for the same trade-off.
func (s *ChatService) ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	var messages []models.Message
	err := s.Dynamo.ScanItems(ctx, models.MessagesTable,
		"senderId = :uid OR receiverId = :uid",
		map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		nil,
		&messages,
	)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to scan conversations")
	}

	return BuildConversationSummaries(userID, messages), nil
}

// BuildConversationSummaries groups a user's messages by conversation,
// keeping the latest message as preview and counting unread inbound
// messages. Summaries come back ordered by last activity, newest first.
func BuildConversationSummaries(userID string, messages []models.Message) []models.ConversationSummary {
	byConversation := map[string]*models.ConversationSummary{}
	for i := range messages {
		msg := messages[i]
		summary, ok := byConversation[msg.ConversationID]
		if !ok {
			other := msg.SenderID
			if other == userID {
				other = msg.ReceiverID
			}
			summary = &models.ConversationSummary{
				ConversationID: msg.ConversationID,
				OtherUserID:    other,
			}
			byConversation[msg.ConversationID] = summary
		}
		if summary.LastMessage == nil || msg.Timestamp > summary.LastMessage.Timestamp {
			summary.LastMessage = &messages[i]
		}
		if msg.ReceiverID == userID && !msg.IsRead && !msg.IsRecalled {
			summary.UnreadCount++
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(byConversation))
	for _, summary := range byConversation {
		summaries = append(summaries, *summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.Timestamp > summaries[j].LastMessage.Timestamp
	})
	return summaries
}

// ForwardMessage copies an existing message into the thread with a new
// receiver. The forwarded copy starts unread and un-recalled.
func (s *ChatService) ForwardMessage(ctx context.Context, conversationID, timestamp, senderID, newReceiverID string) (*models.Message, error) {
	if err := CanForwardToUser(senderID, newReceiverID); err != nil {
		return nil, err
	}

	source, err := s.GetMessage(ctx, conversationID, timestamp)
	if err != nil {
		return nil, err
	}
	if source.IsRecalled {
		return nil, apperr.Conflictf("cannot forward a recalled message")
	}

	forwarded := models.Message{
		SenderID:         senderID,
		ReceiverID:       newReceiverID,
		Content:          source.Content,
		FileURL:          source.FileURL,
		Type:             source.Type,
		IsForwarded:      true,
		OriginalSenderID: source.SenderID,
	}
	return s.CreateMessage(ctx, forwarded)
}

func (s *ChatService) deleteBlob(ctx context.Context, fileURL string) {
	if fileURL == "" || s.Blobs == nil {
		return
	}
	if err := s.Blobs.DeleteByURL(ctx, fileURL); err != nil {
		log.Printf("⚠️ Failed to delete blob %s: %v", fileURL, err)
	}
}
