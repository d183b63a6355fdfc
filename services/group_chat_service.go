package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/utils"
)

// GroupChatService owns the group message table. Records are keyed by
// messageId alone, so per-group reads go through a filtered scan.
type GroupChatService struct {
	Dynamo *DynamoService
	Blobs  BlobStore
}

// CreateGroupMessage validates and stores one group message. Membership
// checks belong to the caller; this layer only knows the message table.
func (gcs *GroupChatService) CreateGroupMessage(ctx context.Context, msg models.GroupMessage) (*models.GroupMessage, error) {
	if msg.GroupID == "" || msg.SenderID == "" {
		return nil, apperr.Validationf("groupId and senderId are required")
	}
	if msg.Content == "" && msg.FileURL == "" {
		return nil, apperr.Validationf("message must have content or a file")
	}

	if msg.MessageID == "" {
		msg.MessageID = uuid.New().String()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = timestampNow()
	}
	msg.Type = DetectMessageType(msg.FileURL, msg.Type)
	msg.IsRecalled = false

	if err := gcs.Dynamo.PutItem(ctx, models.GroupMessagesTable, msg); err != nil {
		return nil, apperr.Dependency(err, "failed to store group message")
	}
	return &msg, nil
}

// GetMessagesByGroup returns the group's messages oldest first.
func (gcs *GroupChatService) GetMessagesByGroup(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	filterExpression := "groupId = :groupId"
	expressionValues := map[string]types.AttributeValue{
		":groupId": &types.AttributeValueMemberS{Value: groupID},
	}

	var messages []models.GroupMessage
	if err := gcs.Dynamo.ScanItems(ctx, models.GroupMessagesTable, filterExpression, expressionValues, nil, &messages); err != nil {
		return nil, apperr.Dependency(err, "failed to fetch group messages")
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

// GetGroupMessageByID fetches a single group message.
func (gcs *GroupChatService) GetGroupMessageByID(ctx context.Context, messageID string) (*models.GroupMessage, error) {
	key := utils.Key("messageId", messageID)

	item, err := gcs.Dynamo.GetItem(ctx, models.GroupMessagesTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperr.NotFoundf("message not found")
		}
		return nil, apperr.Dependency(err, "failed to fetch group message")
	}

	var msg models.GroupMessage
	if err := attributevalue.UnmarshalMap(item, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse group message: %w", err)
	}
	return &msg, nil
}

// RecallGroupMessage blanks a message for everyone in the group. Only the
// sender within the recall window may do this.
func (gcs *GroupChatService) RecallGroupMessage(ctx context.Context, messageID, actorID string) (*models.GroupMessage, error) {
	msg, err := gcs.GetGroupMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := CanRecall(msg.SenderID, actorID, msg.IsRecalled, msg.Timestamp, time.Now()); err != nil {
		return nil, err
	}

	key := utils.Key("messageId", messageID)
	updateExpression := "SET isRecalled = :recalled, content = :content REMOVE fileUrl"
	expressionValues := map[string]types.AttributeValue{
		":recalled": &types.AttributeValueMemberBOOL{Value: true},
		":content":  &types.AttributeValueMemberS{Value: models.RecalledPlaceholder},
	}

	item, err := gcs.Dynamo.UpdateItem(ctx, models.GroupMessagesTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to recall group message")
	}

	gcs.deleteBlob(ctx, msg.FileURL)

	var updated models.GroupMessage
	if err := attributevalue.UnmarshalMap(item, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse recalled message: %w", err)
	}
	return &updated, nil
}

// DeleteGroupMessage removes the sender's own message record entirely.
func (gcs *GroupChatService) DeleteGroupMessage(ctx context.Context, messageID, actorID string) error {
	msg, err := gcs.GetGroupMessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != actorID {
		return apperr.Authorizationf("only the sender can delete this message")
	}

	key := utils.Key("messageId", messageID)
	if err := gcs.Dynamo.DeleteItem(ctx, models.GroupMessagesTable, key); err != nil {
		return apperr.Dependency(err, "failed to delete group message")
	}

	gcs.deleteBlob(ctx, msg.FileURL)
	return nil
}

func (gcs *GroupChatService) deleteBlob(ctx context.Context, fileURL string) {
	if fileURL == "" || gcs.Blobs == nil {
		return
	}
	if err := gcs.Blobs.DeleteByURL(ctx, fileURL); err != nil {
		log.Printf("⚠️ Failed to delete blob %s: %v", fileURL, err)
	}
}
