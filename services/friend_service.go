package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/utils"
)

// FriendService owns the friend-request and friendship tables. Friendships
// are stored once per pair, with the two emails in request order, so pair
// lookups check both orderings.
// FriendTables is the slice of DynamoService the friend store needs.
type FriendTables interface {
	PutItem(ctx context.Context, tableName string, item interface{}) error
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	UpdateItem(ctx context.Context, tableName string, updateExpression string, key map[string]types.AttributeValue, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error)
	DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error
	ScanItems(ctx context.Context, tableName string, filterExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, result interface{}) error
	QueryItemsWithIndex(ctx context.Context, tableName string, indexName string, keyCondition string, expressionValues map[string]types.AttributeValue, expressionNames map[string]string, filterExpression string) ([]map[string]types.AttributeValue, error)
}

type FriendService struct {
	Dynamo FriendTables
	Users  *UserService
}

// SendRequest creates a pending friend request from one email to another.
func (fs *FriendService) SendRequest(ctx context.Context, fromEmail, toEmail string) (*models.FriendRequest, error) {
	if fromEmail == "" || toEmail == "" {
		return nil, apperr.Validationf("both sender and recipient emails are required")
	}
	if fromEmail == toEmail {
		return nil, apperr.Conflictf("cannot send a friend request to yourself")
	}

	if _, err := fs.Users.GetUserByEmail(ctx, toEmail); err != nil {
		return nil, err
	}

	friends, err := fs.AreFriends(ctx, fromEmail, toEmail)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperr.Conflictf("you are already friends with this user")
	}

	pending, err := fs.findPendingBetween(ctx, fromEmail, toEmail)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, apperr.Conflictf("a friend request is already pending")
	}

	request := models.FriendRequest{
		RequestID: uuid.New().String(),
		FromEmail: fromEmail,
		ToEmail:   toEmail,
		Status:    models.FriendStatusPending,
		CreatedAt: timestampNow(),
	}
	if err := fs.Dynamo.PutItem(ctx, models.FriendRequestsTable, request); err != nil {
		return nil, apperr.Dependency(err, "failed to store friend request")
	}

	log.Printf("🤝 Friend request %s: %s -> %s", request.RequestID, fromEmail, toEmail)
	return &request, nil
}

// GetRequestByID fetches one friend request record.
func (fs *FriendService) GetRequestByID(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	key := utils.Key("requestId", requestID)

	item, err := fs.Dynamo.GetItem(ctx, models.FriendRequestsTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperr.NotFoundf("friend request not found")
		}
		return nil, apperr.Dependency(err, "failed to fetch friend request")
	}

	var request models.FriendRequest
	if err := attributevalue.UnmarshalMap(item, &request); err != nil {
		return nil, fmt.Errorf("failed to parse friend request: %w", err)
	}
	return &request, nil
}

// GetPendingRequests lists requests addressed to the given email that have
// not been answered yet. Reads through the toEmail GSI.
func (fs *FriendService) GetPendingRequests(ctx context.Context, toEmail string) ([]models.FriendRequest, error) {
	keyCondition := "toEmail = :toEmail"
	expressionValues := map[string]types.AttributeValue{
		":toEmail": &types.AttributeValueMemberS{Value: toEmail},
		":pending": &types.AttributeValueMemberS{Value: models.FriendStatusPending},
	}
	expressionNames := map[string]string{"#status": "status"}

	items, err := fs.Dynamo.QueryItemsWithIndex(ctx, models.FriendRequestsTable, "toEmail-index", keyCondition, expressionValues, expressionNames, "#status = :pending")
	if err != nil {
		return nil, apperr.Dependency(err, "failed to list friend requests")
	}

	var requests []models.FriendRequest
	if err := attributevalue.UnmarshalListOfMaps(items, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse friend requests: %w", err)
	}
	return requests, nil
}

// AcceptRequest marks a pending request accepted and records the friendship.
// Only the recipient may accept.
func (fs *FriendService) AcceptRequest(ctx context.Context, requestID, actorEmail string) (*models.FriendRequest, error) {
	request, err := fs.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ToEmail != actorEmail {
		return nil, apperr.Authorizationf("only the recipient can accept this request")
	}
	if request.Status != models.FriendStatusPending {
		return nil, apperr.Conflictf("friend request has already been answered")
	}

	if err := fs.setRequestStatus(ctx, requestID, models.FriendStatusAccepted); err != nil {
		return nil, err
	}

	friendship := models.Friendship{
		FriendshipID: uuid.New().String(),
		User1Email:   request.FromEmail,
		User2Email:   request.ToEmail,
		CreatedAt:    timestampNow(),
	}
	if err := fs.Dynamo.PutItem(ctx, models.FriendshipsTable, friendship); err != nil {
		return nil, apperr.Dependency(err, "failed to store friendship")
	}

	request.Status = models.FriendStatusAccepted
	log.Printf("✅ Friend request %s accepted (%s <-> %s)", requestID, request.FromEmail, request.ToEmail)
	return request, nil
}

// DeclineRequest marks a pending request declined. Only the recipient may
// decline.
func (fs *FriendService) DeclineRequest(ctx context.Context, requestID, actorEmail string) (*models.FriendRequest, error) {
	request, err := fs.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ToEmail != actorEmail {
		return nil, apperr.Authorizationf("only the recipient can decline this request")
	}
	if request.Status != models.FriendStatusPending {
		return nil, apperr.Conflictf("friend request has already been answered")
	}

	if err := fs.setRequestStatus(ctx, requestID, models.FriendStatusDeclined); err != nil {
		return nil, err
	}
	request.Status = models.FriendStatusDeclined
	return request, nil
}

// RemoveFriend deletes the friendship between two emails, whichever order
// it was stored in.
func (fs *FriendService) RemoveFriend(ctx context.Context, emailA, emailB string) error {
	friendship, err := fs.findFriendship(ctx, emailA, emailB)
	if err != nil {
		return err
	}
	if friendship == nil {
		return apperr.NotFoundf("friendship not found")
	}

	key := utils.Key("friendshipId", friendship.FriendshipID)
	if err := fs.Dynamo.DeleteItem(ctx, models.FriendshipsTable, key); err != nil {
		return apperr.Dependency(err, "failed to remove friend")
	}
	return nil
}

// AreFriends reports whether the two emails share a friendship record.
func (fs *FriendService) AreFriends(ctx context.Context, emailA, emailB string) (bool, error) {
	friendship, err := fs.findFriendship(ctx, emailA, emailB)
	if err != nil {
		return false, err
	}
	return friendship != nil, nil
}

// GetFriends resolves the user's friendships into profile summaries.
// Friends whose account disappeared are skipped.
func (fs *FriendService) GetFriends(ctx context.Context, email string) ([]models.FriendSummary, error) {
	filterExpression := "user1Email = :email OR user2Email = :email"
	expressionValues := map[string]types.AttributeValue{
		":email": &types.AttributeValueMemberS{Value: email},
	}

	var friendships []models.Friendship
	if err := fs.Dynamo.ScanItems(ctx, models.FriendshipsTable, filterExpression, expressionValues, nil, &friendships); err != nil {
		return nil, apperr.Dependency(err, "failed to list friendships")
	}

	summaries := []models.FriendSummary{}
	for _, f := range friendships {
		other := f.User1Email
		if other == email {
			other = f.User2Email
		}
		user, err := fs.Users.GetUserByEmail(ctx, other)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, models.FriendSummary{
			UserID:    user.UserID,
			Email:     user.Email,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		})
	}
	return summaries, nil
}

func (fs *FriendService) setRequestStatus(ctx context.Context, requestID, status string) error {
	key := utils.Key("requestId", requestID)
	updateExpression := "SET #status = :status"
	expressionValues := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: status},
	}
	expressionNames := map[string]string{"#status": "status"}

	if _, err := fs.Dynamo.UpdateItem(ctx, models.FriendRequestsTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return apperr.Dependency(err, "failed to update friend request")
	}
	return nil
}

func (fs *FriendService) findFriendship(ctx context.Context, emailA, emailB string) (*models.Friendship, error) {
	filterExpression := "(user1Email = :a AND user2Email = :b) OR (user1Email = :b AND user2Email = :a)"
	expressionValues := map[string]types.AttributeValue{
		":a": &types.AttributeValueMemberS{Value: emailA},
		":b": &types.AttributeValueMemberS{Value: emailB},
	}

	var friendships []models.Friendship
	if err := fs.Dynamo.ScanItems(ctx, models.FriendshipsTable, filterExpression, expressionValues, nil, &friendships); err != nil {
		return nil, apperr.Dependency(err, "failed to look up friendship")
	}
	if len(friendships) == 0 {
		return nil, nil
	}
	return &friendships[0], nil
}

func (fs *FriendService) findPendingBetween(ctx context.Context, emailA, emailB string) (*models.FriendRequest, error) {
	filterExpression := "#status = :pending AND ((fromEmail = :a AND toEmail = :b) OR (fromEmail = :b AND toEmail = :a))"
	expressionValues := map[string]types.AttributeValue{
		":a":       &types.AttributeValueMemberS{Value: emailA},
		":b":       &types.AttributeValueMemberS{Value: emailB},
		":pending": &types.AttributeValueMemberS{Value: models.FriendStatusPending},
	}
	expressionNames := map[string]string{"#status": "status"}

	var requests []models.FriendRequest
	if err := fs.Dynamo.ScanItems(ctx, models.FriendRequestsTable, filterExpression, expressionValues, expressionNames, &requests); err != nil {
		return nil, apperr.Dependency(err, "failed to look up pending requests")
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return &requests[0], nil
}
