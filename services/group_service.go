package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/utils"
)

// GroupService owns the group table: membership, roles, ownership and
// disbandment.
//
// Multi-step flows here (ownership transfer) are ordered sequences, not
// transactions. Each step is an idempotent per-record write so a retried
// leave request sees already-updated state and converges.
// GroupTable is the slice of DynamoService the group store needs. Narrowed
// so tests can record the mutation sequence behind multi-step flows.
type GroupTable interface {
	PutItem(ctx context.Context, tableName string, item interface{}) error
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	UpdateItem(ctx context.Context, tableName string, updateExpression string, key map[string]types.AttributeValue, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error)
	DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error
	ScanItems(ctx context.Context, tableName string, filterExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, result interface{}) error
}

type GroupService struct {
	Dynamo GroupTable

	// PickIndex selects the fallback owner among n candidates when no
	// co-admin exists. Defaults to a uniform random pick; tests inject a
	// deterministic selector.
	PickIndex func(n int) int
}

func (gs *GroupService) pickIndex(n int) int {
	if gs.PickIndex != nil {
		return gs.PickIndex(n)
	}
	return rand.Intn(n)
}

// LeaveOutcome describes what a leave request cascaded into.
type LeaveOutcome struct {
	OwnerChanged bool
	Disbanded    bool
	NewOwnerID   string
	GroupName    string
	Group        *models.Group // nil when the group was disbanded
}

// CreateGroup stores a new group. The caller supplies the full membership
// list; the owner must already be in it with the admin role.
func (gs *GroupService) CreateGroup(ctx context.Context, name, ownerID string, members []models.GroupMember, avatarURL string) (*models.Group, error) {
	if name == "" || len(members) == 0 {
		return nil, apperr.Validationf("group name and at least one member are required")
	}

	group := models.Group{
		GroupID:   uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		Members:   members,
		AvatarURL: avatarURL,
		CreatedAt: timestampNow(),
	}
	if group.Member(ownerID) == nil {
		return nil, apperr.Validationf("owner must be a group member")
	}

	if err := gs.Dynamo.PutItem(ctx, models.GroupsTable, group); err != nil {
		return nil, apperr.Dependency(err, "failed to create group")
	}

	log.Printf("✅ Group %s (%s) created by %s with %d members", group.GroupID, name, ownerID, len(members))
	return &group, nil
}

// GetGroupByID fetches one group record.
func (gs *GroupService) GetGroupByID(ctx context.Context, groupID string) (*models.Group, error) {
	key := utils.Key("groupId", groupID)

	item, err := gs.Dynamo.GetItem(ctx, models.GroupsTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperr.NotFoundf("group not found")
		}
		return nil, apperr.Dependency(err, "failed to fetch group")
	}

	var group models.Group
	if err := attributevalue.UnmarshalMap(item, &group); err != nil {
		return nil, fmt.Errorf("failed to parse group: %w", err)
	}
	return &group, nil
}

// GetGroupsByUser scans for every group the user belongs to. Full-table scan
// by design of the underlying store.
func (gs *GroupService) GetGroupsByUser(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	if err := gs.Dynamo.ScanItems(ctx, models.GroupsTable, "", nil, nil, &groups); err != nil {
		return nil, apperr.Dependency(err, "failed to list groups")
	}

	var mine []models.Group
	for _, g := range groups {
		if g.Member(userID) != nil {
			mine = append(mine, g)
		}
	}
	return mine, nil
}

// AddMember appends a membership entry to the group's member list.
func (gs *GroupService) AddMember(ctx context.Context, groupID string, member models.GroupMember) error {
	if member.JoinedAt == "" {
		member.JoinedAt = timestampNow()
	}
	memberAttr, err := attributevalue.Marshal([]models.GroupMember{member})
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	key := utils.Key("groupId", groupID)
	updateExpression := "SET #members = list_append(if_not_exists(#members, :empty), :member)"
	expressionValues := map[string]types.AttributeValue{
		":member": memberAttr,
		":empty":  &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
	}
	expressionNames := map[string]string{"#members": "members"}

	if _, err := gs.Dynamo.UpdateItem(ctx, models.GroupsTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return apperr.Dependency(err, "failed to add member")
	}
	return nil
}

// RemoveMember drops the membership entry at the user's current index. A
// user who is already gone is a no-op, which keeps retries safe.
func (gs *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	group, err := gs.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}

	index := -1
	for i := range group.Members {
		if group.Members[i].UserID == userID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	key := utils.Key("groupId", groupID)
	updateExpression := fmt.Sprintf("REMOVE #members[%d]", index)
	expressionNames := map[string]string{"#members": "members"}

	if _, err := gs.Dynamo.UpdateItem(ctx, models.GroupsTable, updateExpression, key, nil, expressionNames); err != nil {
		return apperr.Dependency(err, "failed to remove member")
	}
	return nil
}

// UpdateMemberRole rewrites one member's role in place.
func (gs *GroupService) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	group, err := gs.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}

	index := -1
	for i := range group.Members {
		if group.Members[i].UserID == userID {
			index = i
			break
		}
	}
	if index < 0 {
		return apperr.NotFoundf("user is not a member of this group")
	}

	key := utils.Key("groupId", groupID)
	updateExpression := fmt.Sprintf("SET #members[%d].#role = :role", index)
	expressionValues := map[string]types.AttributeValue{
		":role": &types.AttributeValueMemberS{Value: role},
	}
	expressionNames := map[string]string{
		"#members": "members",
		"#role":    "role",
	}

	if _, err := gs.Dynamo.UpdateItem(ctx, models.GroupsTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return apperr.Dependency(err, "failed to update member role")
	}
	return nil
}

// UpdateGroup applies a partial field update (e.g. ownerId on transfer).
func (gs *GroupService) UpdateGroup(ctx context.Context, groupID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return apperr.Validationf("no fields to update")
	}

	updateExpression := "SET"
	expressionValues := map[string]types.AttributeValue{}
	expressionNames := map[string]string{}
	i := 0
	for field, value := range updates {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal update for '%s': %w", field, err)
		}
		placeholder := fmt.Sprintf(":v%d", i)
		name := fmt.Sprintf("#f%d", i)
		if i > 0 {
			updateExpression += ","
		}
		updateExpression += fmt.Sprintf(" %s = %s", name, placeholder)
		expressionValues[placeholder] = av
		expressionNames[name] = field
		i++
	}

	key := utils.Key("groupId", groupID)
	if _, err := gs.Dynamo.UpdateItem(ctx, models.GroupsTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return apperr.Dependency(err, "failed to update group")
	}
	return nil
}

// DisbandGroup hard-deletes the group record.
func (gs *GroupService) DisbandGroup(ctx context.Context, groupID string) error {
	key := utils.Key("groupId", groupID)
	if err := gs.Dynamo.DeleteItem(ctx, models.GroupsTable, key); err != nil {
		return apperr.Dependency(err, "failed to disband group")
	}
	log.Printf("🗑️ Group %s disbanded", groupID)
	return nil
}

// PickNewOwner selects the successor when the owner leaves: the first
// co-admin in membership order, else one of the remaining members chosen by
// pick, else nobody (sole member).
func PickNewOwner(members []models.GroupMember, leavingID string, pick func(n int) int) (string, bool) {
	for _, m := range members {
		if m.UserID != leavingID && m.Role == models.RoleCoAdmin {
			return m.UserID, true
		}
	}
	var others []models.GroupMember
	for _, m := range members {
		if m.UserID != leavingID {
			others = append(others, m)
		}
	}
	if len(others) == 0 {
		return "", false
	}
	return others[pick(len(others))].UserID, true
}

// LeaveGroup removes userID from the group. An owner leaving triggers the
// ownership-transfer sequence: promote successor to admin, move ownerId,
// then drop the leaver; a sole owner disbands the group instead.
func (gs *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) (*LeaveOutcome, error) {
	group, err := gs.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := RequireMember(group, userID); err != nil {
		return nil, err
	}

	if group.OwnerID != userID {
		if err := gs.RemoveMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
		updated, err := gs.GetGroupByID(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return &LeaveOutcome{GroupName: group.Name, Group: updated}, nil
	}

	newOwnerID, found := PickNewOwner(group.Members, userID, gs.pickIndex)
	if !found {
		if err := gs.DisbandGroup(ctx, groupID); err != nil {
			return nil, err
		}
		return &LeaveOutcome{Disbanded: true, GroupName: group.Name}, nil
	}

	// Ordered, retry-safe sequence: promote, transfer, then remove.
	if err := gs.UpdateMemberRole(ctx, groupID, newOwnerID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := gs.UpdateGroup(ctx, groupID, map[string]interface{}{"ownerId": newOwnerID}); err != nil {
		return nil, err
	}
	if err := gs.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	updated, err := gs.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	log.Printf("👑 Group %s ownership transferred from %s to %s", groupID, userID, newOwnerID)
	return &LeaveOutcome{OwnerChanged: true, NewOwnerID: newOwnerID, GroupName: group.Name, Group: updated}, nil
}
