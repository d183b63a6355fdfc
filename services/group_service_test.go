package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"

	"linkup_server/models"
)

func successionGroup() []models.GroupMember {
	return []models.GroupMember{
		{UserID: "owner", Role: models.RoleAdmin},
		{UserID: "m1", Role: models.RoleMember},
		{UserID: "c1", Role: models.RoleCoAdmin},
		{UserID: "c2", Role: models.RoleCoAdmin},
		{UserID: "m2", Role: models.RoleMember},
	}
}

func TestPickNewOwnerPrefersFirstCoAdmin(t *testing.T) {
	picked, ok := PickNewOwner(successionGroup(), "owner", func(n int) int {
		t.Fatal("picker must not be consulted when a co-admin exists")
		return 0
	})
	assert.True(t, ok)
	assert.Equal(t, "c1", picked)
}

func TestPickNewOwnerSkipsLeavingCoAdmin(t *testing.T) {
	members := []models.GroupMember{
		{UserID: "c1", Role: models.RoleCoAdmin},
		{UserID: "c2", Role: models.RoleCoAdmin},
		{UserID: "m1", Role: models.RoleMember},
	}
	picked, ok := PickNewOwner(members, "c1", nil)
	assert.True(t, ok)
	assert.Equal(t, "c2", picked)
}

func TestPickNewOwnerFallsBackToPicker(t *testing.T) {
	members := []models.GroupMember{
		{UserID: "owner", Role: models.RoleAdmin},
		{UserID: "m1", Role: models.RoleMember},
		{UserID: "m2", Role: models.RoleMember},
		{UserID: "m3", Role: models.RoleMember},
	}

	picked, ok := PickNewOwner(members, "owner", func(n int) int {
		assert.Equal(t, 3, n)
		return 1
	})
	assert.True(t, ok)
	assert.Equal(t, "m2", picked)

	picked, ok = PickNewOwner(members, "owner", func(n int) int { return 0 })
	assert.True(t, ok)
	assert.Equal(t, "m1", picked)
}

func TestPickNewOwnerSoleMember(t *testing.T) {
	members := []models.GroupMember{{UserID: "owner", Role: models.RoleAdmin}}
	_, ok := PickNewOwner(members, "owner", func(n int) int { return 0 })
	assert.False(t, ok)
}

// groupTableRecorder keeps one group in memory and records every mutation so
// multi-step flows can assert both the write sequence and the end state.
type groupTableRecorder struct {
	group   models.Group
	deleted bool
	updates []recordedUpdate
}

type recordedUpdate struct {
	expression string
	values     map[string]types.AttributeValue
	names      map[string]string
}

func (r *groupTableRecorder) PutItem(ctx context.Context, tableName string, item interface{}) error {
	if g, ok := item.(models.Group); ok {
		r.group = g
	}
	return nil
}

func (r *groupTableRecorder) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	if r.deleted {
		return nil, ErrItemNotFound
	}
	return attributevalue.MarshalMap(r.group)
}

func (r *groupTableRecorder) UpdateItem(ctx context.Context, tableName string, updateExpression string, key map[string]types.AttributeValue, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error) {
	r.updates = append(r.updates, recordedUpdate{
		expression: updateExpression,
		values:     expressionAttributeValues,
		names:      expressionAttributeNames,
	})

	var index int
	switch {
	case strings.HasSuffix(updateExpression, ".#role = :role"):
		fmt.Sscanf(updateExpression, "SET #members[%d]", &index)
		role := expressionAttributeValues[":role"].(*types.AttributeValueMemberS).Value
		r.group.Members[index].Role = role
	case strings.HasPrefix(updateExpression, "REMOVE #members["):
		fmt.Sscanf(updateExpression, "REMOVE #members[%d]", &index)
		r.group.Members = append(r.group.Members[:index], r.group.Members[index+1:]...)
	default:
		for name, field := range expressionAttributeNames {
			if field == "ownerId" {
				placeholder := ":v" + strings.TrimPrefix(name, "#f")
				r.group.OwnerID = expressionAttributeValues[placeholder].(*types.AttributeValueMemberS).Value
			}
		}
	}
	return attributevalue.MarshalMap(r.group)
}

func (r *groupTableRecorder) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	r.deleted = true
	return nil
}

func (r *groupTableRecorder) ScanItems(ctx context.Context, tableName string, filterExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, result interface{}) error {
	if out, ok := result.(*[]models.Group); ok && !r.deleted {
		*out = []models.Group{r.group}
	}
	return nil
}

func TestLeaveGroupOwnerTransfersToCoAdmin(t *testing.T) {
	store := &groupTableRecorder{group: models.Group{
		GroupID: "g1",
		Name:    "book club",
		OwnerID: "owner",
		Members: []models.GroupMember{
			{UserID: "owner", Role: models.RoleAdmin},
			{UserID: "m1", Role: models.RoleMember},
			{UserID: "c1", Role: models.RoleCoAdmin},
		},
	}}
	gs := &GroupService{Dynamo: store}

	out, err := gs.LeaveGroup(context.Background(), "g1", "owner")
	assert.NoError(t, err)
	assert.True(t, out.OwnerChanged)
	assert.Equal(t, "c1", out.NewOwnerID)

	// Promote, transfer ownerId, then drop the leaver, in that order.
	assert.Len(t, store.updates, 3)
	assert.Equal(t, "SET #members[2].#role = :role", store.updates[0].expression)
	assert.Equal(t, "ownerId", store.updates[1].names["#f0"])
	assert.Equal(t, "REMOVE #members[0]", store.updates[2].expression)

	assert.Equal(t, "c1", store.group.OwnerID)
	assert.Nil(t, store.group.Member("owner"))
	assert.Equal(t, models.RoleAdmin, store.group.Member("c1").Role)
	assert.NotNil(t, store.group.Member("m1"))
	assert.Equal(t, store.group.OwnerID, out.Group.OwnerID)
}

func TestLeaveGroupOwnerFallsBackToPickedMember(t *testing.T) {
	store := &groupTableRecorder{group: models.Group{
		GroupID: "g1",
		OwnerID: "owner",
		Members: []models.GroupMember{
			{UserID: "owner", Role: models.RoleAdmin},
			{UserID: "m1", Role: models.RoleMember},
			{UserID: "m2", Role: models.RoleMember},
		},
	}}
	gs := &GroupService{Dynamo: store, PickIndex: func(n int) int { return 1 }}

	out, err := gs.LeaveGroup(context.Background(), "g1", "owner")
	assert.NoError(t, err)
	assert.True(t, out.OwnerChanged)
	assert.Equal(t, "m2", out.NewOwnerID)
	assert.Equal(t, "m2", store.group.OwnerID)
	assert.Equal(t, models.RoleAdmin, store.group.Member("m2").Role)
}

func TestLeaveGroupSoleOwnerDisbands(t *testing.T) {
	store := &groupTableRecorder{group: models.Group{
		GroupID: "g1",
		Name:    "just me",
		OwnerID: "owner",
		Members: []models.GroupMember{{UserID: "owner", Role: models.RoleAdmin}},
	}}
	gs := &GroupService{Dynamo: store}

	out, err := gs.LeaveGroup(context.Background(), "g1", "owner")
	assert.NoError(t, err)
	assert.True(t, out.Disbanded)
	assert.Nil(t, out.Group)
	assert.True(t, store.deleted)
	assert.Empty(t, store.updates)
}

func TestLeaveGroupNonOwnerKeepsOwnership(t *testing.T) {
	store := &groupTableRecorder{group: models.Group{
		GroupID: "g1",
		OwnerID: "owner",
		Members: []models.GroupMember{
			{UserID: "owner", Role: models.RoleAdmin},
			{UserID: "m1", Role: models.RoleMember},
		},
	}}
	gs := &GroupService{Dynamo: store}

	out, err := gs.LeaveGroup(context.Background(), "g1", "m1")
	assert.NoError(t, err)
	assert.False(t, out.OwnerChanged)
	assert.False(t, out.Disbanded)
	assert.Equal(t, "owner", store.group.OwnerID)
	assert.Nil(t, store.group.Member("m1"))
	assert.Len(t, store.updates, 1)
	assert.Equal(t, "REMOVE #members[1]", store.updates[0].expression)
}
