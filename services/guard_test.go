package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup_server/apperr"
	"linkup_server/models"
)

func testGroup() *models.Group {
	return &models.Group{
		GroupID: "g1",
		Name:    "test group",
		OwnerID: "o",
		Members: []models.GroupMember{
			{UserID: "o", Role: models.RoleAdmin},
			{UserID: "c", Role: models.RoleCoAdmin},
			{UserID: "m", Role: models.RoleMember},
		},
	}
}

func TestIdentityMatches(t *testing.T) {
	assert.NoError(t, IdentityMatches("u1", "u1"))
	assert.True(t, apperr.IsKind(IdentityMatches("u1", "u2"), apperr.KindAuthorization))
	assert.True(t, apperr.IsKind(IdentityMatches("u1", ""), apperr.KindValidation))
}

func TestRequireMember(t *testing.T) {
	g := testGroup()

	member, err := RequireMember(g, "m")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)

	_, err = RequireMember(g, "stranger")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestCanAddMember(t *testing.T) {
	g := testGroup()

	assert.NoError(t, CanAddMember(g, "o"))
	assert.NoError(t, CanAddMember(g, "c"))
	assert.Error(t, CanAddMember(g, "m"))
	assert.Error(t, CanAddMember(g, "stranger"))
}

func TestCanRemoveMember(t *testing.T) {
	g := testGroup()

	assert.NoError(t, CanRemoveMember(g, "o", "m"))
	assert.NoError(t, CanRemoveMember(g, "c", "m"))

	// Plain members cannot remove anyone.
	assert.True(t, apperr.IsKind(CanRemoveMember(g, "m", "c"), apperr.KindAuthorization))

	// The owner can never be the target.
	assert.True(t, apperr.IsKind(CanRemoveMember(g, "c", "o"), apperr.KindAuthorization))

	// Self-removal must go through leave.
	err := CanRemoveMember(g, "m", "m")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCanAssignCoAdmin(t *testing.T) {
	g := testGroup()

	assert.NoError(t, CanAssignCoAdmin(g, "o", "m"))

	// Only the owner assigns roles.
	assert.True(t, apperr.IsKind(CanAssignCoAdmin(g, "c", "m"), apperr.KindAuthorization))

	// Target must be a member.
	assert.True(t, apperr.IsKind(CanAssignCoAdmin(g, "o", "stranger"), apperr.KindNotFound))

	// Admins cannot be demoted into co-admin.
	assert.True(t, apperr.IsKind(CanAssignCoAdmin(g, "o", "o"), apperr.KindConflict))
}

func TestCanDisband(t *testing.T) {
	g := testGroup()
	assert.NoError(t, CanDisband(g, "o"))
	assert.True(t, apperr.IsKind(CanDisband(g, "c"), apperr.KindAuthorization))
}

func TestCanRecall(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Minute).Format(time.RFC3339Nano)
	stale := now.Add(-10 * time.Minute).Format(time.RFC3339Nano)

	assert.NoError(t, CanRecall("u1", "u1", false, fresh, now))

	// Recall by anyone but the sender always fails with an authorization
	// error.
	assert.True(t, apperr.IsKind(CanRecall("u1", "u2", false, fresh, now), apperr.KindAuthorization))

	// A second recall is a conflict, not a silent no-op.
	assert.True(t, apperr.IsKind(CanRecall("u1", "u1", true, fresh, now), apperr.KindConflict))

	// Window expiry is a domain error.
	assert.True(t, apperr.IsKind(CanRecall("u1", "u1", false, stale, now), apperr.KindConflict))

	// Second-precision RFC3339 timestamps are accepted too.
	assert.NoError(t, CanRecall("u1", "u1", false, now.Add(-time.Minute).Format(time.RFC3339), now))

	assert.True(t, apperr.IsKind(CanRecall("u1", "u1", false, "yesterday", now), apperr.KindValidation))
}

func TestCanForwardToUser(t *testing.T) {
	assert.NoError(t, CanForwardToUser("u1", "u2"))
	assert.True(t, apperr.IsKind(CanForwardToUser("u1", "u1"), apperr.KindConflict))
}
