package services

import (
	"time"

	"linkup_server/apperr"
	"linkup_server/models"
)

// RecallWindow bounds how long after sending a message may still be recalled.
const RecallWindow = 5 * time.Minute

// IdentityMatches rejects events whose asserted sender differs from the
// session's bound identity. Checked before any store access.
func IdentityMatches(sessionUserID, assertedUserID string) error {
	if assertedUserID == "" {
		return apperr.Validationf("missing sender identity")
	}
	if sessionUserID != assertedUserID {
		return apperr.Authorizationf("sender does not match the authenticated user")
	}
	return nil
}

// RequireMember asserts userID belongs to the group and returns the entry.
func RequireMember(group *models.Group, userID string) (*models.GroupMember, error) {
	member := group.Member(userID)
	if member == nil {
		return nil, apperr.Authorizationf("you are not a member of this group")
	}
	return member, nil
}

// CanAddMember: admins and co-admins may add members.
func CanAddMember(group *models.Group, actorID string) error {
	actor := group.Member(actorID)
	if actor == nil || (actor.Role != models.RoleAdmin && actor.Role != models.RoleCoAdmin) {
		return apperr.Authorizationf("only admins and co-admins can add members")
	}
	return nil
}

// CanRemoveMember: admins, co-admins and the owner may remove, never the
// owner as target, and never oneself (leaving has its own path).
func CanRemoveMember(group *models.Group, actorID, targetID string) error {
	if actorID == targetID {
		return apperr.Conflictf("cannot remove yourself; leave the group instead")
	}
	actor := group.Member(actorID)
	isPrivileged := actor != nil && (actor.Role == models.RoleAdmin || actor.Role == models.RoleCoAdmin)
	if !isPrivileged && group.OwnerID != actorID {
		return apperr.Authorizationf("only admins, co-admins or the owner can remove members")
	}
	if targetID == group.OwnerID {
		return apperr.Authorizationf("the group owner cannot be removed")
	}
	return nil
}

// CanAssignCoAdmin: owner only, target must be a member and not already an
// admin.
func CanAssignCoAdmin(group *models.Group, actorID, targetID string) error {
	if group.OwnerID != actorID {
		return apperr.Authorizationf("only the owner can assign co-admins")
	}
	target := group.Member(targetID)
	if target == nil {
		return apperr.NotFoundf("target user is not a member of this group")
	}
	if target.Role == models.RoleAdmin {
		return apperr.Conflictf("target is already an admin")
	}
	return nil
}

// CanDisband: owner only.
func CanDisband(group *models.Group, actorID string) error {
	if group.OwnerID != actorID {
		return apperr.Authorizationf("only the owner can disband the group")
	}
	return nil
}

// CanRecall ensures the actor is the original sender, the message is not
// already recalled and the recall window is still open.
func CanRecall(senderID, actorID string, isRecalled bool, sentAt string, now time.Time) error {
	if senderID != actorID {
		return apperr.Authorizationf("only the sender can recall this message")
	}
	if isRecalled {
		return apperr.Conflictf("message already recalled")
	}
	sent, err := time.Parse(time.RFC3339Nano, sentAt)
	if err != nil {
		if sent, err = time.Parse(time.RFC3339, sentAt); err != nil {
			return apperr.Validationf("invalid message timestamp")
		}
	}
	if now.Sub(sent) > RecallWindow {
		return apperr.Conflictf("messages can only be recalled within 5 minutes of sending")
	}
	return nil
}

// CanForwardToUser blocks forwarding to oneself. Receiver existence is
// checked against the user store by the caller.
func CanForwardToUser(senderID, targetID string) error {
	if senderID == targetID {
		return apperr.Conflictf("cannot forward a message to yourself")
	}
	return nil
}
