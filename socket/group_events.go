package socket

import (
	"context"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/services"
)

type createGroupPayload struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
	AvatarURL string   `json:"avatarUrl"`
}

type groupRoomPayload struct {
	GroupID string `json:"groupId"`
}

type groupMemberPayload struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type sendGroupMessagePayload struct {
	GroupID  string `json:"groupId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
	FileURL  string `json:"fileUrl"`
	Type     string `json:"type"`
}

type groupMessagePayload struct {
	MessageID string `json:"messageId"`
}

type forwardGroupMessagePayload struct {
	MessageID     string `json:"messageId"`
	TargetGroupID string `json:"targetGroupId"`
}

// memberUpdate is the shared shape for membership-change notifications.
// Type is one of member_added, member_removed, owner_changed, role_updated.
type memberUpdate struct {
	Type       string        `json:"type"`
	GroupID    string        `json:"groupId"`
	UserID     string        `json:"userId,omitempty"`
	NewOwnerID string        `json:"newOwnerId,omitempty"`
	Group      *models.Group `json:"group,omitempty"`
}

// handleCreateGroup resolves the member list, stores the group and tells
// every member about it.
func (h *Hub) handleCreateGroup(c clientConn, sess *Session, p createGroupPayload) {
	ctx := context.Background()

	owner, err := h.Users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	members := []models.GroupMember{{
		UserID:   owner.UserID,
		Username: owner.Username,
		Role:     models.RoleAdmin,
	}}
	for _, id := range p.MemberIDs {
		if id == sess.UserID {
			continue
		}
		user, err := h.Users.GetUserByID(ctx, id)
		if err != nil {
			h.emitError(c, err)
			return
		}
		members = append(members, models.GroupMember{
			UserID:   user.UserID,
			Username: user.Username,
			Role:     models.RoleMember,
		})
	}

	group, err := h.Groups.CreateGroup(ctx, p.Name, sess.UserID, members, p.AvatarURL)
	if err != nil {
		h.emitError(c, err)
		return
	}

	for _, m := range group.Members {
		h.Broadcast.Publish(UserInbox(m.UserID), "newGroup_"+m.UserID, group)
	}
	c.Join(string(GroupRoom(group.GroupID)))
	c.Emit("groupCreated", group)
}

// handleJoinGroupRoom subscribes the connection to the group's live room.
// Membership is checked; the event changes no stored state.
func (h *Hub) handleJoinGroupRoom(c clientConn, sess *Session, p groupRoomPayload) {
	group, err := h.Groups.GetGroupByID(context.Background(), p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if _, err := services.RequireMember(group, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}
	c.Join(string(GroupRoom(p.GroupID)))
}

func (h *Hub) handleLeaveGroupRoom(c clientConn, _ *Session, p groupRoomPayload) {
	c.Leave(string(GroupRoom(p.GroupID)))
}

// handleAddMember adds a user to the group. Admins and co-admins only.
func (h *Hub) handleAddMember(c clientConn, sess *Session, p groupMemberPayload) {
	ctx := context.Background()

	group, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if err := services.CanAddMember(group, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}
	if group.Member(p.UserID) != nil {
		h.emitError(c, apperr.Conflictf("user is already a member of this group"))
		return
	}

	user, err := h.Users.GetUserByID(ctx, p.UserID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	if err := h.Groups.AddMember(ctx, p.GroupID, models.GroupMember{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     models.RoleMember,
	}); err != nil {
		h.emitError(c, err)
		return
	}

	updated, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(GroupRoom(p.GroupID), "groupMemberUpdated_"+p.GroupID, memberUpdate{
		Type:    "member_added",
		GroupID: p.GroupID,
		UserID:  p.UserID,
		Group:   updated,
	})
	h.Broadcast.Publish(UserInbox(p.UserID), "newGroup_"+p.UserID, updated)
	c.Emit("group:joinSuccess", updated)
}

// handleRemoveMember evicts a member. Self-removal must go through leave.
func (h *Hub) handleRemoveMember(c clientConn, sess *Session, p groupMemberPayload) {
	ctx := context.Background()

	group, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if err := services.CanRemoveMember(group, sess.UserID, p.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	if err := h.Groups.RemoveMember(ctx, p.GroupID, p.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	updated, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(p.UserID), "removedFromGroup_"+p.UserID, map[string]string{
		"groupId":   p.GroupID,
		"groupName": group.Name,
	})
	update := memberUpdate{
		Type:    "member_removed",
		GroupID: p.GroupID,
		UserID:  p.UserID,
		Group:   updated,
	}
	for _, m := range updated.Members {
		h.Broadcast.Publish(UserInbox(m.UserID), "groupMemberUpdated_"+p.GroupID, update)
	}
	c.Emit("memberRemoved", update)
}

// handleAssignCoAdmin promotes a member to co-admin. Owner only.
func (h *Hub) handleAssignCoAdmin(c clientConn, sess *Session, p groupMemberPayload) {
	ctx := context.Background()

	group, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if err := services.CanAssignCoAdmin(group, sess.UserID, p.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	if err := h.Groups.UpdateMemberRole(ctx, p.GroupID, p.UserID, models.RoleCoAdmin); err != nil {
		h.emitError(c, err)
		return
	}

	updated, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(GroupRoom(p.GroupID), "groupMemberUpdated_"+p.GroupID, memberUpdate{
		Type:    "role_updated",
		GroupID: p.GroupID,
		UserID:  p.UserID,
		Group:   updated,
	})
	c.Emit("coAdminAssigned", updated)
}

// handleLeaveGroup removes the caller from the group and fans out whatever
// the leave cascaded into: a plain membership update, an ownership
// transfer, or a disband when the owner was the last member.
func (h *Hub) handleLeaveGroup(c clientConn, sess *Session, p groupMemberPayload) {
	ctx := context.Background()

	if p.UserID != "" {
		if err := services.IdentityMatches(sess.UserID, p.UserID); err != nil {
			h.emitError(c, err)
			return
		}
	}

	outcome, err := h.Groups.LeaveGroup(ctx, p.GroupID, sess.UserID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	c.Leave(string(GroupRoom(p.GroupID)))

	switch {
	case outcome.Disbanded:
		c.Emit("group:leaveSuccess", map[string]interface{}{
			"groupId":   p.GroupID,
			"disbanded": true,
		})
		return

	case outcome.OwnerChanged:
		h.Broadcast.Publish(UserInbox(outcome.NewOwnerID), "groupOwnerChanged_"+outcome.NewOwnerID, map[string]string{
			"groupId":    p.GroupID,
			"groupName":  outcome.GroupName,
			"newOwnerId": outcome.NewOwnerID,
		})
		update := memberUpdate{
			Type:       "owner_changed",
			GroupID:    p.GroupID,
			UserID:     sess.UserID,
			NewOwnerID: outcome.NewOwnerID,
			Group:      outcome.Group,
		}
		for _, m := range outcome.Group.Members {
			h.Broadcast.Publish(UserInbox(m.UserID), "groupMemberUpdated_"+p.GroupID, update)
		}

	default:
		update := memberUpdate{
			Type:    "member_removed",
			GroupID: p.GroupID,
			UserID:  sess.UserID,
			Group:   outcome.Group,
		}
		for _, m := range outcome.Group.Members {
			h.Broadcast.Publish(UserInbox(m.UserID), "groupMemberUpdated_"+p.GroupID, update)
		}
	}

	c.Emit("group:leaveSuccess", map[string]interface{}{
		"groupId":   p.GroupID,
		"disbanded": false,
	})
}

// handleDisbandGroup deletes the group and notifies every member. Owner
// only.
func (h *Hub) handleDisbandGroup(c clientConn, sess *Session, p groupRoomPayload) {
	ctx := context.Background()

	group, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if err := services.CanDisband(group, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	if err := h.Groups.DisbandGroup(ctx, p.GroupID); err != nil {
		h.emitError(c, err)
		return
	}

	for _, m := range group.Members {
		h.Broadcast.Publish(UserInbox(m.UserID), "groupDisbanded_"+m.UserID, map[string]string{
			"groupId":   p.GroupID,
			"groupName": group.Name,
		})
	}
	c.Leave(string(GroupRoom(p.GroupID)))
	c.Emit("group:disbandSuccess", map[string]string{"groupId": p.GroupID})
}

// handleSendGroupMessage stores a group message and fans it out to the
// group's room.
func (h *Hub) handleSendGroupMessage(c clientConn, sess *Session, p sendGroupMessagePayload) {
	ctx := context.Background()

	if err := services.IdentityMatches(sess.UserID, p.SenderID); err != nil {
		h.emitError(c, err)
		return
	}

	group, err := h.Groups.GetGroupByID(ctx, p.GroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if _, err := services.RequireMember(group, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	msg, err := h.GroupChats.CreateGroupMessage(ctx, models.GroupMessage{
		GroupID:  p.GroupID,
		SenderID: p.SenderID,
		Content:  p.Content,
		FileURL:  p.FileURL,
		Type:     p.Type,
	})
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(GroupRoom(p.GroupID), "receiveGroupMessage", msg)
}

// handleRecallGroupMessage blanks a group message for the whole room.
func (h *Hub) handleRecallGroupMessage(c clientConn, sess *Session, p groupMessagePayload) {
	msg, err := h.GroupChats.RecallGroupMessage(context.Background(), p.MessageID, sess.UserID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	h.Broadcast.Publish(GroupRoom(msg.GroupID), "groupMessageRecalled", msg)
}

// handleDeleteGroupMessage hard-deletes the sender's own group message.
func (h *Hub) handleDeleteGroupMessage(c clientConn, sess *Session, p groupMessagePayload) {
	ctx := context.Background()

	msg, err := h.GroupChats.GetGroupMessageByID(ctx, p.MessageID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if err := h.GroupChats.DeleteGroupMessage(ctx, p.MessageID, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}
	h.Broadcast.Publish(GroupRoom(msg.GroupID), "groupMessageDeleted", map[string]string{
		"messageId": p.MessageID,
		"groupId":   msg.GroupID,
	})
}

// handleForwardGroupMessage copies an existing group message into another
// group the caller belongs to.
func (h *Hub) handleForwardGroupMessage(c clientConn, sess *Session, p forwardGroupMessagePayload) {
	ctx := context.Background()

	original, err := h.GroupChats.GetGroupMessageByID(ctx, p.MessageID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if original.IsRecalled {
		h.emitError(c, apperr.Conflictf("cannot forward a recalled message"))
		return
	}

	target, err := h.Groups.GetGroupByID(ctx, p.TargetGroupID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	if _, err := services.RequireMember(target, sess.UserID); err != nil {
		h.emitError(c, err)
		return
	}

	originalSender := original.OriginalSenderID
	if originalSender == "" {
		originalSender = original.SenderID
	}
	msg, err := h.GroupChats.CreateGroupMessage(ctx, models.GroupMessage{
		GroupID:          p.TargetGroupID,
		SenderID:         sess.UserID,
		Content:          original.Content,
		FileURL:          original.FileURL,
		Type:             original.Type,
		IsForwarded:      true,
		OriginalSenderID: originalSender,
	})
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(GroupRoom(p.TargetGroupID), "receiveGroupMessage", msg)
	c.Emit("forwardMessageSuccess", msg)
}
