package socket

import (
	"context"

	"linkup_server/apperr"
)

type sendFriendRequestPayload struct {
	SenderID      string `json:"senderId"`
	ReceiverEmail string `json:"receiverEmail"`
}

type friendRequestPayload struct {
	RequestID string `json:"requestId"`
}

type removeFriendPayload struct {
	FriendEmail string `json:"friendEmail"`
}

// handleSendFriendRequest creates a pending request and notifies the
// recipient's inbox.
func (h *Hub) handleSendFriendRequest(c clientConn, sess *Session, p sendFriendRequestPayload) {
	ctx := context.Background()

	if p.SenderID != "" && p.SenderID != sess.UserID {
		h.emitError(c, apperr.Authorizationf("sender identity does not match the session"))
		return
	}

	request, err := h.Friends.SendRequest(ctx, sess.Email, p.ReceiverEmail)
	if err != nil {
		h.emitError(c, err)
		return
	}

	receiver, err := h.Users.GetUserByEmail(ctx, p.ReceiverEmail)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(receiver.UserID), "receiveFriendRequest_"+receiver.UserID, request)
	c.Emit("friendRequestSent", request)
}

// handleAcceptFriendRequest accepts a pending request and tells both sides.
func (h *Hub) handleAcceptFriendRequest(c clientConn, sess *Session, p friendRequestPayload) {
	ctx := context.Background()

	request, err := h.Friends.AcceptRequest(ctx, p.RequestID, sess.Email)
	if err != nil {
		h.emitError(c, err)
		return
	}

	sender, err := h.Users.GetUserByEmail(ctx, request.FromEmail)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(sender.UserID), "friendRequestAccepted_"+sender.UserID, request)
	h.Broadcast.Publish(UserInbox(sess.UserID), "friendRequestAccepted_"+sess.UserID, request)
	c.Emit("friendRequestAccepted", request)
}

// handleDeclineFriendRequest declines a pending request; only the original
// sender is notified.
func (h *Hub) handleDeclineFriendRequest(c clientConn, sess *Session, p friendRequestPayload) {
	ctx := context.Background()

	request, err := h.Friends.DeclineRequest(ctx, p.RequestID, sess.Email)
	if err != nil {
		h.emitError(c, err)
		return
	}

	sender, err := h.Users.GetUserByEmail(ctx, request.FromEmail)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(sender.UserID), "friendRequestDeclined_"+sender.UserID, request)
	c.Emit("friendRequestDeclined", request)
}

// handleRemoveFriend severs the friendship and notifies the former friend.
func (h *Hub) handleRemoveFriend(c clientConn, sess *Session, p removeFriendPayload) {
	ctx := context.Background()

	if err := h.Friends.RemoveFriend(ctx, sess.Email, p.FriendEmail); err != nil {
		h.emitError(c, err)
		return
	}

	former, err := h.Users.GetUserByEmail(ctx, p.FriendEmail)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			c.Emit("friendRemoved", map[string]string{"friendEmail": p.FriendEmail})
			return
		}
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(former.UserID), "friendRemoved_"+former.UserID, map[string]string{
		"email": sess.Email,
	})
	c.Emit("friendRemoved", map[string]string{"friendEmail": p.FriendEmail})
}
