package socket

import (
	"context"

	"linkup_server/models"
	"linkup_server/services"
)

type sendMessagePayload struct {
	MessageID  string `json:"messageId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	FileURL    string `json:"fileUrl"`
	Type       string `json:"type"`
}

type recallMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
	SenderID       string `json:"senderId"`
}

type forwardMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
	NewReceiverID  string `json:"newReceiverId"`
}

// handleSendMessage stores a direct message and fans it out to both
// parties' inbox rooms. The sender gets a self-echo for multi-device
// consistency.
func (h *Hub) handleSendMessage(c clientConn, sess *Session, p sendMessagePayload) {
	ctx := context.Background()

	if err := services.IdentityMatches(sess.UserID, p.SenderID); err != nil {
		h.emitError(c, err)
		return
	}
	if _, err := h.Users.GetUserByID(ctx, p.ReceiverID); err != nil {
		h.emitError(c, err)
		return
	}

	msg, err := h.Chats.CreateMessage(ctx, models.Message{
		MessageID:  p.MessageID,
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		FileURL:    p.FileURL,
		Type:       p.Type,
	})
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(msg.ReceiverID), "receiveMessage_"+msg.ReceiverID, msg)
	h.Broadcast.Publish(UserInbox(msg.SenderID), "receiveMessage_"+msg.SenderID, msg)
}

// handleRecallMessage blanks a message for both sides and notifies their
// inbox rooms.
func (h *Hub) handleRecallMessage(c clientConn, sess *Session, p recallMessagePayload) {
	ctx := context.Background()

	if p.SenderID != "" {
		if err := services.IdentityMatches(sess.UserID, p.SenderID); err != nil {
			h.emitError(c, err)
			return
		}
	}

	msg, err := h.Chats.RecallMessage(ctx, p.ConversationID, p.Timestamp, sess.UserID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(msg.ReceiverID), "messageRecalled_"+msg.ReceiverID, msg)
	h.Broadcast.Publish(UserInbox(msg.SenderID), "messageRecalled_"+msg.SenderID, msg)
}

// handleForwardMessage copies an existing message into the conversation
// with a new receiver and routes it like a fresh send.
func (h *Hub) handleForwardMessage(c clientConn, sess *Session, p forwardMessagePayload) {
	ctx := context.Background()

	if _, err := h.Users.GetUserByID(ctx, p.NewReceiverID); err != nil {
		h.emitError(c, err)
		return
	}

	msg, err := h.Chats.ForwardMessage(ctx, p.ConversationID, p.Timestamp, sess.UserID, p.NewReceiverID)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.Broadcast.Publish(UserInbox(msg.ReceiverID), "receiveMessage_"+msg.ReceiverID, msg)
	h.Broadcast.Publish(UserInbox(msg.SenderID), "receiveMessage_"+msg.SenderID, msg)
	c.Emit("forwardMessageSuccess", msg)
}
