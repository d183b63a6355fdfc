package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"linkup_server/middleware"
	"linkup_server/models"
	"linkup_server/services"
	"linkup_server/socket"
)

// ChatController serves the direct-message REST surface. Mutations also
// fan out over the socket layer so connected clients stay in sync with
// REST-originated changes.
type ChatController struct {
	Chats     *services.ChatService
	Users     *services.UserService
	Blobs     services.BlobStore
	Broadcast socket.Broadcaster
}

// NewChatController initializes the chat controller
func NewChatController(chats *services.ChatService, users *services.UserService, blobs services.BlobStore, broadcast socket.Broadcaster) *ChatController {
	return &ChatController{Chats: chats, Users: users, Blobs: blobs, Broadcast: broadcast}
}

// HandleListConversations - GET /api/chat/{userId}
func (c *ChatController) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := services.IdentityMatches(middleware.UserID(r), userID); err != nil {
		writeError(w, err)
		return
	}

	conversations, err := c.Chats.ListConversationsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// HandleGetMessages - GET /api/chat/messages/{userId}, the conversation
// between the caller and the path user
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	otherID := mux.Vars(r)["userId"]
	conversationID := models.ConversationID(middleware.UserID(r), otherID)

	messages, err := c.Chats.GetMessagesByConversation(r.Context(), conversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleSendMessage - POST /api/chat, JSON or multipart with a file part
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	senderID := middleware.UserID(r)
	msg := models.Message{SenderID: senderID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(25 << 20); err != nil {
			http.Error(w, `{"error": "Invalid multipart form"}`, http.StatusBadRequest)
			return
		}
		msg.ReceiverID = r.FormValue("receiverId")
		msg.Content = r.FormValue("content")
		msg.Type = r.FormValue("type")

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			url, err := c.Blobs.UploadFile(r.Context(), file, header, "chat")
			if err != nil {
				writeError(w, err)
				return
			}
			msg.FileURL = url
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
			return
		}
		msg.SenderID = senderID
	}

	if _, err := c.Users.GetUserByID(r.Context(), msg.ReceiverID); err != nil {
		writeError(w, err)
		return
	}

	stored, err := c.Chats.CreateMessage(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.UserInbox(stored.ReceiverID), "receiveMessage_"+stored.ReceiverID, stored)
	c.Broadcast.Publish(socket.UserInbox(stored.SenderID), "receiveMessage_"+stored.SenderID, stored)

	writeJSON(w, http.StatusCreated, stored)
}

// HandleMarkMessagesAsRead - POST /api/chat/mark-read
func (c *ChatController) HandleMarkMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ConversationID == "" {
		http.Error(w, `{"error": "conversationId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Chats.MarkMessagesAsRead(r.Context(), request.ConversationID, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Messages marked as read"})
}

// HandleRecallMessage - POST /api/chat/recall
func (c *ChatController) HandleRecallMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConversationID string `json:"conversationId"`
		Timestamp      string `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ConversationID == "" || request.Timestamp == "" {
		http.Error(w, `{"error": "Missing required fields: conversationId, timestamp"}`, http.StatusBadRequest)
		return
	}

	msg, err := c.Chats.RecallMessage(r.Context(), request.ConversationID, request.Timestamp, middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.UserInbox(msg.ReceiverID), "messageRecalled_"+msg.ReceiverID, msg)
	c.Broadcast.Publish(socket.UserInbox(msg.SenderID), "messageRecalled_"+msg.SenderID, msg)

	writeJSON(w, http.StatusOK, msg)
}

// HandleDeleteMessage - DELETE /api/chat/delete
func (c *ChatController) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConversationID string `json:"conversationId"`
		Timestamp      string `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.Chats.DeleteMessage(r.Context(), request.ConversationID, request.Timestamp, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}

	log.Printf("🗑️ Message at %s in %s deleted", request.Timestamp, request.ConversationID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Message deleted"})
}

// HandleForwardMessage - POST /api/chat/forward
func (c *ChatController) HandleForwardMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConversationID string `json:"conversationId"`
		Timestamp      string `json:"timestamp"`
		NewReceiverID  string `json:"newReceiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if _, err := c.Users.GetUserByID(r.Context(), request.NewReceiverID); err != nil {
		writeError(w, err)
		return
	}

	msg, err := c.Chats.ForwardMessage(r.Context(), request.ConversationID, request.Timestamp, middleware.UserID(r), request.NewReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.UserInbox(msg.ReceiverID), "receiveMessage_"+msg.ReceiverID, msg)
	c.Broadcast.Publish(socket.UserInbox(msg.SenderID), "receiveMessage_"+msg.SenderID, msg)

	writeJSON(w, http.StatusCreated, msg)
}
