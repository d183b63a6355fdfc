package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"linkup_server/middleware"
	"linkup_server/models"
	"linkup_server/services"
	"linkup_server/socket"
)

// GroupChatController serves group messaging over REST, mirroring the
// socket events for clients that upload files or backfill history.
type GroupChatController struct {
	GroupChats *services.GroupChatService
	Groups     *services.GroupService
	Blobs      services.BlobStore
	Broadcast  socket.Broadcaster
}

// NewGroupChatController initializes the group chat controller
func NewGroupChatController(groupChats *services.GroupChatService, groups *services.GroupService, blobs services.BlobStore, broadcast socket.Broadcaster) *GroupChatController {
	return &GroupChatController{GroupChats: groupChats, Groups: groups, Blobs: blobs, Broadcast: broadcast}
}

func (c *GroupChatController) requireMembership(r *http.Request, groupID string) error {
	group, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		return err
	}
	_, err = services.RequireMember(group, middleware.UserID(r))
	return err
}

// HandleSendGroupMessage - POST /api/group-chat, JSON or multipart
func (c *GroupChatController) HandleSendGroupMessage(w http.ResponseWriter, r *http.Request) {
	senderID := middleware.UserID(r)
	msg := models.GroupMessage{SenderID: senderID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(25 << 20); err != nil {
			http.Error(w, `{"error": "Invalid multipart form"}`, http.StatusBadRequest)
			return
		}
		msg.GroupID = r.FormValue("groupId")
		msg.Content = r.FormValue("content")
		msg.Type = r.FormValue("type")

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			url, err := c.Blobs.UploadFile(r.Context(), file, header, "group-chat")
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

	if err := c.requireMembership(r, msg.GroupID); err != nil {
		writeError(w, err)
		return
	}

	stored, err := c.GroupChats.CreateGroupMessage(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.GroupRoom(stored.GroupID), "receiveGroupMessage", stored)
	writeJSON(w, http.StatusCreated, stored)
}

// HandleGetGroupMessages - GET /api/group-chat/{groupId}, members only
func (c *GroupChatController) HandleGetGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	if err := c.requireMembership(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	messages, err := c.GroupChats.GetMessagesByGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleRecallGroupMessage - POST /api/group-chat/recall
func (c *GroupChatController) HandleRecallGroupMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.MessageID == "" {
		http.Error(w, `{"error": "messageId is required"}`, http.StatusBadRequest)
		return
	}

	msg, err := c.GroupChats.RecallGroupMessage(r.Context(), request.MessageID, middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.GroupRoom(msg.GroupID), "groupMessageRecalled", msg)
	writeJSON(w, http.StatusOK, msg)
}

// HandleDeleteGroupMessage - DELETE /api/group-chat
func (c *GroupChatController) HandleDeleteGroupMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	msg, err := c.GroupChats.GetGroupMessageByID(r.Context(), request.MessageID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.GroupChats.DeleteGroupMessage(r.Context(), request.MessageID, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.GroupRoom(msg.GroupID), "groupMessageDeleted", map[string]string{
		"messageId": request.MessageID,
		"groupId":   msg.GroupID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Message deleted"})
}
