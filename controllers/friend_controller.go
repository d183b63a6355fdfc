package controllers

import (
	"encoding/json"
	"net/http"

	"linkup_server/apperr"
	"linkup_server/middleware"
	"linkup_server/services"
	"linkup_server/socket"
)

// FriendController serves the friend lifecycle over REST.
type FriendController struct {
	Friends   *services.FriendService
	Users     *services.UserService
	Broadcast socket.Broadcaster
}

// NewFriendController initializes the friend controller
func NewFriendController(friends *services.FriendService, users *services.UserService, broadcast socket.Broadcaster) *FriendController {
	return &FriendController{Friends: friends, Users: users, Broadcast: broadcast}
}

// HandleSendRequest - POST /api/friends/request
func (c *FriendController) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ReceiverEmail string `json:"receiverEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	sent, err := c.Friends.SendRequest(r.Context(), middleware.Email(r), request.ReceiverEmail)
	if err != nil {
		writeError(w, err)
		return
	}

	if receiver, err := c.Users.GetUserByEmail(r.Context(), request.ReceiverEmail); err == nil {
		c.Broadcast.Publish(socket.UserInbox(receiver.UserID), "receiveFriendRequest_"+receiver.UserID, sent)
	}
	writeJSON(w, http.StatusCreated, sent)
}

// HandleGetReceivedRequests - GET /api/friends/requests
func (c *FriendController) HandleGetReceivedRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := c.Friends.GetPendingRequests(r.Context(), middleware.Email(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HandleAcceptRequest - POST /api/friends/accept
func (c *FriendController) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	accepted, err := c.Friends.AcceptRequest(r.Context(), request.RequestID, middleware.Email(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if sender, err := c.Users.GetUserByEmail(r.Context(), accepted.FromEmail); err == nil {
		c.Broadcast.Publish(socket.UserInbox(sender.UserID), "friendRequestAccepted_"+sender.UserID, accepted)
	}
	writeJSON(w, http.StatusOK, accepted)
}

// HandleDeclineRequest - POST /api/friends/decline
func (c *FriendController) HandleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	declined, err := c.Friends.DeclineRequest(r.Context(), request.RequestID, middleware.Email(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if sender, err := c.Users.GetUserByEmail(r.Context(), declined.FromEmail); err == nil {
		c.Broadcast.Publish(socket.UserInbox(sender.UserID), "friendRequestDeclined_"+sender.UserID, declined)
	}
	writeJSON(w, http.StatusOK, declined)
}

// HandleRemoveFriend - DELETE /api/friends
func (c *FriendController) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FriendEmail string `json:"friendEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.FriendEmail == "" {
		http.Error(w, `{"error": "friendEmail is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Friends.RemoveFriend(r.Context(), middleware.Email(r), request.FriendEmail); err != nil {
		writeError(w, err)
		return
	}

	former, err := c.Users.GetUserByEmail(r.Context(), request.FriendEmail)
	if err == nil {
		c.Broadcast.Publish(socket.UserInbox(former.UserID), "friendRemoved_"+former.UserID, map[string]string{
			"email": middleware.Email(r),
		})
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Friend removed"})
}

// HandleListFriends - GET /api/friends
func (c *FriendController) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := c.Friends.GetFriends(r.Context(), middleware.Email(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}
