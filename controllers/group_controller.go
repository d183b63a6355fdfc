package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"linkup_server/apperr"
	"linkup_server/middleware"
	"linkup_server/models"
	"linkup_server/services"
	"linkup_server/socket"
)

// GroupController serves group lifecycle and membership over REST. Role
// checks live in the services guard; this layer resolves users and routes
// the resulting events.
type GroupController struct {
	Groups    *services.GroupService
	Users     *services.UserService
	Broadcast socket.Broadcaster
}

// NewGroupController initializes the group controller
func NewGroupController(groups *services.GroupService, users *services.UserService, broadcast socket.Broadcaster) *GroupController {
	return &GroupController{Groups: groups, Users: users, Broadcast: broadcast}
}

// HandleCreateGroup - POST /api/groups
func (c *GroupController) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name      string   `json:"name"`
		MemberIDs []string `json:"memberIds"`
		AvatarURL string   `json:"avatarUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	ownerID := middleware.UserID(r)
	owner, err := c.Users.GetUserByID(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	members := []models.GroupMember{{
		UserID:   owner.UserID,
		Username: owner.Username,
		Role:     models.RoleAdmin,
	}}
	for _, id := range request.MemberIDs {
		if id == ownerID {
			continue
		}
		user, err := c.Users.GetUserByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		members = append(members, models.GroupMember{
			UserID:   user.UserID,
			Username: user.Username,
			Role:     models.RoleMember,
		})
	}

	group, err := c.Groups.CreateGroup(r.Context(), request.Name, ownerID, members, request.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	for _, m := range group.Members {
		c.Broadcast.Publish(socket.UserInbox(m.UserID), "newGroup_"+m.UserID, group)
	}
	writeJSON(w, http.StatusCreated, group)
}

// HandleGetMyGroups - GET /api/groups/my-groups
func (c *GroupController) HandleGetMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.Groups.GetGroupsByUser(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleGetGroup - GET /api/groups/{groupId}, members only
func (c *GroupController) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := c.Groups.GetGroupByID(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := services.RequireMember(group, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// HandleAddMember - POST /api/groups/{groupId}/members
func (c *GroupController) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	group, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := services.CanAddMember(group, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}
	if group.Member(request.UserID) != nil {
		writeError(w, apperr.Conflictf("user is already a member of this group"))
		return
	}

	user, err := c.Users.GetUserByID(r.Context(), request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.Groups.AddMember(r.Context(), groupID, models.GroupMember{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     models.RoleMember,
	}); err != nil {
		writeError(w, err)
		return
	}

	updated, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.GroupRoom(groupID), "groupMemberUpdated_"+groupID, map[string]interface{}{
		"type":    "member_added",
		"groupId": groupID,
		"userId":  request.UserID,
		"group":   updated,
	})
	c.Broadcast.Publish(socket.UserInbox(request.UserID), "newGroup_"+request.UserID, updated)
	writeJSON(w, http.StatusOK, updated)
}

// HandleRemoveMember - DELETE /api/groups/{groupId}/members/{userId}
func (c *GroupController) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	groupID := vars["groupId"]
	targetID := vars["userId"]

	group, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := services.CanRemoveMember(group, middleware.UserID(r), targetID); err != nil {
		writeError(w, err)
		return
	}

	if err := c.Groups.RemoveMember(r.Context(), groupID, targetID); err != nil {
		writeError(w, err)
		return
	}

	updated, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.UserInbox(targetID), "removedFromGroup_"+targetID, map[string]string{
		"groupId":   groupID,
		"groupName": group.Name,
	})
	for _, m := range updated.Members {
		c.Broadcast.Publish(socket.UserInbox(m.UserID), "groupMemberUpdated_"+groupID, map[string]interface{}{
			"type":    "member_removed",
			"groupId": groupID,
			"userId":  targetID,
			"group":   updated,
		})
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleAssignCoAdmin - POST /api/groups/{groupId}/co-admin
func (c *GroupController) HandleAssignCoAdmin(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	group, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := services.CanAssignCoAdmin(group, middleware.UserID(r), request.UserID); err != nil {
		writeError(w, err)
		return
	}

	if err := c.Groups.UpdateMemberRole(r.Context(), groupID, request.UserID, models.RoleCoAdmin); err != nil {
		writeError(w, err)
		return
	}

	updated, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Broadcast.Publish(socket.GroupRoom(groupID), "groupMemberUpdated_"+groupID, map[string]interface{}{
		"type":    "role_updated",
		"groupId": groupID,
		"userId":  request.UserID,
		"group":   updated,
	})
	writeJSON(w, http.StatusOK, updated)
}

// HandleLeaveGroup - POST /api/groups/{groupId}/leave
func (c *GroupController) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	userID := middleware.UserID(r)

	outcome, err := c.Groups.LeaveGroup(r.Context(), groupID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case outcome.Disbanded:
		// nobody left to notify

	case outcome.OwnerChanged:
		c.Broadcast.Publish(socket.UserInbox(outcome.NewOwnerID), "groupOwnerChanged_"+outcome.NewOwnerID, map[string]string{
			"groupId":    groupID,
			"groupName":  outcome.GroupName,
			"newOwnerId": outcome.NewOwnerID,
		})
		for _, m := range outcome.Group.Members {
			c.Broadcast.Publish(socket.UserInbox(m.UserID), "groupMemberUpdated_"+groupID, map[string]interface{}{
				"type":       "owner_changed",
				"groupId":    groupID,
				"userId":     userID,
				"newOwnerId": outcome.NewOwnerID,
				"group":      outcome.Group,
			})
		}

	default:
		for _, m := range outcome.Group.Members {
			c.Broadcast.Publish(socket.UserInbox(m.UserID), "groupMemberUpdated_"+groupID, map[string]interface{}{
				"type":    "member_removed",
				"groupId": groupID,
				"userId":  userID,
				"group":   outcome.Group,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groupId":   groupID,
		"disbanded": outcome.Disbanded,
	})
}

// HandleDisbandGroup - DELETE /api/groups/{groupId}
func (c *GroupController) HandleDisbandGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	group, err := c.Groups.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := services.CanDisband(group, middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}

	if err := c.Groups.DisbandGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}

	for _, m := range group.Members {
		c.Broadcast.Publish(socket.UserInbox(m.UserID), "groupDisbanded_"+m.UserID, map[string]string{
			"groupId":   groupID,
			"groupName": group.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Group disbanded"})
}
