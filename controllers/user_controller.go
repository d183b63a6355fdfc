package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"linkup_server/middleware"
	"linkup_server/services"
)

// UserController serves profile lookups and account updates.
type UserController struct {
	Users *services.UserService
	Blobs services.BlobStore
}

// NewUserController initializes the user controller
func NewUserController(users *services.UserService, blobs services.BlobStore) *UserController {
	return &UserController{Users: users, Blobs: blobs}
}

// HandleGetProfile - the authenticated user's own profile
func (c *UserController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := c.Users.GetUserByID(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetAllUsers - list every registered user
func (c *UserController) HandleGetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleSearchByEmail - look a user up by exact email
func (c *UserController) HandleSearchByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, `{"error": "email is required"}`, http.StatusBadRequest)
		return
	}

	user, err := c.Users.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetUserByID - public profile of another user
func (c *UserController) HandleGetUserByID(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	user, err := c.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile - rename the authenticated user
func (c *UserController) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.Username == "" {
		http.Error(w, `{"error": "username is required"}`, http.StatusBadRequest)
		return
	}

	user, err := c.Users.UpdateUser(r.Context(), middleware.UserID(r), map[string]interface{}{
		"username": request.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdatePassword - change password with the current one as proof
func (c *UserController) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.CurrentPassword == "" || request.NewPassword == "" {
		http.Error(w, `{"error": "Missing required fields: currentPassword, newPassword"}`, http.StatusBadRequest)
		return
	}

	if err := c.Users.UpdatePassword(r.Context(), middleware.UserID(r), request.CurrentPassword, request.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully."})
}

// HandleUpdateAvatar - multipart avatar upload, stored in S3
func (c *UserController) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, `{"error": "Invalid multipart form"}`, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, `{"error": "avatar file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := c.Blobs.UploadFile(r.Context(), file, header, "avatars")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := c.Users.UpdateUser(r.Context(), middleware.UserID(r), map[string]interface{}{
		"avatarUrl": url,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("🖼️ Avatar updated for user %s", user.UserID)
	writeJSON(w, http.StatusOK, user)
}
