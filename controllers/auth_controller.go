package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"linkup_server/apperr"
	"linkup_server/services"
)

// AuthController handles registration, login and the email-token flows.
type AuthController struct {
	Users     *services.UserService
	Tokens    *services.TokenService
	Email     *services.EmailService
	ClientURL string
}

// NewAuthController initializes the auth controller
func NewAuthController(users *services.UserService, tokens *services.TokenService, email *services.EmailService, clientURL string) *AuthController {
	return &AuthController{Users: users, Tokens: tokens, Email: email, ClientURL: clientURL}
}

// HandleRegister - create an account and mail the verification link
func (c *AuthController) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := c.Users.CreateUser(r.Context(), request.Email, request.Password, request.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := c.Tokens.Sign(user.UserID, user.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = c.ClientURL
	}
	// The account exists either way; a failed email only costs the link.
	if err := c.Email.SendVerificationEmail(user.Email, token, origin); err != nil {
		log.Printf("⚠️ Failed to send verification email to %s: %v", user.Email, err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created. Check your email to verify your account.",
		"user":    user,
	})
}

// HandleVerifyEmail - GET ?token= from the emailed link
func (c *AuthController) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, `{"error": "token is required"}`, http.StatusBadRequest)
		return
	}

	claims, err := c.Tokens.Verify(token)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.Users.MarkVerified(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	log.Printf("✅ Email verified for user %s", claims.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully. You can now log in."})
}

// HandleLogin - exchange credentials for a bearer token
func (c *AuthController) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := c.Users.Authenticate(r.Context(), request.Email, request.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := c.Tokens.Sign(user.UserID, user.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// HandleForgotPassword - mail a reset link to a known account
func (c *AuthController) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := c.Users.GetUserByEmail(r.Context(), request.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := c.Tokens.Sign(user.UserID, user.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.Email.SendResetPasswordEmail(user.Email, token, c.ClientURL); err != nil {
		writeError(w, apperr.Dependency(err, "failed to send reset email"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent."})
}

// HandleResetPassword - set a new password using the emailed token
func (c *AuthController) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.Token == "" || request.NewPassword == "" {
		http.Error(w, `{"error": "Missing required fields: token, newPassword"}`, http.StatusBadRequest)
		return
	}

	claims, err := c.Tokens.Verify(request.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.Users.ResetPassword(r.Context(), claims.UserID, request.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully."})
}
