package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up the account routes under /api/auth. These are
// the only API routes reachable without a bearer token.
func RegisterAuthRoutes(r *mux.Router, users *services.UserService, tokens *services.TokenService, email *services.EmailService, clientURL string) {
	controller := controllers.NewAuthController(users, tokens, email, clientURL)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", controller.HandleRegister).Methods("POST")
	authRouter.HandleFunc("/verify-email", controller.HandleVerifyEmail).Methods("GET")
	authRouter.HandleFunc("/login", controller.HandleLogin).Methods("POST")
	authRouter.HandleFunc("/forgot-password", controller.HandleForgotPassword).Methods("POST")
	authRouter.HandleFunc("/reset-password", controller.HandleResetPassword).Methods("POST")
}
