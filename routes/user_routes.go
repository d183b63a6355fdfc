package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up the profile routes under /api/user
func RegisterUserRoutes(r *mux.Router, auth mux.MiddlewareFunc, users *services.UserService, blobs services.BlobStore) {
	controller := controllers.NewUserController(users, blobs)

	userRouter := r.PathPrefix("/api/user").Subrouter()
	userRouter.Use(auth)

	userRouter.HandleFunc("", controller.HandleGetAllUsers).Methods("GET")
	userRouter.HandleFunc("/profile", controller.HandleGetProfile).Methods("GET")
	userRouter.HandleFunc("/profile", controller.HandleUpdateProfile).Methods("PUT")
	userRouter.HandleFunc("/search", controller.HandleSearchByEmail).Methods("GET")
	userRouter.HandleFunc("/update-password", controller.HandleUpdatePassword).Methods("POST")
	userRouter.HandleFunc("/avatar", controller.HandleUpdateAvatar).Methods("POST")
	userRouter.HandleFunc("/{userId}", controller.HandleGetUserByID).Methods("GET")
}
