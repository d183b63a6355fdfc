package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"
	"linkup_server/socket"

	"github.com/gorilla/mux"
)

// RegisterFriendRoutes sets up the friend lifecycle routes under /api/friends
func RegisterFriendRoutes(r *mux.Router, auth mux.MiddlewareFunc, friends *services.FriendService, users *services.UserService, broadcast socket.Broadcaster) {
	controller := controllers.NewFriendController(friends, users, broadcast)

	friendRouter := r.PathPrefix("/api/friends").Subrouter()
	friendRouter.Use(auth)

	friendRouter.HandleFunc("", controller.HandleListFriends).Methods("GET")
	friendRouter.HandleFunc("", controller.HandleRemoveFriend).Methods("DELETE")
	friendRouter.HandleFunc("/request", controller.HandleSendRequest).Methods("POST")
	friendRouter.HandleFunc("/requests", controller.HandleGetReceivedRequests).Methods("GET")
	friendRouter.HandleFunc("/accept", controller.HandleAcceptRequest).Methods("POST")
	friendRouter.HandleFunc("/decline", controller.HandleDeclineRequest).Methods("POST")
}
