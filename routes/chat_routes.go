package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"
	"linkup_server/socket"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up the direct-message routes under /api/chat
func RegisterChatRoutes(r *mux.Router, auth mux.MiddlewareFunc, chats *services.ChatService, users *services.UserService, blobs services.BlobStore, broadcast socket.Broadcaster) {
	controller := controllers.NewChatController(chats, users, blobs, broadcast)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.Use(auth)

	chatRouter.HandleFunc("", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/mark-read", controller.HandleMarkMessagesAsRead).Methods("POST")
	chatRouter.HandleFunc("/recall", controller.HandleRecallMessage).Methods("POST")
	chatRouter.HandleFunc("/forward", controller.HandleForwardMessage).Methods("POST")
	chatRouter.HandleFunc("/delete", controller.HandleDeleteMessage).Methods("DELETE")
	chatRouter.HandleFunc("/messages/{userId}", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/{userId}", controller.HandleListConversations).Methods("GET")
}
