package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"
	"linkup_server/socket"

	"github.com/gorilla/mux"
)

// RegisterGroupChatRoutes sets up the group messaging routes under
// /api/group-chat
func RegisterGroupChatRoutes(r *mux.Router, auth mux.MiddlewareFunc, groupChats *services.GroupChatService, groups *services.GroupService, blobs services.BlobStore, broadcast socket.Broadcaster) {
	controller := controllers.NewGroupChatController(groupChats, groups, blobs, broadcast)

	groupChatRouter := r.PathPrefix("/api/group-chat").Subrouter()
	groupChatRouter.Use(auth)

	groupChatRouter.HandleFunc("", controller.HandleSendGroupMessage).Methods("POST")
	groupChatRouter.HandleFunc("", controller.HandleDeleteGroupMessage).Methods("DELETE")
	groupChatRouter.HandleFunc("/recall", controller.HandleRecallGroupMessage).Methods("POST")
	groupChatRouter.HandleFunc("/{groupId}", controller.HandleGetGroupMessages).Methods("GET")
}
