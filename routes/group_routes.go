package routes

import (
	"linkup_server/controllers"
	"linkup_server/services"
	"linkup_server/socket"

	"github.com/gorilla/mux"
)

// RegisterGroupRoutes sets up the group lifecycle routes under /api/groups
func RegisterGroupRoutes(r *mux.Router, auth mux.MiddlewareFunc, groups *services.GroupService, users *services.UserService, broadcast socket.Broadcaster) {
	controller := controllers.NewGroupController(groups, users, broadcast)

	groupRouter := r.PathPrefix("/api/groups").Subrouter()
	groupRouter.Use(auth)

	groupRouter.HandleFunc("", controller.HandleCreateGroup).Methods("POST")
	groupRouter.HandleFunc("/my-groups", controller.HandleGetMyGroups).Methods("GET")
	groupRouter.HandleFunc("/{groupId}", controller.HandleGetGroup).Methods("GET")
	groupRouter.HandleFunc("/{groupId}", controller.HandleDisbandGroup).Methods("DELETE")
	groupRouter.HandleFunc("/{groupId}/members", controller.HandleAddMember).Methods("POST")
	groupRouter.HandleFunc("/{groupId}/members/{userId}", controller.HandleRemoveMember).Methods("DELETE")
	groupRouter.HandleFunc("/{groupId}/co-admin", controller.HandleAssignCoAdmin).Methods("POST")
	groupRouter.HandleFunc("/{groupId}/leave", controller.HandleLeaveGroup).Methods("POST")
}
