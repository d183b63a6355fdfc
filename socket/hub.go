package socket

import (
	"log"

	"linkup_server/apperr"
)

// clientConn is the slice of socketio.Conn the event handlers need. Tests
// drive handlers through a recording implementation.
type clientConn interface {
	Emit(event string, v ...interface{})
	Join(room string)
	Leave(room string)
}

// Hub holds the stores and broadcaster the socket events operate on. One
// hub serves all connections; per-connection identity travels in the
// Session.
type Hub struct {
	Broadcast  Broadcaster
	Users      UserStore
	Chats      ChatStore
	Groups     GroupStore
	GroupChats GroupChatStore
	Friends    FriendStore
}

// emitError reports a failure to the originating connection only. Errors
// are never broadcast.
func (h *Hub) emitError(c clientConn, err error) {
	log.Printf("❌ Socket event failed: %v", err)
	c.Emit("error", map[string]string{"message": apperr.UserMessage(err)})
}
