package socket

import socketio "github.com/googollee/go-socket.io"

// RoomID names a delivery target. Rooms are either a user's personal inbox
// or a group fan-out room; constructors below are the only way room names
// are formed.
type RoomID string

// UserInbox is the personal room every authenticated connection joins.
func UserInbox(userID string) RoomID {
	return RoomID(userID)
}

// GroupRoom is the shared room for a group's live members.
func GroupRoom(groupID string) RoomID {
	return RoomID("group_" + groupID)
}

// Broadcaster publishes an event to every connection in a room.
type Broadcaster interface {
	Publish(room RoomID, event string, v interface{})
}

// ServerBroadcaster routes through the socket.io server's room registry.
type ServerBroadcaster struct {
	Server *socketio.Server
}

func (b *ServerBroadcaster) Publish(room RoomID, event string, v interface{}) {
	b.Server.BroadcastToRoom("/", string(room), event, v)
}
