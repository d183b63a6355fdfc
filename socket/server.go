package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"

	"linkup_server/services"
)

// TokenVerifier authenticates a handshake token into claims.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// NewSocketServer builds the socket.io server: handshake authentication,
// inbox-room auto-join and all event registrations. The caller runs
// server.Serve() and mounts it at /socket.io/.
func NewSocketServer(tokens TokenVerifier, hub *Hub) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		url := s.URL()
		token := bearerToken(url.Query(), s.RemoteHeader())
		claims, err := tokens.Verify(token)
		if err != nil {
			log.Printf("❌ Socket handshake rejected: %v", err)
			return err
		}

		s.SetContext(&Session{UserID: claims.UserID, Email: claims.Email})
		s.Join(string(UserInbox(claims.UserID)))
		log.Printf("🔌 User %s connected (%s)", claims.UserID, s.ID())
		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if sess, ok := s.Context().(*Session); ok && sess != nil {
			log.Printf("🔌 User %s disconnected: %s", sess.UserID, reason)
		}
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Printf("⚠️ Socket error: %v", err)
	})

	server.OnEvent("/", "sendMessage", func(s socketio.Conn, p sendMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleSendMessage(s, sess, p) })
	})
	server.OnEvent("/", "recallMessage", func(s socketio.Conn, p recallMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleRecallMessage(s, sess, p) })
	})
	server.OnEvent("/", "forwardMessage", func(s socketio.Conn, p forwardMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleForwardMessage(s, sess, p) })
	})

	server.OnEvent("/", "createGroup", func(s socketio.Conn, p createGroupPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleCreateGroup(s, sess, p) })
	})
	server.OnEvent("/", "joinGroup", func(s socketio.Conn, p groupRoomPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleJoinGroupRoom(s, sess, p) })
	})
	server.OnEvent("/", "leaveGroup", func(s socketio.Conn, p groupRoomPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleLeaveGroupRoom(s, sess, p) })
	})
	server.OnEvent("/", "group:join", func(s socketio.Conn, p groupMemberPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleAddMember(s, sess, p) })
	})
	server.OnEvent("/", "removeMember", func(s socketio.Conn, p groupMemberPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleRemoveMember(s, sess, p) })
	})
	server.OnEvent("/", "assignCoAdmin", func(s socketio.Conn, p groupMemberPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleAssignCoAdmin(s, sess, p) })
	})
	server.OnEvent("/", "group:leave", func(s socketio.Conn, p groupMemberPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleLeaveGroup(s, sess, p) })
	})
	server.OnEvent("/", "group:disband", func(s socketio.Conn, p groupRoomPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleDisbandGroup(s, sess, p) })
	})

	server.OnEvent("/", "sendGroupMessage", func(s socketio.Conn, p sendGroupMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleSendGroupMessage(s, sess, p) })
	})
	server.OnEvent("/", "recallGroupMessage", func(s socketio.Conn, p groupMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleRecallGroupMessage(s, sess, p) })
	})
	server.OnEvent("/", "deleteGroupMessage", func(s socketio.Conn, p groupMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleDeleteGroupMessage(s, sess, p) })
	})
	server.OnEvent("/", "forwardGroupMessage", func(s socketio.Conn, p forwardGroupMessagePayload) {
		withSession(hub, s, func(sess *Session) { hub.handleForwardGroupMessage(s, sess, p) })
	})

	server.OnEvent("/", "sendFriendRequest", func(s socketio.Conn, p sendFriendRequestPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleSendFriendRequest(s, sess, p) })
	})
	server.OnEvent("/", "acceptFriendRequest", func(s socketio.Conn, p friendRequestPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleAcceptFriendRequest(s, sess, p) })
	})
	server.OnEvent("/", "declineFriendRequest", func(s socketio.Conn, p friendRequestPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleDeclineFriendRequest(s, sess, p) })
	})
	server.OnEvent("/", "removeFriend", func(s socketio.Conn, p removeFriendPayload) {
		withSession(hub, s, func(sess *Session) { hub.handleRemoveFriend(s, sess, p) })
	})

	return server
}

func withSession(hub *Hub, s socketio.Conn, fn func(sess *Session)) {
	sess, err := sessionFrom(s)
	if err != nil {
		hub.emitError(s, err)
		return
	}
	fn(sess)
}
