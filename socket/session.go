package socket

import (
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"

	"linkup_server/apperr"
)

// Session is the identity bound to one connection at handshake time. It
// lives in the connection's context, so a closed connection takes its
// session with it.
type Session struct {
	UserID string
	Email  string
}

func sessionFrom(s socketio.Conn) (*Session, error) {
	sess, ok := s.Context().(*Session)
	if !ok || sess == nil {
		return nil, apperr.Authorizationf("connection is not authenticated")
	}
	return sess, nil
}

// bearerToken extracts the handshake token from the connection URL's
// "token" query parameter, falling back to the Authorization header.
func bearerToken(query map[string][]string, header http.Header) string {
	if vals, ok := query["token"]; ok && len(vals) > 0 && vals[0] != "" {
		return vals[0]
	}
	auth := header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
