package socket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/services"
)

type emitted struct {
	event string
	args  []interface{}
}

type fakeConn struct {
	emits  []emitted
	joined []string
	left   []string
}

func (c *fakeConn) Emit(event string, v ...interface{}) {
	c.emits = append(c.emits, emitted{event: event, args: v})
}
func (c *fakeConn) Join(room string)  { c.joined = append(c.joined, room) }
func (c *fakeConn) Leave(room string) { c.left = append(c.left, room) }

func (c *fakeConn) errorMessages() []string {
	var out []string
	for _, e := range c.emits {
		if e.event == "error" {
			payload := e.args[0].(map[string]string)
			out = append(out, payload["message"])
		}
	}
	return out
}

type published struct {
	room  RoomID
	event string
	v     interface{}
}

type fakeBroadcast struct {
	events []published
}

func (b *fakeBroadcast) Publish(room RoomID, event string, v interface{}) {
	b.events = append(b.events, published{room: room, event: event, v: v})
}

func (b *fakeBroadcast) find(room RoomID, event string) *published {
	for i := range b.events {
		if b.events[i].room == room && b.events[i].event == event {
			return &b.events[i]
		}
	}
	return nil
}

type fakeUserStore struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func (s *fakeUserStore) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	if u, ok := s.byID[userID]; ok {
		return u, nil
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperr.NotFoundf("user not found")
}

type fakeChatStore struct {
	created  []models.Message
	recalled *models.Message
}

func (s *fakeChatStore) CreateMessage(_ context.Context, msg models.Message) (*models.Message, error) {
	if msg.ConversationID == "" {
		msg.ConversationID = models.ConversationID(msg.SenderID, msg.ReceiverID)
	}
	s.created = append(s.created, msg)
	return &msg, nil
}

func (s *fakeChatStore) RecallMessage(_ context.Context, _, _, _ string) (*models.Message, error) {
	if s.recalled == nil {
		return nil, apperr.NotFoundf("message not found")
	}
	return s.recalled, nil
}

func (s *fakeChatStore) ForwardMessage(_ context.Context, _, _, senderID, newReceiverID string) (*models.Message, error) {
	msg := models.Message{
		SenderID:    senderID,
		ReceiverID:  newReceiverID,
		IsForwarded: true,
	}
	s.created = append(s.created, msg)
	return &msg, nil
}

type fakeGroupStore struct {
	groups       map[string]*models.Group
	removed      []string
	leaveOutcome *services.LeaveOutcome
	leaveErr     error
}

func (s *fakeGroupStore) CreateGroup(_ context.Context, name, ownerID string, members []models.GroupMember, avatarURL string) (*models.Group, error) {
	g := &models.Group{GroupID: "g-new", Name: name, OwnerID: ownerID, Members: members, AvatarURL: avatarURL}
	if s.groups == nil {
		s.groups = map[string]*models.Group{}
	}
	s.groups[g.GroupID] = g
	return g, nil
}

func (s *fakeGroupStore) GetGroupByID(_ context.Context, groupID string) (*models.Group, error) {
	if g, ok := s.groups[groupID]; ok {
		return g, nil
	}
	return nil, apperr.NotFoundf("group not found")
}

func (s *fakeGroupStore) AddMember(_ context.Context, groupID string, member models.GroupMember) error {
	s.groups[groupID].Members = append(s.groups[groupID].Members, member)
	return nil
}

func (s *fakeGroupStore) RemoveMember(_ context.Context, groupID, userID string) error {
	s.removed = append(s.removed, userID)
	g := s.groups[groupID]
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeGroupStore) UpdateMemberRole(_ context.Context, groupID, userID, role string) error {
	if m := s.groups[groupID].Member(userID); m != nil {
		m.Role = role
	}
	return nil
}

func (s *fakeGroupStore) DisbandGroup(_ context.Context, groupID string) error {
	delete(s.groups, groupID)
	return nil
}

func (s *fakeGroupStore) LeaveGroup(_ context.Context, _, _ string) (*services.LeaveOutcome, error) {
	return s.leaveOutcome, s.leaveErr
}

type fakeGroupChatStore struct {
	messages map[string]*models.GroupMessage
	created  []models.GroupMessage
	deleted  []string
}

func (s *fakeGroupChatStore) CreateGroupMessage(_ context.Context, msg models.GroupMessage) (*models.GroupMessage, error) {
	if msg.Content == "" && msg.FileURL == "" {
		return nil, apperr.Validationf("message must have content or a file")
	}
	msg.MessageID = "gm-new"
	s.created = append(s.created, msg)
	return &msg, nil
}

func (s *fakeGroupChatStore) GetGroupMessageByID(_ context.Context, messageID string) (*models.GroupMessage, error) {
	if m, ok := s.messages[messageID]; ok {
		return m, nil
	}
	return nil, apperr.NotFoundf("message not found")
}

func (s *fakeGroupChatStore) RecallGroupMessage(_ context.Context, messageID, actorID string) (*models.GroupMessage, error) {
	m, ok := s.messages[messageID]
	if !ok {
		return nil, apperr.NotFoundf("message not found")
	}
	if m.SenderID != actorID {
		return nil, apperr.Authorizationf("only the sender can recall this message")
	}
	if m.IsRecalled {
		return nil, apperr.Conflictf("message is already recalled")
	}
	m.IsRecalled = true
	m.Content = models.RecalledPlaceholder
	return m, nil
}

func (s *fakeGroupChatStore) DeleteGroupMessage(_ context.Context, messageID, actorID string) error {
	m, ok := s.messages[messageID]
	if !ok {
		return apperr.NotFoundf("message not found")
	}
	if m.SenderID != actorID {
		return apperr.Authorizationf("only the sender can delete this message")
	}
	s.deleted = append(s.deleted, messageID)
	return nil
}

type fakeFriendStore struct {
	requests map[string]*models.FriendRequest
	removed  [][2]string
}

func (s *fakeFriendStore) SendRequest(_ context.Context, fromEmail, toEmail string) (*models.FriendRequest, error) {
	if fromEmail == toEmail {
		return nil, apperr.Conflictf("cannot send a friend request to yourself")
	}
	return &models.FriendRequest{RequestID: "fr-new", FromEmail: fromEmail, ToEmail: toEmail, Status: models.FriendStatusPending}, nil
}

func (s *fakeFriendStore) AcceptRequest(_ context.Context, requestID, actorEmail string) (*models.FriendRequest, error) {
	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperr.NotFoundf("friend request not found")
	}
	if r.ToEmail != actorEmail {
		return nil, apperr.Authorizationf("only the recipient can accept this request")
	}
	r.Status = models.FriendStatusAccepted
	return r, nil
}

func (s *fakeFriendStore) DeclineRequest(_ context.Context, requestID, actorEmail string) (*models.FriendRequest, error) {
	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperr.NotFoundf("friend request not found")
	}
	if r.ToEmail != actorEmail {
		return nil, apperr.Authorizationf("only the recipient can decline this request")
	}
	r.Status = models.FriendStatusDeclined
	return r, nil
}

func (s *fakeFriendStore) RemoveFriend(_ context.Context, emailA, emailB string) error {
	s.removed = append(s.removed, [2]string{emailA, emailB})
	return nil
}

func newTestHub() (*Hub, *fakeBroadcast, *fakeUserStore, *fakeChatStore, *fakeGroupStore, *fakeGroupChatStore, *fakeFriendStore) {
	broadcast := &fakeBroadcast{}
	users := &fakeUserStore{
		byID: map[string]*models.User{
			"u1": {UserID: "u1", Email: "u1@example.com", Username: "one"},
			"u2": {UserID: "u2", Email: "u2@example.com", Username: "two"},
			"u3": {UserID: "u3", Email: "u3@example.com", Username: "three"},
		},
		byEmail: map[string]*models.User{
			"u1@example.com": {UserID: "u1", Email: "u1@example.com", Username: "one"},
			"u2@example.com": {UserID: "u2", Email: "u2@example.com", Username: "two"},
		},
	}
	chats := &fakeChatStore{}
	groups := &fakeGroupStore{groups: map[string]*models.Group{}}
	groupChats := &fakeGroupChatStore{messages: map[string]*models.GroupMessage{}}
	friends := &fakeFriendStore{requests: map[string]*models.FriendRequest{}}

	hub := &Hub{
		Broadcast:  broadcast,
		Users:      users,
		Chats:      chats,
		Groups:     groups,
		GroupChats: groupChats,
		Friends:    friends,
	}
	return hub, broadcast, users, chats, groups, groupChats, friends
}

func TestSendMessageRoutesToBothInboxes(t *testing.T) {
	hub, broadcast, _, chats, _, _, _ := newTestHub()
	conn := &fakeConn{}

	hub.handleSendMessage(conn, &Session{UserID: "u1"}, sendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
		Type:       models.MessageTypeText,
	})

	assert.Empty(t, conn.errorMessages())
	assert.Len(t, chats.created, 1)
	assert.Equal(t, "u1#u2", chats.created[0].ConversationID)
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "receiveMessage_u2"))
	assert.NotNil(t, broadcast.find(UserInbox("u1"), "receiveMessage_u1"))
}

func TestSendMessageRejectsIdentityMismatch(t *testing.T) {
	hub, broadcast, _, chats, _, _, _ := newTestHub()
	conn := &fakeConn{}

	hub.handleSendMessage(conn, &Session{UserID: "u1"}, sendMessagePayload{
		SenderID:   "u2",
		ReceiverID: "u1",
		Content:    "spoofed",
	})

	assert.NotEmpty(t, conn.errorMessages())
	assert.Empty(t, chats.created)
	assert.Empty(t, broadcast.events)
}

func TestSendMessageRejectsUnknownReceiver(t *testing.T) {
	hub, _, _, chats, _, _, _ := newTestHub()
	conn := &fakeConn{}

	hub.handleSendMessage(conn, &Session{UserID: "u1"}, sendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "ghost",
		Content:    "hello?",
	})

	assert.Equal(t, []string{"user not found"}, conn.errorMessages())
	assert.Empty(t, chats.created)
}

func TestRecallMessageNotifiesBothParties(t *testing.T) {
	hub, broadcast, _, chats, _, _, _ := newTestHub()
	chats.recalled = &models.Message{
		ConversationID: "u1#u2",
		SenderID:       "u1",
		ReceiverID:     "u2",
		Content:        models.RecalledPlaceholder,
		IsRecalled:     true,
	}
	conn := &fakeConn{}

	hub.handleRecallMessage(conn, &Session{UserID: "u1"}, recallMessagePayload{
		ConversationID: "u1#u2",
		Timestamp:      "2026-01-01T00:00:00Z",
		SenderID:       "u1",
	})

	assert.Empty(t, conn.errorMessages())
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "messageRecalled_u2"))
	assert.NotNil(t, broadcast.find(UserInbox("u1"), "messageRecalled_u1"))
}

func TestRemoveMemberRejectsSelfTarget(t *testing.T) {
	hub, broadcast, _, _, groups, _, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		OwnerID: "u1",
		Members: []models.GroupMember{
			{UserID: "u1", Role: models.RoleAdmin},
			{UserID: "u2", Role: models.RoleMember},
		},
	}
	conn := &fakeConn{}

	hub.handleRemoveMember(conn, &Session{UserID: "u1"}, groupMemberPayload{GroupID: "g1", UserID: "u1"})

	assert.NotEmpty(t, conn.errorMessages())
	assert.Contains(t, conn.errorMessages()[0], "leave")
	assert.Empty(t, groups.removed)
	assert.Empty(t, broadcast.events)
}

func TestRemoveMemberRequiresPrivilege(t *testing.T) {
	hub, _, _, _, groups, _, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		OwnerID: "u1",
		Members: []models.GroupMember{
			{UserID: "u1", Role: models.RoleAdmin},
			{UserID: "u2", Role: models.RoleMember},
			{UserID: "u3", Role: models.RoleMember},
		},
	}
	conn := &fakeConn{}

	hub.handleRemoveMember(conn, &Session{UserID: "u2"}, groupMemberPayload{GroupID: "g1", UserID: "u3"})

	assert.NotEmpty(t, conn.errorMessages())
	assert.Empty(t, groups.removed)
}

func TestRemoveMemberNotifiesTargetAndRemainder(t *testing.T) {
	hub, broadcast, _, _, groups, _, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		Name:    "squad",
		OwnerID: "u1",
		Members: []models.GroupMember{
			{UserID: "u1", Role: models.RoleAdmin},
			{UserID: "u2", Role: models.RoleMember},
			{UserID: "u3", Role: models.RoleMember},
		},
	}
	conn := &fakeConn{}

	hub.handleRemoveMember(conn, &Session{UserID: "u1"}, groupMemberPayload{GroupID: "g1", UserID: "u3"})

	assert.Empty(t, conn.errorMessages())
	assert.Equal(t, []string{"u3"}, groups.removed)
	assert.NotNil(t, broadcast.find(UserInbox("u3"), "removedFromGroup_u3"))
	assert.NotNil(t, broadcast.find(UserInbox("u1"), "groupMemberUpdated_g1"))
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "groupMemberUpdated_g1"))
	assert.Nil(t, broadcast.find(UserInbox("u3"), "groupMemberUpdated_g1"))
}

func TestLeaveGroupOwnershipTransferFanout(t *testing.T) {
	hub, broadcast, _, _, groups, _, _ := newTestHub()
	remaining := &models.Group{
		GroupID: "g1",
		Name:    "squad",
		OwnerID: "u2",
		Members: []models.GroupMember{
			{UserID: "u2", Role: models.RoleAdmin},
			{UserID: "u3", Role: models.RoleMember},
		},
	}
	groups.leaveOutcome = &services.LeaveOutcome{
		OwnerChanged: true,
		NewOwnerID:   "u2",
		GroupName:    "squad",
		Group:        remaining,
	}
	conn := &fakeConn{}

	hub.handleLeaveGroup(conn, &Session{UserID: "u1"}, groupMemberPayload{GroupID: "g1", UserID: "u1"})

	assert.Empty(t, conn.errorMessages())
	assert.Contains(t, conn.left, "group_g1")
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "groupOwnerChanged_u2"))
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "groupMemberUpdated_g1"))
	assert.NotNil(t, broadcast.find(UserInbox("u3"), "groupMemberUpdated_g1"))

	var success *emitted
	for i := range conn.emits {
		if conn.emits[i].event == "group:leaveSuccess" {
			success = &conn.emits[i]
		}
	}
	assert.NotNil(t, success)
}

func TestLeaveGroupDisbandWhenSoleMember(t *testing.T) {
	hub, broadcast, _, _, groups, _, _ := newTestHub()
	groups.leaveOutcome = &services.LeaveOutcome{Disbanded: true, GroupName: "solo"}
	conn := &fakeConn{}

	hub.handleLeaveGroup(conn, &Session{UserID: "u1"}, groupMemberPayload{GroupID: "g1"})

	assert.Empty(t, conn.errorMessages())
	assert.Empty(t, broadcast.events)
	assert.Len(t, conn.emits, 1)
	assert.Equal(t, "group:leaveSuccess", conn.emits[0].event)
	payload := conn.emits[0].args[0].(map[string]interface{})
	assert.Equal(t, true, payload["disbanded"])
}

func TestSendGroupMessageRejectsNonMember(t *testing.T) {
	hub, broadcast, _, _, groups, groupChats, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		OwnerID: "u1",
		Members: []models.GroupMember{{UserID: "u1", Role: models.RoleAdmin}},
	}
	conn := &fakeConn{}

	hub.handleSendGroupMessage(conn, &Session{UserID: "u2"}, sendGroupMessagePayload{
		GroupID:  "g1",
		SenderID: "u2",
		Content:  "intruder",
	})

	assert.NotEmpty(t, conn.errorMessages())
	assert.Empty(t, groupChats.created)
	assert.Empty(t, broadcast.events)
}

func TestSendGroupMessageFansOutToRoom(t *testing.T) {
	hub, broadcast, _, _, groups, groupChats, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		OwnerID: "u1",
		Members: []models.GroupMember{
			{UserID: "u1", Role: models.RoleAdmin},
			{UserID: "u2", Role: models.RoleMember},
		},
	}
	conn := &fakeConn{}

	hub.handleSendGroupMessage(conn, &Session{UserID: "u2"}, sendGroupMessagePayload{
		GroupID:  "g1",
		SenderID: "u2",
		Content:  "hello room",
	})

	assert.Empty(t, conn.errorMessages())
	assert.Len(t, groupChats.created, 1)
	assert.NotNil(t, broadcast.find(GroupRoom("g1"), "receiveGroupMessage"))
}

func TestRecallGroupMessageDoubleRecallConflicts(t *testing.T) {
	hub, broadcast, _, _, _, groupChats, _ := newTestHub()
	groupChats.messages["m1"] = &models.GroupMessage{
		MessageID: "m1",
		GroupID:   "g1",
		SenderID:  "u1",
		Content:   "first",
	}
	conn := &fakeConn{}
	sess := &Session{UserID: "u1"}

	hub.handleRecallGroupMessage(conn, sess, groupMessagePayload{MessageID: "m1"})
	assert.Empty(t, conn.errorMessages())
	assert.NotNil(t, broadcast.find(GroupRoom("g1"), "groupMessageRecalled"))
	assert.Equal(t, models.RecalledPlaceholder, groupChats.messages["m1"].Content)

	hub.handleRecallGroupMessage(conn, sess, groupMessagePayload{MessageID: "m1"})
	assert.Equal(t, []string{"message is already recalled"}, conn.errorMessages())
}

func TestCreateGroupNotifiesEveryMember(t *testing.T) {
	hub, broadcast, _, _, _, _, _ := newTestHub()
	conn := &fakeConn{}

	hub.handleCreateGroup(conn, &Session{UserID: "u1"}, createGroupPayload{
		Name:      "squad",
		MemberIDs: []string{"u2", "u3"},
	})

	assert.Empty(t, conn.errorMessages())
	assert.NotNil(t, broadcast.find(UserInbox("u1"), "newGroup_u1"))
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "newGroup_u2"))
	assert.NotNil(t, broadcast.find(UserInbox("u3"), "newGroup_u3"))
	assert.Contains(t, conn.joined, "group_g-new")
	assert.Equal(t, "groupCreated", conn.emits[len(conn.emits)-1].event)
}

func TestSendFriendRequestRoutesToRecipient(t *testing.T) {
	hub, broadcast, _, _, _, _, _ := newTestHub()
	conn := &fakeConn{}

	hub.handleSendFriendRequest(conn, &Session{UserID: "u1", Email: "u1@example.com"}, sendFriendRequestPayload{
		SenderID:      "u1",
		ReceiverEmail: "u2@example.com",
	})

	assert.Empty(t, conn.errorMessages())
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "receiveFriendRequest_u2"))
	assert.Equal(t, "friendRequestSent", conn.emits[len(conn.emits)-1].event)
}

func TestAcceptFriendRequestNotifiesBothSides(t *testing.T) {
	hub, broadcast, _, _, _, _, friends := newTestHub()
	friends.requests["fr1"] = &models.FriendRequest{
		RequestID: "fr1",
		FromEmail: "u1@example.com",
		ToEmail:   "u2@example.com",
		Status:    models.FriendStatusPending,
	}
	conn := &fakeConn{}

	hub.handleAcceptFriendRequest(conn, &Session{UserID: "u2", Email: "u2@example.com"}, friendRequestPayload{RequestID: "fr1"})

	assert.Empty(t, conn.errorMessages())
	assert.NotNil(t, broadcast.find(UserInbox("u1"), "friendRequestAccepted_u1"))
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "friendRequestAccepted_u2"))
	assert.Equal(t, models.FriendStatusAccepted, friends.requests["fr1"].Status)
}

func TestAcceptFriendRequestOnlyRecipient(t *testing.T) {
	hub, broadcast, _, _, _, _, friends := newTestHub()
	friends.requests["fr1"] = &models.FriendRequest{
		RequestID: "fr1",
		FromEmail: "u1@example.com",
		ToEmail:   "u2@example.com",
		Status:    models.FriendStatusPending,
	}
	conn := &fakeConn{}

	hub.handleAcceptFriendRequest(conn, &Session{UserID: "u1", Email: "u1@example.com"}, friendRequestPayload{RequestID: "fr1"})

	assert.NotEmpty(t, conn.errorMessages())
	assert.Empty(t, broadcast.events)
	assert.Equal(t, models.FriendStatusPending, friends.requests["fr1"].Status)
}

func TestRemoveFriendNotifiesFormerFriend(t *testing.T) {
	hub, broadcast, _, _, _, _, friends := newTestHub()
	conn := &fakeConn{}

	hub.handleRemoveFriend(conn, &Session{UserID: "u1", Email: "u1@example.com"}, removeFriendPayload{
		FriendEmail: "u2@example.com",
	})

	assert.Empty(t, conn.errorMessages())
	assert.Equal(t, [][2]string{{"u1@example.com", "u2@example.com"}}, friends.removed)
	assert.NotNil(t, broadcast.find(UserInbox("u2"), "friendRemoved_u2"))
}

func TestForwardGroupMessageRejectsRecalled(t *testing.T) {
	hub, broadcast, _, _, _, groupChats, _ := newTestHub()
	groupChats.messages["m1"] = &models.GroupMessage{
		MessageID:  "m1",
		GroupID:    "g1",
		SenderID:   "u1",
		Content:    models.RecalledPlaceholder,
		IsRecalled: true,
	}
	conn := &fakeConn{}

	hub.handleForwardGroupMessage(conn, &Session{UserID: "u1"}, forwardGroupMessagePayload{
		MessageID:     "m1",
		TargetGroupID: "g2",
	})

	assert.Equal(t, []string{"cannot forward a recalled message"}, conn.errorMessages())
	assert.Empty(t, groupChats.created)
	assert.Empty(t, broadcast.events)
}

func TestJoinGroupRoomRequiresMembership(t *testing.T) {
	hub, _, _, _, groups, _, _ := newTestHub()
	groups.groups["g1"] = &models.Group{
		GroupID: "g1",
		OwnerID: "u1",
		Members: []models.GroupMember{{UserID: "u1", Role: models.RoleAdmin}},
	}
	conn := &fakeConn{}

	hub.handleJoinGroupRoom(conn, &Session{UserID: "u2"}, groupRoomPayload{GroupID: "g1"})
	assert.NotEmpty(t, conn.errorMessages())
	assert.Empty(t, conn.joined)

	conn = &fakeConn{}
	hub.handleJoinGroupRoom(conn, &Session{UserID: "u1"}, groupRoomPayload{GroupID: "g1"})
	assert.Empty(t, conn.errorMessages())
	assert.Equal(t, []string{"group_g1"}, conn.joined)
}
