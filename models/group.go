package models

// GroupMember is one membership entry. Role is one of the Role* constants.
type GroupMember struct {
	UserID   string `dynamodbav:"userId" json:"userId"`
	Username string `dynamodbav:"username,omitempty" json:"username,omitempty"`
	Role     string `dynamodbav:"role" json:"role"`
	JoinedAt string `dynamodbav:"joinedAt,omitempty" json:"joinedAt,omitempty"`
}

// Group holds membership and ownership. Invariant: OwnerID always appears in
// Members.
type Group struct {
	GroupID   string        `dynamodbav:"groupId" json:"groupId"`
	Name      string        `dynamodbav:"name" json:"name"`
	OwnerID   string        `dynamodbav:"ownerId" json:"ownerId"`
	Members   []GroupMember `dynamodbav:"members" json:"members"`
	AvatarURL string        `dynamodbav:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt string        `dynamodbav:"createdAt" json:"createdAt"`
}

// Member returns the membership entry for userID, or nil.
func (g *Group) Member(userID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// GroupsTable is the DynamoDB table name for groups
const GroupsTable = "group"
