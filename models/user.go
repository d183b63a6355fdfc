package models

// User is the identity record created on registration.
type User struct {
	UserID       string `dynamodbav:"userId" json:"userId"`
	Email        string `dynamodbav:"email" json:"email"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
	Username     string `dynamodbav:"username" json:"username"`
	AvatarURL    string `dynamodbav:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	IsVerified   bool   `dynamodbav:"isVerified" json:"isVerified"`
}

// UsersTable is the DynamoDB table name for user accounts
const UsersTable = "users"
