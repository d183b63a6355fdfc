package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linkup_server/apperr"
	"linkup_server/models"
	"linkup_server/utils"
)

// UserService owns the users table.
type UserService struct {
	Dynamo *DynamoService
}

// CreateUser registers a new account. Fails with a conflict when the email is
// already taken.
func (us *UserService) CreateUser(ctx context.Context, email, password, username string) (*models.User, error) {
	existing, err := us.GetUserByEmail(ctx, email)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
		IsVerified:   false,
	}

	if err := us.Dynamo.PutItem(ctx, models.UsersTable, user); err != nil {
		return nil, apperr.Dependency(err, "failed to create user")
	}

	log.Printf("✅ User %s registered (%s)", user.UserID, user.Email)
	return &user, nil
}

// Authenticate checks email/password and that the account is verified.
func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Authorizationf("wrong email or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Authorizationf("wrong email or password")
	}
	if !user.IsVerified {
		return nil, apperr.Authorizationf("account email is not verified")
	}
	return user, nil
}

// GetUserByID fetches one user record.
func (us *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	key := utils.Key("userId", userID)

	item, err := us.Dynamo.GetItem(ctx, models.UsersTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, apperr.Dependency(err, "failed to fetch user")
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail scans the users table for an email match. Email is unique by
// construction (CreateUser checks first).
func (us *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	err := us.Dynamo.ScanItems(ctx, models.UsersTable,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		nil,
		&users,
	)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to look up user by email")
	}
	if len(users) == 0 {
		return nil, apperr.NotFoundf("user not found")
	}
	return &users[0], nil
}

// GetAllUsers returns every user record.
func (us *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := us.Dynamo.ScanItems(ctx, models.UsersTable, "", nil, nil, &users); err != nil {
		return nil, apperr.Dependency(err, "failed to list users")
	}
	return users, nil
}

// UpdateUser applies a partial field update to a user record.
func (us *UserService) UpdateUser(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return nil, apperr.Validationf("no fields to update")
	}

	updateExpression := "SET"
	expressionValues := map[string]types.AttributeValue{}
	expressionNames := map[string]string{}
	i := 0
	for field, value := range updates {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal update for '%s': %w", field, err)
		}
		placeholder := fmt.Sprintf(":v%d", i)
		name := fmt.Sprintf("#f%d", i)
		if i > 0 {
			updateExpression += ","
		}
		updateExpression += fmt.Sprintf(" %s = %s", name, placeholder)
		expressionValues[placeholder] = av
		expressionNames[name] = field
		i++
	}

	key := utils.Key("userId", userID)
	attrs, err := us.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, key, expressionValues, expressionNames)
	if err != nil {
		return nil, apperr.Dependency(err, "failed to update user")
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(attrs, &user); err != nil {
		return nil, fmt.Errorf("failed to parse updated user: %w", err)
	}
	return &user, nil
}

// UpdatePassword verifies the current password before storing the new hash.
func (us *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := us.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return apperr.Authorizationf("current password is wrong")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = us.UpdateUser(ctx, userID, map[string]interface{}{"passwordHash": string(hash)})
	return err
}

// ResetPassword stores a new hash without knowing the old one. Callers must
// have verified a reset token first.
func (us *UserService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = us.UpdateUser(ctx, userID, map[string]interface{}{"passwordHash": string(hash)})
	return err
}

// MarkVerified flips the isVerified flag after a successful email
// verification.
func (us *UserService) MarkVerified(ctx context.Context, userID string) error {
	_, err := us.UpdateUser(ctx, userID, map[string]interface{}{"isVerified": true})
	return err
}

// timestampNow is the stored wire format for all entity timestamps.
func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
