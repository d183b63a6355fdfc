package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkup_server/apperr"
)

// Claims is the JWT payload bound to every authenticated caller.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the bearer tokens used by both the REST
// middleware and the socket handshake.
type TokenService struct {
	Secret []byte
	Expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{Secret: []byte(secret), Expiry: expiry}
}

// Sign issues a token for userID.
func (t *TokenService) Sign(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.Expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Verify parses and validates a token, returning its claims.
func (t *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Authorizationf("unexpected signing method")
		}
		return t.Secret, nil
	})
	if err != nil {
		return nil, apperr.Authorizationf("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperr.Authorizationf("invalid or expired token")
	}
	return claims, nil
}
