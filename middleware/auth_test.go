package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"linkup_server/services"
)

func authRouter(t *testing.T, tokens *services.TokenService) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	r.Use(Auth(tokens))
	r.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r) + "|" + Email(r)))
	})
	return r
}

func TestAuthStampsIdentity(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Sign("u1", "u1@example.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authRouter(t, tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1|u1@example.com", rec.Body.String())
}

func TestAuthRejectsMissingToken(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	authRouter(t, tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour)
	forged, err := services.NewTokenService("other-secret", time.Hour).Sign("u1", "u1@example.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	authRouter(t, tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
