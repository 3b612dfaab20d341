package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandler(users *memUserStore) *AuthHandler {
	return NewAuthHandler(users, stubJWTService{}, plainVerifier{})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	handler := newAuthHandler(users)

	rec := httptest.NewRecorder()
	handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "s3cret-password",
		Name:     "Alice",
	}, uuid.Nil))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.Equal(t, "tok-"+resp.UserID.String(), resp.Token)

	// The stored user carries only the hash, normalized email included.
	stored, err := users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, "hashed$s3cret-password", stored.HashedPassword)
	assert.Empty(t, stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	seedUser(t, users, "alice@example.com", "s3cret-password")
	handler := newAuthHandler(users)

	rec := httptest.NewRecorder()
	handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "alice@example.com",
		Password: "another-password",
	}, uuid.Nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "s3cret-password"}},
		{"malformed email", RegisterRequest{Email: "not-an-email", Password: "s3cret-password"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			handler := newAuthHandler(newMemUserStore())
			rec := httptest.NewRecorder()
			handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", tc.req, uuid.Nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	user := seedUser(t, users, "bob@example.com", "s3cret-password")
	handler := newAuthHandler(users)

	rec := httptest.NewRecorder()
	handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "bob@example.com",
		Password: "s3cret-password",
	}, uuid.Nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "tok-"+user.ID.String(), resp.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	seedUser(t, users, "bob@example.com", "s3cret-password")
	handler := newAuthHandler(users)

	// Wrong password and unknown email produce the same response; the
	// client cannot probe which accounts exist.
	for _, req := range []LoginRequest{
		{Email: "bob@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "s3cret-password"},
	} {
		rec := httptest.NewRecorder()
		handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", req, uuid.Nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	user := seedUser(t, users, "carol@example.com", "s3cret-password")
	handler := newAuthHandler(users)

	rec := httptest.NewRecorder()
	handler.Me(rec, jsonRequest(t, http.MethodGet, "/api/auth/me", nil, user.ID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, "carol@example.com", resp.Email)
}

func TestMeWithoutUserContext(t *testing.T) {
	t.Parallel()

	handler := newAuthHandler(newMemUserStore())
	rec := httptest.NewRecorder()
	handler.Me(rec, jsonRequest(t, http.MethodGet, "/api/auth/me", nil, uuid.Nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
