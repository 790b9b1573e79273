package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summarly/internal/domain/entity"
	"summarly/internal/handler/http/middleware"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type stubAccounts struct {
	byEmail map[string]*entity.Account
	err     error
}

func (s *stubAccounts) Get(_ context.Context, id int64) (*entity.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, entity.ErrAccountNotFound
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, entity.ErrAccountNotFound
}

func (s *stubAccounts) Charge(_ context.Context, _ int64) (int, error) {
	return 0, entity.ErrInsufficientCredits
}

func signToken(t *testing.T, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func identityHandler(t *testing.T, accounts *stubAccounts) (http.Handler, *entity.Caller) {
	t.Helper()
	var captured entity.Caller
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Identity(testSecret, accounts, &middleware.RemoteAddrExtractor{})(inner), &captured
}

func TestIdentity_GuestWithoutToken(t *testing.T) {
	handler, caller := identityHandler(t, &stubAccounts{byEmail: map[string]*entity.Account{}})

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.RemoteAddr = "203.0.113.9:54321"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, caller.IsGuest())
	assert.Equal(t, "203.0.113.9", caller.IdentityKey)
}

func TestIdentity_ValidTokenResolvesAccount(t *testing.T) {
	accounts := &stubAccounts{byEmail: map[string]*entity.Account{
		"user@example.com": {ID: 7, Email: "user@example.com", Credits: 3, Active: true},
	}}
	handler, caller := identityHandler(t, accounts)

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Hour))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, caller.IsGuest())
	assert.Equal(t, int64(7), caller.Account.ID)
}

func TestIdentity_ExpiredTokenRejected(t *testing.T) {
	accounts := &stubAccounts{byEmail: map[string]*entity.Account{
		"user@example.com": {ID: 7, Email: "user@example.com", Credits: 3, Active: true},
	}}
	handler, _ := identityHandler(t, accounts)

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", -time.Minute))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// Expired tokens are rejected, not downgraded to guest
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_MalformedToken(t *testing.T) {
	handler, _ := identityHandler(t, &stubAccounts{byEmail: map[string]*entity.Account{}})

	tests := []struct {
		name  string
		authz string
	}{
		{name: "not a bearer token", authz: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", authz: "Bearer not.a.jwt"},
		{name: "empty bearer", authz: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
			req.Header.Set("Authorization", tt.authz)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestIdentity_UnknownAccount(t *testing.T) {
	handler, _ := identityHandler(t, &stubAccounts{byEmail: map[string]*entity.Account{}})

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ghost@example.com", time.Hour))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_WrongSigningKey(t *testing.T) {
	handler, _ := identityHandler(t, &stubAccounts{byEmail: map[string]*entity.Account{}})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_StoreFailure(t *testing.T) {
	accounts := &stubAccounts{err: assert.AnError}
	handler, _ := identityHandler(t, accounts)

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Hour))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	// The store error stays in the logs; the body carries the generic message.
	assert.Contains(t, rr.Body.String(), "authorization check failed")
	assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
}

func TestCallerFromContext_Fallback(t *testing.T) {
	caller := CallerFromContext(context.Background())
	assert.True(t, caller.IsGuest())
	assert.Empty(t, caller.IdentityKey)
}
