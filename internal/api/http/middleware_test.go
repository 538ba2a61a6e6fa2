package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/security"
)

// fakeUserRepo serves a fixed set of users; only GetByID matters here.
type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateRating(ctx context.Context, userID string, rating float64, totalReviews int32) error {
	return nil
}
func (f *fakeUserRepo) UpdateSuccessRate(ctx context.Context, userID string, rate float64, completed, failed int32) error {
	return nil
}
func (f *fakeUserRepo) CountActive(ctx context.Context) (int32, error) { return 0, nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour, 7*24*time.Hour)
	srv := &Server{tokens: tokens}
	handler := srv.authMiddleware(okHandler())

	t.Run("Bearer header", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken("user-1", "a@test.com", false)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Token query fallback", func(t *testing.T) {
		access, _ := tokens.GenerateAccessToken("user-1", "a@test.com", false)

		req := httptest.NewRequest(http.MethodGet, "/api/ws?token="+access, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Refresh token is not an access token", func(t *testing.T) {
		refresh, _ := tokens.GenerateRefreshToken("user-1", "a@test.com")

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBanGateMiddleware(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*domain.User{
		"banned-1": {ID: "banned-1", IsBanned: true},
		"user-1":   {ID: "user-1"},
	}}
	handler := banGateMiddleware(repo)(okHandler())

	request := func(method, path, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		ctx := context.WithValue(req.Context(), claimsKey, &security.UserClaims{UserID: userID})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	t.Run("Banned account may still read", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request(http.MethodGet, "/api/items", "banned-1").Code)
	})

	t.Run("Banned account cannot mutate", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, request(http.MethodPost, "/api/items", "banned-1").Code)
	})

	t.Run("Banned account can still pay a penalty", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request(http.MethodPost, "/api/tokens/penalties/pen-1/pay", "banned-1").Code)
	})

	t.Run("Active account mutates freely", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request(http.MethodPost, "/api/items", "user-1").Code)
	})
}
