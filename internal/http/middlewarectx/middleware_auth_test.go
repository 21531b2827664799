package middlewarectx_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
)

type DenylistMock struct{ mock.Mock }

func (m *DenylistMock) IsDenylisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	validToken, err := maker.GenerateToken("uid-1", "student@example.com", "user", "active")
	require.NoError(t, err)

	expiredMaker := jwt.NewJWTMaker("test-secret", -time.Minute)
	expiredToken, err := expiredMaker.GenerateToken("uid-1", "student@example.com", "user", "active")
	require.NoError(t, err)

	foreignMaker := jwt.NewJWTMaker("other-secret", time.Hour)
	foreignToken, err := foreignMaker.GenerateToken("uid-1", "student@example.com", "user", "active")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		setupDenylist  func(m *DenylistMock)
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:       "valid token passes and fills context",
			authHeader: "Bearer " + validToken,
			setupDenylist: func(m *DenylistMock) {
				m.On("IsDenylisted", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "missing Authorization header",
			authHeader:     "",
			setupDenylist:  func(m *DenylistMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			setupDenylist:  func(m *DenylistMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expiredToken,
			setupDenylist:  func(m *DenylistMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token signed with another key",
			authHeader:     "Bearer " + foreignToken,
			setupDenylist:  func(m *DenylistMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "revoked token is rejected",
			authHeader: "Bearer " + validToken,
			setupDenylist: func(m *DenylistMock) {
				m.On("IsDenylisted", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "denylist failure returns 500",
			authHeader: "Bearer " + validToken,
			setupDenylist: func(m *DenylistMock) {
				m.On("IsDenylisted", mock.Anything, mock.AnythingOfType("string")).Return(false, assert.AnError).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			denylist := new(DenylistMock)
			tt.setupDenylist(denylist)

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "uid-1", r.Context().Value(middlewarectx.UserUID))
				assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
				claims, ok := r.Context().Value(middlewarectx.TokenClaims).(*jwt.Claims)
				require.True(t, ok)
				assert.Equal(t, "active", claims.SubscriptionStatus)
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.JWTMiddleware(maker, denylist, newNoopLogger())(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			denylist.AssertExpectations(t)
		})
	}
}
