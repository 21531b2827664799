package middlewarectx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/models"
)

type AccountsMock struct{ mock.Mock }

func (m *AccountsMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func requestWithIdentity(uid, role string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, uid)
	ctx = context.WithValue(ctx, middlewarectx.Role, role)
	return req.WithContext(ctx)
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		allowed        []string
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "admin allowed",
			role:           "admin",
			allowed:        []string{"admin"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "user rejected from admin route",
			role:           "user",
			allowed:        []string{"admin"},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "several allowed roles",
			role:           "user",
			allowed:        []string{"admin", "user"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "role missing in context",
			role:           "",
			allowed:        []string{"admin"},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.RequireRoles(newNoopLogger(), tt.allowed...)(next)
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, requestWithIdentity("uid-1", tt.role))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestSubscriptionStatusMiddleware(t *testing.T) {
	subID := "sub_1"

	tests := []struct {
		name           string
		setupMocks     func(accounts *AccountsMock)
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name: "active subscription passes",
			setupMocks: func(accounts *AccountsMock) {
				accounts.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Role: models.RoleUser,
					SubscriptionID: &subID, SubscriptionStatus: models.SubscriptionActive,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name: "admin passes without subscription",
			setupMocks: func(accounts *AccountsMock) {
				accounts.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Role: models.RoleAdmin,
					SubscriptionStatus: models.SubscriptionNone,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name: "pending subscription is rejected",
			setupMocks: func(accounts *AccountsMock) {
				accounts.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Role: models.RoleUser,
					SubscriptionID: &subID, SubscriptionStatus: models.SubscriptionPending,
				}, nil).Once()
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			// подписка отменена после выпуска токена: решение
			// принимается по базе, а не по снимку в токене
			name: "cancelled in store rejects stale token",
			setupMocks: func(accounts *AccountsMock) {
				accounts.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Role: models.RoleUser,
					SubscriptionStatus: models.SubscriptionCancelled,
				}, nil).Once()
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "store failure returns 500",
			setupMocks: func(accounts *AccountsMock) {
				accounts.On("GetUser", mock.Anything, "uid-1").Return(nil, assert.AnError).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(AccountsMock)
			tt.setupMocks(accounts)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.SubscriptionStatusMiddleware(accounts, newNoopLogger())(next)
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, requestWithIdentity("uid-1", "user"))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			accounts.AssertExpectations(t)
		})
	}
}
