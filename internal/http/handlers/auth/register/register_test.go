package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
	authsvc "github.com/magabrotheeeer/lms-access/internal/services/auth"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Register(ctx context.Context, email, fullName, rawPassword string) (string, error) {
	args := m.Called(ctx, email, fullName, rawPassword)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockUID        string
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid registration",
			requestBody:    Request{Email: "student@example.com", FullName: "Test Student", Password: "password123"},
			mockUID:        "uid-1",
			expectCall:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "short password",
			requestBody:    Request{Email: "student@example.com", FullName: "Test Student", Password: "short"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
		},
		{
			name:           "duplicate email maps to 409",
			requestBody:    Request{Email: "student@example.com", FullName: "Test Student", Password: "password123"},
			mockErr:        authsvc.ErrEmailTaken,
			expectCall:     true,
			wantStatusCode: http.StatusConflict,
			wantError:      "email already registered",
		},
		{
			name:           "storage failure maps to 500",
			requestBody:    Request{Email: "student@example.com", FullName: "Test Student", Password: "password123"},
			mockErr:        assert.AnError,
			expectCall:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.expectCall {
				body := tt.requestBody.(Request)
				svc.On("Register", mock.Anything, body.Email, body.FullName, body.Password).
					Return(tt.mockUID, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Contains(t, resp.Error, tt.wantError)
			} else {
				assert.Equal(t, response.StatusOK, resp.Status)
				data := resp.Data.(map[string]any)
				assert.Equal(t, "uid-1", data["user_uid"])
			}
			svc.AssertExpectations(t)
		})
	}
}
