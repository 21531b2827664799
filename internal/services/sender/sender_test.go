package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/lms-access/internal/lib/smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct{ mock.Mock }

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return m.Called().String(0)
}

type MockClient struct {
	mock.Mock
	body bytes.Buffer
}

func (m *MockClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockClient) Quit() error            { return m.Called().Error(0) }
func (m *MockClient) Close() error           { return m.Called().Error(0) }

func (m *MockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return nopWriteCloser{&m.body}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func happyClient(t *testing.T, recipient string) *MockClient {
	t.Helper()
	client := new(MockClient)
	client.On("Mail", "noreply@example.com").Return(nil).Once()
	client.On("Rcpt", recipient).Return(nil).Once()
	client.On("Data").Return(nil, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
	return client
}

func TestSenderService_SendWelcome(t *testing.T) {
	transport := new(MockTransport)
	client := happyClient(t, "student@example.com")
	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil).Once()

	svc := NewSenderService(transport, newNoopLogger())
	body, _ := json.Marshal(map[string]string{
		"email":     "student@example.com",
		"full_name": "Test Student",
	})

	require.NoError(t, svc.SendWelcome(body))
	assert.Contains(t, client.body.String(), "Test Student")
	assert.Contains(t, client.body.String(), "To: student@example.com")
	client.AssertExpectations(t)
	transport.AssertExpectations(t)
}

func TestSenderService_SendPasswordReset(t *testing.T) {
	transport := new(MockTransport)
	client := happyClient(t, "student@example.com")
	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil).Once()

	svc := NewSenderService(transport, newNoopLogger())
	body, _ := json.Marshal(map[string]string{
		"email": "student@example.com",
		"token": "0123456789abcdef",
	})

	require.NoError(t, svc.SendPasswordReset(body))
	assert.Contains(t, client.body.String(), "0123456789abcdef")
	client.AssertExpectations(t)
}

func TestSenderService_SendSubscriptionUpdate(t *testing.T) {
	tests := []struct {
		name     string
		event    map[string]string
		wantText string
	}{
		{
			name:     "activated",
			event:    map[string]string{"email": "s@example.com", "subscription_id": "sub_1"},
			wantText: "подписка активна",
		},
		{
			name:     "cancelled with refund",
			event:    map[string]string{"email": "s@example.com", "refunded": "true"},
			wantText: "будет возвращён",
		},
		{
			name:     "cancelled without refund",
			event:    map[string]string{"email": "s@example.com", "refunded": "false"},
			wantText: "возврат не выполняется",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			client := happyClient(t, "s@example.com")
			transport.On("GetSMTPUser").Return("noreply@example.com")
			transport.On("Connect").Return(client, nil).Once()

			svc := NewSenderService(transport, newNoopLogger())
			body, _ := json.Marshal(tt.event)

			require.NoError(t, svc.SendSubscriptionUpdate(body))
			assert.Contains(t, client.body.String(), tt.wantText)
		})
	}
}

func TestSenderService_BadPayload(t *testing.T) {
	svc := NewSenderService(new(MockTransport), newNoopLogger())

	assert.Error(t, svc.SendWelcome([]byte("{not json")))
	assert.Error(t, svc.SendPasswordReset([]byte("{not json")))
	assert.Error(t, svc.SendSubscriptionUpdate([]byte("{not json")))
}

func TestSenderService_ConnectFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(nil, assert.AnError).Once()

	svc := NewSenderService(transport, newNoopLogger())
	body, _ := json.Marshal(map[string]string{"email": "s@example.com", "full_name": "X"})

	assert.Error(t, svc.SendWelcome(body))
	transport.AssertExpectations(t)
}
